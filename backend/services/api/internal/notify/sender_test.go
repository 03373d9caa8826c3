package notify

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMask(t *testing.T) {
	tests := map[string]string{
		"+919999991234":    "*********1234",
		"asha@example.com": "***@example.com",
		"123":              "****",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogSender_SendOTP(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core), false)

	if err := sender.SendOTP(context.Background(), ChannelSMS, "+919999991234", "4821"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if _, ok := ctx["code"]; ok {
		t.Error("code must not be logged when reveal is off")
	}
	if ctx["recipient"] != "*********1234" {
		t.Errorf("recipient = %v", ctx["recipient"])
	}
}
