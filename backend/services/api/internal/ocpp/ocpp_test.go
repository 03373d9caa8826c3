package ocpp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestBuildCall(t *testing.T) {
	frame, err := BuildCall("abc", ActionRemoteStartTransaction, RemoteStartTransactionRequest{ConnectorID: 1, IDTag: "VS_TAG"})
	if err != nil {
		t.Fatalf("BuildCall: %v", err)
	}
	want := `[2,"abc","RemoteStartTransaction",{"connectorId":1,"idTag":"VS_TAG"}]`
	if string(frame) != want {
		t.Errorf("frame = %s, want %s", frame, want)
	}
}

func TestParseCallResult(t *testing.T) {
	res, err := ParseCallResult([]byte(`[3,"id-1",{"status":"Rejected"}]`))
	if err != nil {
		t.Fatalf("ParseCallResult: %v", err)
	}
	var body RemoteStartStopResponse
	if err := json.Unmarshal(res.Payload, &body); err != nil {
		t.Fatal(err)
	}
	if res.UniqueID != "id-1" || body.Status != StatusRejected {
		t.Errorf("result = %+v, body = %+v", res, body)
	}

	for _, bad := range []string{`not json`, `[3,"x"]`, `[2,"x","Heartbeat",{}]`} {
		if _, err := ParseCallResult([]byte(bad)); err == nil {
			t.Errorf("ParseCallResult(%s) expected error", bad)
		}
	}
}

func TestMockCommander(t *testing.T) {
	c := NewMockCommander(zap.NewNop())
	ctx := context.Background()

	res, err := c.RemoteStart(ctx, RemoteStartRequest{ChargeBoxID: "CB-1", ConnectorID: 1, IDTag: "VS_TAG"})
	if err != nil {
		t.Fatalf("RemoteStart: %v", err)
	}
	if res.Status != StatusAccepted || res.RequestID == "" {
		t.Errorf("start result = %+v", res)
	}

	if _, err := c.RemoteStart(ctx, RemoteStartRequest{ChargeBoxID: "CB-1"}); err == nil {
		t.Error("expected error without id tag")
	}

	res, err = c.RemoteStop(ctx, RemoteStopRequest{ChargeBoxID: "CB-1", TransactionID: 17})
	if err != nil {
		t.Fatalf("RemoteStop: %v", err)
	}
	if res.Status != StatusAccepted {
		t.Errorf("stop result = %+v", res)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	for _, bad := range []RemoteStopRequest{{ChargeBoxID: "CB-1"}, {ChargeBoxID: "CB-1", TransactionID: -3}, {TransactionID: 17}} {
		if _, err := c.RemoteStop(ctx, bad); err == nil {
			t.Errorf("RemoteStop(%+v) accepted", bad)
		}
	}

	if _, err := c.RemoteStop(cancelled, RemoteStopRequest{ChargeBoxID: "CB-1", TransactionID: 17}); err == nil {
		t.Error("expected context error")
	}
}

func TestRemoteStopFrameCarriesIntegerTransactionID(t *testing.T) {
	frame, err := BuildCall("u-1", ActionRemoteStopTransaction, RemoteStopTransactionRequest{TransactionID: 17})
	if err != nil {
		t.Fatalf("BuildCall: %v", err)
	}
	if !strings.Contains(string(frame), `{"transactionId":17}`) {
		t.Errorf("frame = %s", frame)
	}
}
