package repository

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedChargers(t *testing.T, db *DB) {
	t.Helper()
	insert := `INSERT INTO charge_box (charge_box_id, charge_point_model, charge_point_vendor, power, max_current,
		latitude, longitude, status, connector_type, last_heartbeat) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// fresh, fast, connector free
	mustExec(t, db, insert, "CB-FAST", "Terra 54", "ABB", 50, 125, 28.55, 77.2, "Available", "CCS2", baseTime.Add(-1*time.Minute))
	// fresh, slow, no connector row, no coordinates
	mustExec(t, db, insert, "CB-SLOW", "AC Wallbox", "Delta", 7.4, 32, nil, nil, "Available", nil, baseTime.Add(-1*time.Minute))
	// stale heartbeat
	mustExec(t, db, insert, "CB-STALE", "Old Unit", "ABB", 22, 32, 28.6, 77.1, "Available", "Type 2", baseTime.Add(-11*time.Minute))
	// connector busy
	mustExec(t, db, insert, "CB-BUSY", "Terra 24", "ABB", 24, 60, 28.6, 77.1, "Available", "CCS2", baseTime.Add(-2*time.Minute))
	// box not available
	mustExec(t, db, insert, "CB-DOWN", "Terra 24", "ABB", 24, 60, 28.6, 77.1, "Faulted", "CCS2", baseTime.Add(-2*time.Minute))
	// fresher than CB-FAST, preparing
	mustExec(t, db, insert, "CB-NEWEST", "Terra 184", "ABB", 150, 300, 28.7, 77.3, "Available", "CCS2", baseTime)

	conn := `INSERT INTO connector_status (charge_box_id, connector_id, status) VALUES (?, ?, ?)`
	mustExec(t, db, conn, "CB-FAST", 1, "Available")
	mustExec(t, db, conn, "CB-FAST", 2, "Charging")
	mustExec(t, db, conn, "CB-BUSY", 1, "Charging")
	mustExec(t, db, conn, "CB-NEWEST", 1, "Preparing")
}

func TestChargerRepository_ListAvailable(t *testing.T) {
	db := newTestDB(t)
	seedChargers(t, db)
	repo := NewChargerRepository(db)

	recs, err := repo.ListAvailable(context.Background(), ChargerQuery{HeartbeatSince: baseTime.Add(-10 * time.Minute)})
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}

	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	want := []string{"CB-NEWEST", "CB-FAST", "CB-SLOW"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	slow := recs[2]
	if slow.Latitude != "" || slow.Longitude != "" || slow.ConnectorStatus != "" {
		t.Errorf("expected empty coordinates and status for CB-SLOW, got %+v", slow)
	}
	if recs[1].ConnectorStatus != "Available" {
		t.Errorf("CB-FAST connector status = %q, want connector 1 status", recs[1].ConnectorStatus)
	}
	if recs[0].LastHeartbeat == nil || !recs[0].LastHeartbeat.Equal(baseTime) {
		t.Errorf("CB-NEWEST heartbeat = %v", recs[0].LastHeartbeat)
	}
}

func TestChargerRepository_ListAvailableFilters(t *testing.T) {
	db := newTestDB(t)
	seedChargers(t, db)
	repo := NewChargerRepository(db)
	since := baseTime.Add(-10 * time.Minute)

	minPower := 40.0
	recs, err := repo.ListAvailable(context.Background(), ChargerQuery{HeartbeatSince: since, MinPower: &minPower})
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "CB-NEWEST" || recs[1].ID != "CB-FAST" {
		t.Errorf("minPower result = %+v", recs)
	}

	recs, err = repo.ListAvailable(context.Background(), ChargerQuery{HeartbeatSince: since, Type: "Type 1"})
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("type filter result = %+v, want empty", recs)
	}

	// Injection attempts are bound as values, not SQL.
	recs, err = repo.ListAvailable(context.Background(), ChargerQuery{HeartbeatSince: since, Type: "x' OR '1'='1"})
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("injection result = %+v, want empty", recs)
	}
}

func TestChargerRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	seedChargers(t, db)
	repo := NewChargerRepository(db)

	rec, err := repo.GetByID(context.Background(), "CB-DOWN")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.BoxStatus != "Faulted" || rec.Name != "Terra 24" || rec.Vendor != "ABB" {
		t.Errorf("record = %+v", rec)
	}

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrChargerNotFound) {
		t.Errorf("GetByID(missing) err = %v, want ErrChargerNotFound", err)
	}
}
