package metrics

import "testing"

func TestCheckThresholdsFlagsBreaches(t *testing.T) {
	snapshot := SystemSnapshot{ConnectionsActive: 150, RoomsActive: 5}
	thresholds := Thresholds{MaxConnections: 100, MaxRoomsActive: 50}

	breaches := CheckThresholds(snapshot, thresholds)
	if len(breaches) != 1 {
		t.Fatalf("expected exactly one breach, got %v", breaches)
	}
}

func TestCheckThresholdsIgnoresUnsetLimits(t *testing.T) {
	snapshot := SystemSnapshot{ConnectionsActive: 1000}
	thresholds := Thresholds{}

	if breaches := CheckThresholds(snapshot, thresholds); len(breaches) != 0 {
		t.Fatalf("expected no breaches with unset thresholds, got %v", breaches)
	}
}

func TestRecordOperationDoesNotPanic(t *testing.T) {
	RecordOperation("CREATE_ROOM", 0.01)
	RecordOperationError("CREATE_ROOM", "DuplicateError")
	RecordSecurityEvent("rate_limited")
	UpdateSystemMetrics(SystemSnapshot{ConnectionsActive: 3, UsersConnected: 2, RoomsActive: 1})
}
