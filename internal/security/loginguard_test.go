package security

import "testing"

func TestLoginGuardAllowsUntilThreshold(t *testing.T) {
	g := NewLoginGuard()
	for i := 0; i < maxFailedAttempts-1; i++ {
		if err := g.ShouldBlock("1.2.3.4", "alice"); err != nil {
			t.Fatalf("unexpected block before threshold (attempt %d): %v", i, err)
		}
		g.RecordFailure("1.2.3.4", "alice")
	}
	if err := g.ShouldBlock("1.2.3.4", "alice"); err != nil {
		t.Fatalf("should not yet be locked out: %v", err)
	}
}

func TestLoginGuardLocksOutAfterThreshold(t *testing.T) {
	g := NewLoginGuard()
	for i := 0; i < maxFailedAttempts; i++ {
		g.RecordFailure("1.2.3.4", "alice")
	}
	if err := g.ShouldBlock("1.2.3.4", "alice"); err == nil {
		t.Fatalf("expected lockout after %d failed attempts", maxFailedAttempts)
	}
}

func TestLoginGuardSuccessResetsCounters(t *testing.T) {
	g := NewLoginGuard()
	for i := 0; i < maxFailedAttempts-1; i++ {
		g.RecordFailure("5.6.7.8", "bob")
	}
	g.RecordSuccess("5.6.7.8", "bob")

	for i := 0; i < maxFailedAttempts-1; i++ {
		if err := g.ShouldBlock("5.6.7.8", "bob"); err != nil {
			t.Fatalf("unexpected block after reset (attempt %d): %v", i, err)
		}
		g.RecordFailure("5.6.7.8", "bob")
	}
	if err := g.ShouldBlock("5.6.7.8", "bob"); err != nil {
		t.Fatalf("counters should have restarted cleanly after reset: %v", err)
	}
}

func TestLoginGuardLockoutIsPerKey(t *testing.T) {
	g := NewLoginGuard()
	// Fail enough times from a single ip to lock out the ip, using a
	// distinct username each time so the per-username counter never reaches
	// the threshold.
	for i := 0; i < maxFailedAttempts; i++ {
		g.RecordFailure("9.9.9.9", "user-"+string(rune('a'+i)))
	}
	if err := g.ShouldBlock("9.9.9.9", "unrelated"); err == nil {
		t.Fatalf("expected the locked ip to block a request regardless of username")
	}
	if err := g.ShouldBlock("10.0.0.1", "user-a"); err != nil {
		t.Fatalf("a username that never hit its own threshold should not be blocked from a fresh ip: %v", err)
	}
}
