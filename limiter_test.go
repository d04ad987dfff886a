package folio

import (
	"testing"
	"time"
)

func TestLoginLimiterExhaustsBudget(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("198.51.100.7") {
			t.Fatalf("attempt %d should be within budget", i+1)
		}
	}
	if l.Allow("198.51.100.7") {
		t.Fatal("attempt past budget should be rejected")
	}
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	l := NewLoginLimiter(1, 50*time.Millisecond)

	if !l.Allow("198.51.100.8") {
		t.Fatal("first attempt should be within budget")
	}
	if l.Allow("198.51.100.8") {
		t.Fatal("second attempt inside window should be rejected")
	}

	time.Sleep(80 * time.Millisecond)

	if !l.Allow("198.51.100.8") {
		t.Fatal("attempt after window expiry should start a fresh budget")
	}
}

func TestLoginLimiterTracksIPsIndependently(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)

	if !l.Allow("198.51.100.9") {
		t.Fatal("first ip should be within budget")
	}
	if l.Allow("198.51.100.9") {
		t.Fatal("first ip should be exhausted")
	}
	if !l.Allow("198.51.100.10") {
		t.Fatal("second ip has its own budget")
	}
}
