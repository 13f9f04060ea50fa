package clock

import (
	"testing"
	"time"
)

func TestStepAdvancesOnRead(t *testing.T) {
	c := NewStep(5)

	if got := c.Millis(); got != 0 {
		t.Fatalf("first read = %d, want 0", got)
	}
	if got := c.Millis(); got != 5 {
		t.Fatalf("second read = %d, want 5", got)
	}

	c.Advance(100 * time.Millisecond)
	if got := c.Millis(); got != 110 {
		t.Errorf("after Advance = %d, want 110", got)
	}
}

func TestSinceHandlesWrap(t *testing.T) {
	c := NewStep(0)
	c.Advance(time.Duration(^uint32(0)) * time.Millisecond) // 2^32-1 ms
	start := c.Millis()
	c.Advance(10 * time.Millisecond)

	if got := Since(c, start); got != 10*time.Millisecond {
		t.Errorf("Since across wrap = %v, want 10ms", got)
	}
}

func TestSystemIsMonotonic(t *testing.T) {
	c := System()
	a := c.Millis()
	time.Sleep(2 * time.Millisecond)
	b := c.Millis()
	if b < a {
		t.Errorf("system clock went backwards: %d then %d", a, b)
	}
}
