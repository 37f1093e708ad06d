package clock

import (
	"testing"
	"time"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := NewFakeClock(start)

	if !clk.Now().Equal(start) {
		t.Errorf("Expected %v, got %v", start, clk.Now())
	}

	clk.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !clk.Now().Equal(want) {
		t.Errorf("Expected %v after advance, got %v", want, clk.Now())
	}
}

func TestRealClock(t *testing.T) {
	clk := NewRealClock()
	before := time.Now()
	now := clk.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("RealClock.Now() = %v outside [%v, %v]", now, before, after)
	}
}
