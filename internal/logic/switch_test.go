package logic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSwitchSetAndReset(t *testing.T) {
	got := run(NewSwitch(), [][]any{
		{false, false},
		{true, false}, // set
		{false, false},
		{false, true}, // reset
		{false, true}, // held reset
		{true, true},  // set edge, reset held
	})
	want := []bool{false, true, true, false, false, true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("switch outputs mismatch (-want +got):\n%s", diff)
	}
}

func TestSwitchSetWinsOnSimultaneousEdges(t *testing.T) {
	s := NewSwitch()
	if got := s.Transform([]any{true, true}); !got {
		t.Errorf("simultaneous edges: got %v, want true", got)
	}
}

func TestSwitchResetHistoryAdvancesWhenSetWins(t *testing.T) {
	s := NewSwitch()
	s.Transform([]any{true, true}) // set wins, reset edge consumed

	// Reset input still high: no new edge, so output stays set.
	if got := s.Transform([]any{false, true}); !got {
		t.Errorf("held reset after tie: got %v, want true", got)
	}

	// Reset drops and rises again: now it clears.
	s.Transform([]any{false, false})
	if got := s.Transform([]any{false, true}); got {
		t.Errorf("fresh reset edge: got %v, want false", got)
	}
}

func TestSwitchRepeatedSetIsIdempotent(t *testing.T) {
	got := run(NewSwitch(), [][]any{
		{"1", "0"},
		{"0", "0"},
		{"1", "0"},
		{"1", "0"},
	})
	want := []bool{true, true, true, true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("switch outputs mismatch (-want +got):\n%s", diff)
	}
}

func TestSwitchResetBeforeSetStaysFalse(t *testing.T) {
	s := NewSwitch()
	if got := s.Transform([]any{false, true}); got {
		t.Errorf("reset on fresh switch: got %v, want false", got)
	}
	if s.Value() {
		t.Error("Value: got true, want false")
	}
}
