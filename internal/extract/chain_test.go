package extract

import (
	"testing"
)

func TestFirstPlausibleOrder(t *testing.T) {
	snap := mustSnapshot(t, `<html><body></body></html>`)

	got := firstPlausible("test", snap, nil, []strategy[int]{
		{"miss", func(*Snapshot) (int, bool) { return 0, false }},
		{"hit", func(*Snapshot) (int, bool) { return 42, true }},
		{"later", func(*Snapshot) (int, bool) { return 99, true }},
	})
	if got != 42 {
		t.Errorf("got %d, want first hit 42", got)
	}
}

func TestFirstPlausibleGateRejects(t *testing.T) {
	snap := mustSnapshot(t, `<html><body></body></html>`)

	got := firstPlausible("test", snap,
		func(v int) bool { return v > 100 },
		[]strategy[int]{
			{"small", func(*Snapshot) (int, bool) { return 42, true }},
			{"large", func(*Snapshot) (int, bool) { return 420, true }},
		})
	if got != 420 {
		t.Errorf("got %d, want the gate to skip 42", got)
	}
}

func TestFirstPlausibleAllMiss(t *testing.T) {
	snap := mustSnapshot(t, `<html><body></body></html>`)

	got := firstPlausible("test", snap, nil, []strategy[string]{
		{"miss", func(*Snapshot) (string, bool) { return "", false }},
	})
	if got != "" {
		t.Errorf("got %q, want zero value", got)
	}
}

func TestFirstPlausibleRecoversPanic(t *testing.T) {
	snap := mustSnapshot(t, `<html><body></body></html>`)

	got := firstPlausible("test", snap, nil, []strategy[int]{
		{"explodes", func(*Snapshot) (int, bool) { panic("regex gone wrong") }},
		{"survives", func(*Snapshot) (int, bool) { return 7, true }},
	})
	if got != 7 {
		t.Errorf("got %d, want the chain to survive the panic", got)
	}
}
