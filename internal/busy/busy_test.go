package busy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quizforge/composer/internal/busy"
)

const (
	show = 20 * time.Millisecond
	hide = 20 * time.Millisecond
	// long enough for any pending transition to fire
	settle = 100 * time.Millisecond
)

func TestShowAfterDelay(t *testing.T) {
	tr := busy.NewWithDelays(show, hide)
	tr.Add()
	if tr.Visible() {
		t.Fatal("visible before show delay elapsed")
	}
	time.Sleep(settle)
	if !tr.Visible() {
		t.Fatal("not visible after show delay")
	}
	tr.Done()
	time.Sleep(settle)
	if tr.Visible() {
		t.Fatal("still visible after hide delay")
	}
}

func TestQuickBurstNeverShows(t *testing.T) {
	tr := busy.NewWithDelays(show, hide)
	// several operations that all complete before the show delay fires
	for i := 0; i < 3; i++ {
		tr.Add()
		tr.Done()
	}
	time.Sleep(settle)
	if tr.Visible() {
		t.Fatal("indicator flickered on for a quick burst")
	}
}

func TestCountNeverNegative(t *testing.T) {
	tr := busy.NewWithDelays(show, hide)
	tr.Done()
	tr.Done()
	if got := tr.Count(); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
	tr.Add()
	if got := tr.Count(); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	tr.Done()
}

func TestOverlappingOperationsKeepVisible(t *testing.T) {
	tr := busy.NewWithDelays(show, hide)
	tr.Add()
	time.Sleep(settle)
	tr.Add()
	tr.Done() // first op finishes, second still running
	if !tr.Visible() {
		t.Fatal("went invisible while an operation was still in flight")
	}
	tr.Done()
	time.Sleep(settle)
	if tr.Visible() {
		t.Fatal("visible after all operations completed")
	}
}

func TestRebound(t *testing.T) {
	tr := busy.NewWithDelays(show, hide)
	tr.Add()
	time.Sleep(settle)
	tr.Done()
	// new operation arrives before the hide fires: stays visible
	tr.Add()
	time.Sleep(settle)
	if !tr.Visible() {
		t.Fatal("hide fired despite a new operation arriving in the window")
	}
	tr.Done()
	time.Sleep(settle)
	if tr.Visible() {
		t.Fatal("did not settle to invisible")
	}
}

func TestRunPairsAndPropagates(t *testing.T) {
	tr := busy.NewWithDelays(show, hide)
	wantErr := errors.New("boom")
	err := tr.Run(context.Background(), func(context.Context) error {
		if tr.Count() != 1 {
			t.Fatalf("count inside Run = %d, want 1", tr.Count())
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run err = %v, want %v", err, wantErr)
	}
	if tr.Count() != 0 {
		t.Fatalf("count after failing Run = %d, want 0", tr.Count())
	}
}
