package syncer

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
)

func TestNotifier_ShowAndClear(t *testing.T) {
	n := NewNotifier(0)

	if _, ok := n.Current(); ok {
		t.Fatal("new notifier should be idle")
	}
	if _, ok := n.Last(); ok {
		t.Fatal("new notifier should have no last report")
	}

	report := domain.DiffReport{NewRemote: 2}
	n.Show(report)

	if got, ok := n.Current(); !ok || got != report {
		t.Errorf("Current() = %+v, %v; want %+v, true", got, ok, report)
	}

	n.Clear()

	if _, ok := n.Current(); ok {
		t.Error("Clear() should return to idle")
	}
	if got, ok := n.Last(); !ok || got != report {
		t.Errorf("Last() = %+v, %v; want %+v, true", got, ok, report)
	}
}

func TestNotifier_Expires(t *testing.T) {
	n := NewNotifier(20 * time.Millisecond)
	ch, cancel := n.Subscribe()
	defer cancel()

	if first := <-ch; first.State != StateIdle {
		t.Fatalf("first notice = %v, want idle", first.State)
	}

	n.Show(domain.DiffReport{NewLocal: 1})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case notice := <-ch:
			if notice.State == StateIdle {
				if _, ok := n.Current(); ok {
					t.Error("Current() should be empty after expiry")
				}
				return
			}
		case <-deadline:
			t.Fatal("report display never expired")
		}
	}
}

func TestNotifier_ShowRestartsTimer(t *testing.T) {
	n := NewNotifier(100 * time.Millisecond)

	n.Show(domain.DiffReport{NewLocal: 1})
	time.Sleep(60 * time.Millisecond)
	n.Show(domain.DiffReport{NewLocal: 2})
	time.Sleep(60 * time.Millisecond)

	// The first timer fired by now but belongs to a replaced report
	if got, ok := n.Current(); !ok || got.NewLocal != 2 {
		t.Errorf("Current() = %+v, %v; want second report still showing", got, ok)
	}
}

func TestNotifier_SubscribeCancel(t *testing.T) {
	n := NewNotifier(0)
	ch, cancel := n.Subscribe()
	<-ch

	cancel()
	cancel()

	if _, open := <-ch; open {
		t.Error("cancel() should close the channel")
	}

	// Broadcasting with no subscribers must not block
	n.Show(domain.DiffReport{NewLocal: 1})
}

func TestNotifier_ShowIf(t *testing.T) {
	tests := []struct {
		name      string
		valid     bool
		wantShown bool
	}{
		{"valid round shows", true, true},
		{"stale round is dropped", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNotifier(0)
			report := domain.DiffReport{NewLocal: 1}

			shown := n.ShowIf(func() bool { return tt.valid }, report)
			if shown != tt.wantShown {
				t.Errorf("ShowIf() = %v, want %v", shown, tt.wantShown)
			}
			if _, ok := n.Current(); ok != tt.wantShown {
				t.Errorf("Current() showing = %v, want %v", ok, tt.wantShown)
			}
			if _, ok := n.Last(); ok != tt.wantShown {
				t.Errorf("Last() set = %v, want %v", ok, tt.wantShown)
			}
		})
	}
}
