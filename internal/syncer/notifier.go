package syncer

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
)

// State of the report display
type State string

const (
	StateIdle    State = "idle"
	StateShowing State = "showing"
)

// Notice is what subscribers receive on every state change.
type Notice struct {
	State  State             `json:"state"`
	Report domain.DiffReport `json:"report"`
	At     time.Time         `json:"at"`
}

// Notifier holds the change-report display state:
// Idle -> Showing(report) -> Idle, either when the display duration
// elapses or when Clear is called (next sync starting).
type Notifier struct {
	mu       sync.Mutex
	duration time.Duration
	now      func() time.Time

	state   State
	current domain.DiffReport
	shownAt time.Time
	timer   *time.Timer
	seq     uint64 // invalidates pending expiry timers

	last    domain.DiffReport
	hasLast bool

	subs   map[int]chan Notice
	nextID int
}

// NewNotifier creates an idle notifier. A zero duration keeps a report
// showing until the next Clear.
func NewNotifier(duration time.Duration) *Notifier {
	return &Notifier{
		duration: duration,
		now:      time.Now,
		state:    StateIdle,
		subs:     make(map[int]chan Notice),
	}
}

// Show displays report, replacing any report currently shown.
func (n *Notifier) Show(report domain.DiffReport) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.show(report)
}

// ShowIf displays report only if valid still holds once the notifier lock is
// taken, so a Clear issued after valid turned false always wins.
func (n *Notifier) ShowIf(valid func() bool, report domain.DiffReport) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !valid() {
		return false
	}
	n.show(report)
	return true
}

// show must be called with mu held
func (n *Notifier) show(report domain.DiffReport) {
	n.stopTimer()
	n.seq++
	seq := n.seq

	n.state = StateShowing
	n.current = report
	n.shownAt = n.now()
	n.last = report
	n.hasLast = true

	if n.duration > 0 {
		n.timer = time.AfterFunc(n.duration, func() { n.expire(seq) })
	}

	n.broadcast()
}

// Clear hides the current report, if any.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateIdle {
		return
	}
	n.stopTimer()
	n.seq++
	n.toIdle()
}

// Current returns the report being shown.
func (n *Notifier) Current() (domain.DiffReport, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateShowing {
		return domain.DiffReport{}, false
	}
	return n.current, true
}

// Last returns the report of the last applied sync, shown or not.
func (n *Notifier) Last() (domain.DiffReport, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.last, n.hasLast
}

// Subscribe returns a channel receiving the current notice immediately and
// every later state change. Slow subscribers only see the latest notice.
// cancel must be called to release the subscription.
func (n *Notifier) Subscribe() (<-chan Notice, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Notice, 1)
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	ch <- n.notice()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// A later Show or Clear owns the state now
	if n.seq != seq {
		return
	}
	n.timer = nil
	n.toIdle()
}

func (n *Notifier) toIdle() {
	n.state = StateIdle
	n.current = domain.DiffReport{}
	n.shownAt = time.Time{}
	n.broadcast()
}

func (n *Notifier) stopTimer() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// notice must be called with mu held
func (n *Notifier) notice() Notice {
	if n.state == StateShowing {
		return Notice{State: n.state, Report: n.current, At: n.shownAt}
	}
	return Notice{State: StateIdle, At: n.now()}
}

// broadcast must be called with mu held
func (n *Notifier) broadcast() {
	notice := n.notice()
	for _, ch := range n.subs {
		// Drop a stale undelivered notice
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- notice:
		default:
		}
	}
}
