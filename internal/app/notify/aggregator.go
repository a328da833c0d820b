/*
Package notify aggregates inbound real-time events into a deduplicated,
rate-limited notification stream for one viewing user.

This file defines the Aggregator, a per-viewer state machine driven by
discrete inputs: Observe (a new event arrived), Dismiss, DisplayTimeout, and
OpenConversation. Exactly one notification is visible at a time; the rest wait
in a strict FIFO queue. An event whose conversation the viewer is currently
looking at is suppressed entirely: no visible notification, no unread
increment. Duplicate event ids (reconnect replay) are recovered locally and
never surfaced.
*/
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ripple/internal/pkg/logx"
)

// DefaultVisibleFor is the display duration used by production wiring.
const DefaultVisibleFor = 5 * time.Second

// seenCap bounds the retired-id replay window. Reaching the cap resets the
// window; dedup of in-flight entries is unaffected.
const seenCap = 1024

// Aggregator serializes a viewer's pending notifications into a
// single-at-a-time display queue and maintains the unread counters.
type Aggregator struct {
	// mu protects all state below.
	mu sync.Mutex

	// viewing is the conversation the viewer currently has open, nil if none.
	viewing *Conversation

	// unread counts suppressed-or-queued events per conversation.
	unread map[Conversation]int

	// active is the one notification currently visible, nil when idle.
	active *Event

	// queue holds admitted events awaiting display, strict FIFO.
	queue []Event

	// pending tracks ids currently queued or displayed (the dedup set).
	pending map[string]struct{}

	// seen tracks recently retired ids, absorbing reconnect replays.
	seen map[string]struct{}

	// visibleFor is the display duration before auto-retire; zero disables
	// the internal timer and timeouts must be driven via DisplayTimeout.
	visibleFor time.Duration

	// timer auto-retires the active notification when visibleFor is set.
	timer *time.Timer

	// structured logger with Aggregator context.
	logger zerolog.Logger
}

// NewAggregator constructs an idle Aggregator. A positive visibleFor arms an
// internal timer that retires each displayed notification after that
// duration; zero leaves retirement entirely to Dismiss and DisplayTimeout.
func NewAggregator(visibleFor time.Duration) *Aggregator {
	aggregatorLogger := logx.Logger().With().Str("component", "Aggregator").Logger()

	return &Aggregator{
		unread:     make(map[Conversation]int),
		pending:    make(map[string]struct{}),
		seen:       make(map[string]struct{}),
		visibleFor: visibleFor,
		logger:     aggregatorLogger,
	}
}

// Observe feeds one event into the aggregator. It returns true if the event
// was admitted (counted and queued) and false if it was suppressed or
// recognized as a duplicate.
func (a *Aggregator) Observe(ev Event) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	conversation := ev.Conversation()

	if a.viewing != nil && *a.viewing == conversation {
		// the viewer is already looking at this chat
		return false
	}

	if _, dup := a.pending[ev.ID]; dup {
		a.logger.Debug().Str("event_id", ev.ID).Msg("Duplicate notification dropped.")
		return false
	}
	if _, dup := a.seen[ev.ID]; dup {
		a.logger.Debug().Str("event_id", ev.ID).Msg("Replayed notification dropped.")
		return false
	}

	a.unread[conversation]++
	a.pending[ev.ID] = struct{}{}
	a.queue = append(a.queue, ev)

	a.promoteLocked()
	return true
}

// Dismiss retires the visible notification and promotes the next queued one.
// Dismissing with nothing visible is a no-op.
func (a *Aggregator) Dismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.retireActiveLocked()
	a.promoteLocked()
}

// DisplayTimeout retires the visible notification exactly like Dismiss. It is
// the explicit form of the visibility timeout, used when no internal timer
// is armed.
func (a *Aggregator) DisplayTimeout() {
	a.Dismiss()
}

// OpenConversation records that the viewer opened the given chat. The
// conversation's unread counter is zeroed and any queued or displayed
// notification for it is removed. Subsequent events for this conversation are
// suppressed until CloseConversation.
func (a *Aggregator) OpenConversation(kind Kind, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	conversation := Conversation{Kind: kind, ID: id}
	a.viewing = &conversation

	delete(a.unread, conversation)

	kept := a.queue[:0]
	for _, ev := range a.queue {
		if ev.Conversation() == conversation {
			delete(a.pending, ev.ID)
			a.rememberLocked(ev.ID)
			continue
		}
		kept = append(kept, ev)
	}
	a.queue = kept

	if a.active != nil && a.active.Conversation() == conversation {
		a.retireActiveLocked()
		a.promoteLocked()
	}
}

// CloseConversation records that the viewer left the open chat.
func (a *Aggregator) CloseConversation() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.viewing = nil
}

// Active returns a copy of the currently visible notification, or nil.
func (a *Aggregator) Active() *Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == nil {
		return nil
	}
	ev := *a.active
	return &ev
}

// QueuedCount returns the number of admitted events awaiting display,
// excluding the visible one.
func (a *Aggregator) QueuedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.queue)
}

// UnreadCount returns the unread counter for a conversation.
func (a *Aggregator) UnreadCount(kind Kind, id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.unread[Conversation{Kind: kind, ID: id}]
}

// promoteLocked makes the queue head visible when nothing is showing.
func (a *Aggregator) promoteLocked() {
	if a.active != nil || len(a.queue) == 0 {
		return
	}

	ev := a.queue[0]
	a.queue = a.queue[1:]
	a.active = &ev

	if a.visibleFor > 0 {
		id := ev.ID
		a.timer = time.AfterFunc(a.visibleFor, func() {
			a.expire(id)
		})
	}
}

// retireActiveLocked removes the visible notification, remembering its id so
// a replay cannot resurface it.
func (a *Aggregator) retireActiveLocked() {
	if a.active == nil {
		return
	}

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}

	delete(a.pending, a.active.ID)
	a.rememberLocked(a.active.ID)
	a.active = nil
}

// expire is the internal timer callback. The id check discards stale timers
// left over from notifications that were already dismissed.
func (a *Aggregator) expire(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == nil || a.active.ID != id {
		return
	}

	a.retireActiveLocked()
	a.promoteLocked()
}

func (a *Aggregator) rememberLocked(id string) {
	if len(a.seen) >= seenCap {
		a.seen = make(map[string]struct{})
	}
	a.seen[id] = struct{}{}
}
