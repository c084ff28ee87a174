package session

import "time"

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// ScheduleFunc runs f once after d elapses.
type ScheduleFunc func(d time.Duration, f func()) Stopper

// AfterFunc schedules callbacks with time.AfterFunc.
func AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// IdleTimer is a single-slot cancellable delayed callback.
// Arming replaces any pending callback; a callback that fires after being
// replaced or disarmed is recognized as stale through its generation.
// IdleTimer is not safe for concurrent use; the owning session serializes access.
type IdleTimer struct {
	schedule   ScheduleFunc
	pending    Stopper
	generation uint64
	armed      bool
}

// NewIdleTimer creates an IdleTimer using schedule, or time.AfterFunc if nil.
func NewIdleTimer(schedule ScheduleFunc) *IdleTimer {
	if schedule == nil {
		schedule = AfterFunc
	}
	return &IdleTimer{schedule: schedule}
}

// Arm schedules fire to run after d, replacing any pending callback.
// fire receives the generation it was armed with.
func (t *IdleTimer) Arm(d time.Duration, fire func(generation uint64)) {
	t.Disarm()

	t.generation++
	generation := t.generation
	t.armed = true
	t.pending = t.schedule(d, func() { fire(generation) })
}

// Disarm cancels the pending callback. It is a no-op if nothing is armed.
func (t *IdleTimer) Disarm() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.armed = false
}

// Armed returns true if a callback is pending.
func (t *IdleTimer) Armed() bool {
	return t.armed
}

// IsCurrent returns true if generation belongs to the pending callback.
func (t *IdleTimer) IsCurrent(generation uint64) bool {
	return t.armed && t.generation == generation
}

// Fired marks the pending callback as consumed.
func (t *IdleTimer) Fired() {
	t.pending = nil
	t.armed = false
}
