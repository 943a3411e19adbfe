package vitalz

import "sync/atomic"

// Subscription is a cancelable registration with a host or vital source.
// Cancel is idempotent; once canceled the subscriber never writes to its
// session again.
type Subscription struct {
	stop     func()
	name     string
	canceled atomic.Bool
}

func newSubscription(name string, stop func()) *Subscription {
	return &Subscription{name: name, stop: stop}
}

// Name identifies what the subscription observes.
func (s *Subscription) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Active reports whether the subscription has not been canceled.
func (s *Subscription) Active() bool {
	return s != nil && !s.canceled.Load()
}

// Cancel detaches the underlying observer. Safe to call multiple times.
func (s *Subscription) Cancel() {
	if s == nil || !s.canceled.CompareAndSwap(false, true) {
		return
	}
	if s.stop != nil {
		s.stop()
	}
}

// Subscriptions cancels a group of subscriptions together.
type Subscriptions []*Subscription

// Cancel cancels every subscription in the group.
func (ss Subscriptions) Cancel() {
	for _, s := range ss {
		s.Cancel()
	}
}
