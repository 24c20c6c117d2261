// Package eventloop runs posted callbacks one at a time on a single goroutine.
// Timer callbacks armed through Every and After are delivered onto the same
// goroutine, so code confined to the loop never observes interleaving.
package eventloop

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var ErrStopped = errors.New("event loop stopped")

type Loop struct {
	queue chan func()
	done  chan struct{}
}

// Timer is a pending Every or After callback.
type Timer interface {
	// Stop reports whether this call stopped the timer. Safe to call repeatedly.
	Stop() bool
}

func New() *Loop {
	return &Loop{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post enqueues fn. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Every posts fn every d until the returned timer is stopped.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &loopTimer{quit: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case <-l.done:
				return
			case <-ticker.C:
				l.Post(func() {
					if !t.stopped.Load() {
						fn()
					}
				})
			}
		}
	}()
	return t
}

// After posts fn once after d unless the returned timer is stopped first.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	t := &loopTimer{quit: make(chan struct{})}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				close(t.quit)
				fn()
			}
		})
	})
	return t
}

type loopTimer struct {
	stopped atomic.Bool
	quit    chan struct{}
	timer   *time.Timer
}

func (t *loopTimer) Stop() bool {
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	close(t.quit)
	return true
}
