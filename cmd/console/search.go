package main

import (
	"sync"
	"time"

	"github.com/romdo/go-debounce"
)

// searchDebouncer coalesces keystrokes in the search box so a query fires
// only after the typist pauses. The debounced callback runs on a timer
// goroutine, so readiness is handed back to the event loop over a channel
// that the queue model re-arms a wait command on.
type searchDebouncer struct {
	mu    sync.Mutex
	query string

	ch     chan string
	fire   func()
	cancel func()
}

func newSearchDebouncer(wait time.Duration) *searchDebouncer {
	d := &searchDebouncer{ch: make(chan string, 1)}
	d.fire, d.cancel = debounce.New(wait, func() {
		d.mu.Lock()
		query := d.query
		d.mu.Unlock()

		// Keep only the newest query if the consumer has not caught up.
		select {
		case <-d.ch:
		default:
		}
		d.ch <- query
	})
	return d
}

// Set records the latest query text and (re)starts the debounce window.
func (d *searchDebouncer) Set(query string) {
	d.mu.Lock()
	d.query = query
	d.mu.Unlock()
	d.fire()
}

// Ready yields each settled query exactly once.
func (d *searchDebouncer) Ready() <-chan string {
	return d.ch
}

// Stop cancels any pending debounced call.
func (d *searchDebouncer) Stop() {
	d.cancel()
}
