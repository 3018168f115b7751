// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package feedback

import "time"

// DefaultDebounce is the quiescence window after the last keystroke before an
// analysis is requested.
const DefaultDebounce = 180 * time.Millisecond

// Token identifies one armed timer. The zero Token is never armed.
type Token uint64

// Trigger describes what a call to Debouncer.Notify did to the timer.
type Trigger struct {
	// Cancelled is the token that was pending before the call, zero if none.
	Cancelled Token
	// Armed is the new pending token. It is zero when the value was empty,
	// meaning the caller must clear the analysis right away.
	Armed Token
}

// Debouncer collapses a burst of input into a single trigger per window. It
// never touches a clock itself: the host arms a timer for every Armed token and
// reports it back through Fire.
type Debouncer struct {
	window time.Duration
	last   Token
	armed  Token
	value  string
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Notify records the latest input value.
func (d *Debouncer) Notify(value string) Trigger {
	t := Trigger{Cancelled: d.Cancel()}
	if value == "" {
		return t
	}

	d.last++
	d.armed = d.last
	d.value = value
	t.Armed = d.armed
	return t
}

// Cancel disarms the pending timer and returns its token, zero if nothing was
// pending.
func (d *Debouncer) Cancel() Token {
	cancelled := d.armed
	d.armed = 0
	d.value = ""
	return cancelled
}

// Fire reports that the timer for token elapsed. It yields the debounced value
// only when token is still the armed one.
func (d *Debouncer) Fire(token Token) (string, bool) {
	if token == 0 || token != d.armed {
		return "", false
	}
	value := d.value
	d.armed = 0
	d.value = ""
	return value, true
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	return d.armed != 0
}
