// Package radix implements the mixed-radix constrained iterator (spec
// §4.C): lazy, odometer-style enumeration of digit tuples
// (d0, d1, ..., d_{L-1}) with a per-position radix, validated
// prefix-incrementally from the most significant digit down. A failed
// validation at position p skips every tuple sharing the current
// prefix at positions >= p by jumping straight to the next candidate
// value at p (and carrying upward on overflow), rather than exhausting
// every combination of the lower, doomed positions.
//
// The iterator follows the same pull-based, suspend-between-steps
// shape as bufio.Scanner/sql.Rows: call Next until it returns false,
// reading Digits() after each true result. This is the standard
// library idiom for exactly this kind of cooperative, demand-driven
// enumeration (spec §5), and nothing in the reference material offers
// a closer-fitting shape to adapt instead.
package radix

import (
	"errors"
	"time"
)

// ErrEmptyRadix indicates NewIterator was given a radix of 0 at some
// position — such a position has no valid digit value at all.
var ErrEmptyRadix = errors.New("radix: a position's radix must be >= 1")

// Validator is consulted whenever the digit at position pos has just
// been set. Only digits at positions >= pos are defined; a validator
// must not read positions < pos. Returning false prunes every tuple
// sharing the current values at positions >= pos.
type Validator func(pos int, digits []int) bool

// Option configures an Iterator.
type Option func(*Iterator)

// WithDeadline stops enumeration (Next begins returning false) once
// now() is no longer before deadline, checked once between
// emissions (spec §4.C "optional timeout").
func WithDeadline(deadline time.Time) Option {
	return func(it *Iterator) {
		it.hasDeadline = true
		it.deadline = deadline
	}
}

// WithClock overrides the clock WithDeadline compares against,
// primarily for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(it *Iterator) { it.now = now }
}

// Iterator enumerates digit tuples under radices and validator.
type Iterator struct {
	radices   []int
	validator Validator
	digits    []int
	pos       int
	started   bool
	exhausted bool

	hasDeadline bool
	deadline    time.Time
	now         func() time.Time
}

// NewIterator constructs an Iterator. radices[i] must be >= 1 for
// every position i; a radix of 1 means that position has exactly one
// possible value, 0 (useful for an edge whose mode-set already
// collapsed to "always disused").
func NewIterator(radices []int, validator Validator, opts ...Option) (*Iterator, error) {
	for _, r := range radices {
		if r < 1 {
			return nil, ErrEmptyRadix
		}
	}
	it := &Iterator{
		radices:   append([]int(nil), radices...),
		validator: validator,
		digits:    make([]int, len(radices)),
		now:       time.Now,
	}
	for _, o := range opts {
		o(it)
	}
	return it, nil
}

// Next advances to, and validates, the next digit tuple. It returns
// false when enumeration is exhausted or a deadline has passed; Digits
// must not be called again after a false result.
func (it *Iterator) Next() bool {
	if it.exhausted {
		return false
	}
	if it.hasDeadline && !it.deadline.After(it.now()) {
		it.exhausted = true
		return false
	}

	if len(it.digits) == 0 {
		// A zero-length tuple has exactly one (empty) candidate.
		if it.started {
			it.exhausted = true
			return false
		}
		it.started = true
		return true
	}

	if !it.started {
		it.started = true
		it.pos = len(it.digits) - 1
	} else if !it.bumpAndCarry(0) {
		it.exhausted = true
		return false
	}

	for {
		if it.validator(it.pos, it.digits) {
			if it.pos == 0 {
				return true
			}
			it.pos--
			continue
		}
		if !it.bumpAndCarry(it.pos) {
			it.exhausted = true
			return false
		}
	}
}

// bumpAndCarry increments digits[p]; on overflow it zeroes digits[p]
// and carries into p+1, repeating until a position accepts the
// increment or the carry runs past the most significant position.
// On success it.pos is set to the position the carry landed on.
func (it *Iterator) bumpAndCarry(p int) bool {
	for {
		it.digits[p]++
		if it.digits[p] < it.radices[p] {
			it.pos = p
			return true
		}
		it.digits[p] = 0
		p++
		if p >= len(it.digits) {
			return false
		}
	}
}

// Digits returns a copy of the current, fully validated tuple. Only
// meaningful immediately after Next returns true.
func (it *Iterator) Digits() []int {
	return append([]int(nil), it.digits...)
}
