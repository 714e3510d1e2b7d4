package radix

// Translator maps a fully validated digit tuple to a caller-defined
// result value (spec §4.C "the caller supplies a translator
// digits -> user_value"). The slice passed in is only valid for the
// duration of the call; implementations that need to retain it must
// copy.
type Translator[T any] func(digits []int) T

// Mapped pairs an Iterator with a Translator, so callers can pull
// translated values directly instead of re-deriving them from Digits
// after every Next.
type Mapped[T any] struct {
	it        *Iterator
	translate Translator[T]
}

// NewMapped wraps it with translate.
func NewMapped[T any](it *Iterator, translate Translator[T]) *Mapped[T] {
	return &Mapped[T]{it: it, translate: translate}
}

// Next advances the underlying Iterator, returning false once
// enumeration is exhausted.
func (m *Mapped[T]) Next() bool { return m.it.Next() }

// Value translates the iterator's current digit tuple. Only
// meaningful immediately after Next returns true.
func (m *Mapped[T]) Value() T { return m.translate(m.it.Digits()) }
