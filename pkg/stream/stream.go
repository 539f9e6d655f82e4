// Package stream provides the single-pass, pull-based sequence that carries
// Contexts and build objects between pipeline stages.
//
// A Stream can be traversed once. When it is exhausted, or its producer has
// failed, every further Next returns false: a second consumer sees an empty
// remainder, not an error. Consumers that need to share a sequence
// materialize it with Collect and give each consumer its own FromSlice
// stream.
package stream

// PullFunc produces the next element. ok is false when the sequence ends.
type PullFunc[T any] func() (item T, ok bool, err error)

// Stream is a lazily produced, single-consumer sequence.
type Stream[T any] struct {
	pull  PullFunc[T]
	done  bool
	err   error
	taken int
}

// New wraps a producer. Nothing is produced until the first Next.
func New[T any](pull PullFunc[T]) *Stream[T] {
	return &Stream[T]{pull: pull}
}

// FromSlice returns a fresh stream over a materialized sequence.
func FromSlice[T any](items []T) *Stream[T] {
	i := 0
	return New(func() (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		item := items[i]
		i++
		return item, true, nil
	})
}

// Next returns the next element, or false once the stream is exhausted or
// failed.
func (s *Stream[T]) Next() (T, bool) {
	var zero T
	if s.done {
		return zero, false
	}
	item, ok, err := s.pull()
	if err != nil {
		s.err = err
		s.done = true
		return zero, false
	}
	if !ok {
		s.done = true
		return zero, false
	}
	s.taken++
	return item, true
}

// Err is the first error reported by the producer.
func (s *Stream[T]) Err() error { return s.err }

// Taken counts the elements handed out so far.
func (s *Stream[T]) Taken() int { return s.taken }

// Done reports whether the stream can produce nothing more.
func (s *Stream[T]) Done() bool { return s.done }

// Collect drains the remainder into a slice.
func (s *Stream[T]) Collect() ([]T, error) {
	var items []T
	for {
		item, ok := s.Next()
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, s.err
}

// ForEach calls fn for every remaining element and stops at the first
// error from fn or from the producer.
func (s *Stream[T]) ForEach(fn func(T) error) error {
	for {
		item, ok := s.Next()
		if !ok {
			return s.err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Map returns a stream applying fn lazily to every element of s.
func Map[T, U any](s *Stream[T], fn func(T) (U, error)) *Stream[U] {
	return New(func() (U, bool, error) {
		var zero U
		item, ok := s.Next()
		if !ok {
			return zero, false, s.Err()
		}
		out, err := fn(item)
		if err != nil {
			return zero, false, err
		}
		return out, true, nil
	})
}
