package types

// Sequence hands out monotonically increasing integer ids. A Session owns
// one Sequence per entity kind; it is serialized with the session so ids
// stay unique across requests. The zero value starts at 0.
type Sequence struct {
	next int
}

// NewSequence returns a sequence whose next id is start.
func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next id and advances the sequence.
func (s *Sequence) Next() int {
	id := s.next
	s.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (s *Sequence) Peek() int {
	return s.next
}

// Observe advances the sequence past id, so ids loaded from storage are
// never handed out again.
func (s *Sequence) Observe(id int) {
	if id >= s.next {
		s.next = id + 1
	}
}
