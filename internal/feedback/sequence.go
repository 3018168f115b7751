package feedback

// Sequencer hands out increasing request numbers. Only a response carrying the
// latest issued number may be applied.
type Sequencer struct {
	latest uint64
}

// Issue returns the number for a new request, superseding all earlier ones.
func (s *Sequencer) Issue() uint64 {
	s.latest++
	return s.latest
}

// Invalidate makes every request issued so far stale without issuing a new one.
func (s *Sequencer) Invalidate() {
	s.latest++
}

// Current reports whether seq is the most recently issued request.
func (s *Sequencer) Current(seq uint64) bool {
	return seq != 0 && seq == s.latest
}
