package proxy

// Slicer cuts an arbitrary incoming byte stream down to a target window.
// It is a pure chunk transform with two counters as its entire state, so its
// memory cost is O(chunk size) regardless of window or asset size, and it is
// independent of any particular I/O loop: feed it chunks as they arrive and
// write whatever it returns.
type Slicer struct {
	start   int64
	length  int64
	skipped int64
	passed  int64
}

// NewSlicer returns a Slicer emitting exactly the bytes of w.
func NewSlicer(w Window) *Slicer {
	return &Slicer{start: w.Start, length: w.Length()}
}

// Next consumes the next upstream chunk and returns the sub-slice of it that
// falls inside the window (possibly empty). The returned slice aliases chunk
// and must be used before the next call.
func (s *Slicer) Next(chunk []byte) []byte {
	if s.Done() || len(chunk) == 0 {
		return nil
	}

	// Discard bytes ahead of the window start.
	if s.skipped < s.start {
		need := s.start - s.skipped
		if int64(len(chunk)) <= need {
			s.skipped += int64(len(chunk))
			return nil
		}
		chunk = chunk[need:]
		s.skipped = s.start
	}

	// Truncate the final chunk exactly at the window boundary.
	if remaining := s.length - s.passed; int64(len(chunk)) > remaining {
		chunk = chunk[:remaining]
	}
	s.passed += int64(len(chunk))
	return chunk
}

// Done reports whether the window has been fully emitted. Once true the
// caller should stop reading upstream instead of waiting for EOF, so the
// upstream connection can be torn down as soon as the needed bytes are
// delivered.
func (s *Slicer) Done() bool {
	return s.passed >= s.length
}
