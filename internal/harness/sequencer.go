package harness

import "sync"

// sequencer releases results in index order as they complete. A result is
// emitted only once every result before it has been emitted.
type sequencer struct {
	mu      sync.Mutex
	results []*CaseResult
	done    []bool
	next    int
	emit    func(*CaseResult)
}

func newSequencer(results []*CaseResult, emit func(*CaseResult)) *sequencer {
	return &sequencer{
		results: results,
		done:    make([]bool, len(results)),
		emit:    emit,
	}
}

func (s *sequencer) complete(i int, res *CaseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[i] = res
	s.done[i] = true
	for s.next < len(s.results) && s.done[s.next] {
		s.emit(s.results[s.next])
		s.next++
	}
}

// drain finalizes every result that never completed with mark, then emits
// whatever remains.
func (s *sequencer) drain(mark func(*CaseResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, res := range s.results {
		if !s.done[i] {
			mark(res)
			s.done[i] = true
		}
	}
	for ; s.next < len(s.results); s.next++ {
		s.emit(s.results[s.next])
	}
}
