package runner

import (
	"context"
	"sync"
)

// Script is an in-memory Runner that records calls and answers from a
// callback. Other packages use it to drive code paths without spawning
// processes.
type Script struct {
	Respond func(Command) Result

	mu    sync.Mutex
	calls []Command
}

func (s *Script) Run(_ context.Context, c Command) Result {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()

	if s.Respond == nil {
		return Result{}
	}
	return s.Respond(c)
}

// Calls returns a copy of every command run so far.
func (s *Script) Calls() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.calls))
	copy(out, s.calls)
	return out
}
