package navigation

// PopUpTo removes history entries above the most recent entry named Name.
// When Inclusive is set, that entry is removed too.
type PopUpTo struct {
	Name      string
	Inclusive bool
}

// Stack is a client back stack. The zero value is empty and ready to use.
// It is not safe for concurrent use.
type Stack struct {
	entries []Route
}

// NewStack returns a stack holding the start route.
func NewStack(start Route) *Stack {
	return &Stack{entries: []Route{start}}
}

// Push adds a route on top of the stack.
func (s *Stack) Push(r Route) {
	s.entries = append(s.entries, r)
}

// Pop removes the top route. The last remaining entry is never popped.
func (s *Stack) Pop() (Route, bool) {
	if len(s.entries) <= 1 {
		return nil, false
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// Current returns the top route, or nil for an empty stack.
func (s *Stack) Current() Route {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Navigate pops entries as described by opt and then pushes r. If no entry
// named opt.Name exists the history is left untouched.
func (s *Stack) Navigate(r Route, opt PopUpTo) {
	if opt.Name != "" {
		for i := len(s.entries) - 1; i >= 0; i-- {
			if s.entries[i].Name() != opt.Name {
				continue
			}
			keep := i + 1
			if opt.Inclusive {
				keep = i
			}
			s.entries = s.entries[:keep]
			break
		}
	}
	s.Push(r)
}

// Entries returns a copy of the history, bottom first.
func (s *Stack) Entries() []Route {
	out := make([]Route, len(s.entries))
	copy(out, s.entries)
	return out
}
