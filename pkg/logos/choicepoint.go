package logos

// ChoicePoint is a snapshot taken whenever more than one rule clause or
// disjunct remains to be tried. Backtracking pops the most recent choice
// point, truncates the goal stack and bindings log to its snapshot, and
// resumes at its next alternative.
type ChoicePoint struct {
	GoalStackLength int
	TrailDepth      int
	Next            Goal
}

// choicePointStack is a LIFO stack of ChoicePoints. Every entry's
// GoalStackLength and TrailDepth are guaranteed <= the current positions
// at the time it is pushed.
type choicePointStack struct {
	frames []*ChoicePoint
}

func (s *choicePointStack) push(cp *ChoicePoint) {
	s.frames = append(s.frames, cp)
}

func (s *choicePointStack) pop() (*ChoicePoint, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	n := len(s.frames) - 1
	cp := s.frames[n]
	s.frames = s.frames[:n]
	return cp, true
}

func (s *choicePointStack) depth() int { return len(s.frames) }

// truncate discards every choice point at or after index depth, used by
// the negation guard to drop both its own choice point and any leftover
// internal choice points from the negated goal when that goal succeeds.
func (s *choicePointStack) truncate(depth int) {
	if depth < len(s.frames) {
		s.frames = s.frames[:depth]
	}
}
