package sat

import "strings"

// Clause is an unordered set of distinct literals, no variable of which
// appears with both polarities (such clauses are dropped at construction).
// The first two literals are always the ones currently watched.
type Clause struct {
	activity float64

	// The clause's literals. Must always contain at least two literals.
	literals []Literal

	// Whether the clause was learnt during search, as opposed to being part
	// of the original problem.
	learnt bool

	// Backing slice handed out by the pool allocator (see clause_alloc.go /
	// clause_allocpool.go), tracked so Remove can return it. Unused under
	// the default (!clausepool) build.
	sliceRef *[]Literal
}

// NewClause builds a clause from tmpLiterals, which is consumed (it may be
// reordered and truncated in place). It returns (nil, true) when the clause
// is trivially satisfied or was installed as a unit fact rather than
// allocated, and (nil, false) when the clause renders the problem
// unsatisfiable (the empty clause).
//
// Non-learnt clauses are simplified on construction: duplicate literals are
// collapsed, tautological clauses (containing both a literal and its
// negation) are dropped, and literals already false at the root level are
// removed. Learnt clauses skip this pass; the conflict analyzer already
// guarantees they are duplicate-free.
func NewClause(s *Solver, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}

		for i := size - 1; i >= 0; i-- {
			// If the opposite literal is in the clause, then the clause is
			// always true.
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true
			}

			// Remove the literal if it is already present.
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
				continue
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // clause is always true
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}

		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		// Empty clauses cannot be satisfied.
		return nil, false
	case 1:
		// Directly enqueue unit facts; no clause object is needed to watch a
		// singleton.
		return nil, s.enqueue(tmpLiterals[0], nil)
	default:
		c := newClause(tmpLiterals, learnt)

		if learnt {
			// Watch the literal assigned at the highest level (besides the
			// first-UIP literal in position 0) as the second watch, so the
			// clause becomes unit on c.literals[0] as soon as the solver
			// backjumps to backtrackLevel.
			maxLevel := -1
			wl := -1
			for i := 1; i < len(c.literals); i++ {
				if level := s.level[c.literals[i].VarID()]; level > maxLevel {
					maxLevel = level
					wl = i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])

		return c, true
	}
}

// Remove unregisters the clause from the watch index and returns its literal
// slice to the pool allocator. It does not mutate the clause store slice;
// callers are responsible for that.
func (c *Clause) Remove(s *Solver) {
	s.Unwatch(c, c.literals[0].Opposite())
	s.Unwatch(c, c.literals[1].Opposite())
	freeClause(c)
}

// Simplify drops literals already falsified at the root level and reports
// whether the clause is satisfied at the root level (and can be discarded
// entirely).
func (c *Clause) Simplify(s *Solver) bool {
	j := 0
	for i := 0; i < len(c.literals); i++ {
		switch s.LitValue(c.literals[i]) {
		case True:
			return true
		case False:
			// discard the literal
		default:
			c.literals[j] = c.literals[i]
			j++
		}
	}
	c.literals = c.literals[:j]
	return false
}

// Propagate is called when l has just been made true and c currently watches
// −l, which is therefore now false. It re-establishes the two-watched-literals invariant for c, possibly
// enqueuing a forced literal. It returns false exactly when c is now a
// conflict (every literal falsified).
func (c *Clause) Propagate(s *Solver, l Literal) bool {
	// Normalize so that the falsified literal sits at c.literals[1]; this
	// keeps c.literals[0] as the sole candidate to be forced when no other
	// watch can be found.
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0] = c.literals[1]
		c.literals[1] = opp
	}

	if s.LitValue(c.literals[0]) == True {
		s.Watch(c, l, c.literals[0])
		return true
	}

	for i := 2; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1] = c.literals[i]
			c.literals[i] = l.Opposite()
			s.Watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	// No other unwatched literal is available: the clause is unit on
	// literals[0] if it is not already falsified, else it is a conflict.
	s.Watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], c)
}

// ExplainFailure returns the negation of every literal in c, used when c is
// the conflicting clause itself.
func (c *Clause) ExplainFailure(s *Solver) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for _, l := range c.literals {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	if c.learnt {
		s.BumpClaActivity(c)
	}
	return s.tmpReason
}

// ExplainAssign returns the antecedents of c.literals[0] being forced by c:
// the negation of every other literal in c.
func (c *Clause) ExplainAssign(s *Solver, l Literal) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for i := 1; i < len(c.literals); i++ {
		s.tmpReason = append(s.tmpReason, c.literals[i].Opposite())
	}
	if c.learnt {
		s.BumpClaActivity(c)
	}
	return s.tmpReason
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
