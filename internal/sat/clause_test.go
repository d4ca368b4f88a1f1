package sat

import "testing"

func TestNewClause_unitFactEnqueuesDirectly(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()

	c, ok := NewClause(s, []Literal{PositiveLiteral(0)}, false)
	if c != nil {
		t.Errorf("NewClause() clause = %v, want nil (unit facts are enqueued, not allocated)", c)
	}
	if !ok {
		t.Error("NewClause() ok = false, want true")
	}
	if got := s.VarValue(0); got != True {
		t.Errorf("VarValue(0) = %s, want true", got)
	}
}

func TestNewClause_tautologyIsDropped(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()
	s.AddVariable()

	c, ok := NewClause(s, []Literal{PositiveLiteral(0), NegativeLiteral(0), PositiveLiteral(1)}, false)
	if c != nil || !ok {
		t.Errorf("NewClause() = (%v, %v), want (nil, true) for a tautological clause", c, ok)
	}
}

func TestNewClause_duplicateLiteralsCollapsed(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()
	s.AddVariable()

	c, ok := NewClause(s, []Literal{PositiveLiteral(0), PositiveLiteral(1), PositiveLiteral(0)}, false)
	if !ok || c == nil {
		t.Fatalf("NewClause() = (%v, %v), want a valid clause", c, ok)
	}
	if got := len(c.literals); got != 2 {
		t.Errorf("len(literals) = %d, want 2 after deduplication", got)
	}
}

func TestNewClause_emptyClauseIsUnsat(t *testing.T) {
	s := NewDefaultSolver()
	c, ok := NewClause(s, []Literal{}, false)
	if c != nil || ok {
		t.Errorf("NewClause() = (%v, %v), want (nil, false) for the empty clause", c, ok)
	}
}

// TestPropagate_watchInvariant checks property 5: after Propagate returns
// without conflict, every non-satisfied clause of size >= 2 has exactly two
// watched literals, neither of them false.
func TestPropagate_watchInvariant(t *testing.T) {
	s := NewDefaultSolver()
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}
	if err := s.AddClause([]Literal{PositiveLiteral(0), PositiveLiteral(1), PositiveLiteral(2)}); err != nil {
		t.Fatalf("AddClause(): %s", err)
	}

	// Falsify only the first watched literal: the clause must shift its
	// watch to the still-unassigned third literal rather than forcing
	// anything (the second literal remains unassigned too), so it stays
	// unsatisfied and the invariant must hold exactly.
	s.assume(NegativeLiteral(0))
	if conflict := s.Propagate(); conflict != nil {
		t.Fatalf("Propagate() = %v, want no conflict", conflict)
	}

	c := s.constraints[0]
	watched := map[Literal]bool{
		c.literals[0].Opposite(): true,
		c.literals[1].Opposite(): true,
	}
	if len(watched) != 2 {
		t.Fatalf("clause has %d distinct watched literals, want 2", len(watched))
	}
	for l := range watched {
		if s.LitValue(l) == False {
			t.Errorf("watched literal %s is false", l)
		}
	}
}

func TestPropagate_detectsConflict(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()
	s.AddVariable()
	if err := s.AddClause([]Literal{PositiveLiteral(0), PositiveLiteral(1)}); err != nil {
		t.Fatalf("AddClause(): %s", err)
	}
	s.assume(NegativeLiteral(0))
	s.assume(NegativeLiteral(1))

	conflict := s.Propagate()
	if conflict == nil {
		t.Fatal("Propagate() = nil, want a conflict")
	}
}
