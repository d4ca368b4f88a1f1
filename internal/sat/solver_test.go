package sat

import "testing"

// clauseSatisfied reports whether model (indexed by variable ID) satisfies
// the raw literal list lits.
func clauseSatisfied(model []bool, lits []Literal) bool {
	for _, l := range lits {
		v := model[l.VarID()]
		if l.IsPositive() == v {
			return true
		}
	}
	return false
}

// TestSolve_soundness checks property 1: every model the solver reports
// satisfies every original clause it was given.
func TestSolve_soundness(t *testing.T) {
	clauses := [][]Literal{
		{PositiveLiteral(0), PositiveLiteral(1)},
		{NegativeLiteral(0), PositiveLiteral(2)},
		{PositiveLiteral(1), NegativeLiteral(2)},
		{NegativeLiteral(0), NegativeLiteral(1), NegativeLiteral(2)},
	}

	s := NewDefaultSolver()
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}
	for _, c := range clauses {
		if err := s.AddClause(c); err != nil {
			t.Fatalf("AddClause(): %s", err)
		}
	}

	if status := s.Solve(); status != True {
		t.Fatalf("Solve() = %s, want SAT", status)
	}

	model := s.Models[len(s.Models)-1]
	for i, c := range clauses {
		if !clauseSatisfied(model, c) {
			t.Errorf("clause %d (%v) not satisfied by model %v", i, c, model)
		}
	}
}

// TestSolve_modelTotality checks property 4: a SAT result assigns every
// declared variable, never leaving one Unknown.
func TestSolve_modelTotality(t *testing.T) {
	s := NewDefaultSolver()
	for i := 0; i < 4; i++ {
		s.AddVariable()
	}
	if err := s.AddClause([]Literal{PositiveLiteral(0), PositiveLiteral(1)}); err != nil {
		t.Fatalf("AddClause(): %s", err)
	}

	if status := s.Solve(); status != True {
		t.Fatalf("Solve() = %s, want SAT", status)
	}

	model := s.Models[len(s.Models)-1]
	if got := len(model); got != 4 {
		t.Fatalf("len(model) = %d, want 4", got)
	}
}

// TestSolve_unsatAtRootConflict checks that a root-level contradiction (a
// unit clause and its negation) is detected as UNSAT.
func TestSolve_unsatAtRootConflict(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()
	if err := s.AddClause([]Literal{PositiveLiteral(0)}); err != nil {
		t.Fatalf("AddClause(): %s", err)
	}
	if err := s.AddClause([]Literal{NegativeLiteral(0)}); err != nil {
		t.Fatalf("AddClause(): %s", err)
	}

	if status := s.Solve(); status != False {
		t.Errorf("Solve() = %s, want UNSAT", status)
	}
}

// TestAnalyze_derivesUnitLearntClause constructs a small conflict by hand and
// checks that analyze derives a learnt clause that is unit (asserting) once
// the solver backjumps to the level it reports.
func TestAnalyze_derivesUnitLearntClause(t *testing.T) {
	s := NewDefaultSolver()
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}

	// x0 -> x2, x1 -> x2, and x2 is impossible: {-0, 2}, {-1, 2}, {-2}.
	for _, c := range [][]Literal{
		{NegativeLiteral(0), PositiveLiteral(2)},
		{NegativeLiteral(1), PositiveLiteral(2)},
		{NegativeLiteral(2)},
	} {
		if err := s.AddClause(c); err != nil {
			t.Fatalf("AddClause(): %s", err)
		}
	}

	// Decide x0 at level 1. The unit clause {-2} has already set x2 false at
	// level 0, so propagation finds both literals of the first clause false
	// and reports that clause as the conflict.
	s.assume(PositiveLiteral(0))
	conflict := s.Propagate()
	if conflict == nil {
		t.Fatal("Propagate() = nil, want a conflict")
	}

	learnt, backtrackLevel := s.analyze(conflict)
	if len(learnt) == 0 {
		t.Fatal("analyze() returned an empty learnt clause")
	}
	if backtrackLevel != 0 {
		t.Errorf("backtrackLevel = %d, want 0 (the only other literal's antecedent is at level 0)", backtrackLevel)
	}

	s.cancelUntil(backtrackLevel)
	for _, l := range learnt[1:] {
		if s.LitValue(l) != False {
			t.Errorf("learnt clause not unit after backjump: literal %s is %s, want false", l, s.LitValue(l))
		}
	}
}

// TestBumpClaActivity_rescalePreservesOrder checks property 7 at the clause
// level: rescaling clause activities must not change their relative order.
func TestBumpClaActivity_rescalePreservesOrder(t *testing.T) {
	s := NewDefaultSolver()
	for i := 0; i < 2; i++ {
		s.AddVariable()
	}

	c1, _ := NewClause(s, []Literal{PositiveLiteral(0), PositiveLiteral(1)}, true)
	c2, _ := NewClause(s, []Literal{NegativeLiteral(0), NegativeLiteral(1)}, true)
	s.learnts = append(s.learnts, c1, c2)

	s.BumpClaActivity(c1)
	s.BumpClaActivity(c1)
	s.BumpClaActivity(c2)

	before := c1.activity > c2.activity

	s.clauseInc = 1e101 // force a rescale on the next bump
	s.BumpClaActivity(c2)

	after := c1.activity > c2.activity
	if before != after {
		t.Errorf("relative clause activity order changed across rescale: before=%v after=%v", before, after)
	}
}
