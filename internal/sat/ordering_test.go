package sat

import "testing"

func TestVarOrder_NextDecisionPicksHighestActivity(t *testing.T) {
	vo := NewVarOrder(0.95, false)
	vo.AddVar(1, true)
	vo.AddVar(1, true)
	vo.AddVar(1, true)

	vo.BumpScore(2)
	vo.BumpScore(2)
	vo.BumpScore(1)

	s := NewDefaultSolver()
	s.AddVariable()
	s.AddVariable()
	s.AddVariable()

	if got := vo.NextDecision(s); got.VarID() != 2 {
		t.Errorf("NextDecision() var = %d, want 2 (highest activity)", got.VarID())
	}
}

func TestVarOrder_NextDecisionSkipsAssigned(t *testing.T) {
	vo := NewVarOrder(0.95, false)
	vo.AddVar(1, true)
	vo.AddVar(5, true) // higher initial score, but will be assigned

	s := NewDefaultSolver()
	s.AddVariable()
	s.AddVariable()
	s.assume(PositiveLiteral(1))

	if got := vo.NextDecision(s); got.VarID() != 0 {
		t.Errorf("NextDecision() var = %d, want 0 (var 1 is already assigned)", got.VarID())
	}
}

func TestVarOrder_phaseSavingReusesLastPolarity(t *testing.T) {
	vo := NewVarOrder(0.95, true)
	vo.AddVar(1, true)

	s := NewDefaultSolver()
	s.AddVariable()

	vo.Reinsert(0, False)

	if got := vo.NextDecision(s); got != NegativeLiteral(0) {
		t.Errorf("NextDecision() = %s, want the negative literal (phase saving remembers False)", got)
	}
}

func TestVarOrder_rescalePreservesOrder(t *testing.T) {
	vo := NewVarOrder(0.95, false)
	vo.AddVar(1, true)
	vo.AddVar(1, true)

	vo.BumpScore(0)
	vo.BumpScore(0)
	vo.BumpScore(1)

	before := vo.scores[0] > vo.scores[1]

	vo.scoreInc = 1e101 // force a rescale on the next bump
	vo.BumpScore(1)

	after := vo.scores[0] > vo.scores[1]
	if before != after {
		t.Errorf("relative order changed across rescale: before=%v after=%v", before, after)
	}
}
