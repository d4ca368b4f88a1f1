package sat

import (
	"log"

	"github.com/rhartert/yagh"
)

// VarOrder maintains a VSIDS-style priority order over the solver's
// variables: the next decision always selects an unassigned variable with
// maximal activity.
type VarOrder struct {
	// Binary heap giving O(log n) access to the variable with the highest
	// score. Ties are broken by insertion order, which matches the order in
	// which variables are declared via AddVar.
	order *yagh.IntMap[float64]

	scores     []float64 // in [0, 1e100)
	scoreInc   float64   // in (0, 1e100)
	scoreDecay float64   // in (0, 1]

	phases      []LBool
	phaseSaving bool
}

// NewVarOrder returns a new, empty VarOrder. decay is the per-conflict decay
// factor applied to scoreInc (see DecayScores); phaseSaving controls whether
// NextDecision reuses a variable's last assigned polarity.
func NewVarOrder(decay float64, phaseSaving bool) *VarOrder {
	return &VarOrder{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		phases:      make([]LBool, 0),
		phaseSaving: phaseSaving,
	}
}

// AddVar registers a new variable with the given initial score and phase.
func (vo *VarOrder) AddVar(initScore float64, initPhase bool) {
	varID := len(vo.phases)

	vo.scores = append(vo.scores, initScore)
	vo.phases = append(vo.phases, Lift(initPhase))

	vo.order.GrowBy(1)
	vo.order.Put(varID, -initScore)
}

// Reinsert returns variable v to the pool of decision candidates. val is the
// value v held just before being unassigned; it feeds phase saving when
// enabled. Must be called whenever the solver unassigns v (backjump,
// restart).
func (vo *VarOrder) Reinsert(v int, val LBool) {
	if vo.phaseSaving {
		vo.phases[v] = val
	}
	vo.order.Put(v, -vo.scores[v])
}

// DecayScores grows the bump increment so that future BumpScore calls count
// for relatively more than past ones, which is equivalent to decaying every
// existing score.
func (vo *VarOrder) DecayScores() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// BumpInitialScore adds a fixed increment of 1 to v's score, independent of
// the decaying scoreInc. It is used once per original clause a variable
// appears in, to seed VSIDS activity with each variable's clause degree
// before search begins (see AddClause).
func (vo *VarOrder) BumpInitialScore(v int) {
	vo.scores[v]++
	if vo.order.Contains(v) {
		vo.order.Put(v, -vo.scores[v])
	}
}

// BumpScore increases v's activity by the current bump increment. May
// trigger a rescale of every score (and the increment) to keep values within
// float64 range; rescaling preserves relative order (see
// rescaleScoresAndIncrement).
func (vo *VarOrder) BumpScore(v int) {
	newScore := vo.scores[v] + vo.scoreInc
	vo.scores[v] = newScore
	if vo.order.Contains(v) {
		vo.order.Put(v, -newScore)
	}
	if newScore > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// NextDecision pops the unassigned variable with maximal activity and
// returns the literal to assign it to, choosing the saved phase when phase
// saving is enabled and the variable has one, or the positive literal
// otherwise.
func (vo *VarOrder) NextDecision(s *Solver) Literal {
	for {
		next, ok := vo.order.Pop()
		if !ok {
			log.Fatal("NextDecision called with no unassigned variable left")
		}
		if s.VarValue(next.Elem) != Unknown {
			continue // already assigned, stale heap entry
		}

		switch vo.phases[next.Elem] {
		case False:
			return NegativeLiteral(next.Elem)
		default:
			return PositiveLiteral(next.Elem)
		}
	}
}

// rescaleScoresAndIncrement multiplies every score and the bump increment by
// 1e-100. Because every quantity is scaled by the same constant, the order
// induced by the scores (and hence the heap's pop order) is unchanged.
func (vo *VarOrder) rescaleScoresAndIncrement() {
	vo.scoreInc *= 1e-100
	for v, sc := range vo.scores {
		newScore := sc * 1e-100
		vo.scores[v] = newScore
		if vo.order.Contains(v) {
			vo.order.Put(v, -newScore)
		}
	}
}
