// Package sat implements a CDCL (Conflict-Driven Clause Learning) decision
// procedure for propositional formulas in conjunctive normal form.
package sat

import (
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
)

// Solver holds every piece of mutable state the search needs: the clause
// database, the watch index, the assignment trail, the implication graph,
// and the variable order. None of it is safe for concurrent use; a Solver
// is meant to be driven by a single goroutine for its entire lifetime.
type Solver struct {
	// Clause database. Learnt clauses are appended and never evicted by
	// activity; Simplify drops clauses of either list once they are
	// satisfied at the root level.
	constraints []*Clause
	learnts     []*Clause
	clauseInc   float64
	clauseDecay float64

	// Variable ordering (VSIDS).
	order       *VarOrder
	varDecay    float64
	phaseSaving bool

	// Propagation and watchers.
	watchers  [][]watcher
	propQueue *Queue[Literal]

	// Value assigned to each literal (assigns[l] and assigns[l.Opposite()]
	// are always complementary).
	assigns []LBool

	// Trail and implication graph.
	trail    []Literal
	trailLim []int
	reason   []*Clause
	level    []int

	// Set once the problem is known unsatisfiable at the root level.
	unsat bool

	// Search statistics, exported so the CLI layer can report them.
	TotalConflicts  int64
	TotalRestarts   int64
	TotalIterations int64
	startTime       time.Time

	// Stop conditions.
	hasStopCond bool
	maxConflict int64
	timeout     time.Duration

	// Every model found so far (more than one only when the caller adds
	// blocking clauses between Solve calls, see the model-enumeration
	// pattern used by the integration tests).
	Models [][]bool

	// Reused scratch state, shared to avoid reallocating on every call.
	seenVar     *ResetSet
	tmpWatchers []watcher
	tmpLearnts  []Literal
	tmpReason   []Literal
	tmpSeenInit []int

	log *logrus.Logger
}

// watcher is an entry in a literal's watch list: a clause watching that
// literal, plus a blocking guard literal that lets Propagate skip loading
// the clause entirely when the guard is already true.
type watcher struct {
	clause *Clause
	guard  Literal
}

// Options configures a Solver's search heuristics, stop conditions, and
// diagnostics. Use DefaultOptions as a starting point.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	MaxConflicts  int64         // negative disables the conflict-count stop condition
	Timeout       time.Duration // negative disables the wall-clock stop condition
	PhaseSaving   bool

	// Logger receives search progress at debug level and nothing at all
	// otherwise. A nil Logger disables progress reporting (the default);
	// result formatting never goes through it.
	Logger *logrus.Logger
}

// DefaultOptions mirrors the classic MiniSat tuning: a clause activity decay
// of 0.999, a variable activity decay of 0.95, no stop condition, and phase
// saving disabled.
var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	MaxConflicts:  -1,
	Timeout:       -1,
	PhaseSaving:   false,
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NewSolver returns a new, empty Solver (no variables, no clauses) ready to
// have AddVariable/AddClause called on it.
func NewSolver(ops Options) *Solver {
	logger := ops.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(discardWriter{})
	}

	s := &Solver{
		clauseDecay: ops.ClauseDecay,
		varDecay:    ops.VariableDecay,
		clauseInc:   1,
		propQueue:   NewQueue[Literal](128),
		maxConflict: -1,
		timeout:     -1,
		seenVar:     &ResetSet{},
		phaseSaving: ops.PhaseSaving,
		order:       NewVarOrder(ops.VariableDecay, ops.PhaseSaving),
		log:         logger,
	}

	if ops.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = ops.MaxConflicts
	}
	if ops.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = ops.Timeout
	}

	return s
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.maxConflict <= s.TotalConflicts {
		return true
	}
	if s.timeout >= 0 && s.timeout <= time.Since(s.startTime) {
		return true
	}
	return false
}

// PositiveLiteral returns the literal asserting that variable varID is true.
func (s *Solver) PositiveLiteral(varID int) Literal {
	return PositiveLiteral(varID)
}

// NegativeLiteral returns the literal asserting that variable varID is false.
func (s *Solver) NegativeLiteral(varID int) Literal {
	return NegativeLiteral(varID)
}

func (s *Solver) NumVariables() int { return len(s.assigns) / 2 }
func (s *Solver) NumAssigns() int   { return len(s.trail) }
func (s *Solver) NumConstraints() int { return len(s.constraints) }
func (s *Solver) NumLearnts() int   { return len(s.learnts) }

func (s *Solver) VarValue(x int) LBool  { return s.assigns[PositiveLiteral(x)] }
func (s *Solver) LitValue(l Literal) LBool { return s.assigns[l] }

// AddVariable introduces a new variable and returns its ID (IDs start at 0
// and are assigned sequentially).
func (s *Solver) AddVariable() int {
	index := s.NumVariables()
	s.watchers = append(s.watchers, nil, nil) // one per literal
	s.reason = append(s.reason, nil)
	s.seenVar.Expand()

	s.assigns = append(s.assigns, Unknown, Unknown)
	s.level = append(s.level, -1)

	s.order.AddVar(1, true)
	return index
}

// Watch registers c to be woken up when watch becomes true. guard is the
// clause's other watched literal, used as a cheap pre-check before loading
// the clause into Propagate.
func (s *Solver) Watch(c *Clause, watch Literal, guard Literal) {
	s.watchers[watch] = append(s.watchers[watch], watcher{clause: c, guard: guard})
}

// Unwatch removes c from watch's watch list.
func (s *Solver) Unwatch(c *Clause, watch Literal) {
	j := 0
	for i := 0; i < len(s.watchers[watch]); i++ {
		if s.watchers[watch][i].clause != c {
			s.watchers[watch][j] = s.watchers[watch][i]
			j++
		}
	}
	s.watchers[watch] = s.watchers[watch][:j]
}

// AddClause adds an original (non-learnt) clause to the problem. It must
// only be called at decision level 0. A clause that is trivially
// unsatisfiable marks the solver unsat rather than returning an error, since
// "this instance is UNSAT" is a valid, expected outcome rather than a
// programming error.
func (s *Solver) AddClause(clause []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause called at decision level %d, want 0", s.decisionLevel())
	}

	// Seed each variable's initial VSIDS activity with the number of
	// original clauses it appears in (§4.4: "1 + count of original clauses
	// containing v or −v"), before the clause is simplified/deduplicated by
	// NewClause. Each distinct variable in the raw clause is bumped once.
	s.tmpSeenInit = s.tmpSeenInit[:0]
	for _, l := range clause {
		v := l.VarID()
		seen := false
		for _, sv := range s.tmpSeenInit {
			if sv == v {
				seen = true
				break
			}
		}
		if !seen {
			s.tmpSeenInit = append(s.tmpSeenInit, v)
			s.order.BumpInitialScore(v)
		}
	}

	c, ok := NewClause(s, clause, false)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.unsat = true
	}
	return nil
}

// Simplify drops constraints and learnt clauses that are satisfied at the
// root level. It may only be called at decision level 0 with an empty
// propagation queue; violating either precondition is a programming error,
// not a recoverable one, since no input can cause it.
func (s *Solver) Simplify() bool {
	if l := s.decisionLevel(); l != 0 {
		log.Fatalf("sat: Simplify called on non root-level: %d", l)
	}
	if s.propQueue.Size() != 0 {
		log.Fatal("sat: Simplify called with a non-empty propagation queue")
	}

	if s.unsat || s.Propagate() != nil {
		s.unsat = true
		return false
	}

	s.simplifyPtr(&s.learnts)
	s.simplifyPtr(&s.constraints)
	return true
}

func (s *Solver) simplifyPtr(clausesPtr *[]*Clause) {
	clauses := *clausesPtr
	j := 0
	for i := 0; i < len(clauses); i++ {
		if clauses[i].Simplify(s) {
			clauses[i].Remove(s)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*clausesPtr = clauses[:j]
}

func (s *Solver) decisionLevel() int { return len(s.trailLim) }

// Solve runs the CDCL search to completion (or until a configured stop
// condition fires, in which case it returns Unknown). Calling Solve again
// after it returns True resumes search with the existing trail cleared but
// every learnt clause and activity retained — the pattern used to enumerate
// every model of a formula by adding a blocking clause between calls.
func (s *Solver) Solve() LBool {
	nConflicts := 100
	status := Unknown
	s.startTime = time.Now()

	for status == Unknown {
		status = s.Search(nConflicts)
		nConflicts += nConflicts / 10

		if s.shouldStop() {
			break
		}
	}

	s.log.WithFields(logrus.Fields{
		"iterations": s.TotalIterations,
		"conflicts":  s.TotalConflicts,
		"restarts":   s.TotalRestarts,
		"learnts":    len(s.learnts),
		"elapsed":    time.Since(s.startTime),
		"status":     status.String(),
	}).Debug("search finished")

	s.cancelUntil(0)
	return status
}

// BumpClaActivity increases c's activity, rescaling every learnt clause's
// activity (and the increment) if necessary to stay within float64 range.
func (s *Solver) BumpClaActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

func (s *Solver) DecayClaActivity() { s.clauseInc *= s.clauseDecay }
func (s *Solver) DecayVarActivity() { s.order.DecayScores() }

// Propagate drains the propagation queue to a fixpoint, returning the first
// clause found to be conflicting, or nil if every clause watching an
// assigned literal remains consistent.
func (s *Solver) Propagate() *Clause {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()

		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			// Skipping clauses whose guard is already true changes
			// propagation order relative to a naive scheme (and so which
			// conflicts/learnt clauses are produced) but never correctness:
			// it only avoids loading clauses that would be no-ops anyway.
			if s.LitValue(w.guard) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}

			if w.clause.Propagate(s, l) {
				continue
			}

			// Conflict: re-append the watchers not yet visited so the watch
			// index stays consistent, then abort propagation.
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return s.tmpWatchers[i].clause
		}
	}
	return nil
}

// enqueue records l as true (and −l as false) at the current decision level
// with the given antecedent clause (nil for decisions and root-level
// facts). It returns false if l was already false (a conflict).
func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		varID := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[varID] = s.decisionLevel()
		s.reason[varID] = from
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// explain returns the antecedent literals of l's assignment, or of the
// conflict itself when l is the sentinel literal −1.
func (s *Solver) explain(c *Clause, l Literal) []Literal {
	if l == -1 {
		return c.ExplainFailure(s)
	}
	return c.ExplainAssign(s, l)
}

// analyze derives a 1-UIP learned clause from a conflicting clause, walking
// the trail backwards from the conflict. nImplicationPoints counts how many
// literals assigned at the current decision level still have unresolved
// paths back to the conflict; the first-UIP is the unique trail literal at
// which that count reaches zero. This is the counting form of the
// weight-distribution characterization of 1-UIP: a node's weight reaches 1
// (i.e. it absorbs every path through it) exactly when it is the last
// current-level predecessor left to expand.
//
// It returns the learned clause (its first literal is the negation of the
// first UIP) and the second-highest decision level represented in it, the
// level to backjump to.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	nImplicationPoints := 0

	s.tmpLearnts = append(s.tmpLearnts[:0], -1) // slot 0 reserved for the FUIP

	nextLiteral := len(s.trail) - 1
	l := Literal(-1) // sentinel representing the conflict itself
	s.seenVar.Clear()
	backtrackLevel := 0

	for {
		for _, q := range s.explain(confl, l) {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)

			if s.level[v] == s.decisionLevel() {
				nImplicationPoints++
				continue
			}

			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if lv := s.level[v]; lv > backtrackLevel {
				backtrackLevel = lv
			}
		}

		// Walk the trail backwards, skipping variables not seen in this
		// analysis, to the next seen literal; its reason clause is the next
		// antecedent source.
		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			v := l.VarID()
			confl = s.reason[v]
			if s.seenVar.Contains(v) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = l.Opposite()
	return s.tmpLearnts, backtrackLevel
}

// record installs a freshly learned clause and immediately asserts its first
// literal (the negation of the first UIP), which is always unit on the clause
// once the solver has
// backjumped to the clause's backtrack level. Every variable appearing in
// the learnt clause has its VSIDS activity bumped (§4.4).
func (s *Solver) record(clause []Literal) {
	for _, l := range clause {
		s.order.BumpScore(l.VarID())
	}

	c, _ := NewClause(s, clause, true)
	s.enqueue(clause[0], c)
	if c != nil {
		s.learnts = append(s.learnts, c)
	}
}

// Search runs propagate/analyze/decide until either a stop condition fires,
// the formula is found UNSAT (a conflict at decision level 0), a model is
// found (every variable assigned with no conflict), or nConflicts conflicts
// have been seen, in which case it returns Unknown to signal the caller
// should restart with relaxed limits.
func (s *Solver) Search(nConflicts int) LBool {
	if s.unsat {
		return False
	}

	s.TotalRestarts++
	conflictCount := 0

	for !s.shouldStop() {
		s.TotalIterations++

		if conflict := s.Propagate(); conflict != nil {
			conflictCount++
			s.TotalConflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				return False
			}

			learntClause, backtrackLevel := s.analyze(conflict)
			s.cancelUntil(backtrackLevel)
			s.record(learntClause)

			s.DecayClaActivity()
			s.DecayVarActivity()
			continue
		}

		// No conflict.
		if s.decisionLevel() == 0 {
			s.Simplify()
		}

		if s.NumAssigns() == s.NumVariables() {
			s.saveModel()
			s.cancelUntil(0)
			return True
		}

		if conflictCount > nConflicts {
			s.cancelUntil(0)
			return Unknown
		}

		l := s.order.NextDecision(s)
		s.assume(l)
	}

	return Unknown
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.Reinsert(v, s.assigns[l])
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = nil
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, nil)
}

func (s *Solver) cancel() {
	c := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; c != 0; c-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil unwinds the trail until the decision level is at most level,
// reinserting every variable it unassigns into the variable order.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			log.Fatal("sat: saveModel called with an incomplete assignment")
		}
		model[i] = lb == True
	}
	s.Models = append(s.Models, model)
}
