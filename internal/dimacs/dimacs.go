// Package dimacs reads CNF instances in the DIMACS format and loads them
// into a SAT solver, plumbing the external github.com/rhartert/dimacs reader
// through to internal/sat's literal encoding.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	extdimacs "github.com/rhartert/dimacs"

	"github.com/soedirgo/sat-solver/internal/sat"
)

// SATSolver is the subset of *sat.Solver that LoadDIMACS needs: a way to
// introduce variables and to install clauses over them.
type SATSolver interface {
	AddVariable() int
	AddClause([]sat.Literal) error
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file at filename (optionally gzip
// compressed) and loads its formula into solver: one call to AddVariable per
// declared variable, in order, followed by one call to AddClause per clause
// line, in file order.
func LoadDIMACS(filename string, gzipped bool, solver SATSolver) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{solver: solver}
	if err := extdimacs.ReadBuilder(r, b); err != nil {
		return fmt.Errorf("dimacs: parsing %q: %w", filename, err)
	}
	return nil
}

// builder adapts a SATSolver to the github.com/rhartert/dimacs Builder
// contract.
type builder struct {
	solver    SATSolver
	tmpClause []sat.Literal
}

func (b *builder) Problem(nVars int, nClauses int) {
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
	}
}

func (b *builder) Clause(tmpClause []int) {
	b.tmpClause = b.tmpClause[:0]
	for _, l := range tmpClause {
		if l < 0 {
			b.tmpClause = append(b.tmpClause, sat.NegativeLiteral(-l-1))
		} else {
			b.tmpClause = append(b.tmpClause, sat.PositiveLiteral(l-1))
		}
	}
	// AddClause can only fail when called off the root decision level,
	// which parsing never does; the error is not actionable here.
	_ = b.solver.AddClause(b.tmpClause)
}

func (b *builder) Comment(line string) {}
