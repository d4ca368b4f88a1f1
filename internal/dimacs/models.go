package dimacs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseModels reads a ".cnf.models" fixture file: one model per line, each
// model given as the space-separated signed literals (in DIMACS sign
// convention) that are true, terminated by a trailing 0 exactly like a
// DIMACS clause line. It is only used by tests, to check the solver's output
// against models precomputed by a reference solver.
func ParseModels(filename string) ([][]bool, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer file.Close()

	var models [][]bool
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		model := make([]bool, 0, len(fields))
		for _, f := range fields {
			if f == "0" {
				continue
			}
			l, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("dimacs: parsing literal %q: %w", f, err)
			}
			model = append(model, l > 0)
		}
		models = append(models, model)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dimacs: reading %q: %w", filename, err)
	}

	return models, nil
}
