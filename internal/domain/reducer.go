package domain

import (
	"context"
	"strings"
)

// DefaultReduceBudget caps oracle calls made by StatementReducer.
const DefaultReduceBudget = 200

// Oracle reports whether a candidate statement sequence still fails the same way.
type Oracle func(ctx context.Context, statements []string) (bool, error)

// Reducer shrinks a failing statement sequence while the oracle keeps accepting it.
type Reducer interface {
	Reduce(ctx context.Context, statements []string, oracle Oracle) ([]string, error)
}

// StatementReducer removes whole statements. It first checks whether the
// last statement alone reproduces, then drops statements one at a time.
type StatementReducer struct {
	budget int
}

// NewStatementReducer constructs a StatementReducer limited to budget oracle calls.
func NewStatementReducer(budget int) *StatementReducer {
	if budget <= 0 {
		budget = DefaultReduceBudget
	}

	return &StatementReducer{budget: budget}
}

// Reduce returns the smallest accepted sequence found, or statements unchanged.
func (r *StatementReducer) Reduce(ctx context.Context, statements []string, oracle Oracle) ([]string, error) {
	if len(statements) <= 1 {
		return statements, nil
	}

	calls := 0
	try := func(candidate []string) (bool, error) {
		calls++
		return oracle(ctx, candidate)
	}

	last := statements[len(statements)-1:]

	ok, err := try(last)
	if err != nil {
		return nil, err
	}

	if ok {
		LoggerFromContext(ctx).Debug("Last statement reproduces on its own")
		return last, nil
	}

	current := append([]string(nil), statements...)

	for i := 0; i < len(current) && len(current) > 1 && calls < r.budget; {
		candidate := make([]string, 0, len(current)-1)
		candidate = append(candidate, current[:i]...)
		candidate = append(candidate, current[i+1:]...)

		ok, err := try(candidate)
		if err != nil {
			return nil, err
		}

		if ok {
			current = candidate
			continue
		}

		i++
	}

	LoggerFromContext(ctx).Debug("Reduction finished", "from", len(statements), "to", len(current), "oracleCalls", calls)

	return current, nil
}

// SplitStatements splits a statement log into statements. A statement ends
// on a line whose last non-blank character is ';'.
func SplitStatements(log string) []string {
	var (
		statements []string
		current    strings.Builder
	)

	for _, line := range strings.Split(log, "\n") {
		if strings.TrimSpace(line) == "" && current.Len() == 0 {
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}

		current.WriteString(line)

		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}

// JoinStatements is the inverse of SplitStatements.
func JoinStatements(statements []string) string {
	return strings.Join(statements, "\n")
}
