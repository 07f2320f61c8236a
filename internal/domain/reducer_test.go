package domain

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// containsAll accepts candidates holding every required statement.
func containsAll(required ...string) Oracle {
	return func(_ context.Context, statements []string) (bool, error) {
		for _, r := range required {
			if !slices.Contains(statements, r) {
				return false, nil
			}
		}

		return true, nil
	}
}

func TestStatementReducer_LastStatementHeuristic(t *testing.T) {
	var calls [][]string

	oracle := func(ctx context.Context, statements []string) (bool, error) {
		calls = append(calls, statements)
		return containsAll("c;")(ctx, statements)
	}

	got, err := NewStatementReducer(0).Reduce(context.Background(), []string{"a;", "b;", "c;"}, oracle)
	require.NoError(t, err)

	assert.Equal(t, []string{"c;"}, got)
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"c;"}, calls[0])
}

func TestStatementReducer_GreedyRemoval(t *testing.T) {
	input := []string{"a;", "b;", "c;", "d;", "e;"}

	got, err := NewStatementReducer(0).Reduce(context.Background(), input, containsAll("b;", "e;"))
	require.NoError(t, err)

	assert.Equal(t, []string{"b;", "e;"}, got)
	assert.Equal(t, []string{"a;", "b;", "c;", "d;", "e;"}, input)
}

func TestStatementReducer_BudgetLimitsCalls(t *testing.T) {
	calls := 0
	oracle := func(context.Context, []string) (bool, error) {
		calls++
		return false, nil
	}

	got, err := NewStatementReducer(3).Reduce(context.Background(), []string{"a;", "b;", "c;", "d;", "e;"}, oracle)
	require.NoError(t, err)

	assert.Len(t, got, 5)
	assert.Equal(t, 3, calls)
}

func TestStatementReducer_SingleStatement(t *testing.T) {
	got, err := NewStatementReducer(0).Reduce(context.Background(), []string{"a;"}, func(context.Context, []string) (bool, error) {
		t.Fatal("oracle must not be called")
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a;"}, got)
}

func TestStatementReducer_OracleError(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewStatementReducer(0).Reduce(context.Background(), []string{"a;", "b;"}, func(context.Context, []string) (bool, error) {
		return false, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want []string
	}{
		{"empty", "", nil},
		{"one per line", "select 1;\nselect 2;\n", []string{"select 1;", "select 2;"}},
		{"multi-line statement", "select\n 1;\nselect 2;", []string{"select\n 1;", "select 2;"}},
		{"blank lines", "\nselect 1;\n\n\nselect 2;\n\n", []string{"select 1;", "select 2;"}},
		{"unterminated tail", "select 1;\nselect 2", []string{"select 1;", "select 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStatements(tt.log))
		})
	}
}

func TestJoinStatements(t *testing.T) {
	assert.Equal(t, "select 1;\nselect 2;", JoinStatements([]string{"select 1;", "select 2;"}))
}
