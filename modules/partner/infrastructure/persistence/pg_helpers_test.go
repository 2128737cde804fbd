package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitClause(t *testing.T) {
	args := []any{"Kenya", int64(7)}

	clause, out := limitClause(args, 25)
	assert.Equal(t, "\nLIMIT $3", clause)
	assert.Equal(t, []any{"Kenya", int64(7), 25}, out)

	// Zero means unbounded: no clause, no extra argument. Rendering
	// LIMIT 0 would make every unbounded search return nothing.
	clause, out = limitClause(args, 0)
	assert.Empty(t, clause)
	assert.Equal(t, []any{"Kenya", int64(7)}, out)

	clause, out = limitClause(nil, -1)
	assert.Empty(t, clause)
	assert.Nil(t, out)
}
