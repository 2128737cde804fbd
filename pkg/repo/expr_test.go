package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSQL_Cond(t *testing.T) {
	sql, args := ToSQL(Where("name", OpILike, "Nairobi"), nil)
	assert.Equal(t, "name ILIKE $1", sql)
	require.Len(t, args, 1)
	assert.Equal(t, "%Nairobi%", args[0])
}

func TestToSQL_NestedJunctions(t *testing.T) {
	expr := And(
		Where("parent_id", OpIn, []int64{1, 2}),
		Or(
			Where("name", OpEq, "Westlands"),
			Where("name", OpLike, "West"),
		),
	)
	sql, args := ToSQL(expr, nil)
	assert.Equal(t, "(parent_id = ANY($1) AND (name = $2 OR name LIKE $3))", sql)
	require.Len(t, args, 3)
	assert.Equal(t, []int64{1, 2}, args[0])
	assert.Equal(t, "Westlands", args[1])
	assert.Equal(t, "%West%", args[2])
}

func TestToSQL_NotInIncludesNull(t *testing.T) {
	sql, _ := ToSQL(Where("parent_id", OpNotIn, []int64{7}), nil)
	assert.Equal(t, "(parent_id <> ALL($1) OR parent_id IS NULL)", sql)
}

func TestToSQL_Nil(t *testing.T) {
	sql, args := ToSQL(nil, nil)
	assert.Equal(t, "TRUE", sql)
	assert.Empty(t, args)
}

func TestMatch_Strings(t *testing.T) {
	get := func(field string) any {
		if field == "name" {
			return "Nairobi West"
		}
		return nil
	}

	assert.True(t, Match(Where("name", OpILike, "nairobi"), get))
	assert.True(t, Match(Where("name", OpLike, "West"), get))
	assert.False(t, Match(Where("name", OpLike, "west"), get))
	assert.True(t, Match(Where("name", OpEq, "Nairobi West"), get))
	assert.False(t, Match(Where("name", OpNotILike, "west"), get))
	assert.True(t, Match(Where("name", OpNotEq, "Kisumu"), get))
}

func TestMatch_MembershipWithNullParent(t *testing.T) {
	pid := int64(3)
	withParent := func(field string) any { return &pid }
	orphan := func(field string) any { return (*int64)(nil) }

	in := Where("parent_id", OpIn, []int64{3, 4})
	notIn := Where("parent_id", OpNotIn, []int64{3, 4})

	assert.True(t, Match(in, withParent))
	assert.False(t, Match(notIn, withParent))
	assert.False(t, Match(in, orphan))
	assert.True(t, Match(notIn, orphan), "NULL parent counts as not-in, matching the SQL rendering")
}

func TestMatch_Junctions(t *testing.T) {
	get := func(field string) any {
		switch field {
		case "name":
			return "Kilimani"
		case "id":
			return int64(9)
		}
		return nil
	}

	assert.True(t, Match(And(
		Where("name", OpILike, "kili"),
		Where("id", OpIn, []int64{9}),
	), get))
	assert.False(t, Match(Or(), get), "empty OR matches nothing")
	assert.True(t, Match(And(), get), "empty AND matches everything")
}
