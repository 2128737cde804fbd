package persistence

import (
	"encoding/json"
	"strconv"
)

// placeholder renders the positional index for SQL assembled around a
// repo.ToSQL fragment.
func placeholder(n int) string {
	return strconv.Itoa(n)
}

// limitClause renders a LIMIT fragment for tree searches. A limit of zero
// or less means unbounded, so no clause is emitted at all: Postgres treats
// LIMIT 0 as "return nothing", which is never what a caller asking for
// everything wants.
func limitClause(args []any, limit int) (string, []any) {
	if limit <= 0 {
		return "", args
	}
	args = append(args, limit)
	return "\nLIMIT $" + placeholder(len(args)), args
}

// Rollup ids are stored as a jsonb array so the stored value is readable
// and order-preserving.
func marshalIDs(ids []int64) ([]byte, error) {
	if ids == nil {
		ids = []int64{}
	}
	return json.Marshal(ids)
}

func unmarshalIDs(raw []byte) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
