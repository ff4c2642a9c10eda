package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/coderag/internal/db"
)

// GroupCount runs FT.AGGREGATE ... GROUPBY 1 @field REDUCE COUNT 0 AS count.
// Documents without the field are grouped under the empty string.
func (s *Store) GroupCount(ctx context.Context, index, query, field string) (map[string]int, error) {
	if index == "" || field == "" {
		return nil, fmt.Errorf("index and field are required")
	}
	if query == "" {
		query = "*"
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(
		index, query,
		"GROUPBY", "1", "@"+field,
		"REDUCE", "COUNT", "0", "AS", "count",
		"DIALECT", "2",
	).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseGroupCount(raw, field), nil
}

// parseGroupCount reads the RESP2 reply [total, [field, value, count, n], ...].
func parseGroupCount(raw []rueidis.RedisMessage, field string) map[string]int {
	out := make(map[string]int)
	if len(raw) < 2 {
		return out
	}
	for _, row := range raw[1:] {
		pairs, err := row.ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(pairs)
		n, err := strconv.Atoi(fields["count"])
		if err != nil {
			continue
		}
		out[fields[field]] += n
	}
	return out
}
