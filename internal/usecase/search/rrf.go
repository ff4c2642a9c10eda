package search

import (
	"sort"

	"github.com/kailas-cloud/coderag/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges vector and keyword rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// A chunk found by both keeps the vector hit so its distance survives.
func fuseRRF(knn, bm25 []result.Result, topK int) []result.Result {
	type scored struct {
		res   result.Result
		score float64
		order int
	}

	merged := make(map[string]*scored, len(knn)+len(bm25))
	add := func(rank int, r result.Result) {
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[r.ID()]; ok {
			existing.score += s
			return
		}
		merged[r.ID()] = &scored{res: r, score: s, order: len(merged)}
	}
	for rank, r := range knn {
		add(rank, r)
	}
	for rank, r := range bm25 {
		add(rank, r)
	}

	all := make([]*scored, 0, len(merged))
	for _, s := range merged {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].order < all[j].order
	})

	if len(all) > topK {
		all = all[:topK]
	}
	results := make([]result.Result, len(all))
	for i, s := range all {
		results[i] = s.res.WithScore(s.score)
	}
	return results
}
