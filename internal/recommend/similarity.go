package recommend

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ItemSimilarityMatrix holds pairwise item-item cosine similarities in
// [-1, 1], symmetric by construction. The self-similarity diagonal is
// present but never consulted by the scorer.
type ItemSimilarityMatrix struct {
	sym       *mat.SymDense
	items     []int64
	itemIndex map[int64]int
}

// ComputeItemSimilarity computes cosine similarity between every pair of
// item column vectors. Unrated cells participate as 0, so this is raw
// cosine similarity; any centering comes from upstream normalization.
// Pairs are independent, so rows are fanned out over workers writing
// disjoint slots. Cancellation is checked once per item row, the only
// long-running loop in the engine besides evaluation.
func ComputeItemSimilarity(ctx context.Context, m *UserItemMatrix, workers int) (*ItemSimilarityMatrix, error) {
	n := m.NumItems()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	cols := make([][]float64, n)
	norms := make([]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = m.columnAt(j)
		norms[j] = floats.Norm(cols[j], 2)
	}

	sim := &ItemSimilarityMatrix{
		sym:       mat.NewSymDense(n, nil),
		items:     m.items,
		itemIndex: m.itemIndex,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j := i; j < n; j++ {
				sim.sym.SetSym(i, j, cosine(cols[i], cols[j], norms[i], norms[j]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sim, nil
}

// Items returns the product ids covered by the matrix, ascending.
func (s *ItemSimilarityMatrix) Items() []int64 { return s.items }

// Similarity returns the similarity between two products. The second
// return is false when either product is absent from the matrix.
func (s *ItemSimilarityMatrix) Similarity(a, b int64) (float64, bool) {
	i, ok := s.itemIndex[a]
	if !ok {
		return 0, false
	}
	j, ok := s.itemIndex[b]
	if !ok {
		return 0, false
	}
	return s.sym.At(i, j), true
}

func cosine(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
