package rul

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestParams controls random forest fitting.
type ForestParams struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	// MaxFeatures is the number of candidate features drawn per split.
	MaxFeatures int
	Seed        int64
}

func (p ForestParams) normalized() ForestParams {
	if p.NEstimators <= 0 {
		p.NEstimators = 100
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 10
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	if p.MaxFeatures <= 0 || p.MaxFeatures > numFeatures {
		p.MaxFeatures = numFeatures
	}
	return p
}

type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
	Leaf      bool    `json:"leaf"`
}

// regressionTree is a flattened CART tree; node 0 is the root.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *regressionTree) predict(x [numFeatures]float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest is a bagged ensemble of regression trees.
type Forest struct {
	Params ForestParams      `json:"params"`
	Trees  []*regressionTree `json:"trees"`
}

// FitForest grows every tree from its own seeded source, so the result does
// not depend on goroutine scheduling.
func FitForest(ctx context.Context, x [][numFeatures]float64, y []float64, params ForestParams) (*Forest, error) {
	params = params.normalized()
	f := &Forest{Params: params, Trees: make([]*regressionTree, params.NEstimators)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := 0; t < params.NEstimators; t++ {
		t := t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(params.Seed + int64(t)*17))
			idx := make([]int, len(x))
			for i := range idx {
				idx[i] = rng.Intn(len(x))
			}
			b := treeBuilder{x: x, y: y, params: params, rng: rng}
			tree := &regressionTree{}
			b.grow(tree, idx, 0)
			f.Trees[t] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Forest) Predict(x [numFeatures]float64) float64 {
	if f == nil || len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

type treeBuilder struct {
	x      [][numFeatures]float64
	y      []float64
	params ForestParams
	rng    *rand.Rand
}

// grow appends the subtree for idx to t and returns its node index.
func (b *treeBuilder) grow(t *regressionTree, idx []int, depth int) int {
	self := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{})

	mean, sse := b.stats(idx)
	if depth >= b.params.MaxDepth || len(idx) < b.params.MinSamplesSplit || sse < 1e-9 {
		t.Nodes[self] = treeNode{Leaf: true, Value: mean}
		return self
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		t.Nodes[self] = treeNode{Leaf: true, Value: mean}
		return self
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(t, left, depth+1)
	r := b.grow(t, right, depth+1)
	t.Nodes[self] = treeNode{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

func (b *treeBuilder) stats(idx []int) (mean, sse float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	mean = sum / n
	sse = sumSq - sum*sum/n
	return mean, sse
}

func (b *treeBuilder) candidateFeatures() []int {
	if b.params.MaxFeatures >= numFeatures {
		return []int{0, 1, 2}
	}
	return b.rng.Perm(numFeatures)[:b.params.MaxFeatures]
}

// bestSplit sweeps each candidate feature in sorted order and minimises the
// summed squared error of the two children.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	best := math.Inf(1)
	sorted := make([]int, len(idx))
	n := len(idx)

	for _, f := range b.candidateFeatures() {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		var totalSum, totalSq float64
		for _, i := range sorted {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		var lSum, lSq float64
		for p := 1; p < n; p++ {
			yi := b.y[sorted[p-1]]
			lSum += yi
			lSq += yi * yi

			lo, hi := b.x[sorted[p-1]][f], b.x[sorted[p]][f]
			if lo == hi {
				continue
			}
			ln := float64(p)
			rn := float64(n - p)
			rSum := totalSum - lSum
			rSq := totalSq - lSq
			score := (lSq - lSum*lSum/ln) + (rSq - rSum*rSum/rn)
			if score < best {
				best = score
				feature = f
				threshold = (lo + hi) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// R2 is the coefficient of determination of pred against actual.
func R2(actual, pred []float64) float64 {
	if len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	var mean float64
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))
	var ssRes, ssTot float64
	for i, v := range actual {
		ssRes += (v - pred[i]) * (v - pred[i])
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
