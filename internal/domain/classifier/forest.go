package classifier

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

// RandomForest is a bagged ensemble of gini decision trees. Each split
// considers sqrt(p) randomly chosen features.
type RandomForest struct {
	trees           int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	seed            int64

	features    int
	classes     int
	ensemble    []*node
	importances []float64
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	f := &RandomForest{
		trees:           DefaultTrees,
		minSamplesSplit: DefaultMinSamplesSplit,
		minSamplesLeaf:  DefaultMinSamplesLeaf,
		seed:            DefaultSeed,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name implements Classifier.
func (f *RandomForest) Name() string { return NameRandomForest }

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	probs     []float64 // leaf class distribution
}

func (n *node) leaf() bool { return n.left == nil }

// treeBuilder holds the state of growing one tree.
type treeBuilder struct {
	x        [][]float64
	y        []int
	classes  int
	mtry     int
	forest   *RandomForest
	rng      *rand.Rand
	decrease []float64 // impurity decrease per feature
}

// Fit implements Classifier.
func (f *RandomForest) Fit(ctx context.Context, x [][]float64, y []int, classes int) error {
	p, err := validate(x, y, classes)
	if err != nil {
		return err
	}

	f.features, f.classes = p, classes
	f.ensemble = make([]*node, 0, f.trees)
	f.importances = make([]float64, p)

	mtry := int(math.Sqrt(float64(p)))
	if mtry < 1 {
		mtry = 1
	}

	n := len(x)
	for t := 0; t < f.trees; t++ {
		if err := ctx.Err(); err != nil {
			f.ensemble = nil
			return err
		}
		b := &treeBuilder{
			x: x, y: y, classes: classes, mtry: mtry, forest: f,
			rng:      rand.New(rand.NewSource(f.seed + int64(t))), //nolint:gosec // reproducible sampling, not security
			decrease: make([]float64, p),
		}
		sample := make([]int, n)
		for i := range sample {
			sample[i] = b.rng.Intn(n)
		}
		f.ensemble = append(f.ensemble, b.grow(sample, 0))

		var total float64
		for _, d := range b.decrease {
			total += d
		}
		if total > 0 {
			for j, d := range b.decrease {
				f.importances[j] += d / total
			}
		}
	}

	var sum float64
	for _, v := range f.importances {
		sum += v
	}
	if sum > 0 {
		for j := range f.importances {
			f.importances[j] /= sum
		}
	}
	return nil
}

// Predict implements Classifier. Tree class distributions are averaged.
func (f *RandomForest) Predict(x [][]float64) ([]int, error) {
	if len(f.ensemble) == 0 {
		return nil, ErrNotFitted
	}
	if err := checkRows(x, f.features); err != nil {
		return nil, err
	}
	out := make([]int, len(x))
	probs := make([]float64, f.classes)
	for i, row := range x {
		for k := range probs {
			probs[k] = 0
		}
		for _, tree := range f.ensemble {
			n := tree
			for !n.leaf() {
				if row[n.feature] <= n.threshold {
					n = n.left
				} else {
					n = n.right
				}
			}
			for k, p := range n.probs {
				probs[k] += p
			}
		}
		out[i] = argmax(probs)
	}
	return out, nil
}

// Importances implements Importancer with mean decrease in impurity.
func (f *RandomForest) Importances() []float64 {
	return append([]float64(nil), f.importances...)
}

func (b *treeBuilder) counts(sample []int) []float64 {
	c := make([]float64, b.classes)
	for _, i := range sample {
		c[b.y[i]]++
	}
	return c
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}

func (b *treeBuilder) grow(sample []int, depth int) *node {
	counts := b.counts(sample)
	n := float64(len(sample))
	impurity := gini(counts, n)

	leaf := func() *node {
		probs := make([]float64, b.classes)
		for k, c := range counts {
			probs[k] = c / n
		}
		return &node{probs: probs}
	}

	f := b.forest
	if impurity == 0 || len(sample) < f.minSamplesSplit || len(sample) < 2*f.minSamplesLeaf ||
		(f.maxDepth > 0 && depth >= f.maxDepth) {
		return leaf()
	}

	bestFeature, bestThreshold, bestScore := -1, 0.0, math.Inf(1)
	sorted := make([]int, len(sample))
	for _, feature := range b.rng.Perm(len(b.decrease))[:b.mtry] {
		copy(sorted, sample)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][feature] < b.x[sorted[j]][feature]
		})

		left := make([]float64, b.classes)
		right := append([]float64(nil), counts...)
		for i := 0; i < len(sorted)-1; i++ {
			cls := b.y[sorted[i]]
			left[cls]++
			right[cls]--

			nl := i + 1
			nr := len(sorted) - nl
			cur, next := b.x[sorted[i]][feature], b.x[sorted[i+1]][feature]
			if cur == next || nl < f.minSamplesLeaf || nr < f.minSamplesLeaf {
				continue
			}
			score := float64(nl)*gini(left, float64(nl)) + float64(nr)*gini(right, float64(nr))
			if score < bestScore {
				threshold := cur + (next-cur)/2
				if threshold >= next {
					threshold = cur
				}
				bestFeature, bestThreshold, bestScore = feature, threshold, score
			}
		}
	}
	if bestFeature < 0 {
		return leaf()
	}

	var lo, hi []int
	for _, i := range sample {
		if b.x[i][bestFeature] <= bestThreshold {
			lo = append(lo, i)
		} else {
			hi = append(hi, i)
		}
	}
	if len(lo) == 0 || len(hi) == 0 {
		return leaf()
	}
	b.decrease[bestFeature] += n*impurity - bestScore

	return &node{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      b.grow(lo, depth+1),
		right:     b.grow(hi, depth+1),
	}
}
