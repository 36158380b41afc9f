package classifier

// Default hyperparameters.
const (
	DefaultTrees           = 100
	DefaultMinSamplesSplit = 2
	DefaultMinSamplesLeaf  = 1
	DefaultSeed            = 42

	DefaultMaxIter      = 1000
	DefaultLearningRate = 0.1
	DefaultC            = 1.0
	DefaultTolerance    = 1e-6
)

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

// WithTrees sets the number of trees.
func WithTrees(n int) ForestOption {
	return func(f *RandomForest) {
		if n > 0 {
			f.trees = n
		}
	}
}

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(depth int) ForestOption {
	return func(f *RandomForest) {
		if depth >= 0 {
			f.maxDepth = depth
		}
	}
}

// WithMinSamplesSplit sets the minimum node size eligible for a split.
func WithMinSamplesSplit(n int) ForestOption {
	return func(f *RandomForest) {
		if n >= 2 {
			f.minSamplesSplit = n
		}
	}
}

// WithMinSamplesLeaf sets the minimum number of samples on each side of a split.
func WithMinSamplesLeaf(n int) ForestOption {
	return func(f *RandomForest) {
		if n >= 1 {
			f.minSamplesLeaf = n
		}
	}
}

// WithForestSeed sets the seed for bootstrap sampling and feature selection.
func WithForestSeed(seed int64) ForestOption {
	return func(f *RandomForest) {
		f.seed = seed
	}
}

// LogisticOption configures a Logistic model.
type LogisticOption func(*Logistic)

// WithMaxIter sets the maximum number of gradient steps.
func WithMaxIter(n int) LogisticOption {
	return func(l *Logistic) {
		if n > 0 {
			l.maxIter = n
		}
	}
}

// WithLearningRate sets the gradient descent step size.
func WithLearningRate(lr float64) LogisticOption {
	return func(l *Logistic) {
		if lr > 0 {
			l.learningRate = lr
		}
	}
}

// WithC sets the inverse L2 regularisation strength.
func WithC(c float64) LogisticOption {
	return func(l *Logistic) {
		if c > 0 {
			l.c = c
		}
	}
}

// WithTolerance sets the gradient norm below which training stops.
func WithTolerance(tol float64) LogisticOption {
	return func(l *Logistic) {
		if tol > 0 {
			l.tolerance = tol
		}
	}
}
