package classifier

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Logistic is multinomial (softmax) logistic regression with L2
// regularisation, trained by full-batch gradient descent from zero weights.
//
// The objective is mean cross-entropy plus ||W||^2 / (2*C*n). Intercepts are
// not penalised.
type Logistic struct {
	maxIter      int
	learningRate float64
	c            float64
	tolerance    float64

	features int
	classes  int
	weights  *mat.Dense // classes x features
	bias     []float64
	iters    int
}

// NewLogistic creates an unfitted logistic regression.
func NewLogistic(opts ...LogisticOption) *Logistic {
	l := &Logistic{
		maxIter:      DefaultMaxIter,
		learningRate: DefaultLearningRate,
		c:            DefaultC,
		tolerance:    DefaultTolerance,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name implements Classifier.
func (l *Logistic) Name() string { return NameLogistic }

// Iterations returns the number of gradient steps taken by the last Fit.
func (l *Logistic) Iterations() int { return l.iters }

// Fit implements Classifier.
func (l *Logistic) Fit(ctx context.Context, x [][]float64, y []int, classes int) error {
	p, err := validate(x, y, classes)
	if err != nil {
		return err
	}

	n := len(x)
	xm := design(x, p)
	onehot := mat.NewDense(n, classes, nil)
	for i, c := range y {
		onehot.Set(i, c, 1)
	}

	l.features, l.classes = p, classes
	l.weights = mat.NewDense(classes, p, nil)
	l.bias = make([]float64, classes)

	probs := mat.NewDense(n, classes, nil)
	gradW := mat.NewDense(classes, p, nil)
	reg := mat.NewDense(classes, p, nil)
	gradB := make([]float64, classes)
	inv := 1 / float64(n)
	penalty := 1 / (l.c * float64(n))

	for l.iters = 0; l.iters < l.maxIter; l.iters++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// residual = softmax(XW' + b) - Y
		l.probabilities(xm, probs)
		probs.Sub(probs, onehot)

		gradW.Mul(probs.T(), xm)
		gradW.Scale(inv, gradW)
		reg.Scale(penalty, l.weights)
		gradW.Add(gradW, reg)
		maxGrad := math.Max(mat.Max(gradW), -mat.Min(gradW))
		for k := range gradB {
			gradB[k] = mat.Sum(probs.ColView(k)) * inv
			maxGrad = math.Max(maxGrad, math.Abs(gradB[k]))
		}

		gradW.Scale(l.learningRate, gradW)
		l.weights.Sub(l.weights, gradW)
		for k, g := range gradB {
			l.bias[k] -= l.learningRate * g
		}
		if maxGrad < l.tolerance {
			l.iters++
			break
		}
	}
	return nil
}

// Predict implements Classifier.
func (l *Logistic) Predict(x [][]float64) ([]int, error) {
	if l.weights == nil {
		return nil, ErrNotFitted
	}
	if err := checkRows(x, l.features); err != nil {
		return nil, err
	}
	out := make([]int, len(x))
	if len(x) == 0 {
		return out, nil
	}
	probs := mat.NewDense(len(x), l.classes, nil)
	l.probabilities(design(x, l.features), probs)
	for i := range out {
		out[i] = argmax(probs.RawRowView(i))
	}
	return out, nil
}

// Coefficients returns a copy of the class by feature weight matrix.
func (l *Logistic) Coefficients() [][]float64 {
	if l.weights == nil {
		return nil
	}
	out := make([][]float64, l.classes)
	for k := range out {
		out[k] = mat.Row(nil, k, l.weights)
	}
	return out
}

// design packs rows into an n x p matrix.
func design(x [][]float64, p int) *mat.Dense {
	data := make([]float64, 0, len(x)*p)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(len(x), p, data)
}

// probabilities writes the row-wise softmax of xW' + b into dst.
func (l *Logistic) probabilities(x mat.Matrix, dst *mat.Dense) {
	dst.Mul(x, l.weights.T())
	rows, _ := dst.Dims()
	for i := 0; i < rows; i++ {
		row := dst.RawRowView(i)
		maxLogit := math.Inf(-1)
		for k := range row {
			row[k] += l.bias[k]
			maxLogit = math.Max(maxLogit, row[k])
		}
		var sum float64
		for k := range row {
			row[k] = math.Exp(row[k] - maxLogit)
			sum += row[k]
		}
		for k := range row {
			row[k] /= sum
		}
	}
}
