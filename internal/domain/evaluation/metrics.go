package evaluation

// Scores are the test-set metrics of one fitted model.
type Scores struct {
	Accuracy        float64 `json:"accuracy"`
	PrecisionMacro  float64 `json:"precision_macro"`
	RecallMacro     float64 `json:"recall_macro"`
	F1Macro         float64 `json:"f1_macro"`
	ConfusionMatrix [][]int `json:"confusion_matrix"` // rows true class, columns predicted
}

// Score computes accuracy, macro metrics over all classes and the confusion
// matrix. A class with no predicted or no true rows scores 0 for the
// undefined ratio.
func Score(yTrue, yPred []int, classes int) Scores {
	cm := make([][]int, classes)
	for i := range cm {
		cm[i] = make([]int, classes)
	}
	correct := 0
	for i, t := range yTrue {
		cm[t][yPred[i]]++
		if t == yPred[i] {
			correct++
		}
	}

	s := Scores{ConfusionMatrix: cm}
	if len(yTrue) > 0 {
		s.Accuracy = float64(correct) / float64(len(yTrue))
	}
	for c := 0; c < classes; c++ {
		tp := cm[c][c]
		predicted, actual := 0, 0
		for k := 0; k < classes; k++ {
			predicted += cm[k][c]
			actual += cm[c][k]
		}
		precision := safeDiv(float64(tp), float64(predicted))
		recall := safeDiv(float64(tp), float64(actual))
		s.PrecisionMacro += precision
		s.RecallMacro += recall
		s.F1Macro += safeDiv(2*precision*recall, precision+recall)
	}
	s.PrecisionMacro /= float64(classes)
	s.RecallMacro /= float64(classes)
	s.F1Macro /= float64(classes)
	return s
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
