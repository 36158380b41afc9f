package evaluation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/model"
)

// Split is a stratified train/test partition of the labelled rows of a table.
type Split struct {
	Table *abt.Table
	Train []abt.Row
	Test  []abt.Row
}

// ClassCounts returns the number of rows per class index.
func ClassCounts(rows []abt.Row) []int {
	counts := make([]int, len(model.ClassOrder))
	for _, r := range rows {
		if r.Class >= 0 && r.Class < len(counts) {
			counts[r.Class]++
		}
	}
	return counts
}

// StratifiedSplit partitions labelled rows into train and test sets preserving
// class proportions. The test set has ceil(fraction*n) rows, allocated to
// classes by largest remainder. Members of each class are shuffled with the
// seeded generator before the test rows are taken.
func StratifiedSplit(rows []abt.Row, fraction float64, seed int64) (train, test []abt.Row, err error) {
	const op = "evaluation.StratifiedSplit"
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, model.ConfigurationError(op, "test_fraction", fmt.Sprintf("hold-out fraction %g outside (0,1)", fraction))
	}
	if len(rows) == 0 {
		return nil, nil, model.ConfigurationError(op, "rows", "no labelled rows to split")
	}

	byClass := make([][]abt.Row, len(model.ClassOrder))
	for _, r := range rows {
		if r.Class < 0 || r.Class >= len(byClass) {
			return nil, nil, model.SchemaError(op, "final_grade", "row of student "+r.StudentID+" has no class")
		}
		byClass[r.Class] = append(byClass[r.Class], r)
	}

	n := len(rows)
	nTest := int(math.Ceil(fraction * float64(n)))
	if nTest >= n {
		return nil, nil, model.ConfigurationError(op, "test_fraction",
			fmt.Sprintf("hold-out of %d rows leaves no training rows out of %d", nTest, n))
	}

	quota := allocate(byClass, nTest)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible sampling, not security
	for c, members := range byClass {
		shuffled := append([]abt.Row(nil), members...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		test = append(test, shuffled[:quota[c]]...)
		train = append(train, shuffled[quota[c]:]...)
	}
	return train, test, nil
}

// allocate distributes total test rows over classes proportionally, handing
// the remainder to the largest fractional parts. Ties go to the lower class.
func allocate(byClass [][]abt.Row, total int) []int {
	n := 0
	for _, m := range byClass {
		n += len(m)
	}
	quota := make([]int, len(byClass))
	type rem struct {
		class int
		frac  float64
	}
	rems := make([]rem, 0, len(byClass))
	assigned := 0
	for c, m := range byClass {
		exact := float64(total) * float64(len(m)) / float64(n)
		quota[c] = int(math.Floor(exact))
		assigned += quota[c]
		rems = append(rems, rem{class: c, frac: exact - float64(quota[c])})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; assigned < total && i < len(rems); i++ {
		c := rems[i].class
		if quota[c] < len(byClass[c]) {
			quota[c]++
			assigned++
		}
	}
	return quota
}

// StratifiedKFold returns k folds of row indices. Each class is shuffled with
// the seeded generator and dealt round robin so every fold holds roughly the
// same class mix.
func StratifiedKFold(y []int, classes, k int, seed int64) [][]int {
	byClass := make([][]int, classes)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible sampling, not security
	folds := make([][]int, k)
	next := 0
	for _, members := range byClass {
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		for _, idx := range members {
			folds[next%k] = append(folds[next%k], idx)
			next++
		}
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds
}
