package dataset

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/tksato/wdbc/pkg/errors"
	"github.com/tksato/wdbc/pkg/log"
)

// Split is a disjoint partition of a Dataset into a training side and a
// held-out evaluation side. Every record of the source appears in exactly
// one side. Both the index sets and the derived Datasets are fixed at
// construction; a Split is safe to share read-only across goroutines.
type Split struct {
	Train *Dataset
	Test  *Dataset

	// TrainIndices and TestIndices are the source-dataset row indices of
	// each side, in ascending order.
	TrainIndices []int
	TestIndices  []int
}

// NewSplit partitions d by drawing floor(fraction*n) distinct row indices
// uniformly without replacement from a generator seeded with seed; the
// drawn rows form the training side and the complement forms the test
// side. The same (n, fraction, seed) always yields bit-for-bit the same
// index assignment, which is what makes comparisons across models
// reproducible.
//
// fraction must lie in (0,1). A fraction that rounds one side down to zero
// records is permitted structurally; the evaluator rejects evaluation
// against an empty test partition.
func NewSplit(d *Dataset, fraction float64, seed int64) (*Split, error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, errors.NewValueError("dataset.NewSplit", "fraction must be in (0,1)")
	}
	n := d.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.NewSplit")
	}

	k := int(math.Floor(fraction * float64(n)))

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	trainIdx := append([]int(nil), indices[:k]...)
	testIdx := append([]int(nil), indices[k:]...)
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	s := &Split{
		Train:        d.Subset(trainIdx),
		Test:         d.Subset(testIdx),
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}

	log.GetLoggerWithName("dataset").Info("dataset partitioned",
		log.OperationKey, "split",
		log.FractionKey, fraction,
		log.SeedKey, seed,
		log.TrainSizeKey, len(trainIdx),
		log.TestSizeKey, len(testIdx),
	)
	return s, nil
}

// NewStratifiedSplit partitions d like NewSplit but draws
// floor(fraction*n_c) training rows independently within each label class,
// preserving the class balance on both sides. The overall training size may
// therefore differ from floor(fraction*n) by at most the number of classes.
func NewStratifiedSplit(d *Dataset, fraction float64, seed int64) (*Split, error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, errors.NewValueError("dataset.NewStratifiedSplit", "fraction must be in (0,1)")
	}
	n := d.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.NewStratifiedSplit")
	}

	// Group row indices by raw label, iterating classes in a fixed order
	// so the draw is deterministic.
	classIndices := make(map[string][]int)
	var classes []string
	for i := 0; i < n; i++ {
		label := d.Record(i).RawLabel
		if _, seen := classIndices[label]; !seen {
			classes = append(classes, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}
	sort.Strings(classes)

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	var trainIdx, testIdx []int
	for _, label := range classes {
		indices := classIndices[label]
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		k := int(math.Floor(fraction * float64(len(indices))))
		trainIdx = append(trainIdx, indices[:k]...)
		testIdx = append(testIdx, indices[k:]...)
	}
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	return &Split{
		Train:        d.Subset(trainIdx),
		Test:         d.Subset(testIdx),
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}, nil
}
