// Package log defines standard attribute keys for harness operations.
//
// Using these keys consistently keeps the structured output filterable:
// every fit, predict and evaluate emits the same field names regardless
// of which model produced it.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the classifier variant.
	// Examples: "random_forest", "gradient_boosting", "xgboost", "mlp"
	ModelNameKey = "model.name"

	// RunIDKey carries the unique identifier of one fit/predict/evaluate cycle.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "split", "fit", "predict", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "model", "metrics", "harness"
	ComponentKey = "component"
)

// Data shape and partitioning.
const (
	// SamplesKey indicates the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// TrainSizeKey / TestSizeKey carry the realized partition sizes.
	TrainSizeKey = "split.train_size"
	TestSizeKey  = "split.test_size"

	// FractionKey and SeedKey record the partitioning configuration,
	// which together make a run reproducible.
	FractionKey = "split.fraction"
	SeedKey     = "split.seed"
)

// Evaluation outcomes.
const (
	// AUCKey carries the area under the ROC curve for one model.
	AUCKey = "eval.auc"

	// AccuracyKey carries thresholded accuracy on the test partition.
	AccuracyKey = "eval.accuracy"

	// ThresholdKey records the decision threshold used for the confusion matrix.
	ThresholdKey = "eval.threshold"

	// DurationMsKey records wall-clock time of an operation in milliseconds.
	DurationMsKey = "duration_ms"
)
