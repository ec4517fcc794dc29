// Package wdbc compares binary classifiers on the Wisconsin breast
// cancer diagnostic dataset.
//
// The pipeline is: load the diagnostic CSV (dataset), partition it
// deterministically (dataset.NewSplit), train each classifier through
// a uniform adapter (model), and evaluate held-out scores with a
// confusion matrix and exact AUC (metrics). The harness package runs
// every model concurrently and renders a comparison report, and
// cmd/wdbc wraps the whole pipeline in a CLI.
//
// Example:
//
//	d, err := dataset.Load("wdbc.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	split, err := dataset.NewSplit(d, 0.8, 42)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := harness.NewRunner(model.DefaultAdapters(42)).Run(split)
package wdbc
