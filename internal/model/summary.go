package model

import "time"

// PipelineSummary captures metrics from a single pipeline run.
type PipelineSummary struct {
	Pipeline   string
	SourcePath string
	OutputPath string
	RowsRead   int64
	RowsOut    int64
	// RowsByChannel counts output rows per CHANNEL value.
	RowsByChannel map[string]int64
	Duration      time.Duration
}

// RunSummary aggregates every pipeline executed by one run, in order.
type RunSummary struct {
	RunID     string
	Pipelines []*PipelineSummary
	Duration  time.Duration
}

// LoadSummary captures metrics from a warehouse load.
type LoadSummary struct {
	FilePath      string
	FileSHA256    string
	LoadBatchID   string
	RowsRead      int64
	RowsCopied    int64
	RowsRejected  int64
	BatchesPruned int64
	// AlreadyLoaded is set when the file was loaded before and the load
	// was skipped.
	AlreadyLoaded bool
	Duration      time.Duration
}
