package orchestrator

import (
	"context"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
)

// Orchestrator coordinates loading, analysis, backtesting and reporting
type Orchestrator interface {
	// RunFile analyzes and backtests the configured data file
	RunFile(ctx context.Context) (*RunResult, error)

	// RunSweep analyzes the configured data file once and backtests every grid point
	RunSweep(ctx context.Context, grid backtest.Grid) (*SweepResult, error)
}

// Workflow represents different execution workflows
type Workflow interface {
	// Execute runs the workflow and returns results
	Execute(ctx context.Context) (interface{}, error)

	// GetWorkflowType returns the type of workflow
	GetWorkflowType() WorkflowType
}

// WorkflowType represents different types of workflows
type WorkflowType string

const (
	WorkflowTypeSingle WorkflowType = "single"
	WorkflowTypeSweep  WorkflowType = "sweep"
)

// RunResult is the outcome of a single run
type RunResult struct {
	Analysis *Analysis
	Results  *backtest.Results
	Files    []string
	Duration time.Duration
}

// SweepResult is the outcome of a parameter sweep, ranked best first
type SweepResult struct {
	Analysis *Analysis
	Results  []backtest.JobResult
	Best     *backtest.JobResult
	File     string
	Duration time.Duration
}
