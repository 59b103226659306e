package orchestrator

import (
	"context"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
)

// SingleRunWorkflow represents a single analysis and backtest
type SingleRunWorkflow struct {
	orchestrator Orchestrator
}

// NewSingleRunWorkflow creates a new single run workflow
func NewSingleRunWorkflow(orchestrator Orchestrator) Workflow {
	return &SingleRunWorkflow{orchestrator: orchestrator}
}

// Execute runs the single run workflow
func (w *SingleRunWorkflow) Execute(ctx context.Context) (interface{}, error) {
	return w.orchestrator.RunFile(ctx)
}

// GetWorkflowType returns the workflow type
func (w *SingleRunWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeSingle
}

// SweepWorkflow represents a parameter sweep
type SweepWorkflow struct {
	orchestrator Orchestrator
	grid         backtest.Grid
}

// NewSweepWorkflow creates a new sweep workflow
func NewSweepWorkflow(orchestrator Orchestrator, grid backtest.Grid) Workflow {
	return &SweepWorkflow{orchestrator: orchestrator, grid: grid}
}

// Execute runs the sweep workflow
func (w *SweepWorkflow) Execute(ctx context.Context) (interface{}, error) {
	return w.orchestrator.RunSweep(ctx, w.grid)
}

// GetWorkflowType returns the workflow type
func (w *SweepWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeSweep
}
