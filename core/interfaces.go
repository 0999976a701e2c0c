package core

import "context"

// BaseNode defines the core interface for all nodes in the workflow
// This follows the three-phase execution model: Prep -> Exec -> Post
type BaseNode[State any, PrepResult any, ExecResult any] interface {
	// Prep reads from the state (and the user) and produces the work items for Exec
	Prep(ctx context.Context, state *State) []PrepResult

	// Exec performs the core logic on a single work item
	Exec(ctx context.Context, prepResult PrepResult) (ExecResult, error)

	// Post folds the results back into the state and picks the next action
	Post(state *State, prepRes []PrepResult, execResults ...ExecResult) Action

	// ExecFallback turns an Exec error into a result Post can report
	ExecFallback(err error) ExecResult
}

// Workflow represents a unit of execution that can be connected to other workflows
// This interface is implemented by both Node and Flow to enable composition
type Workflow[State any] interface {
	// Run executes the workflow logic and returns an action for routing
	Run(ctx context.Context, state *State) Action

	// GetSuccessor returns the successor workflow for a given action
	GetSuccessor(action Action) Workflow[State]

	// AddSuccessor connects a successor workflow for a specific action
	AddSuccessor(successor Workflow[State], action ...Action) Workflow[State]
}
