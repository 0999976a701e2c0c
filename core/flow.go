package core

import "context"

// Flow represents a workflow subgraph that implements Workflow interface
type Flow[State any] struct {
	startNode  Workflow[State]
	successors map[Action]Workflow[State]
}

// NewFlow creates a new flow starting at startNode
func NewFlow[State any](startNode Workflow[State]) *Flow[State] {
	return &Flow[State]{
		startNode:  startNode,
		successors: make(map[Action]Workflow[State]),
	}
}

// Run follows action-based transitions from the start node until no successor is
// found. A cancelled context stops the flow before the next workflow runs.
func (f *Flow[State]) Run(ctx context.Context, state *State) Action {
	currentWorkflow := f.startNode
	if currentWorkflow == nil {
		return ActionFailure
	}
	var finalAction Action = ActionSuccess

	for currentWorkflow != nil {
		if ctx.Err() != nil {
			return ActionFailure
		}

		action := currentWorkflow.Run(ctx, state)
		finalAction = action

		nextWorkflow := currentWorkflow.GetSuccessor(action)

		// If no successor found in current workflow, check flow-level successors
		if nextWorkflow == nil {
			nextWorkflow = f.GetSuccessor(action)
		}

		currentWorkflow = nextWorkflow
	}
	return finalAction
}

// GetSuccessor implements the Workflow interface - returns the successor workflow for a given action
func (f *Flow[State]) GetSuccessor(action Action) Workflow[State] {
	return f.successors[action]
}

// AddSuccessor implements the Workflow interface - connects a successor workflow for a specific action
func (f *Flow[State]) AddSuccessor(successor Workflow[State], action ...Action) Workflow[State] {
	if successor == nil {
		return successor
	}
	if len(action) == 0 {
		action = append(action, ActionSuccess)
	}
	f.successors[action[0]] = successor
	return successor
}
