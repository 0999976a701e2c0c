package core

import "context"

// Node represents a single node in the workflow graph and implements Workflow.
// Work items are executed one at a time, so a node never has more than one Exec in flight.
type Node[State any, PrepResult any, ExecResult any] struct {
	node       BaseNode[State, PrepResult, ExecResult]
	successors map[Action]Workflow[State]
}

// NewNode wraps a BaseNode so it can be linked into a Flow
func NewNode[State any, PrepResult any, ExecResult any](basenode BaseNode[State, PrepResult, ExecResult]) *Node[State, PrepResult, ExecResult] {
	return &Node[State, PrepResult, ExecResult]{
		node:       basenode,
		successors: make(map[Action]Workflow[State]),
	}
}

// Run implements the Workflow interface and executes the three-phase execution model
func (n *Node[State, PrepResult, ExecResult]) Run(ctx context.Context, state *State) Action {
	prepRes := n.node.Prep(ctx, state)
	if len(prepRes) == 0 {
		// Nothing to execute, just call Post.
		return n.node.Post(state, prepRes)
	}

	execResults := make([]ExecResult, len(prepRes))
	for i, item := range prepRes {
		execResult, err := n.node.Exec(ctx, item)
		if err != nil {
			execResults[i] = n.node.ExecFallback(err)
			continue
		}
		execResults[i] = execResult
	}

	return n.node.Post(state, prepRes, execResults...)
}

// AddSuccessor links workflow for action; with no action the ActionDefault route is set
func (n *Node[State, PrepResult, ExecResult]) AddSuccessor(workflow Workflow[State], action ...Action) Workflow[State] {
	if workflow == nil {
		return workflow
	}
	if len(action) == 0 {
		n.successors[ActionDefault] = workflow
		return workflow
	}
	n.successors[action[0]] = workflow
	return workflow
}

// GetSuccessor gets the next Workflow as per action.
func (n *Node[State, PrepResult, ExecResult]) GetSuccessor(action Action) Workflow[State] {
	return n.successors[action]
}
