package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/miosync/miochat/core"
	"github.com/miosync/miochat/llm"
	"github.com/miosync/miochat/render"
	"github.com/miosync/miochat/session"
	"go.uber.org/zap"
)

// ChatState is the loop state of the REPL.
type ChatState struct {
	Active    bool
	Exchanges int // successful replies
	Failures  int // failed provider calls
}

// PrepResult carries one user message to Exec.
type PrepResult struct {
	Input string
}

// ExecResult is the outcome of one provider round trip.
type ExecResult struct {
	Turn session.Turn
	Err  error
}

// ChatNode reads lines, runs commands, and submits messages to the provider.
type ChatNode struct {
	session  *session.Session
	provider llm.Provider
	commands *Commands
	renderer *render.Renderer
	in       *bufio.Reader
	out      io.Writer
	logger   *zap.Logger
	welcome  string
	welcomed bool

	readerOnce sync.Once
	lines      chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NodeOptions configures a ChatNode.
type NodeOptions struct {
	In       io.Reader
	Out      io.Writer
	Models   []string
	Renderer *render.Renderer
	Logger   *zap.Logger
	Welcome  string
}

// NewChatNode creates the REPL node for a session.
func NewChatNode(s *session.Session, provider llm.Provider, opts NodeOptions) *ChatNode {
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.Options{Plain: true})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Welcome == "" {
		opts.Welcome = "Chat started. Type /help for commands or 'exit' to quit."
	}
	return &ChatNode{
		session:  s,
		provider: provider,
		commands: NewCommands(s, opts.Models, opts.Renderer),
		renderer: opts.Renderer,
		in:       bufio.NewReader(opts.In),
		out:      opts.Out,
		logger:   opts.Logger,
		welcome:  opts.Welcome,
	}
}

// Prep prompts until the user sends a message. Commands are handled here and never reach Exec.
// An empty result ends the loop.
func (c *ChatNode) Prep(ctx context.Context, state *ChatState) []PrepResult {
	if !c.welcomed {
		fmt.Fprintln(c.out, c.welcome)
		c.welcomed = true
	}

	for {
		if ctx.Err() != nil {
			state.Active = false
			return nil
		}

		fmt.Fprint(c.out, "You: ")
		line, err := c.readLine(ctx)
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				c.logger.Warn("failed to read input", zap.Error(err))
			}
			fmt.Fprintln(c.out)
			state.Active = false
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			fmt.Fprintln(c.out, "Please enter a message or 'exit' to quit.")
			continue
		}

		if IsCommand(input) {
			res, err := c.commands.Execute(input)
			if err != nil {
				fmt.Fprintln(c.out, "Error: "+err.Error())
				continue
			}
			if res.Exit {
				state.Active = false
				return nil
			}
			fmt.Fprintln(c.out, res.Output)
			continue
		}

		return []PrepResult{{Input: input}}
	}
}

// readLine waits for the next input line or for ctx to be cancelled.
// The blocking read runs in its own goroutine so cancellation does not wait for Enter.
func (c *ChatNode) readLine(ctx context.Context) (string, error) {
	c.readerOnce.Do(func() {
		c.lines = make(chan lineResult)
		go c.readLoop(ctx)
	})

	select {
	case r := <-c.lines:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *ChatNode) readLoop(ctx context.Context) {
	for {
		line, err := c.in.ReadString('\n')
		select {
		case c.lines <- lineResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// Exec sends the message through the session.
func (c *ChatNode) Exec(ctx context.Context, prep PrepResult) (ExecResult, error) {
	turn, err := c.session.Submit(ctx, c.provider, prep.Input)
	if err != nil {
		return ExecResult{}, err
	}
	return ExecResult{Turn: turn}, nil
}

// Post prints the reply or the error and keeps the loop going until the user exits.
func (c *ChatNode) Post(state *ChatState, prepRes []PrepResult, execResults ...ExecResult) core.Action {
	if len(prepRes) == 0 {
		fmt.Fprintln(c.out, "Goodbye!")
		return core.ActionSuccess
	}

	res := execResults[0]
	if res.Err != nil {
		state.Failures++
		fmt.Fprintln(c.out, render.ErrorLine(res.Err.Error()))
		return core.ActionContinue
	}

	state.Exchanges++
	fmt.Fprintln(c.out, c.renderer.Turn(res.Turn))
	fmt.Fprintln(c.out)
	return core.ActionContinue
}

// ExecFallback hands the error to Post for display.
func (c *ChatNode) ExecFallback(err error) ExecResult {
	return ExecResult{Err: err}
}

// Run drives the node in a self-loop until the user exits, input ends, or ctx is cancelled.
func Run(ctx context.Context, node *ChatNode) (*ChatState, core.Action) {
	n := core.NewNode[ChatState, PrepResult, ExecResult](node)
	n.AddSuccessor(n, core.ActionContinue)

	state := &ChatState{Active: true}
	action := core.NewFlow[ChatState](n).Run(ctx, state)
	return state, action
}
