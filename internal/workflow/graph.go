package workflow

import (
	"context"
	"fmt"
	"slices"
)

// StepName identifies a step in the conversation graph.
type StepName string

const (
	StepAskQuestions      StepName = "ask_questions"
	StepGenerateOrImprove StepName = "generate_or_improve_prompt"
	StepToolSupervisor    StepName = "tool_supervisor"
	StepTestPrompt        StepName = "test_prompt"
	StepAutoImprove       StepName = "autoimprove"
	StepEvaluatePrompt    StepName = "evaluate_prompt"
	StepTerminal          StepName = "__end__"
)

// Step reads the current state and produces an outcome. Steps never mutate
// the state they receive.
type Step func(ctx context.Context, s State) (Outcome, error)

// Outcome is the result of running a step: a state update and either the
// next step to run or a suspension awaiting external input.
type Outcome struct {
	Update  Update
	Next    StepName
	Suspend *Suspension
}

// Graph is a step registry with an explicit transition table.
type Graph struct {
	steps map[StepName]Step
	edges map[StepName][]StepName
	entry StepName
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		steps: make(map[StepName]Step),
		edges: make(map[StepName][]StepName),
	}
}

// AddStep registers a step under name.
func (g *Graph) AddStep(name StepName, step Step) error {
	if name == "" || name == StepTerminal {
		return fmt.Errorf("%w: reserved step name %q", ErrUnknownStep, name)
	}
	if step == nil {
		return fmt.Errorf("step %s: nil step function", name)
	}
	if _, ok := g.steps[name]; ok {
		return fmt.Errorf("step %s already registered", name)
	}
	g.steps[name] = step
	return nil
}

// AddEdge allows transitions from one step to each of the targets.
func (g *Graph) AddEdge(from StepName, to ...StepName) error {
	if _, ok := g.steps[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, from)
	}
	for _, target := range to {
		if _, ok := g.steps[target]; !ok && target != StepTerminal {
			return fmt.Errorf("%w: %s", ErrUnknownStep, target)
		}
		if !slices.Contains(g.edges[from], target) {
			g.edges[from] = append(g.edges[from], target)
		}
	}
	return nil
}

// SetEntryPoint sets the step that starts every conversation.
func (g *Graph) SetEntryPoint(name StepName) error {
	if _, ok := g.steps[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}
	g.entry = name
	return nil
}

// EntryPoint returns the configured entry step.
func (g *Graph) EntryPoint() StepName {
	return g.entry
}

// Step returns the step registered under name.
func (g *Graph) Step(name StepName) (Step, error) {
	step, ok := g.steps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}
	return step, nil
}

// CanTransition reports whether the edge from -> to exists.
func (g *Graph) CanTransition(from, to StepName) bool {
	return slices.Contains(g.edges[from], to)
}

// Transition validates the edge from -> to.
func (g *Graph) Transition(from, to StepName) error {
	if !g.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
