// Package workflow implements the resumable prompt-refinement state machine:
// the message model, the state reducer, the step graph, the tool-call
// dispatcher and the driver that runs threads to completion or suspension.
package workflow

import "fmt"

// BuildGraph assembles the prompt-refinement graph. Every model-invoking
// step hands off to the tool supervisor, which suspends; resumed tool
// requests choose the next step.
func BuildGraph(rt *Runtime, entry StepName) (*Graph, error) {
	g := NewGraph()

	steps := []struct {
		name StepName
		step Step
	}{
		{StepGenerateOrImprove, GenerateOrImproveStep(rt)},
		{StepAskQuestions, AskQuestionsStep(rt)},
		{StepTestPrompt, TestPromptStep(rt)},
		{StepAutoImprove, AutoImproveStep(rt)},
		{StepEvaluatePrompt, EvaluatePromptStep(rt)},
		{StepToolSupervisor, ToolSupervisorStep()},
	}

	for _, s := range steps {
		if err := g.AddStep(s.name, s.step); err != nil {
			return nil, err
		}
	}

	for _, from := range []StepName{
		StepGenerateOrImprove,
		StepAskQuestions,
		StepTestPrompt,
		StepAutoImprove,
		StepEvaluatePrompt,
	} {
		if err := g.AddEdge(from, StepToolSupervisor); err != nil {
			return nil, err
		}
	}

	// tool_supervisor -> resolved tool targets
	if err := g.AddEdge(
		StepToolSupervisor,
		StepAskQuestions,
		StepGenerateOrImprove,
		StepTestPrompt,
		StepAutoImprove,
		StepEvaluatePrompt,
		StepTerminal,
	); err != nil {
		return nil, err
	}

	if entry == "" {
		entry = StepGenerateOrImprove
	}
	if entry != StepGenerateOrImprove && entry != StepAskQuestions {
		return nil, fmt.Errorf("entry step must be %s or %s, got %s", StepGenerateOrImprove, StepAskQuestions, entry)
	}
	if err := g.SetEntryPoint(entry); err != nil {
		return nil, err
	}

	return g, nil
}

// modelStep reports whether name invokes the model and so can be retried.
func modelStep(name StepName) bool {
	switch name {
	case StepGenerateOrImprove, StepAskQuestions, StepTestPrompt, StepAutoImprove, StepEvaluatePrompt:
		return true
	}
	return false
}
