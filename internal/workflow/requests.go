package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/bleak/pkg/formatting"
)

// Decision tokens accepted when resuming create_prompt and evaluate_prompt.
const (
	DecisionQuestions = "questions"
	DecisionTest      = "test"
	DecisionEvaluate  = "evaluate"
	DecisionFinish    = "finish"
)

// Question is a single clarifying question posed to the user.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// AskQuestionsRequest suspends for answers to clarifying questions.
// Resume accepts an object of answers keyed by question id, or an array of
// answers in question order.
type AskQuestionsRequest struct {
	Questions []Question `json:"questions"`
}

func (r *AskQuestionsRequest) Tool() ToolName { return ToolAskQuestions }

func (r *AskQuestionsRequest) Payload() any {
	return map[string]any{"questions": r.Questions}
}

func (r *AskQuestionsRequest) Resume(value json.RawMessage) (Outcome, error) {
	answers, err := r.decodeAnswers(value)
	if err != nil {
		return Outcome{}, err
	}

	var sb strings.Builder
	sb.WriteString("Clarifying questions answered:")
	asked := make([]string, 0, len(r.Questions))

	for _, q := range r.Questions {
		answer, ok := answers[q.ID]
		if !ok {
			answer = "(no answer)"
		}
		fmt.Fprintf(&sb, "\nQ: %s\nA: %s", q.Question, answer)
		asked = append(asked, q.Question)
	}

	update := OverrideLast(AI(sb.String())).
		WithAsked(asked...).
		WithMissingInfo("")

	return Outcome{Update: update, Next: StepGenerateOrImprove}, nil
}

func (r *AskQuestionsRequest) assignIDs() {
	for i := range r.Questions {
		if strings.TrimSpace(r.Questions[i].ID) == "" {
			r.Questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
}

func (r *AskQuestionsRequest) decodeAnswers(value json.RawMessage) (map[string]string, error) {
	if byKey, err := decodeValue[map[string]any](value); err == nil {
		answers := make(map[string]string, len(byKey))
		for key, v := range byKey {
			if !slices.ContainsFunc(r.Questions, func(q Question) bool { return q.ID == key }) {
				return nil, fmt.Errorf("%w: unknown question id %q", ErrResumeMismatch, key)
			}
			answers[key] = renderAnswer(v)
		}
		if len(answers) == 0 {
			return nil, fmt.Errorf("%w: no answers provided", ErrResumeMismatch)
		}
		return answers, nil
	}

	ordered, err := decodeValue[[]any](value)
	if err != nil {
		return nil, fmt.Errorf("%w: answers must be an object keyed by question id or an array", ErrResumeMismatch)
	}
	if len(ordered) == 0 || len(ordered) > len(r.Questions) {
		return nil, fmt.Errorf(
			"%w: got %d answers for %d questions",
			ErrResumeMismatch, len(ordered), len(r.Questions),
		)
	}

	answers := make(map[string]string, len(ordered))
	for i, v := range ordered {
		answers[r.Questions[i].ID] = renderAnswer(v)
	}
	return answers, nil
}

// CreatePromptRequest suspends for a decision on a drafted prompt.
type CreatePromptRequest struct {
	Prompt string `json:"prompt"`
}

func (r *CreatePromptRequest) Tool() ToolName { return ToolCreatePrompt }

func (r *CreatePromptRequest) Payload() any {
	return map[string]any{
		"prompt":  r.Prompt,
		"options": []string{DecisionQuestions, DecisionTest, DecisionEvaluate, DecisionFinish},
	}
}

func (r *CreatePromptRequest) Resume(value json.RawMessage) (Outcome, error) {
	decision, err := decodeDecision(value, DecisionQuestions, DecisionTest, DecisionEvaluate, DecisionFinish)
	if err != nil {
		return Outcome{}, err
	}

	update := OverrideLast(AI("Drafted prompt:\n" + r.Prompt)).WithPrompt(r.Prompt)

	next := map[string]StepName{
		DecisionQuestions: StepAskQuestions,
		DecisionTest:      StepTestPrompt,
		DecisionEvaluate:  StepEvaluatePrompt,
		DecisionFinish:    StepTerminal,
	}[decision]

	return Outcome{Update: update, Next: next}, nil
}

// TestPromptRequest suspends for feedback on a prompt's test output.
type TestPromptRequest struct {
	Result string `json:"result"`
}

func (r *TestPromptRequest) Tool() ToolName { return ToolTestPrompt }

func (r *TestPromptRequest) Payload() any {
	return map[string]any{"result": r.Result}
}

func (r *TestPromptRequest) Resume(value json.RawMessage) (Outcome, error) {
	feedback, err := decodeValue[string](value)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: feedback must be a string", ErrResumeMismatch)
	}

	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return Outcome{}, fmt.Errorf("%w: feedback must not be empty", ErrResumeMismatch)
	}

	update := OverrideLast(
		AI("Test result:\n"+r.Result),
		Human(feedback),
	).WithResult(r.Result)

	return Outcome{Update: update, Next: StepAutoImprove}, nil
}

// EvaluatePromptRequest suspends for a decision on a prompt evaluation.
type EvaluatePromptRequest struct {
	Evaluation  int    `json:"evaluation"`
	MissingInfo string `json:"missing_info"`
}

func (r *EvaluatePromptRequest) Tool() ToolName { return ToolEvaluatePrompt }

func (r *EvaluatePromptRequest) Payload() any {
	return map[string]any{
		"evaluation":   r.Evaluation,
		"missing_info": r.MissingInfo,
		"options":      []string{DecisionQuestions, DecisionTest, DecisionFinish},
	}
}

func (r *EvaluatePromptRequest) Resume(value json.RawMessage) (Outcome, error) {
	decision, err := decodeDecision(value, DecisionQuestions, DecisionTest, DecisionFinish)
	if err != nil {
		return Outcome{}, err
	}

	content := fmt.Sprintf("Prompt evaluation: %d/6.", r.Evaluation)
	if r.MissingInfo != "" {
		content += " Missing information: " + r.MissingInfo
	}
	update := OverrideLast(AI(content))

	switch decision {
	case DecisionQuestions:
		return Outcome{Update: update.WithMissingInfo(r.MissingInfo), Next: StepAskQuestions}, nil
	case DecisionTest:
		return Outcome{Update: update, Next: StepTestPrompt}, nil
	default:
		return Outcome{Update: update, Next: StepTerminal}, nil
	}
}

// SuggestImprovementsRequest suspends for the user to confirm which
// improvements to apply. An empty selection routes back to questioning.
type SuggestImprovementsRequest struct {
	Improvements []string `json:"improvements"`
}

func (r *SuggestImprovementsRequest) Tool() ToolName { return ToolSuggestImprovements }

func (r *SuggestImprovementsRequest) Payload() any {
	return map[string]any{"improvements": r.Improvements}
}

func (r *SuggestImprovementsRequest) Resume(value json.RawMessage) (Outcome, error) {
	selected, err := decodeValue[[]string](value)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: improvements must be a list of strings", ErrResumeMismatch)
	}

	selected = slices.DeleteFunc(selected, func(s string) bool {
		return strings.TrimSpace(s) == ""
	})

	if len(selected) == 0 {
		update := OverrideLast(AI("No improvements selected. Gathering more information."))
		return Outcome{Update: update, Next: StepAskQuestions}, nil
	}

	var sb strings.Builder
	sb.WriteString("Improvements to apply:")
	for _, s := range selected {
		sb.WriteString("\n- ")
		sb.WriteString(strings.TrimSpace(s))
	}

	return Outcome{Update: OverrideLast(AI(sb.String())), Next: StepGenerateOrImprove}, nil
}

// decodeValue decodes a resume value into T. Clients that send JSON wrapped
// in a JSON string are unwrapped once. A null value is never accepted.
func decodeValue[T any](value json.RawMessage) (T, error) {
	var result T
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return result, fmt.Errorf("%w: empty value", ErrResumeMismatch)
	}
	if bytes.Equal(value, []byte("null")) {
		return result, fmt.Errorf("%w: null value", ErrResumeMismatch)
	}

	if err := json.Unmarshal(value, &result); err == nil {
		return result, nil
	}

	var wrapped string
	if err := json.Unmarshal(value, &wrapped); err != nil {
		return result, fmt.Errorf("%w: %s", ErrResumeMismatch, value)
	}

	parsed, err := formatting.Parse[T](wrapped)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrResumeMismatch, err)
	}
	return parsed, nil
}

func decodeDecision(value json.RawMessage, allowed ...string) (string, error) {
	token, err := decodeValue[string](value)
	if err != nil {
		return "", fmt.Errorf("%w: expected one of %s", ErrResumeMismatch, strings.Join(allowed, ", "))
	}

	token = strings.ToLower(strings.TrimSpace(token))
	if !slices.Contains(allowed, token) {
		return "", fmt.Errorf("%w: %q is not one of %s", ErrResumeMismatch, token, strings.Join(allowed, ", "))
	}
	return token, nil
}

func renderAnswer(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = renderAnswer(item)
		}
		return strings.Join(parts, ", ")
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}
