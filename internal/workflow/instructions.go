package workflow

import (
	"fmt"
	"strings"
)

const clarifyInstructions = `Your task is to call the ask_questions tool.

Read the conversation below and ask the user between 2 and 4 short questions that
help pin down the goal, the context, the desired output format and the role the
assistant should play. Give each question an id (q1, q2, ...) and up to four
answer options. Never offer "Other" as an option.

<conversation>
%s
</conversation>
%s%s
Respond only by calling the ask_questions tool.`

const createInstructions = `Write a prompt that fulfils the user's request below, using any answers
they gave to clarifying questions.

<conversation>
%s
</conversation>

The prompt should state the goal, the relevant context, the expected output format
and the role or tone the model should adopt.

Respond only by calling the create_prompt tool with the prompt.`

const applyInstructions = `Revise the current prompt using the latest input from the conversation.

<conversation>
%s
</conversation>

<current_prompt>
%s
</current_prompt>

<latest_input>
%s
</latest_input>

Keep the original intent and apply the latest input.

Respond only by calling the create_prompt tool with the revised prompt.`

const improveInstructions = `The prompt below was run and produced the result shown. The user then gave
feedback. Suggest 2 or 3 concrete improvements to the prompt.

<prompt>
%s
</prompt>

<result>
%s
</result>

<feedback>
%s
</feedback>

Respond only by calling the suggest_improvements tool.`

const evaluateInstructions = `Rate how complete the prompt below is, from 1 to 6:

1 - the goal is unclear
2 - the goal is clear but context is missing
3 - goal and context are clear, output format is missing
4 - goal, context and format are clear, role or tone is missing
5 - complete, with minor ambiguities
6 - complete and unambiguous

<conversation>
%s
</conversation>

<prompt>
%s
</prompt>

Describe any missing information in missing_info. Respond only by calling the
evaluate_prompt tool.`

func clarifyPrompt(s State) string {
	var asked, missing string

	if len(s.Asked) > 0 {
		asked = "\nThese questions were already asked. Do not repeat them:\n- " +
			strings.Join(s.Asked, "\n- ") + "\n"
	}

	if s.MissingInfo != "" {
		missing = "\nFocus on this missing information:\n" + s.MissingInfo + "\n"
	}

	return fmt.Sprintf(clarifyInstructions, Transcript(s.History), asked, missing)
}

func createPrompt(s State) string {
	return fmt.Sprintf(createInstructions, Transcript(s.History))
}

func applyPrompt(s State) string {
	last, _ := s.Last()
	return fmt.Sprintf(applyInstructions, Transcript(s.History), s.CurrentPrompt, last.Content)
}

func improvePrompt(s State) string {
	return fmt.Sprintf(improveInstructions, s.CurrentPrompt, s.LastResult, s.LastHuman())
}

func evaluatePrompt(s State) string {
	return fmt.Sprintf(evaluateInstructions, Transcript(s.History), s.CurrentPrompt)
}
