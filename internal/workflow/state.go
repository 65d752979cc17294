package workflow

import (
	"encoding/json"
	"fmt"
)

// State is the per-thread conversation record.
type State struct {
	History       []Message `json:"history"`
	CurrentPrompt string    `json:"current_prompt,omitempty"`
	LastResult    string    `json:"last_result,omitempty"`
	MissingInfo   string    `json:"missing_info,omitempty"`
	Asked         []string  `json:"asked,omitempty"`
	Cursor        StepName  `json:"cursor"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	c.History = cloneMessages(s.History)
	if s.Asked != nil {
		c.Asked = append([]string(nil), s.Asked...)
	}
	return c
}

// Last returns the most recent history entry.
func (s State) Last() (Message, bool) {
	if len(s.History) == 0 {
		return Message{}, false
	}
	return s.History[len(s.History)-1], true
}

// LastHuman returns the content of the most recent human message.
func (s State) LastHuman() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleHuman {
			return s.History[i].Content
		}
	}
	return ""
}

// MergeStrategy selects how an update's messages combine with history.
type MergeStrategy string

const (
	MergeAppend       MergeStrategy = "append"
	MergeOverride     MergeStrategy = "override"
	MergeOverrideLast MergeStrategy = "override_last"
)

// Valid reports whether the strategy is recognized. The zero value is
// treated as append.
func (m MergeStrategy) Valid() bool {
	switch m {
	case "", MergeAppend, MergeOverride, MergeOverrideLast:
		return true
	}
	return false
}

func (m *MergeStrategy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	strategy := MergeStrategy(s)
	if !strategy.Valid() {
		return fmt.Errorf("unknown merge strategy %q", s)
	}
	*m = strategy
	return nil
}

// Update is a partial state change produced by a step or a resumed tool.
// Nil scalar fields leave the corresponding state field untouched.
type Update struct {
	Messages      []Message     `json:"messages,omitempty"`
	Merge         MergeStrategy `json:"merge,omitempty"`
	CurrentPrompt *string       `json:"current_prompt,omitempty"`
	LastResult    *string       `json:"last_result,omitempty"`
	MissingInfo   *string       `json:"missing_info,omitempty"`
	Asked         []string      `json:"asked,omitempty"`
}

// Append creates an update that appends messages to history.
func Append(msgs ...Message) Update {
	return Update{Messages: msgs, Merge: MergeAppend}
}

// Override creates an update that replaces history wholesale.
func Override(msgs ...Message) Update {
	return Update{Messages: msgs, Merge: MergeOverride}
}

// OverrideLast creates an update that replaces the final history entry.
func OverrideLast(msgs ...Message) Update {
	return Update{Messages: msgs, Merge: MergeOverrideLast}
}

func (u Update) WithPrompt(p string) Update {
	u.CurrentPrompt = &p
	return u
}

func (u Update) WithResult(r string) Update {
	u.LastResult = &r
	return u
}

func (u Update) WithMissingInfo(info string) Update {
	u.MissingInfo = &info
	return u
}

func (u Update) WithAsked(questions ...string) Update {
	u.Asked = append(u.Asked, questions...)
	return u
}

// IsZero reports whether the update changes nothing.
func (u Update) IsZero() bool {
	return len(u.Messages) == 0 &&
		u.Merge == "" &&
		u.CurrentPrompt == nil &&
		u.LastResult == nil &&
		u.MissingInfo == nil &&
		len(u.Asked) == 0
}

// Apply merges u into s and returns the resulting state. The input state is
// not modified. An unrecognized merge strategy panics.
func Apply(s State, u Update) State {
	next := s.Clone()
	msgs := cloneMessages(u.Messages)

	switch u.Merge {
	case "", MergeAppend:
		next.History = append(next.History, msgs...)
	case MergeOverride:
		next.History = msgs
	case MergeOverrideLast:
		if len(next.History) == 0 {
			next.History = msgs
		} else {
			next.History = append(next.History[:len(next.History)-1], msgs...)
		}
	default:
		panic(fmt.Sprintf("workflow: unknown merge strategy %q", u.Merge))
	}

	if u.CurrentPrompt != nil {
		next.CurrentPrompt = *u.CurrentPrompt
	}
	if u.LastResult != nil {
		next.LastResult = *u.LastResult
	}
	if u.MissingInfo != nil {
		next.MissingInfo = *u.MissingInfo
	}
	if len(u.Asked) > 0 {
		next.Asked = append(next.Asked, u.Asked...)
	}

	return next
}
