package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/bleak/pkg/formatting"
)

type answers struct {
	Answers []string `json:"answers"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"direct JSON", `{"answers":["formal","twitter"]}`, []string{"formal", "twitter"}, false},
		{"surrounding whitespace", "  {\"answers\":[\"brief\"]}  ", []string{"brief"}, false},
		{"fenced with language tag", "```json\n{\"answers\":[\"fenced\"]}\n```", []string{"fenced"}, false},
		{"fenced without language tag", "```\n{\"answers\":[\"bare\"]}\n```", []string{"bare"}, false},
		{"fenced with surrounding text", "Here are my answers:\n```json\n{\"answers\":[\"wrapped\"]}\n```\nThanks.", []string{"wrapped"}, false},
		{"embedded in prose", "Sure! {\"answers\":[\"inline\"]} Hope that helps.", []string{"inline"}, false},
		{"plain text", "make it shorter", nil, true},
		{"null", "null", nil, true},
		{"empty", "", nil, true},
		{"broken fence", "```json\n{broken\n```", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[answers](tt.input)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("error = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if len(got.Answers) != len(tt.want) {
				t.Fatalf("answers = %v, want %v", got.Answers, tt.want)
			}
			for i := range tt.want {
				if got.Answers[i] != tt.want[i] {
					t.Errorf("answers[%d] = %q, want %q", i, got.Answers[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseSlice(t *testing.T) {
	got, err := formatting.Parse[[]int](`[0,2]`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("got = %v, want [0 2]", got)
	}
}

func TestParseNullSlice(t *testing.T) {
	if _, err := formatting.Parse[[]string]("null"); !errors.Is(err, formatting.ErrParseFailed) {
		t.Errorf("error = %v, want ErrParseFailed", err)
	}
}
