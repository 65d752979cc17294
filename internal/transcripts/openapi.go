package transcripts

import "github.com/JaimeStill/bleak/pkg/openapi"

var threadIDParam = openapi.PathParam("id", "Thread ID")

var ops = struct {
	List    *openapi.Operation
	Find    *openapi.Operation
	Archive *openapi.Operation
	Delete  *openapi.Operation
}{
	List: &openapi.Operation{
		Summary: "List archived transcripts",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("marker", "string", "Continuation marker from a previous page", false),
			openapi.QueryParam("max_results", "integer", "Maximum blobs per page", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Transcript blobs", "TranscriptList"),
			400: openapi.ResponseRef("BadRequest"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find archived transcript",
		Parameters: []*openapi.Parameter{threadIDParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Transcript", "Transcript"),
			404: openapi.ResponseRef("NotFound"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	},
	Archive: &openapi.Operation{
		Summary:     "Archive thread transcript",
		Description: "Uploads the thread's current checkpoint as a transcript, replacing any earlier archive.",
		Parameters:  []*openapi.Parameter{threadIDParam},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Archived transcript", "Transcript"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete archived transcript",
		Parameters: []*openapi.Parameter{threadIDParam},
		Responses: map[int]*openapi.Response{
			204: {Description: "Transcript deleted"},
			404: openapi.ResponseRef("NotFound"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	},
}

// Schemas returns the OpenAPI component schemas used by transcript endpoints.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Transcript": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"thread_id":      {Type: "string"},
				"cursor":         {Type: "string"},
				"finished":       {Type: "boolean"},
				"current_prompt": {Type: "string"},
				"last_result":    {Type: "string"},
				"messages":       {Type: "array", Items: &openapi.Schema{Type: "object"}},
				"text":           {Type: "string", Description: "Plain-text rendering of the conversation"},
				"version":        {Type: "integer"},
				"archived_at":    {Type: "string", Format: "date-time"},
			},
		},
		"TranscriptList": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"blobs": {Type: "array", Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"key":            {Type: "string"},
						"content_type":   {Type: "string"},
						"content_length": {Type: "integer"},
						"last_modified":  {Type: "string", Format: "date-time"},
					},
				}},
				"next_marker": {Type: "string"},
			},
		},
	}
}
