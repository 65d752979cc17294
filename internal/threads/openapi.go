package threads

import "github.com/JaimeStill/bleak/pkg/openapi"

var threadIDParam = openapi.PathParam("id", "Thread ID")

var streamResponse = &openapi.Response{
	Description: "Run updates. Server-sent events by default; newline-delimited JSON when Accept is application/x-ndjson",
	Content: map[string]*openapi.MediaType{
		"text/event-stream":    {Schema: openapi.SchemaRef("StepUpdate")},
		"application/x-ndjson": {Schema: openapi.SchemaRef("StepUpdate")},
	},
}

var ops = struct {
	List   *openapi.Operation
	Create *openapi.Operation
	Find   *openapi.Operation
	Stream *openapi.Operation
	Resume *openapi.Operation
	Retry  *openapi.Operation
}{
	List: &openapi.Operation{
		Summary: "List threads",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search thread id and current prompt", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields (ThreadID, Cursor, Version, CreatedAt, UpdatedAt)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Thread summaries", "ThreadPage"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Start a new thread",
		Description: "Generates a thread id, returned in the X-Thread-ID header, and streams the run until it suspends or finishes.",
		RequestBody: openapi.RequestBodyJSON("StartRequest", true),
		Responses: map[int]*openapi.Response{
			200: streamResponse,
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find thread",
		Parameters: []*openapi.Parameter{threadIDParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Thread checkpoint", "Thread"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Stream: &openapi.Operation{
		Summary:     "Start or restart a thread",
		Description: "Resets the thread to the entry step with the given input and streams the run.",
		Parameters:  []*openapi.Parameter{threadIDParam},
		RequestBody: openapi.RequestBodyJSON("StartRequest", true),
		Responses: map[int]*openapi.Response{
			200: streamResponse,
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Resume: &openapi.Operation{
		Summary:     "Resume a suspended thread",
		Description: "Answers the pending tool request and streams the continued run.",
		Parameters:  []*openapi.Parameter{threadIDParam},
		RequestBody: openapi.RequestBodyJSON("ResumeRequest", true),
		Responses: map[int]*openapi.Response{
			200: streamResponse,
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Retry: &openapi.Operation{
		Summary:     "Retry the last model step",
		Description: "Re-executes the most recent model-invoking step from the state captured before it ran.",
		Parameters:  []*openapi.Parameter{threadIDParam},
		Responses: map[int]*openapi.Response{
			200: streamResponse,
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
}

var messageSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"role":    {Type: "string", Enum: []any{"system", "human", "ai", "tool"}},
		"content": {Type: "string"},
		"tool_calls": {Type: "array", Items: &openapi.Schema{
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":        {Type: "string"},
				"name":      {Type: "string"},
				"arguments": {Type: "object"},
			},
		}},
		"tool_call_id": {Type: "string"},
		"name":         {Type: "string"},
	},
}

var suspensionSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"step":    {Type: "string"},
		"tool":    {Type: "string", Enum: []any{"create_prompt", "test_prompt", "ask_questions", "evaluate_prompt", "suggest_improvements"}},
		"call":    {Type: "object"},
		"payload": {Type: "object"},
	},
}

// Schemas returns the OpenAPI component schemas used by thread endpoints.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Message":    messageSchema,
		"Suspension": suspensionSchema,
		"StartRequest": {
			Type:     "object",
			Required: []string{"input"},
			Properties: map[string]*openapi.Schema{
				"input": {Type: "string", Description: "Task description or prompt to refine"},
			},
		},
		"ResumeRequest": {
			Type:     "object",
			Required: []string{"resume"},
			Properties: map[string]*openapi.Schema{
				"resume": {Description: "Prompt text, feedback, answers, or selected improvements depending on the pending tool"},
			},
		},
		"StepUpdate": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"thread_id":  {Type: "string"},
				"type":       {Type: "string", Enum: []any{"step", "suspended", "done", "error"}},
				"step":       {Type: "string"},
				"update":     {Type: "object"},
				"suspended":  {Type: "boolean"},
				"suspension": openapi.SchemaRef("Suspension"),
				"error": {Type: "object", Properties: map[string]*openapi.Schema{
					"kind":    {Type: "string"},
					"message": {Type: "string"},
				}},
			},
		},
		"Thread": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"thread_id":      {Type: "string"},
				"cursor":         {Type: "string"},
				"finished":       {Type: "boolean"},
				"suspended":      {Type: "boolean"},
				"pending":        openapi.SchemaRef("Suspension"),
				"retry_step":     {Type: "string"},
				"current_prompt": {Type: "string"},
				"last_result":    {Type: "string"},
				"history":        {Type: "array", Items: openapi.SchemaRef("Message")},
				"version":        {Type: "integer"},
				"created_at":     {Type: "string", Format: "date-time"},
				"updated_at":     {Type: "string", Format: "date-time"},
			},
		},
		"ThreadSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"thread_id":      {Type: "string"},
				"cursor":         {Type: "string"},
				"suspended":      {Type: "boolean"},
				"pending_tool":   {Type: "string"},
				"current_prompt": {Type: "string"},
				"messages":       {Type: "integer"},
				"version":        {Type: "integer"},
				"created_at":     {Type: "string", Format: "date-time"},
				"updated_at":     {Type: "string", Format: "date-time"},
			},
		},
		"ThreadPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("ThreadSummary")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}
