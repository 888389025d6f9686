package dto

type VertexGenerateRequest struct {
	Model       string
	System      string
	UserMessage string
	Attachments []VertexBlob
	// ResponseMIMEType and ResponseSchema constrain the model to structured
	// output. The schema is only honored with "application/json".
	ResponseMIMEType string
	ResponseSchema   *VertexSchema
	Temperature      *float32
	MaxOutputTokens  *int32
}

type VertexGenerateResponse struct {
	Text string
	// Truncated reports that the model stopped at the output token limit.
	Truncated bool
	Usage     VertexUsage
	Raw       any
}

type VertexUsage struct {
	PromptTokens int32
	OutputTokens int32
}

type VertexBlob struct {
	MIMEType string
	Data     []byte
}

type VertexSchema struct {
	Type        string
	Description string
	Enum        []string
	Properties  map[string]*VertexSchema
	Required    []string
	Items       *VertexSchema
	Nullable    bool
}
