package dto

type ChatMode string

const (
	ChatModeKnowledge ChatMode = "knowledge"
	ChatModeWeb       ChatMode = "web"
	ChatModeHybrid    ChatMode = "hybrid"
)

// Valid reports whether the mode is one of the known search modes.
func (m ChatMode) Valid() bool {
	switch m {
	case ChatModeKnowledge, ChatModeWeb, ChatModeHybrid:
		return true
	}
	return false
}

// UsesKnowledge reports whether a knowledge collection should be attached.
func (m ChatMode) UsesKnowledge() bool { return m == ChatModeKnowledge || m == ChatModeHybrid }

// UsesWeb reports whether web search should be enabled.
func (m ChatMode) UsesWeb() bool { return m == ChatModeWeb || m == ChatModeHybrid }

type ChatQueryRequest struct {
	Question        string   `json:"question"`
	Mode            ChatMode `json:"mode,omitempty"`
	KnowledgeBaseID string   `json:"knowledgeBaseId,omitempty"`
	Model           string   `json:"model,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type ChatQueryResponse struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources"`
}

type SourceType string

const (
	SourceKnowledge SourceType = "knowledge"
	SourceWeb       SourceType = "web"
)

type ChatSource struct {
	Name string     `json:"name"`
	Type SourceType `json:"type"`
	URL  string     `json:"url,omitempty"`
	Page *int       `json:"page,omitempty"`
}

type KnowledgeBase struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ChatModel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
