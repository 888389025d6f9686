package openwebuiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GregMSThompson/pitch-backend/internal/dto"
	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/pkg/helpers"
)

const (
	serviceName    = "open-webui"
	defaultTimeout = 90 * time.Second
	maxErrorBody   = 4 << 10
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type CompletionRequest struct {
	Model       string
	Question    string
	Temperature float64
	// CollectionID attaches a knowledge collection when set.
	CollectionID string
	WebSearch    bool
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type fileRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type features struct {
	WebSearch bool `json:"web_search"`
}

type completionBody struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
	Files       []fileRef     `json:"files,omitempty"`
	Features    *features     `json:"features,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Sources   []sourceGroup `json:"sources"`
	Citations []citation    `json:"citations"`
}

type sourceGroup struct {
	Metadata []struct {
		Name      string          `json:"name"`
		Source    string          `json:"source"`
		PageLabel json.RawMessage `json:"page_label"`
	} `json:"metadata"`
	URLs []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"urls"`
}

type citation struct {
	Source *struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"source"`
	Document string          `json:"document"`
	URL      string          `json:"url"`
	Page     json.RawMessage `json:"page"`
}

// Complete asks one question and returns the answer with its deduplicated
// sources.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (dto.ChatQueryResponse, error) {
	body := completionBody{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Question}},
		Temperature: req.Temperature,
		Stream:      false,
	}
	if req.CollectionID != "" {
		body.Files = []fileRef{{Type: "collection", ID: req.CollectionID}}
	}
	if req.WebSearch {
		body.Features = &features{WebSearch: true}
	}

	var resp completionResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/completions", body, &resp); err != nil {
		return dto.ChatQueryResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return dto.ChatQueryResponse{}, errs.NewExternalServiceError(serviceName, "chat completion returned no choices", false, nil)
	}

	return dto.ChatQueryResponse{
		Answer:  resp.Choices[0].Message.Content,
		Sources: parseSources(resp),
	}, nil
}

func (c *Client) KnowledgeBases(ctx context.Context) ([]dto.KnowledgeBase, error) {
	var resp struct {
		Items []dto.KnowledgeBase `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/knowledge/", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []dto.KnowledgeBase{}, nil
	}
	return resp.Items, nil
}

type modelEntry struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Name  string `json:"name"`
}

// Models lists the models. The server answers either {"data": [...]} or a
// bare array.
func (c *Client) Models(ctx context.Context) ([]dto.ChatModel, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &raw); err != nil {
		return nil, err
	}

	var entries []modelEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapped struct {
			Data []modelEntry `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, errs.NewExternalServiceError(serviceName, "unexpected model list format", false, err)
		}
		entries = wrapped.Data
	}

	out := make([]dto.ChatModel, 0, len(entries))
	for _, e := range entries {
		id := helpers.FirstNonEmpty(e.ID, e.Model)
		out = append(out, dto.ChatModel{ID: id, Name: helpers.FirstNonEmpty(e.Name, id)})
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "failed to build request", false, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "request failed", true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.NewExternalServiceError(
			serviceName,
			fmt.Sprintf("request failed: %s", resp.Status),
			resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
			errors.New(strings.TrimSpace(string(snippet))),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewExternalServiceError(serviceName, "failed to decode response", false, err)
	}
	return nil
}

// parseSources collects knowledge and web sources plus legacy citations,
// keeping the first occurrence of each (name, page) pair.
func parseSources(resp completionResponse) []dto.ChatSource {
	var all []dto.ChatSource
	for _, group := range resp.Sources {
		for _, meta := range group.Metadata {
			all = append(all, dto.ChatSource{
				Name: helpers.FirstNonEmpty(meta.Name, meta.Source, "Unknown"),
				Type: dto.SourceKnowledge,
				Page: parsePage(meta.PageLabel),
			})
		}
		for _, u := range group.URLs {
			all = append(all, dto.ChatSource{
				Name: helpers.FirstNonEmpty(u.Title, u.URL),
				Type: dto.SourceWeb,
				URL:  u.URL,
			})
		}
	}
	for _, c := range resp.Citations {
		if c.Source == nil {
			continue
		}
		typ := dto.SourceKnowledge
		if c.Source.Type == "web" {
			typ = dto.SourceWeb
		}
		all = append(all, dto.ChatSource{
			Name: helpers.FirstNonEmpty(c.Source.Name, c.Document, "Unknown"),
			Type: typ,
			URL:  c.URL,
			Page: parsePage(c.Page),
		})
	}

	type key struct {
		name string
		page int
		has  bool
	}
	seen := make(map[key]struct{}, len(all))
	out := make([]dto.ChatSource, 0, len(all))
	for _, s := range all {
		k := key{name: s.Name}
		if s.Page != nil {
			k.page, k.has = *s.Page, true
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// parsePage reads a page given as a number or a string with a leading
// integer ("12", "12a"). Anything else is no page.
func parsePage(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		p := int(n)
		return &p
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && s[end] == '-') {
		end++
	}
	p, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &p
}
