package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
	"github.com/GregMSThompson/pitch-backend/internal/dto"
	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/internal/export"
	"github.com/GregMSThompson/pitch-backend/internal/layout"
	"github.com/GregMSThompson/pitch-backend/internal/metrics"
	"github.com/GregMSThompson/pitch-backend/internal/models"
	"github.com/GregMSThompson/pitch-backend/internal/render"
	"github.com/GregMSThompson/pitch-backend/pkg/logger"
)

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type deckStore interface {
	ReplaceDeck(ctx context.Context, uid string, rec models.Deck) error
	GetDeck(ctx context.Context, uid, deckID string) (*models.Deck, error)
	LatestDeck(ctx context.Context, uid string) (*models.Deck, error)
	DeleteDeck(ctx context.Context, uid, deckID string) error
}

type BriefCipher interface {
	Encrypt(ctx context.Context, owner, plaintext string) (string, error)
	Decrypt(ctx context.Context, owner, ciphertext string) (string, error)
}

type GenerationGuard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

type DeckOptions struct {
	Model   string
	Timeout time.Duration
	TTL     time.Duration
	// Locale formats the cover date when a request does not name one.
	Locale string
}

type deckService struct {
	vertex   vertexClient
	store    deckStore
	cipher   BriefCipher
	guard    GenerationGuard
	opts     DeckOptions
	clockNow func() time.Time
	newID    func() string
}

// NewDeckService wires generation and rendering. cipher may be nil, in which
// case the brief is not kept with the deck.
func NewDeckService(vertex vertexClient, store deckStore, cipher BriefCipher, guard GenerationGuard, opts DeckOptions) *deckService {
	return &deckService{
		vertex:   vertex,
		store:    store,
		cipher:   cipher,
		guard:    guard,
		opts:     opts,
		clockNow: time.Now,
		newID:    uuid.NewString,
	}
}

// Generate turns a brief into a deck and makes it the user's current deck.
// Missing required fields are reported as issues, not errors.
func (s *deckService) Generate(ctx context.Context, uid string, req dto.GenerateDeckRequest) (dto.DeckResponse, error) {
	start := s.clockNow()
	resp, outcome, err := s.generate(ctx, uid, req)
	metrics.RecordGeneration(outcome, s.clockNow().Sub(start))
	return resp, err
}

func (s *deckService) generate(ctx context.Context, uid string, req dto.GenerateDeckRequest) (dto.DeckResponse, string, error) {
	log := logger.FromContext(ctx)

	// Validate input
	if strings.TrimSpace(req.Prompt) == "" && len(req.Attachments) == 0 {
		return dto.DeckResponse{}, "invalid_input", errs.NewValidationError("a prompt or at least one attachment is required")
	}
	// Decode attachments
	blobs, err := decodeAttachments(ctx, req.Attachments)
	if err != nil {
		return dto.DeckResponse{}, "invalid_input", err
	}

	// One generation per user at a time
	release, ok := s.guard.Acquire(ctx, uid)
	if !ok {
		return dto.DeckResponse{}, "busy", errs.NewAlreadyExistsError("generation already in progress")
	}
	defer release()

	// Bound the model call
	genCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	// Call the model with the deck schema
	temperature, maxTokens := deckTemperature, deckMaxOutputTokens
	out, err := s.vertex.GenerateContent(genCtx, dto.VertexGenerateRequest{
		Model:            s.opts.Model,
		System:           deckDirective(),
		UserMessage:      req.Prompt,
		Attachments:      blobs,
		ResponseMIMEType: "application/json",
		ResponseSchema:   deckResponseSchema(),
		Temperature:      &temperature,
		MaxOutputTokens:  &maxTokens,
	})
	if err != nil {
		// A misconfigured adapter is not a generation outcome; surface it as is.
		var cfgErr *errs.ConfigError
		if errors.As(err, &cfgErr) {
			log.Error("deck generation misconfigured", "setting", cfgErr.Setting, "error", err)
			return dto.DeckResponse{}, "misconfigured", err
		}
		genErr := classifyGenerationError(genCtx, err)
		log.Warn("deck generation failed", "reason", genErr.Reason, "error", err)
		return dto.DeckResponse{}, genErr.Reason, genErr
	}

	// Parse the deck and repair slide ids
	d, err := parseDeck(out.Text)
	if err != nil {
		msg := "generator returned output that is not a deck"
		if out.Truncated {
			msg = "generator output was cut off at the token limit"
		}
		log.Warn("deck generation malformed", "truncated", out.Truncated, "error", err)
		if logger.Enabled(ctx, slog.LevelDebug) {
			log.Debug("malformed generator output", "text", clip(out.Text, maxLoggedOutput))
		}
		return dto.DeckResponse{}, errs.GenerationMalformed, errs.NewGenerationError(errs.GenerationMalformed, msg, err)
	}
	assignSlideIDs(d, s.newID)

	// Encrypt the brief and replace the stored deck
	now := s.clockNow()
	rec, err := s.record(ctx, uid, d, req, now)
	if err != nil {
		return dto.DeckResponse{}, "store_failed", err
	}
	if err := s.store.ReplaceDeck(ctx, uid, rec); err != nil {
		return dto.DeckResponse{}, "store_failed", err
	}

	// Record metrics
	for _, slide := range d.Slides {
		metrics.IncrementGeneratedSlides(string(slide.Layout))
	}
	resp := deckResponse(rec, d)
	log.Info("deck generated", "deck_id", rec.ID, "slides", len(d.Slides), "issues", len(resp.Issues))
	return resp, "ok", nil
}

// maxLoggedOutput bounds raw model text in debug logs.
const maxLoggedOutput = 2000

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func (s *deckService) record(ctx context.Context, uid string, d *deck.Deck, req dto.GenerateDeckRequest, now time.Time) (models.Deck, error) {
	slides, err := json.Marshal(d.Slides)
	if err != nil {
		return models.Deck{}, err
	}
	rec := models.Deck{
		ID:              s.newID(),
		ProjectName:     d.ProjectName,
		SlidesJSON:      string(slides),
		SlideCount:      len(d.Slides),
		IssueCount:      len(d.Validate()),
		AttachmentCount: len(req.Attachments),
		Model:           s.opts.Model,
		CreatedAt:       now,
	}
	if s.opts.TTL > 0 {
		rec.ExpiresAt = now.Add(s.opts.TTL)
	}
	if s.cipher != nil && strings.TrimSpace(req.Prompt) != "" {
		rec.BriefCiphertext, err = s.cipher.Encrypt(ctx, uid, req.Prompt)
		if err != nil {
			return models.Deck{}, err
		}
	}
	return rec, nil
}

func (s *deckService) Get(ctx context.Context, uid, deckID string) (dto.DeckResponse, error) {
	rec, d, err := s.load(ctx, uid, deckID)
	if err != nil {
		return dto.DeckResponse{}, err
	}
	return deckResponse(*rec, d), nil
}

// Current returns the most recently generated deck.
func (s *deckService) Current(ctx context.Context, uid string) (dto.DeckResponse, error) {
	rec, err := s.store.LatestDeck(ctx, uid)
	if err != nil {
		return dto.DeckResponse{}, err
	}
	d, err := decodeRecord(rec)
	if err != nil {
		return dto.DeckResponse{}, err
	}
	return deckResponse(*rec, d), nil
}

func (s *deckService) Delete(ctx context.Context, uid, deckID string) error {
	if err := s.store.DeleteDeck(ctx, uid, deckID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("deck deleted", "deck_id", deckID)
	return nil
}

// Brief returns the decrypted prompt the deck was generated from.
func (s *deckService) Brief(ctx context.Context, uid, deckID string) (string, error) {
	rec, err := s.store.GetDeck(ctx, uid, deckID)
	if err != nil {
		return "", err
	}
	if s.cipher == nil || rec.BriefCiphertext == "" {
		return "", errs.NewNotFoundError("no brief stored for this deck")
	}
	return s.cipher.Decrypt(ctx, uid, rec.BriefCiphertext)
}

func (s *deckService) Present(ctx context.Context, uid, deckID, locale string) ([]byte, error) {
	_, d, err := s.load(ctx, uid, deckID)
	if err != nil {
		return nil, err
	}
	return s.Render(ctx, dto.DeckRenderRequest{Deck: *d, Locale: locale})
}

func (s *deckService) ExportStored(ctx context.Context, uid, deckID, fileName, locale string) (*export.File, error) {
	_, d, err := s.load(ctx, uid, deckID)
	if err != nil {
		return nil, err
	}
	return s.Export(ctx, dto.DeckRenderRequest{Deck: *d, FileName: fileName, Locale: locale})
}

// Render writes the deck as an HTML presentation. Incomplete slides render
// with whatever they carry.
func (s *deckService) Render(ctx context.Context, req dto.DeckRenderRequest) ([]byte, error) {
	var buf bytes.Buffer
	if err := render.RenderDeck(&buf, &req.Deck, s.layoutOptions(req.Locale)); err != nil {
		metrics.IncrementRender("html", "error")
		return nil, err
	}
	metrics.IncrementRender("html", "ok")
	logger.FromContext(ctx).Debug("deck rendered", "slides", len(req.Deck.Slides))
	return buf.Bytes(), nil
}

func (s *deckService) Export(ctx context.Context, req dto.DeckRenderRequest) (*export.File, error) {
	f, err := export.Export(&req.Deck, export.Options{FileName: req.FileName, Layout: s.layoutOptions(req.Locale)})
	if err != nil {
		metrics.IncrementRender("pptx", "error")
		return nil, err
	}
	metrics.IncrementRender("pptx", "ok")
	logger.FromContext(ctx).Info("deck exported", "file", f.Name, "bytes", len(f.Data))
	return f, nil
}

func (s *deckService) Validate(d deck.Deck) dto.ValidateDeckResponse {
	issues := d.Validate()
	if issues == nil {
		issues = []deck.Issue{}
	}
	return dto.ValidateDeckResponse{Valid: len(issues) == 0, Issues: issues, Summary: d.Summary()}
}

func (s *deckService) layoutOptions(locale string) layout.Options {
	if locale == "" {
		locale = s.opts.Locale
	}
	return layout.Options{Now: s.clockNow(), Locale: locale}
}

func (s *deckService) load(ctx context.Context, uid, deckID string) (*models.Deck, *deck.Deck, error) {
	rec, err := s.store.GetDeck(ctx, uid, deckID)
	if err != nil {
		return nil, nil, err
	}
	d, err := decodeRecord(rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, d, nil
}

func decodeRecord(rec *models.Deck) (*deck.Deck, error) {
	d := &deck.Deck{ProjectName: rec.ProjectName}
	if err := json.Unmarshal([]byte(rec.SlidesJSON), &d.Slides); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse stored slides", err)
	}
	return d, nil
}

func deckResponse(rec models.Deck, d *deck.Deck) dto.DeckResponse {
	issues := d.Validate()
	if issues == nil {
		issues = []deck.Issue{}
	}
	return dto.DeckResponse{
		DeckID:    rec.ID,
		Deck:      *d,
		Issues:    issues,
		Summary:   d.Summary(),
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
}

func classifyGenerationError(ctx context.Context, err error) *errs.GenerationError {
	var genErr *errs.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errs.NewGenerationError(errs.GenerationTimeout, "generation timed out", err)
	}
	return errs.NewGenerationError(errs.GenerationUnreachable, "generation service unavailable", err)
}

// parseDeck reads the generator's JSON, tolerating a markdown code fence
// around it.
func parseDeck(text string) (*deck.Deck, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	if text == "" {
		return nil, errors.New("empty generator output")
	}

	var d deck.Deck
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	if d.Slides == nil {
		return nil, errors.New("generator output has no slides array")
	}
	return &d, nil
}

// assignSlideIDs gives slides with a blank or repeated id a fresh one.
// Existing unique ids are kept.
func assignSlideIDs(d *deck.Deck, newID func() string) {
	seen := make(map[string]struct{}, len(d.Slides))
	for i := range d.Slides {
		id := strings.TrimSpace(d.Slides[i].ID)
		if _, dup := seen[id]; id == "" || dup {
			id = newID()
			d.Slides[i].ID = id
		}
		seen[id] = struct{}{}
	}
}

// decodeAttachments decodes uploads concurrently and keeps request order.
func decodeAttachments(ctx context.Context, in []dto.AttachmentInput) ([]dto.VertexBlob, error) {
	out := make([]dto.VertexBlob, len(in))
	g, _ := errgroup.WithContext(ctx)
	for i, att := range in {
		g.Go(func() error {
			blob, err := decodeAttachment(att)
			if err != nil {
				return errs.NewValidationError(fmt.Sprintf("attachment %d: %s", i+1, err.Error()))
			}
			out[i] = blob
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeAttachment(att dto.AttachmentInput) (dto.VertexBlob, error) {
	mimeType, data := strings.TrimSpace(att.MimeType), strings.TrimSpace(att.Data)
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return dto.VertexBlob{}, errors.New("data URL must be base64 encoded")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(header, ";base64")
		}
		data = payload
	}
	if mimeType == "" {
		return dto.VertexBlob{}, errors.New("mimeType is required")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return dto.VertexBlob{}, errors.New("data is not valid base64")
	}
	if len(raw) == 0 {
		return dto.VertexBlob{}, errors.New("data is empty")
	}
	return dto.VertexBlob{MIMEType: mimeType, Data: raw}, nil
}
