package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
	"github.com/GregMSThompson/pitch-backend/internal/dto"
	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/internal/guard"
	"github.com/GregMSThompson/pitch-backend/internal/models"
	"github.com/GregMSThompson/pitch-backend/pkg/helpers"
)

type fakeVertexClient struct {
	mu       sync.Mutex
	resp     dto.VertexGenerateResponse
	err      error
	block    chan struct{}
	requests []dto.VertexGenerateRequest
}

func (f *fakeVertexClient) GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return dto.VertexGenerateResponse{}, ctx.Err()
		}
	}
	return f.resp, f.err
}

func (f *fakeVertexClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeDeckStore struct {
	decks     map[string]models.Deck
	replaced  int
	failWrite error
}

func newFakeDeckStore() *fakeDeckStore {
	return &fakeDeckStore{decks: map[string]models.Deck{}}
}

func (f *fakeDeckStore) ReplaceDeck(ctx context.Context, uid string, rec models.Deck) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.replaced++
	f.decks = map[string]models.Deck{rec.ID: rec}
	return nil
}

func (f *fakeDeckStore) GetDeck(ctx context.Context, uid, deckID string) (*models.Deck, error) {
	rec, ok := f.decks[deckID]
	if !ok {
		return nil, errs.NewNotFoundError("deck not found")
	}
	return &rec, nil
}

func (f *fakeDeckStore) LatestDeck(ctx context.Context, uid string) (*models.Deck, error) {
	for _, rec := range f.decks {
		return &rec, nil
	}
	return nil, errs.NewNotFoundError("no deck generated yet")
}

func (f *fakeDeckStore) DeleteDeck(ctx context.Context, uid, deckID string) error {
	if _, ok := f.decks[deckID]; !ok {
		return errs.NewNotFoundError("deck not found")
	}
	delete(f.decks, deckID)
	return nil
}

type fakeCipher struct{}

func (fakeCipher) Encrypt(ctx context.Context, owner, plaintext string) (string, error) {
	return owner + ":" + plaintext, nil
}

func (fakeCipher) Decrypt(ctx context.Context, owner, ciphertext string) (string, error) {
	rest, ok := strings.CutPrefix(ciphertext, owner+":")
	if !ok {
		return "", errs.NewEncryptionError("owner mismatch", nil)
	}
	return rest, nil
}

const acmeDeckJSON = `{
	"projectName": "Acme",
	"slides": [
		{"id": "s1", "layout": "TITLE_COVER", "content": {"title": "Acme 银团贷款", "subtitle": "USD 500m"}},
		{"id": "s1", "layout": "TABLE", "content": {"title": "Financials", "keyTakeaway": "Revenue up 40%",
			"tableData": {"headers": ["Metric", "2024", "2025"], "rows": [["Revenue", "100", "140"]]}}},
		{"id": "", "layout": "GANTT", "content": {"title": "Timeline", "ganttData": [{"task": "Roadshow", "startWeek": 2, "duration": 3, "category": "A"}]}},
		{"id": "s4", "layout": "HERO_IMAGE", "content": {"title": "Unknown"}}
	]
}`

func newTestDeckService(vertex *fakeVertexClient, store *fakeDeckStore) *deckService {
	svc := NewDeckService(vertex, store, fakeCipher{}, guard.NewLocal(), DeckOptions{
		Model:   "gemini-test",
		Timeout: time.Second,
		TTL:     time.Hour,
		Locale:  "zh-CN",
	})
	svc.clockNow = func() time.Time { return time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	return svc
}

func TestGenerateRejectsEmptyInputBeforeNetwork(t *testing.T) {
	vertex := &fakeVertexClient{}
	svc := newTestDeckService(vertex, newFakeDeckStore())

	_, err := svc.Generate(helpers.TestCtx(), "u1", dto.GenerateDeckRequest{Prompt: "  \n"})
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vertex.calls() != 0 {
		t.Fatalf("expected no generator call, got %d", vertex.calls())
	}
}

func TestGenerateStoresDeckAndReportsIssues(t *testing.T) {
	vertex := &fakeVertexClient{resp: dto.VertexGenerateResponse{Text: "```json\n" + acmeDeckJSON + "\n```"}}
	store := newFakeDeckStore()
	svc := newTestDeckService(vertex, store)

	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.7"))
	resp, err := svc.Generate(helpers.TestCtx(), "u1", dto.GenerateDeckRequest{
		Prompt: "Acme 拟融5000万元",
		Attachments: []dto.AttachmentInput{
			{MimeType: "application/pdf", Data: pdf},
			{Data: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))},
		},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	req := vertex.requests[0]
	if req.ResponseMIMEType != "application/json" || req.ResponseSchema == nil {
		t.Fatalf("expected structured output request, got %+v", req)
	}
	if helpers.Value(req.Temperature) != 0.7 || helpers.Value(req.MaxOutputTokens) != 8000 {
		t.Fatalf("unexpected generation parameters")
	}
	if !strings.Contains(req.System, "TABLE：必须有 title、keyTakeaway、tableData") {
		t.Fatalf("directive is missing the required field table")
	}
	if len(req.Attachments) != 2 || string(req.Attachments[0].Data) != "%PDF-1.7" || req.Attachments[1].MIMEType != "image/png" {
		t.Fatalf("attachments mismatch: %+v", req.Attachments)
	}

	ids := []string{}
	for _, s := range resp.Deck.Slides {
		ids = append(ids, s.ID)
	}
	if strings.Join(ids, ",") != "s1,gen-1,gen-2,s4" {
		t.Fatalf("slide ids mismatch: %v", ids)
	}
	if resp.DeckID != "gen-3" {
		t.Fatalf("deck id mismatch: %q", resp.DeckID)
	}

	kinds := map[deck.IssueKind]int{}
	for _, issue := range resp.Issues {
		kinds[issue.Kind]++
	}
	if kinds[deck.IssueUnknownLayout] != 1 || kinds[deck.IssueMissingField] == 0 {
		t.Fatalf("unexpected issues: %+v", resp.Issues)
	}
	if resp.Summary["PARTIAL"] != 2 {
		t.Fatalf("expected two partial slides, got %v", resp.Summary)
	}

	rec := store.decks["gen-3"]
	if rec.BriefCiphertext != "u1:Acme 拟融5000万元" || rec.AttachmentCount != 2 || rec.SlideCount != 4 {
		t.Fatalf("stored record mismatch: %+v", rec)
	}
	if !rec.ExpiresAt.Equal(rec.CreatedAt.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour after creation")
	}
}

func TestGenerateRejectsBadAttachment(t *testing.T) {
	vertex := &fakeVertexClient{}
	svc := newTestDeckService(vertex, newFakeDeckStore())

	_, err := svc.Generate(helpers.TestCtx(), "u1", dto.GenerateDeckRequest{
		Attachments: []dto.AttachmentInput{{MimeType: "image/png", Data: "not base64!"}},
	})
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "attachment 1") {
		t.Fatalf("expected attachment index in message, got %q", err.Error())
	}
	if vertex.calls() != 0 {
		t.Fatalf("expected no generator call")
	}
}

func TestGenerateFailuresLeaveStoredDeck(t *testing.T) {
	cases := []struct {
		name      string
		vertex    *fakeVertexClient
		timeout   time.Duration
		reason    string
		retryable bool
	}{
		{"unreachable", &fakeVertexClient{err: errors.New("connection refused")}, time.Second, errs.GenerationUnreachable, true},
		{"malformed", &fakeVertexClient{resp: dto.VertexGenerateResponse{Text: "I cannot help"}}, time.Second, errs.GenerationMalformed, false},
		{"truncated", &fakeVertexClient{resp: dto.VertexGenerateResponse{Text: `{"projectName": "Ac`, Truncated: true}}, time.Second, errs.GenerationMalformed, false},
		{"timeout", &fakeVertexClient{block: make(chan struct{})}, 10 * time.Millisecond, errs.GenerationTimeout, true},
		{"blocked", &fakeVertexClient{err: errs.NewGenerationError(errs.GenerationBlocked, "filtered", nil)}, time.Second, errs.GenerationBlocked, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeDeckStore()
			store.decks["old"] = models.Deck{ID: "old", ProjectName: "Old", SlidesJSON: `[]`}
			svc := newTestDeckService(tc.vertex, store)
			svc.opts.Timeout = tc.timeout

			_, err := svc.Generate(helpers.TestCtx(), "u1", dto.GenerateDeckRequest{Prompt: "brief"})
			var genErr *errs.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected generation error, got %v", err)
			}
			if genErr.Reason != tc.reason || genErr.Retryable != tc.retryable {
				t.Fatalf("got reason %q retryable %v", genErr.Reason, genErr.Retryable)
			}
			if _, ok := store.decks["old"]; !ok || store.replaced != 0 {
				t.Fatalf("stored deck should be unchanged")
			}
		})
	}
}

func TestGenerateSurfacesConfigError(t *testing.T) {
	store := newFakeDeckStore()
	vertex := &fakeVertexClient{err: errs.NewConfigError("VERTEXMODEL", "vertex model is required")}
	svc := newTestDeckService(vertex, store)

	_, err := svc.Generate(helpers.TestCtx(), "u1", dto.GenerateDeckRequest{Prompt: "brief"})
	var cfgErr *errs.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error, got %v", err)
	}
	var genErr *errs.GenerationError
	if errors.As(err, &genErr) {
		t.Fatalf("config error must not become a retryable generation failure")
	}
	if store.replaced != 0 {
		t.Fatalf("stored deck should be unchanged")
	}
}

func TestGenerateRejectsConcurrentRequest(t *testing.T) {
	vertex := &fakeVertexClient{block: make(chan struct{}), resp: dto.VertexGenerateResponse{Text: acmeDeckJSON}}
	svc := newTestDeckService(vertex, newFakeDeckStore())
	svc.opts.Timeout = 5 * time.Second

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(helpers.TestCtx(), "u1", dto.GenerateDeckRequest{Prompt: "first"})
		done <- err
	}()
	for vertex.calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := svc.Generate(helpers.TestCtx(), "u1", dto.GenerateDeckRequest{Prompt: "second"})
	var exists *errs.AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("expected conflict, got %v", err)
	}

	close(vertex.block)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
}

func TestPresentAndExportStoredDeck(t *testing.T) {
	store := newFakeDeckStore()
	store.decks["d1"] = models.Deck{
		ID:          "d1",
		ProjectName: "Acme",
		SlidesJSON:  `[{"id":"1","layout":"TABLE","content":{"title":"Financials","tableData":{"headers":["Metric"],"rows":[["Revenue"]]}}}]`,
	}
	svc := newTestDeckService(&fakeVertexClient{}, store)
	ctx := helpers.TestCtx()

	html, err := svc.Present(ctx, "u1", "d1", "")
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if !strings.Contains(string(html), "Financials") || !strings.Contains(string(html), "Indicative Terms Only") {
		t.Fatalf("presentation missing table slide")
	}

	f, err := svc.ExportStored(ctx, "u1", "d1", "", "")
	if err != nil {
		t.Fatalf("ExportStored error: %v", err)
	}
	if f.Name != "Acme_银团贷款融资方案.pptx" || len(f.Data) == 0 {
		t.Fatalf("unexpected export file %q (%d bytes)", f.Name, len(f.Data))
	}

	var notFound *errs.NotFoundError
	if _, err := svc.Present(ctx, "u1", "missing", ""); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportEmptyDeckFails(t *testing.T) {
	svc := newTestDeckService(&fakeVertexClient{}, newFakeDeckStore())
	_, err := svc.Export(helpers.TestCtx(), dto.DeckRenderRequest{Deck: deck.Deck{ProjectName: "Acme"}})
	var exportErr *errs.ExportError
	if !errors.As(err, &exportErr) || exportErr.Reason != errs.ExportEmptyDeck {
		t.Fatalf("expected empty deck export error, got %v", err)
	}
}

func TestRenderEmptyDeck(t *testing.T) {
	svc := newTestDeckService(&fakeVertexClient{}, newFakeDeckStore())
	html, err := svc.Render(helpers.TestCtx(), dto.DeckRenderRequest{Deck: deck.Deck{}})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if strings.Contains(string(html), "<section") {
		t.Fatalf("expected no slide blocks")
	}
}

func TestBriefAndDelete(t *testing.T) {
	store := newFakeDeckStore()
	store.decks["d1"] = models.Deck{ID: "d1", SlidesJSON: `[]`, BriefCiphertext: "u1:secret brief"}
	svc := newTestDeckService(&fakeVertexClient{}, store)
	ctx := helpers.TestCtx()

	brief, err := svc.Brief(ctx, "u1", "d1")
	if err != nil || brief != "secret brief" {
		t.Fatalf("Brief = %q, %v", brief, err)
	}
	var encErr *errs.EncryptionError
	if _, err := svc.Brief(ctx, "u2", "d1"); !errors.As(err, &encErr) {
		t.Fatalf("expected encryption error for other user, got %v", err)
	}

	if err := svc.Delete(ctx, "u1", "d1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	var notFound *errs.NotFoundError
	if _, err := svc.Current(ctx, "u1"); !errors.As(err, &notFound) {
		t.Fatalf("expected no current deck, got %v", err)
	}
}

func TestValidateReportsSummary(t *testing.T) {
	svc := newTestDeckService(&fakeVertexClient{}, newFakeDeckStore())
	resp := svc.Validate(deck.Deck{Slides: []deck.Slide{{ID: "1", Layout: deck.LayoutTitleCover, Content: deck.Content{Title: "A", Subtitle: "B"}}}})
	if !resp.Valid || len(resp.Issues) != 0 || resp.Summary[string(deck.LayoutTitleCover)] != 1 {
		t.Fatalf("unexpected validation response: %+v", resp)
	}
}

func TestAssignSlideIDsKeepsExisting(t *testing.T) {
	d := &deck.Deck{Slides: []deck.Slide{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: " "}}}
	n := 0
	assignSlideIDs(d, func() string { n++; return fmt.Sprintf("x%d", n) })
	got := []string{d.Slides[0].ID, d.Slides[1].ID, d.Slides[2].ID, d.Slides[3].ID}
	if strings.Join(got, ",") != "a,b,x1,x2" {
		t.Fatalf("ids mismatch: %v", got)
	}
}
