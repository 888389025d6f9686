package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ppt "github.com/VantageDataChat/GoPPT"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/internal/layout"
)

type recordedSlide struct {
	shapes []shape
}

func (r *recordedSlide) Add(s shape) { r.shapes = append(r.shapes, s) }

func (r *recordedSlide) byTag(tag string) (shape, bool) {
	for _, s := range r.shapes {
		if s.Tag == tag {
			return s, true
		}
	}
	return shape{}, false
}

func (r *recordedSlide) withPrefix(prefix string) []shape {
	var out []shape
	for _, s := range r.shapes {
		if strings.HasPrefix(s.Tag, prefix) {
			out = append(out, s)
		}
	}
	return out
}

func (r *recordedSlide) text() string {
	var b strings.Builder
	for _, s := range r.shapes {
		for _, t := range s.Text() {
			b.WriteString(t)
			b.WriteString("\n")
		}
	}
	return b.String()
}

type recordingCanvas struct {
	slides []*recordedSlide
	title  string
	err    error
}

func (c *recordingCanvas) AddSlide() surface {
	s := &recordedSlide{}
	c.slides = append(c.slides, s)
	return s
}

func (c *recordingCanvas) Finish(title string) ([]byte, error) {
	c.title = title
	if c.err != nil {
		return nil, c.err
	}
	return []byte("pptx"), nil
}

var testOpts = Options{Layout: layout.Options{Now: time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), Locale: "zh-CN"}}

func acmeDeck() *deck.Deck {
	return &deck.Deck{
		ProjectName: "Acme",
		Slides: []deck.Slide{{
			ID:     "1",
			Layout: deck.LayoutTable,
			Content: deck.Content{
				Title:       "Financials",
				KeyTakeaway: "Revenue up 40%",
				TableData: &deck.TableData{
					Headers: []string{"Metric", "2024", "2025"},
					Rows:    [][]string{{"Revenue", "100", "140"}},
				},
			},
		}},
	}
}

func TestExportEmptyDeck(t *testing.T) {
	c := &recordingCanvas{}
	_, err := export(&deck.Deck{ProjectName: "Acme"}, testOpts, c)

	var exportErr *errs.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, errs.ExportEmptyDeck, exportErr.Reason)
	assert.True(t, exportErr.Rejected())
	assert.Empty(t, c.slides)

	_, err = Export(nil, testOpts)
	assert.True(t, errors.As(err, &exportErr))
}

func TestExportWriteFailure(t *testing.T) {
	c := &recordingCanvas{err: errors.New("disk full")}
	d := acmeDeck()
	_, err := export(d, testOpts, c)

	var exportErr *errs.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, errs.ExportWriteFailed, exportErr.Reason)
	assert.False(t, exportErr.Rejected())
	assert.Equal(t, "Financials", d.Slides[0].Content.Title)
}

func TestExportAcmeTable(t *testing.T) {
	c := &recordingCanvas{}
	f, err := export(acmeDeck(), testOpts, c)
	require.NoError(t, err)

	assert.Equal(t, "Acme_银团贷款融资方案.pptx", f.Name)
	assert.Equal(t, ContentType, f.ContentType)
	assert.Equal(t, "Acme - 银团贷款融资方案", c.title)
	require.Len(t, c.slides, 1)

	s := c.slides[0]
	var headers []string
	for _, h := range s.withPrefix("table:head:") {
		headers = append(headers, h.Text()...)
	}
	assert.Equal(t, []string{"Metric", "2024", "2025"}, headers)

	var cells []string
	for _, cell := range s.withPrefix("table:cell:0:") {
		cells = append(cells, cell.Text()...)
	}
	assert.Equal(t, []string{"Revenue", "100", "140"}, cells)

	badge, ok := s.byTag("badge")
	require.True(t, ok)
	assert.Equal(t, []string{"Indicative Terms Only"}, badge.Text())

	page, ok := s.byTag("header:page")
	require.True(t, ok)
	assert.Equal(t, []string{"Page 1"}, page.Text())

	takeaway, ok := s.byTag("takeaway")
	require.True(t, ok)
	assert.Equal(t, []string{"KEY TAKEAWAY", "Revenue up 40%"}, takeaway.Text())
}

func TestExportGanttRuns(t *testing.T) {
	d := &deck.Deck{ProjectName: "Acme", Slides: []deck.Slide{{
		ID:     "g",
		Layout: deck.LayoutGantt,
		Content: deck.Content{
			Title: "Timeline",
			GanttData: []deck.GanttItem{
				{Task: "Roadshow", StartWeek: 2, Duration: 3, Category: "A"},
				{Task: "Signing", StartWeek: 10, Duration: 6, Category: "B"},
			},
		},
	}}}
	c := &recordingCanvas{}
	_, err := export(d, testOpts, c)
	require.NoError(t, err)
	s := c.slides[0]

	axisX := marginX + ganttLabelWidth
	axisW := contentWidth - ganttLabelWidth

	bar, ok := s.byTag("gantt:bar:0")
	require.True(t, ok)
	assert.InDelta(t, 2.0/12, (bar.Box.X-axisX)/axisW, 1e-9)
	assert.InDelta(t, 5.0/12, (bar.Box.X+bar.Box.W-axisX)/axisW, 1e-9)
	assert.Equal(t, layout.CategoryColors[0], bar.Fill)

	overflow, ok := s.byTag("gantt:bar:1")
	require.True(t, ok)
	assert.InDelta(t, 16.0/12, (overflow.Box.X+overflow.Box.W-axisX)/axisW, 1e-9)
	assert.Equal(t, layout.CategoryColors[1], overflow.Fill)

	assert.Len(t, s.withPrefix("gantt:cell:0:"), 12)
	assert.Len(t, s.withPrefix("gantt:column:"), 12)
	for j, cell := range s.withPrefix("gantt:cell:0:") {
		covered := j >= 2 && j < 5
		assert.Equal(t, covered, cell.Fill == "EEF2FF", "week %d", j+1)
	}

	task, ok := s.byTag("gantt:task:0")
	require.True(t, ok)
	assert.Equal(t, []string{"Roadshow"}, task.Text())
}

func TestExportRingUsesCumulativeOffsets(t *testing.T) {
	d := &deck.Deck{Slides: []deck.Slide{{
		ID:     "d",
		Layout: deck.LayoutDistributionChart,
		Content: deck.Content{
			ChartData: []deck.ChartItem{{Label: "MLA", Value: 50}, {Label: "Arrangers", Value: 25}, {Label: "Participants", Value: 10}},
		},
	}}}
	c := &recordingCanvas{}
	_, err := export(d, testOpts, c)
	require.NoError(t, err)
	s := c.slides[0]

	tiles := s.withPrefix("ring:tile:")
	require.Len(t, tiles, ringTiles)
	counts := map[string]int{}
	for _, tile := range tiles {
		counts[tile.Fill]++
	}
	// 48 tiles: 50% -> 24, 25% -> 12, 10% -> tiles centered in [75, 85) -> 5, rest uncovered.
	assert.Equal(t, 24, counts[layout.CategoryColors[0]])
	assert.Equal(t, 12, counts[layout.CategoryColors[1]])
	assert.Equal(t, 5, counts[layout.CategoryColors[2]])
	assert.Equal(t, 7, counts[colorBorder])

	value, ok := s.byTag("ring:value:1")
	require.True(t, ok)
	assert.Equal(t, []string{"25%"}, value.Text())

	conclusion, ok := s.byTag("conclusion")
	require.True(t, ok)
	assert.Equal(t, []string{"分析结论: " + layout.FallbackConclusion}, conclusion.Text())
}

func TestSegmentAt(t *testing.T) {
	segs := []layout.Segment{{Value: 30, Offset: 0}, {Value: 50, Offset: 30}, {Value: 40, Offset: 80}}
	assert.Equal(t, 0, segmentAt(segs, 0))
	assert.Equal(t, 1, segmentAt(segs, 30))
	assert.Equal(t, 2, segmentAt(segs, 99))
	assert.Equal(t, -1, segmentAt(nil, 10))
}

func TestExportBankGridWraps(t *testing.T) {
	var targets []deck.BankTarget
	for _, n := range []string{"BOC", "ICBC", "CCB", "ABC", "HSBC", "DBS"} {
		targets = append(targets, deck.BankTarget{Name: n, Tier: "Tier 1", Role: "MLA"})
	}
	d := &deck.Deck{Slides: []deck.Slide{{ID: "b", Layout: deck.LayoutBankList, Content: deck.Content{BankTargets: targets}}}}
	c := &recordingCanvas{}
	_, err := export(d, testOpts, c)
	require.NoError(t, err)

	cards := c.slides[0].withPrefix("bank:card:")
	require.Len(t, cards, 6)
	assert.Equal(t, cards[0].Box.X, cards[4].Box.X)
	assert.Greater(t, cards[4].Box.Y, cards[3].Box.Y)
	assert.Equal(t, cards[0].Box.Y, cards[3].Box.Y)
	assert.Equal(t, []string{"Tier 1", "HSBC", "拟定邀请角色", "MLA"}, cards[4].Text())
}

func TestExportCoverHasNoHeader(t *testing.T) {
	d := &deck.Deck{ProjectName: "Atlas", Slides: []deck.Slide{{ID: "c", Layout: deck.LayoutTitleCover}}}
	c := &recordingCanvas{}
	_, err := export(d, testOpts, c)
	require.NoError(t, err)

	s := c.slides[0]
	assert.Empty(t, s.withPrefix("header:"))
	title, ok := s.byTag("cover:title")
	require.True(t, ok)
	assert.Equal(t, []string{"Atlas"}, title.Text())
	date, ok := s.byTag("cover:date")
	require.True(t, ok)
	assert.Equal(t, []string{"Date", "2026年10月"}, date.Text())
}

func TestExportSurfacesEveryFact(t *testing.T) {
	d := &deck.Deck{ProjectName: "Acme", Slides: []deck.Slide{
		{ID: "c", Layout: deck.LayoutTitleCover, Content: deck.Content{Title: "Project Atlas", Subtitle: "USD 500m"}},
		{ID: "e", Layout: deck.LayoutExecutiveSummary, Content: deck.Content{
			Title:       "Highlights",
			KeyTakeaway: "Strong demand",
			Points:      []string{"拟融5000万元"},
			Metrics:     []deck.Metric{{Label: "营收", Value: "1200", Unit: "万元", Trend: deck.TrendUp}},
		}},
		{ID: "g", Layout: deck.LayoutGantt, Content: deck.Content{GanttData: []deck.GanttItem{{Task: "Roadshow", StartWeek: 2, Duration: 3}}}},
		{ID: "d", Layout: deck.LayoutDistributionChart, Content: deck.Content{ChartData: []deck.ChartItem{{Label: "MLA", Value: 60.5}}}},
		{ID: "b", Layout: deck.LayoutBankList, Content: deck.Content{BankTargets: []deck.BankTarget{{Name: "HSBC", Tier: "T1", Role: "Arranger"}}}},
		{ID: "x", Layout: "HERO_IMAGE", Content: deck.Content{Title: "Unknown layout"}},
	}}
	c := &recordingCanvas{}
	_, err := export(d, testOpts, c)
	require.NoError(t, err)

	pages := layout.Build(d, testOpts.Layout)
	require.Len(t, c.slides, len(pages))
	for i, p := range pages {
		text := c.slides[i].text()
		for _, fact := range p.Facts() {
			assert.Contains(t, text, fact, "slide %d", i+1)
		}
	}
}

func TestFileName(t *testing.T) {
	name, err := FileName("Acme", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme_银团贷款融资方案.pptx", name)

	name, err = FileName("  ", "")
	require.NoError(t, err)
	assert.Equal(t, "pitch-deck_银团贷款融资方案.pptx", name)

	name, err = FileName("Acme/Beta: Holdings", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme_Beta_ Holdings_银团贷款融资方案.pptx", name)

	name, err = FileName("Acme", "board-pack")
	require.NoError(t, err)
	assert.Equal(t, "board-pack.pptx", name)

	name, err = FileName("Acme", "deck.PPTX")
	require.NoError(t, err)
	assert.Equal(t, "deck.PPTX", name)

	for _, bad := range []string{"../etc/passwd", `a\b`, "a:b", "..", "a\x00b"} {
		_, err := FileName("Acme", bad)
		var exportErr *errs.ExportError
		require.True(t, errors.As(err, &exportErr), bad)
		assert.Equal(t, errs.ExportInvalidName, exportErr.Reason)
	}
}

func TestExportWritesReadablePresentation(t *testing.T) {
	f, err := Export(acmeDeck(), testOpts)
	require.NoError(t, err)
	require.NotEmpty(t, f.Data)

	path := filepath.Join(t.TempDir(), f.Name)
	require.NoError(t, os.WriteFile(path, f.Data, 0o600))

	reader := &ppt.PPTXReader{}
	pres, err := reader.Read(path)
	require.NoError(t, err)

	props := pres.GetDocumentProperties()
	assert.Equal(t, "Acme - 银团贷款融资方案", props.Title)
	assert.Equal(t, "Acme - 银团贷款融资方案", props.Subject)
	assert.Equal(t, "Syndicate Pitch PRO", props.Creator)
	assert.Contains(t, zipEntry(t, f.Data, "docProps/app.xml"), "<Company>Global Investment Banking Division</Company>")

	slides := pres.GetAllSlides()
	require.Len(t, slides, 1)

	var texts []string
	sizes := make(map[string]int)
	for _, sh := range slides[0].GetShapes() {
		rts, ok := sh.(*ppt.RichTextShape)
		if !ok {
			continue
		}
		for _, para := range rts.GetParagraphs() {
			var line string
			for _, elem := range para.GetElements() {
				if run, ok := elem.(*ppt.TextRun); ok {
					line += run.GetText()
					sizes[run.GetText()] = run.GetFont().Size
				}
			}
			if line = strings.TrimSpace(line); line != "" {
				texts = append(texts, line)
			}
		}
	}

	for _, want := range []string{"Financials", "Revenue up 40%", "Metric", "2024", "2025", "Revenue", "100", "140", "Indicative Terms Only"} {
		assert.Contains(t, texts, want)
	}

	// Font sizes survive the round trip unchanged.
	rec := &recordingCanvas{}
	_, err = export(acmeDeck(), testOpts, rec)
	require.NoError(t, err)
	for _, sh := range rec.slides[0].shapes {
		for _, para := range sh.Paragraphs {
			for _, r := range para.Runs {
				if got, ok := sizes[r.Text]; ok && r.Size > 0 {
					assert.Equal(t, int(r.Size), got, r.Text)
				}
			}
		}
	}
}

func zipEntry(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, zf := range zr.File {
		if zf.Name != name {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatalf("%s not found in package", name)
	return ""
}

func TestSetFontSizeDefaultsUnsizedRuns(t *testing.T) {
	p := ppt.New()
	rt := p.GetActiveSlide().CreateRichTextShape()

	tr := rt.CreateTextRun("a")
	setFontSize(tr, size36)
	assert.Equal(t, 36, tr.GetFont().Size)

	tr = rt.CreateTextRun("b")
	setFontSize(tr, 0)
	assert.Equal(t, int(size10), tr.GetFont().Size)
}
