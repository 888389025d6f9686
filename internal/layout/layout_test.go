package layout

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
)

var fixedNow = time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

func TestBuildPreservesOrderAndDispatch(t *testing.T) {
	d := &deck.Deck{
		ProjectName: "Acme",
		Slides: []deck.Slide{
			{ID: "c", Layout: deck.LayoutTitleCover},
			{ID: "g", Layout: deck.LayoutGantt},
			{ID: "d", Layout: deck.LayoutDistributionChart},
			{ID: "b", Layout: deck.LayoutBankList},
			{ID: "t", Layout: deck.LayoutTable},
			{ID: "e", Layout: deck.LayoutExecutiveSummary},
			{ID: "tl", Layout: deck.LayoutTimeline},
			{ID: "s", Layout: deck.LayoutStrategy},
			{ID: "two", Layout: deck.LayoutTwoColumn},
			{ID: "x", Layout: "HERO_IMAGE"},
		},
	}

	pages := Build(d, Options{Now: fixedNow})
	require.Len(t, pages, 10)

	want := []Kind{KindCover, KindGantt, KindDistribution, KindBanks, KindTable,
		KindStandard, KindStandard, KindStandard, KindStandard, KindStandard}
	for i, p := range pages {
		assert.Equal(t, want[i], p.Kind, "page %d", i)
		assert.Equal(t, d.Slides[i].ID, p.SlideID)
		assert.Equal(t, i+1, p.Number)
	}
	assert.Nil(t, pages[0].Header)
	assert.Equal(t, "Page 2", pages[1].Header.Page)
	assert.Equal(t, "Acme | 银团贷款融资方案", pages[1].Header.Project)
}

func TestBuildEmptyDeck(t *testing.T) {
	assert.Empty(t, Build(&deck.Deck{}, Options{}))
}

func TestCoverFallbacks(t *testing.T) {
	p := BuildPage(deck.Slide{ID: "c", Layout: deck.LayoutTitleCover}, "", 0, Options{Now: fixedNow, Locale: "zh-CN"})

	require.NotNil(t, p.Cover)
	assert.Equal(t, FallbackProject, p.Cover.Title)
	assert.Equal(t, FallbackSubtitle, p.Cover.Subtitle)
	assert.Equal(t, "Untitled Project Management", p.Cover.PreparedFor)
	assert.Equal(t, "2026年3月", p.Cover.Date)
	assert.Nil(t, p.Takeaway)
}

func TestCoverUsesContent(t *testing.T) {
	s := deck.Slide{ID: "c", Layout: deck.LayoutTitleCover, Content: deck.Content{Title: "Project Atlas", Subtitle: "USD 500m Term Loan"}}
	p := BuildPage(s, "Atlas", 0, Options{Now: fixedNow, Locale: "en-US"})

	assert.Equal(t, "Project Atlas", p.Cover.Title)
	assert.Equal(t, "USD 500m Term Loan", p.Cover.Subtitle)
	assert.Equal(t, "March 2026", p.Cover.Date)
}

func TestGanttBarsAreFractionsOfTwelve(t *testing.T) {
	s := deck.Slide{ID: "g", Layout: deck.LayoutGantt, Content: deck.Content{
		GanttData: []deck.GanttItem{
			{Task: "Roadshow", StartWeek: 2, Duration: 3, Category: "A"},
			{Task: "Signing", StartWeek: 10, Duration: 6, Category: "B"},
			{Task: "Drawdown", StartWeek: 0, Duration: 1, Category: "C"},
			{Task: "Closing", StartWeek: 11, Duration: 1, Category: "D"},
		},
	}}

	p := BuildPage(s, "Acme", 1, Options{})
	require.NotNil(t, p.Gantt)
	bars := p.Gantt.Bars

	assert.InDelta(t, 2.0/12, bars[0].Start, 1e-9)
	assert.InDelta(t, 3.0/12, bars[0].Width, 1e-9)
	assert.InDelta(t, 5.0/12, bars[0].End(), 1e-9)

	assert.InDelta(t, 10.0/12, bars[1].Start, 1e-9)
	assert.InDelta(t, 6.0/12, bars[1].Width, 1e-9)
	assert.Greater(t, bars[1].End(), 1.0)

	assert.Equal(t, []int{0, 1, 2, 0}, []int{bars[0].Palette, bars[1].Palette, bars[2].Palette, bars[3].Palette})
	assert.Len(t, p.Gantt.Columns, 12)
	assert.Equal(t, "W1", p.Gantt.Columns[0])
	assert.Equal(t, "W12", p.Gantt.Columns[11])
	assert.Len(t, p.Gantt.Legend, 3)

	assert.True(t, bars[0].Covers(2))
	assert.True(t, bars[0].Covers(4))
	assert.False(t, bars[0].Covers(5))
	assert.Nil(t, p.Detail)
}

func TestRingOffsetsAreCumulative(t *testing.T) {
	s := deck.Slide{ID: "d", Layout: deck.LayoutDistributionChart, Content: deck.Content{
		ChartData: []deck.ChartItem{
			{Label: "MLA", Value: 30},
			{Label: "Arrangers", Value: 25.5, Color: "#1e1b4b"},
			{Label: "Participants", Value: 20},
			{Label: "Retail", Value: 10, Color: "teal"},
		},
	}}

	p := BuildPage(s, "Acme", 2, Options{})
	require.NotNil(t, p.Ring)
	segs := p.Ring.Segments

	assert.Equal(t, []float64{0, 30, 55.5, 75.5}, []float64{segs[0].Offset, segs[1].Offset, segs[2].Offset, segs[3].Offset})
	assert.Equal(t, CategoryColors[0], segs[0].Color)
	assert.Equal(t, "1E1B4B", segs[1].Color)
	assert.Equal(t, CategoryColors[2], segs[2].Color)
	assert.Equal(t, CategoryColors[0], segs[3].Color)
	assert.Equal(t, "25.5%", segs[1].Display())

	assert.Equal(t, FallbackConclusion, p.Conclusion.Text)
	assert.Nil(t, p.Detail)
}

func TestDistributionDetailThreshold(t *testing.T) {
	short := strings.Repeat("流", 50)
	long := strings.Repeat("流", 51)

	p := BuildPage(deck.Slide{Layout: deck.LayoutDistributionChart, Content: deck.Content{Body: short}}, "", 0, Options{})
	assert.Equal(t, short, p.Conclusion.Text)
	assert.Nil(t, p.Detail)

	p = BuildPage(deck.Slide{Layout: deck.LayoutDistributionChart, Content: deck.Content{Body: long}}, "", 0, Options{})
	require.NotNil(t, p.Detail)
	assert.Equal(t, DetailLabel, p.Detail.Label)
}

func TestBankCardsWrapAtFourColumns(t *testing.T) {
	var targets []deck.BankTarget
	for _, name := range []string{"BOC", "ICBC", "CCB", "ABC", "HSBC"} {
		targets = append(targets, deck.BankTarget{Name: name, Tier: "MLA", Role: "Bookrunner"})
	}
	p := BuildPage(deck.Slide{Layout: deck.LayoutBankList, Content: deck.Content{BankTargets: targets, Body: "x"}}, "Acme", 3, Options{})

	require.NotNil(t, p.Cards)
	assert.Equal(t, 2, p.Cards.Rows())
	last := p.Cards.Cards[4]
	assert.Equal(t, "HSBC", last.Name)
	assert.Equal(t, 1, last.Row)
	assert.Equal(t, 0, last.Column)
	require.NotNil(t, p.Detail)
}

func TestTableCopiesGrid(t *testing.T) {
	td := &deck.TableData{Headers: []string{"Metric", "2024", "2025"}, Rows: [][]string{{"Revenue", "100", "140"}, {"EBITDA"}}}
	s := deck.Slide{ID: "1", Layout: deck.LayoutTable, Content: deck.Content{Title: "Financials", KeyTakeaway: "Revenue up 40%", TableData: td}}

	p := BuildPage(s, "Acme", 0, Options{})
	require.NotNil(t, p.Table)
	assert.Equal(t, TableBadge, p.Badge)
	assert.Equal(t, td.Headers, p.Table.Headers)
	assert.Equal(t, []string{"EBITDA"}, p.Table.Rows[1])
	assert.False(t, p.Table.Shaded(0))
	assert.True(t, p.Table.Shaded(1))

	p.Table.Rows[0][0] = "changed"
	assert.Equal(t, "Revenue", td.Rows[0][0])
}

func TestTableWithoutData(t *testing.T) {
	p := BuildPage(deck.Slide{Layout: deck.LayoutTable}, "Acme", 0, Options{})
	require.NotNil(t, p.Table)
	assert.Empty(t, p.Table.Headers)
	assert.Empty(t, p.Table.Rows)
	assert.Equal(t, TableBadge, p.Badge)
}

func TestStandardPage(t *testing.T) {
	s := deck.Slide{ID: "tl", Layout: deck.LayoutTimeline, Content: deck.Content{
		Title:   "Execution",
		Metrics: []deck.Metric{{Label: "Size", Value: "500", Unit: "m", Trend: deck.TrendUp}, {Label: "Tenor", Value: "5", Unit: "yrs"}},
		Points:  []string{"Launch in Q2"},
		TimelineEvents: []deck.TimelineEvent{
			{Date: "2026-04", Event: "Mandate", Description: "MLA appointed"},
			{Event: "Signing"},
		},
	}}

	p := BuildPage(s, "Acme", 4, Options{})
	assert.Equal(t, KindStandard, p.Kind)
	assert.Equal(t, "↑", p.Metrics[0].Glyph)
	assert.Equal(t, "", p.Metrics[1].Glyph)
	assert.Equal(t, "500m", p.Metrics[0].Display())
	assert.Equal(t, []Point{
		{Number: 1, Text: "Launch in Q2"},
		{Number: 2, Text: "2026-04 · Mandate — MLA appointed"},
		{Number: 3, Text: "Signing"},
	}, p.Points)
	assert.Equal(t, FallbackSummary, p.Summary.Text)
	assert.NotNil(t, p.Placeholder)
	assert.Nil(t, p.Takeaway)
	assert.Nil(t, p.Detail)
}

func TestStandardDetailThreshold(t *testing.T) {
	body := strings.Repeat("a", 101)
	p := BuildPage(deck.Slide{Layout: deck.LayoutStrategy, Content: deck.Content{Body: body}}, "", 0, Options{})
	assert.Equal(t, body, p.Summary.Text)
	require.NotNil(t, p.Detail)
}

func TestFacts(t *testing.T) {
	s := deck.Slide{ID: "1", Layout: deck.LayoutTable, Content: deck.Content{
		Title:       "Financials",
		KeyTakeaway: "Revenue up 40%",
		TableData:   &deck.TableData{Headers: []string{"Metric", "2024", "2025"}, Rows: [][]string{{"Revenue", "100", "140"}}},
	}}
	p := BuildPage(s, "Acme", 0, Options{})

	assert.Equal(t, []string{"Financials", "Revenue up 40%", "Metric", "2024", "2025", "Revenue", "100", "140"}, p.Facts())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "40", FormatValue(40))
	assert.Equal(t, "12.5", FormatValue(12.5))
	assert.Equal(t, "-3", FormatValue(-3))
}

func TestBuildDoesNotMutateDeck(t *testing.T) {
	d := &deck.Deck{ProjectName: "", Slides: []deck.Slide{{ID: "c", Layout: deck.LayoutTitleCover}}}
	Build(d, Options{})
	assert.Equal(t, "", d.ProjectName)
	assert.Equal(t, "", d.Slides[0].Content.Title)
}
