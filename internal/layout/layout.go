package layout

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
)

const (
	AxisWeeks   = 12
	CardColumns = 4

	FallbackProject     = "Untitled Project"
	FallbackSubtitle    = "银团贷款融资方案建议书"
	FallbackConclusion  = "基于当前市场流动性环境，建议采取分层分销策略，优先锁定核心基石银行。"
	FallbackSummary     = "本章节重点阐述了交易的战略意义及对市场的潜在影响。基于严谨的数据分析与行业洞察。"
	TableBadge          = "Indicative Terms Only"
	TakeawayLabel       = "KEY TAKEAWAY"
	DetailLabel         = "详细说明"
	distributionDetail  = 50
	standardDetail      = 100
	headerSuffix        = " | 银团贷款融资方案"
	confidentialNotice  = "Strictly Private & Confidential"
	headerMark          = "SB"
	ganttLabelHeader    = "关键里程碑 / 阶段"
	bankRoleLabel       = "拟定邀请角色"
	conclusionLabel     = "分析结论"
	summaryLabel        = "Strategic Summary"
	placeholderLabel    = "Benchmark Comparison"
	placeholderText     = "Market standard data visualization placeholder"
	ringCenterValue     = "100%"
	ringCenterLabel     = "Target Allocation"
	coverKicker         = "PROJECT FINANCE & SYNDICATION"
	coverBrand          = "Syndicate Pitch PRO"
	coverDivision       = "Global Investment Banking Division"
	coverConfidential   = "CONFIDENTIAL"
	coverPreparedFor    = "Prepared For"
	coverDateLabel      = "Date"
	timelineSeparator   = " · "
	timelineDescription = " — "
)

// CategoryColors is the three-color cycle shared by gantt categories and
// chart segments without an explicit color.
var CategoryColors = [3]string{"0F172A", "F59E0B", "059669"}

var legendLabels = [3]string{"启动与筹备", "市场路演", "签约与提款"}

type Options struct {
	Now    time.Time
	Locale string
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

type builder func(p *Page, c *deck.Content, project string, opts Options)

var builders = map[deck.Layout]builder{
	deck.LayoutTitleCover:        buildCover,
	deck.LayoutGantt:             buildGantt,
	deck.LayoutDistributionChart: buildDistribution,
	deck.LayoutBankList:          buildBanks,
	deck.LayoutTable:             buildTable,
}

// ProjectLabel returns the project name or the fallback label.
func ProjectLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return FallbackProject
	}
	return strings.TrimSpace(name)
}

// Build describes every slide of the deck in order. It never mutates d.
func Build(d *deck.Deck, opts Options) []Page {
	pages := make([]Page, 0, len(d.Slides))
	for i := range d.Slides {
		pages = append(pages, BuildPage(d.Slides[i], d.ProjectName, i, opts))
	}
	return pages
}

// BuildPage describes a single slide at 0-based position index.
func BuildPage(s deck.Slide, projectName string, index int, opts Options) Page {
	project := ProjectLabel(projectName)
	p := Page{
		Index:   index,
		Number:  index + 1,
		SlideID: s.ID,
		Layout:  s.Layout,
	}

	build, ok := builders[s.Layout]
	if !ok {
		build = buildStandard
	}
	if s.Layout != deck.LayoutTitleCover {
		p.Header = &Header{
			Mark:    headerMark,
			Project: project + headerSuffix,
			Notice:  confidentialNotice,
			Page:    fmt.Sprintf("Page %d", p.Number),
		}
		p.Title = s.Content.Title
		p.Subtitle = s.Content.Subtitle
		if strings.TrimSpace(s.Content.KeyTakeaway) != "" {
			p.Takeaway = &Panel{Label: TakeawayLabel, Text: s.Content.KeyTakeaway}
		}
	}

	build(&p, &s.Content, project, opts)
	return p
}

func buildCover(p *Page, c *deck.Content, project string, opts Options) {
	p.Kind = KindCover
	p.Cover = &Cover{
		Kicker:           coverKicker,
		Title:            firstNonBlank(c.Title, project),
		Subtitle:         firstNonBlank(c.Subtitle, FallbackSubtitle),
		PreparedForLabel: coverPreparedFor,
		PreparedFor:      project + " Management",
		DateLabel:        coverDateLabel,
		Date:             FormatYearMonth(opts.now(), opts.Locale),
		Brand:            coverBrand,
		Division:         coverDivision,
		Confidential:     coverConfidential,
	}
}

func buildGantt(p *Page, c *deck.Content, _ string, _ Options) {
	p.Kind = KindGantt
	chart := &GanttChart{
		LabelHeader: ganttLabelHeader,
		Columns:     make([]string, AxisWeeks),
		Bars:        make([]Bar, 0, len(c.GanttData)),
	}
	for i := range chart.Columns {
		chart.Columns[i] = fmt.Sprintf("W%d", i+1)
	}
	for i, item := range c.GanttData {
		chart.Bars = append(chart.Bars, Bar{
			Task:      item.Task,
			Category:  item.Category,
			StartWeek: item.StartWeek,
			Duration:  item.Duration,
			Start:     float64(item.StartWeek) / AxisWeeks,
			Width:     float64(item.Duration) / AxisWeeks,
			Palette:   i % len(CategoryColors),
		})
	}
	for i, label := range legendLabels {
		chart.Legend = append(chart.Legend, LegendEntry{Label: label, Palette: i})
	}
	p.Gantt = chart
	p.Detail = detail(c.Body, 0)
}

func buildDistribution(p *Page, c *deck.Content, _ string, _ Options) {
	p.Kind = KindDistribution
	ring := &Ring{
		CenterValue: ringCenterValue,
		CenterLabel: ringCenterLabel,
		Segments:    make([]Segment, 0, len(c.ChartData)),
	}
	offset := 0.0
	for i, item := range c.ChartData {
		ring.Segments = append(ring.Segments, Segment{
			Label:  item.Label,
			Value:  item.Value,
			Offset: offset,
			Color:  SegmentColor(item.Color, i),
		})
		offset += item.Value
	}
	p.Ring = ring
	p.Conclusion = &Panel{Label: conclusionLabel, Text: firstNonBlank(c.Body, FallbackConclusion)}
	p.Detail = detail(c.Body, distributionDetail)
}

func buildBanks(p *Page, c *deck.Content, _ string, _ Options) {
	p.Kind = KindBanks
	grid := &CardGrid{
		Columns:   CardColumns,
		RoleLabel: bankRoleLabel,
		Cards:     make([]BankCard, 0, len(c.BankTargets)),
	}
	for i, bank := range c.BankTargets {
		grid.Cards = append(grid.Cards, BankCard{
			Name:   bank.Name,
			Tier:   bank.Tier,
			Role:   bank.Role,
			Row:    i / CardColumns,
			Column: i % CardColumns,
		})
	}
	p.Cards = grid
	p.Detail = detail(c.Body, 0)
}

func buildTable(p *Page, c *deck.Content, _ string, _ Options) {
	p.Kind = KindTable
	p.Badge = TableBadge
	grid := &TableGrid{}
	if c.TableData != nil {
		grid.Headers = append([]string(nil), c.TableData.Headers...)
		for _, row := range c.TableData.Rows {
			grid.Rows = append(grid.Rows, append([]string(nil), row...))
		}
	}
	p.Table = grid
	p.Detail = detail(c.Body, 0)
}

func buildStandard(p *Page, c *deck.Content, _ string, _ Options) {
	p.Kind = KindStandard
	for _, m := range c.Metrics {
		p.Metrics = append(p.Metrics, MetricTile{
			Label: m.Label,
			Value: m.Value,
			Unit:  m.Unit,
			Trend: m.Trend,
			Glyph: TrendGlyph(m.Trend),
		})
	}
	for _, text := range c.Points {
		p.Points = append(p.Points, Point{Number: len(p.Points) + 1, Text: text})
	}
	for _, ev := range c.TimelineEvents {
		p.Points = append(p.Points, Point{Number: len(p.Points) + 1, Text: TimelineText(ev)})
	}
	p.Summary = &Panel{Label: summaryLabel, Text: firstNonBlank(c.Body, FallbackSummary)}
	p.Placeholder = &Panel{Label: placeholderLabel, Text: placeholderText}
	p.Detail = detail(c.Body, standardDetail)
}

// detail returns the long-form body panel when body has more than minRunes runes.
func detail(body string, minRunes int) *Panel {
	if strings.TrimSpace(body) == "" || utf8.RuneCountInString(body) <= minRunes {
		return nil
	}
	return &Panel{Label: DetailLabel, Text: body}
}

func TimelineText(ev deck.TimelineEvent) string {
	var b strings.Builder
	if ev.Date != "" {
		b.WriteString(ev.Date)
		b.WriteString(timelineSeparator)
	}
	b.WriteString(ev.Event)
	if ev.Description != "" {
		b.WriteString(timelineDescription)
		b.WriteString(ev.Description)
	}
	return b.String()
}

func TrendGlyph(t deck.Trend) string {
	switch t {
	case deck.TrendUp:
		return "↑"
	case deck.TrendDown:
		return "↓"
	case deck.TrendNeutral:
		return "→"
	default:
		return ""
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
