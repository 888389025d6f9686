package deck

import (
	"encoding/json"
	"math"
)

// Layout selects which content fields a slide uses and how it is drawn.
type Layout string

const (
	LayoutTitleCover        Layout = "TITLE_COVER"
	LayoutExecutiveSummary  Layout = "EXECUTIVE_SUMMARY"
	LayoutTimeline          Layout = "TIMELINE"
	LayoutGantt             Layout = "GANTT"
	LayoutStrategy          Layout = "STRATEGY"
	LayoutDistributionChart Layout = "DISTRIBUTION_CHART"
	LayoutTable             Layout = "TABLE"
	LayoutTwoColumn         Layout = "TWO_COLUMN"
	LayoutBankList          Layout = "BANK_LIST"
)

var layouts = []Layout{
	LayoutTitleCover,
	LayoutExecutiveSummary,
	LayoutTimeline,
	LayoutGantt,
	LayoutStrategy,
	LayoutDistributionChart,
	LayoutTable,
	LayoutTwoColumn,
	LayoutBankList,
}

// Layouts returns the closed set of layout tags in declaration order.
func Layouts() []Layout {
	out := make([]Layout, len(layouts))
	copy(out, layouts)
	return out
}

func ParseLayout(s string) (Layout, bool) {
	l := Layout(s)
	return l, l.Valid()
}

func (l Layout) Valid() bool {
	for _, known := range layouts {
		if l == known {
			return true
		}
	}
	return false
}

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

func Trends() []Trend {
	return []Trend{TrendUp, TrendDown, TrendNeutral}
}

type Metric struct {
	Label string `json:"label" yaml:"label" firestore:"label"`
	Value string `json:"value" yaml:"value" firestore:"value"`
	Unit  string `json:"unit,omitempty" yaml:"unit,omitempty" firestore:"unit,omitempty"`
	Trend Trend  `json:"trend,omitempty" yaml:"trend,omitempty" firestore:"trend,omitempty"`
}

// TableData rows are not required to match the header width.
type TableData struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

type TimelineEvent struct {
	Date        string `json:"date" yaml:"date" firestore:"date"`
	Event       string `json:"event" yaml:"event" firestore:"event"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" firestore:"description,omitempty"`
}

// GanttItem sits on a fixed 12-week axis. Items running past week 12 are kept as is.
type GanttItem struct {
	Task      string `json:"task" yaml:"task" firestore:"task"`
	StartWeek int    `json:"startWeek" yaml:"startWeek" firestore:"startWeek"`
	Duration  int    `json:"duration" yaml:"duration" firestore:"duration"`
	Category  string `json:"category" yaml:"category" firestore:"category"`
}

// UnmarshalJSON accepts fractional week numbers, which generators emit
// as plain JSON numbers, and rounds them to whole weeks.
func (g *GanttItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Task      string  `json:"task"`
		StartWeek float64 `json:"startWeek"`
		Duration  float64 `json:"duration"`
		Category  string  `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Task = raw.Task
	g.StartWeek = roundWeeks(raw.StartWeek)
	g.Duration = roundWeeks(raw.Duration)
	g.Category = raw.Category
	return nil
}

// maxGanttWeeks bounds decoded week numbers. Values beyond it still overflow
// the 12-week axis and are reported by Validate, but stay far from the int
// conversion limit.
const maxGanttWeeks = 10000

func roundWeeks(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f > maxGanttWeeks:
		return maxGanttWeeks
	case f < -maxGanttWeeks:
		return -maxGanttWeeks
	}
	return int(math.Round(f))
}

// ChartItem values are parts of 100. They are never normalized.
type ChartItem struct {
	Label string  `json:"label" yaml:"label" firestore:"label"`
	Value float64 `json:"value" yaml:"value" firestore:"value"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty" firestore:"color,omitempty"`
}

type BankTarget struct {
	Name string `json:"name" yaml:"name" firestore:"name"`
	Tier string `json:"tier" yaml:"tier" firestore:"tier"`
	Role string `json:"role" yaml:"role" firestore:"role"`
}

// Content is the open bag of slide fields. Every field is optional; the
// layout decides which ones are expected.
type Content struct {
	Title          string          `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle       string          `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	KeyTakeaway    string          `json:"keyTakeaway,omitempty" yaml:"keyTakeaway,omitempty"`
	Body           string          `json:"body,omitempty" yaml:"body,omitempty"`
	Points         []string        `json:"points,omitempty" yaml:"points,omitempty"`
	Metrics        []Metric        `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	TableData      *TableData      `json:"tableData,omitempty" yaml:"tableData,omitempty"`
	TimelineEvents []TimelineEvent `json:"timelineEvents,omitempty" yaml:"timelineEvents,omitempty"`
	GanttData      []GanttItem     `json:"ganttData,omitempty" yaml:"ganttData,omitempty"`
	ChartData      []ChartItem     `json:"chartData,omitempty" yaml:"chartData,omitempty"`
	BankTargets    []BankTarget    `json:"bankTargets,omitempty" yaml:"bankTargets,omitempty"`
}

type Slide struct {
	ID      string  `json:"id" yaml:"id"`
	Layout  Layout  `json:"layout" yaml:"layout"`
	Content Content `json:"content" yaml:"content"`
}

// Deck is replaced wholesale, never patched field by field.
type Deck struct {
	ProjectName string  `json:"projectName" yaml:"projectName"`
	Slides      []Slide `json:"slides" yaml:"slides"`
}
