package layout

import "github.com/GregMSThompson/pitch-backend/internal/deck"

// Kind selects the drawing routine a renderer uses for a page.
type Kind string

const (
	KindCover        Kind = "cover"
	KindGantt        Kind = "gantt"
	KindDistribution Kind = "distribution"
	KindBanks        Kind = "banks"
	KindTable        Kind = "table"
	KindStandard     Kind = "standard"
)

// Page is the renderer-agnostic description of one slide. Nil blocks and
// empty strings are omitted by both renderers.
type Page struct {
	Index   int
	Number  int
	SlideID string
	Layout  deck.Layout
	Kind    Kind

	Header *Header
	Cover  *Cover

	Title    string
	Subtitle string
	Badge    string
	Takeaway *Panel

	Metrics     []MetricTile
	Points      []Point
	Summary     *Panel
	Placeholder *Panel

	Gantt      *GanttChart
	Ring       *Ring
	Cards      *CardGrid
	Table      *TableGrid
	Conclusion *Panel
	Detail     *Panel
}

type Header struct {
	Mark    string
	Project string
	Notice  string
	Page    string
}

type Cover struct {
	Kicker           string
	Title            string
	Subtitle         string
	PreparedForLabel string
	PreparedFor      string
	DateLabel        string
	Date             string
	Brand            string
	Division         string
	Confidential     string
}

type Panel struct {
	Label string
	Text  string
}

type MetricTile struct {
	Label string
	Value string
	Unit  string
	Trend deck.Trend
	Glyph string
}

// Display joins value and unit the way both renderers print them.
func (m MetricTile) Display() string {
	return m.Value + m.Unit
}

type Point struct {
	Number int
	Text   string
}

type GanttChart struct {
	LabelHeader string
	Columns     []string
	Bars        []Bar
	Legend      []LegendEntry
}

// Bar positions are fractions of the 12-week axis. They are not clamped, so
// Start+Width may exceed 1.
type Bar struct {
	Task      string
	Category  string
	StartWeek int
	Duration  int
	Start     float64
	Width     float64
	Palette   int
}

func (b Bar) End() float64 { return b.Start + b.Width }

// Covers reports whether week column col (0-based) falls inside the bar.
func (b Bar) Covers(col int) bool {
	return col >= b.StartWeek && col < b.StartWeek+b.Duration
}

type LegendEntry struct {
	Label   string
	Palette int
}

// Ring values and offsets are in percent of the circumference.
type Ring struct {
	CenterValue string
	CenterLabel string
	Segments    []Segment
}

type Segment struct {
	Label  string
	Value  float64
	Offset float64
	Color  string
}

// Display is the legend text for the segment value.
func (s Segment) Display() string {
	return FormatValue(s.Value) + "%"
}

type CardGrid struct {
	Columns   int
	RoleLabel string
	Cards     []BankCard
}

// Rows is the number of grid rows the cards wrap onto.
func (g CardGrid) Rows() int {
	if g.Columns <= 0 || len(g.Cards) == 0 {
		return 0
	}
	return (len(g.Cards) + g.Columns - 1) / g.Columns
}

type BankCard struct {
	Name   string
	Tier   string
	Role   string
	Row    int
	Column int
}

type TableGrid struct {
	Headers []string
	Rows    [][]string
}

// Shaded reports whether body row i gets the alternate background.
func (t TableGrid) Shaded(i int) bool { return i%2 == 1 }
