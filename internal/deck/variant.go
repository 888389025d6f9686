package deck

// Variant is the typed view of a slide. Each concrete type carries only the
// fields meaningful to its layout. Slides that do not satisfy their layout's
// required fields, or carry an unknown layout, come back as Partial.
type Variant interface {
	Layout() Layout
	variant()
}

type Cover struct {
	Title    string
	Subtitle string
}

type ExecutiveSummary struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Points      []string
	Metrics     []Metric
	Body        string
}

type Strategy struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Body        string
	Metrics     []Metric
	Points      []string
}

type Table struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Data        TableData
	Body        string
}

type Distribution struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Items       []ChartItem
	Body        string
}

type TwoColumn struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Points      []string
	Metrics     []Metric
	Body        string
}

type Gantt struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Items       []GanttItem
	Body        string
}

type BankList struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Targets     []BankTarget
	Body        string
}

type Timeline struct {
	Title       string
	Subtitle    string
	KeyTakeaway string
	Events      []TimelineEvent
	Points      []string
	Body        string
}

// Partial is a freshly generated slide pending repair.
type Partial struct {
	Tag     Layout
	Content Content
	Missing []Field
}

func (Cover) Layout() Layout            { return LayoutTitleCover }
func (ExecutiveSummary) Layout() Layout { return LayoutExecutiveSummary }
func (Strategy) Layout() Layout         { return LayoutStrategy }
func (Table) Layout() Layout            { return LayoutTable }
func (Distribution) Layout() Layout     { return LayoutDistributionChart }
func (TwoColumn) Layout() Layout        { return LayoutTwoColumn }
func (Gantt) Layout() Layout            { return LayoutGantt }
func (BankList) Layout() Layout         { return LayoutBankList }
func (Timeline) Layout() Layout         { return LayoutTimeline }
func (p Partial) Layout() Layout        { return p.Tag }

func (Cover) variant()            {}
func (ExecutiveSummary) variant() {}
func (Strategy) variant()         {}
func (Table) variant()            {}
func (Distribution) variant()     {}
func (TwoColumn) variant()        {}
func (Gantt) variant()            {}
func (BankList) variant()         {}
func (Timeline) variant()         {}
func (Partial) variant()          {}

// Variant narrows the slide to its typed form.
func (s *Slide) Variant() Variant {
	c := s.Content
	missing := s.Missing()
	if !s.Layout.Valid() || len(missing) > 0 {
		return Partial{Tag: s.Layout, Content: c, Missing: missing}
	}

	switch s.Layout {
	case LayoutTitleCover:
		return Cover{Title: c.Title, Subtitle: c.Subtitle}
	case LayoutExecutiveSummary:
		return ExecutiveSummary{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Points: c.Points, Metrics: c.Metrics, Body: c.Body}
	case LayoutStrategy:
		return Strategy{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Body: c.Body, Metrics: c.Metrics, Points: c.Points}
	case LayoutTable:
		return Table{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Data: *c.TableData, Body: c.Body}
	case LayoutDistributionChart:
		return Distribution{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Items: c.ChartData, Body: c.Body}
	case LayoutTwoColumn:
		return TwoColumn{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Points: c.Points, Metrics: c.Metrics, Body: c.Body}
	case LayoutGantt:
		return Gantt{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Items: c.GanttData, Body: c.Body}
	case LayoutBankList:
		return BankList{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Targets: c.BankTargets, Body: c.Body}
	default:
		return Timeline{Title: c.Title, Subtitle: c.Subtitle, KeyTakeaway: c.KeyTakeaway, Events: c.TimelineEvents, Points: c.Points, Body: c.Body}
	}
}

// Summary counts slides per typed variant; partial slides are counted under "PARTIAL".
func (d *Deck) Summary() map[string]int {
	out := make(map[string]int)
	for i := range d.Slides {
		switch d.Slides[i].Variant().(type) {
		case Partial:
			out["PARTIAL"]++
		default:
			out[string(d.Slides[i].Layout)]++
		}
	}
	return out
}
