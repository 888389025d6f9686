package deck

import "strings"

// Field names a content field by its wire name.
type Field string

const (
	FieldTitle          Field = "title"
	FieldSubtitle       Field = "subtitle"
	FieldKeyTakeaway    Field = "keyTakeaway"
	FieldBody           Field = "body"
	FieldPoints         Field = "points"
	FieldMetrics        Field = "metrics"
	FieldTableData      Field = "tableData"
	FieldTimelineEvents Field = "timelineEvents"
	FieldGanttData      Field = "ganttData"
	FieldChartData      Field = "chartData"
	FieldBankTargets    Field = "bankTargets"
)

var requiredFields = map[Layout][]Field{
	LayoutTitleCover:        {FieldTitle, FieldSubtitle},
	LayoutExecutiveSummary:  {FieldTitle, FieldKeyTakeaway, FieldPoints, FieldMetrics},
	LayoutStrategy:          {FieldTitle, FieldKeyTakeaway, FieldBody, FieldMetrics},
	LayoutTable:             {FieldTitle, FieldKeyTakeaway, FieldTableData},
	LayoutDistributionChart: {FieldTitle, FieldKeyTakeaway, FieldChartData},
	LayoutTwoColumn:         {FieldTitle, FieldKeyTakeaway, FieldPoints},
	LayoutGantt:             {FieldTitle, FieldKeyTakeaway, FieldGanttData},
	LayoutBankList:          {FieldTitle, FieldKeyTakeaway, FieldBankTargets},
	LayoutTimeline:          {FieldTitle, FieldKeyTakeaway, FieldTimelineEvents},
}

// RequiredFields returns the fields a generator must populate for the layout.
// Unknown layouts require nothing.
func RequiredFields(l Layout) []Field {
	fields := requiredFields[l]
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Has reports whether the field carries non-blank content.
func (c *Content) Has(f Field) bool {
	switch f {
	case FieldTitle:
		return strings.TrimSpace(c.Title) != ""
	case FieldSubtitle:
		return strings.TrimSpace(c.Subtitle) != ""
	case FieldKeyTakeaway:
		return strings.TrimSpace(c.KeyTakeaway) != ""
	case FieldBody:
		return strings.TrimSpace(c.Body) != ""
	case FieldPoints:
		return len(c.Points) > 0
	case FieldMetrics:
		return len(c.Metrics) > 0
	case FieldTableData:
		return c.TableData != nil && (len(c.TableData.Headers) > 0 || len(c.TableData.Rows) > 0)
	case FieldTimelineEvents:
		return len(c.TimelineEvents) > 0
	case FieldGanttData:
		return len(c.GanttData) > 0
	case FieldChartData:
		return len(c.ChartData) > 0
	case FieldBankTargets:
		return len(c.BankTargets) > 0
	default:
		return false
	}
}

// Missing lists the required fields of the slide's layout that are absent or blank.
func (s *Slide) Missing() []Field {
	var missing []Field
	for _, f := range requiredFields[s.Layout] {
		if !s.Content.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}
