package deck

import (
	"fmt"
	"math"
	"strings"
)

type IssueKind string

const (
	IssueEmptyID       IssueKind = "empty_id"
	IssueDuplicateID   IssueKind = "duplicate_id"
	IssueUnknownLayout IssueKind = "unknown_layout"
	IssueMissingField  IssueKind = "missing_field"
	IssueRowWidth      IssueKind = "row_width"
	IssueChartTotal    IssueKind = "chart_total"
	IssueGanttRange    IssueKind = "gantt_range"
)

// Issue describes a structural defect. Issues never block rendering or export.
type Issue struct {
	SlideIndex int       `json:"slideIndex"`
	SlideID    string    `json:"slideId,omitempty"`
	Kind       IssueKind `json:"kind"`
	Field      Field     `json:"field,omitempty"`
	Message    string    `json:"message"`
}

const chartTolerance = 0.01

// Validate reports every structural defect of the deck in slide order.
func (d *Deck) Validate() []Issue {
	var issues []Issue
	seen := make(map[string]int, len(d.Slides))

	for i := range d.Slides {
		s := &d.Slides[i]
		add := func(kind IssueKind, field Field, format string, args ...any) {
			issues = append(issues, Issue{
				SlideIndex: i,
				SlideID:    s.ID,
				Kind:       kind,
				Field:      field,
				Message:    fmt.Sprintf(format, args...),
			})
		}

		id := strings.TrimSpace(s.ID)
		if id == "" {
			add(IssueEmptyID, "", "slide %d has no id", i+1)
		} else if first, ok := seen[id]; ok {
			add(IssueDuplicateID, "", "slide %d reuses id %q of slide %d", i+1, id, first+1)
		} else {
			seen[id] = i
		}

		if !s.Layout.Valid() {
			add(IssueUnknownLayout, "", "slide %d has unknown layout %q", i+1, s.Layout)
		}
		for _, f := range s.Missing() {
			add(IssueMissingField, f, "slide %d (%s) is missing %s", i+1, s.Layout, f)
		}

		if td := s.Content.TableData; td != nil {
			for r, row := range td.Rows {
				if len(row) != len(td.Headers) {
					add(IssueRowWidth, FieldTableData, "slide %d row %d has %d cells for %d headers", i+1, r+1, len(row), len(td.Headers))
				}
			}
		}

		if len(s.Content.ChartData) > 0 {
			total := 0.0
			for _, item := range s.Content.ChartData {
				total += item.Value
			}
			if math.Abs(total-100) > chartTolerance {
				add(IssueChartTotal, FieldChartData, "slide %d chart values sum to %g, not 100", i+1, total)
			}
		}

		for g, item := range s.Content.GanttData {
			if item.StartWeek < 0 {
				add(IssueGanttRange, FieldGanttData, "slide %d gantt item %d starts at week %d", i+1, g+1, item.StartWeek)
			}
			if item.Duration <= 0 {
				add(IssueGanttRange, FieldGanttData, "slide %d gantt item %d has duration %d", i+1, g+1, item.Duration)
			}
		}
	}

	return issues
}
