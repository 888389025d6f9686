package export

import (
	"fmt"
	"math"

	"github.com/GregMSThompson/pitch-backend/internal/layout"
)

const (
	slideWidth   = 10.0
	slideHeight  = 5.625
	marginX      = 0.5
	contentWidth = 9.0

	colorPrimary   = "0F172A"
	colorAccent    = "F59E0B"
	colorWhite     = "FFFFFF"
	colorBgGray    = "F8FAFC"
	colorBgLight   = "F1F5F9"
	colorBorder    = "E2E8F0"
	colorText      = "1E293B"
	colorSecondary = "64748B"
	colorLight     = "94A3B8"

	ganttLabelWidth = 2.6
	ganttRowHeight  = 0.3
	ringTiles       = 48
	ringRadius      = 1.0
	ringTileSize    = 0.14
	cardWidth       = 2.1
	cardHeight      = 1.2
	cardGap         = 0.2
	tableRowHeight  = 0.32
)

type drawFunc func(s surface, p layout.Page, y float64) float64

var drawers = map[layout.Kind]drawFunc{
	layout.KindGantt:        drawGantt,
	layout.KindDistribution: drawDistribution,
	layout.KindBanks:        drawBanks,
	layout.KindTable:        drawTable,
	layout.KindStandard:     drawStandard,
}

// drawPage draws one page and returns the lowest y coordinate used.
func drawPage(s surface, p layout.Page) float64 {
	if p.Kind == layout.KindCover {
		return drawCover(s, p)
	}

	y := drawHeader(s, p)
	if p.Badge != "" {
		s.Add(shape{
			Tag:        "badge",
			Box:        box{7.5, y, 2, 0.25},
			Fill:       "FEF3C7",
			Align:      alignRight,
			Paragraphs: lines(run{Text: p.Badge, Size: size8, Bold: true, Color: "92400E"}),
		})
	}
	y = drawTitles(s, p, y)
	y = drawTakeaway(s, p, y)

	draw, ok := drawers[p.Kind]
	if !ok {
		draw = drawStandard
	}
	y = draw(s, p, y)
	return drawDetail(s, p, y)
}

func drawCover(s surface, p layout.Page) float64 {
	c := p.Cover
	s.Add(rect("cover:background", box{0, 0, slideWidth, slideHeight}, colorPrimary))
	if c == nil {
		return slideHeight
	}
	s.Add(text("cover:kicker", box{0.6, 0.6, 8.8, 0.3}, alignLeft, run{Text: c.Kicker, Size: size9, Bold: true, Color: colorAccent}))
	s.Add(rect("cover:accent", box{0.6, 1.05, 0.08, 1.0}, colorAccent))
	s.Add(text("cover:title", box{0.85, 1.0, 8.5, 1.0}, alignLeft, run{Text: c.Title, Size: size36, Bold: true, Color: colorWhite}))
	s.Add(text("cover:subtitle", box{0.85, 2.05, 8.5, 0.5}, alignLeft, run{Text: c.Subtitle, Size: size18, Color: "E0E7FF"}))
	s.Add(rect("cover:rule", box{0.6, 3.5, 2.5, 0.04}, colorAccent))
	s.Add(shape{
		Tag: "cover:prepared",
		Box: box{0.6, 3.75, 4.5, 0.5},
		Paragraphs: lines(
			run{Text: c.PreparedForLabel, Size: size8, Color: "A5B4FC"},
			run{Text: c.PreparedFor, Size: size11, Bold: true, Color: colorWhite},
		),
	})
	s.Add(shape{
		Tag: "cover:date",
		Box: box{4.6, 3.75, 3, 0.5},
		Paragraphs: lines(
			run{Text: c.DateLabel, Size: size8, Color: "A5B4FC"},
			run{Text: c.Date, Size: size11, Bold: true, Color: colorWhite},
		),
	})
	s.Add(shape{
		Tag:   "cover:brand",
		Box:   box{6.5, 4.55, 3, 0.7},
		Align: alignRight,
		Paragraphs: lines(
			run{Text: c.Brand, Size: size10, Bold: true, Color: colorAccent},
			run{Text: c.Division, Size: size8, Color: "C7D2FE"},
			run{Text: c.Confidential, Size: size7, Bold: true, Color: colorLight},
		),
	})
	return slideHeight
}

func drawHeader(s surface, p layout.Page) float64 {
	h := p.Header
	if h == nil {
		return 0.3
	}
	s.Add(rect("header:band", box{0, 0, slideWidth, 0.6}, colorPrimary))
	s.Add(shape{
		Tag:        "header:mark",
		Box:        box{0.3, 0.12, 0.36, 0.36},
		Fill:       colorAccent,
		Align:      alignCenter,
		Paragraphs: lines(run{Text: h.Mark, Size: size10, Bold: true, Color: colorPrimary}),
	})
	s.Add(text("header:project", box{0.8, 0.1, 6, 0.25}, alignLeft, run{Text: h.Project, Size: size10, Bold: true, Color: colorWhite}))
	s.Add(text("header:notice", box{0.8, 0.34, 6, 0.2}, alignLeft, run{Text: h.Notice, Size: size7, Color: colorLight}))
	s.Add(text("header:page", box{8.2, 0.15, 1.5, 0.3}, alignRight, run{Text: h.Page, Size: size10, Bold: true, Color: colorAccent}))
	s.Add(rect("header:rule", box{0, 0.6, slideWidth, 0.03}, colorAccent))
	return 0.8
}

func drawTitles(s surface, p layout.Page, y float64) float64 {
	if p.Title != "" {
		s.Add(text("title", box{marginX, y, 7, 0.45}, alignLeft, run{Text: p.Title, Size: size20, Bold: true, Color: colorPrimary}))
		y += 0.5
	}
	if p.Subtitle != "" {
		s.Add(text("subtitle", box{marginX, y, contentWidth, 0.25}, alignLeft, run{Text: p.Subtitle, Size: size11, Color: colorSecondary}))
		y += 0.3
	}
	return y + 0.05
}

func drawTakeaway(s surface, p layout.Page, y float64) float64 {
	t := p.Takeaway
	if t == nil {
		return y
	}
	s.Add(shape{
		Tag:  "takeaway",
		Box:  box{marginX, y, contentWidth, 0.6},
		Fill: "FFFBEB",
		Paragraphs: lines(
			run{Text: t.Label, Size: size8, Bold: true, Color: "92400E"},
			run{Text: t.Text, Size: size11, Bold: true, Color: "1F2937"},
		),
	})
	s.Add(rect("takeaway:accent", box{marginX, y, 0.05, 0.6}, colorAccent))
	return y + 0.75
}

func drawDetail(s surface, p layout.Page, y float64) float64 {
	d := p.Detail
	if d == nil {
		return y
	}
	s.Add(shape{
		Tag:  "detail",
		Box:  box{marginX, y, contentWidth, 0.9},
		Fill: colorBgGray,
		Paragraphs: lines(
			run{Text: d.Label, Size: size9, Bold: true, Color: colorSecondary},
			run{Text: d.Text, Size: size10, Color: colorText},
		),
	})
	return y + 1.0
}

func paletteColor(i int) string {
	return layout.CategoryColors[i%len(layout.CategoryColors)]
}

// drawGantt lays the 12-week grid out as cells and each bar as a filled run
// over the cells it spans. Runs past week 12 overflow the grid.
func drawGantt(s surface, p layout.Page, y float64) float64 {
	g := p.Gantt
	if g == nil {
		return y
	}
	axisX := marginX + ganttLabelWidth
	axisW := contentWidth - ganttLabelWidth
	colW := axisW / float64(len(g.Columns))

	s.Add(shape{
		Tag:        "gantt:label",
		Box:        box{marginX, y, ganttLabelWidth, ganttRowHeight},
		Fill:       colorBgLight,
		Paragraphs: lines(run{Text: g.LabelHeader, Size: size8, Bold: true, Color: colorSecondary}),
	})
	for j, col := range g.Columns {
		s.Add(shape{
			Tag:        fmt.Sprintf("gantt:column:%d", j),
			Box:        box{axisX + float64(j)*colW, y, colW, ganttRowHeight},
			Fill:       colorBgLight,
			Align:      alignCenter,
			Paragraphs: lines(run{Text: col, Size: size7, Bold: true, Color: colorLight}),
		})
	}
	y += ganttRowHeight

	for i, bar := range g.Bars {
		s.Add(text(fmt.Sprintf("gantt:task:%d", i), box{marginX, y, ganttLabelWidth, ganttRowHeight}, alignLeft,
			run{Text: bar.Task, Size: size9, Color: colorText}))
		for j := range g.Columns {
			fill := colorBgGray
			if bar.Covers(j) {
				fill = "EEF2FF"
			}
			s.Add(rect(fmt.Sprintf("gantt:cell:%d:%d", i, j), box{axisX + float64(j)*colW, y, colW, ganttRowHeight}, fill))
		}
		s.Add(shape{
			Tag:        fmt.Sprintf("gantt:bar:%d", i),
			Box:        box{axisX + bar.Start*axisW, y + 0.04, bar.Width * axisW, ganttRowHeight - 0.08},
			Fill:       paletteColor(bar.Palette),
			Paragraphs: lines(run{Text: bar.Category, Size: size7, Bold: true, Color: colorWhite}),
		})
		y += ganttRowHeight
	}

	y += 0.15
	for k, entry := range g.Legend {
		x := marginX + float64(k)*1.9
		s.Add(rect(fmt.Sprintf("gantt:legend:%d", k), box{x, y + 0.03, 0.18, 0.18}, paletteColor(entry.Palette)))
		s.Add(text(fmt.Sprintf("gantt:legend-label:%d", k), box{x + 0.25, y, 1.6, 0.25}, alignLeft,
			run{Text: entry.Label, Size: size9, Color: colorSecondary}))
	}
	return y + 0.4
}

// segmentAt returns the index of the segment covering position pos (percent
// of the circumference), or -1 when no segment covers it.
func segmentAt(segs []layout.Segment, pos float64) int {
	for i, seg := range segs {
		if pos >= seg.Offset && pos < seg.Offset+seg.Value {
			return i
		}
	}
	return -1
}

// drawDistribution draws the ring as tiles around a circle, clockwise from
// twelve o'clock. Each tile takes the color of the segment whose cumulative
// offset range covers the tile's position.
func drawDistribution(s surface, p layout.Page, y float64) float64 {
	r := p.Ring
	if r == nil {
		return y
	}
	cx, cy := 2.3, y+ringRadius+0.2

	for t := 0; t < ringTiles; t++ {
		pos := (float64(t) + 0.5) * 100 / ringTiles
		idx := segmentAt(r.Segments, pos)
		fill := colorBorder
		if idx >= 0 {
			fill = r.Segments[idx].Color
		}
		theta := 2*math.Pi*pos/100 - math.Pi/2
		x := cx + ringRadius*math.Cos(theta) - ringTileSize/2
		ty := cy + ringRadius*math.Sin(theta) - ringTileSize/2
		s.Add(rect(fmt.Sprintf("ring:tile:%d:%d", t, idx), box{x, ty, ringTileSize, ringTileSize}, fill))
	}
	s.Add(shape{
		Tag:   "ring:center",
		Box:   box{cx - 0.7, cy - 0.3, 1.4, 0.6},
		Align: alignCenter,
		Paragraphs: lines(
			run{Text: r.CenterValue, Size: size20, Bold: true, Color: colorPrimary},
			run{Text: r.CenterLabel, Size: size7, Bold: true, Color: colorLight},
		),
	})

	ly := y + 0.2
	for i, seg := range r.Segments {
		s.Add(rect(fmt.Sprintf("ring:swatch:%d", i), box{4.5, ly, 0.22, 0.22}, seg.Color))
		s.Add(text(fmt.Sprintf("ring:label:%d", i), box{4.85, ly, 3.2, 0.25}, alignLeft,
			run{Text: seg.Label, Size: size11, Bold: true, Color: colorText}))
		s.Add(text(fmt.Sprintf("ring:value:%d", i), box{8.1, ly, 1.4, 0.25}, alignRight,
			run{Text: seg.Display(), Size: size14, Bold: true, Color: colorPrimary}))
		ly += 0.4
	}

	y = math.Max(cy+ringRadius+0.3, ly+0.1)
	if c := p.Conclusion; c != nil {
		s.Add(shape{
			Tag:  "conclusion",
			Box:  box{marginX, y, contentWidth, 0.45},
			Fill: "EEF2FF",
			Paragraphs: []paragraph{{Runs: []run{
				{Text: c.Label + ": ", Size: size10, Bold: true, Color: "3730A3"},
				{Text: c.Text, Size: size10, Color: "3730A3"},
			}}},
		})
		y += 0.55
	}
	return y
}

// drawBanks places one card per target on a fixed grid, wrapping rows.
func drawBanks(s surface, p layout.Page, y float64) float64 {
	g := p.Cards
	if g == nil {
		return y
	}
	for i, c := range g.Cards {
		x := marginX + float64(c.Column)*(cardWidth+cardGap)
		cy := y + float64(c.Row)*(cardHeight+cardGap)
		s.Add(shape{
			Tag:  fmt.Sprintf("bank:card:%d", i),
			Box:  box{x, cy, cardWidth, cardHeight},
			Fill: colorBgGray,
			Paragraphs: lines(
				run{Text: c.Tier, Size: size8, Bold: true, Color: "4338CA"},
				run{Text: c.Name, Size: size11, Bold: true, Color: colorText},
				run{Text: g.RoleLabel, Size: size7, Bold: true, Color: colorLight},
				run{Text: c.Role, Size: size9, Color: "4F46E5"},
			),
		})
	}
	return y + float64(g.Rows())*(cardHeight+cardGap) + 0.1
}

func drawTable(s surface, p layout.Page, y float64) float64 {
	t := p.Table
	if t == nil {
		return y
	}
	cols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return y
	}
	colW := contentWidth / float64(cols)

	for j, h := range t.Headers {
		s.Add(shape{
			Tag:        fmt.Sprintf("table:head:%d", j),
			Box:        box{marginX + float64(j)*colW, y, colW, tableRowHeight},
			Fill:       colorPrimary,
			Paragraphs: lines(run{Text: h, Size: size9, Bold: true, Color: colorWhite}),
		})
	}
	y += tableRowHeight

	for i, row := range t.Rows {
		fill := colorWhite
		if t.Shaded(i) {
			fill = colorBgGray
		}
		for j, cell := range row {
			r := run{Text: cell, Size: size10, Color: colorText}
			if j == 0 {
				r.Bold = true
				r.Color = colorPrimary
			}
			s.Add(shape{
				Tag:        fmt.Sprintf("table:cell:%d:%d", i, j),
				Box:        box{marginX + float64(j)*colW, y, colW, tableRowHeight},
				Fill:       fill,
				Paragraphs: lines(r),
			})
		}
		y += tableRowHeight
	}
	return y + 0.15
}

func drawStandard(s surface, p layout.Page, y float64) float64 {
	if len(p.Metrics) > 0 {
		const w, gap, h = 2.1, 0.2, 0.65
		for i, m := range p.Metrics {
			x := marginX + float64(i%4)*(w+gap)
			my := y + float64(i/4)*(h+0.1)
			value := m.Display()
			if m.Glyph != "" {
				value += " " + m.Glyph
			}
			s.Add(shape{
				Tag:  fmt.Sprintf("metric:%d", i),
				Box:  box{x, my, w, h},
				Fill: colorBgGray,
				Paragraphs: lines(
					run{Text: m.Label, Size: size8, Bold: true, Color: "9CA3AF"},
					run{Text: value, Size: size16, Bold: true, Color: colorPrimary},
				),
			})
		}
		y += float64((len(p.Metrics)+3)/4)*(h+0.1) + 0.1
	}

	top := y
	for i, pt := range p.Points {
		s.Add(shape{
			Tag:        fmt.Sprintf("point:number:%d", i),
			Box:        box{marginX, y + 0.04, 0.26, 0.26},
			Fill:       colorAccent,
			Align:      alignCenter,
			Paragraphs: lines(run{Text: fmt.Sprint(pt.Number), Size: size9, Bold: true, Color: colorWhite}),
		})
		s.Add(text(fmt.Sprintf("point:%d", i), box{0.9, y, 4.4, 0.34}, alignLeft, run{Text: pt.Text, Size: size11, Color: "374151"}))
		y += 0.4
	}

	right := top
	if sm := p.Summary; sm != nil {
		s.Add(shape{
			Tag:  "summary",
			Box:  box{5.6, right, 3.9, 1.4},
			Fill: colorPrimary,
			Paragraphs: lines(
				run{Text: sm.Label, Size: size9, Bold: true, Color: colorAccent},
				run{Text: sm.Text, Size: size10, Color: "E0E7FF"},
			),
		})
		right += 1.55
	}
	if ph := p.Placeholder; ph != nil {
		s.Add(shape{
			Tag:   "placeholder",
			Box:   box{5.6, right, 3.9, 0.7},
			Fill:  colorBgGray,
			Align: alignCenter,
			Paragraphs: lines(
				run{Text: ph.Label, Size: size9, Bold: true, Color: "9CA3AF"},
				run{Text: ph.Text, Size: size8, Color: "9CA3AF"},
			),
		})
		right += 0.8
	}
	return math.Max(y, right) + 0.1
}
