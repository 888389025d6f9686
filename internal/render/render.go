package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
	"github.com/GregMSThompson/pitch-backend/internal/layout"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"frac":        frac,
	"num":         layout.FormatValue,
	"hex":         hex,
	"palette":     palette,
	"swatch":      swatch,
	"barStyle":    barStyle,
	"dashArray":   dashArray,
	"dashOffset":  dashOffset,
	"gridColumns": gridColumns,
}).ParseFS(templateFS, "templates/*.html"))

var kindTemplates = map[layout.Kind]string{
	layout.KindCover:        "cover",
	layout.KindGantt:        "gantt",
	layout.KindDistribution: "distribution",
	layout.KindBanks:        "banks",
	layout.KindTable:        "table",
	layout.KindStandard:     "standard",
}

type slideView struct {
	Page layout.Page
	Body template.HTML
}

type documentView struct {
	Lang    string
	Title   string
	Project string
	Slides  []template.HTML
}

// RenderSlide writes one slide block for the page.
func RenderSlide(w io.Writer, p layout.Page) error {
	name, ok := kindTemplates[p.Kind]
	if !ok {
		name = "standard"
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, p); err != nil {
		return fmt.Errorf("render %s slide %d: %w", name, p.Number, err)
	}
	return templates.ExecuteTemplate(w, "slide", slideView{Page: p, Body: template.HTML(body.String())})
}

// RenderDeck writes a standalone HTML document with one slide block per deck
// slide, in deck order. A deck without slides renders an empty document.
func RenderDeck(w io.Writer, d *deck.Deck, opts layout.Options) error {
	pages := layout.Build(d, opts)
	project := layout.ProjectLabel(d.ProjectName)

	view := documentView{
		Lang:    lang(opts.Locale),
		Title:   project + " | 银团贷款融资方案",
		Project: project,
		Slides:  make([]template.HTML, 0, len(pages)),
	}
	for _, p := range pages {
		var buf bytes.Buffer
		if err := RenderSlide(&buf, p); err != nil {
			return err
		}
		view.Slides = append(view.Slides, template.HTML(buf.String()))
	}

	return templates.ExecuteTemplate(w, "document", view)
}

func lang(locale string) string {
	if locale == "" {
		return "zh-CN"
	}
	return locale
}

func frac(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 4, 64) + "%"
}

func hex(color string) string {
	return "#" + strings.ToLower(color)
}

func palette(i int) string {
	return layout.CategoryColors[i%len(layout.CategoryColors)]
}

func swatch(color string) template.CSS {
	return template.CSS("background-color: " + hex(color))
}

// barStyle positions a gantt bar as a share of the full axis width.
func barStyle(b layout.Bar) template.CSS {
	return template.CSS(fmt.Sprintf("left: %s; width: %s; background-color: %s",
		percent(b.Start), percent(b.Width), hex(palette(b.Palette))))
}

func dashArray(s layout.Segment) string {
	return layout.FormatValue(s.Value) + " " + layout.FormatValue(100-s.Value)
}

func dashOffset(s layout.Segment) string {
	if s.Offset == 0 {
		return "0"
	}
	return layout.FormatValue(-s.Offset)
}

func gridColumns(n int) template.CSS {
	return template.CSS(fmt.Sprintf("grid-template-columns: repeat(%d, 1fr)", n))
}
