package export

// The drawing routines describe every slide as positioned text boxes and
// filled rectangles. A canvas turns them into a file.

type canvas interface {
	AddSlide() surface
	Finish(title string) ([]byte, error)
}

type surface interface {
	Add(s shape)
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

type fontSize int

const (
	size7  fontSize = 7
	size8  fontSize = 8
	size9  fontSize = 9
	size10 fontSize = 10
	size11 fontSize = 11
	size14 fontSize = 14
	size16 fontSize = 16
	size18 fontSize = 18
	size20 fontSize = 20
	size36 fontSize = 36
)

// box is measured in inches from the top-left corner of the slide.
type box struct {
	X, Y, W, H float64
}

type run struct {
	Text  string
	Size  fontSize
	Bold  bool
	Color string
}

type paragraph struct {
	Runs []run
}

type shape struct {
	Tag        string
	Box        box
	Fill       string
	Align      align
	Paragraphs []paragraph
}

func rect(tag string, b box, fill string) shape {
	return shape{Tag: tag, Box: b, Fill: fill}
}

func text(tag string, b box, a align, r run) shape {
	return shape{Tag: tag, Box: b, Align: a, Paragraphs: []paragraph{{Runs: []run{r}}}}
}

func lines(runs ...run) []paragraph {
	out := make([]paragraph, 0, len(runs))
	for _, r := range runs {
		out = append(out, paragraph{Runs: []run{r}})
	}
	return out
}

// Text returns every paragraph of the shape as plain text.
func (s shape) Text() []string {
	out := make([]string, 0, len(s.Paragraphs))
	for _, p := range s.Paragraphs {
		var t string
		for _, r := range p.Runs {
			t += r.Text
		}
		out = append(out, t)
	}
	return out
}
