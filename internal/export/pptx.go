package export

import (
	"bytes"
	"fmt"

	ppt "github.com/VantageDataChat/GoPPT"
)

const (
	emuPerInch = 914400
	creator    = "Syndicate Pitch PRO"
	company    = "Global Investment Banking Division"
)

type pptxCanvas struct {
	pres   *ppt.Presentation
	slides int
}

func newPPTXCanvas() *pptxCanvas {
	return &pptxCanvas{pres: ppt.New()}
}

func (c *pptxCanvas) AddSlide() surface {
	var slide *ppt.Slide
	if c.slides == 0 {
		slide = c.pres.GetActiveSlide()
	} else {
		slide = c.pres.CreateSlide()
	}
	c.slides++
	return &pptxSlide{slide: slide}
}

func (c *pptxCanvas) Finish(title string) ([]byte, error) {
	props := c.pres.GetDocumentProperties()
	props.Title = title
	props.Subject = title
	props.Creator = creator
	props.Company = company

	w, err := ppt.NewWriter(c.pres, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("failed to create PPT writer: %w", err)
	}

	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PPT: %w", err)
	}
	return buf.Bytes(), nil
}

type pptxSlide struct {
	slide *ppt.Slide
}

func (s *pptxSlide) Add(sh shape) {
	rt := s.slide.CreateRichTextShape()
	rt.SetOffsetX(emu(sh.Box.X)).SetOffsetY(emu(sh.Box.Y))
	rt.SetWidth(emu(sh.Box.W)).SetHeight(emu(sh.Box.H))
	if sh.Fill != "" {
		rt.SetFill(solidFill(sh.Fill))
	}

	for i, para := range sh.Paragraphs {
		if i > 0 {
			rt.CreateParagraph()
		}
		for _, r := range para.Runs {
			tr := rt.CreateTextRun(r.Text)
			setFontSize(tr, r.Size)
			tr.GetFont().SetBold(r.Bold)
			if r.Color != "" {
				tr.GetFont().SetColor(ppt.NewColor("FF" + r.Color))
			}
		}
		alignParagraph(rt.GetActiveParagraph(), sh.Align)
	}
}

func emu(inches float64) int64 {
	return int64(inches * emuPerInch)
}

func solidFill(rgb string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor("FF" + rgb))
}

func alignParagraph(p *ppt.Paragraph, a align) {
	switch a {
	case alignCenter:
		p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
	case alignRight:
		p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
	}
}

func setFontSize(tr *ppt.TextRun, size fontSize) {
	if size <= 0 {
		size = size10
	}
	tr.GetFont().SetSize(int(size))
}
