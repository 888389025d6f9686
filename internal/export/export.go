package export

import (
	"strings"
	"unicode"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/internal/layout"
)

const (
	ContentType     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	Extension       = ".pptx"
	fileSuffix      = "_银团贷款融资方案"
	fallbackName    = "pitch-deck"
	reservedInNames = `/\:*?"<>|`
)

type Options struct {
	// FileName overrides the name derived from the project name.
	FileName string
	Layout   layout.Options
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export writes the deck as a presentation with one page per slide. The deck
// is only read.
func Export(d *deck.Deck, opts Options) (*File, error) {
	return export(d, opts, newPPTXCanvas())
}

func export(d *deck.Deck, opts Options, c canvas) (*File, error) {
	if d == nil || len(d.Slides) == 0 {
		return nil, errs.NewExportError(errs.ExportEmptyDeck, "deck has no slides to export", nil)
	}
	name, err := FileName(d.ProjectName, opts.FileName)
	if err != nil {
		return nil, err
	}

	for _, p := range layout.Build(d, opts.Layout) {
		drawPage(c.AddSlide(), p)
	}

	data, err := c.Finish(layout.ProjectLabel(d.ProjectName) + " - 银团贷款融资方案")
	if err != nil {
		return nil, errs.NewExportError(errs.ExportWriteFailed, "failed to write presentation", err)
	}

	return &File{Name: name, ContentType: ContentType, Data: data}, nil
}

// FileName returns the download name for the deck. An explicit name is used
// as given (with the extension added) but must not contain path separators or
// reserved characters. Otherwise the name is derived from the project name.
func FileName(projectName, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if !allowedName(explicit) {
			return "", errs.NewExportError(errs.ExportInvalidName, "file name contains reserved characters", nil)
		}
		if !strings.HasSuffix(strings.ToLower(explicit), Extension) {
			explicit += Extension
		}
		return explicit, nil
	}

	base := sanitize(projectName)
	if base == "" {
		base = fallbackName
	}
	return base + fileSuffix + Extension, nil
}

func allowedName(name string) bool {
	if name == "." || name == ".." || strings.ContainsAny(name, reservedInNames) {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(reservedInNames, r) {
			return '_'
		}
		return r
	}, name)
	return strings.Trim(cleaned, " .")
}
