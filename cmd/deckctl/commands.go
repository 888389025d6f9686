package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/pitch-backend/internal/export"
	"github.com/GregMSThompson/pitch-backend/internal/layout"
	"github.com/GregMSThompson/pitch-backend/internal/render"
)

type options struct {
	out      string
	locale   string
	fileName string
	strict   bool
	now      func() time.Time
}

func newRootCommand() *cobra.Command {
	opts := &options{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "deckctl",
		Short: "Render, export and validate pitch decks",
		Long: `deckctl works on deck documents stored as JSON or YAML. It renders the
HTML presentation, writes the PPTX export and reports structural issues
without calling any backing service.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.locale, "locale", "zh-CN", "Locale for the cover date")

	renderCmd := &cobra.Command{
		Use:   "render <deck-file>",
		Short: "Write the deck as a standalone HTML presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runRender(cmd.OutOrStdout(), args[0])
		},
	}
	renderCmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (stdout when empty)")

	exportCmd := &cobra.Command{
		Use:   "export <deck-file>",
		Short: "Write the deck as a PPTX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runExport(cmd.OutOrStdout(), args[0])
		},
	}
	exportCmd.Flags().StringVarP(&opts.out, "out", "o", ".", "Output directory or file path")
	exportCmd.Flags().StringVar(&opts.fileName, "file-name", "", "Override the derived file name")

	validateCmd := &cobra.Command{
		Use:   "validate <deck-file>",
		Short: "Report structural issues in a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runValidate(cmd.OutOrStdout(), args[0])
		},
	}
	validateCmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when any issue is found")

	rootCmd.AddCommand(renderCmd, exportCmd, validateCmd)
	return rootCmd
}

func (o *options) layoutOptions() layout.Options {
	return layout.Options{Now: o.now(), Locale: o.locale}
}

func (o *options) runRender(stdout io.Writer, path string) error {
	d, err := loadDeck(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.RenderDeck(&buf, d, o.layoutOptions()); err != nil {
		return err
	}
	if o.out == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(o.out, buf.Bytes(), 0o644)
}

func (o *options) runExport(stdout io.Writer, path string) error {
	d, err := loadDeck(path)
	if err != nil {
		return err
	}
	f, err := export.Export(d, export.Options{FileName: o.fileName, Layout: o.layoutOptions()})
	if err != nil {
		return err
	}

	target := o.out
	if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
		target = filepath.Join(target, f.Name)
	}
	if err := os.WriteFile(target, f.Data, 0o644); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", target, len(f.Data))
	return err
}

var errIssuesFound = errors.New("deck has structural issues")

func (o *options) runValidate(stdout io.Writer, path string) error {
	d, err := loadDeck(path)
	if err != nil {
		return err
	}
	issues := d.Validate()
	if _, err := io.WriteString(stdout, formatReport(d, issues)); err != nil {
		return err
	}
	if o.strict && len(issues) > 0 {
		return errIssuesFound
	}
	return nil
}
