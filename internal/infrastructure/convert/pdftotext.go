// Package convert renders downloaded documents to plain text via poppler's
// pdftotext.
package convert

import (
	"context"
	"fmt"

	"PaperCast/internal/ports"
)

// PDFToText shells out to the configured converter command, reading the
// result from its standard output.
type PDFToText struct {
	runner  ports.Runner
	command string
	args    []string
}

var _ ports.Converter = (*PDFToText)(nil)

// NewPDFToText wires the command runner. Command defaults to "pdftotext".
func NewPDFToText(runner ports.Runner, cmd string, args []string) *PDFToText {
	if cmd == "" {
		cmd = "pdftotext"
	}
	return &PDFToText{runner: runner, command: cmd, args: args}
}

// Convert runs the converter on the file at path. The trailing "-" argument
// directs pdftotext to write the extracted text to stdout.
func (p *PDFToText) Convert(ctx context.Context, path string) (string, error) {
	args := make([]string, 0, len(p.args)+2)
	args = append(args, p.args...)
	args = append(args, path, "-")

	out, err := p.runner.Run(ctx, p.command, args...)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", path, err)
	}
	return string(out), nil
}
