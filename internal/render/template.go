package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrUnsupportedTemplate is returned for reference files that are neither a
// LaTeX document nor a PDF.
var ErrUnsupportedTemplate = errors.New("unsupported template")

// Template references are confined to the configured template directory.
var (
	ErrTemplatesDisabled  = errors.New("no template directory configured")
	ErrTemplateOutsideDir = errors.New("template is outside the template directory")
)

// Template is a loaded reference template.
type Template struct {
	Path string
	// TeX is the template source; empty for PDF references.
	TeX string
	// PageWidth and PageHeight in points, from a PDF reference's first page.
	PageWidth  float64
	PageHeight float64
}

// LoadTemplate reads a .tex template or a reference PDF from dir. ref is a
// path relative to dir, or an absolute path inside it. Symlinks leading out
// of dir are refused.
func LoadTemplate(dir, ref string) (Template, error) {
	if dir == "" {
		return Template{}, ErrTemplatesDisabled
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return Template{}, fmt.Errorf("filepath.Abs failed: %w", err)
	}

	name := ref
	if filepath.IsAbs(ref) {
		if name, err = filepath.Rel(dir, ref); err != nil {
			return Template{}, fmt.Errorf("%w: %s", ErrTemplateOutsideDir, ref)
		}
	}
	name = filepath.Clean(name)
	if !filepath.IsLocal(name) {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateOutsideDir, ref)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return Template{}, fmt.Errorf("os.OpenRoot failed: %w", err)
	}
	defer root.Close()

	b, err := root.ReadFile(name)
	if err != nil {
		return Template{}, fmt.Errorf("root.ReadFile failed: %w", err)
	}
	path := filepath.Join(dir, name)

	mt := mimetype.Detect(b)
	switch {
	case mt.Is("application/pdf"):
		dims, err := api.PageDims(bytes.NewReader(b), model.NewDefaultConfiguration())
		if err != nil {
			return Template{}, fmt.Errorf("api.PageDims failed: %w", err)
		}
		if len(dims) == 0 {
			return Template{}, fmt.Errorf("%w: %s has no pages", ErrUnsupportedTemplate, path)
		}
		return Template{Path: path, PageWidth: dims[0].Width, PageHeight: dims[0].Height}, nil

	case strings.Contains(string(b), `\begin{document}`):
		return Template{Path: path, TeX: string(b)}, nil
	}

	return Template{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedTemplate, path, mt.String())
}
