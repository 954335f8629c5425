package render

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/compiler"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/draw"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/markup"
)

// Backend names.
const (
	BackendDraw   = "draw"
	BackendMarkup = "markup"
)

// Job is the classified document handed to a backend.
type Job struct {
	RenderID   string
	Title      string
	Text       string
	Header     content.Header
	Stream     content.Stream
	StyleHints map[string]string
	Template   *Template
}

// Backend turns a Job into document bytes.
type Backend interface {
	Name() string
	Render(ctx context.Context, job Job) (Artifact, error)
}

// Compiler typesets LaTeX source.
type Compiler interface {
	Compile(ctx context.Context, renderID, source string) (compiler.Output, error)
}

// DrawBackend paints pages directly.
type DrawBackend struct {
	r   *draw.Renderer
	log logrus.FieldLogger
}

// NewDrawBackend wraps a direct-draw renderer.
func NewDrawBackend(r *draw.Renderer, log logrus.FieldLogger) *DrawBackend {
	return &DrawBackend{r: r, log: logging.OrDiscard(log)}
}

// Name implements Backend.
func (b *DrawBackend) Name() string {
	return BackendDraw
}

// Render implements Backend.
func (b *DrawBackend) Render(ctx context.Context, job Job) (Artifact, error) {
	in := draw.Input{
		Title:      job.Title,
		Header:     job.Header,
		Stream:     job.Stream,
		StyleHints: job.StyleHints,
	}
	if t := job.Template; t != nil {
		in.PageWidth, in.PageHeight = t.PageWidth, t.PageHeight
	}

	pdf, stats, err := b.r.Render(ctx, in)
	if err != nil {
		return Artifact{}, fmt.Errorf("draw.Render failed: %w", err)
	}

	b.log.WithFields(logrus.Fields{
		"render_id":       job.RenderID,
		"pages":           stats.Pages,
		"table_fallbacks": stats.TableFallbacks,
	}).Debug("pages drawn")

	return Artifact{Bytes: pdf, Backend: BackendDraw, RenderID: job.RenderID, Pages: stats.Pages}, nil
}

// MarkupBackend generates LaTeX and compiles it.
type MarkupBackend struct {
	gen      *markup.Generator
	compiler Compiler
	// rawDocuments lets complete LaTeX documents reach the compiler as
	// written. Off, they are escaped like any other text.
	rawDocuments bool
}

// NewMarkupBackend combines a generator with a compiler. rawDocuments is an
// operator decision; it must never follow from request input.
func NewMarkupBackend(gen *markup.Generator, c Compiler, rawDocuments bool) *MarkupBackend {
	return &MarkupBackend{gen: gen, compiler: c, rawDocuments: rawDocuments}
}

// Name implements Backend.
func (b *MarkupBackend) Name() string {
	return BackendMarkup
}

// Render implements Backend.
func (b *MarkupBackend) Render(ctx context.Context, job Job) (Artifact, error) {
	src, err := b.source(job)
	if err != nil {
		return Artifact{}, err
	}

	out, err := b.compiler.Compile(ctx, job.RenderID, src)
	if err != nil {
		return Artifact{}, fmt.Errorf("compiler.Compile failed: %w", err)
	}

	return Artifact{
		Bytes:       out.PDF,
		WasFallback: out.Fallback,
		Cause:       out.Cause,
		Backend:     BackendMarkup,
		RenderID:    job.RenderID,
	}, nil
}

func (b *MarkupBackend) source(job Job) (string, error) {
	if b.rawDocuments && markup.IsDocument(job.Text) {
		return markup.CleanLaTeX(job.Text), nil
	}

	doc := markup.Document{
		Header:     job.Header,
		Stream:     job.Stream,
		StyleHints: job.StyleHints,
	}
	if t := job.Template; t != nil {
		doc.Template = t.TeX
		doc.PaperWidth, doc.PaperHeight = t.PageWidth, t.PageHeight
	}

	src, err := b.gen.Generate(doc)
	if err != nil {
		return "", fmt.Errorf("gen.Generate failed: %w", err)
	}
	return src, nil
}
