// Package render chooses a backend for each exam and guarantees a document or
// a terminal input error.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
)

// Options are the caller's rendering options.
type Options struct {
	Difficulty     string
	QuestionPoints []int
	// TemplateReferencePath selects the markup backend when it names a
	// loadable template inside Config.TemplateDir.
	TemplateReferencePath string
	StyleHints            map[string]string
	ExamTitle             string
}

// SourceDocument is one render request.
type SourceDocument struct {
	Text         string
	SubjectLabel string
	Options      Options
}

// Artifact is a rendered document.
type Artifact struct {
	Bytes []byte
	// WasFallback is set when the compiler could not typeset the exam and
	// Bytes is the diagnostic document.
	WasFallback bool
	// Cause explains WasFallback.
	Cause   error
	Backend string
	// Rerouted is set when the markup path failed and the direct-draw
	// backend produced Bytes instead.
	Rerouted bool
	RenderID string
	// Pages is known for direct-draw output only.
	Pages int
}

// Config tunes classification.
type Config struct {
	// MaxTableColumns bounds table width; 0 disables the bound.
	MaxTableColumns int
	NotesKeywords   []string
	// TemplateDir holds the templates callers may reference. Empty refuses
	// every template reference.
	TemplateDir string
	Now         func() time.Time
	NewID       func() string
}

// Service is the orchestrator.
type Service struct {
	draw   Backend
	markup Backend
	cfg    Config
	log    logrus.FieldLogger
}

// NewService returns a Service. markup may be nil, in which case every
// document is drawn directly.
func NewService(draw, markup Backend, cfg Config, log logrus.FieldLogger) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Service{draw: draw, markup: markup, cfg: cfg, log: logging.OrDiscard(log)}
}

// RenderExamDocument renders content and returns the document bytes.
func (s *Service) RenderExamDocument(ctx context.Context, text, subject string, opts Options) ([]byte, error) {
	art, err := s.Render(ctx, SourceDocument{Text: text, SubjectLabel: subject, Options: opts})
	if err != nil {
		return nil, err
	}
	return art.Bytes, nil
}

// Classify sanitizes text and returns its render stream.
func (s *Service) Classify(text string, points []int) (content.Stream, error) {
	clean, err := content.SanitizeString(text)
	if err != nil {
		return nil, err
	}
	return content.BuildStream(clean, s.streamOptions(points)), nil
}

func (s *Service) streamOptions(points []int) content.StreamOptions {
	return content.StreamOptions{
		Points:        points,
		MaxColumns:    s.cfg.MaxTableColumns,
		NotesKeywords: s.cfg.NotesKeywords,
	}
}

// Render renders doc. The returned error wraps content.ErrInvalidInput for
// content that can never be rendered, or is the context error on
// cancellation; backend failures are absorbed.
func (s *Service) Render(ctx context.Context, doc SourceDocument) (Artifact, error) {
	text, err := content.SanitizeString(doc.Text)
	if err != nil {
		return Artifact{}, fmt.Errorf("content.SanitizeString failed: %w", err)
	}

	opts := doc.Options
	id := s.cfg.NewID()
	log := s.log.WithField("render_id", id)

	job := Job{
		RenderID:   id,
		Title:      opts.ExamTitle,
		Text:       text,
		Stream:     content.BuildStream(text, s.streamOptions(opts.QuestionPoints)),
		StyleHints: opts.StyleHints,
		Header: content.NewHeader(doc.SubjectLabel, opts.ExamTitle, opts.Difficulty,
			opts.QuestionPoints, text, s.cfg.Now()),
	}
	if job.Title == "" {
		job.Title = job.Header.Title
	}

	backend := s.draw
	if path := opts.TemplateReferencePath; path != "" {
		tpl, err := LoadTemplate(s.cfg.TemplateDir, path)
		switch {
		case err != nil:
			log.WithError(err).WithField("template", path).Warn("template unusable, drawing directly")
		case s.markup == nil:
			log.WithField("template", path).Warn("markup backend disabled, drawing directly")
			job.Template = &tpl
		default:
			job.Template = &tpl
			backend = s.markup
		}
	}

	art, err := renderNonEmpty(ctx, backend, job)
	if err != nil && backend != s.draw {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Artifact{}, ctxErr
		}
		log.WithError(err).WithField("backend", backend.Name()).Warn("backend failed, drawing directly")
		art, err = renderNonEmpty(ctx, s.draw, job)
		art.Rerouted = true
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Artifact{}, ctxErr
		}
		log.WithError(err).WithField("backend", s.draw.Name()).Error("render failed")
		return Artifact{}, fmt.Errorf("%s.Render failed: %w", s.draw.Name(), err)
	}

	art.RenderID = id
	log.WithFields(logrus.Fields{
		"backend":  art.Backend,
		"fallback": art.WasFallback,
		"rerouted": art.Rerouted,
		"size":     humanize.Bytes(uint64(len(art.Bytes))),
	}).Info("exam rendered")

	return art, nil
}

var errEmptyDocument = errors.New("backend returned an empty document")

func renderNonEmpty(ctx context.Context, b Backend, job Job) (Artifact, error) {
	art, err := b.Render(ctx, job)
	if err == nil && len(art.Bytes) == 0 {
		err = errEmptyDocument
	}
	return art, err
}
