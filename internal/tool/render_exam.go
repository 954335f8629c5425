package tool

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/delivery"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/render"
)

// RenderExamRequest is one exam to render.
type RenderExamRequest struct {
	Content        string            `json:"content" jsonschema:"exam text: plain text, pipe tables, HTML or a complete LaTeX document"`
	Subject        string            `json:"subject,omitempty" jsonschema:"course or subject label printed in the header"`
	ExamTitle      string            `json:"exam_title,omitempty" jsonschema:"exam title, defaults to Practice Exam"`
	Difficulty     string            `json:"difficulty,omitempty" jsonschema:"difficulty label printed in the header"`
	QuestionPoints []int             `json:"question_points,omitempty" jsonschema:"point value of each problem in order"`
	TemplatePath   string            `json:"template_reference_path,omitempty" jsonschema:"LaTeX template or reference PDF, relative to the server template directory"`
	StyleHints     map[string]string `json:"style_hints,omitempty" jsonschema:"color and size overrides such as problem.color=#1f3a93"`
	DeliverToDrive bool              `json:"deliver_to_drive,omitempty" jsonschema:"also upload the document to Google Drive"`
	IncludeData    bool              `json:"include_data,omitempty" jsonschema:"return the document bytes base64 encoded"`
}

// RenderExamResponse describes the rendered document.
type RenderExamResponse struct {
	RenderID       string     `json:"render_id" jsonschema:"identifier of this render"`
	Name           string     `json:"name" jsonschema:"document name, usable with preview_document"`
	Backend        string     `json:"backend" jsonschema:"draw or markup"`
	Pages          int        `json:"pages,omitempty" jsonschema:"page count when known"`
	Size           string     `json:"size" jsonschema:"human readable document size"`
	WasFallback    bool       `json:"was_fallback" jsonschema:"the document is a diagnostic because typesetting failed"`
	FallbackReason string     `json:"fallback_reason,omitempty" jsonschema:"why typesetting failed"`
	Rerouted       bool       `json:"rerouted" jsonschema:"the template path failed and the document was drawn directly"`
	DownloadURL    string     `json:"download_url,omitempty" jsonschema:"HTTP link to the document"`
	Drive          *DriveFile `json:"drive,omitempty" jsonschema:"the uploaded Drive file"`
	DriveError     string     `json:"drive_error,omitempty" jsonschema:"why the Drive upload failed"`
	Data           string     `json:"data,omitempty" jsonschema:"base64 encoded document when include_data is set"`
}

// DriveFile is an uploaded copy of the document.
type DriveFile struct {
	ID          string `json:"id" jsonschema:"Drive file ID"`
	WebViewLink string `json:"web_view_link,omitempty" jsonschema:"link to open the file"`
}

type renderSvc interface {
	Render(ctx context.Context, doc render.SourceDocument) (render.Artifact, error)
	Classify(text string, points []int) (content.Stream, error)
}

type renderStore interface {
	Save(name string, b []byte) (delivery.Stored, error)
}

// Uploader copies documents to remote storage.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (delivery.Remote, error)
}

var errUploadDisabled = errors.New("drive upload is not configured")

// NewRenderExam creates a new RenderExam tool.
func NewRenderExam(svc renderSvc, store renderStore, up Uploader, baseURL string, log logrus.FieldLogger) *RenderExam {
	return &RenderExam{
		svc:     svc,
		store:   store,
		up:      up,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logging.OrDiscard(log),
	}
}

// RenderExam renders exams and stores the result.
type RenderExam struct {
	svc     renderSvc
	store   renderStore
	up      Uploader
	baseURL string
	log     logrus.FieldLogger
}

// RenderExam renders the request and stores the document.
func (t *RenderExam) RenderExam(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenderExamRequest,
) (*mcp.CallToolResult, RenderExamResponse, error) {
	art, err := t.svc.Render(ctx, render.SourceDocument{
		Text:         input.Content,
		SubjectLabel: input.Subject,
		Options: render.Options{
			Difficulty:            input.Difficulty,
			QuestionPoints:        input.QuestionPoints,
			TemplateReferencePath: input.TemplatePath,
			StyleHints:            input.StyleHints,
			ExamTitle:             input.ExamTitle,
		},
	})
	if err != nil {
		return nil, RenderExamResponse{}, fmt.Errorf("render failed: %w", err)
	}

	name := delivery.FileName(input.Subject, art.RenderID)
	stored, err := t.store.Save(name, art.Bytes)
	if err != nil {
		return nil, RenderExamResponse{}, fmt.Errorf("store.Save failed: %w", err)
	}

	resp := RenderExamResponse{
		RenderID:    art.RenderID,
		Name:        stored.Name,
		Backend:     art.Backend,
		Pages:       art.Pages,
		Size:        humanize.Bytes(uint64(stored.Size)),
		WasFallback: art.WasFallback,
		Rerouted:    art.Rerouted,
	}
	if art.Cause != nil {
		resp.FallbackReason = art.Cause.Error()
	}
	if t.baseURL != "" {
		resp.DownloadURL = t.baseURL + "/download/" + stored.Name
	}

	if input.IncludeData {
		resp.Data = base64.StdEncoding.EncodeToString(art.Bytes)
	}

	if input.DeliverToDrive {
		remote, err := t.upload(ctx, stored.Name, art.Bytes)
		if err != nil {
			t.log.WithError(err).WithField("render_id", art.RenderID).Warn("drive upload failed")
			resp.DriveError = err.Error()
		} else {
			resp.Drive = &DriveFile{ID: remote.ID, WebViewLink: remote.WebViewLink}
		}
	}

	return nil, resp, nil
}

func (t *RenderExam) upload(ctx context.Context, name string, b []byte) (delivery.Remote, error) {
	if t.up == nil {
		return delivery.Remote{}, errUploadDisabled
	}
	return t.up.Upload(ctx, name, bytes.NewReader(b))
}
