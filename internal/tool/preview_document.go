package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/format"
)

// PreviewDocumentRequest names a rendered document.
type PreviewDocumentRequest struct {
	Name string `json:"name" jsonschema:"document name returned by render_exam"`
}

// PreviewDocumentResponse summarizes the document.
type PreviewDocumentResponse struct {
	Name      string  `json:"name" jsonschema:"document name"`
	Pages     int     `json:"pages" jsonschema:"page count"`
	Width     float64 `json:"width" jsonschema:"first page width in points"`
	Height    float64 `json:"height" jsonschema:"first page height in points"`
	Text      string  `json:"text" jsonschema:"extracted text"`
	Truncated bool    `json:"truncated,omitempty" jsonschema:"text was shortened"`
}

type previewStore interface {
	Read(name string) ([]byte, error)
}

type previewer interface {
	Preview(raw []byte) (format.Preview, error)
}

// NewPreviewDocument creates a new PreviewDocument tool.
func NewPreviewDocument(store previewStore, prev previewer) *PreviewDocument {
	return &PreviewDocument{store: store, prev: prev}
}

// PreviewDocument reads back rendered documents.
type PreviewDocument struct {
	store previewStore
	prev  previewer
}

// PreviewDocument extracts the named document.
func (t *PreviewDocument) PreviewDocument(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input PreviewDocumentRequest,
) (*mcp.CallToolResult, PreviewDocumentResponse, error) {
	raw, err := t.store.Read(input.Name)
	if err != nil {
		return nil, PreviewDocumentResponse{}, fmt.Errorf("store.Read failed: %w", err)
	}

	p, err := t.prev.Preview(raw)
	if err != nil {
		return nil, PreviewDocumentResponse{}, fmt.Errorf("preview failed: %w", err)
	}

	return nil, PreviewDocumentResponse{
		Name:      input.Name,
		Pages:     p.Pages,
		Width:     p.Width,
		Height:    p.Height,
		Text:      p.Text,
		Truncated: p.Truncated,
	}, nil
}
