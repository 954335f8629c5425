package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// Version is reported to MCP clients.
var Version = "v0.1.0"

type docStore interface {
	renderStore
	previewStore
}

// NewServer creates an MCP server with the exam tools. up may be nil when
// Drive delivery is not configured. baseURL prefixes download links.
func NewServer(svc renderSvc, store docStore, up Uploader, prev previewer, baseURL string, log logrus.FieldLogger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "examdoc", Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_exam",
		Description: "Render exam content (plain text, pipe tables, HTML or a LaTeX document) to PDF and return where to fetch it",
	}, NewRenderExam(svc, store, up, baseURL, log).RenderExam)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_exam",
		Description: "Show how exam content is classified into problems, sub-questions, tables and notes before rendering",
	}, NewClassifyExam(svc).ClassifyExam)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_document",
		Description: "Extract page count, page size and text from a rendered exam",
	}, NewPreviewDocument(store, prev).PreviewDocument)

	return server
}
