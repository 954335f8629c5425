package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
)

const pdfMimeType = "application/pdf"

// ClientSource hands out authorized HTTP clients.
type ClientSource interface {
	Client(ctx context.Context) (*http.Client, error)
}

// Remote describes an uploaded file.
type Remote struct {
	ID          string
	Name        string
	WebViewLink string
}

// Drive uploads documents to a Google Drive folder.
type Drive struct {
	src      ClientSource
	folderID string
	opts     []option.ClientOption
	log      logrus.FieldLogger
}

// NewDrive returns a Drive uploader. An empty folderID uploads to the root
// folder. opts are appended after the authorized client.
func NewDrive(src ClientSource, folderID string, log logrus.FieldLogger, opts ...option.ClientOption) *Drive {
	return &Drive{src: src, folderID: folderID, opts: opts, log: logging.OrDiscard(log)}
}

// Upload stores the PDF read from r as name.
func (d *Drive) Upload(ctx context.Context, name string, r io.Reader) (Remote, error) {
	svc, err := d.newSvc(ctx)
	if err != nil {
		return Remote{}, fmt.Errorf("newSvc failed: %w", err)
	}

	meta := &drive.File{Name: name, MimeType: pdfMimeType}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}

	f, err := svc.Files.Create(meta).
		Media(r, googleapi.ContentType(pdfMimeType)).
		Fields("id", "name", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return Remote{}, fmt.Errorf("files.Create failed: %w", err)
	}

	d.log.WithFields(logrus.Fields{"name": name, "file_id": f.Id}).Info("document uploaded")
	return Remote{ID: f.Id, Name: f.Name, WebViewLink: f.WebViewLink}, nil
}

func (d *Drive) newSvc(ctx context.Context) (*drive.Service, error) {
	clt, err := d.src.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("src.Client failed: %w", err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, d.opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService failed: %w", err)
	}

	return svc, nil
}
