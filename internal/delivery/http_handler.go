package delivery

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
)

// DownloadHandler serves stored documents. It expects to be mounted on a
// pattern with a {name} wildcard, e.g. "GET /download/{name}".
type DownloadHandler struct {
	store *Local
	log   logrus.FieldLogger
}

// NewDownloadHandler creates a DownloadHandler.
func NewDownloadHandler(store *Local, log logrus.FieldLogger) *DownloadHandler {
	return &DownloadHandler{store: store, log: logging.OrDiscard(log)}
}

func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	f, err := h.store.Open(name)
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, fs.ErrNotExist):
		http.NotFound(w, r)
		return
	case err != nil:
		h.log.WithError(err).WithField("name", name).Error("store.Open failed")
		http.Error(w, "Unable to read document", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		h.log.WithError(err).WithField("name", name).Error("f.Stat failed")
		http.Error(w, "Unable to read document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", pdfMimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, fi.ModTime(), f)
}
