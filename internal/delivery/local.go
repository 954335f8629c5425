// Package delivery stores rendered exams where callers can fetch them.
package delivery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
)

// ErrInvalidName is returned for names that could escape the output directory.
var ErrInvalidName = errors.New("invalid document name")

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}\.pdf$`)

// Stored describes a document written to the local store.
type Stored struct {
	Name string
	Path string
	Size int64
}

// Local keeps documents in a single directory.
type Local struct {
	dir string
	log logrus.FieldLogger
}

// NewLocal creates dir if needed.
func NewLocal(dir string, log logrus.FieldLogger) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll failed: %w", err)
	}
	return &Local{dir: dir, log: logging.OrDiscard(log)}, nil
}

// FileName builds a document name from a subject and a render id.
func FileName(subject, renderID string) string {
	s := slug(subject)
	if s == "" {
		s = "exam"
	}
	if id := slug(renderID); id != "" {
		s += "-" + id
	}
	if len(s) > 120 {
		s = strings.TrimRight(s[:120], "-")
	}
	return s + ".pdf"
}

// slug lowercases s, drops accents and joins the remaining words with dashes.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			dash = true
		}
	}
	return b.String()
}

// Path resolves name inside the store.
func (l *Local) Path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.dir, name), nil
}

// Save writes b under name. Readers never observe a partial file.
func (l *Local) Save(name string, b []byte) (Stored, error) {
	path, err := l.Path(name)
	if err != nil {
		return Stored{}, err
	}

	f, err := os.CreateTemp(l.dir, ".tmp-*")
	if err != nil {
		return Stored{}, fmt.Errorf("os.CreateTemp failed: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return Stored{}, fmt.Errorf("f.Write failed: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return Stored{}, fmt.Errorf("f.Sync failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return Stored{}, fmt.Errorf("f.Close failed: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return Stored{}, fmt.Errorf("os.Chmod failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return Stored{}, fmt.Errorf("os.Rename failed: %w", err)
	}

	l.log.WithFields(logrus.Fields{"name": name, "size": len(b)}).Debug("document stored")
	return Stored{Name: name, Path: path, Size: int64(len(b))}, nil
}

// Open opens a stored document for reading.
func (l *Local) Open(name string) (*os.File, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open failed: %w", err)
	}
	return f, nil
}

// Read returns a stored document.
func (l *Local) Read(name string) ([]byte, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile failed: %w", err)
	}
	return b, nil
}
