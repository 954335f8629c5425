package delivery_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/delivery"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		subject, id, want string
	}{
		{"Parallel Computing", "4f1c", "parallel-computing-4f1c.pdf"},
		{"Análisis Numérico!", "", "analisis-numerico.pdf"},
		{"", "abc-123", "exam-abc-123.pdf"},
		{"../../etc/passwd", "x", "etc-passwd-x.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, delivery.FileName(tt.subject, tt.id), tt.subject)
	}

	long := delivery.FileName(strings.Repeat("word ", 60), "id")
	assert.LessOrEqual(t, len(long), 124)
	assert.True(t, strings.HasSuffix(long, ".pdf"))
}

func TestLocalSaveOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := delivery.NewLocal(dir+"/nested", nil)
	require.NoError(t, err)

	st, err := store.Save("exam-1.pdf", []byte("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, "exam-1.pdf", st.Name)
	assert.EqualValues(t, 13, st.Size)

	f, err := store.Open("exam-1.pdf")
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(b))

	b, err = store.Read("exam-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(b))

	entries, err := os.ReadDir(dir + "/nested")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")

	_, err = store.Open("missing.pdf")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalRejectsNames(t *testing.T) {
	store, err := delivery.NewLocal(t.TempDir(), nil)
	require.NoError(t, err)

	for _, name := range []string{"", "../x.pdf", "a/b.pdf", ".hidden.pdf", "exam.txt", "exam"} {
		_, err := store.Save(name, []byte("x"))
		assert.ErrorIs(t, err, delivery.ErrInvalidName, name)
		_, err = store.Open(name)
		assert.ErrorIs(t, err, delivery.ErrInvalidName, name)
	}
}

type clientSourceMock struct {
	ClientFunc func(ctx context.Context) (*http.Client, error)
}

func (m *clientSourceMock) Client(ctx context.Context) (*http.Client, error) {
	return m.ClientFunc(ctx)
}

func TestDriveUpload(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"file-1","name":"exam.pdf","webViewLink":"https://drive.example/file-1"}`))
	}))
	defer srv.Close()

	src := &clientSourceMock{ClientFunc: func(context.Context) (*http.Client, error) { return srv.Client(), nil }}
	d := delivery.NewDrive(src, "folder-9", nil, option.WithEndpoint(srv.URL+"/"))

	got, err := d.Upload(context.Background(), "exam.pdf", bytes.NewReader([]byte("%PDF-1.4 body")))
	require.NoError(t, err)

	assert.Equal(t, delivery.Remote{ID: "file-1", Name: "exam.pdf", WebViewLink: "https://drive.example/file-1"}, got)
	assert.Contains(t, string(body), "folder-9")
	assert.Contains(t, string(body), "%PDF-1.4 body")
}

func TestDriveUploadNoToken(t *testing.T) {
	src := &clientSourceMock{ClientFunc: func(context.Context) (*http.Client, error) { return nil, errors.New("no token defined") }}

	_, err := delivery.NewDrive(src, "", nil).Upload(context.Background(), "exam.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token defined")
}
