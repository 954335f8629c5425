package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

type tokMock struct {
	AuthorizeCodeFunc func(ctx context.Context, code, state string) error
	OAuthTokenFunc    func() (*oauth2.Token, error)
	RedirectURLFunc   func() (string, error)
}

func (m *tokMock) AuthorizeCode(ctx context.Context, code, state string) error {
	return m.AuthorizeCodeFunc(ctx, code, state)
}

func (m *tokMock) OAuthToken() (*oauth2.Token, error) {
	return m.OAuthTokenFunc()
}

func (m *tokMock) RedirectURL() (string, error) {
	return m.RedirectURLFunc()
}

func TestHTTPHandler(t *testing.T) {
	expiry := time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		target   string
		mock     *tokMock
		wantCode int
		wantLoc  string
		wantBody string
	}{
		{
			name:     "redirect to consent",
			target:   "/oauth?redirect=1",
			mock:     &tokMock{RedirectURLFunc: func() (string, error) { return "https://accounts.example/consent", nil }},
			wantCode: http.StatusFound,
			wantLoc:  "https://accounts.example/consent",
		},
		{
			name:     "redirect fails",
			target:   "/oauth?redirect=1",
			mock:     &tokMock{RedirectURLFunc: func() (string, error) { return "", errors.New("no entropy") }},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:   "code accepted",
			target: "/oauth?code=abc&state=s1",
			mock: &tokMock{AuthorizeCodeFunc: func(_ context.Context, code, state string) error {
				if code != "abc" || state != "s1" {
					return ErrInvalidState
				}
				return nil
			}},
			wantCode: http.StatusFound,
			wantLoc:  "/oauth",
		},
		{
			name:     "code rejected",
			target:   "/oauth?code=abc&state=bad",
			mock:     &tokMock{AuthorizeCodeFunc: func(context.Context, string, string) error { return ErrInvalidState }},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no token",
			target:   "/oauth",
			mock:     &tokMock{OAuthTokenFunc: func() (*oauth2.Token, error) { return nil, ErrTokenNotSet }},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "token masked",
			target: "/oauth",
			mock: &tokMock{OAuthTokenFunc: func() (*oauth2.Token, error) {
				return &oauth2.Token{AccessToken: "secret-token-wxyz", Expiry: expiry}, nil
			}},
			wantCode: http.StatusOK,
			wantBody: "Token: XXXXXXXXXXXXXwxyz, expires: 2026-05-01T10:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHTTPHandler(tt.mock, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestMaskLeft(t *testing.T) {
	assert.Equal(t, "abc", maskLeft("abc"))
	assert.Equal(t, "XXwxyz", maskLeft("abwxyz"))
}
