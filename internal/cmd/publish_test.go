package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/log"
	"github.com/felixgeelhaar/secgate/internal/publish"
)

func commentServer(t *testing.T, status int, resp string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func reportFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gate-report.md")
	require.NoError(t, os.WriteFile(path, []byte("# 🔐 CI/CD Security Gate Report\n"), 0o644))
	return path
}

func TestRunPublish(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		status    int
		resp      string
		wantCalls int32
		wantOut   string
		wantCode  gerrors.ErrorCode
	}{
		{
			name:    "no token skips",
			wantOut: "GITHUB_TOKEN not set; report not published",
		},
		{
			name:      "posted",
			token:     "tok",
			status:    http.StatusCreated,
			resp:      `{"id": 9, "html_url": "https://github.test/acme/api/pull/4#issuecomment-9"}`,
			wantCalls: 1,
			wantOut:   "Published report to acme/api#4: https://github.test/acme/api/pull/4#issuecomment-9",
		},
		{
			name:      "rejected token",
			token:     "tok",
			status:    http.StatusUnauthorized,
			resp:      `{"message": "Bad credentials"}`,
			wantCalls: 1,
			wantCode:  gerrors.ErrCodePublishUnauthorized,
		},
		{
			name:      "server error",
			token:     "tok",
			status:    http.StatusBadGateway,
			resp:      `bad gateway`,
			wantCalls: 1,
			wantCode:  gerrors.ErrCodePublishStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := commentServer(t, tt.status, tt.resp)
			var stdout bytes.Buffer

			err := runPublish(context.Background(), publish.Config{
				Token:      tt.token,
				APIURL:     srv.URL,
				Timeout:    time.Second,
				Repo:       "acme/api",
				PR:         "4",
				ReportPath: reportFile(t),
			}, &stdout, log.Discard())

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, codeOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout.String(), tt.wantOut)
		})
	}
}

func TestRunPublish_NoTokenIgnoresTargets(t *testing.T) {
	tests := []struct {
		name string
		repo string
		pr   string
	}{
		{"empty pull request number", "acme/api", ""},
		{"nested repository path", "group/sub/proj", "5"},
		{"three-part repository", "a/b/c", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := commentServer(t, http.StatusCreated, `{}`)
			var stdout bytes.Buffer

			err := runPublish(context.Background(), publish.Config{
				APIURL:     srv.URL,
				Repo:       tt.repo,
				PR:         tt.pr,
				ReportPath: filepath.Join(t.TempDir(), "absent.md"),
			}, &stdout, log.Discard())

			require.NoError(t, err)
			assert.Zero(t, calls.Load())
			assert.Contains(t, stdout.String(), "GITHUB_TOKEN not set")
		})
	}
}

func TestRunPublish_InvalidPullNumber(t *testing.T) {
	err := runPublish(context.Background(), publish.Config{
		Token:      "tok",
		Repo:       "acme/api",
		PR:         "",
		ReportPath: "gate-report.md",
	}, &bytes.Buffer{}, log.Discard())
	assert.Equal(t, gerrors.ErrCodeUsageInvalid, codeOf(t, err))
}

func TestPublishCommand_PullNumberIsString(t *testing.T) {
	f := publishCmd.Flags().Lookup("pr")
	require.NotNil(t, f)
	assert.Equal(t, "string", f.Value.Type())
}

func TestRunPublish_InvalidRepo(t *testing.T) {
	err := runPublish(context.Background(), publish.Config{
		Token:      "tok",
		Repo:       "not-a-repo",
		PR:         "1",
		ReportPath: "gate-report.md",
	}, &bytes.Buffer{}, log.Discard())
	assert.Equal(t, gerrors.ErrCodeUsageInvalid, codeOf(t, err))
}
