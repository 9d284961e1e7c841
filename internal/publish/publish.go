// Package publish posts a rendered gate report as a pull-request comment.
package publish

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/log"
	"github.com/felixgeelhaar/secgate/internal/platform"
	"github.com/felixgeelhaar/secgate/internal/telemetry"
)

const (
	// MaxCommentBytes caps the report portion of a comment. The platform
	// rejects comments above 65536 characters.
	MaxCommentBytes = 60000

	// Heading precedes the report in every comment.
	Heading = "## 🔐 Security Gate Report\n\n"
)

// Config describes one publish request. The token is passed in explicitly;
// this package never reads the environment.
type Config struct {
	Token      string
	APIURL     string
	Timeout    time.Duration
	Repo       string
	PR         string
	ReportPath string
	UserAgent  string
}

// Validate checks the repository and pull-request identifiers.
func (c Config) Validate() error {
	if err := platform.ValidateRepo(c.Repo); err != nil {
		return gerrors.NewUsageError(err.Error()).
			WithSuggestion("Pass --repo as owner/name, e.g. ${{ github.repository }}")
	}
	if _, err := pullNumber(c.PR); err != nil {
		return gerrors.NewUsageError(err.Error()).
			WithSuggestion("Pass --pr as the pull request number, e.g. ${{ github.event.number }}")
	}
	if c.ReportPath == "" {
		return gerrors.NewUsageError("report path is required")
	}
	return nil
}

func pullNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("pull request number must be a positive integer, got %q", s)
	}
	return n, nil
}

// Result describes what Publish did.
type Result struct {
	Skipped    bool
	Truncated  bool
	BodyBytes  int
	CommentID  int64
	CommentURL string
}

// Publisher posts reports.
type Publisher struct {
	cfg    Config
	client *platform.Client
	logger *log.Logger
}

// New creates a Publisher for cfg.
func New(cfg Config, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Discard()
	}
	client := platform.NewClient(cfg.APIURL, cfg.Timeout)
	client.SetToken(cfg.Token)
	client.UserAgent = cfg.UserAgent
	return &Publisher{cfg: cfg, client: client, logger: logger}
}

// Publish validates the configuration and posts the report. Without a
// token it logs and returns a skipped Result before looking at anything
// else: no validation, no report read, no network call.
func (p *Publisher) Publish(ctx context.Context) (*Result, error) {
	if p.cfg.Token == "" {
		p.logger.Info("no token; skipping comment", "repo", p.cfg.Repo, "pr", p.cfg.PR)
		return &Result{Skipped: true}, nil
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	number, _ := pullNumber(p.cfg.PR)

	data, err := os.ReadFile(p.cfg.ReportPath)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeFileReadFailed, fmt.Sprintf("read report: %s", p.cfg.ReportPath), err).
			WithSuggestion("Run 'secgate evaluate' first, or pass the path it wrote with --report")
	}

	body, truncated := BuildBody(string(data))
	if truncated {
		p.logger.Warn("report truncated to fit comment limit",
			"report_bytes", len(data), "limit", MaxCommentBytes)
	}

	ctx, span := telemetry.StartPublishSpan(ctx, p.cfg.Repo, number)
	defer span.End()

	comment, err := p.client.CreateIssueComment(ctx, p.cfg.Repo, number, body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.RecordSuccess(span,
		attribute.Int("body_bytes", len(body)),
		attribute.Bool("truncated", truncated),
	)

	p.logger.Info("posted PR comment", "repo", p.cfg.Repo, "pr", p.cfg.PR, "url", comment.HTMLURL)
	return &Result{
		Truncated:  truncated,
		BodyBytes:  len(body),
		CommentID:  comment.ID,
		CommentURL: comment.HTMLURL,
	}, nil
}

// BuildBody prefixes the heading to the report, truncated to
// MaxCommentBytes. Invalid UTF-8 in the report is replaced with U+FFFD.
func BuildBody(report string) (string, bool) {
	trimmed, truncated := Truncate(strings.ToValidUTF8(report, "\uFFFD"), MaxCommentBytes)
	return Heading + trimmed, truncated
}

// Truncate returns at most limit bytes of s, cut at a UTF-8 boundary so
// that no multi-byte sequence is split.
func Truncate(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
