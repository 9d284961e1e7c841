package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var repoPart = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateRepo checks that repo has the form owner/name.
func ValidateRepo(repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || !repoPart.MatchString(owner) || !repoPart.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("repository must be owner/name, got %q", repo)
	}
	return nil
}

// IssueComment is the subset of the comment resource the gate reports.
type IssueComment struct {
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url"`
}

type createCommentRequest struct {
	Body string `json:"body"`
}

// CreateIssueComment posts body as a comment on issue or pull request
// number in repo. Exactly one request is made.
func (c *Client) CreateIssueComment(ctx context.Context, repo string, number int, body string) (*IssueComment, error) {
	owner, name, _ := strings.Cut(repo, "/")
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", url.PathEscape(owner), url.PathEscape(name), number)

	resp, err := c.doRequest(ctx, http.MethodPost, path, createCommentRequest{Body: body})
	if err != nil {
		return nil, err
	}

	comment := &IssueComment{}
	if err := parseResponse(resp, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
