// Package github implements the remote content client: it translates the
// content repository's Contents API listings into typed book, chapter and
// post structures, and reads comment counts from GitHub Discussions.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chanani/booksite/config"
)

// Client talks to the GitHub REST and GraphQL APIs.
type Client struct {
	http *http.Client
	cfg  config.GitHub
}

// NewClient creates a content client for the configured repository.
func NewClient(cfg config.GitHub) *Client {
	return &Client{
		http: &http.Client{},
		cfg:  cfg,
	}
}

// contentEntry is one item of a Contents API directory listing.
type contentEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "file" or "dir"
	DownloadURL string `json:"download_url"`
}

// fileBlob is a Contents API file response.
type fileBlob struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// contentsPath builds /repos/{owner}/{repo}/contents/{segments...} with
// each segment escaped individually.
func (c *Client) contentsPath(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, seg := range segments {
		for _, part := range strings.Split(seg, "/") {
			escaped = append(escaped, url.PathEscape(part))
		}
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.cfg.APIBaseURL, c.cfg.Owner, c.cfg.Repo, strings.Join(escaped, "/"))
}

// getJSON performs a GET and decodes the JSON body into out. The response
// header is returned for Link-header pagination.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.Header, fmt.Errorf("GET %s: decoding response: %w", rawURL, err)
	}
	return resp.Header, nil
}

// listDir fetches a directory listing under the content repository.
func (c *Client) listDir(ctx context.Context, segments ...string) ([]contentEntry, error) {
	var entries []contentEntry
	if _, err := c.getJSON(ctx, c.contentsPath(segments...), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// getFile fetches a file blob and decodes its base64 content.
func (c *Client) getFile(ctx context.Context, segments ...string) (name string, data []byte, err error) {
	var blob fileBlob
	if _, err := c.getJSON(ctx, c.contentsPath(segments...), &blob); err != nil {
		return "", nil, err
	}
	decoded, err := decodeBase64(blob.Content)
	if err != nil {
		return "", nil, fmt.Errorf("decoding content of %s: %w", blob.Name, err)
	}
	return DecodeQuotedName(blob.Name), decoded, nil
}

// decodeBase64 decodes a Contents API blob. The API wraps base64 at 60
// columns, so embedded newlines are stripped first.
func decodeBase64(encoded string) ([]byte, error) {
	cleaned := strings.ReplaceAll(encoded, "\n", "")
	return base64.StdEncoding.DecodeString(cleaned)
}

// DecodeQuotedName decodes a git quoted-octal filename. Non-ASCII paths
// arrive as `"\NNN\NNN..."` (octal triplets inside double quotes); each
// triplet is one byte of the original UTF-8 name. Unquoted names pass
// through unchanged.
func DecodeQuotedName(name string) string {
	if len(name) < 2 || !strings.HasPrefix(name, `"`) || !strings.HasSuffix(name, `"`) {
		return name
	}
	inner := name[1 : len(name)-1]
	buf := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+3 < len(inner) && isOctalTriplet(inner[i+1:i+4]) {
			v, _ := strconv.ParseUint(inner[i+1:i+4], 8, 8)
			buf = append(buf, byte(v))
			i += 3
			continue
		}
		buf = append(buf, inner[i])
	}
	return string(buf)
}

func isOctalTriplet(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}

var (
	coverRe      = regexp.MustCompile(`(?i)^cover\.(png|jpe?g|webp|gif|svg)$`)
	leadingNumRe = regexp.MustCompile(`^\d+-?`)
	orderRe      = regexp.MustCompile(`^(\d+)`)
)

// findCover returns the download URL of a cover image among entries, or "".
func findCover(entries []contentEntry) string {
	for _, e := range entries {
		if e.Type == "file" && coverRe.MatchString(DecodeQuotedName(e.Name)) {
			return e.DownloadURL
		}
	}
	return ""
}

// formatChapterName derives a display title from a chapter filename:
// "02-solid-principles.md" becomes "Solid Principles".
func formatChapterName(filename string) string {
	name := strings.TrimSuffix(filename, ".md")
	name = leadingNumRe.ReplaceAllString(name, "")
	name = titleCaseWords(name)
	if name == "" {
		return filename
	}
	return name
}

// chapterOrder extracts the leading numeric prefix of a chapter filename.
// Chapters without one sort last.
func chapterOrder(filename string) int {
	m := orderRe.FindStringSubmatch(filename)
	if m == nil {
		return 999
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 999
	}
	return n
}

// titleCaseWords turns separator characters into spaces and uppercases the
// first letter of each word.
func titleCaseWords(s string) string {
	out := []rune(strings.NewReplacer("_", " ", "-", " ").Replace(s))
	startOfWord := true
	for i, r := range out {
		if r == ' ' {
			startOfWord = true
			continue
		}
		if startOfWord && r >= 'a' && r <= 'z' {
			out[i] = r - ('a' - 'A')
		}
		startOfWord = false
	}
	return string(out)
}

// formatDate renders an ISO8601 timestamp as YYYY/MM/DD, or "" when the
// input is empty or unparseable.
func formatDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	return t.Format("2006/01/02")
}
