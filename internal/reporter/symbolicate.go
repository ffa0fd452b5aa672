package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Symbolicator maps an unsymbolicated stack trace back to source locations
// and returns the formatted stack.
type Symbolicator interface {
	Symbolicate(ctx context.Context, projectRoot, level string, parsed *ParsedError) (string, error)
}

// HTTPSymbolicator implements Symbolicator with the dev server's
// /symbolicate endpoint.
type HTTPSymbolicator struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPSymbolicator creates an HTTPSymbolicator for the dev server at baseURL.
func NewHTTPSymbolicator(baseURL string) *HTTPSymbolicator {
	return &HTTPSymbolicator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

type symbolicateRequest struct {
	Stack []StackFrame `json:"stack"`
}

// CodeFrame is the source excerpt around the first symbolicated frame.
type CodeFrame struct {
	Content  string `json:"content"`
	FileName string `json:"fileName"`
}

type symbolicateResponse struct {
	Stack     []StackFrame `json:"stack"`
	CodeFrame *CodeFrame   `json:"codeFrame"`
}

// Symbolicate posts the stack to the dev server and formats the result.
func (s *HTTPSymbolicator) Symbolicate(ctx context.Context, projectRoot, level string, parsed *ParsedError) (string, error) {
	data, err := json.Marshal(symbolicateRequest{Stack: parsed.Stack})
	if err != nil {
		return "", fmt.Errorf("marshaling stack: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/symbolicate", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request to /symbolicate: %w", err)
	}

	var result symbolicateResponse
	if err := decodeResponse(resp, &result); err != nil {
		return "", fmt.Errorf("symbolicating %s stack: %w", level, err)
	}

	return formatSymbolicatedStack(projectRoot, result), nil
}

// formatSymbolicatedStack renders the code frame followed by the frames the
// server did not collapse, with file paths relative to projectRoot.
func formatSymbolicatedStack(projectRoot string, result symbolicateResponse) string {
	var b strings.Builder
	if result.CodeFrame != nil && result.CodeFrame.Content != "" {
		b.WriteString(result.CodeFrame.Content)
		b.WriteString("\n\n")
	}

	b.WriteString("Call Stack")
	for _, frame := range result.Stack {
		if frame.Collapse {
			continue
		}
		fmt.Fprintf(&b, "\n  %s (%s:%d:%d)", frame.MethodName, relativePath(projectRoot, frame.File), frame.LineNumber, frame.Column)
	}
	return b.String()
}

func decodeResponse(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dev server returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
