// Package backend is the HTTP client for the quiz-generation service. The
// composer never owns the entities behind these calls; it reads snapshots
// and writes deltas, attaching whatever bearer credential the token source
// supplies.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quizforge/composer/internal/compose"
	"github.com/quizforge/composer/internal/quiz"
)

// TokenSource supplies the opaque bearer credential attached to every call.
// The gateway passes the caller's own token through; tests use StaticToken.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer credential.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

// New returns a client for the service at baseURL. A nil httpClient gets a
// 30s-timeout default.
func New(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base:   strings.TrimSuffix(baseURL, "/"),
		http:   httpClient,
		tokens: tokens,
	}
}

// ListTests fetches the caller's test list.
func (c *Client) ListTests(ctx context.Context) ([]quiz.TestSummary, error) {
	var out []quiz.TestSummary
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/tests", nil, &out, "could not fetch the test list"); err != nil {
		return nil, err
	}
	return out, nil
}

// Generate submits a validated composition request.
func (c *Client) Generate(ctx context.Context, req compose.Request) (quiz.GenerateResult, error) {
	var out quiz.GenerateResult
	err := c.doJSON(ctx, http.MethodPost, "/tests/generate", req, &out, "test generation failed")
	return out, err
}

// TestDetail fetches one test with its questions.
func (c *Client) TestDetail(ctx context.Context, testID string) (quiz.TestDetail, error) {
	var out quiz.TestDetail
	err := c.doJSON(ctx, http.MethodGet, "/tests/"+url.PathEscape(testID), nil, &out, "could not fetch the test")
	return out, err
}

// CreateQuestion appends a question; the server assigns its position.
func (c *Client) CreateQuestion(ctx context.Context, testID string, p quiz.QuestionPayload) (quiz.Question, error) {
	var out quiz.Question
	err := c.doJSON(ctx, http.MethodPost, "/tests/"+url.PathEscape(testID)+"/questions", p, &out, "could not add the question")
	return out, err
}

// UpdateQuestion patches an existing question. The response body is ignored:
// older service versions answer with a bare message instead of the question.
func (c *Client) UpdateQuestion(ctx context.Context, testID, questionID string, p quiz.QuestionPayload) error {
	path := "/tests/" + url.PathEscape(testID) + "/edit/" + url.PathEscape(questionID)
	return c.doJSON(ctx, http.MethodPatch, path, p, nil, "could not save the question")
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, testID, questionID string) error {
	path := "/tests/" + url.PathEscape(testID) + "/questions/" + url.PathEscape(questionID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, "could not delete the question")
}

// DeleteTest removes a whole test.
func (c *Client) DeleteTest(ctx context.Context, testID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/tests/"+url.PathEscape(testID), nil, nil, "could not delete the test")
}

// UploadMaterial streams a source document to the service and returns the
// upload record, extraction outcome included.
func (c *Client) UploadMaterial(ctx context.Context, filename string, r io.Reader) (quiz.Material, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("uploaded_file", filename)
	if err != nil {
		return quiz.Material{}, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return quiz.Material{}, err
	}
	if err := mw.Close(); err != nil {
		return quiz.Material{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/materials/upload", &buf)
	if err != nil {
		return quiz.Material{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return quiz.Material{}, fmt.Errorf("upload material: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return quiz.Material{}, decodeError(res, "could not upload the material")
	}
	var out quiz.Material
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return quiz.Material{}, fmt.Errorf("decode upload response: %w", err)
	}
	return out, nil
}

// ExportPDF downloads the backend-rendered PDF bytes.
func (c *Client) ExportPDF(ctx context.Context, testID string, showAnswers bool) ([]byte, error) {
	path := fmt.Sprintf("/tests/%s/export/pdf?show_answers=%t", url.PathEscape(testID), showAnswers)
	return c.download(ctx, path, "could not download the PDF")
}

// ExportXML downloads the backend-rendered XML bytes.
func (c *Client) ExportXML(ctx context.Context, testID string) ([]byte, error) {
	return c.download(ctx, "/tests/"+url.PathEscape(testID)+"/export/xml", "could not download the XML")
}

func (c *Client) download(ctx context.Context, path, fallback string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, decodeError(res, fallback)
	}
	return io.ReadAll(res.Body)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("bearer token: %w", err)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// doJSON runs one JSON round trip. A nil in skips the request body, a nil
// out discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return decodeError(res, fallback)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
