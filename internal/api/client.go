// Package api is the HTTP client for the external collaborator services:
// translation, check-and-fix, optical text extraction, and step-by-step
// execution. These are plain request/response calls; only their results
// enter the sync core, as session state fields the owner may broadcast.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/maiaiia/pseudocronic/internal/state"
)

// Client calls the collaborator services under a single base URL.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a collaborator client for the given base URL.
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Correction is the result of a check-and-fix call.
type Correction struct {
	CorrectedCode  string   `json:"corrected_code"`
	HasErrors      bool     `json:"has_errors"`
	ErrorsFound    []string `json:"errors_found"`
	Explanation    string   `json:"explanation"`
	RemainingCalls int      `json:"remaining_calls"`
}

// Extraction is the result of an optical text extraction call.
type Extraction struct {
	ExtractedText  string `json:"extracted_text"`
	Confidence     string `json:"confidence"`
	RemainingCalls int    `json:"remaining_calls"`
}

// Translate converts pseudocode to C++.
func (c *Client) Translate(ctx context.Context, pseudocode string) (string, error) {
	var out struct {
		CppCode string `json:"cpp_code"`
	}
	err := c.postJSON(ctx, "/ptc", map[string]string{"pseudocode": pseudocode}, &out)
	return out.CppCode, err
}

// InverseTranslate converts C++ back to pseudocode.
func (c *Client) InverseTranslate(ctx context.Context, cppCode string) (string, error) {
	var out struct {
		Pseudocode string `json:"pseudocode"`
	}
	err := c.postJSON(ctx, "/ctp", map[string]string{"cpp_code": cppCode}, &out)
	return out.Pseudocode, err
}

// CheckAndFix submits code for correction.
func (c *Client) CheckAndFix(ctx context.Context, code string) (*Correction, error) {
	var out Correction
	if err := c.postJSON(ctx, "/api/v1/correction/", map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractText submits an image for optical pseudocode extraction.
func (c *Client) ExtractText(ctx context.Context, image io.Reader, filename string) (*Extraction, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/v1/ocr/", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Extraction
	if err := c.do(req, "/api/v1/ocr/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteSteps runs pseudocode through the step-by-step interpreter and
// returns the ordered execution trace.
func (c *Client) ExecuteSteps(ctx context.Context, pseudocode string) ([]state.ExecutionStep, error) {
	var out struct {
		Steps []state.ExecutionStep `json:"steps"`
	}
	if err := c.postJSON(ctx, "/execute", map[string]string{"pseudocode": pseudocode}, &out); err != nil {
		return nil, err
	}
	return out.Steps, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &QuotaError{Endpoint: endpoint, Detail: readDetail(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Endpoint: endpoint, Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// readDetail extracts the "detail" field the collaborator services put in
// error bodies, falling back to the raw body.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(raw))
}
