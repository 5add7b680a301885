package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultPageSize = 100
	maxErrorBody    = 4 << 10
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends the request anonymously.
type TokenSource interface {
	Token() string
}

// Client is the content API surface used by the adapters
type Client interface {
	Login(ctx context.Context, identifier, password string) (*AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*AuthResponse, error)
	GetUser(ctx context.Context, id string) (*User, error)
	Upload(ctx context.Context, filename, contentType string, data []byte) ([]UploadedFile, error)
	CreatePrediction(ctx context.Context, input PredictionInput) (*Entity, error)
	GetPrediction(ctx context.Context, id string) (*Entity, error)
	ListPredictions(ctx context.Context, req ListPredictionsRequest) ([]Entity, error)
}

// ErrMalformedResponse marks a 2xx response whose body did not have the
// expected shape.
var ErrMalformedResponse = errors.New("malformed content api response")

// APIError is a non-2xx response from the content API
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("content api returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("content api returned status %d", e.StatusCode)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Options configures the HTTP client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	Metrics    *observability.Metrics
	HTTPClient *http.Client
}

// HTTPClient talks to the content API over REST/JSON
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	metrics    *observability.Metrics
}

// NewClient creates a content API client
func NewClient(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     opts.Tokens,
		metrics:    opts.Metrics,
	}
}

// BaseURL returns the configured API root.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a JWT
func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	body := map[string]string{"identifier": identifier, "password": password}
	out := &AuthResponse{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/local", nil, body, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates an account
func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	out := &AuthResponse{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/local/register", nil, body, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser retrieves one account
func (c *HTTPClient) GetUser(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	out := &User{}
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload stores a file under the multipart field "files"
func (c *HTTPClient) Upload(ctx context.Context, filename, contentType string, data []byte) ([]UploadedFile, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out []UploadedFile
	if err := c.do(req, "upload", &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: upload returned no files", ErrMalformedResponse)
	}
	return out, nil
}

// CreatePrediction stores a prediction record
func (c *HTTPClient) CreatePrediction(ctx context.Context, input PredictionInput) (*Entity, error) {
	body := map[string]any{"data": input}
	out := &SingleResponse{}
	if err := c.doJSON(ctx, http.MethodPost, "/predictions", nil, body, out, true); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("%w: create prediction returned no data", ErrMalformedResponse)
	}
	return out.Data, nil
}

// GetPrediction retrieves one prediction with its relations populated
func (c *HTTPClient) GetPrediction(ctx context.Context, id string) (*Entity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("prediction id is required")
	}
	query := url.Values{"populate": []string{"*"}}
	out := &SingleResponse{}
	if err := c.doJSON(ctx, http.MethodGet, "/predictions/"+url.PathEscape(id), query, nil, out, true); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "prediction not found"}
	}
	return out.Data, nil
}

// ListPredictions retrieves prediction records newest first
func (c *HTTPClient) ListPredictions(ctx context.Context, req ListPredictionsRequest) ([]Entity, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	query := url.Values{}
	query.Set("sort", "createdAt:desc")
	query.Set("populate", "*")
	query.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	if req.UserID != "" {
		query.Set("filters[user][id][$eq]", req.UserID)
	}

	out := &CollectionResponse{}
	if err := c.doJSON(ctx, http.MethodGet, "/predictions", query, nil, out, true); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, body, out any, authenticated bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if !authenticated {
		req.Header.Del("Authorization")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, strings.ToLower(method)+" "+operationName(path), out)
}

func (c *HTTPClient) do(req *http.Request, operation string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observability.RecordUpstreamMetric(req.Context(), c.metrics, "content-api", operation, time.Since(start))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		apiErr.Name = envelope.Error.Name
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// operationName collapses ids out of a path for metric labels.
func operationName(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if i > 0 && p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
