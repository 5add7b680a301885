package classifier

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
	"strings"
	"time"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
)

const defaultTimeout = 30 * time.Second

// StatusError is a non-2xx response from the classifier
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("classifier returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("classifier returned status %d", e.StatusCode)
}

// IsClientError reports whether err is a 4xx answer, i.e. the image was
// rejected rather than the service failing.
func IsClientError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
}

// HTTPClient calls the inference service
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewClient creates a classifier client. A nil httpClient gets one with the
// given timeout.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client, metrics *observability.Metrics) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    metrics,
	}
}

var _ providers.Classifier = (*HTTPClient)(nil)

// Classify posts the raw image under the multipart field "file"
func (c *HTTPClient) Classify(ctx context.Context, image *entities.ImageUpload) (*entities.Classification, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, image.Filename))
	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build classify form: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, fmt.Errorf("failed to build classify form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build classify form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out entities.Classification
	if err := c.do(req, "predict", &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", providers.ErrMalformedClassification, err)
	}
	return &out, nil
}

// Health returns the status field of GET /health
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(req, "health", &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		return "", fmt.Errorf("malformed health response: missing status")
	}
	return out.Status, nil
}

func (c *HTTPClient) do(req *http.Request, operation string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observability.RecordUpstreamMetric(req.Context(), c.metrics, "classifier", operation, time.Since(start))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var body struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(raw, &body)
		return &StatusError{StatusCode: resp.StatusCode, Detail: body.Detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", providers.ErrMalformedClassification, err)
	}
	return nil
}
