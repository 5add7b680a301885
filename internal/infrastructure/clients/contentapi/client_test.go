package contentapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Options{BaseURL: server.URL + "/", Tokens: staticToken("jwt-123"), HTTPClient: server.Client()})
}

func TestClient_Login(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/local", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nurse@example.com", body["identifier"])

		_, _ = w.Write([]byte(`{"jwt":"abc","user":{"id":7,"username":"nurse","email":"nurse@example.com"}}`))
	})

	resp, err := client.Login(t.Context(), "nurse@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.JWT)
	assert.Equal(t, ID("7"), resp.User.ID)
}

func TestClient_LoginErrorCarriesAPIMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":null,"error":{"status":400,"name":"ValidationError","message":"Invalid identifier or password"}}`))
	})

	_, err := client.Login(t.Context(), "x", "y")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "ValidationError", apiErr.Name)
	assert.Equal(t, "Invalid identifier or password", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestClient_UploadUsesFilesField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "Bearer jwt-123", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "wound.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

		_, _ = w.Write([]byte(`[{"id":42,"name":"wound.jpg","url":"/uploads/wound_1.jpg","mime":"image/jpeg"}]`))
	})

	files, err := client.Upload(t.Context(), "wound.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ID("42"), files[0].ID)
	assert.Equal(t, "/uploads/wound_1.jpg", files[0].URL)
}

func TestClient_ListPredictionsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/predictions", r.URL.Path)
		assert.Equal(t, "createdAt:desc", q.Get("sort"))
		assert.Equal(t, "*", q.Get("populate"))
		assert.Equal(t, "7", q.Get("filters[user][id][$eq]"))

		_, _ = w.Write([]byte(`{"data":[
			{"id":2,"attributes":{"prediction":"infected","predictionConfidence":0.9,"createdAt":"2024-05-02T10:00:00Z",
			  "image":{"data":{"id":5,"attributes":{"url":"/uploads/b.jpg"}}},"user":{"data":{"id":7,"attributes":{"username":"nurse"}}}}},
			{"id":1,"prediction":"healthy","predictionConfidence":0.83,"createdAt":"2024-05-01T10:00:00Z",
			  "image":{"id":4,"url":"/uploads/a.jpg"},"user":7}
		],"meta":{"pagination":{"page":1,"pageSize":100,"pageCount":1,"total":2}}}`))
	})

	entities, err := client.ListPredictions(t.Context(), ListPredictionsRequest{UserID: "7"})
	require.NoError(t, err)
	require.Len(t, entities, 2)

	var nested PredictionAttributes
	require.NoError(t, json.Unmarshal(entities[0].Attributes, &nested))
	assert.Equal(t, ID("2"), entities[0].ID)
	assert.Equal(t, "infected", nested.Prediction)
	assert.Equal(t, "5", nested.Image.ID())
	assert.Equal(t, "7", nested.User.ID())

	var inline PredictionAttributes
	require.NoError(t, json.Unmarshal(entities[1].Attributes, &inline))
	assert.Equal(t, ID("1"), entities[1].ID)
	assert.Equal(t, 0.83, inline.PredictionConfidence)
	assert.Equal(t, "4", inline.Image.ID())
	assert.Equal(t, "7", inline.User.ID())
}

func TestClient_ListPredictionsWithoutUserOmitsFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, filtered := r.URL.Query()["filters[user][id][$eq]"]
		assert.False(t, filtered)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	entities, err := client.ListPredictions(t.Context(), ListPredictionsRequest{})
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestClient_CreatePredictionWrapsData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "healthy", body.Data["prediction"])
		assert.Equal(t, 42.0, body.Data["image"])
		assert.Equal(t, "Keep dry|Rest", body.Data["recommendations"])
		_, hasUrgency := body.Data["urgencyLevel"]
		assert.False(t, hasUrgency)

		_, _ = w.Write([]byte(`{"data":{"id":9,"attributes":{"prediction":"healthy"}}}`))
	})

	entity, err := client.CreatePrediction(t.Context(), PredictionInput{
		Prediction:           "healthy",
		PredictionConfidence: 0.83,
		Recommendations:      "Keep dry|Rest",
		Image:                "42",
		User:                 "7",
	})
	require.NoError(t, err)
	assert.Equal(t, ID("9"), entity.ID)
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "/predictions/:id", operationName("/predictions/12"))
	assert.Equal(t, "/auth/local", operationName("/auth/local"))
}
