package handlers

import (
	"bytes"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestRespondWithJSON_LogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	rec := httptest.NewRecorder()
	respondWithJSON(rec, http.StatusOK, map[string]float64{"radius_miles": math.Inf(1)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "Failed to encode response")
	assert.Contains(t, buf.String(), "unsupported value")
}
