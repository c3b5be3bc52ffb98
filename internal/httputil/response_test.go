package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondUpstreamError(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondUpstreamError(rec, "Error generating description")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Error generating description", body["message"])
	assert.Equal(t, "Error generating description", body["detail"])
	assert.Equal(t, "Bad Gateway", body["title"])
	assert.EqualValues(t, http.StatusBadGateway, body["status"])
}

func TestRespondErrorWithExtras_KeepsProblemFields(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondErrorWithExtras(rec, http.StatusConflict, "batch job is running", map[string]interface{}{
		"resource_type": "batch",
		"status":        "overridden",
	})

	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusConflict, body["status"])
	assert.Equal(t, "batch", body["resource_type"])
}

func TestRespondError_OmitsEmptyDetail(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondError(rec, http.StatusNotFound, "")

	body := decodeBody(t, rec)
	assert.NotContains(t, body, "detail")
	assert.Equal(t, "Not Found", body["title"])
}

func TestRespondJSON_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
