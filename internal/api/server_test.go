package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardian/urban-guardian-api/internal/landsat"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(32<<20, t.TempDir())
}

func doRequest(t *testing.T, s *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestRoot(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "running", body["status"])
}

func TestHealth(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestLegend(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/api/legend", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]struct {
		Value    int    `json:"value"`
		ColorHex string `json:"color_hex"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body, "Water")
	assert.Contains(t, body, "Urban/Built-up")
	assert.Equal(t, "#0064ff", body["Water"].ColorHex)
}

func TestAnalyzeMissingBand(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	rr := doRequest(t, newTestServer(t), http.MethodPost, "/api/analyze", &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "missing band file")
}

func TestAnalyzeRejectsNonTIFF(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("band_2", "band_2.jpg")
	require.NoError(t, err)
	part.Write([]byte("not a tiff"))
	require.NoError(t, writer.Close())

	rr := doRequest(t, newTestServer(t), http.MethodPost, "/api/analyze", &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "not a GeoTIFF")
}

func TestAnalyzeCoefficientFieldAliases(t *testing.T) {
	// ml_coefficient must be recognized alongside ml: its value has to
	// be validated rather than ignored
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, band := range landsat.AnalysisBands {
		part, err := writer.CreateFormFile(string(band), string(band)+".tif")
		require.NoError(t, err)
		part.Write([]byte("tiff bytes"))
	}
	require.NoError(t, writer.WriteField("ml_coefficient", "not-a-number"))
	require.NoError(t, writer.Close())

	rr := doRequest(t, newTestServer(t), http.MethodPost, "/api/analyze", &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "invalid ml_coefficient")
}

func TestAnalyzeWrongMethod(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/api/analyze", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestJobInvalidID(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/api/jobs/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJobNotFound(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/api/jobs/0a7c9f4e-3a41-4dbb-9d2a-58c1d8f0b7aa", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "not found")
}
