package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invoice-extractor/internal/config"
	"invoice-extractor/internal/export"
	"invoice-extractor/internal/jobs"
	"invoice-extractor/internal/models"
	"invoice-extractor/internal/pipeline"
	"invoice-extractor/internal/textract"
	"invoice-extractor/pkg/database"
)

type stubParser struct {
	res *pipeline.Result
	err error
}

func (s *stubParser) Parse(_ context.Context, _ string) (*pipeline.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func testServer(t *testing.T, parser invoiceParser, apiKey string) (*Server, *jobs.Store) {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(database.Config{Path: filepath.Join(dir, "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations(context.Background()))

	cfg := &config.Config{}
	cfg.Server.APIKey = apiKey
	cfg.LLM.Provider = "google"
	cfg.Parser.UploadDir = filepath.Join(dir, "uploads")
	cfg.Storage.OutputDir = filepath.Join(dir, "output")
	require.NoError(t, os.MkdirAll(cfg.Parser.UploadDir, 0755))
	require.NoError(t, os.MkdirAll(cfg.Storage.OutputDir, 0755))

	store := jobs.NewStore(db, zap.NewNop())
	return New(cfg, parser, store, export.NewWriter(zap.NewNop()), zap.NewNop()), store
}

func parsedResult() *pipeline.Result {
	invoice := models.NewInvoiceRecord("serial-1")
	invoice.DocumentNumber = "INV-1"
	return &pipeline.Result{
		Invoice:    invoice,
		LineItems:  []models.LineItemRecord{models.NewLineItem("serial-1", "INV-1", 1)},
		Serial:     "serial-1",
		TextMethod: textract.MethodNative,
	}
}

func uploadRequest(t *testing.T, url, filename string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake content"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func bulkUploadRequest(t *testing.T, url string, filenames []string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range filenames {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 fake content"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestParseRequiresFile(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/parse", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseRejectsNonPDF(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/parse", "notes.txt"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported file type")
}

func TestParseUploadCompletesJob(t *testing.T) {
	s, store := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/parse", "invoice.pdf"))
	require.Equal(t, http.StatusAccepted, w.Code)

	var job jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, jobs.StatusPending, job.Status)

	require.Eventually(t, func() bool {
		got, err := store.Get(context.Background(), job.ID)
		return err == nil && got.Status == jobs.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	got, err := store.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "serial-1", got.SerialNumber)
	assert.FileExists(t, filepath.Join(s.cfg.Storage.OutputDir, got.InvoiceCSV))
	assert.FileExists(t, filepath.Join(s.cfg.Storage.OutputDir, got.ItemsCSV))
	assert.FileExists(t, filepath.Join(s.cfg.Storage.OutputDir, got.Workbook))

	// The completed artifacts are downloadable.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/download/"+got.InvoiceCSV, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Serial Number")

	// The uploaded file is cleaned up once the job settles.
	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(s.cfg.Parser.UploadDir)
		return err == nil && len(entries) == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestParseProviderOverride(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	var got pipeline.Options
	s.parserFor = func(opts pipeline.Options) (invoiceParser, error) {
		got = opts
		return &stubParser{res: parsedResult()}, nil
	}
	router := s.Router()

	req := uploadRequest(t, "/api/v1/parse?provider=openai", "invoice.pdf")
	req.Header.Set("X-LLM-API-Key", "per-request-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.NotNil(t, got.LLM)
	assert.Equal(t, "openai", got.LLM.Provider)
	assert.Equal(t, "per-request-key", got.LLM.APIKey)

	var job jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, "openai", job.Provider)
}

func TestParseUnknownProviderRejected(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/parse?provider=anthropic", "invoice.pdf"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported provider")
}

func TestBulkParseCreatesJobPerFile(t *testing.T) {
	s, store := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, bulkUploadRequest(t, "/api/v1/bulk-parse", []string{"a.pdf", "b.pdf", "notes.txt"}))
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Jobs   []jobs.Job       `json:"jobs"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "notes.txt", resp.Errors[0]["filename"])

	for _, job := range resp.Jobs {
		id := job.ID
		require.Eventually(t, func() bool {
			got, err := store.Get(context.Background(), id)
			return err == nil && got.Status == jobs.StatusCompleted
		}, 5*time.Second, 20*time.Millisecond)
	}
}

func TestBulkParseAllInvalid(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, bulkUploadRequest(t, "/api/v1/bulk-parse", []string{"a.txt"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported file type")
}

func TestParseFailureMarksJobFailed(t *testing.T) {
	s, store := testServer(t, &stubParser{err: assert.AnError}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/parse", "invoice.pdf"))
	require.Equal(t, http.StatusAccepted, w.Code)

	var job jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))

	require.Eventually(t, func() bool {
		got, err := store.Get(context.Background(), job.ID)
		return err == nil && got.Status == jobs.StatusFailed
	}, 5*time.Second, 20*time.Millisecond)
}

func TestGetJobNotFound(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListJobs(t *testing.T) {
	s, store := testServer(t, &stubParser{res: parsedResult()}, "")
	_, err := store.Create(context.Background(), "a.pdf", "google")
	require.NoError(t, err)
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a.pdf")
}

func TestAPIKeyAuth(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "secret")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Header credential.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req.Header.Set("X-API-Key", "secret")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Query credential.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs?api_key=secret", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays open.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDownloadMissingFile(t *testing.T) {
	s, _ := testServer(t, &stubParser{res: parsedResult()}, "")
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/download/nothing.csv", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
