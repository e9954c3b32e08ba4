package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/plusvalia/src/config"
	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/models"
	"github.com/username/plusvalia/src/reports"
	"github.com/username/plusvalia/src/services"
)

// stubPortfolioService returns canned results so handler mapping can be
// tested without the database.
type stubPortfolioService struct {
	summary      *services.UploadSummary
	uploadErr    error
	positions    []*models.Position
	positionsErr error
	history      []reports.SalesHistoryEntry
	historyErr   error
	holdings     []*models.Purchase
	holdingsErr  error
}

func (s *stubPortfolioService) ProcessUpload(fileReader io.Reader, source string) (*services.UploadSummary, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return s.summary, nil
}

func (s *stubPortfolioService) GetPositions() ([]*models.Position, error) {
	return s.positions, s.positionsErr
}

func (s *stubPortfolioService) GetSalesHistory() ([]reports.SalesHistoryEntry, error) {
	return s.history, s.historyErr
}

func (s *stubPortfolioService) GetHoldings() ([]*models.Purchase, error) {
	return s.holdings, s.holdingsErr
}

func (s *stubPortfolioService) InvalidateCache() {}

func setUploadConfig(t *testing.T, maxBytes int64) {
	t.Helper()
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: maxBytes}
}

func multipartUpload(t *testing.T, fieldName, payload string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, "statement.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/statements", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleUploadSuccess(t *testing.T) {
	setUploadConfig(t, 1<<20)
	svc := &stubPortfolioService{summary: &services.UploadSummary{
		UploadID:         "upload-1",
		EntriesParsed:    4,
		OperationsStored: 3,
		Instruments:      2,
	}}

	w := httptest.NewRecorder()
	NewUploadHandler(svc).HandleUpload(w, multipartUpload(t, "file", `[]`))

	require.Equal(t, http.StatusOK, w.Code)

	var summary services.UploadSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "upload-1", summary.UploadID)
	assert.Equal(t, 3, summary.OperationsStored)
}

func TestHandleUploadErrorStatusMapping(t *testing.T) {
	setUploadConfig(t, 1<<20)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"parsing failure", fmt.Errorf("%w: malformed feed", services.ErrParsingFailed), http.StatusBadRequest},
		{"processing failure", fmt.Errorf("%w: statement entry 0", services.ErrProcessingFailed), http.StatusBadRequest},
		{"storage failure", errors.New("database is locked"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubPortfolioService{uploadErr: tc.err}
			w := httptest.NewRecorder()
			NewUploadHandler(svc).HandleUpload(w, multipartUpload(t, "file", `[]`))
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestHandleUploadRejectsOversizedFile(t *testing.T) {
	setUploadConfig(t, 16)

	payload := bytes.Repeat([]byte("x"), 100)
	w := httptest.NewRecorder()
	NewUploadHandler(&stubPortfolioService{}).HandleUpload(w, multipartUpload(t, "file", string(payload)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUploadRequiresFileField(t *testing.T) {
	setUploadConfig(t, 1<<20)

	w := httptest.NewRecorder()
	NewUploadHandler(&stubPortfolioService{}).HandleUpload(w, multipartUpload(t, "attachment", `[]`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
