package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/plusvalia/src/config"
	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/services"
	"github.com/username/plusvalia/src/utils"
)

type UploadHandler struct {
	portfolioService services.PortfolioService
}

func NewUploadHandler(service services.PortfolioService) *UploadHandler {
	return &UploadHandler{portfolioService: service}
}

// HandleUpload accepts a normalized statement feed as a multipart file
// upload and runs it through the processing pipeline.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	source := r.FormValue("source")
	if source == "" {
		source = "statement"
	}

	logger.L.Info("Processing upload request", "filename", fileHeader.Filename, "source", source)
	summary, err := h.portfolioService.ProcessUpload(file, source)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, fmt.Sprintf("Error parsing statement file: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrProcessingFailed):
			utils.SendJSONError(w, fmt.Sprintf("Error processing statement entries: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Upload processing failed", "error", err)
			utils.SendJSONError(w, "Internal error processing upload", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
