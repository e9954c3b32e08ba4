package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/models"
	"github.com/username/plusvalia/src/reports"
	"github.com/username/plusvalia/src/services"
	"github.com/username/plusvalia/src/utils"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
	exportService    *services.ExportService
	reportWriter     io.Writer // per-instrument console report destination, nil to disable
}

func NewPortfolioHandler(portfolioService services.PortfolioService, exportService *services.ExportService, reportWriter io.Writer) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		exportService:    exportService,
		reportWriter:     reportWriter,
	}
}

// HandleGetPortfolio returns the full per-instrument report tree.
func (h *PortfolioHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	positions, err := h.portfolioService.GetPositions()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing portfolio: %v", err), http.StatusInternalServerError)
		return
	}
	if positions == nil {
		positions = []*models.Position{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(positions)
}

// HandleGetSalesHistory returns all closed sales across instruments, most
// recent first.
func (h *PortfolioHandler) HandleGetSalesHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.portfolioService.GetSalesHistory()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing sales history: %v", err), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []reports.SalesHistoryEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

// HandleGetHoldings returns the open lots of every instrument.
func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.GetHoldings()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing holdings: %v", err), http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []*models.Purchase{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(holdings)
}

// HandleExport writes the portfolio and sales history reports to the output
// directory and returns the file paths.
func (h *PortfolioHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	positions, err := h.portfolioService.GetPositions()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing portfolio: %v", err), http.StatusInternalServerError)
		return
	}
	history, err := h.portfolioService.GetSalesHistory()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing sales history: %v", err), http.StatusInternalServerError)
		return
	}

	portfolioPath, err := h.exportService.ExportPortfolio(positions)
	if err != nil {
		logger.L.Error("Portfolio export failed", "error", err)
		utils.SendJSONError(w, "Error writing portfolio export", http.StatusInternalServerError)
		return
	}
	historyPath, err := h.exportService.ExportSalesHistory(history)
	if err != nil {
		logger.L.Error("Sales history export failed", "error", err)
		utils.SendJSONError(w, "Error writing sales history export", http.StatusInternalServerError)
		return
	}

	if h.reportWriter != nil {
		console := reports.NewConsoleWriter(h.reportWriter)
		for _, position := range positions {
			console.WritePosition(position)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"portfolio_export":     portfolioPath,
		"sales_history_export": historyPath,
	})
}
