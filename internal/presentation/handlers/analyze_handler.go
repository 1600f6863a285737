package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/solscope/token-analyzer/internal/application/services"
	"github.com/solscope/token-analyzer/internal/domain/entities"
	"github.com/solscope/token-analyzer/internal/presentation/middleware"
)

// multipartMaxMemory bounds how much of an upload stays in memory
// before spilling to disk.
const multipartMaxMemory = 16 << 20

// numericParams are the request parameters that must carry numbers, in
// validation order.
var numericParams = []string{"sol_usd_price", "total_supply", "market_cap_threshold"}

// AnalyzeHandler handles swap-log analysis requests
type AnalyzeHandler struct {
	service *services.AnalysisService
	logger  *zap.Logger
	metrics *middleware.AnalyzerMetrics
}

// NewAnalyzeHandler creates a new analyze handler. metrics may be nil.
func NewAnalyzeHandler(service *services.AnalysisService, metrics *middleware.AnalyzerMetrics, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterRoutes registers analysis routes
func (h *AnalyzeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.Analyze)
}

// Analyze handles POST /api/v1/analyze. The body is either JSON with a
// base64 CSV field or a multipart upload with a raw CSV file. Parameter
// validation happens before any CSV work.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.analyzeMultipart(w, r)
		return
	}
	h.analyzeJSON(w, r)
}

func (h *AnalyzeHandler) analyzeJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to read request body.")
		return
	}

	var params map[string]json.RawMessage
	if err := json.Unmarshal(body, &params); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON format in request body.")
		return
	}

	for _, name := range append([]string{"csv_base64", "token_address"}, numericParams...) {
		if _, ok := params[name]; !ok {
			h.respondError(w, http.StatusBadRequest, "Missing required parameter: "+name)
			return
		}
	}

	var csvBase64 string
	if err := json.Unmarshal(params["csv_base64"], &csvBase64); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid type for parameter: csv_base64. Expected string.")
		return
	}
	var tokenAddress string
	if err := json.Unmarshal(params["token_address"], &tokenAddress); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid type for parameter: token_address. Expected string.")
		return
	}

	numbers := make(map[string]float64, len(numericParams))
	for _, name := range numericParams {
		var f float64
		if err := json.Unmarshal(params[name], &f); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid type for parameter: "+name+". Expected number.")
			return
		}
		numbers[name] = f
	}

	req := entities.AnalysisRequest{
		SolUsdPrice:        numbers["sol_usd_price"],
		TokenAddress:       tokenAddress,
		TotalSupply:        numbers["total_supply"],
		MarketCapThreshold: numbers["market_cap_threshold"],
	}
	if !h.checkSolUsdPrice(w, req.SolUsdPrice) {
		return
	}

	start := time.Now()
	response, err := h.service.AnalyzeBase64(r.Context(), csvBase64, req)
	h.respond(w, response, err, time.Since(start))
}

func (h *AnalyzeHandler) analyzeMultipart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid multipart form data.")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Missing required parameter: file")
		return
	}
	defer file.Close()

	rawCSV, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}

	values := r.MultipartForm.Value
	for _, name := range append([]string{"token_address"}, numericParams...) {
		if len(values[name]) == 0 {
			h.respondError(w, http.StatusBadRequest, "Missing required parameter: "+name)
			return
		}
	}

	numbers := make(map[string]float64, len(numericParams))
	for _, name := range numericParams {
		f, err := strconv.ParseFloat(values[name][0], 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid type for parameter: "+name+". Expected number.")
			return
		}
		numbers[name] = f
	}

	req := entities.AnalysisRequest{
		SolUsdPrice:        numbers["sol_usd_price"],
		TokenAddress:       values["token_address"][0],
		TotalSupply:        numbers["total_supply"],
		MarketCapThreshold: numbers["market_cap_threshold"],
	}
	if !h.checkSolUsdPrice(w, req.SolUsdPrice) {
		return
	}

	start := time.Now()
	response, err := h.service.Analyze(r.Context(), rawCSV, req)
	h.respond(w, response, err, time.Since(start))
}

func (h *AnalyzeHandler) checkSolUsdPrice(w http.ResponseWriter, price float64) bool {
	if price <= 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid value for parameter: sol_usd_price. Expected a positive number.")
		return false
	}
	return true
}

func (h *AnalyzeHandler) respond(w http.ResponseWriter, response *services.AnalysisResponse, err error, duration time.Duration) {
	if err != nil {
		var validationErr *entities.ValidationError
		if errors.As(err, &validationErr) {
			h.observe("validation_error", 0, duration)
			h.respondError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		h.logger.Error("Analysis failed", zap.Error(err))
		h.observe("error", 0, duration)
		h.respondError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
		return
	}

	h.observe("ok", len(response.Transactions), duration)
	h.respondJSON(w, http.StatusOK, response)
}

func (h *AnalyzeHandler) observe(outcome string, rows int, duration time.Duration) {
	if h.metrics == nil {
		return
	}
	h.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	h.metrics.AnalysisDuration.Observe(duration.Seconds())
	if outcome == "ok" {
		h.metrics.RowsAnalyzed.Observe(float64(rows))
	}
}

func (h *AnalyzeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *AnalyzeHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error":   "Invalid request",
		"message": message,
	})
}
