package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"PaperCast/internal/ports"
	"PaperCast/internal/usecase"
)

// ProcessRequest is the JSON body of POST /process.
type ProcessRequest struct {
	UserInfo      string `json:"user_info"`
	MaxArticles   int    `json:"max_articles"`
	NewOnly       bool   `json:"new_only"`
	SourceURL     string `json:"source_url,omitempty"`
	ModelEndpoint string `json:"model_endpoint,omitempty"`
	ModelName     string `json:"model_name,omitempty"`
	LLMLevel      string `json:"llm_level,omitempty"`
}

// Handler adapts HTTP requests to pipeline invocations.
type Handler struct {
	pipeline  *usecase.Pipeline
	synth     ports.Synthesizer
	outputDir string
	logger    *slog.Logger
}

// NewHandler wires the pipeline and the synthesizer. Generated audio lands
// inside outputDir.
func NewHandler(pipeline *usecase.Pipeline, synth ports.Synthesizer, outputDir string, logger *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, synth: synth, outputDir: outputDir, logger: logger}
}

// RegisterRoutes mounts all endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/process", h.Process)
	r.Get("/health", h.Health)
}

// Process runs the pipeline synchronously and returns the generated MP3 as
// an attachment. 400 without user_info; 502 when the listing cannot be
// obtained; 500 when nothing was generated or synthesis failed.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserInfo) == "" {
		writeError(w, http.StatusBadRequest, "user_info not provided")
		return
	}
	if req.MaxArticles <= 0 {
		req.MaxArticles = 5
	}

	report, err := h.pipeline.Process(r.Context(), usecase.Request{
		UserInfo:      req.UserInfo,
		MaxArticles:   req.MaxArticles,
		NewOnly:       req.NewOnly,
		SourceURL:     req.SourceURL,
		ModelEndpoint: req.ModelEndpoint,
		ModelName:     req.ModelName,
		Tier:          req.LLMLevel,
	})
	if err != nil {
		h.logger.Error("pipeline run failed", "error", err)
		writeError(w, http.StatusBadGateway, "pipeline failed: "+err.Error())
		return
	}
	if strings.TrimSpace(report) == "" {
		writeError(w, http.StatusInternalServerError, "no summaries generated")
		return
	}

	output := filepath.Join(h.outputDir, "final_output.mp3")
	if err := h.synth.Synthesize(r.Context(), report, output); err != nil {
		h.logger.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "speech synthesis failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="final_output.mp3"`)
	http.ServeFile(w, r, output)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
