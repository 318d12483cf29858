// Package server exposes the analyzer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/ivlev/cardvision/internal/engine"
)

const maxMemory = 32 << 20

type Server struct {
	analyzer  *engine.Analyzer
	sem       *semaphore.Weighted
	maxUpload int64
}

// New creates a server that runs at most concurrency analyses at once.
func New(a *engine.Analyzer, concurrency int, maxUploadMB int) *Server {
	return &Server{
		analyzer:  a,
		sem:       semaphore.NewWeighted(int64(max(1, concurrency))),
		maxUpload: int64(maxUploadMB) << 20,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(allowCORS)

	r.Get("/health", s.HealthHandler)
	r.Get("/debug/templates", s.TemplatesHandler)
	for _, p := range []string{"/analyze", "/analyze/"} {
		r.Get(p, s.UsageHandler)
		r.Post(p, s.AnalyzeHandler)
	}
	return r
}

// AnalyzeHandler handles POST /analyze/ with a multipart "file" and "players"
func (s *Server) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	players, err := strconv.Atoi(r.FormValue("players"))
	if err != nil || (players != 1 && players != 2) {
		respondError(w, "players must be 1 or 2", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		respondError(w, "Request cancelled", http.StatusServiceUnavailable)
		return
	}
	defer s.sem.Release(1)

	log.Printf("[*] Analyzing %s (%d bytes, %d players)", header.Filename, len(data), players)
	res, err := s.analyzer.AnalyzeBytes(ctx, data, players)
	switch {
	case errors.Is(err, engine.ErrDecode):
		respondError(w, "Could not decode image", http.StatusBadRequest)
	case errors.Is(err, engine.ErrInvalidPlayers):
		respondError(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		log.Printf("[!] Error processing image: %v", err)
		respondError(w, fmt.Sprintf("Error processing image: %v", err), http.StatusInternalServerError)
	default:
		respondJSON(w, res, http.StatusOK)
	}
}

func (s *Server) UsageHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"message":       "This endpoint requires a POST request with an image file.",
		"usage":         "POST /analyze/ with 'file' (image) and 'players' (1 or 2) parameters",
		"test_endpoint": "/debug/templates",
	}, http.StatusOK)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok", "message": "Backend is running"}, http.StatusOK)
}

type templateInfo struct {
	Name     string `json:"name"`
	Variants int    `json:"variants"`
	Size     string `json:"size"`
}

// TemplatesHandler lists the loaded gallery
func (s *Server) TemplatesHandler(w http.ResponseWriter, r *http.Request) {
	ranks := s.analyzer.Gallery.Ranks()
	out := make([]templateInfo, len(ranks))
	for i, rk := range ranks {
		out[i] = templateInfo{Name: rk.Name, Variants: rk.Variants, Size: fmt.Sprintf("%dx%d", rk.Size[0], rk.Size[1])}
	}
	respondJSON(w, map[string]any{"templates": out, "total": s.analyzer.Gallery.Len()}, http.StatusOK)
}

// allowCORS lets browser front ends on any origin call the API
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[!] Encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
