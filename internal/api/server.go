// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/urban-guardian/urban-guardian-api/internal/cache"
	"github.com/urban-guardian/urban-guardian-api/internal/pipeline"
)

const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	maxUploadBytes int64
	outputPath     string
	jobs           cache.Store[*pipeline.Result]
}

func NewServer(maxUploadBytes int64, outputPath string) *Server {
	return &Server{
		maxUploadBytes: maxUploadBytes,
		outputPath:     outputPath,
		jobs:           cache.NewFileStore[*pipeline.Result](outputPath, "jobs"),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// Router wires all endpoints.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)
	router.HandleFunc("/", s.root).Methods(http.MethodGet)
	router.HandleFunc("/api/health", s.health).Methods(http.MethodGet)
	router.HandleFunc("/api/legend", s.legend).Methods(http.MethodGet)
	router.HandleFunc("/api/analyze", s.analyze).Methods(http.MethodPost)
	router.HandleFunc("/api/jobs/{id}", s.job).Methods(http.MethodGet)
	return router
}

// Run blocks serving HTTP on the given port.
func (s *Server) Run(port int) error {
	router := s.Router()
	addr := ":" + strconv.Itoa(port)
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, router)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
