package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra/filesystem"
)

type Consulter interface {
	Consult(ctx context.Context, turn domain.UserTurn) (*domain.Result, error)
}

type ArtifactStore interface {
	SaveUpload(turnID, name string, r io.Reader, limit int64) (string, error)
	Open(turnID, name string) (*os.File, error)
}

type Config struct {
	Addr           string
	AuthToken      string
	MaxUploadBytes int64
	RateLimit      int
	TrustedProxies []string
	WriteTimeout   time.Duration
}

type Server struct {
	cfg         Config
	doctor      Consulter
	store       ArtifactStore
	logger      *slog.Logger
	mux         *http.ServeMux
	rateLimiter *RateLimiter

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	running  bool
}

func NewServer(cfg Config, doctor Consulter, store ArtifactStore, logger *slog.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Minute
	}

	s := &Server{
		cfg:         cfg,
		doctor:      doctor,
		store:       store,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(cfg.RateLimit, time.Minute, cfg.TrustedProxies...),
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /consult", s.rateLimiter.Middleware(s.handleConsult))
	s.mux.HandleFunc("GET /artifacts/{turn}/{file}", s.handleArtifact)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.logger)(s.mux)
}

// Start binds the listen address and serves in the background. Bind
// failures are returned to the caller.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	srv := s.server
	go func() {
		s.logger.Info("HTTP server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

// Addr reports the bound address while the server is running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.running = false
	s.listener = nil
	return nil
}

type consultResponse struct {
	TurnID         string `json:"turn_id"`
	Outcome        string `json:"outcome"`
	SpeechToText   string `json:"speech_to_text"`
	DoctorResponse string `json:"doctor_response"`
	AudioURL       string `json:"audio_url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.AuthToken == "" {
		return true
	}
	token := r.Header.Get("X-Auth-Token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	return token == s.cfg.AuthToken
}

func (s *Server) handleConsult(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.logger.Warn("unauthorized consult request", "remote_addr", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	// Two uploads plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	turn := domain.UserTurn{
		ID:   uuid.NewString(),
		Text: r.FormValue("text"),
	}

	var err error
	if turn.AudioPath, err = s.saveFormFile(r, turn.ID, "audio"); err != nil {
		s.writeUploadError(w, err)
		return
	}
	if turn.ImagePath, err = s.saveFormFile(r, turn.ID, "image"); err != nil {
		s.writeUploadError(w, err)
		return
	}

	result, err := s.doctor.Consult(r.Context(), turn)
	if err != nil {
		s.logger.Error("consultation failed", "turn_id", turn.ID, "error", err)
		writeDomainError(w, err)
		return
	}

	resp := consultResponse{
		TurnID:         result.TurnID,
		Outcome:        string(result.Outcome),
		SpeechToText:   result.SpeechText,
		DoctorResponse: result.Response,
	}
	if result.Artifact != nil {
		resp.AudioURL = fmt.Sprintf("/artifacts/%s/%s", result.TurnID, filesystem.PlaybackName)
	}

	writeJSON(w, http.StatusOK, resp)
}

// saveFormFile stores the named upload and returns its path, or "" when the
// field is absent or empty.
func (s *Server) saveFormFile(r *http.Request, turnID, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", domain.NewError(domain.KindIO, "httpapi.Upload", fmt.Errorf("reading %s: %w", field, err))
	}
	defer file.Close()

	if header.Size == 0 {
		return "", nil
	}

	return s.store.SaveUpload(turnID, field+"-"+filenameOf(header), file, s.cfg.MaxUploadBytes)
}

func filenameOf(h *multipart.FileHeader) string {
	if h.Filename == "" {
		return "upload"
	}
	return h.Filename
}

func (s *Server) writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, filesystem.ErrTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
		return
	}
	s.logger.Error("saving upload", "error", err)
	writeDomainError(w, err)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	f, err := s.store.Open(r.PathValue("turn"), r.PathValue("file"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "artifact not found", Kind: string(domain.KindNotFound)})
			return
		}
		writeDomainError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeDomainError(w, domain.NewError(domain.KindIO, "httpapi.Artifact", err))
		return
	}

	contentType := "audio/wav"
	if r.PathValue("file") == filesystem.PrimaryName {
		contentType = "audio/mpeg"
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	kind, ok := domain.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case domain.KindNotFound:
		return http.StatusBadRequest
	case domain.KindAuth, domain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	kind, _ := domain.KindOf(err)
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Kind: string(kind)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
