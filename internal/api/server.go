// Package api exposes the token creation pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"spl-token-forge/internal/image"
	"spl-token-forge/internal/minting"
	"spl-token-forge/internal/observability"
	"spl-token-forge/internal/preview"
	"spl-token-forge/internal/token"
	"spl-token-forge/internal/wallet"
)

// maxRequestBytes bounds a multipart submission: the image limit plus
// headroom for the text fields.
const maxRequestBytes = image.MaxUploadBytes + 64*1024

// Server handles token creation requests. A single wallet handle is shared
// across requests and creation is single-flight: concurrent submissions
// beyond the first are rejected, not queued.
type Server struct {
	connector *wallet.Connector
	pipeline  *minting.Pipeline
	logger    *log.Logger

	mu       sync.Mutex
	handle   *wallet.Handle
	creating bool
	started  time.Time
	created  int
	lastMint string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a Server. The wallet is connected lazily on the first
// submission so the process can start before a keypair exists.
func NewServer(connector *wallet.Connector, pipeline *minting.Pipeline, opts ...ServerOption) *Server {
	s := &Server{
		connector: connector,
		pipeline:  pipeline,
		logger:    log.New(os.Stdout, "[api] ", log.LstdFlags),
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP mux for the server.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/tokens", s.handleCreate)
	mux.HandleFunc("POST /api/tokens/preview", s.handlePreview)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createResponse is the success payload for a token creation.
type createResponse struct {
	RequestID      string `json:"requestId"`
	Mint           string `json:"mint"`
	HoldingAccount string `json:"holdingAccount"`
	Signature      string `json:"signature"`
}

// errorResponse is the failure payload. FieldErrors is set only for
// validation failures.
type errorResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	params, ferrs, err := s.parseSubmission(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if ferrs != nil {
		for field := range ferrs {
			observability.RecordValidationFailure(field)
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       "validation failed",
			FieldErrors: ferrs,
		})
		return
	}

	// Single-flight: one creation at a time.
	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, errorResponse{Error: "a token creation is already in progress"})
		return
	}
	s.creating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.creating = false
		s.mu.Unlock()
	}()

	handle, err := s.connectedHandle(r)
	if err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.pipeline.CreateToken(r.Context(), handle, params)
	if err != nil {
		s.logger.Printf("token creation failed: %v", err)
		status := http.StatusBadGateway
		if errors.Is(err, minting.ErrWalletNotConnected) {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	s.created++
	s.lastMint = result.Mint
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, createResponse{
		RequestID:      result.RequestID,
		Mint:           result.Mint,
		HoldingAccount: result.HoldingAccount,
		Signature:      result.Signature,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	raw, resolver, err := s.parseForm(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, preview.FromRaw(raw, resolver.Preview()))
}

// statusResponse is the JSON response for /status.
type statusResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Wallet        string `json:"wallet,omitempty"`
	Creating      bool   `json:"creating"`
	TokensCreated int    `json:"tokens_created"`
	LastMint      string `json:"last_mint,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := statusResponse{
		Status:        "running",
		Uptime:        time.Since(s.started).String(),
		Creating:      s.creating,
		TokensCreated: s.created,
		LastMint:      s.lastMint,
	}
	if s.handle != nil {
		resp.Wallet = s.handle.Address()
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseForm reads the multipart submission into raw form state and an image
// resolver holding the chosen source.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (token.RawInput, *image.Resolver, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
		return token.RawInput{}, nil, errors.New("request must be a multipart form within the size limit")
	}

	raw := token.RawInput{
		Name:        r.FormValue("name"),
		Symbol:      r.FormValue("symbol"),
		Decimals:    r.FormValue("decimals"),
		TotalSupply: r.FormValue("totalSupply"),
		Description: r.FormValue("description"),
		ImageURL:    r.FormValue("imageUrl"),
	}

	resolver := image.NewResolver()

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if raw.ImageURL != "" {
			return raw, nil, errors.New("provide either an image upload or an image URL, not both")
		}
		data, readErr := readLimited(file)
		if readErr != nil {
			return raw, nil, readErr
		}
		if _, setErr := resolver.SetUpload(data); setErr != nil {
			return raw, nil, setErr
		}
	case errors.Is(err, http.ErrMissingFile):
		if raw.ImageURL != "" {
			if _, setErr := resolver.SetURL(raw.ImageURL); setErr != nil {
				return raw, nil, setErr
			}
		}
	default:
		return raw, nil, errors.New("malformed image upload")
	}

	return raw, resolver, nil
}

// parseSubmission parses and validates a creation request. The image source
// is validated for format and exclusivity but the token itself carries no
// on-chain image; the upload only ever feeds previews.
func (s *Server) parseSubmission(w http.ResponseWriter, r *http.Request) (*token.Params, token.FieldErrors, error) {
	raw, _, err := s.parseForm(w, r)
	if err != nil {
		return nil, nil, err
	}

	params, ferrs := token.ParseAndValidate(raw)
	if ferrs != nil {
		return nil, ferrs, nil
	}
	return params, nil, nil
}

// connectedHandle returns the shared wallet handle, connecting on first use.
func (s *Server) connectedHandle(r *http.Request) (*wallet.Handle, error) {
	s.mu.Lock()
	if s.handle != nil {
		h := s.handle
		s.mu.Unlock()
		return h, nil
	}
	s.mu.Unlock()

	handle, err := s.connector.Connect(r.Context())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()
	return handle, nil
}

func readLimited(file io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, image.MaxUploadBytes+1))
	if err != nil {
		return nil, errors.New("malformed image upload")
	}
	if len(data) > image.MaxUploadBytes {
		return nil, image.ErrTooLarge
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
