// Package server exposes a sketch.Pipeline over HTTP: one-shot prediction
// from a canonical grid or an uploaded image, and a WebSocket endpoint for
// live drawing sessions.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	_ "image/jpeg" // register JPEG decoding for uploads
	_ "image/png"  // register PNG decoding for uploads and frames
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	sketch "github.com/gogpu/sketch"
	"github.com/gogpu/sketch/grid"
)

const (
	// DefaultMaxUpload is the byte limit of an uploaded image or a live
	// frame.
	DefaultMaxUpload = 10 << 20

	// DefaultMaxPixels is the largest decoded image accepted, in pixels.
	DefaultMaxPixels = 4096 * 4096
)

// ErrImageTooLarge is returned for images whose declared dimensions exceed
// the pixel limit. They are rejected before decoding.
var ErrImageTooLarge = errors.New("server: image dimensions too large")

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFrame sets the coalescing interval of live sessions.
func WithFrame(d time.Duration) Option {
	return func(s *Server) {
		s.frame = d
	}
}

// WithMaxUpload sets the multipart size limit in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithMaxPixels sets the largest accepted image area in pixels.
func WithMaxPixels(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPixels = n
		}
	}
}

// Server serves predictions. It is safe for concurrent use.
type Server struct {
	pipeline  *sketch.Pipeline
	log       *slog.Logger
	frame     time.Duration
	maxUpload int64
	maxPixels int
	upgrader  websocket.Upgrader
}

// New creates a Server around p.
func New(p *sketch.Pipeline, opts ...Option) *Server {
	s := &Server{
		pipeline:  p,
		log:       sketch.Logger(),
		frame:     sketch.DefaultFrame,
		maxUpload: DefaultMaxUpload,
		maxPixels: DefaultMaxPixels,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed, CORS-enabled handler:
//
//	GET  /health         liveness
//	POST /predict        JSON canonical grid
//	POST /predict/image  multipart upload, field "image" (PNG or JPEG)
//	GET  /ws             live session, binary PNG frames in, JSON out
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /predict", s.predict)
	mux.HandleFunc("POST /predict/image", s.predictImage)
	mux.HandleFunc("GET /ws", s.live)
	return s.logRequests(cors(mux))
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("server: request",
			"remote", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	n := s.pipeline.CanonicalSize()
	if len(req.Image) != n*n {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("expected %d values, got %d", n*n, len(req.Image)))
		return
	}
	res, err := s.pipeline.RunGrid(grid.FromValues(n, n, req.Image))
	if err != nil {
		s.log.Error("server: predict", "err", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, newPredictResponse(res))
}

func (s *Server) predictImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, `no image provided, use "image" as the form field name`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	img, format, err := s.decode(data)
	if errors.Is(err, ErrImageTooLarge) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image, supported: PNG, JPEG")
		return
	}
	s.log.Debug("server: upload",
		"file", header.Filename,
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())

	res, err := s.pipeline.Run(grid.FromImage(img))
	if err != nil {
		s.log.Error("server: predict image", "err", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, newPredictResponse(res))
}

// decode reads the image header first and refuses images above the pixel
// limit, so a small compressed file cannot claim a huge raster.
func (s *Server) decode(data []byte) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > s.maxPixels/cfg.Height {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels",
			ErrImageTooLarge, cfg.Width, cfg.Height, s.maxPixels)
	}
	return image.Decode(bytes.NewReader(data))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
