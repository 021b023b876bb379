package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
)

//go:embed openapi.yaml
var rawSpec []byte

// MaxUploadBytes bounds the size of an uploaded board set.
const MaxUploadBytes = 64 << 20

// Engine is the subset of *lattice.Engine the server drives.
type Engine interface {
	Registry() *registry.Registry
	ExtractTexts(ctx context.Context, source string) ([]string, error)
	LoadIntoTree(ctx context.Context, source string, opts domain.ImportOptions) (*domain.Tree, error)
	ProcessTexts(ctx context.Context, source string, table map[string]string, destination string) (string, []byte, error)
	Convert(ctx context.Context, source, destination string, opts domain.ImportOptions) (*domain.Tree, error)
}

var _ Engine = (*lattice.Engine)(nil)

// Server exposes the engine over HTTP. Uploads are staged in a scratch
// directory for the duration of one request.
type Server struct {
	Engine       Engine
	Translations ports.TranslationStore
	Import       domain.ImportOptions
	ScratchDir   string
	Logger       *slog.Logger
	Metrics      prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithTranslations enables POST /translate backed by store.
func WithTranslations(store ports.TranslationStore) Option {
	return func(s *Server) {
		s.Translations = store
	}
}

// WithImportOptions sets the options used by /convert.
func WithImportOptions(opts domain.ImportOptions) Option {
	return func(s *Server) {
		s.Import = opts
	}
}

// WithScratchDir sets where uploads are staged.
func WithScratchDir(dir string) Option {
	return func(s *Server) {
		s.ScratchDir = dir
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics serves g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Metrics = g
	}
}

// Spec parses and validates the embedded OpenAPI document.
func Spec() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		Import: domain.DefaultImportOptions(),
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/openapi.json", s.OpenAPI)
	r.Get("/health", s.Health)
	r.Get("/formats", s.Formats)
	r.Post("/extract/{format}", s.Extract)
	r.Post("/translate/{format}", s.Translate)
	r.Post("/convert/{format}/{target}", s.Convert)
	r.Post("/validate/{format}", s.Validate)
	if s.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Metrics, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OpenAPI handles GET /openapi.json.
func (s *Server) OpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := Spec()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, doc)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(lattice.Version),
	})
}

type formatInfo struct {
	Format     string   `json:"format"`
	Extensions []string `json:"extensions"`
}

// Formats handles GET /formats.
func (s *Server) Formats(w http.ResponseWriter, r *http.Request) {
	reg := s.Engine.Registry()
	out := []formatInfo{}
	for _, name := range reg.Formats() {
		conv, err := reg.ForFormat(name)
		if err != nil {
			continue
		}
		out = append(out, formatInfo{Format: name, Extensions: conv.Extensions()})
	}
	s.writeJSON(w, out)
}

// Extract handles POST /extract/{format}.
func (s *Server) Extract(w http.ResponseWriter, r *http.Request) {
	up, err := s.receive(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer up.release()

	texts, err := s.Engine.ExtractTexts(r.Context(), up.path)
	if err != nil {
		s.fail(w, err)
		return
	}
	if texts == nil {
		texts = []string{}
	}
	s.writeJSON(w, map[string][]string{"texts": texts})
}

// Translate handles POST /translate/{format}?lang=xx.
func (s *Server) Translate(w http.ResponseWriter, r *http.Request) {
	if s.Translations == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("no translation store configured"))
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing lang query parameter"))
		return
	}
	table, err := s.Translations.Load(r.Context(), lang)
	if err != nil {
		s.fail(w, err)
		return
	}

	up, err := s.receive(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer up.release()

	effective := make(map[string]string, len(table)+1)
	for k, v := range table {
		if strings.TrimSpace(v) != "" {
			effective[k] = v
		}
	}
	effective[domain.TargetLanguageKey] = lang

	dest := up.scratch.Path("translated" + up.ext)
	_, data, err := s.Engine.ProcessTexts(r.Context(), up.path, effective, dest)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeFile(w, "board_"+lang+up.ext, data)
}

// Convert handles POST /convert/{format}/{target}.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	target, err := s.Engine.Registry().ForFormat(chi.URLParam(r, "target"))
	if err != nil {
		s.fail(w, err)
		return
	}
	up, err := s.receive(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer up.release()

	ext := target.Extensions()[0]
	dest := up.scratch.Path("converted" + ext)
	tree, err := s.Engine.Convert(r.Context(), up.path, dest, s.Import)
	if err != nil {
		s.fail(w, err)
		return
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("X-Lattice-Pages", strconv.Itoa(len(tree.Pages)))
	s.writeFile(w, "board"+ext, data)
}

type reportResponse struct {
	Pages   int               `json:"pages"`
	Buttons int               `json:"buttons"`
	Valid   bool              `json:"valid"`
	Issues  []validator.Issue `json:"issues"`
}

// Validate handles POST /validate/{format}.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	up, err := s.receive(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer up.release()

	tree, err := s.Engine.LoadIntoTree(r.Context(), up.path, domain.ImportOptions{})
	if err != nil {
		s.fail(w, err)
		return
	}
	report := validator.Validate(tree)
	issues := report.Issues
	if issues == nil {
		issues = []validator.Issue{}
	}
	s.writeJSON(w, reportResponse{
		Pages:   len(tree.Pages),
		Buttons: tree.CountButtons(),
		Valid:   report.OK(),
		Issues:  issues,
	})
}

type upload struct {
	scratch *archive.Scratch
	path    string
	ext     string
}

func (u *upload) release() {
	_ = u.scratch.Release()
}

// receive stages the request body under the extension of the {format} converter.
func (s *Server) receive(w http.ResponseWriter, r *http.Request) (*upload, error) {
	conv, err := s.Engine.Registry().ForFormat(chi.URLParam(r, "format"))
	if err != nil {
		return nil, err
	}
	scratch, err := archive.AcquireScratch(s.ScratchDir, "lattice-http-")
	if err != nil {
		return nil, err
	}
	up := &upload{scratch: scratch, ext: conv.Extensions()[0]}
	up.path = scratch.Path("upload" + up.ext)

	f, err := os.Create(up.path)
	if err != nil {
		up.release()
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	_, err = io.Copy(f, http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		up.release()
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	return up, nil
}

// status maps an error to the HTTP status reported to the client.
func status(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, registry.ErrNoConverter), errors.Is(err, ports.ErrTableNotFound):
		return http.StatusNotFound
	}
	switch domain.KindOf(err) {
	case domain.KindStructural, domain.KindSchema, domain.KindCorruption, domain.KindUnresolved:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := status(err)
	if code >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "err", err)
	} else {
		s.Logger.Debug("request rejected", "status", code, "err", err)
	}
	s.writeError(w, code, err)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	body := map[string]string{"error": err.Error()}
	if kind := domain.KindOf(err); kind != 0 {
		body["kind"] = kind.String()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error("error response encode failed", "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeFile(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.Logger.Warn("response write failed", "err", err)
	}
}
