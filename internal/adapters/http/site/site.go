// Package site serves the operator form: field entry, the predict action and
// the rendered result.
package site

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/okian/r744/internal/adapters/http/api"
	"github.com/okian/r744/internal/domain/features"
	"github.com/okian/r744/internal/domain/inference"
	"github.com/okian/r744/internal/domain/session"
	"github.com/okian/r744/pkg/logger"
)

const (
	// CookieName carries the operator session id.
	CookieName = "r744_session"

	pageTitle     = "R-744 HVAC Intelligent Supervisory Control"
	maxFormBytes  = 16 << 10
	bannerHeading = "Optimal Gas Cooler Operating Pressure:"
)

// Dependencies required by the site handlers.
type Dependencies interface {
	// Form returns the current field values of a session.
	Form(ctx context.Context, sessionID string) session.State
	// Predict stores rec for the session and returns its prediction.
	Predict(ctx context.Context, sessionID string, rec features.Record) (inference.Result, error)
}

// Handler renders the form page.
type Handler struct {
	deps         Dependencies
	logger       logger.Logger
	cookieSecure bool
	imagePath    string
	image        []byte
	imageType    string
}

// Option configures a Handler.
type Option func(*Handler)

// WithImagePath sets the decorative header image file.
func WithImagePath(path string) Option {
	return func(h *Handler) { h.imagePath = path }
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) { h.cookieSecure = secure }
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler builds the form handler. The header image is read once here; a
// missing image only drops it from the page.
func NewHandler(ctx context.Context, deps Dependencies, opts ...Option) *Handler {
	h := &Handler{deps: deps}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get()
	}

	if h.imagePath != "" {
		img, err := os.ReadFile(h.imagePath)
		if err != nil {
			h.logger.Warn(ctx, "header image unavailable", logger.String("path", h.imagePath), logger.Error(err))
		} else {
			h.image = img
			h.imageType = mime.TypeByExtension(filepath.Ext(h.imagePath))
			if h.imageType == "" {
				h.imageType = http.DetectContentType(img)
			}
		}
	}
	return h
}

// Register attaches the form routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/", api.MetricsMiddleware(h.HandleIndex, "index"))
	mux.HandleFunc("/predict", api.MetricsMiddleware(h.HandlePredict, "predict"))
	mux.HandleFunc("/media/hero", h.HandleImage)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// pageView is the template model for the whole page.
type pageView struct {
	Title    string
	HasImage bool
	Fields   []fieldView
	Result   *resultView
	Error    string
}

type resultView struct {
	Heading  string
	Pressure string
	Warning  string
}

// HandleIndex handles GET / and shows the form with the session's values.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := h.sessionID(w, r)
	st := h.deps.Form(r.Context(), id)
	h.render(w, r, http.StatusOK, h.page(recordViews(st.Record)))
}

// HandlePredict handles POST /predict: read the five fields, run the
// pipeline, render the banner and the optional advisory.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "site.predict"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	id := h.sessionID(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.Warn(ctx, "unreadable form", logger.String("op", op), logger.Error(err))
		page := h.page(recordViews(h.deps.Form(ctx, id).Record))
		page.Error = "The form could not be read."
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	rec, views, err := parseRecord(r.PostForm)
	if err != nil {
		h.logger.Debug(ctx, "rejected form input", logger.String("op", op), logger.Error(err))
		page := h.page(views)
		page.Error = "Every field needs a numeric value."
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	res, err := h.deps.Predict(ctx, id, rec)
	if err != nil {
		page := h.page(views)
		page.Error = "Prediction failed: " + err.Error()
		h.render(w, r, http.StatusInternalServerError, page)
		return
	}

	page := h.page(views)
	page.Result = &resultView{
		Heading:  bannerHeading,
		Pressure: res.Formatted(),
		Warning:  res.Warning(),
	}
	h.render(w, r, http.StatusOK, page)
}

// HandleImage serves the decorative header image.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if h.image == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", h.imageType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(h.image)
}

func (h *Handler) page(fields []fieldView) pageView {
	return pageView{
		Title:    pageTitle,
		HasImage: h.image != nil,
		Fields:   fields,
	}
}

// sessionID returns the caller's session id, issuing a new cookie when the
// request has none or an unrecognised one.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && session.ValidID(c.Value) {
		return c.Value
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.Error(r.Context(), "render page", logger.Error(errors.Join(ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
