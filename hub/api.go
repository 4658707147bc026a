package hub

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/sitekb/auth"
	"github.com/hazyhaar/sitekb/shield"
)

// contextCacheControl gives the public read a short cache window with
// stale-while-revalidate so the site renderer never stampedes the store.
const contextCacheControl = "public, max-age=60, stale-while-revalidate=300"

// Router returns the full HTTP surface of the hub.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
	r.Use(shield.MaxJSONBody(64 * 1024))
	r.Use(auth.Middleware(s.jwtSecret))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Post("/auth/login", s.handleLogin)
	r.Get("/context", s.handleGetContext)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/", s.handleCacheStatus)
		r.With(auth.RequireAdmin).Post("/", s.handlePublish)
	})

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", s.handleSubmitLead)
		r.With(auth.RequireAdmin).Get("/", s.handleListLeads)
		r.With(auth.RequireAdmin).Delete("/{id}", s.handleDeleteLead)
	})

	r.With(auth.RequireAdmin).Put("/content/{section}", s.handleUpsertContent)

	return r
}

func (s *Service) handleGetContext(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.cfg.DefaultLang()
	}

	cx, err := s.GetContext(r.Context(), lang)
	if err != nil {
		s.logger.Error("context read failed", "lang", lang, "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", contextCacheControl)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"knowledgeBase": cx.KnowledgeBase,
		"qaPairs":       cx.QAPairs,
		"systemPrompt":  cx.SystemPrompt,
		"lang":          cx.Lang,
	})
}

func (s *Service) handlePublish(w http.ResponseWriter, r *http.Request) {
	res, err := s.Publish(r.Context())
	if err != nil {
		s.logger.Error("publish failed", "error", err)
		jsonErr(w, "publish failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "content cache rebuilt",
		"cachedAt": res.PublishedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Service) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Status(r.Context())
	if err != nil {
		s.logger.Error("cache status failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"cached":    len(status) > 0,
		"languages": status,
	})
}

func (s *Service) handleSubmitLead(w http.ResponseWriter, r *http.Request) {
	var sub LeadSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		jsonErr(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.SubmitLead(r.Context(), sub)
	switch {
	case errors.Is(err, ErrInvalidEmail):
		jsonErr(w, "invalid email", http.StatusBadRequest)
		return
	case err != nil:
		s.logger.Error("lead submit failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}

	msg := "lead captured"
	if !created {
		msg = "lead already captured, updated"
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func (s *Service) handleListLeads(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	leads, err := s.ListLeads(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("lead list failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "leads": leads})
}

func (s *Service) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.DeleteLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("lead delete failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		jsonErr(w, "lead not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "lead deleted"})
}

// handleUpsertContent is the minimal admin write path into the content
// store. The body is the opaque section JSON; it is validated, never
// interpreted here.
func (s *Service) handleUpsertContent(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	lang := r.URL.Query().Get("lang")
	if lang == "" || !s.cfg.Supported(lang) {
		jsonErr(w, "unknown lang", http.StatusBadRequest)
		return
	}

	var data json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		jsonErr(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := s.store.UpsertSection(r.Context(), section, lang, data); err != nil {
		s.logger.Error("content upsert failed", "section", section, "lang", lang, "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "section saved"})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if s.adminHash == "" || !auth.CheckPassword(s.adminHash, req.Password) {
		jsonErr(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(s.jwtSecret, "admin", 12*time.Hour)
	if err != nil {
		s.logger.Error("token generation failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
