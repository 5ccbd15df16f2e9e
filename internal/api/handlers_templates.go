package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/diag"
	"github.com/kxiao02/pptweaver/internal/induct"
)

// handleRegisterTemplate accepts a parsed template tree and induces its
// layout schemas. Re-registering unchanged content returns the cached
// mapping without re-running induction.
func (s *Server) handleRegisterTemplate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var tpl deck.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		jsonError(w, "invalid template json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if tpl.ID == "" {
		jsonError(w, "template id is required", http.StatusBadRequest)
		return
	}
	if len(tpl.Slides) == 0 {
		jsonError(w, "template has no slides", http.StatusBadRequest)
		return
	}
	if tpl.SlideWidth <= 0 || tpl.SlideHeight <= 0 {
		jsonError(w, "template slide dimensions are required", http.StatusBadRequest)
		return
	}

	hash := deck.ContentHash(&tpl)

	var warnings []diag.Warning
	induced := false
	mapping, err := s.cache.GetOrPopulate(tpl.ID, hash, func() (*induct.Mapping, error) {
		induced = true
		m, ws, err := s.inducer.Induce(r.Context(), &tpl)
		warnings = ws
		return m, err
	})
	if err != nil {
		var indErr *induct.InductionError
		if errors.As(err, &indErr) {
			jsonError(w, indErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.log.Error("template registration failed", "template_id", tpl.ID, "error", err)
		jsonError(w, "registration failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if !induced {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"template_id":    mapping.TemplateID,
		"content_hash":   mapping.ContentHash,
		"induced":        induced,
		"schemas":        schemaSummary(mapping),
		"skipped_slides": mapping.Skipped,
		"warnings":       warnings,
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ids, err := s.cache.List()
	if err != nil {
		jsonError(w, "failed to list templates: "+err.Error(), http.StatusInternalServerError)
		return
	}

	templates := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		m, err := s.cache.Load(id)
		if err != nil {
			s.log.Warn("skipping unreadable mapping", "template_id", id, "error", err)
			continue
		}
		templates = append(templates, map[string]any{
			"template_id":  m.TemplateID,
			"content_hash": m.ContentHash,
			"schemas":      schemaSummary(m),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"templates": templates})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")
	m, err := s.cache.Load(templateID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "template not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")
	if _, err := s.cache.Load(templateID); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "template not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load template: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.cache.Invalidate(templateID); err != nil {
		jsonError(w, "failed to invalidate template: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// schemaSummary renders per-role schema counts for listing responses.
func schemaSummary(m *induct.Mapping) map[string]int {
	out := make(map[string]int, len(m.Schemas))
	for role, schemas := range m.Schemas {
		out[string(role)] = len(schemas)
	}
	return out
}
