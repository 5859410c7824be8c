package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
)

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	res, err := s.leads.ListLeads(r.Context(), identity(r), listFiltersFromQuery(r), s.pageFromQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	filters, err := searchFiltersFromQuery(r, s.leads.Location())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.leads.Search(r.Context(), identity(r), filters, s.pageFromQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var in core.LeadInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.leads.CreateLead(r.Context(), identity(r), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	detail, err := s.leads.GetLead(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	var patch core.LeadPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.leads.UpdateLead(r.Context(), identity(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	if err := s.leads.DeleteLead(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lead deleted successfully"})
}

type noteRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var in noteRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.leads.AddNote(r.Context(), identity(r), chi.URLParam(r, "id"), in.Note)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.leads.DashboardStats(r.Context(), identity(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", core.DefaultActivityLimit)
	if limit > 50 {
		limit = 50
	}

	activities, err := s.leads.RecentActivity(r.Context(), identity(r), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
