package httpapi

import (
	"net/http"

	"autoserve/backend/internal/domain"
)

func (a *API) handleTechnicians(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		technicians, err := a.service.ListTechnicians(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, technicians)
	case http.MethodPost:
		var input domain.Technician
		if err := decodeJSON(w, r, &input); err != nil {
			writeDecodeError(w, err)
			return
		}
		saved, err := a.service.UpsertTechnician(r.Context(), input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	default:
		methodNotAllowed(w)
	}
}

func (a *API) handleTechnicianByID(w http.ResponseWriter, r *http.Request, segments []string) {
	technicianID, _ := parseResourceID(segments)
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	if subresource, ok := parseSubresource(segments); ok {
		if subresource != "jobs" {
			notFound(w)
			return
		}
		cards, err := a.service.TechnicianJobs(r.Context(), technicianID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
		return
	}

	technician, err := a.service.GetTechnician(r.Context(), technicianID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, technician)
}
