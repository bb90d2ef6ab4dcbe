package httpapi

import (
	"net/http"

	"autoserve/backend/internal/domain"
)

func (a *API) handleServiceCenters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		centers, err := a.service.ListServiceCenters(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, centers)
	case http.MethodPost:
		var input domain.ServiceCenter
		if err := decodeJSON(w, r, &input); err != nil {
			writeDecodeError(w, err)
			return
		}
		saved, err := a.service.UpsertServiceCenter(r.Context(), input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	default:
		methodNotAllowed(w)
	}
}

func (a *API) handleServiceCenterByID(w http.ResponseWriter, r *http.Request, segments []string) {
	serviceCenterID, _ := parseResourceID(segments)
	if len(segments) != 3 {
		notFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		center, err := a.service.GetServiceCenter(r.Context(), serviceCenterID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, center)
	case http.MethodPut:
		var input domain.ServiceCenter
		if err := decodeJSON(w, r, &input); err != nil {
			writeDecodeError(w, err)
			return
		}
		input.ID = serviceCenterID
		saved, err := a.service.UpsertServiceCenter(r.Context(), input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	case http.MethodDelete:
		if err := a.service.DeleteServiceCenter(r.Context(), serviceCenterID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}
