package httpapi

import (
	"net/http"

	"autoserve/backend/internal/service"
)

func (a *API) handleServiceRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var input service.ServiceRequest
	if err := decodeJSON(w, r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}

	card, err := a.service.SubmitServiceRequest(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (a *API) handleValidateComplaint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var input struct {
		ComplaintText string `json:"complaint_text"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}

	verdict, err := a.service.ValidateComplaint(r.Context(), input.ComplaintText)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

// handleAssignServiceCenter resolves through the index. A delayed
// outcome is still a 200: the lookup succeeded, capacity did not.
func (a *API) handleAssignServiceCenter(w http.ResponseWriter, r *http.Request, customerID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	result, err := a.service.AssignServiceCenter(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleIndex(w http.ResponseWriter, r *http.Request, action string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	switch action {
	case "rebuild":
		index, err := a.service.RebuildIndex(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"k": index.K, "customers_indexed": len(index.Entries)})
	case "reload":
		if err := a.service.ReloadIndex(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	default:
		notFound(w)
	}
}
