package httpapi

import (
	"net/http"

	"autoserve/backend/internal/domain"
)

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		customers, err := a.service.ListCustomers(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, customers)
	case http.MethodPost:
		var input domain.Customer
		if err := decodeJSON(w, r, &input); err != nil {
			writeDecodeError(w, err)
			return
		}
		saved, err := a.service.UpsertCustomer(r.Context(), input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	default:
		methodNotAllowed(w)
	}
}

func (a *API) handleCustomerByID(w http.ResponseWriter, r *http.Request, segments []string) {
	customerID, _ := parseResourceID(segments)

	if subresource, ok := parseSubresource(segments); ok {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		switch subresource {
		case "nearby-centers":
			ranked, err := a.service.NearbyCenters(r.Context(), customerID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, ranked)
		case "fallback-match":
			match, err := a.service.FallbackMatch(r.Context(), customerID, r.URL.Query().Get("specialization"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, match)
		default:
			notFound(w)
		}
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	customer, err := a.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}
