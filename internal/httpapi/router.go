package httpapi

import (
	"net/http"

	"autoserve/backend/internal/service"
)

const maxJSONBodyBytes int64 = 1 << 20

// API is the single HTTP handler: it owns the CORS policy, the optional
// metrics endpoint, and the path-segment dispatch into the service layer.
type API struct {
	service *service.Service
	cors    corsPolicy
	metrics http.Handler
}

func NewRouter(svc *service.Service, config RuntimeConfig, metrics http.Handler) http.Handler {
	return &API{
		service: svc,
		cors:    newCORSPolicy(config),
		metrics: metrics,
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w, r, a.cors)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.URL.Path == "/healthz" {
		healthz(w, r)
		return
	}
	if r.URL.Path == "/metrics" && a.metrics != nil {
		a.metrics.ServeHTTP(w, r)
		return
	}

	segments := splitPath(r.URL.Path)
	if len(segments) < 2 || segments[0] != "api" {
		notFound(w)
		return
	}

	switch {
	case isExactRoute(segments, "api", "service-request"):
		a.handleServiceRequest(w, r)
	case isExactRoute(segments, "api", "validate-complaint"):
		a.handleValidateComplaint(w, r)
	case len(segments) == 3 && segments[1] == "assign-service-center":
		a.handleAssignServiceCenter(w, r, segments[2])
	case isCollectionRoute(segments, "customers"):
		a.handleCustomers(w, r)
	case isItemRoute(segments, "customers"):
		a.handleCustomerByID(w, r, segments)
	case isCollectionRoute(segments, "service-centers"):
		a.handleServiceCenters(w, r)
	case isItemRoute(segments, "service-centers"):
		a.handleServiceCenterByID(w, r, segments)
	case isCollectionRoute(segments, "technicians"):
		a.handleTechnicians(w, r)
	case isItemRoute(segments, "technicians"):
		a.handleTechnicianByID(w, r, segments)
	case isCollectionRoute(segments, "job-cards"):
		a.handleJobCards(w, r)
	case isItemRoute(segments, "job-cards"):
		a.handleJobCardByID(w, r, segments)
	case len(segments) == 3 && segments[1] == "index":
		a.handleIndex(w, r, segments[2])
	default:
		notFound(w)
	}
}
