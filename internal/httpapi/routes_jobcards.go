package httpapi

import (
	"net/http"

	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/service"
)

func (a *API) handleJobCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	cards, err := a.service.ListJobCards(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (a *API) handleJobCardByID(w http.ResponseWriter, r *http.Request, segments []string) {
	jobCardID, _ := parseResourceID(segments)

	subresource, ok := parseSubresource(segments)
	if !ok {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		card, err := a.service.GetJobCard(r.Context(), jobCardID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
		return
	}

	switch subresource {
	case "generate":
		a.handleJobCardGenerate(w, r, jobCardID)
	case "assign":
		a.handleJobCardAssign(w, r, jobCardID)
	case "start":
		a.handleJobCardStart(w, r, jobCardID)
	case "technician-report":
		a.handleJobCardTechnicianReport(w, r, jobCardID)
	case "validate":
		a.handleJobCardValidate(w, r, jobCardID)
	case "validation-report":
		a.handleJobCardValidationReport(w, r, jobCardID)
	case "generate-invoice":
		a.handleJobCardGenerateInvoice(w, r, jobCardID)
	case "invoice":
		a.handleJobCardInvoice(w, r, jobCardID)
	case "audit-report":
		a.handleJobCardAuditReport(w, r, jobCardID)
	default:
		notFound(w)
	}
}

func (a *API) handleJobCardGenerate(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	card, err := a.service.GenerateJobCard(r.Context(), jobCardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// handleJobCardAssign returns the assignment outcome alongside the card;
// a delayed outcome leaves the card unchanged and is still a 200.
func (a *API) handleJobCardAssign(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	card, result, err := a.service.AssignJobCard(r.Context(), jobCardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_card":   card,
		"assignment": result,
	})
}

func (a *API) handleJobCardStart(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	card, err := a.service.StartJobCard(r.Context(), jobCardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (a *API) handleJobCardTechnicianReport(w http.ResponseWriter, r *http.Request, jobCardID string) {
	switch r.Method {
	case http.MethodPost:
		var input service.TechnicianReportInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeDecodeError(w, err)
			return
		}
		report, err := a.service.SubmitTechnicianReport(r.Context(), jobCardID, input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	case http.MethodGet:
		report, err := a.service.GetTechnicianReport(r.Context(), jobCardID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	default:
		methodNotAllowed(w)
	}
}

func (a *API) handleJobCardValidate(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	report, err := a.service.ValidateCompletion(r.Context(), jobCardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse(report))
}

func (a *API) handleJobCardValidationReport(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	report, err := a.service.GetValidationReport(r.Context(), jobCardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse(report))
}

func validationResponse(report domain.ValidationReport) map[string]any {
	return map[string]any{
		"validation_report": report,
		"approved":          report.ConfidenceScore >= domain.ConfidenceApprovalThreshold && !report.BillingRisk,
	}
}

func (a *API) handleJobCardGenerateInvoice(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var input service.InvoiceRequest
	if err := decodeJSON(w, r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	invoice, err := a.service.GenerateInvoice(r.Context(), jobCardID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

func (a *API) handleJobCardInvoice(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	invoice, err := a.service.GetInvoice(r.Context(), jobCardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (a *API) handleJobCardAuditReport(w http.ResponseWriter, r *http.Request, jobCardID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	audit, err := a.service.BuildAuditReport(r.Context(), jobCardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}
