package service

import (
	"context"
	"errors"

	"autoserve/backend/internal/domain"
)

// InvoiceRequest carries the billable extras on top of the recorded
// labor. Zero rates fall back to the configured defaults.
type InvoiceRequest struct {
	LaborRate         float64 `json:"labor_rate"`
	PartsCost         float64 `json:"parts_cost"`
	AdditionalCharges float64 `json:"additional_charges"`
	Discount          float64 `json:"discount"`
	TaxRate           float64 `json:"tax_rate"`
	Notes             string  `json:"notes"`
}

// GenerateInvoice bills a VALIDATED job card. Labor hours come from the
// technician report, falling back to the estimate when the report did
// not record them.
func (s *Service) GenerateInvoice(ctx context.Context, jobCardID string, request InvoiceRequest) (domain.Invoice, error) {
	if request.PartsCost < 0 || request.AdditionalCharges < 0 || request.Discount < 0 {
		return domain.Invoice{}, errors.Join(domain.ErrValidation, errors.New("invoice amounts must not be negative"))
	}

	card, err := s.repo.GetJobCard(ctx, jobCardID)
	if err != nil {
		return domain.Invoice{}, err
	}
	// Regenerating for an already invoiced card returns the stored
	// invoice; billing happens once.
	if card.Status == domain.StatusInvoiced {
		return s.repo.GetInvoice(ctx, card.ID)
	}
	if err := domain.ValidateTransition(card.Status, domain.StatusInvoiced); err != nil {
		return domain.Invoice{}, err
	}

	laborHours := card.EstimatedLaborHours
	if report, reportErr := s.repo.GetTechnicianReport(ctx, card.ID); reportErr == nil && report.LaborHours > 0 {
		laborHours = report.LaborHours
	} else if reportErr != nil && !errors.Is(reportErr, domain.ErrNotFound) {
		return domain.Invoice{}, reportErr
	}

	invoice := domain.ComputeInvoice(domain.InvoiceInput{
		LaborHours:        laborHours,
		LaborRate:         request.LaborRate,
		PartsCost:         request.PartsCost,
		AdditionalCharges: request.AdditionalCharges,
		Discount:          request.Discount,
		TaxRate:           request.TaxRate,
		Notes:             request.Notes,
	})
	invoice.JobCardID = card.ID

	saved, err := s.repo.CreateInvoice(ctx, invoice)
	if err != nil {
		return domain.Invoice{}, err
	}

	card.Status = domain.StatusInvoiced
	if _, err := s.repo.UpdateJobCard(ctx, card); err != nil {
		return domain.Invoice{}, err
	}

	s.telemetry.Record("invoice.generated", map[string]string{"job_card_id": card.ID})
	return saved, nil
}

func (s *Service) GetInvoice(ctx context.Context, jobCardID string) (domain.Invoice, error) {
	return s.repo.GetInvoice(ctx, jobCardID)
}
