package service

import (
	"context"
	"fmt"

	"autoserve/backend/internal/domain"
)

// ValidateCompletion scores a COMPLETED job card against its technician
// report and stores the resulting validation report. The card moves to
// VALIDATED regardless of the score; a low score or billing risk flags
// the card for human review rather than blocking the flow.
func (s *Service) ValidateCompletion(ctx context.Context, jobCardID string) (domain.ValidationReport, error) {
	card, err := s.repo.GetJobCard(ctx, jobCardID)
	if err != nil {
		return domain.ValidationReport{}, err
	}
	if err := domain.ValidateTransition(card.Status, domain.StatusValidated); err != nil {
		return domain.ValidationReport{}, err
	}
	report, err := s.repo.GetTechnicianReport(ctx, card.ID)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	imageVerdict, err := s.oracle.ValidateImages(ctx, report.BeforeImages, report.AfterImages)
	if err != nil {
		return domain.ValidationReport{}, fmt.Errorf("validate images: %w", err)
	}
	audioVerdict, err := s.oracle.ValidateAudio(ctx, report.AudioSample)
	if err != nil {
		return domain.ValidationReport{}, fmt.Errorf("validate audio: %w", err)
	}

	validation := domain.EvaluateCompletion(domain.ValidationInput{
		RequiredProcedures:  card.Procedures,
		PerformedProcedures: report.ProceduresPerformed,
		RequiredTools:       card.RequiredTools,
		UsedTools:           report.ToolsUsed,
		ImageVerdict:        imageVerdict,
		AudioVerdict:        audioVerdict,
	})
	validation.JobCardID = card.ID

	saved, err := s.repo.CreateValidationReport(ctx, validation)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	card.Status = domain.StatusValidated
	if _, err := s.repo.UpdateJobCard(ctx, card); err != nil {
		return domain.ValidationReport{}, err
	}

	approved := "false"
	if saved.ConfidenceScore >= domain.ConfidenceApprovalThreshold && !saved.BillingRisk {
		approved = "true"
	}
	s.telemetry.Record("validation.completed", map[string]string{
		"job_card_id": card.ID,
		"approved":    approved,
	})
	return saved, nil
}

func (s *Service) GetValidationReport(ctx context.Context, jobCardID string) (domain.ValidationReport, error) {
	return s.repo.GetValidationReport(ctx, jobCardID)
}
