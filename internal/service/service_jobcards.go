package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"autoserve/backend/internal/domain"
)

func (s *Service) ListJobCards(ctx context.Context) ([]domain.JobCard, error) {
	return s.repo.ListJobCards(ctx)
}

func (s *Service) GetJobCard(ctx context.Context, jobCardID string) (domain.JobCard, error) {
	return s.repo.GetJobCard(ctx, jobCardID)
}

// GenerateJobCard asks the oracle to draft repair details for a CREATED
// job card and moves it to GENERATED. The stored estimate is the middle
// of the oracle's cost range.
func (s *Service) GenerateJobCard(ctx context.Context, jobCardID string) (domain.JobCard, error) {
	card, err := s.repo.GetJobCard(ctx, jobCardID)
	if err != nil {
		return domain.JobCard{}, err
	}
	if err := domain.ValidateTransition(card.Status, domain.StatusGenerated); err != nil {
		return domain.JobCard{}, err
	}
	customer, err := s.repo.GetCustomer(ctx, card.CustomerID)
	if err != nil {
		return domain.JobCard{}, err
	}

	draft, err := s.oracle.GenerateJobCard(ctx, card.ComplaintText, customer.Vehicle)
	if err != nil {
		return domain.JobCard{}, fmt.Errorf("generate job card: %w", err)
	}

	card.Issue = draft.Issue
	card.Severity = draft.Severity
	card.RepairType = draft.RepairType
	card.Procedures = draft.Procedures
	card.RequiredTools = draft.Tools
	card.EstimatedLaborHours = draft.LaborHours
	card.EstimatedCost = (draft.EstimatedCostMin + draft.EstimatedCostMax) / 2
	card.Status = domain.StatusGenerated

	updated, err := s.repo.UpdateJobCard(ctx, card)
	if err != nil {
		return domain.JobCard{}, err
	}

	s.telemetry.Record("jobcard.generated", map[string]string{"job_card_id": updated.ID, "repair_type": updated.RepairType})
	return updated, nil
}

// AssignJobCard resolves a service center through the precomputed index
// and, when one is found, picks the least-loaded available technician
// there. A delayed assignment leaves the card GENERATED; the result
// carries the retry message.
func (s *Service) AssignJobCard(ctx context.Context, jobCardID string) (domain.JobCard, domain.AssignmentResult, error) {
	card, err := s.repo.GetJobCard(ctx, jobCardID)
	if err != nil {
		return domain.JobCard{}, domain.AssignmentResult{}, err
	}
	if err := domain.ValidateTransition(card.Status, domain.StatusAssigned); err != nil {
		return domain.JobCard{}, domain.AssignmentResult{}, err
	}

	result, err := s.index.Assign(ctx, card.CustomerID)
	if err != nil {
		return domain.JobCard{}, domain.AssignmentResult{}, err
	}
	if result.Status != domain.AssignmentStatusAssigned {
		return card, result, nil
	}

	card.AssignedServiceCenterID = result.ServiceCenterID
	card.Status = domain.StatusAssigned

	if technician, ok, pickErr := s.pickTechnician(ctx, result.ServiceCenterID, card.RepairType); pickErr != nil {
		return domain.JobCard{}, domain.AssignmentResult{}, pickErr
	} else if ok {
		card.AssignedTechnicianID = technician.ID
		technician.CurrentWorkload++
		if !technician.IsAvailable() {
			technician.AvailabilityStatus = domain.TechnicianBusy
		}
		if _, err := s.repo.UpsertTechnician(ctx, technician); err != nil {
			return domain.JobCard{}, domain.AssignmentResult{}, err
		}
	}

	updated, err := s.repo.UpdateJobCard(ctx, card)
	if err != nil {
		return domain.JobCard{}, domain.AssignmentResult{}, err
	}

	s.telemetry.Record("jobcard.assigned", map[string]string{
		"job_card_id":       updated.ID,
		"service_center_id": updated.AssignedServiceCenterID,
	})
	return updated, result, nil
}

// pickTechnician chooses the least-loaded available technician at a
// center, preferring those whose specializations match the repair type.
// Centers without technician records yield no pick; the job card is still
// assigned to the center.
func (s *Service) pickTechnician(ctx context.Context, serviceCenterID, repairType string) (domain.Technician, bool, error) {
	technicians, err := s.repo.ListTechniciansByCenter(ctx, serviceCenterID)
	if err != nil {
		return domain.Technician{}, false, err
	}

	available := make([]domain.Technician, 0, len(technicians))
	for _, technician := range technicians {
		if technician.IsAvailable() {
			available = append(available, technician)
		}
	}
	if len(available) == 0 {
		return domain.Technician{}, false, nil
	}

	specialized := make([]domain.Technician, 0, len(available))
	for _, technician := range available {
		if technician.HasSpecialization(repairType) {
			specialized = append(specialized, technician)
		}
	}
	pool := available
	if len(specialized) > 0 {
		pool = specialized
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].CurrentWorkload < pool[j].CurrentWorkload })
	return pool[0], true, nil
}

// StartJobCard moves an ASSIGNED card to IN_PROGRESS.
func (s *Service) StartJobCard(ctx context.Context, jobCardID string) (domain.JobCard, error) {
	card, err := s.repo.GetJobCard(ctx, jobCardID)
	if err != nil {
		return domain.JobCard{}, err
	}
	if err := domain.ValidateTransition(card.Status, domain.StatusInProgress); err != nil {
		return domain.JobCard{}, err
	}
	card.Status = domain.StatusInProgress

	updated, err := s.repo.UpdateJobCard(ctx, card)
	if err != nil {
		return domain.JobCard{}, err
	}
	s.telemetry.Record("jobcard.started", map[string]string{"job_card_id": updated.ID})
	return updated, nil
}

// TechnicianReportInput is the work summary a technician submits when
// finishing a job.
type TechnicianReportInput struct {
	ProceduresPerformed []string `json:"procedures_performed"`
	ToolsUsed           []string `json:"tools_used"`
	LaborHours          float64  `json:"labor_hours"`
	BeforeImages        []string `json:"before_images"`
	AfterImages         []string `json:"after_images"`
	AudioSample         string   `json:"audio_sample"`
	Notes               string   `json:"notes"`
}

// SubmitTechnicianReport records the completed work and moves the card to
// COMPLETED. An ASSIGNED card is auto-started first so technicians who
// never pressed start can still file. The assigned technician's workload
// is released.
func (s *Service) SubmitTechnicianReport(ctx context.Context, jobCardID string, input TechnicianReportInput) (domain.TechnicianReport, error) {
	card, err := s.repo.GetJobCard(ctx, jobCardID)
	if err != nil {
		return domain.TechnicianReport{}, err
	}
	if card.Status == domain.StatusAssigned {
		card.Status = domain.StatusInProgress
	}
	if err := domain.ValidateTransition(card.Status, domain.StatusCompleted); err != nil {
		return domain.TechnicianReport{}, err
	}
	if len(input.ProceduresPerformed) == 0 {
		return domain.TechnicianReport{}, errors.Join(domain.ErrValidation, errors.New("report must list at least one performed procedure"))
	}

	report := domain.TechnicianReport{
		JobCardID:           card.ID,
		ProceduresPerformed: input.ProceduresPerformed,
		ToolsUsed:           input.ToolsUsed,
		LaborHours:          input.LaborHours,
		BeforeImages:        input.BeforeImages,
		AfterImages:         input.AfterImages,
		AudioSample:         input.AudioSample,
		Notes:               input.Notes,
	}
	saved, err := s.repo.UpsertTechnicianReport(ctx, report)
	if err != nil {
		return domain.TechnicianReport{}, err
	}

	card.Status = domain.StatusCompleted
	if _, err := s.repo.UpdateJobCard(ctx, card); err != nil {
		return domain.TechnicianReport{}, err
	}

	if card.AssignedTechnicianID != "" {
		if err := s.releaseTechnician(ctx, card.AssignedTechnicianID); err != nil {
			return domain.TechnicianReport{}, err
		}
	}

	s.telemetry.Record("jobcard.completed", map[string]string{"job_card_id": card.ID})
	return saved, nil
}

func (s *Service) releaseTechnician(ctx context.Context, technicianID string) error {
	technician, err := s.repo.GetTechnician(ctx, technicianID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if technician.CurrentWorkload > 0 {
		technician.CurrentWorkload--
	}
	if technician.AvailabilityStatus == domain.TechnicianBusy && technician.CurrentWorkload < technician.MaxWorkload {
		technician.AvailabilityStatus = domain.TechnicianAvailable
	}
	_, err = s.repo.UpsertTechnician(ctx, technician)
	return err
}

func (s *Service) GetTechnicianReport(ctx context.Context, jobCardID string) (domain.TechnicianReport, error) {
	return s.repo.GetTechnicianReport(ctx, jobCardID)
}

// AuditReport bundles everything recorded about one job card.
type AuditReport struct {
	JobCard          domain.JobCard           `json:"job_card"`
	Customer         domain.Customer          `json:"customer"`
	TechnicianReport *domain.TechnicianReport `json:"technician_report,omitempty"`
	ValidationReport *domain.ValidationReport `json:"validation_report,omitempty"`
	Invoice          *domain.Invoice          `json:"invoice,omitempty"`
	AudioTranscript  string                   `json:"audio_transcript,omitempty"`
}

// BuildAuditReport assembles the full paper trail for a job card. Stages
// the card has not reached yet are simply absent.
func (s *Service) BuildAuditReport(ctx context.Context, jobCardID string) (AuditReport, error) {
	card, err := s.repo.GetJobCard(ctx, jobCardID)
	if err != nil {
		return AuditReport{}, err
	}
	customer, err := s.repo.GetCustomer(ctx, card.CustomerID)
	if err != nil {
		return AuditReport{}, err
	}

	audit := AuditReport{JobCard: card, Customer: customer}

	if report, err := s.repo.GetTechnicianReport(ctx, card.ID); err == nil {
		audit.TechnicianReport = &report
		if report.AudioSample != "" {
			if transcript, transcribeErr := s.oracle.Transcribe(ctx, report.AudioSample); transcribeErr == nil {
				audit.AudioTranscript = transcript
			}
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return AuditReport{}, err
	}

	if validation, err := s.repo.GetValidationReport(ctx, card.ID); err == nil {
		audit.ValidationReport = &validation
	} else if !errors.Is(err, domain.ErrNotFound) {
		return AuditReport{}, err
	}

	if invoice, err := s.repo.GetInvoice(ctx, card.ID); err == nil {
		audit.Invoice = &invoice
	} else if !errors.Is(err, domain.ErrNotFound) {
		return AuditReport{}, err
	}

	return audit, nil
}
