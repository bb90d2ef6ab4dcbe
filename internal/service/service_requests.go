package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"autoserve/backend/internal/domain"
)

// ServiceRequest is a customer's complaint submission.
type ServiceRequest struct {
	CustomerID    string `json:"customer_id"`
	ComplaintText string `json:"complaint_text"`
}

func newJobCardID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return "JC-" + strings.ToUpper(hex.EncodeToString(buf))
}

// ValidateComplaint runs intake triage only, without creating anything.
func (s *Service) ValidateComplaint(ctx context.Context, complaintText string) (domain.ComplaintVerdict, error) {
	if err := domain.ValidateComplaintText(complaintText); err != nil {
		return domain.ComplaintVerdict{}, err
	}
	return s.oracle.ValidateComplaint(ctx, complaintText)
}

// SubmitServiceRequest checks the complaint and opens a job card in
// CREATED for a valid one. An off-topic complaint is a validation
// failure, not a server error.
func (s *Service) SubmitServiceRequest(ctx context.Context, request ServiceRequest) (domain.JobCard, error) {
	if err := domain.ValidateComplaintText(request.ComplaintText); err != nil {
		return domain.JobCard{}, err
	}
	customer, err := s.repo.GetCustomer(ctx, request.CustomerID)
	if err != nil {
		return domain.JobCard{}, err
	}

	verdict, err := s.oracle.ValidateComplaint(ctx, request.ComplaintText)
	if err != nil {
		return domain.JobCard{}, fmt.Errorf("validate complaint: %w", err)
	}
	if !verdict.Valid {
		return domain.JobCard{}, errors.Join(domain.ErrValidation, fmt.Errorf("complaint rejected: %s", verdict.Reason))
	}

	card := domain.JobCard{
		ID:            newJobCardID(),
		CustomerID:    customer.ID,
		ComplaintText: strings.TrimSpace(request.ComplaintText),
		Status:        domain.StatusCreated,
	}
	created, err := s.repo.CreateJobCard(ctx, card)
	if err != nil {
		return domain.JobCard{}, err
	}

	s.telemetry.Record("jobcard.created", map[string]string{"job_card_id": created.ID})
	return created, nil
}
