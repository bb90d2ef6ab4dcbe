package service

import (
	"context"
	"errors"
	"strings"

	"autoserve/backend/internal/domain"
)

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	return s.repo.GetCustomer(ctx, customerID)
}

// UpsertCustomer validates and stores a customer record. New customers
// only enter the assignment index at the next rebuild.
func (s *Service) UpsertCustomer(ctx context.Context, input domain.Customer) (domain.Customer, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return domain.Customer{}, errors.Join(err, errors.New("customer name is required"))
	}
	if err := domain.ValidateLocation(input.Location); err != nil {
		return domain.Customer{}, err
	}
	input.Name = strings.TrimSpace(input.Name)

	saved, err := s.repo.UpsertCustomer(ctx, input)
	if err != nil {
		return domain.Customer{}, err
	}
	s.telemetry.Record("customer.upserted", map[string]string{"customer_id": saved.ID})
	return saved, nil
}

func (s *Service) ListServiceCenters(ctx context.Context) ([]domain.ServiceCenter, error) {
	return s.repo.ListServiceCenters(ctx)
}

func (s *Service) GetServiceCenter(ctx context.Context, serviceCenterID string) (domain.ServiceCenter, error) {
	return s.repo.GetServiceCenter(ctx, serviceCenterID)
}

func (s *Service) UpsertServiceCenter(ctx context.Context, input domain.ServiceCenter) (domain.ServiceCenter, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return domain.ServiceCenter{}, errors.Join(err, errors.New("service center name is required"))
	}
	if err := domain.ValidateLocation(input.Location); err != nil {
		return domain.ServiceCenter{}, err
	}
	input.Name = strings.TrimSpace(input.Name)

	saved, err := s.repo.UpsertServiceCenter(ctx, input)
	if err != nil {
		return domain.ServiceCenter{}, err
	}
	s.telemetry.Record("service_center.upserted", map[string]string{"service_center_id": saved.ID})
	return saved, nil
}

func (s *Service) DeleteServiceCenter(ctx context.Context, serviceCenterID string) error {
	if err := s.repo.DeleteServiceCenter(ctx, serviceCenterID); err != nil {
		return err
	}
	s.telemetry.Record("service_center.deleted", map[string]string{"service_center_id": serviceCenterID})
	return nil
}

func (s *Service) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	return s.repo.ListTechnicians(ctx)
}

func (s *Service) GetTechnician(ctx context.Context, technicianID string) (domain.Technician, error) {
	return s.repo.GetTechnician(ctx, technicianID)
}

func (s *Service) UpsertTechnician(ctx context.Context, input domain.Technician) (domain.Technician, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return domain.Technician{}, errors.Join(err, errors.New("technician name is required"))
	}
	if input.ServiceCenterID == "" {
		return domain.Technician{}, errors.Join(domain.ErrValidation, errors.New("technician must belong to a service center"))
	}
	if _, err := s.repo.GetServiceCenter(ctx, input.ServiceCenterID); err != nil {
		return domain.Technician{}, err
	}
	if input.AvailabilityStatus == "" {
		input.AvailabilityStatus = domain.TechnicianAvailable
	}
	if input.MaxWorkload <= 0 {
		input.MaxWorkload = 3
	}

	saved, err := s.repo.UpsertTechnician(ctx, input)
	if err != nil {
		return domain.Technician{}, err
	}
	s.telemetry.Record("technician.upserted", map[string]string{"technician_id": saved.ID})
	return saved, nil
}

// TechnicianJobs lists the job cards assigned to one technician.
func (s *Service) TechnicianJobs(ctx context.Context, technicianID string) ([]domain.JobCard, error) {
	if _, err := s.repo.GetTechnician(ctx, technicianID); err != nil {
		return nil, err
	}
	return s.repo.ListJobCardsByTechnician(ctx, technicianID)
}
