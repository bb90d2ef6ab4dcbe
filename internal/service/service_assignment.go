package service

import (
	"context"

	"autoserve/backend/internal/assignment"
	"autoserve/backend/internal/domain"
)

// AssignServiceCenter resolves the nearest available center for a
// customer through the precomputed index, without touching any job card.
func (s *Service) AssignServiceCenter(ctx context.Context, customerID string) (domain.AssignmentResult, error) {
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return domain.AssignmentResult{}, err
	}
	return s.index.Assign(ctx, customerID)
}

// NearbyCenters returns the customer's full ranked candidate list with
// live availability.
func (s *Service) NearbyCenters(ctx context.Context, customerID string) ([]domain.RankedCenter, error) {
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.index.TopKForCustomer(ctx, customerID)
}

// RebuildIndex recomputes the assignment index from the current datasets
// and persists it.
func (s *Service) RebuildIndex(ctx context.Context) (domain.TopKIndex, error) {
	index, err := s.index.Rebuild(ctx)
	if err != nil {
		return domain.TopKIndex{}, err
	}
	return index, nil
}

// ReloadIndex discards the cached index and center snapshot and re-reads
// both, picking up an index another process rebuilt.
func (s *Service) ReloadIndex(ctx context.Context) error {
	return s.index.Reload(ctx)
}

// FallbackMatch brute-forces the nearest center with a qualified,
// available technician, bypassing the index. Used when the indexed path
// answers delayed but dispatch needs somebody anyway.
func (s *Service) FallbackMatch(ctx context.Context, customerID, specialization string) (domain.FallbackMatch, error) {
	customer, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return domain.FallbackMatch{}, err
	}
	centers, err := s.repo.ListServiceCenters(ctx)
	if err != nil {
		return domain.FallbackMatch{}, err
	}
	technicians, err := s.repo.ListTechnicians(ctx)
	if err != nil {
		return domain.FallbackMatch{}, err
	}

	byCenter := make(map[string][]domain.Technician, len(centers))
	for _, technician := range technicians {
		byCenter[technician.ServiceCenterID] = append(byCenter[technician.ServiceCenterID], technician)
	}

	match, found := assignment.FindBest(customer.Location, centers, byCenter, specialization)
	if !found {
		return domain.FallbackMatch{}, domain.ErrNotFound
	}
	s.telemetry.Record("assignment.fallback_resolved", map[string]string{"service_center_id": match.ServiceCenter.ID})
	return match, nil
}
