package assignment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/logger"
	"autoserve/backend/internal/ports"
)

// DatasetSource is the slice of the record store the index subsystem
// needs: the full customer and service-center collections.
type DatasetSource interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListServiceCenters(ctx context.Context) ([]domain.ServiceCenter, error)
}

// Store owns the cached top-K index and a snapshot of service-center
// state. It is constructed once at process start and shared by request
// handlers; reads take a consistent reference under the lock, writes
// (Reload, Rebuild) swap whole references so readers never see a mix.
//
// The center snapshot is refreshed by Reload, not per lookup, so
// availability reads can lag external capacity changes by one refresh.
type Store struct {
	source    DatasetSource
	blob      ports.IndexBlob
	telemetry ports.Telemetry
	k         int

	mu      sync.Mutex
	index   *domain.TopKIndex
	centers map[string]domain.ServiceCenter
}

func NewStore(source DatasetSource, blob ports.IndexBlob, telemetry ports.Telemetry, k int) (*Store, error) {
	if source == nil {
		return nil, fmt.Errorf("new assignment store: dataset source is nil")
	}
	if blob == nil {
		return nil, fmt.Errorf("new assignment store: index blob is nil")
	}
	if telemetry == nil {
		return nil, fmt.Errorf("new assignment store: telemetry is nil")
	}
	if err := domain.ValidateTopK(k); err != nil {
		return nil, err
	}
	return &Store{source: source, blob: blob, telemetry: telemetry, k: k}, nil
}

// Load returns the cached index, falling back to the persisted copy and
// finally to a fresh build. The lock makes the cold-start build happen at
/// most once: concurrent callers block and receive the same index. A
// persisted index built with a different K is never reused silently; it
// forces a rebuild.
func (s *Store) Load(ctx context.Context) (domain.TopKIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) (domain.TopKIndex, error) {
	if s.index != nil {
		return *s.index, nil
	}

	exists, err := s.blob.Exists(ctx)
	if err != nil {
		return domain.TopKIndex{}, fmt.Errorf("check persisted index: %w", err)
	}
	if exists {
		payload, loadErr := s.blob.Load(ctx)
		if loadErr != nil {
			return domain.TopKIndex{}, fmt.Errorf("load persisted index: %w", loadErr)
		}
		index, decodeErr := DecodeIndex(payload)
		if decodeErr == nil && index.K == s.k {
			s.index = &index
			return index, nil
		}
		if decodeErr != nil {
			logger.L().Warn("persisted index unreadable, rebuilding", "err", decodeErr)
		} else {
			logger.L().Warn("persisted index has different k, rebuilding", "persisted_k", index.K, "configured_k", s.k)
			s.telemetry.Record("index.k_mismatch", map[string]string{
				"persisted_k":  fmt.Sprint(index.K),
				"configured_k": fmt.Sprint(s.k),
			})
		}
	}

	return s.rebuildLocked(ctx)
}

// Rebuild recomputes the index from the current datasets and persists it.
// A build failure leaves the previous index (cached or persisted)
// authoritative. A persistence failure keeps the fresh in-memory index
// usable but is surfaced so operators know a restart would rebuild.
func (s *Store) Rebuild(ctx context.Context) (domain.TopKIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(ctx)
}

func (s *Store) rebuildLocked(ctx context.Context) (domain.TopKIndex, error) {
	customers, err := s.source.ListCustomers(ctx)
	if err != nil {
		return domain.TopKIndex{}, fmt.Errorf("build index: list customers: %w", err)
	}
	centers, err := s.source.ListServiceCenters(ctx)
	if err != nil {
		return domain.TopKIndex{}, fmt.Errorf("build index: list service centers: %w", err)
	}

	started := time.Now()
	index, err := BuildIndex(customers, centers, s.k)
	if err != nil {
		return domain.TopKIndex{}, err
	}
	s.index = &index
	s.telemetry.Record("index.built", map[string]string{
		"customers":        fmt.Sprint(len(customers)),
		"centers":          fmt.Sprint(len(centers)),
		"duration_seconds": fmt.Sprintf("%.6f", time.Since(started).Seconds()),
	})

	payload, err := EncodeIndex(index)
	if err == nil {
		err = s.blob.Store(ctx, payload)
	}
	if err != nil {
		// The in-memory index stays usable for this process lifetime,
		// but the next cold start would pay for a full rebuild.
		logger.L().Error("persist index failed", "err", err)
		s.telemetry.Record("index.persist_failed", nil)
		return index, fmt.Errorf("persist index: %w", err)
	}

	return index, nil
}

// Reload discards the cached index and center snapshot and re-reads both
// from their backing stores. A stale persisted index is loaded as-is;
// rebuilding stays a distinct, explicit operation.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = nil
	s.centers = nil
	if _, err := s.loadLocked(ctx); err != nil {
		return err
	}
	_, err := s.centersLocked(ctx)
	return err
}

func (s *Store) centersLocked(ctx context.Context) (map[string]domain.ServiceCenter, error) {
	if s.centers != nil {
		return s.centers, nil
	}
	centers, err := s.source.ListServiceCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load service-center snapshot: %w", err)
	}
	snapshot := make(map[string]domain.ServiceCenter, len(centers))
	for _, center := range centers {
		snapshot[center.ID] = center
	}
	s.centers = snapshot
	return snapshot, nil
}

// snapshot returns consistent references to the index and center map for
// one lookup.
func (s *Store) snapshot(ctx context.Context) (domain.TopKIndex, map[string]domain.ServiceCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadLocked(ctx)
	if err != nil {
		return domain.TopKIndex{}, nil, err
	}
	centers, err := s.centersLocked(ctx)
	if err != nil {
		return domain.TopKIndex{}, nil, err
	}
	return index, centers, nil
}

// Assign walks the customer's precomputed ranking and returns the first
// center whose technician_available flag is set. The scan is bounded by K
// no matter how many centers exist. Index entries pointing at centers
// missing from the snapshot are skipped: stale entries are unusable, not
// fatal, and the skip is counted so staleness stays diagnosable.
func (s *Store) Assign(ctx context.Context, customerID string) (domain.AssignmentResult, error) {
	index, centers, err := s.snapshot(ctx)
	if err != nil {
		return domain.AssignmentResult{}, err
	}

	entry, ok := index.EntryFor(customerID)
	if !ok {
		return domain.AssignmentResult{}, errors.Join(domain.ErrNotFound, fmt.Errorf("customer %s not in index", customerID))
	}

	for _, centerID := range entry {
		center, found := centers[centerID]
		if !found {
			logger.L().Debug("skipping stale index entry", "customer_id", customerID, "service_center_id", centerID)
			s.telemetry.Record("index.stale_entry_skipped", map[string]string{"service_center_id": centerID})
			continue
		}
		if !center.TechnicianAvailable {
			continue
		}
		location := center.Location
		s.telemetry.Record("assignment.resolved", map[string]string{"status": domain.AssignmentStatusAssigned})
		return domain.AssignmentResult{
			Status:            domain.AssignmentStatusAssigned,
			CustomerID:        customerID,
			ServiceCenterID:   center.ID,
			ServiceCenterName: center.Name,
			Location:          &location,
			LocationHuman:     center.LocationHuman,
		}, nil
	}

	s.telemetry.Record("assignment.resolved", map[string]string{"status": domain.AssignmentStatusDelayed})
	return domain.AssignmentResult{
		Status:     domain.AssignmentStatusDelayed,
		CustomerID: customerID,
		Message:    "All nearby service centres busy. Assignment in 24 hours.",
	}, nil
}

// TopKForCustomer returns the customer's full ranked candidate list with
// live availability annotated, for display and diagnostics. Unlike Assign
// it does not stop at the first available center. Stale entries are
// dropped from the result.
func (s *Store) TopKForCustomer(ctx context.Context, customerID string) ([]domain.RankedCenter, error) {
	index, centers, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := index.EntryFor(customerID)
	if !ok {
		return nil, errors.Join(domain.ErrNotFound, fmt.Errorf("customer %s not in index", customerID))
	}

	ranked := make([]domain.RankedCenter, 0, len(entry))
	for _, centerID := range entry {
		center, found := centers[centerID]
		if !found {
			s.telemetry.Record("index.stale_entry_skipped", map[string]string{"service_center_id": centerID})
			continue
		}
		ranked = append(ranked, domain.RankedCenter{
			ServiceCenterID: center.ID,
			Name:            center.Name,
			Location:        center.Location,
			LocationHuman:   center.LocationHuman,
			Available:       center.TechnicianAvailable,
		})
	}
	return ranked, nil
}
