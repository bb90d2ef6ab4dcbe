package service

import (
	"fmt"

	"autoserve/backend/internal/assignment"
	"autoserve/backend/internal/ports"
)

type Service struct {
	repo      ports.Repository
	telemetry ports.Telemetry
	oracle    ports.Oracle
	index     *assignment.Store
}

func New(repo ports.Repository, telemetry ports.Telemetry, oracle ports.Oracle, index *assignment.Store) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("new service: repository is nil")
	}
	if telemetry == nil {
		return nil, fmt.Errorf("new service: telemetry is nil")
	}
	if oracle == nil {
		return nil, fmt.Errorf("new service: oracle is nil")
	}
	if index == nil {
		return nil, fmt.Errorf("new service: assignment store is nil")
	}
	return &Service{repo: repo, telemetry: telemetry, oracle: oracle, index: index}, nil
}
