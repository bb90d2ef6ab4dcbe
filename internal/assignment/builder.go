// Package assignment precomputes and serves nearest-service-center
// rankings. BuildIndex is the offline batch step; Store owns the cached
// index and answers per-customer lookups bounded by K; FindBest is the
// brute-force path for queries the index cannot answer.
package assignment

import (
	"encoding/json"
	"fmt"
	"sort"

	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/geo"
)

// BuildIndex computes every customer's K nearest service centers by
// haversine distance. It is O(customers x centers), acceptable for an
// offline batch job. The sort is stable so equal distances keep the
// dataset enumeration order, which makes rebuilds deterministic.
//
// An empty center collection is not an error: every customer maps to an
// empty sequence and the resolver reports delayed. Customers with
// out-of-range coordinates are skipped from the index.
func BuildIndex(customers []domain.Customer, centers []domain.ServiceCenter, k int) (domain.TopKIndex, error) {
	if err := domain.ValidateTopK(k); err != nil {
		return domain.TopKIndex{}, err
	}

	index := domain.TopKIndex{K: k, Entries: make(map[string][]string, len(customers))}

	type candidate struct {
		id       string
		distance float64
	}
	candidates := make([]candidate, 0, len(centers))

	for _, customer := range customers {
		if domain.ValidateLocation(customer.Location) != nil {
			continue
		}

		candidates = candidates[:0]
		for _, center := range centers {
			candidates = append(candidates, candidate{
				id:       center.ID,
				distance: geo.Distance(customer.Location, center.Location),
			})
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].distance < candidates[j].distance
		})

		limit := k
		if limit > len(candidates) {
			limit = len(candidates)
		}
		entry := make([]string, 0, limit)
		for _, c := range candidates[:limit] {
			entry = append(entry, c.id)
		}
		index.Entries[customer.ID] = entry
	}

	return index, nil
}

// EncodeIndex serializes the index as self-describing JSON. JSON arrays
// preserve element order, which the ranking depends on, and the payload
// stays readable from other runtimes.
func EncodeIndex(index domain.TopKIndex) ([]byte, error) {
	return json.Marshal(index)
}

// DecodeIndex parses a persisted index payload.
func DecodeIndex(payload []byte) (domain.TopKIndex, error) {
	var index domain.TopKIndex
	if err := json.Unmarshal(payload, &index); err != nil {
		return domain.TopKIndex{}, fmt.Errorf("decode top-k index: %w", err)
	}
	if index.Entries == nil {
		index.Entries = map[string][]string{}
	}
	return index, nil
}
