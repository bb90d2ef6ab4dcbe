package assignment

import (
	"math"

	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/geo"
)

// FindBest is the brute-force resolver: a full linear scan over every
// center, used when no precomputed index covers the query or when the
// query filters on a capability the index never captured, such as a
// technician specialization. Its availability rule is deliberately richer
// than Assign's flag-only check and the two are kept separate.
//
// A center qualifies when its availability flag is set and, if it carries
// technician records, at least one technician is available and matches the
// required specialization. The nearest qualifying center wins; exact
// distance ties keep the first center in enumeration order. Within the
// winning center the qualifying technician with the lowest workload is
// picked, ties again by enumeration order. The second result is false
// when no center qualifies; that is an empty outcome, not an error.
func FindBest(customerLocation geo.Point, centers []domain.ServiceCenter, techniciansByCenter map[string][]domain.Technician, specialization string) (domain.FallbackMatch, bool) {
	var best domain.FallbackMatch
	found := false
	minDistance := math.Inf(1)

	for _, center := range centers {
		if !center.TechnicianAvailable {
			continue
		}

		technicians := techniciansByCenter[center.ID]
		qualified := qualifyTechnicians(technicians, specialization)
		if len(technicians) > 0 && len(qualified) == 0 {
			continue
		}

		distance := geo.Distance(customerLocation, center.Location)
		if distance >= minDistance {
			continue
		}
		minDistance = distance

		match := domain.FallbackMatch{ServiceCenter: center, DistanceKm: distance}
		if len(qualified) > 0 {
			technician := leastLoaded(qualified)
			match.Technician = &technician
		}
		best = match
		found = true
	}

	return best, found
}

// qualifyTechnicians keeps available technicians, preferring those that
// match the required specialization. When none match, the available set is
// returned unfiltered so a missing skill tag degrades to plain
// availability rather than an empty result.
func qualifyTechnicians(technicians []domain.Technician, specialization string) []domain.Technician {
	available := make([]domain.Technician, 0, len(technicians))
	for _, technician := range technicians {
		if technician.IsAvailable() {
			available = append(available, technician)
		}
	}
	if specialization == "" || len(available) == 0 {
		return available
	}

	specialized := make([]domain.Technician, 0, len(available))
	for _, technician := range available {
		if technician.HasSpecialization(specialization) {
			specialized = append(specialized, technician)
		}
	}
	if len(specialized) > 0 {
		return specialized
	}
	return available
}

func leastLoaded(technicians []domain.Technician) domain.Technician {
	best := technicians[0]
	for _, technician := range technicians[1:] {
		if technician.CurrentWorkload < best.CurrentWorkload {
			best = technician
		}
	}
	return best
}
