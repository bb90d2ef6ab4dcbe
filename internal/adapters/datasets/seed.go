package datasets

import (
	"context"
	"fmt"

	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/geo"
	"autoserve/backend/internal/ports"
)

// SeedCustomers is the built-in demo dataset: customers spread across
// the Vancouver metro area.
func SeedCustomers() []domain.Customer {
	return []domain.Customer{
		{
			ID: "C00001", Name: "Alice Nguyen", Phone: "604-555-0101",
			Address: "1188 W Georgia St", LocationHuman: "Downtown Vancouver",
			Location: geo.Point{Latitude: 49.2870, Longitude: -123.1220},
			Vehicle:  domain.Vehicle{Brand: "Toyota", Model: "Corolla", FuelType: "petrol", CarNumber: "BC-481-KLM", VIN: "JTDBU4EE9A9123456", WarrantyYearsRemaining: 2},
		},
		{
			ID: "C00002", Name: "Brian Okafor", Phone: "604-555-0102",
			Address: "4500 Kingsway", LocationHuman: "Burnaby",
			Location: geo.Point{Latitude: 49.2300, Longitude: -122.9980},
			Vehicle:  domain.Vehicle{Brand: "Honda", Model: "Civic", FuelType: "petrol", CarNumber: "BC-772-QRS", VIN: "2HGFC2F59JH512345", WarrantyYearsRemaining: 1},
		},
		{
			ID: "C00003", Name: "Chitra Raman", Phone: "604-555-0103",
			Address: "6551 No. 3 Rd", LocationHuman: "Richmond",
			Location: geo.Point{Latitude: 49.1666, Longitude: -123.1336},
			Vehicle:  domain.Vehicle{Brand: "Hyundai", Model: "Tucson", FuelType: "diesel", CarNumber: "BC-903-TUV", VIN: "KM8J3CA46JU712345", WarrantyYearsRemaining: 3},
		},
		{
			ID: "C00004", Name: "Daniel Fraser", Phone: "604-555-0104",
			Address: "1321 Lonsdale Ave", LocationHuman: "North Vancouver",
			Location: geo.Point{Latitude: 49.3200, Longitude: -123.0724},
			Vehicle:  domain.Vehicle{Brand: "Ford", Model: "F-150", FuelType: "petrol", CarNumber: "BC-114-WXY", VIN: "1FTEW1EP5JFA12345", WarrantyYearsRemaining: 0},
		},
		{
			ID: "C00005", Name: "Elena Petrova", Phone: "604-555-0105",
			Address: "10153 King George Blvd", LocationHuman: "Surrey",
			Location: geo.Point{Latitude: 49.1860, Longitude: -122.8490},
			Vehicle:  domain.Vehicle{Brand: "Volkswagen", Model: "Golf", FuelType: "diesel", CarNumber: "BC-265-ZAB", VIN: "3VW217AU1JM712345", WarrantyYearsRemaining: 2},
		},
		{
			ID: "C00006", Name: "Farid Hassan", Phone: "604-555-0106",
			Address: "20399 Douglas Cres", LocationHuman: "Langley",
			Location: geo.Point{Latitude: 49.1044, Longitude: -122.6600},
			Vehicle:  domain.Vehicle{Brand: "Mazda", Model: "CX-5", FuelType: "petrol", CarNumber: "BC-338-CDE", VIN: "JM3KFBDM8J0312345", WarrantyYearsRemaining: 4},
		},
	}
}

// SeedServiceCenters is the matching demo set of service centers.
func SeedServiceCenters() []domain.ServiceCenter {
	return []domain.ServiceCenter{
		{
			ID: "SC0001", Name: "Downtown Auto Care", LocationHuman: "Downtown Vancouver",
			Location:            geo.Point{Latitude: 49.2820, Longitude: -123.1171},
			TechnicianAvailable: true, Address: "888 Seymour St", Phone: "604-555-0201",
		},
		{
			ID: "SC0002", Name: "Metrotown Motors", LocationHuman: "Burnaby",
			Location:            geo.Point{Latitude: 49.2260, Longitude: -123.0010},
			TechnicianAvailable: true, Address: "4700 Kingsway", Phone: "604-555-0202",
		},
		{
			ID: "SC0003", Name: "Richmond Auto Works", LocationHuman: "Richmond",
			Location:            geo.Point{Latitude: 49.1710, Longitude: -123.1360},
			TechnicianAvailable: true, Address: "5300 No. 3 Rd", Phone: "604-555-0203",
		},
		{
			ID: "SC0004", Name: "North Shore Garage", LocationHuman: "North Vancouver",
			Location:            geo.Point{Latitude: 49.3165, Longitude: -123.0690},
			TechnicianAvailable: false, Address: "150 W 1st St", Phone: "604-555-0204",
		},
		{
			ID: "SC0005", Name: "Surrey Central Service", LocationHuman: "Surrey",
			Location:            geo.Point{Latitude: 49.1890, Longitude: -122.8480},
			TechnicianAvailable: true, Address: "10255 King George Blvd", Phone: "604-555-0205",
		},
	}
}

var technicianTemplates = []struct {
	name            string
	specializations []string
}{
	{"John Smith", []string{"Oil Change", "General Maintenance"}},
	{"Maria Garcia", []string{"AC", "Heating"}},
	{"Mike Johnson", []string{"Tires", "Alignment"}},
	{"Sarah Williams", []string{"Engine", "Transmission"}},
	{"David Brown", []string{"Brakes", "Suspension"}},
	{"Emily Davis", []string{"Electrical", "Diagnostics"}},
	{"Robert Wilson", []string{"Exhaust", "Emissions"}},
	{"Anna Martinez", []string{"Body Work", "Paint"}},
}

// SeedTechnicians generates two technicians per center, cycling through
// the specialization templates in order so reruns produce the same
// roster.
func SeedTechnicians(centers []domain.ServiceCenter) []domain.Technician {
	var technicians []domain.Technician
	next := 0
	for _, center := range centers {
		for i := 0; i < 2; i++ {
			template := technicianTemplates[next%len(technicianTemplates)]
			next++
			technicians = append(technicians, domain.Technician{
				ID:                 fmt.Sprintf("TECH-%04d", next),
				ServiceCenterID:    center.ID,
				Name:               template.name,
				EmployeeID:         fmt.Sprintf("TECH-%04d", next),
				Specializations:    append([]string{}, template.specializations...),
				AvailabilityStatus: domain.TechnicianAvailable,
				CurrentWorkload:    0,
				MaxWorkload:        3,
			})
		}
	}
	return technicians
}

// Seed loads the demo dataset into the repository. Existing records
// with the same ids are overwritten; everything else is left alone.
func Seed(ctx context.Context, repo ports.Repository) error {
	for _, customer := range SeedCustomers() {
		if _, err := repo.UpsertCustomer(ctx, customer); err != nil {
			return fmt.Errorf("seed customer %s: %w", customer.ID, err)
		}
	}
	centers := SeedServiceCenters()
	for _, center := range centers {
		if _, err := repo.UpsertServiceCenter(ctx, center); err != nil {
			return fmt.Errorf("seed service center %s: %w", center.ID, err)
		}
	}
	for _, technician := range SeedTechnicians(centers) {
		if _, err := repo.UpsertTechnician(ctx, technician); err != nil {
			return fmt.Errorf("seed technician %s: %w", technician.ID, err)
		}
	}
	return nil
}
