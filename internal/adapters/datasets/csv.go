// Package datasets loads customer and service-center records from the
// CSV and XLSX files operators maintain, and carries the built-in seed
// set used for demos and local development.
package datasets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/geo"
)

// headerIndex maps lower-cased column names to their positions so files
// can order columns freely.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

func field(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCoord(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if value == "" {
		return 0, errors.New("empty coordinate")
	}
	return strconv.ParseFloat(value, 64)
}

func customerFromRow(row []string, index map[string]int, line int) (domain.Customer, error) {
	latitude, err := parseCoord(field(row, index, "latitude"))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("row %d: latitude: %w", line, err)
	}
	longitude, err := parseCoord(field(row, index, "longitude"))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("row %d: longitude: %w", line, err)
	}
	warrantyYears := 0
	if raw := field(row, index, "warranty_years_remaining"); raw != "" {
		warrantyYears, err = strconv.Atoi(raw)
		if err != nil {
			return domain.Customer{}, fmt.Errorf("row %d: warranty_years_remaining: %w", line, err)
		}
	}

	return domain.Customer{
		ID:            field(row, index, "cid"),
		Name:          field(row, index, "name"),
		Phone:         field(row, index, "phone"),
		Address:       field(row, index, "address"),
		LocationHuman: field(row, index, "location_human"),
		Location:      geo.Point{Latitude: latitude, Longitude: longitude},
		Vehicle: domain.Vehicle{
			Brand:                  field(row, index, "vehicle_brand"),
			Model:                  field(row, index, "vehicle_model"),
			FuelType:               field(row, index, "fuel_type"),
			CarNumber:              field(row, index, "car_number"),
			VIN:                    field(row, index, "vin"),
			WarrantyYearsRemaining: warrantyYears,
		},
		Email: field(row, index, "email"),
	}, nil
}

func serviceCenterFromRow(row []string, index map[string]int, line int) (domain.ServiceCenter, error) {
	latitude, err := parseCoord(field(row, index, "latitude"))
	if err != nil {
		return domain.ServiceCenter{}, fmt.Errorf("row %d: latitude: %w", line, err)
	}
	longitude, err := parseCoord(field(row, index, "longitude"))
	if err != nil {
		return domain.ServiceCenter{}, fmt.Errorf("row %d: longitude: %w", line, err)
	}

	available := true
	if raw := field(row, index, "technician_available"); raw != "" {
		available, err = strconv.ParseBool(raw)
		if err != nil {
			return domain.ServiceCenter{}, fmt.Errorf("row %d: technician_available: %w", line, err)
		}
	}

	return domain.ServiceCenter{
		ID:                  field(row, index, "scid"),
		Name:                field(row, index, "name"),
		LocationHuman:       field(row, index, "location_human"),
		Location:            geo.Point{Latitude: latitude, Longitude: longitude},
		TechnicianAvailable: available,
		Address:             field(row, index, "address"),
		Phone:               field(row, index, "phone"),
		Email:               field(row, index, "email"),
	}, nil
}

func readCSV(path string, consume func(row []string, index map[string]int, line int) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := headerIndex(header)

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		if err := consume(row, index, line); err != nil {
			return err
		}
	}
}

// LoadCustomersCSV reads customers from a CSV file with a header row.
// Column order is free; cid, name and coordinates are required.
func LoadCustomersCSV(path string) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := readCSV(path, func(row []string, index map[string]int, line int) error {
		customer, err := customerFromRow(row, index, line)
		if err != nil {
			return err
		}
		if customer.ID == "" {
			return fmt.Errorf("row %d: missing cid", line)
		}
		customers = append(customers, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// LoadServiceCentersCSV reads service centers from a CSV file with a
// header row.
func LoadServiceCentersCSV(path string) ([]domain.ServiceCenter, error) {
	var centers []domain.ServiceCenter
	err := readCSV(path, func(row []string, index map[string]int, line int) error {
		center, err := serviceCenterFromRow(row, index, line)
		if err != nil {
			return err
		}
		if center.ID == "" {
			return fmt.Errorf("row %d: missing scid", line)
		}
		centers = append(centers, center)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return centers, nil
}
