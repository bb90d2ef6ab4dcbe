package datasets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadCustomersCSV(t *testing.T) {
	path := writeTempFile(t, "customers.csv", `cid,name,phone,address,location_human,latitude,longitude,vehicle_brand,vehicle_model,fuel_type,car_number,vin,warranty_years_remaining
C00001,Alice Nguyen,604-555-0101,1188 W Georgia St,Downtown Vancouver,49.2870,-123.1220,Toyota,Corolla,petrol,BC-481-KLM,JTDBU4EE9A9123456,2
C00002,Brian Okafor,604-555-0102,4500 Kingsway,Burnaby,49.2300,-122.9980,Honda,Civic,petrol,BC-772-QRS,2HGFC2F59JH512345,1
`)

	customers, err := LoadCustomersCSV(path)
	if err != nil {
		t.Fatalf("LoadCustomersCSV: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("len = %d, want 2", len(customers))
	}
	first := customers[0]
	if first.ID != "C00001" || first.Name != "Alice Nguyen" {
		t.Fatalf("first customer = %+v", first)
	}
	if first.Location.Latitude != 49.2870 || first.Location.Longitude != -123.1220 {
		t.Fatalf("location = %+v", first.Location)
	}
	if first.Vehicle.Brand != "Toyota" || first.Vehicle.WarrantyYearsRemaining != 2 {
		t.Fatalf("vehicle = %+v", first.Vehicle)
	}
}

func TestLoadCustomersCSVColumnOrderIsFree(t *testing.T) {
	path := writeTempFile(t, "customers.csv", `latitude,longitude,name,cid
49.28,-123.12,Alice,C1
`)

	customers, err := LoadCustomersCSV(path)
	if err != nil {
		t.Fatalf("LoadCustomersCSV: %v", err)
	}
	if len(customers) != 1 || customers[0].ID != "C1" || customers[0].Location.Latitude != 49.28 {
		t.Fatalf("customers = %+v", customers)
	}
}

func TestLoadCustomersCSVRejectsBadCoordinates(t *testing.T) {
	path := writeTempFile(t, "customers.csv", `cid,name,latitude,longitude
C1,Alice,not-a-number,-123.12
`)

	if _, err := LoadCustomersCSV(path); err == nil {
		t.Fatalf("expected error for an unparseable latitude")
	}
}

func TestLoadCustomersCSVRejectsMissingID(t *testing.T) {
	path := writeTempFile(t, "customers.csv", `cid,name,latitude,longitude
,Alice,49.28,-123.12
`)

	if _, err := LoadCustomersCSV(path); err == nil {
		t.Fatalf("expected error for a missing cid")
	}
}

func TestLoadServiceCentersCSV(t *testing.T) {
	path := writeTempFile(t, "centers.csv", `scid,name,location_human,latitude,longitude,technician_available
SC0001,Downtown Auto Care,Downtown Vancouver,49.2820,-123.1171,true
SC0002,Metrotown Motors,Burnaby,49.2260,-123.0010,false
`)

	centers, err := LoadServiceCentersCSV(path)
	if err != nil {
		t.Fatalf("LoadServiceCentersCSV: %v", err)
	}
	if len(centers) != 2 {
		t.Fatalf("len = %d, want 2", len(centers))
	}
	if !centers[0].TechnicianAvailable || centers[1].TechnicianAvailable {
		t.Fatalf("availability flags: %+v", centers)
	}
}

func TestLoadServiceCentersCSVAvailabilityDefaultsTrue(t *testing.T) {
	path := writeTempFile(t, "centers.csv", `scid,name,latitude,longitude
SC1,Center,49.28,-123.12
`)

	centers, err := LoadServiceCentersCSV(path)
	if err != nil {
		t.Fatalf("LoadServiceCentersCSV: %v", err)
	}
	if !centers[0].TechnicianAvailable {
		t.Fatalf("availability must default to true when the column is absent")
	}
}

func TestParseCoordAcceptsCommaDecimal(t *testing.T) {
	value, err := parseCoord(" 49,2827 ")
	if err != nil {
		t.Fatalf("parseCoord: %v", err)
	}
	if value != 49.2827 {
		t.Fatalf("value = %v, want 49.2827", value)
	}
	if _, err := parseCoord(""); err == nil {
		t.Fatalf("expected error for empty coordinate")
	}
}

func TestSeedTechniciansDeterministic(t *testing.T) {
	centers := SeedServiceCenters()
	first := SeedTechnicians(centers)
	second := SeedTechnicians(centers)

	if len(first) != 2*len(centers) {
		t.Fatalf("len = %d, want two per center", len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Name != second[i].Name {
			t.Fatalf("reruns diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSeedDatasetsAreConsistent(t *testing.T) {
	for _, customer := range SeedCustomers() {
		if customer.ID == "" || customer.Name == "" {
			t.Fatalf("incomplete seed customer: %+v", customer)
		}
		if customer.Location.Latitude == 0 && customer.Location.Longitude == 0 {
			t.Fatalf("seed customer %s has no coordinates", customer.ID)
		}
	}
	for _, center := range SeedServiceCenters() {
		if center.ID == "" || center.Name == "" {
			t.Fatalf("incomplete seed center: %+v", center)
		}
	}
}
