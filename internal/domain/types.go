package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"autoserve/backend/internal/geo"
)

// DefaultTopK is the number of nearest service centers kept per customer.
// Builder and resolver must agree on it; an index built with a different
// value is rebuilt rather than reused.
const DefaultTopK = 5

const minComplaintLength = 10

// Job card lifecycle, in order. Transitions only move forward one step;
// the service layer auto-starts ASSIGNED cards before accepting a report.
const (
	StatusCreated    = "CREATED"
	StatusGenerated  = "GENERATED"
	StatusAssigned   = "ASSIGNED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusValidated  = "VALIDATED"
	StatusInvoiced   = "INVOICED"
)

const (
	TechnicianAvailable = "AVAILABLE"
	TechnicianBusy      = "BUSY"
	TechnicianOffDuty   = "OFF_DUTY"
)

const (
	AssignmentStatusAssigned = "assigned"
	AssignmentStatusDelayed  = "delayed"
)

const (
	MediaResultPass      = "PASS"
	MediaResultFail      = "FAIL"
	MediaResultUncertain = "UNCERTAIN"
)

const (
	PaymentPending   = "PENDING"
	PaymentPaid      = "PAID"
	PaymentCancelled = "CANCELLED"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	LocationHuman string    `json:"location_human,omitempty"`
	Location      geo.Point `json:"location"`
	Vehicle       Vehicle   `json:"vehicle"`
	Email         string    `json:"email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Vehicle struct {
	Brand                  string `json:"brand,omitempty"`
	Model                  string `json:"model,omitempty"`
	FuelType               string `json:"fuel_type,omitempty"`
	CarNumber              string `json:"car_number,omitempty"`
	VIN                    string `json:"vin,omitempty"`
	WarrantyYearsRemaining int    `json:"warranty_years_remaining"`
}

type ServiceCenter struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	LocationHuman       string    `json:"location_human,omitempty"`
	Location            geo.Point `json:"location"`
	TechnicianAvailable bool      `json:"technician_available"`
	Address             string    `json:"address,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Email               string    `json:"email,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Technician struct {
	ID                 string    `json:"id"`
	ServiceCenterID    string    `json:"service_center_id"`
	Name               string    `json:"name"`
	EmployeeID         string    `json:"employee_id"`
	Specializations    []string  `json:"specializations,omitempty"`
	AvailabilityStatus string    `json:"availability_status"`
	CurrentWorkload    int       `json:"current_workload"`
	MaxWorkload        int       `json:"max_workload"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsAvailable reports whether the technician can take new work.
func (t Technician) IsAvailable() bool {
	return t.AvailabilityStatus == TechnicianAvailable && t.CurrentWorkload < t.MaxWorkload
}

// HasSpecialization matches a required skill tag case-insensitively.
// An empty requirement matches every technician.
func (t Technician) HasSpecialization(required string) bool {
	required = strings.ToLower(strings.TrimSpace(required))
	if required == "" {
		return true
	}
	for _, s := range t.Specializations {
		if strings.Contains(strings.ToLower(s), required) {
			return true
		}
	}
	return false
}

type JobCard struct {
	ID                      string    `json:"id"`
	CustomerID              string    `json:"customer_id"`
	AssignedServiceCenterID string    `json:"assigned_service_center_id,omitempty"`
	AssignedTechnicianID    string    `json:"assigned_technician_id,omitempty"`
	ComplaintText           string    `json:"complaint_text"`
	Issue                   string    `json:"issue,omitempty"`
	Severity                string    `json:"severity,omitempty"`
	RepairType              string    `json:"repair_type,omitempty"`
	Procedures              []string  `json:"procedures,omitempty"`
	RequiredTools           []string  `json:"required_tools,omitempty"`
	EstimatedLaborHours     float64   `json:"estimated_labor_hours,omitempty"`
	EstimatedCost           float64   `json:"estimated_cost,omitempty"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type TechnicianReport struct {
	ID                  string    `json:"id"`
	JobCardID           string    `json:"job_card_id"`
	ProceduresPerformed []string  `json:"procedures_performed"`
	ToolsUsed           []string  `json:"tools_used,omitempty"`
	LaborHours          float64   `json:"labor_hours,omitempty"`
	BeforeImages        []string  `json:"before_images,omitempty"`
	AfterImages         []string  `json:"after_images,omitempty"`
	AudioSample         string    `json:"audio_sample,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ValidationReport struct {
	ID                string       `json:"id"`
	JobCardID         string       `json:"job_card_id"`
	ConfidenceScore   float64      `json:"confidence_score"`
	BillingRisk       bool         `json:"billing_risk"`
	MissingProcedures []string     `json:"missing_procedures"`
	MissingTools      []string     `json:"missing_tools"`
	ImageValidation   MediaVerdict `json:"image_validation"`
	AudioValidation   MediaVerdict `json:"audio_validation"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// MediaVerdict is the scoring oracle's judgment on image or audio evidence.
type MediaVerdict struct {
	Result     string  `json:"result"`
	Confidence float64 `json:"confidence"`
	Details    string  `json:"details,omitempty"`
}

// ComplaintVerdict is the intake oracle's answer to whether a complaint is
// automotive-related.
type ComplaintVerdict struct {
	Valid  bool   `json:"is_valid"`
	Reason string `json:"reason"`
}

// JobCardDraft is the oracle's structured diagnosis of a complaint, used
// to populate a CREATED job card.
type JobCardDraft struct {
	Issue            string   `json:"issue"`
	Severity         string   `json:"severity"`
	RepairType       string   `json:"repair_type"`
	Procedures       []string `json:"procedures"`
	Tools            []string `json:"tools"`
	LaborHours       float64  `json:"labor_hours"`
	EstimatedCostMin float64  `json:"estimated_cost_min"`
	EstimatedCostMax float64  `json:"estimated_cost_max"`
	AdditionalNotes  string   `json:"additional_notes,omitempty"`
}

type Invoice struct {
	ID                string            `json:"id"`
	JobCardID         string            `json:"job_card_id"`
	LaborCost         float64           `json:"labor_cost"`
	PartsCost         float64           `json:"parts_cost"`
	AdditionalCharges float64           `json:"additional_charges"`
	Discount          float64           `json:"discount"`
	TaxRate           float64           `json:"tax_rate"`
	TotalAmount       float64           `json:"total_amount"`
	LineItems         []InvoiceLineItem `json:"line_items"`
	Notes             string            `json:"notes,omitempty"`
	PaymentStatus     string            `json:"payment_status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type InvoiceLineItem struct {
	Description string  `json:"description"`
	Hours       float64 `json:"hours,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	Amount      float64 `json:"amount"`
}

// TopKIndex maps each customer id to its K nearest service-center ids,
// ascending by haversine distance at build time. The ranking is fixed
// between rebuilds; availability is checked at read time, not here.
type TopKIndex struct {
	K       int                 `json:"k"`
	Entries map[string][]string `json:"entries"`
}

// EntryFor returns a copy of the ranked center ids for a customer. The
// second result is false when the customer is absent from the index.
func (idx TopKIndex) EntryFor(customerID string) ([]string, bool) {
	entry, ok := idx.Entries[customerID]
	if !ok {
		return nil, false
	}
	return append([]string{}, entry...), true
}

// AssignmentResult is the outcome of a single assignment lookup: either a
// concrete center or a delayed status meaning no nearby capacity right now.
type AssignmentResult struct {
	Status            string     `json:"status"`
	CustomerID        string     `json:"customer_id"`
	ServiceCenterID   string     `json:"service_center_id,omitempty"`
	ServiceCenterName string     `json:"service_center_name,omitempty"`
	Location          *geo.Point `json:"location,omitempty"`
	LocationHuman     string     `json:"location_human,omitempty"`
	Message           string     `json:"message,omitempty"`
}

// RankedCenter is one entry of a customer's full candidate list, annotated
// with live availability for display and diagnostics.
type RankedCenter struct {
	ServiceCenterID string    `json:"service_center_id"`
	Name            string    `json:"name"`
	Location        geo.Point `json:"location"`
	LocationHuman   string    `json:"location_human,omitempty"`
	Available       bool      `json:"available"`
}

/// FallbackMatch is the brute-force resolver's result: nearest available
// center, the distance to it, and the least-loaded qualifying technician
// when the center has technician records.
type FallbackMatch struct {
	ServiceCenter ServiceCenter `json:"service_center"`
	Technician    *Technician   `json:"technician,omitempty"`
	DistanceKm    float64       `json:"distance_km"`
}

var allowedTransitions = map[string]string{
	StatusCreated:    StatusGenerated,
	StatusGenerated:  StatusAssigned,
	StatusAssigned:   StatusInProgress,
	StatusInProgress: StatusCompleted,
	StatusCompleted:  StatusValidated,
	StatusValidated:  StatusInvoiced,
}

// ValidateTransition guards the job card lifecycle: only the next status
// in the linear flow is reachable from the current one.
func ValidateTransition(current, next string) error {
	if allowedTransitions[current] == next {
		return nil
	}
	return errors.Join(ErrValidation, fmt.Errorf("cannot move job card from %s to %s", current, next))
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrValidation
	}
	return nil
}

func ValidateLocation(p geo.Point) error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return errors.Join(ErrValidation, fmt.Errorf("latitude %v out of range", p.Latitude))
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return errors.Join(ErrValidation, fmt.Errorf("longitude %v out of range", p.Longitude))
	}
	return nil
}

func ValidateComplaintText(text string) error {
	if len(strings.TrimSpace(text)) < minComplaintLength {
		return errors.Join(ErrValidation, errors.New("please provide more details about your vehicle issue"))
	}
	return nil
}

func ValidateTopK(k int) error {
	if k < 1 {
		return errors.Join(ErrValidation, fmt.Errorf("top-k must be at least 1, got %d", k))
	}
	return nil
}
