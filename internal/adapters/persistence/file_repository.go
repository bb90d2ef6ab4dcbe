package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"autoserve/backend/internal/domain"
)

type fileState struct {
	Customers         map[string]domain.Customer         `json:"customers"`
	ServiceCenters    map[string]domain.ServiceCenter    `json:"service_centers"`
	Technicians       map[string]domain.Technician       `json:"technicians"`
	JobCards          map[string]domain.JobCard          `json:"job_cards"`
	TechnicianReports map[string]domain.TechnicianReport `json:"technician_reports"`
	ValidationReports map[string]domain.ValidationReport `json:"validation_reports"`
	Invoices          map[string]domain.Invoice          `json:"invoices"`
	Sequence          int64                              `json:"sequence"`
}

// FileRepository keeps the whole record store in one JSON file, guarded
// by a read/write mutex. Every mutation persists atomically via
// write-temp-then-rename; a failed persist rolls the in-memory state back
// to the last durable copy.
type FileRepository struct {
	path           string
	mu             sync.RWMutex
	state          fileState
	persistedState fileState
}

func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		path = "./autoserve_runtime_data.json"
	}

	repo := &FileRepository{path: path, state: emptyState()}
	repo.persistedState = cloneFileState(repo.state)

	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func emptyState() fileState {
	return fileState{
		Customers:         map[string]domain.Customer{},
		ServiceCenters:    map[string]domain.ServiceCenter{},
		Technicians:       map[string]domain.Technician{},
		JobCards:          map[string]domain.JobCard{},
		TechnicianReports: map[string]domain.TechnicianReport{},
		ValidationReports: map[string]domain.ValidationReport{},
		Invoices:          map[string]domain.Invoice{},
	}
}

func (r *FileRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r.persistLocked()
		}
		return err
	}
	if len(content) == 0 {
		return nil
	}

	if err := json.Unmarshal(content, &r.state); err != nil {
		return fmt.Errorf("decode repository data: %w", err)
	}

	r.ensureMapsLocked()
	r.persistedState = cloneFileState(r.state)
	return nil
}

func (r *FileRepository) ensureMapsLocked() {
	if r.state.Customers == nil {
		r.state.Customers = map[string]domain.Customer{}
	}
	if r.state.ServiceCenters == nil {
		r.state.ServiceCenters = map[string]domain.ServiceCenter{}
	}
	if r.state.Technicians == nil {
		r.state.Technicians = map[string]domain.Technician{}
	}
	if r.state.JobCards == nil {
		r.state.JobCards = map[string]domain.JobCard{}
	}
	if r.state.TechnicianReports == nil {
		r.state.TechnicianReports = map[string]domain.TechnicianReport{}
	}
	if r.state.ValidationReports == nil {
		r.state.ValidationReports = map[string]domain.ValidationReport{}
	}
	if r.state.Invoices == nil {
		r.state.Invoices = map[string]domain.Invoice{}
	}
}

func (r *FileRepository) nextIDLocked(prefix string) string {
	r.state.Sequence++
	return fmt.Sprintf("%s_%d", prefix, r.state.Sequence)
}

func (r *FileRepository) persistLocked() error {
	r.ensureMapsLocked()
	body, err := json.MarshalIndent(r.state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		r.state = cloneFileState(r.persistedState)
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o600); err != nil {
		_ = os.Remove(tmp)
		r.state = cloneFileState(r.persistedState)
		return err
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		r.state = cloneFileState(r.persistedState)
		return err
	}
	r.persistedState = cloneFileState(r.state)
	return nil
}

func copyTechnician(technician domain.Technician) domain.Technician {
	technician.Specializations = append([]string{}, technician.Specializations...)
	return technician
}

func copyJobCard(card domain.JobCard) domain.JobCard {
	card.Procedures = append([]string{}, card.Procedures...)
	card.RequiredTools = append([]string{}, card.RequiredTools...)
	return card
}

func copyTechnicianReport(report domain.TechnicianReport) domain.TechnicianReport {
	report.ProceduresPerformed = append([]string{}, report.ProceduresPerformed...)
	report.ToolsUsed = append([]string{}, report.ToolsUsed...)
	report.BeforeImages = append([]string{}, report.BeforeImages...)
	report.AfterImages = append([]string{}, report.AfterImages...)
	return report
}

func copyValidationReport(report domain.ValidationReport) domain.ValidationReport {
	report.MissingProcedures = append([]string{}, report.MissingProcedures...)
	report.MissingTools = append([]string{}, report.MissingTools...)
	return report
}

func copyInvoice(invoice domain.Invoice) domain.Invoice {
	invoice.LineItems = append([]domain.InvoiceLineItem{}, invoice.LineItems...)
	return invoice
}

func cloneFileState(state fileState) fileState {
	clone := fileState{
		Customers:         make(map[string]domain.Customer, len(state.Customers)),
		ServiceCenters:    make(map[string]domain.ServiceCenter, len(state.ServiceCenters)),
		Technicians:       make(map[string]domain.Technician, len(state.Technicians)),
		JobCards:          make(map[string]domain.JobCard, len(state.JobCards)),
		TechnicianReports: make(map[string]domain.TechnicianReport, len(state.TechnicianReports)),
		ValidationReports: make(map[string]domain.ValidationReport, len(state.ValidationReports)),
		Invoices:          make(map[string]domain.Invoice, len(state.Invoices)),
		Sequence:          state.Sequence,
	}
	for id, customer := range state.Customers {
		clone.Customers[id] = customer
	}
	for id, center := range state.ServiceCenters {
		clone.ServiceCenters[id] = center
	}
	for id, technician := range state.Technicians {
		clone.Technicians[id] = copyTechnician(technician)
	}
	for id, card := range state.JobCards {
		clone.JobCards[id] = copyJobCard(card)
	}
	for id, report := range state.TechnicianReports {
		clone.TechnicianReports[id] = copyTechnicianReport(report)
	}
	for id, report := range state.ValidationReports {
		clone.ValidationReports[id] = copyValidationReport(report)
	}
	for id, invoice := range state.Invoices {
		clone.Invoices[id] = copyInvoice(invoice)
	}
	return clone
}

func sortedCustomers(items []domain.Customer) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func sortedServiceCenters(items []domain.ServiceCenter) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func sortedTechnicians(items []domain.Technician) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ServiceCenterID == items[j].ServiceCenterID {
			return items[i].ID < items[j].ID
		}
		return items[i].ServiceCenterID < items[j].ServiceCenterID
	})
}

func sortedJobCards(items []domain.JobCard) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func (r *FileRepository) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.state.Customers))
	for _, customer := range r.state.Customers {
		result = append(result, customer)
	}
	sortedCustomers(result)
	return result, nil
}

func (r *FileRepository) GetCustomer(_ context.Context, id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.state.Customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrNotFound
	}
	return customer, nil
}

func (r *FileRepository) UpsertCustomer(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if customer.ID == "" {
		customer.ID = r.nextIDLocked("customer")
	}
	if current, ok := r.state.Customers[customer.ID]; ok {
		customer.CreatedAt = current.CreatedAt
	} else {
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now
	r.state.Customers[customer.ID] = customer

	if err := r.persistLocked(); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (r *FileRepository) ListServiceCenters(_ context.Context) ([]domain.ServiceCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.ServiceCenter, 0, len(r.state.ServiceCenters))
	for _, center := range r.state.ServiceCenters {
		result = append(result, center)
	}
	sortedServiceCenters(result)
	return result, nil
}

func (r *FileRepository) GetServiceCenter(_ context.Context, id string) (domain.ServiceCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	center, ok := r.state.ServiceCenters[id]
	if !ok {
		return domain.ServiceCenter{}, domain.ErrNotFound
	}
	return center, nil
}

func (r *FileRepository) UpsertServiceCenter(_ context.Context, center domain.ServiceCenter) (domain.ServiceCenter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if center.ID == "" {
		center.ID = r.nextIDLocked("center")
	}
	if current, ok := r.state.ServiceCenters[center.ID]; ok {
		center.CreatedAt = current.CreatedAt
	} else {
		center.CreatedAt = now
	}
	center.UpdatedAt = now
	r.state.ServiceCenters[center.ID] = center

	if err := r.persistLocked(); err != nil {
		return domain.ServiceCenter{}, err
	}
	return center, nil
}

func (r *FileRepository) DeleteServiceCenter(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state.ServiceCenters[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.state.ServiceCenters, id)
	for technicianID, technician := range r.state.Technicians {
		if technician.ServiceCenterID == id {
			delete(r.state.Technicians, technicianID)
		}
	}
	return r.persistLocked()
}

func (r *FileRepository) ListTechnicians(_ context.Context) ([]domain.Technician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Technician, 0, len(r.state.Technicians))
	for _, technician := range r.state.Technicians {
		result = append(result, copyTechnician(technician))
	}
	sortedTechnicians(result)
	return result, nil
}

func (r *FileRepository) ListTechniciansByCenter(_ context.Context, serviceCenterID string) ([]domain.Technician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Technician, 0)
	for _, technician := range r.state.Technicians {
		if technician.ServiceCenterID == serviceCenterID {
			result = append(result, copyTechnician(technician))
		}
	}
	sortedTechnicians(result)
	return result, nil
}

func (r *FileRepository) GetTechnician(_ context.Context, id string) (domain.Technician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	technician, ok := r.state.Technicians[id]
	if !ok {
		return domain.Technician{}, domain.ErrNotFound
	}
	return copyTechnician(technician), nil
}

func (r *FileRepository) UpsertTechnician(_ context.Context, technician domain.Technician) (domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if technician.ID == "" {
		technician.ID = r.nextIDLocked("technician")
	}
	if current, ok := r.state.Technicians[technician.ID]; ok {
		technician.CreatedAt = current.CreatedAt
	} else {
		technician.CreatedAt = now
	}
	technician.UpdatedAt = now
	r.state.Technicians[technician.ID] = copyTechnician(technician)

	if err := r.persistLocked(); err != nil {
		return domain.Technician{}, err
	}
	return technician, nil
}

func (r *FileRepository) ListJobCards(_ context.Context) ([]domain.JobCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.JobCard, 0, len(r.state.JobCards))
	for _, card := range r.state.JobCards {
		result = append(result, copyJobCard(card))
	}
	sortedJobCards(result)
	return result, nil
}

func (r *FileRepository) ListJobCardsByTechnician(_ context.Context, technicianID string) ([]domain.JobCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.JobCard, 0)
	for _, card := range r.state.JobCards {
		if card.AssignedTechnicianID == technicianID {
			result = append(result, copyJobCard(card))
		}
	}
	sortedJobCards(result)
	return result, nil
}

func (r *FileRepository) GetJobCard(_ context.Context, id string) (domain.JobCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.state.JobCards[id]
	if !ok {
		return domain.JobCard{}, domain.ErrNotFound
	}
	return copyJobCard(card), nil
}

func (r *FileRepository) CreateJobCard(_ context.Context, card domain.JobCard) (domain.JobCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if card.ID == "" {
		card.ID = r.nextIDLocked("jobcard")
	}
	if _, exists := r.state.JobCards[card.ID]; exists {
		return domain.JobCard{}, domain.ErrConflict
	}

	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now
	r.state.JobCards[card.ID] = copyJobCard(card)

	if err := r.persistLocked(); err != nil {
		return domain.JobCard{}, err
	}
	return card, nil
}

func (r *FileRepository) UpdateJobCard(_ context.Context, card domain.JobCard) (domain.JobCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.state.JobCards[card.ID]
	if !ok {
		return domain.JobCard{}, domain.ErrNotFound
	}
	card.CreatedAt = current.CreatedAt
	card.UpdatedAt = time.Now().UTC()
	r.state.JobCards[card.ID] = copyJobCard(card)

	if err := r.persistLocked(); err != nil {
		return domain.JobCard{}, err
	}
	return card, nil
}

func (r *FileRepository) GetTechnicianReport(_ context.Context, jobCardID string) (domain.TechnicianReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.state.TechnicianReports[jobCardID]
	if !ok {
		return domain.TechnicianReport{}, domain.ErrNotFound
	}
	return copyTechnicianReport(report), nil
}

// UpsertTechnicianReport keys the single report per job card by the job
// card id; resubmission replaces the work details but keeps the record.
func (r *FileRepository) UpsertTechnicianReport(_ context.Context, report domain.TechnicianReport) (domain.TechnicianReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if current, ok := r.state.TechnicianReports[report.JobCardID]; ok {
		report.ID = current.ID
		report.CreatedAt = current.CreatedAt
	} else {
		report.ID = r.nextIDLocked("report")
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	r.state.TechnicianReports[report.JobCardID] = copyTechnicianReport(report)

	if err := r.persistLocked(); err != nil {
		return domain.TechnicianReport{}, err
	}
	return report, nil
}

func (r *FileRepository) GetValidationReport(_ context.Context, jobCardID string) (domain.ValidationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.state.ValidationReports[jobCardID]
	if !ok {
		return domain.ValidationReport{}, domain.ErrNotFound
	}
	return copyValidationReport(report), nil
}

func (r *FileRepository) CreateValidationReport(_ context.Context, report domain.ValidationReport) (domain.ValidationReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.state.ValidationReports[report.JobCardID]; exists {
		return domain.ValidationReport{}, domain.ErrConflict
	}

	now := time.Now().UTC()
	report.ID = r.nextIDLocked("validation")
	report.CreatedAt = now
	report.UpdatedAt = now
	r.state.ValidationReports[report.JobCardID] = copyValidationReport(report)

	if err := r.persistLocked(); err != nil {
		return domain.ValidationReport{}, err
	}
	return report, nil
}

func (r *FileRepository) GetInvoice(_ context.Context, jobCardID string) (domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoice, ok := r.state.Invoices[jobCardID]
	if !ok {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return copyInvoice(invoice), nil
}

func (r *FileRepository) CreateInvoice(_ context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.state.Invoices[invoice.JobCardID]; exists {
		return domain.Invoice{}, domain.ErrConflict
	}

	now := time.Now().UTC()
	invoice.ID = r.nextIDLocked("invoice")
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	r.state.Invoices[invoice.JobCardID] = copyInvoice(invoice)

	if err := r.persistLocked(); err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}
