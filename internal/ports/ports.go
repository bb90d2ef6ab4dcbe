package ports

import (
	"context"

	"autoserve/backend/internal/domain"
)

// Telemetry records counted events with free-form attributes. Adapters
// decide whether that means a no-op, a log line, or a Prometheus counter.
type Telemetry interface {
	Record(name string, attributes map[string]string)
}

// IndexBlob persists the serialized top-K index under a single well-known
// key. Store must be atomic: a concurrent load never observes a partial
// write.
type IndexBlob interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, payload []byte) error
	Exists(ctx context.Context) (bool, error)
}

// Oracle is the opaque scoring collaborator backing complaint intake, job
// card generation, and evidence checks. Implementations may call out to a
// model or answer from deterministic rules.
type Oracle interface {
	ValidateComplaint(ctx context.Context, complaintText string) (domain.ComplaintVerdict, error)
	GenerateJobCard(ctx context.Context, complaintText string, vehicle domain.Vehicle) (domain.JobCardDraft, error)
	ValidateImages(ctx context.Context, beforeImages, afterImages []string) (domain.MediaVerdict, error)
	ValidateAudio(ctx context.Context, audioPath string) (domain.MediaVerdict, error)
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Repository interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (domain.Customer, error)
	UpsertCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error)

	ListServiceCenters(ctx context.Context) ([]domain.ServiceCenter, error)
	GetServiceCenter(ctx context.Context, id string) (domain.ServiceCenter, error)
	UpsertServiceCenter(ctx context.Context, center domain.ServiceCenter) (domain.ServiceCenter, error)
	DeleteServiceCenter(ctx context.Context, id string) error

	ListTechnicians(ctx context.Context) ([]domain.Technician, error)
	ListTechniciansByCenter(ctx context.Context, serviceCenterID string) ([]domain.Technician, error)
	GetTechnician(ctx context.Context, id string) (domain.Technician, error)
	UpsertTechnician(ctx context.Context, technician domain.Technician) (domain.Technician, error)

	ListJobCards(ctx context.Context) ([]domain.JobCard, error)
	ListJobCardsByTechnician(ctx context.Context, technicianID string) ([]domain.JobCard, error)
	GetJobCard(ctx context.Context, id string) (domain.JobCard, error)
	CreateJobCard(ctx context.Context, card domain.JobCard) (domain.JobCard, error)
	UpdateJobCard(ctx context.Context, card domain.JobCard) (domain.JobCard, error)

	GetTechnicianReport(ctx context.Context, jobCardID string) (domain.TechnicianReport, error)
	UpsertTechnicianReport(ctx context.Context, report domain.TechnicianReport) (domain.TechnicianReport, error)

	GetValidationReport(ctx context.Context, jobCardID string) (domain.ValidationReport, error)
	CreateValidationReport(ctx context.Context, report domain.ValidationReport) (domain.ValidationReport, error)

	GetInvoice(ctx context.Context, jobCardID string) (domain.Invoice, error)
	CreateInvoice(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error)
}
