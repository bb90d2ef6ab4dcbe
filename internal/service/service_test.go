package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"autoserve/backend/internal/adapters/indexfile"
	"autoserve/backend/internal/adapters/persistence"
	"autoserve/backend/internal/adapters/telemetry"
	"autoserve/backend/internal/assignment"
	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/geo"
)

var (
	vancouverPoint = geo.Point{Latitude: 49.2827, Longitude: -123.1207}
	burnabyPoint   = geo.Point{Latitude: 49.2300, Longitude: -122.9980}
)

// stubOracle gives the workflow tests full control over verdicts, so they
// exercise the service logic rather than the scoring rules.
type stubOracle struct {
	rejectComplaints bool
	imageResult      string
	audioResult      string
}

func (o *stubOracle) ValidateComplaint(_ context.Context, complaint string) (domain.ComplaintVerdict, error) {
	if o.rejectComplaints {
		return domain.ComplaintVerdict{Valid: false, Reason: "not a vehicle fault"}, nil
	}
	return domain.ComplaintVerdict{Valid: true, Reason: "vehicle fault"}, nil
}

func (o *stubOracle) GenerateJobCard(context.Context, string, domain.Vehicle) (domain.JobCardDraft, error) {
	return domain.JobCardDraft{
		Issue:            "Brake system degradation",
		Severity:         "high",
		RepairType:       "brake_service",
		Procedures:       []string{"Inspect pads", "Replace pads"},
		Tools:            []string{"Torque wrench"},
		LaborHours:       2,
		EstimatedCostMin: 100,
		EstimatedCostMax: 300,
	}, nil
}

func (o *stubOracle) ValidateImages(context.Context, []string, []string) (domain.MediaVerdict, error) {
	result := o.imageResult
	if result == "" {
		result = domain.MediaResultPass
	}
	return domain.MediaVerdict{Result: result, Confidence: 0.9}, nil
}

func (o *stubOracle) ValidateAudio(context.Context, string) (domain.MediaVerdict, error) {
	result := o.audioResult
	if result == "" {
		result = domain.MediaResultPass
	}
	return domain.MediaVerdict{Result: result, Confidence: 0.9}, nil
}

func (o *stubOracle) Transcribe(context.Context, string) (string, error) {
	return "engine idling steady", nil
}

func newTestService(t *testing.T, oracle *stubOracle) (*Service, *persistence.FileRepository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := persistence.NewFileRepository(filepath.Join(dir, "data.json"))
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	blob := indexfile.New(filepath.Join(dir, "index.json"))
	store, err := assignment.NewStore(repo, blob, telemetry.Noop{}, 2)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	svc, err := New(repo, telemetry.Noop{}, oracle, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, repo
}

func seedWorkflowFixtures(t *testing.T, repo *persistence.FileRepository, centerAvailable bool) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.UpsertCustomer(ctx, domain.Customer{
		ID: "C1", Name: "Alice", Location: vancouverPoint,
		Vehicle: domain.Vehicle{Brand: "Toyota", Model: "Corolla", FuelType: "petrol"},
	})
	if err != nil {
		t.Fatalf("UpsertCustomer: %v", err)
	}
	_, err = repo.UpsertServiceCenter(ctx, domain.ServiceCenter{
		ID: "SC1", Name: "Downtown Auto Care", Location: vancouverPoint, TechnicianAvailable: centerAvailable,
	})
	if err != nil {
		t.Fatalf("UpsertServiceCenter SC1: %v", err)
	}
	_, err = repo.UpsertServiceCenter(ctx, domain.ServiceCenter{
		ID: "SC2", Name: "Metrotown Motors", Location: burnabyPoint, TechnicianAvailable: centerAvailable,
	})
	if err != nil {
		t.Fatalf("UpsertServiceCenter SC2: %v", err)
	}
	_, err = repo.UpsertTechnician(ctx, domain.Technician{
		ID: "T1", ServiceCenterID: "SC1", Name: "Dana", EmployeeID: "TECH-0001",
		Specializations:    []string{"Brakes", "Suspension"},
		AvailabilityStatus: domain.TechnicianAvailable, MaxWorkload: 3,
	})
	if err != nil {
		t.Fatalf("UpsertTechnician: %v", err)
	}
}

func TestFullWorkflow(t *testing.T) {
	oracle := &stubOracle{}
	svc, repo := newTestService(t, oracle)
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	card, err := svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "my brakes squeal loudly"})
	if err != nil {
		t.Fatalf("SubmitServiceRequest: %v", err)
	}
	if !strings.HasPrefix(card.ID, "JC-") {
		t.Fatalf("job card id = %q, want JC- prefix", card.ID)
	}
	if card.Status != domain.StatusCreated {
		t.Fatalf("status = %q, want CREATED", card.Status)
	}

	card, err = svc.GenerateJobCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("GenerateJobCard: %v", err)
	}
	if card.Status != domain.StatusGenerated || card.RepairType != "brake_service" {
		t.Fatalf("generated card = %+v", card)
	}
	if card.EstimatedCost != 200 {
		t.Fatalf("estimated cost = %v, want the midpoint 200", card.EstimatedCost)
	}

	card, result, err := svc.AssignJobCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("AssignJobCard: %v", err)
	}
	if result.Status != domain.AssignmentStatusAssigned || result.ServiceCenterID != "SC1" {
		t.Fatalf("assignment = %+v, want SC1", result)
	}
	if card.Status != domain.StatusAssigned || card.AssignedTechnicianID != "T1" {
		t.Fatalf("assigned card = %+v", card)
	}

	technician, err := repo.GetTechnician(ctx, "T1")
	if err != nil {
		t.Fatalf("GetTechnician: %v", err)
	}
	if technician.CurrentWorkload != 1 {
		t.Fatalf("workload = %d, want 1 after assignment", technician.CurrentWorkload)
	}

	card, err = svc.StartJobCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("StartJobCard: %v", err)
	}
	if card.Status != domain.StatusInProgress {
		t.Fatalf("status = %q, want IN_PROGRESS", card.Status)
	}

	report, err := svc.SubmitTechnicianReport(ctx, card.ID, TechnicianReportInput{
		ProceduresPerformed: []string{"Inspect pads", "Replace pads"},
		ToolsUsed:           []string{"Torque wrench"},
		LaborHours:          2.5,
		BeforeImages:        []string{"before.jpg"},
		AfterImages:         []string{"after.jpg"},
		AudioSample:         "engine.wav",
	})
	if err != nil {
		t.Fatalf("SubmitTechnicianReport: %v", err)
	}
	if report.JobCardID != card.ID {
		t.Fatalf("report job card = %q", report.JobCardID)
	}

	technician, err = repo.GetTechnician(ctx, "T1")
	if err != nil {
		t.Fatalf("GetTechnician after report: %v", err)
	}
	if technician.CurrentWorkload != 0 {
		t.Fatalf("workload = %d, want released to 0", technician.CurrentWorkload)
	}

	validation, err := svc.ValidateCompletion(ctx, card.ID)
	if err != nil {
		t.Fatalf("ValidateCompletion: %v", err)
	}
	if validation.ConfidenceScore != 1.0 || validation.BillingRisk {
		t.Fatalf("validation = %+v, want full confidence", validation)
	}

	invoice, err := svc.GenerateInvoice(ctx, card.ID, InvoiceRequest{PartsCost: 120, Discount: 20})
	if err != nil {
		t.Fatalf("GenerateInvoice: %v", err)
	}
	// Labor 2.5h at the default 75/h = 187.50; +120 parts -20 discount
	// = 287.50 subtotal, 10% tax.
	if invoice.TotalAmount != 316.25 {
		t.Fatalf("total = %v, want 316.25", invoice.TotalAmount)
	}

	// Regeneration returns the stored invoice, not a new one.
	again, err := svc.GenerateInvoice(ctx, card.ID, InvoiceRequest{PartsCost: 999})
	if err != nil {
		t.Fatalf("second GenerateInvoice: %v", err)
	}
	if again.ID != invoice.ID || again.TotalAmount != invoice.TotalAmount {
		t.Fatalf("invoice regenerated instead of reused: %+v", again)
	}

	audit, err := svc.BuildAuditReport(ctx, card.ID)
	if err != nil {
		t.Fatalf("BuildAuditReport: %v", err)
	}
	if audit.TechnicianReport == nil || audit.ValidationReport == nil || audit.Invoice == nil {
		t.Fatalf("audit incomplete: %+v", audit)
	}
	if audit.AudioTranscript == "" {
		t.Fatalf("audit must carry the audio transcript")
	}
	if audit.JobCard.Status != domain.StatusInvoiced {
		t.Fatalf("final status = %q, want INVOICED", audit.JobCard.Status)
	}
}

func TestSubmitServiceRequestRejections(t *testing.T) {
	oracle := &stubOracle{}
	svc, repo := newTestService(t, oracle)
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	_, err := svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "short"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("short complaint: expected ErrValidation, got %v", err)
	}

	_, err = svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "ghost", ComplaintText: "my brakes squeal loudly"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown customer: expected ErrNotFound, got %v", err)
	}

	oracle.rejectComplaints = true
	_, err = svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "this complaint is long enough but off topic"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("rejected complaint: expected ErrValidation, got %v", err)
	}
}

func TestAssignJobCardDelayedLeavesCardGenerated(t *testing.T) {
	svc, repo := newTestService(t, &stubOracle{})
	seedWorkflowFixtures(t, repo, false)
	ctx := context.Background()

	card, err := svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "my brakes squeal loudly"})
	if err != nil {
		t.Fatalf("SubmitServiceRequest: %v", err)
	}
	if _, err = svc.GenerateJobCard(ctx, card.ID); err != nil {
		t.Fatalf("GenerateJobCard: %v", err)
	}

	card, result, err := svc.AssignJobCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("AssignJobCard: %v", err)
	}
	if result.Status != domain.AssignmentStatusDelayed {
		t.Fatalf("assignment status = %q, want delayed", result.Status)
	}
	if card.Status != domain.StatusGenerated || card.AssignedServiceCenterID != "" {
		t.Fatalf("delayed assignment must leave the card untouched: %+v", card)
	}
}

func TestSubmitTechnicianReportAutoStarts(t *testing.T) {
	svc, repo := newTestService(t, &stubOracle{})
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	card, err := svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "my brakes squeal loudly"})
	if err != nil {
		t.Fatalf("SubmitServiceRequest: %v", err)
	}
	if _, err = svc.GenerateJobCard(ctx, card.ID); err != nil {
		t.Fatalf("GenerateJobCard: %v", err)
	}
	if _, _, err = svc.AssignJobCard(ctx, card.ID); err != nil {
		t.Fatalf("AssignJobCard: %v", err)
	}

	// No explicit start; the report must move ASSIGNED straight through.
	if _, err = svc.SubmitTechnicianReport(ctx, card.ID, TechnicianReportInput{
		ProceduresPerformed: []string{"Inspect pads"},
	}); err != nil {
		t.Fatalf("SubmitTechnicianReport: %v", err)
	}

	card, err = svc.GetJobCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetJobCard: %v", err)
	}
	if card.Status != domain.StatusCompleted {
		t.Fatalf("status = %q, want COMPLETED", card.Status)
	}
}

func TestSubmitTechnicianReportRequiresProcedures(t *testing.T) {
	svc, repo := newTestService(t, &stubOracle{})
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	card, err := svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "my brakes squeal loudly"})
	if err != nil {
		t.Fatalf("SubmitServiceRequest: %v", err)
	}
	if _, err = svc.GenerateJobCard(ctx, card.ID); err != nil {
		t.Fatalf("GenerateJobCard: %v", err)
	}
	if _, _, err = svc.AssignJobCard(ctx, card.ID); err != nil {
		t.Fatalf("AssignJobCard: %v", err)
	}

	_, err = svc.SubmitTechnicianReport(ctx, card.ID, TechnicianReportInput{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty report: expected ErrValidation, got %v", err)
	}
}

func TestValidateCompletionFlagsMissingWork(t *testing.T) {
	svc, repo := newTestService(t, &stubOracle{imageResult: domain.MediaResultFail})
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	card, err := svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "my brakes squeal loudly"})
	if err != nil {
		t.Fatalf("SubmitServiceRequest: %v", err)
	}
	if _, err = svc.GenerateJobCard(ctx, card.ID); err != nil {
		t.Fatalf("GenerateJobCard: %v", err)
	}
	if _, _, err = svc.AssignJobCard(ctx, card.ID); err != nil {
		t.Fatalf("AssignJobCard: %v", err)
	}
	if _, err = svc.SubmitTechnicianReport(ctx, card.ID, TechnicianReportInput{
		ProceduresPerformed: []string{"Inspect pads"},
	}); err != nil {
		t.Fatalf("SubmitTechnicianReport: %v", err)
	}

	validation, err := svc.ValidateCompletion(ctx, card.ID)
	if err != nil {
		t.Fatalf("ValidateCompletion: %v", err)
	}
	// One missing procedure (0.15), one missing tool (0.05), failed
	// images (0.30).
	if validation.ConfidenceScore != 0.5 {
		t.Fatalf("score = %v, want 0.5", validation.ConfidenceScore)
	}
	if !validation.BillingRisk {
		t.Fatalf("failed images must flag billing risk")
	}
	if len(validation.MissingProcedures) != 1 || validation.MissingProcedures[0] != "Replace pads" {
		t.Fatalf("missing procedures = %v", validation.MissingProcedures)
	}
}

func TestValidateCompletionRequiresCompletedCard(t *testing.T) {
	svc, repo := newTestService(t, &stubOracle{})
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	card, err := svc.SubmitServiceRequest(ctx, ServiceRequest{CustomerID: "C1", ComplaintText: "my brakes squeal loudly"})
	if err != nil {
		t.Fatalf("SubmitServiceRequest: %v", err)
	}

	if _, err := svc.ValidateCompletion(ctx, card.ID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected transition error for a CREATED card, got %v", err)
	}
}

func TestNearbyCentersAndFallback(t *testing.T) {
	svc, repo := newTestService(t, &stubOracle{})
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	ranked, err := svc.NearbyCenters(ctx, "C1")
	if err != nil {
		t.Fatalf("NearbyCenters: %v", err)
	}
	if len(ranked) != 2 || ranked[0].ServiceCenterID != "SC1" {
		t.Fatalf("ranked = %+v, want SC1 nearest", ranked)
	}

	match, err := svc.FallbackMatch(ctx, "C1", "brakes")
	if err != nil {
		t.Fatalf("FallbackMatch: %v", err)
	}
	if match.ServiceCenter.ID != "SC1" || match.Technician == nil || match.Technician.ID != "T1" {
		t.Fatalf("match = %+v, want SC1 with T1", match)
	}

	if _, err := svc.NearbyCenters(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown customer: expected ErrNotFound, got %v", err)
	}
}

func TestRebuildIndexPicksUpNewCustomer(t *testing.T) {
	svc, repo := newTestService(t, &stubOracle{})
	seedWorkflowFixtures(t, repo, true)
	ctx := context.Background()

	// Warm the index with the original dataset.
	if _, err := svc.AssignServiceCenter(ctx, "C1"); err != nil {
		t.Fatalf("AssignServiceCenter: %v", err)
	}

	if _, err := repo.UpsertCustomer(ctx, domain.Customer{
		ID: "C2", Name: "Brian", Location: burnabyPoint,
	}); err != nil {
		t.Fatalf("UpsertCustomer: %v", err)
	}

	// Not indexed until a rebuild.
	if _, err := svc.AssignServiceCenter(ctx, "C2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before rebuild, got %v", err)
	}

	index, err := svc.RebuildIndex(ctx)
	if err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	if len(index.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 after rebuild", len(index.Entries))
	}

	result, err := svc.AssignServiceCenter(ctx, "C2")
	if err != nil {
		t.Fatalf("AssignServiceCenter after rebuild: %v", err)
	}
	if result.ServiceCenterID != "SC2" {
		t.Fatalf("assigned %q, want the Burnaby center for the Burnaby customer", result.ServiceCenterID)
	}
}
