package domain

import (
	"fmt"
	"math"
)

// Validation scoring weights. Missing procedures weigh more than missing
// tools; a failed image check weighs more than a failed audio check.
const (
	procedurePenalty      = 0.15
	toolPenalty           = 0.05
	imageFailPenalty      = 0.30
	imageUncertainPenalty = 0.10
	audioFailPenalty      = 0.20

	// ConfidenceApprovalThreshold separates approved validations from
	// those flagged for human review.
	ConfidenceApprovalThreshold = 0.8
)

const (
	DefaultLaborRate = 75.0
	DefaultTaxRate   = 0.1
)

// ValidationInput carries everything the completion check compares: the
// job card's requirements against the technician's report, plus the
// oracle's media verdicts.
type ValidationInput struct {
	RequiredProcedures  []string
	PerformedProcedures []string
	RequiredTools       []string
	UsedTools           []string
	ImageVerdict        MediaVerdict
	AudioVerdict        MediaVerdict
}

// EvaluateCompletion diffs required against performed work and scores the
// result. The confidence score starts at 1.0 and loses a fixed penalty per
// missing procedure and tool plus media-verdict penalties, floored at zero
// and rounded to two decimals.
func EvaluateCompletion(input ValidationInput) ValidationReport {
	missingProcedures := missingFrom(input.RequiredProcedures, input.PerformedProcedures)
	missingTools := missingFrom(input.RequiredTools, input.UsedTools)

	score := 1.0
	score -= float64(len(missingProcedures)) * procedurePenalty
	score -= float64(len(missingTools)) * toolPenalty
	switch input.ImageVerdict.Result {
	case MediaResultFail:
		score -= imageFailPenalty
	case MediaResultUncertain:
		score -= imageUncertainPenalty
	}
	if input.AudioVerdict.Result == MediaResultFail {
		score -= audioFailPenalty
	}
	score = math.Round(math.Max(0, score)*100) / 100

	return ValidationReport{
		ConfidenceScore:   score,
		BillingRisk:       assessBillingRisk(missingProcedures, input.ImageVerdict, input.AudioVerdict),
		MissingProcedures: missingProcedures,
		MissingTools:      missingTools,
		ImageValidation:   input.ImageVerdict,
		AudioValidation:   input.AudioVerdict,
	}
}

func assessBillingRisk(missingProcedures []string, image, audio MediaVerdict) bool {
	if len(missingProcedures) > 2 {
		return true
	}
	if image.Result == MediaResultFail {
		return true
	}
	if audio.Result == MediaResultFail && len(missingProcedures) > 0 {
		return true
	}
	return false
}

// missingFrom returns the required entries absent from done, preserving
// the required order.
func missingFrom(required, done []string) []string {
	doneSet := make(map[string]bool, len(done))
	for _, entry := range done {
		doneSet[entry] = true
	}
	missing := make([]string, 0)
	for _, entry := range required {
		if !doneSet[entry] {
			missing = append(missing, entry)
		}
	}
	return missing
}

// InvoiceInput is the cost breakdown for one job card. Zero LaborRate and
// TaxRate fall back to the defaults.
type InvoiceInput struct {
	LaborHours        float64
	LaborRate         float64
	PartsCost         float64
	AdditionalCharges float64
	Discount          float64
	TaxRate           float64
	Notes             string
}

// ComputeInvoice builds the invoice amounts and line items: labor at the
// hourly rate, parts and extras, discount subtracted, then tax applied to
// the subtotal.
func ComputeInvoice(input InvoiceInput) Invoice {
	rate := input.LaborRate
	if rate <= 0 {
		rate = DefaultLaborRate
	}
	taxRate := input.TaxRate
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}

	laborCost := input.LaborHours * rate
	subtotal := laborCost + input.PartsCost + input.AdditionalCharges - input.Discount
	tax := subtotal * taxRate

	lineItems := []InvoiceLineItem{
		{Description: "Labor", Hours: input.LaborHours, Rate: rate, Amount: laborCost},
	}
	if input.PartsCost > 0 {
		lineItems = append(lineItems, InvoiceLineItem{Description: "Parts", Amount: input.PartsCost})
	}
	if input.AdditionalCharges > 0 {
		lineItems = append(lineItems, InvoiceLineItem{Description: "Additional Charges", Amount: input.AdditionalCharges})
	}
	if input.Discount > 0 {
		lineItems = append(lineItems, InvoiceLineItem{Description: "Discount", Amount: -input.Discount})
	}
	lineItems = append(lineItems, InvoiceLineItem{Description: fmt.Sprintf("Tax (%.0f%%)", taxRate*100), Amount: tax})

	return Invoice{
		LaborCost:         laborCost,
		PartsCost:         input.PartsCost,
		AdditionalCharges: input.AdditionalCharges,
		Discount:          input.Discount,
		TaxRate:           taxRate,
		TotalAmount:       subtotal + tax,
		LineItems:         lineItems,
		Notes:             input.Notes,
		PaymentStatus:     PaymentPending,
	}
}
