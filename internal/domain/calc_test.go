package domain

import (
	"math"
	"reflect"
	"testing"
)

func TestEvaluateCompletionFullCompliance(t *testing.T) {
	report := EvaluateCompletion(ValidationInput{
		RequiredProcedures:  []string{"Inspect pads", "Replace pads"},
		PerformedProcedures: []string{"Inspect pads", "Replace pads"},
		RequiredTools:       []string{"Torque wrench"},
		UsedTools:           []string{"Torque wrench"},
		ImageVerdict:        MediaVerdict{Result: MediaResultPass},
		AudioVerdict:        MediaVerdict{Result: MediaResultPass},
	})

	if report.ConfidenceScore != 1.0 {
		t.Fatalf("expected full score, got %v", report.ConfidenceScore)
	}
	if report.BillingRisk {
		t.Fatalf("did not expect billing risk")
	}
	if len(report.MissingProcedures) != 0 || len(report.MissingTools) != 0 {
		t.Fatalf("expected nothing missing, got %v / %v", report.MissingProcedures, report.MissingTools)
	}
}

func TestEvaluateCompletionPenalties(t *testing.T) {
	tests := []struct {
		name  string
		input ValidationInput
		want  float64
	}{
		{
			"one missing procedure",
			ValidationInput{
				RequiredProcedures:  []string{"A", "B"},
				PerformedProcedures: []string{"A"},
				ImageVerdict:        MediaVerdict{Result: MediaResultPass},
				AudioVerdict:        MediaVerdict{Result: MediaResultPass},
			},
			0.85,
		},
		{
			"missing tool and uncertain images",
			ValidationInput{
				RequiredProcedures:  []string{"A"},
				PerformedProcedures: []string{"A"},
				RequiredTools:       []string{"T1", "T2"},
				UsedTools:           []string{"T1"},
				ImageVerdict:        MediaVerdict{Result: MediaResultUncertain},
				AudioVerdict:        MediaVerdict{Result: MediaResultPass},
			},
			0.85,
		},
		{
			"failed image and audio",
			ValidationInput{
				RequiredProcedures:  []string{"A"},
				PerformedProcedures: []string{"A"},
				ImageVerdict:        MediaVerdict{Result: MediaResultFail},
				AudioVerdict:        MediaVerdict{Result: MediaResultFail},
			},
			0.50,
		},
		{
			"score floors at zero",
			ValidationInput{
				RequiredProcedures: []string{"A", "B", "C", "D", "E", "F", "G"},
				ImageVerdict:       MediaVerdict{Result: MediaResultFail},
				AudioVerdict:       MediaVerdict{Result: MediaResultFail},
			},
			0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := EvaluateCompletion(tc.input)
			if math.Abs(report.ConfidenceScore-tc.want) > 1e-9 {
				t.Fatalf("score = %v, want %v", report.ConfidenceScore, tc.want)
			}
		})
	}
}

func TestEvaluateCompletionMissingOrderPreserved(t *testing.T) {
	report := EvaluateCompletion(ValidationInput{
		RequiredProcedures:  []string{"first", "second", "third"},
		PerformedProcedures: []string{"second"},
		ImageVerdict:        MediaVerdict{Result: MediaResultPass},
		AudioVerdict:        MediaVerdict{Result: MediaResultPass},
	})
	if !reflect.DeepEqual(report.MissingProcedures, []string{"first", "third"}) {
		t.Fatalf("missing procedures = %v, want required order preserved", report.MissingProcedures)
	}
}

func TestBillingRiskRules(t *testing.T) {
	tests := []struct {
		name  string
		input ValidationInput
		want  bool
	}{
		{
			"more than two missing procedures",
			ValidationInput{
				RequiredProcedures: []string{"A", "B", "C"},
				ImageVerdict:       MediaVerdict{Result: MediaResultPass},
				AudioVerdict:       MediaVerdict{Result: MediaResultPass},
			},
			true,
		},
		{
			"failed image check",
			ValidationInput{
				ImageVerdict: MediaVerdict{Result: MediaResultFail},
				AudioVerdict: MediaVerdict{Result: MediaResultPass},
			},
			true,
		},
		{
			"failed audio with a missing procedure",
			ValidationInput{
				RequiredProcedures: []string{"A"},
				ImageVerdict:       MediaVerdict{Result: MediaResultPass},
				AudioVerdict:       MediaVerdict{Result: MediaResultFail},
			},
			true,
		},
		{
			"failed audio alone is no risk",
			ValidationInput{
				ImageVerdict: MediaVerdict{Result: MediaResultPass},
				AudioVerdict: MediaVerdict{Result: MediaResultFail},
			},
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := EvaluateCompletion(tc.input)
			if report.BillingRisk != tc.want {
				t.Fatalf("billing risk = %v, want %v", report.BillingRisk, tc.want)
			}
		})
	}
}

func TestComputeInvoiceDefaults(t *testing.T) {
	invoice := ComputeInvoice(InvoiceInput{LaborHours: 2})

	if invoice.LaborCost != 150 {
		t.Fatalf("labor cost = %v, want 150 at the default rate", invoice.LaborCost)
	}
	if invoice.TaxRate != DefaultTaxRate {
		t.Fatalf("tax rate = %v, want default", invoice.TaxRate)
	}
	if math.Abs(invoice.TotalAmount-165) > 1e-9 {
		t.Fatalf("total = %v, want 165", invoice.TotalAmount)
	}
	if invoice.PaymentStatus != PaymentPending {
		t.Fatalf("payment status = %q, want pending", invoice.PaymentStatus)
	}
}

func TestComputeInvoiceFullBreakdown(t *testing.T) {
	invoice := ComputeInvoice(InvoiceInput{
		LaborHours:        3,
		LaborRate:         100,
		PartsCost:         200,
		AdditionalCharges: 50,
		Discount:          25,
		TaxRate:           0.2,
	})

	// 300 + 200 + 50 - 25 = 525 subtotal, 105 tax
	if math.Abs(invoice.TotalAmount-630) > 1e-9 {
		t.Fatalf("total = %v, want 630", invoice.TotalAmount)
	}

	descriptions := make([]string, 0, len(invoice.LineItems))
	for _, item := range invoice.LineItems {
		descriptions = append(descriptions, item.Description)
	}
	want := []string{"Labor", "Parts", "Additional Charges", "Discount", "Tax (20%)"}
	if !reflect.DeepEqual(descriptions, want) {
		t.Fatalf("line items = %v, want %v", descriptions, want)
	}

	for _, item := range invoice.LineItems {
		if item.Description == "Discount" && item.Amount != -25 {
			t.Fatalf("discount line = %v, want -25", item.Amount)
		}
	}
}
