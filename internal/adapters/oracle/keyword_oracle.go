// Package oracle provides a deterministic, rule-based stand-in for the
// external analysis services: complaint triage, job-card drafting and
// media checks. The same input always yields the same verdict.
package oracle

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"autoserve/backend/internal/domain"
)

type KeywordOracle struct{}

func NewKeywordOracle() *KeywordOracle {
	return &KeywordOracle{}
}

var automotiveKeywords = []string{
	"engine", "brake", "oil", "tire", "tyre", "battery", "clutch",
	"transmission", "gear", "steering", "suspension", "exhaust",
	"radiator", "coolant", "alternator", "starter", "ignition",
	"headlight", "taillight", "wiper", "ac ", "air conditioning",
	"heater", "noise", "vibration", "leak", "smoke", "stall",
	"mileage", "fuel", "dashboard", "warning light", "check engine",
	"car", "vehicle", "wheel", "alignment",
}

var offTopicKeywords = []string{
	"refund", "insurance claim", "loan", "warranty card", "test drive",
	"phone", "laptop", "washing machine",
}

// ValidateComplaint accepts a complaint when it reads like a vehicle
// problem. Off-topic phrases are rejected even when they sit next to an
// automotive word, since intake cannot route those anywhere.
func (o *KeywordOracle) ValidateComplaint(_ context.Context, complaint string) (domain.ComplaintVerdict, error) {
	lower := strings.ToLower(complaint)

	for _, keyword := range offTopicKeywords {
		if strings.Contains(lower, keyword) {
			return domain.ComplaintVerdict{
				Valid:  false,
				Reason: fmt.Sprintf("complaint is about %q, not a vehicle fault", strings.TrimSpace(keyword)),
			}, nil
		}
	}
	for _, keyword := range automotiveKeywords {
		if strings.Contains(lower, keyword) {
			return domain.ComplaintVerdict{Valid: true, Reason: "complaint describes a vehicle fault"}, nil
		}
	}
	return domain.ComplaintVerdict{
		Valid:  false,
		Reason: "complaint does not describe a recognizable vehicle fault",
	}, nil
}

type draftTemplate struct {
	keywords []string
	draft    domain.JobCardDraft
}

var draftTemplates = []draftTemplate{
	{
		keywords: []string{"brake", "braking", "squeal"},
		draft: domain.JobCardDraft{
			Issue:            "Brake system degradation",
			Severity:         "high",
			RepairType:       "brake_service",
			Procedures:       []string{"Inspect brake pads and discs", "Replace worn brake pads", "Bleed brake lines", "Road test braking response"},
			Tools:            []string{"Brake caliper tool", "Torque wrench", "Brake bleeder kit"},
			LaborHours:       2.5,
			EstimatedCostMin: 150,
			EstimatedCostMax: 400,
		},
	},
	{
		keywords: []string{"oil", "leak"},
		draft: domain.JobCardDraft{
			Issue:            "Oil leak or degraded lubrication",
			Severity:         "medium",
			RepairType:       "oil_service",
			Procedures:       []string{"Locate leak source", "Replace gasket or seal", "Drain and refill engine oil", "Replace oil filter"},
			Tools:            []string{"Oil filter wrench", "Drain pan", "Torque wrench"},
			LaborHours:       1.5,
			EstimatedCostMin: 80,
			EstimatedCostMax: 250,
		},
	},
	{
		keywords: []string{"battery", "start", "ignition", "alternator", "electrical", "light"},
		draft: domain.JobCardDraft{
			Issue:            "Electrical or charging system fault",
			Severity:         "medium",
			RepairType:       "electrical_service",
			Procedures:       []string{"Test battery voltage and load", "Inspect alternator output", "Check wiring and fuses", "Replace faulty component"},
			Tools:            []string{"Multimeter", "Battery load tester", "Socket set"},
			LaborHours:       1.0,
			EstimatedCostMin: 60,
			EstimatedCostMax: 350,
		},
	},
	{
		keywords: []string{"ac ", "air conditioning", "heater", "cooling", "radiator", "coolant", "overheat"},
		draft: domain.JobCardDraft{
			Issue:            "Climate control or cooling system fault",
			Severity:         "medium",
			RepairType:       "hvac_service",
			Procedures:       []string{"Pressure test cooling circuit", "Check refrigerant charge", "Inspect radiator and hoses", "Flush and refill coolant"},
			Tools:            []string{"Pressure tester", "Refrigerant gauge set", "Coolant funnel"},
			LaborHours:       2.0,
			EstimatedCostMin: 100,
			EstimatedCostMax: 450,
		},
	},
	{
		keywords: []string{"noise", "vibration", "rattle", "knock", "suspension", "steering"},
		draft: domain.JobCardDraft{
			Issue:            "Suspension or drivetrain noise",
			Severity:         "medium",
			RepairType:       "chassis_service",
			Procedures:       []string{"Road test to reproduce noise", "Inspect suspension bushings and mounts", "Check wheel bearings", "Tighten or replace worn parts"},
			Tools:            []string{"Vehicle lift", "Pry bar", "Torque wrench"},
			LaborHours:       2.0,
			EstimatedCostMin: 90,
			EstimatedCostMax: 500,
		},
	},
}

var generalDraft = domain.JobCardDraft{
	Issue:            "General vehicle inspection required",
	Severity:         "low",
	RepairType:       "general_service",
	Procedures:       []string{"Perform full diagnostic scan", "Visual inspection of major systems", "Report findings to customer"},
	Tools:            []string{"OBD scanner", "Inspection light"},
	LaborHours:       1.0,
	EstimatedCostMin: 50,
	EstimatedCostMax: 150,
}

// GenerateJobCard drafts repair details by matching the complaint
// against category templates; the first matching category in a fixed
// order wins. Diesel vehicles get a note appended for fuel-system
// handling.
func (o *KeywordOracle) GenerateJobCard(_ context.Context, complaint string, vehicle domain.Vehicle) (domain.JobCardDraft, error) {
	lower := strings.ToLower(complaint)

	draft := generalDraft
	for _, template := range draftTemplates {
		if matchesAny(lower, template.keywords) {
			draft = template.draft
			break
		}
	}

	draft.Procedures = append([]string{}, draft.Procedures...)
	draft.Tools = append([]string{}, draft.Tools...)
	if strings.EqualFold(vehicle.FuelType, "diesel") {
		draft.AdditionalNotes = "Diesel vehicle: verify fuel system components during service."
	}
	return draft, nil
}

func matchesAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// ValidateImages judges before/after photo evidence. The verdict is a
// stable function of the file names so repeated validation of the same
// report agrees with itself.
func (o *KeywordOracle) ValidateImages(_ context.Context, before, after []string) (domain.MediaVerdict, error) {
	if len(before) == 0 || len(after) == 0 {
		return domain.MediaVerdict{
			Result:     domain.MediaResultUncertain,
			Confidence: 0.5,
			Details:    "before or after images missing",
		}, nil
	}
	switch hashBucket(strings.Join(before, ",")+"|"+strings.Join(after, ","), 10) {
	case 0:
		return domain.MediaVerdict{
			Result:     domain.MediaResultFail,
			Confidence: 0.9,
			Details:    "after images do not show the reported repair",
		}, nil
	case 1:
		return domain.MediaVerdict{
			Result:     domain.MediaResultUncertain,
			Confidence: 0.6,
			Details:    "image quality too low to confirm the repair",
		}, nil
	default:
		return domain.MediaVerdict{
			Result:     domain.MediaResultPass,
			Confidence: 0.95,
			Details:    "after images consistent with the reported repair",
		}, nil
	}
}

// ValidateAudio judges a post-repair engine audio sample the same way.
func (o *KeywordOracle) ValidateAudio(_ context.Context, sample string) (domain.MediaVerdict, error) {
	if sample == "" {
		return domain.MediaVerdict{
			Result:     domain.MediaResultUncertain,
			Confidence: 0.5,
			Details:    "no audio sample provided",
		}, nil
	}
	if hashBucket(sample, 10) == 0 {
		return domain.MediaVerdict{
			Result:     domain.MediaResultFail,
			Confidence: 0.85,
			Details:    "abnormal engine noise still present in sample",
		}, nil
	}
	return domain.MediaVerdict{
		Result:     domain.MediaResultPass,
		Confidence: 0.9,
		Details:    "engine audio within normal range",
	}, nil
}

func (o *KeywordOracle) Transcribe(_ context.Context, sample string) (string, error) {
	if sample == "" {
		return "", nil
	}
	return fmt.Sprintf("transcript of %s: engine idling steady, no abnormal sounds reported", sample), nil
}

func hashBucket(input string, buckets uint32) uint32 {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(input))
	return hasher.Sum32() % buckets
}
