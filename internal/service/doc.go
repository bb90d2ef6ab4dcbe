// Package service groups application logic by domain areas to keep maintenance localized.
//
// Domain files:
// - requests: complaint intake and job card creation
// - jobcards: job card lifecycle from generation to completion
// - assignment: indexed and fallback service-center matching
// - validation: completion checks against technician reports
// - invoices: billing after validation
// - directory: customers, service centers and technicians
package service
