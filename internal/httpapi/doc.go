// Package httpapi groups HTTP handlers by domain so route behavior is easier to locate.
//
// Domain files:
// - requests: complaint intake, triage and index operations
// - customers, including nearby-centers and fallback-match lookups
// - centers: service center directory
// - technicians and their job lists
// - jobcards: the full lifecycle actions
package httpapi
