// Package infra contains technical adapters such as the calendar and
// offer-search clients, notification publishers and metrics exporters.
// These packages should depend only on the interfaces defined in the
// core packages.
package infra
