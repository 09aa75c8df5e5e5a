// Package domain contains shared domain types used across the sub-packages.
// Declaration rewriting lives in domain/declaration and the use case contract
// in domain/usecase. This root package holds sentinel errors, the
// DomainFailure category, the Layer enumeration, and the Action interface
// that are shared across all of them.
package domain
