// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
package mocks

//go:generate mockgen -source=../../internal/core/ports/backend.go -destination=backend_client_mock.go -package=mocks
