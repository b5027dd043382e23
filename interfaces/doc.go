// Package interfaces defines the core types and contracts shared by the
// TestFlight provisioning engine.
//
// This package provides the contracts between different components of the
// system without including implementation details. It separates the type
// definitions from their implementations, allowing for:
//
//   - Clear separation of concerns
//   - Multiple implementations of the same interface
//   - Better testability through mock implementations
//   - Reduced coupling between components
//
// # Type Definitions
//
// The package defines the domain model used throughout the system:
//
//   - Email: a validated tester email address, the unique tester key
//   - BundleID: an application bundle identifier
//   - ProcessingState: the remote lifecycle label for an uploaded build
//   - App, Build, Tester: remote resources as observed by the engine
//   - InvitationOutcome: the terminal result of provisioning one tester
//
// # Storage Interfaces
//
//   - ReportSink: any system that can persist and retrieve generated reports
//   - SinkFactory: creates report sinks from location URI strings
//
// # Error Types
//
// Standard errors returned by report sink operations:
//
//   - ErrReportNotFound: report not found in the sink
//   - ErrSinkUnavailable: sink is not accessible
//   - ErrInvalidLocationURI: sink location URI is malformed
//
// Components should depend on these contracts rather than concrete
// implementations.
package interfaces
