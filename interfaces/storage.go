package interfaces

import (
	"context"
	"errors"
)

// SinkLocation is a URI identifying a report sink, e.g. "file:///var/reports"
// or "s3://bucket/reports?region=us-east-1".
type SinkLocation string

// Standard errors returned by report sink operations.
var (
	// ErrReportNotFound indicates the report does not exist in the sink.
	ErrReportNotFound = errors.New("report not found")

	// ErrSinkUnavailable indicates the sink is not accessible.
	ErrSinkUnavailable = errors.New("report sink unavailable")

	// ErrInvalidLocationURI indicates a malformed sink location URI.
	ErrInvalidLocationURI = errors.New("invalid sink location URI")
)

// ReportSink persists generated reports. Implementations exist for the
// local filesystem, S3-compatible object storage, and IPFS.
type ReportSink interface {
	// Store persists the report under the given name and returns the
	// location the report ended up at (path, object key, or CID).
	Store(ctx context.Context, name string, data []byte) (string, error)

	// Fetch retrieves a previously stored report by name. Returns
	// ErrReportNotFound if the sink has no such report.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Available checks whether the sink is currently accessible.
	Available(ctx context.Context) bool

	// Name returns a unique identifier for this sink.
	Name() string

	// LocationURI returns the URI that identifies this sink.
	LocationURI() string
}

// SinkFactory creates report sinks from location URIs.
type SinkFactory interface {
	SinkFor(location SinkLocation) (ReportSink, error)
}
