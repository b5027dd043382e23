package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// SinkFactory creates report sinks from URI strings and manages
// multi-sink configurations for redundant report storage.
type SinkFactory struct {
	log *slog.Logger
}

// NewSinkFactory creates a new factory instance that can create report sinks.
func NewSinkFactory(log *slog.Logger) *SinkFactory {
	return &SinkFactory{log: log}
}

// SinkFor creates a report sink from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem storage
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - IPFS distributed storage
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *SinkFactory) SinkFor(location interfaces.SinkLocation) (interfaces.ReportSink, error) {
	u, err := url.Parse(string(location))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "ipfs":
		return sf.createIPFSSink(u)
	case "s3":
		return sf.createS3Sink(u)
	case "file":
		return sf.createFileSink(u)
	default:
		return nil, fmt.Errorf("%w: unsupported sink scheme: %s", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// CreateMultiSink creates a multi-sink from a list of location URIs.
// The multi-sink stores reports to all available sinks and fetches from the
// first one that has the report. Returns an error if no valid sinks could be
// created from the provided URIs.
func (sf *SinkFactory) CreateMultiSink(locations []interfaces.SinkLocation) (interfaces.ReportSink, error) {
	sinks := make([]interfaces.ReportSink, 0, len(locations))

	for _, location := range locations {
		sink, err := sf.SinkFor(location)
		if err != nil {
			sf.log.Warn("Failed to create report sink",
				"err", err,
				slog.String("location", string(location)))
			continue
		}
		sinks = append(sinks, sink)
	}

	if len(sinks) == 0 {
		return nil, fmt.Errorf("no valid report sinks created")
	}

	return NewMultiSink(sinks, sf.log), nil
}

// createIPFSSink creates an IPFS report sink.
// URI format: ipfs://host:port/?timeout=30s
func (sf *SinkFactory) createIPFSSink(u *url.URL) (interfaces.ReportSink, error) {
	sf.log.Debug("Creating IPFS sink", slog.String("uri", u.String()))

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5001" // Default IPFS API port
	}

	timeout := u.Query().Get("timeout")
	if timeout == "" {
		timeout = "30s"
	}

	return NewIPFSSink(host, port, timeout, sf.log)
}

// createS3Sink creates an S3 or S3-compatible report sink.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
// The sink supports both public buckets (read-only) and authenticated access.
func (sf *SinkFactory) createS3Sink(u *url.URL) (interfaces.ReportSink, error) {
	sf.log.Debug("Creating S3 sink", slog.String("uri", u.String()))

	bucketName := u.Host
	prefix := strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1" // Default region
	}
	endpoint := query.Get("endpoint")

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
		sf.log.Debug("Using embedded credentials for write access")
	} else {
		sf.log.Debug("No credentials provided, S3 bucket assumed to be public, write operations may fail")
	}

	return NewS3Sink(bucketName, prefix, region, endpoint, accessKey, secretKey, sf.log)
}

// createFileSink creates a file system report sink.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *SinkFactory) createFileSink(u *url.URL) (interfaces.ReportSink, error) {
	sf.log.Debug("Creating file sink", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileSink(path, sf.log)
}
