// Package storage provides report sink implementations for persisting
// invitation reports to various storage systems.
//
// The package supports multiple storage types through a common interface
// (interfaces.ReportSink), with sinks created from URI strings:
//
//   - file:///var/reports/ - Local filesystem storage
//   - s3://bucket/prefix/?region=us-west-2 - Amazon S3 or compatible object storage
//   - ipfs://host:5001/ - IPFS distributed storage
//
// The SinkFactory creates sinks from these URIs, and MultiSink aggregates
// several sinks so a report is written to every configured destination and
// read back from the first one that has it.
//
// Report names are timestamped by the caller, so sinks treat them as opaque
// keys and never overwrite silently.
package storage
