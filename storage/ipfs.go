package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// IPFSSink implements a report sink using the InterPlanetary File System.
// IPFS addresses content by hash, so the sink keeps a name-to-CID index of
// the reports it has stored in this process.
type IPFSSink struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string

	mu   sync.Mutex
	cids map[string]string
}

// NewIPFSSink creates a new IPFS report sink connected to the specified host and port.
func NewIPFSSink(host, port, timeout string, log *slog.Logger) (*IPFSSink, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSSink{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
		cids:        make(map[string]string),
	}, nil
}

// Store adds a report to IPFS and returns its content identifier.
// Returns ErrSinkUnavailable if the IPFS node is not accessible.
func (s *IPFSSink) Store(ctx context.Context, name string, data []byte) (string, error) {
	if !s.shell.IsUp() {
		return "", interfaces.ErrSinkUnavailable
	}

	cid, err := s.shell.Add(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to add report to IPFS: %w", err)
	}

	s.mu.Lock()
	s.cids[name] = cid
	s.mu.Unlock()

	s.log.Debug("Stored report in IPFS",
		slog.String("name", name),
		slog.String("cid", cid),
		slog.Int("size", len(data)))

	return cid, nil
}

// Fetch retrieves a report from IPFS by the name it was stored under.
// Returns ErrReportNotFound if this sink has not stored the name, or
// ErrSinkUnavailable if the IPFS node is not accessible.
func (s *IPFSSink) Fetch(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()

	s.mu.Lock()
	cid, ok := s.cids[name]
	s.mu.Unlock()
	if !ok {
		return nil, interfaces.ErrReportNotFound
	}

	if !s.shell.IsUp() {
		s.log.Warn("IPFS node unavailable",
			slog.String("host", s.host),
			slog.String("port", s.port))
		return nil, interfaces.ErrSinkUnavailable
	}

	reader, err := s.shell.Cat(fmt.Sprintf("/ipfs/%s", cid))
	if err != nil {
		s.log.Error("Failed to fetch report from IPFS",
			slog.String("cid", cid),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to fetch report from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read report from IPFS: %w", err)
	}

	s.log.Debug("Fetched report from IPFS",
		slog.String("cid", cid),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Available checks if the IPFS node is accessible.
func (s *IPFSSink) Available(ctx context.Context) bool {
	return s.shell.IsUp()
}

// Name returns a unique identifier for this sink.
func (s *IPFSSink) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", s.host, s.port)
}

// LocationURI returns the URI that identifies this sink.
func (s *IPFSSink) LocationURI() string {
	return s.locationURI
}
