package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// ErrInfected is returned when an upload fails the virus scan.
var ErrInfected = errors.New("malicious file detected")

// VirusScanner inspects an upload before it is stored.
type VirusScanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner streams uploads to a clamd daemon.
type ClamdScanner struct {
	Addr string
}

// Scan returns ErrInfected when clamd reports anything but a clean result.
func (s ClamdScanner) Scan(r io.Reader) error {
	client := clamd.NewClamd(s.Addr)

	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}

	var scanErr error
	for result := range scanChan {
		switch result.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			scanErr = fmt.Errorf("%w: %s", ErrInfected, result.Description)
		default:
			if scanErr == nil {
				scanErr = fmt.Errorf("clamd %s: %s", result.Status, result.Description)
			}
		}
	}
	return scanErr
}

// noopScanner accepts everything; used when no clamd address is configured.
type noopScanner struct{}

func (noopScanner) Scan(io.Reader) error { return nil }
