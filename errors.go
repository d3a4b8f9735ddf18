package psarc

import (
	"errors"
	"fmt"
)

// Status is the taxonomy of outcomes Upsync/Downsync report. Ok is the
// zero value so a freshly declared Status reads as success.
type Status int

const (
	StatusOk Status = iota
	StatusEndpointError
	StatusBadHeader
	StatusDsarUnsupported
	StatusManifestError
	StatusInsertError
	StatusCompressionError
	StatusDecompressionError
	StatusMisc
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusEndpointError:
		return "EndpointError"
	case StatusBadHeader:
		return "BadHeader"
	case StatusDsarUnsupported:
		return "DsarUnsupported"
	case StatusManifestError:
		return "ManifestError"
	case StatusInsertError:
		return "InsertError"
	case StatusCompressionError:
		return "CompressionError"
	case StatusDecompressionError:
		return "DecompressionError"
	case StatusMisc:
		return "Misc"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Package-specific error variables that can be used with errors.Is() for
// error handling, one per Status that isn't StatusOk/StatusMisc.
var (
	ErrEndpoint        = errors.New("psarc: required endpoint not configured")
	ErrBadHeader       = errors.New("psarc: not a PSARC archive")
	ErrDsarUnsupported = errors.New("psarc: DSAR-wrapped archives are not supported")
	ErrManifest        = errors.New("psarc: manifest entry is invalid")
	ErrInsert          = errors.New("psarc: failed to insert file into archive")
	ErrCompression     = errors.New("psarc: compression failed")
	ErrDecompression   = errors.New("psarc: decompression failed")
)

// statusError pairs a Status with the error that produced it, so callers
// can both switch on the taxonomy (via StatusOf) and unwrap to the cause.
// The Status's sentinel is kept alongside the cause so errors.Is matches
// it either way.
type statusError struct {
	status   Status
	sentinel error
	err      error
}

func (e *statusError) Error() string {
	if e.err == nil {
		return e.status.String()
	}
	return fmt.Sprintf("%s: %s", e.status, e.err)
}

func (e *statusError) Unwrap() []error {
	if e.sentinel == nil || e.err == e.sentinel {
		return []error{e.err}
	}
	return []error{e.sentinel, e.err}
}

func wrapStatus(status Status, sentinel, cause error) error {
	if cause == nil {
		cause = sentinel
	}
	return &statusError{status: status, sentinel: sentinel, err: cause}
}

// StatusOf extracts the Status code carried by an error returned from
// Upsync or Downsync, reporting StatusMisc for any other error and
// StatusOk for nil.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOk
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return StatusMisc
}
