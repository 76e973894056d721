package qoi

import "errors"

// Header errors
var (
	ErrInvalidDimensions = errors.New("qoi: invalid image dimensions")
	ErrInvalidChannels   = errors.New("qoi: invalid channel count (must be 3 or 4)")
	ErrInvalidColorspace = errors.New("qoi: invalid colorspace (must be 0 or 1)")
	ErrBadMagic          = errors.New("qoi: bad magic")
	ErrTruncatedInput    = errors.New("qoi: truncated header")
)

// Stream errors
var (
	ErrUnexpectedEndOfStream = errors.New("qoi: unexpected end of stream")
	ErrTrailingDataMismatch  = errors.New("qoi: missing or invalid end marker")
)

// ErrContractViolation is returned when the caller hands the codec
// inconsistent arguments, e.g. a pixel buffer whose length does not match
// the header. It signals a bug in the caller, not malformed data.
var ErrContractViolation = errors.New("qoi: caller contract violation")
