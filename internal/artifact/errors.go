package artifact

import "errors"

// Sentinel kinds for artifact errors.
var (
	ErrReadArtifact    = errors.New("read artifact failed")
	ErrDecodeArtifact  = errors.New("decode artifact failed")
	ErrUnsupportedKind = errors.New("unsupported artifact kind")
	ErrInputShape      = errors.New("input vector has wrong length")
)
