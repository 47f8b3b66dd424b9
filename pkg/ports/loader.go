package ports

import "errors"

// ErrSignatureNotFound is returned by SignatureLoader.Get for unknown names.
var ErrSignatureNotFound = errors.New("signature not found")

// SignatureLoader defines where named signature documents come from.
// This allows the storage layer (directory, memory) to be decoupled.
type SignatureLoader interface {
	// Get retrieves the raw signature document (YAML or JSON) by name.
	Get(name string) ([]byte, error)

	// List returns the names of all available signatures in sorted order.
	List() ([]string, error)
}
