package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.SignatureLoader using an in-memory map.
type Loader struct {
	docs map[string][]byte
}

// NewLoader creates a new Loader with the provided raw documents (YAML or JSON).
func NewLoader(data map[string]string) *Loader {
	docs := make(map[string][]byte)
	for k, v := range data {
		docs[k] = []byte(v)
	}
	return &Loader{
		docs: docs,
	}
}

// NewFromSignatures creates a new Loader from signature files, keyed by name.
// This handles serialization automatically, improving DX for tests.
func NewFromSignatures(files ...schema.SignatureFile) (*Loader, error) {
	data := make(map[string][]byte)
	for _, f := range files {
		if f.Name == "" {
			return nil, fmt.Errorf("signature missing name")
		}
		bytes, err := yaml.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal signature %s: %w", f.Name, err)
		}
		data[f.Name] = bytes
	}
	return &Loader{docs: data}, nil
}

// Get retrieves the raw signature document by name.
func (l *Loader) Get(name string) ([]byte, error) {
	content, ok := l.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrSignatureNotFound, name)
	}
	return content, nil
}

// List returns all available signature names.
func (l *Loader) List() ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
