package file

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/typeguard/pkg/ports"
)

var signatureExts = []string{".yaml", ".yml", ".json"}

// Loader implements ports.SignatureLoader over a directory of signature
// files. A file's name without its extension is the signature name.
type Loader struct {
	BasePath string
}

// NewLoader creates a new Loader reading from dir.
func NewLoader(dir string) *Loader {
	return &Loader{BasePath: dir}
}

// Get reads the signature document for name, trying each extension in turn.
func (l *Loader) Get(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid name %q", ports.ErrSignatureNotFound, name)
	}
	for _, ext := range signatureExts {
		data, err := os.ReadFile(filepath.Join(l.BasePath, name+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read signature %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ports.ErrSignatureNotFound, name)
}

// List returns the names of the signature files in the directory.
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}

	var names []string
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !slices.Contains(signatureExts, ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
