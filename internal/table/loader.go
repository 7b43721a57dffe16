package table

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates a file extension no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Loader reads one family of table files.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load selects a loader based on the file extension and reads the table.
func Load(path string, opt Options) (*Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return nil, fmt.Errorf("%w: %q (use csv, tsv or xlsx)", ErrUnsupportedFormat, ext)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
