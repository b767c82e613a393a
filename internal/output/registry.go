package output

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/toon/internal/compress"
)

// WriterFactory creates a Writer for the given output path.
// When path is empty, the writer should write to stdout. File writer options
// are ignored for stdout.
type WriterFactory func(path string, opts ...FileWriterOption) Writer

// Registry maps compression names to WriterFactory functions, enabling
// pluggable output encodings for the encode command.
type Registry struct {
	mu      sync.RWMutex
	writers map[string]WriterFactory
}

// NewRegistry creates an empty writer registry.
func NewRegistry() *Registry {
	return &Registry{
		writers: make(map[string]WriterFactory),
	}
}

// Register adds a writer factory under the given name.
// Existing entries for the same name are overwritten.
func (r *Registry) Register(name string, factory WriterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writers[name] = factory
}

// Writer returns the factory for the given name, or an error if not found.
func (r *Registry) Writer(name string) (WriterFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.writers[name]
	if !ok {
		return nil, fmt.Errorf("unknown compression %q (available: %s)", name, r.available())
	}

	return f, nil
}

// Names returns the sorted list of registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) available() string {
	names := r.names()
	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ", ")
}

// CodecAuto selects compression from the output file extension.
const CodecAuto = "auto"

// DefaultRegistry returns a registry pre-populated with the built-in
// output encodings: auto, none, gzip, zstd, lz4.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(CodecAuto, func(path string, opts ...FileWriterOption) Writer {
		if path == "" {
			return NewStdoutWriter(nil)
		}

		return NewFileWriter(path, opts...)
	})

	for _, codec := range []compress.Codec{compress.None, compress.Gzip, compress.Zstd, compress.LZ4} {
		codec := codec
		r.Register(string(codec), func(path string, opts ...FileWriterOption) Writer {
			if path == "" {
				return NewStdoutWriter(nil).Compressed(codec)
			}

			return NewFileWriter(path, append(opts, WithCodec(codec))...)
		})
	}

	return r
}
