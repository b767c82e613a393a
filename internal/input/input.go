package input

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hupe1980/toon/internal/compress"
	"github.com/hupe1980/toon/pkg/toon"
)

// Format is the syntax of an input document.
type Format string

// Supported input formats.
const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MaxInputSize caps the size of a decoded input, after decompression.
const MaxInputSize int64 = 256 << 20

// StdinName is the conventional name of standard input.
const StdinName = "-"

// ParseFormat validates a format name. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", string(FormatAuto):
		return FormatAuto, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q (must be one of auto, json, yaml)", s)
	}
}

// Document is a decoded input.
type Document struct {
	// Name is the file path, or "-" for standard input.
	Name string

	// Format is the syntax the document was decoded with.
	Format Format

	// Compression is the codec the raw bytes were compressed with.
	Compression compress.Codec

	// Raw is the decompressed source text.
	Raw []byte

	// Value is the decoded document.
	Value toon.Value
}

// ReadFile reads and decodes the file at path. The path "-" reads stdin.
func ReadFile(path string, format Format, stdin io.Reader) (*Document, error) {
	if path == "" || path == StdinName {
		return Read(stdin, StdinName, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	return Read(f, path, format)
}

// Read decodes a document from r. The name is used for format and
// compression detection by extension and in error messages.
func Read(r io.Reader, name string, format Format) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return Decode(data, name, format)
}

// Decode decompresses and decodes raw input bytes.
func Decode(data []byte, name string, format Format) (*Document, error) {
	codec := compress.Detect(name, data)

	raw, truncated, err := compress.Decompress(codec, data, MaxInputSize)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", name)
	}

	if truncated {
		return nil, errors.Wrapf(ErrTooLarge, "%s exceeds %d bytes", name, MaxInputSize)
	}

	if format == "" || format == FormatAuto {
		format = DetectFormat(compress.TrimExtension(name), raw)
	}

	doc := &Document{
		Name:        name,
		Format:      format,
		Compression: codec,
		Raw:         raw,
	}

	switch format {
	case FormatJSON:
		doc.Value, err = DecodeJSON(raw)
	case FormatYAML:
		doc.Value, err = DecodeYAML(raw)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s as %s", name, format)
	}

	return doc, nil
}

// DetectFormat picks a format from the file extension, falling back to the
// content: valid JSON is read as JSON, anything else as YAML.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}

	if json.Valid(data) {
		return FormatJSON
	}

	return FormatYAML
}
