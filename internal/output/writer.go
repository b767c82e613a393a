package output

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/toon/internal/compress"
)

// Extension is the file extension of TOON documents.
const Extension = ".toon"

// Writer is the interface for TOON output destinations.
type Writer interface {
	// Write sends encoded bytes to the output destination.
	Write(data []byte) error
}

// StdoutWriter writes encoded output to os.Stdout.
type StdoutWriter struct {
	out   io.Writer
	codec compress.Codec
}

// NewStdoutWriter creates a writer that sends output to the given writer.
// If w is nil, os.Stdout is used.
func NewStdoutWriter(w io.Writer) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StdoutWriter{out: w, codec: compress.None}
}

// Compressed returns a copy of sw that compresses with codec.
func (sw *StdoutWriter) Compressed(codec compress.Codec) *StdoutWriter {
	return &StdoutWriter{out: sw.out, codec: codec}
}

// Write sends data to stdout.
func (sw *StdoutWriter) Write(data []byte) error {
	data, err := applyCodec(sw.codec, data)
	if err != nil {
		return err
	}

	if _, err := sw.out.Write(data); err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}

// FileWriter writes encoded output to a file, creating parent
// directories as needed.
type FileWriter struct {
	path   string
	perm   os.FileMode
	codec  compress.Codec
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// WithCodec overrides the compression chosen from the file extension.
func WithCodec(codec compress.Codec) FileWriterOption {
	return func(fw *FileWriter) {
		fw.codec = codec
	}
}

// NewFileWriter creates a writer that writes to the specified file path.
// Paths ending in .gz, .zst, or .lz4 are compressed accordingly.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		codec:  compress.FromExtension(path),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write creates parent directories and writes data to the file.
func (fw *FileWriter) Write(data []byte) error {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := applyCodec(fw.codec, data)
	if err != nil {
		return err
	}

	// Check if file exists for warning.
	if _, err := os.Stat(fw.path); err == nil {
		fw.logger.Warn("overwriting existing file", slog.String("path", fw.path))
	}

	if err := os.WriteFile(fw.path, data, fw.perm); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	fw.logger.Debug("wrote output",
		slog.String("path", fw.path),
		slog.String("compression", string(fw.codec)),
		slog.Int("bytes", len(data)),
	)

	return nil
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}

// Codec returns the compression applied on write.
func (fw *FileWriter) Codec() compress.Codec {
	return fw.codec
}

// DerivePath returns the output path in dir for the input file name: the
// compression and source extensions are replaced with .toon, followed by
// the extension of codec.
func DerivePath(dir, input string, codec compress.Codec) string {
	base := filepath.Base(compress.TrimExtension(input))
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}

	return filepath.Join(dir, base+Extension+compress.Extension(codec))
}

func applyCodec(codec compress.Codec, data []byte) ([]byte, error) {
	if codec == "" || codec == compress.None {
		return data, nil
	}

	var buf bytes.Buffer

	w, err := compress.NewWriter(codec, &buf)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compressing output: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compressing output: %w", err)
	}

	return buf.Bytes(), nil
}
