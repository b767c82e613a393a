// Package compress detects and applies the stream compressions toon reads
// and writes: gzip, zstd, and lz4 frames.
package compress

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies a compression format.
type Codec string

// Supported codecs.
const (
	None Codec = "none"
	Gzip Codec = "gzip"
	Zstd Codec = "zstd"
	LZ4  Codec = "lz4"
)

// Frame magic numbers.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

var extensions = map[string]Codec{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".lz4":  LZ4,
}

// FromExtension returns the codec implied by the file name's extension.
func FromExtension(name string) Codec {
	if c, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return c
	}

	return None
}

// TrimExtension removes a compression extension from name, so that
// "data.json.gz" becomes "data.json".
func TrimExtension(name string) string {
	if FromExtension(name) == None {
		return name
	}

	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Sniff inspects the leading bytes of data for a known frame magic.
func Sniff(data []byte) Codec {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4
	default:
		return None
	}
}

// Detect picks the codec for data read from name. Magic bytes win over the
// extension because content is authoritative.
func Detect(name string, data []byte) Codec {
	if c := Sniff(data); c != None {
		return c
	}

	return FromExtension(name)
}

// zstdDecoderPool pools zstd decoders; DecodeAll is safe on a pooled decoder.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// Decompress inflates data with codec. At most limit bytes of output are
// produced; a larger result is reported through the truncated return value.
func Decompress(codec Codec, data []byte, limit int64) (out []byte, truncated bool, err error) {
	switch codec {
	case None:
		return data, int64(len(data)) > limit, nil
	case Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, false, fmt.Errorf("gzip decompression failed: %w", err)
		}
		defer zr.Close()

		return readLimited(zr, limit, "gzip")
	case Zstd:
		decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(decoder)

		out, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, false, fmt.Errorf("zstd decompression failed: %w", err)
		}

		return out, int64(len(out)) > limit, nil
	case LZ4:
		return readLimited(lz4.NewReader(bytes.NewReader(data)), limit, "lz4")
	default:
		return nil, false, fmt.Errorf("unsupported codec %q", codec)
	}
}

func readLimited(r io.Reader, limit int64, name string) ([]byte, bool, error) {
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, fmt.Errorf("%s decompression failed: %w", name, err)
	}

	if int64(len(out)) > limit {
		return out[:limit], true, nil
	}

	return out, false, nil
}

// NewWriter wraps w so that everything written is compressed with codec.
// The returned writer must be closed to flush the final frame; closing it
// does not close w.
func NewWriter(codec Codec, w io.Writer) (io.WriteCloser, error) {
	switch codec {
	case None:
		return nopCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}

		return zw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported codec %q", codec)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Extension returns the canonical file extension for codec, or "" for None.
func Extension(codec Codec) string {
	switch codec {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	default:
		return ""
	}
}

// Parse validates a codec name.
func Parse(name string) (Codec, error) {
	switch c := Codec(strings.ToLower(name)); c {
	case None, Gzip, Zstd, LZ4:
		return c, nil
	case "":
		return None, nil
	default:
		return "", fmt.Errorf("unknown compression %q (must be one of none, gzip, zstd, lz4)", name)
	}
}
