// Package compress implements the block compression codecs named in
// `-CompressionInfo.db` (spec.md §6: NONE, LZ4, Snappy, Deflate) and decodes
// the chunk offset map used to translate an uncompressed byte range into
// the compressed block(s) that hold it.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/pierrec/lz4/v4"
)

// Algorithm names exactly as they appear in `-CompressionInfo.db` and the
// data-file header (spec.md §6).
const (
	None    = "NONE"
	LZ4     = "LZ4"
	Snappy  = "Snappy"
	Deflate = "Deflate"
)

// Codec decompresses one block. Blocks are small (chunk-length sized), so
// the interface works directly on byte slices rather than streams.
type Codec interface {
	Decompress(compressed []byte, uncompressedLen int) ([]byte, error)
	Compress(src []byte) ([]byte, error)
	Name() string
}

// ForAlgorithm resolves an algorithm name to its Codec.
func ForAlgorithm(name string) (Codec, error) {
	switch name {
	case None, "":
		return noneCodec{}, nil
	case LZ4:
		return lz4Codec{}, nil
	case Snappy:
		return snappyCodec{}, nil
	case Deflate:
		return deflateCodec{}, nil
	default:
		return nil, fmt.Errorf("compress: unrecognized algorithm %q", name)
	}
}

type noneCodec struct{}

func (noneCodec) Name() string { return None }
func (noneCodec) Decompress(compressed []byte, uncompressedLen int) ([]byte, error) {
	return compressed, nil
}
func (noneCodec) Compress(src []byte) ([]byte, error) { return src, nil }

type lz4Codec struct{}

func (lz4Codec) Name() string { return LZ4 }

func (lz4Codec) Decompress(compressed []byte, uncompressedLen int) ([]byte, error) {
	out := make([]byte, uncompressedLen)
	n, err := lz4.UncompressBlock(compressed, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out[:n], nil
}

func (lz4Codec) Compress(src []byte) ([]byte, error) {
	out := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// incompressible input: lz4 signals this by writing nothing.
		return src, nil
	}
	return out[:n], nil
}

type snappyCodec struct{}

func (snappyCodec) Name() string { return Snappy }

func (snappyCodec) Decompress(compressed []byte, uncompressedLen int) ([]byte, error) {
	out, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	return out, nil
}

func (snappyCodec) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

type deflateCodec struct{}

func (deflateCodec) Name() string { return Deflate }

func (deflateCodec) Decompress(compressed []byte, uncompressedLen int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out := make([]byte, 0, uncompressedLen)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("deflate decompress: %w", err)
	}
	return buf.Bytes(), nil
}

func (deflateCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("deflate compress: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
