package results

import (
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedExt is appended to result files written with compression.
const CompressedExt = ".zst"

var encoder, _ = zstd.NewWriter(nil)

func compress(src []byte) []byte {
	return encoder.EncodeAll(src, make([]byte, 0, len(src)))
}

var decoder, _ = zstd.NewReader(nil)

func decompress(src []byte) ([]byte, error) {
	return decoder.DecodeAll(src, nil)
}

// IsCompressed reports whether path names a zstd result file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}
