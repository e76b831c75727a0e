package sitegen

import (
	"bytes"
	"log/slog"

	"github.com/klauspost/compress/gzip"
)

// GzipSize returns the gzip-compressed size of data.
func GzipSize(data []byte) (int, error) {
	var gzBuf bytes.Buffer
	gz := gzip.NewWriter(&gzBuf)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		return 0, err
	}
	if err := gz.Close(); err != nil {
		return 0, err
	}
	return gzBuf.Len(), nil
}

// sizeChecker warns about generated pages whose compressed size exceeds the
// threshold. A zero threshold disables the check.
type sizeChecker struct {
	threshold int
	log       *slog.Logger
}

func (s sizeChecker) check(path string, data []byte) {
	if s.threshold <= 0 {
		return
	}
	size, err := GzipSize(data)
	if err != nil {
		s.log.Debug("size check failed", "path", path, "error", err)
		return
	}
	if size > s.threshold {
		s.log.Warn("page exceeds size threshold",
			"path", path,
			"compressed_kb", float64(size)/1024,
			"threshold_kb", float64(s.threshold)/1024)
	}
}
