// Package video transcodes source videos to web-friendly MP4 with ffmpeg.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrEncode wraps every failed encoder run.
var ErrEncode = errors.New("video encode failed")

// FFmpeg invokes an external ffmpeg binary with a fixed H.264/AAC profile.
type FFmpeg struct {
	Binary string
}

// New returns an encoder using binary, or "ffmpeg" from PATH when empty.
func New(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary}
}

// Args returns the encoder arguments for src -> dst.
func Args(src, dst string) []string {
	return []string{
		"-i", src,
		"-c:v", "libx264",
		"-crf", "23",
		"-c:a", "aac",
		"-movflags", "faststart",
		"-y",
		dst,
	}
}

// Encode transcodes src into dst. On failure any partial dst is removed.
func (f *FFmpeg) Encode(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.Binary, Args(src, dst)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: %s: %v: %s", ErrEncode, src, err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
