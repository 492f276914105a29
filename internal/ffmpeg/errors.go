//go:build !ios && !android && (amd64 || arm64)

package ffmpeg

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"unsafe"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// AVERROR codes this package distinguishes.
const (
	errEOF             int32 = -541478725
	errEAGAIN          int32 = -int32(syscall.EAGAIN)
	errEINVAL          int32 = -int32(syscall.EINVAL)
	errENOMEM          int32 = -int32(syscall.ENOMEM)
	errDecoderNotFound int32 = -1128613112
	errInvalidData     int32 = -1094995529
)

// Error is a failed FFmpeg call.
type Error struct {
	Code    int32  // AVERROR value
	Message string // av_strerror text
	Op      string // FFmpeg function that failed
}

func (e *Error) Error() string {
	return fmt.Sprintf("ffmpeg %s: %s (code %d)", e.Op, e.Message, e.Code)
}

// Unwrap maps the codes the engine contract names onto its sentinels,
// so errors.Is(err, io.EOF) works on a wrapped *Error.
func (e *Error) Unwrap() error {
	switch e.Code {
	case errEOF:
		return io.EOF
	case errEAGAIN:
		return engine.ErrAgain
	case errDecoderNotFound:
		return engine.ErrDecoderNotFound
	}
	return nil
}

func newError(code int32, op string) error {
	if code >= 0 {
		return nil
	}
	return &Error{Code: code, Message: errorString(code), Op: op}
}

// Code returns the AVERROR value carried by err, or 0.
func Code(err error) int32 {
	var ffErr *Error
	if errors.As(err, &ffErr) {
		return ffErr.Code
	}
	return 0
}

// IsInvalidData reports whether err is AVERROR_INVALIDDATA.
func IsInvalidData(err error) bool {
	return Code(err) == errInvalidData
}

func errorString(code int32) string {
	if avStrerror == nil {
		return "unknown error"
	}
	var buf [256]byte
	avStrerror(code, unsafe.Pointer(&buf[0]), uintptr(len(buf)))
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf[:])
}
