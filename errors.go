package vidreader

import "errors"

// Errors returned by Reader. Engine causes are wrapped, so errors.Is
// matches both the sentinel and the underlying error.
var (
	// ErrOpen indicates the path is unreadable or the container format is
	// not recognized.
	ErrOpen = errors.New("vidreader: cannot open input")

	// ErrProbe indicates the container headers could not be parsed.
	ErrProbe = errors.New("vidreader: cannot probe stream info")

	// ErrNoVideoStream indicates the container has no video track.
	ErrNoVideoStream = errors.New("vidreader: no video stream")

	// ErrUnsupportedCodec indicates no decoder is available for the
	// selected stream.
	ErrUnsupportedCodec = errors.New("vidreader: unsupported codec")

	// ErrDegradedAudio is reported by Reader.AudioErr when the session
	// runs without audio because the audio path could not be set up.
	ErrDegradedAudio = errors.New("vidreader: audio disabled")

	// ErrConvert indicates the scaling or resampling engine failed.
	ErrConvert = errors.New("vidreader: conversion failed")

	// ErrSeek indicates the target could not be computed or the container
	// rejected the seek. The read position is unspecified afterwards.
	ErrSeek = errors.New("vidreader: seek failed")

	// ErrInvalidSession is returned by operations on a closed Reader.
	ErrInvalidSession = errors.New("vidreader: invalid session")

	// ErrEngineUnavailable indicates no media engine could be loaded.
	ErrEngineUnavailable = errors.New("vidreader: media engine unavailable")
)
