//go:build !ios && !android && (amd64 || arm64)

// Package bindings loads the FFmpeg shared libraries with purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/vidreader/internal/platform"
)

// ErrNotLoaded is returned when FFmpeg functions are used before Load.
var ErrNotLoaded = errors.New("vidreader: FFmpeg libraries not loaded")

// ErrLibraryNotFound is returned when a required FFmpeg library cannot be found.
var ErrLibraryNotFound = errors.New("vidreader: FFmpeg library not found")

// Library identifies one FFmpeg shared library.
type Library int

const (
	AVUtil Library = iota
	AVCodec
	AVFormat
	SWScale
	SWResample
	numLibraries
)

// libraries is in dependency order: avutil must be loaded first.
var libraries = [numLibraries]struct {
	name     string
	versions []int
}{
	AVUtil:     {"avutil", []int{59, 58, 57, 56}},
	AVCodec:    {"avcodec", []int{61, 60, 59, 58}},
	AVFormat:   {"avformat", []int{61, 60, 59, 58}},
	SWScale:    {"swscale", []int{8, 7, 6, 5}},
	SWResample: {"swresample", []int{5, 4, 3}},
}

func (l Library) String() string {
	if l < 0 || l >= numLibraries {
		return "unknown"
	}
	return "lib" + libraries[l].name
}

var (
	handles [numLibraries]uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// IsLoaded reports whether every library was loaded.
func IsLoaded() bool {
	return loaded
}

// Load opens all FFmpeg libraries. It is safe to call more than once;
// later calls return the first result.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		loaded = loadErr == nil
	})
	return loadErr
}

func doLoad() error {
	for lib := Library(0); lib < numLibraries; lib++ {
		h, err := open(libraries[lib].name, libraries[lib].versions)
		if err != nil {
			return fmt.Errorf("loading %s: %w", lib, err)
		}
		handles[lib] = h
	}
	return nil
}

// Handle returns the dlopen handle of lib, or 0 if it is not loaded.
func Handle(lib Library) uintptr {
	if lib < 0 || lib >= numLibraries {
		return 0
	}
	return handles[lib]
}

// Register binds fptr to symbol in lib. It panics if the symbol is missing,
// like purego.RegisterLibFunc.
func Register(fptr any, lib Library, symbol string) {
	purego.RegisterLibFunc(fptr, Handle(lib), symbol)
}

// RegisterOptional binds fptr to symbol if lib exports it and reports
// whether it did.
func RegisterOptional(fptr any, lib Library, symbol string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	purego.RegisterLibFunc(fptr, Handle(lib), symbol)
	return true
}

// candidates lists every file name tried for a library, versioned first.
func candidates(name string, versions []int) []string {
	names := make([]string, 0, len(versions)+1)
	for _, ver := range versions {
		names = append(names, platform.FormatLibraryName(name, ver))
	}
	return append(names, platform.FormatLibraryName(name, 0))
}

func open(name string, versions []int) (uintptr, error) {
	names := candidates(name, versions)
	for _, dir := range platform.SearchPaths(runtime.GOOS, os.Getenv) {
		for _, n := range names {
			if h, err := purego.Dlopen(filepath.Join(dir, n), purego.RTLD_NOW|purego.RTLD_GLOBAL); err == nil {
				return h, nil
			}
		}
	}
	// Let the dynamic loader search on its own.
	for _, n := range names {
		if h, err := purego.Dlopen(n, purego.RTLD_NOW|purego.RTLD_GLOBAL); err == nil {
			return h, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// FindLibrary returns the path of the first file that would be loaded for
// lib. Useful for diagnostics.
func FindLibrary(lib Library) (string, error) {
	if lib < 0 || lib >= numLibraries {
		return "", fmt.Errorf("%w: %d", ErrLibraryNotFound, lib)
	}
	names := candidates(libraries[lib].name, libraries[lib].versions)
	for _, dir := range platform.SearchPaths(runtime.GOOS, os.Getenv) {
		for _, n := range names {
			p := filepath.Join(dir, n)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, libraries[lib].name)
}

// Version returns the packed version (major<<16 | minor<<8 | micro) of lib,
// or 0 if it is not loaded.
func Version(lib Library) uint32 {
	if !loaded || Handle(lib) == 0 {
		return 0
	}
	var fn func() uint32
	if !RegisterOptional(&fn, lib, libraries[lib].name+"_version") {
		return 0
	}
	return fn()
}

// VersionString formats a packed library version as major.minor.micro.
func VersionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>16, (v>>8)&0xFF, v&0xFF)
}
