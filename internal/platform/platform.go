//go:build !ios && !android && (amd64 || arm64)

// Package platform knows how FFmpeg shared libraries are named and where
// they are installed on each operating system.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Is64Bit reports whether pointers are 8 bytes wide. The FFmpeg struct
// offsets used by this module assume a 64-bit layout.
const Is64Bit = ^uintptr(0)>>63 == 1

// LibraryName returns the file name of a shared library for goos.
// A version of 0 yields the unversioned name.
//
//   - linux:   LibraryName("linux", "avcodec", 60) -> "libavcodec.so.60"
//   - darwin:  LibraryName("darwin", "avcodec", 60) -> "libavcodec.60.dylib"
//   - windows: LibraryName("windows", "avcodec", 60) -> "avcodec-60.dll"
func LibraryName(goos, name string, version int) string {
	switch goos {
	case "darwin":
		if version > 0 {
			return fmt.Sprintf("lib%s.%d.dylib", name, version)
		}
		return "lib" + name + ".dylib"
	case "windows":
		if version > 0 {
			return fmt.Sprintf("%s-%d.dll", name, version)
		}
		return name + ".dll"
	default:
		if version > 0 {
			return fmt.Sprintf("lib%s.so.%d", name, version)
		}
		return "lib" + name + ".so"
	}
}

// FormatLibraryName is LibraryName for the running OS.
func FormatLibraryName(name string, version int) string {
	return LibraryName(runtime.GOOS, name, version)
}

// SearchPaths lists the directories probed for FFmpeg libraries on goos,
// most specific first. getenv is usually os.Getenv.
func SearchPaths(goos string, getenv func(string) string) []string {
	var paths []string
	split := func(key string) {
		if v := getenv(key); v != "" {
			paths = append(paths, filepath.SplitList(v)...)
		}
	}

	switch goos {
	case "linux":
		split("LD_LIBRARY_PATH")
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)
	case "darwin":
		split("DYLD_LIBRARY_PATH")
		paths = append(paths,
			"/opt/homebrew/lib",
			"/usr/local/lib",
			"/opt/homebrew/opt/ffmpeg/lib",
			"/usr/local/opt/ffmpeg/lib",
		)
	case "windows":
		split("PATH")
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		paths = append(paths,
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
		)
	case "freebsd":
		split("LD_LIBRARY_PATH")
		paths = append(paths, "/usr/local/lib", "/usr/lib")
	}
	return paths
}
