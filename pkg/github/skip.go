package github

import (
	"path"
	"strings"
)

// Extensions whose content is binary or oversized and would be discarded by
// the dashboard anyway. Vector formats (svg) stay fetchable.
var skipExtensions = map[string]bool{
	// Raster images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".bmp": true, ".webp": true, ".tiff": true,
	// Fonts
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	// Audio
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true,
	// Video
	".mp4": true, ".avi": true, ".mov": true, ".webm": true, ".mkv": true,
	// Archives
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".rar": true, ".7z": true, ".jar": true,
	// Executables and compiled artifacts
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".o": true, ".a": true, ".class": true, ".pyc": true,
	// Documents the dashboard never renders inline
	".pdf": true,
}

// Oversized generated files that waste quota for no displayable content.
var skipFilenames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"composer.lock":     true,
	"Cargo.lock":        true,
	"poetry.lock":       true,
	"Gemfile.lock":      true,
}

// Build and VCS directories that are skipped wholesale.
var skipDirectories = []string{
	"node_modules/",
	".git/",
	"vendor/",
	"dist/",
	"build/",
	"target/",
	".next/",
	"__pycache__/",
}

// ShouldSkip reports whether a file path points at content that is likely
// binary or oversized and should not be fetched. It is a pure predicate used
// before issuing network calls, so skippable content never costs quota.
func ShouldSkip(filePath string) bool {
	if filePath == "" {
		return false
	}

	normalized := strings.TrimPrefix(filePath, "/")
	for _, dir := range skipDirectories {
		if strings.HasPrefix(normalized, dir) || strings.Contains(normalized, "/"+dir) {
			return true
		}
	}

	if skipFilenames[path.Base(normalized)] {
		return true
	}

	return skipExtensions[strings.ToLower(path.Ext(normalized))]
}
