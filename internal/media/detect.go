// Package media classifies input files by extension.
package media

import (
	"path/filepath"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension is a decodable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsSupportedPath reports whether path names a decodable audio file.
func IsSupportedPath(path string) bool {
	return IsSupportedExt(filepath.Ext(path))
}

// SupportedExtsList returns a human-readable list of supported audio formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}
