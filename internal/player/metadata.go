package player

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
)

// Metadata holds song information.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads the track's tags: ID3v2 first, then FLAC/Vorbis
// comments and the other containers dhowden/tag understands. It falls back
// to the file name as title.
func ReadMetadata(path string) Metadata {
	if m, ok := readID3(path); ok {
		return m
	}
	if m, ok := readTag(path); ok {
		return m
	}
	base := filepath.Base(path)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}

func readID3(path string) (Metadata, bool) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Metadata{}, false
	}
	defer t.Close()
	m := Metadata{
		Title:  strings.TrimSpace(t.Title()),
		Artist: strings.TrimSpace(t.Artist()),
		Album:  strings.TrimSpace(t.Album()),
	}
	return m, m.Title != ""
}

func readTag(path string) (Metadata, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, false
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return Metadata{}, false
	}
	m := Metadata{
		Title:  strings.TrimSpace(t.Title()),
		Artist: strings.TrimSpace(t.Artist()),
		Album:  strings.TrimSpace(t.Album()),
	}
	return m, m.Title != ""
}

// LogValue groups the non-empty fields for structured logs.
func (m Metadata) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("title", m.Title)}
	if m.Artist != "" {
		attrs = append(attrs, slog.String("artist", m.Artist))
	}
	if m.Album != "" {
		attrs = append(attrs, slog.String("album", m.Album))
	}
	return slog.GroupValue(attrs...)
}
