package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunWithoutFileExitsCleanly(t *testing.T) {
	if code := run([]string{"spectty"}); code != 0 {
		t.Fatalf("expected exit 0 without a file, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	if code := run([]string{"spectty", "-h"}); code != 0 {
		t.Fatalf("expected exit 0 for -h, got %d", code)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	tests := [][]string{
		{"spectty", "--transform", "dct", "song.mp3"},
		{"spectty", "--log-level", "loud", "song.mp3"},
		{"spectty", "--log-format", "xml", "song.mp3"},
		{"spectty", "--bogus"},
	}
	for _, args := range tests {
		if code := run(args); code != 2 {
			t.Errorf("run(%q) = %d, want 2", args, code)
		}
	}
}

func TestRunFailsToOpen(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{
		filepath.Join(dir, "missing.mp3"),
		dir,
		notes,
	} {
		if code := run([]string{"spectty", path}); code != 1 {
			t.Errorf("run(%q) = %d, want 1", path, code)
		}
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	fs, opts, err := parseFlags([]string{"/usr/bin/spectty", "track.flac"})
	if err != nil {
		t.Fatal(err)
	}
	if fs.Name() != "spectty" {
		t.Fatalf("expected flag set name spectty, got %q", fs.Name())
	}
	if opts.transform != "fft" || opts.logFormat != "text" || opts.logLevel != "" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if fs.Arg(0) != "track.flac" {
		t.Fatalf("expected positional track.flac, got %q", fs.Arg(0))
	}
}
