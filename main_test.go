package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/deck"
	"github.com/ByLCY/slidepress/export"
	"github.com/ByLCY/slidepress/fonts"
)

const testDeck = `
deck Demo {
  meta { title: "Demo ${year}" }
  slide title-default {
    header: "ACME"
    title: "Roadmap Overview"
    body: ["One", "Two"]
  }
  slide centered {
    title: "Thanks"
  }
}
`

func writeDeck(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "demo.deck")
	if err := os.WriteFile(path, []byte(testDeck), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	return path
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"deck only", []string{"a.deck"}, false},
		{"all flags", []string{"-o", "x.pdf", "--format", "html", "--workers", "2", "--timeout", "5s", "--strict", "a.deck"}, false},
		{"missing deck", nil, true},
		{"two decks", []string{"a.deck", "b.deck"}, true},
		{"verbose and quiet", []string{"-v", "-q", "a.deck"}, true},
		{"negative workers", []string{"--workers", "-1", "a.deck"}, true},
		{"unknown flag", []string{"--colour", "a.deck"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errUsage) {
				t.Fatalf("usage errors must wrap errUsage, got %v", err)
			}
		})
	}
}

func TestFlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	f, err := parseFlags([]string{"--timeout", "5s", "a.deck"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Export.Workers = 3
	cfg.Output.Format = config.FormatHTML
	if err := f.applyTo(cfg); err != nil {
		t.Fatalf("applyTo: %v", err)
	}
	if cfg.Export.Workers != 3 || cfg.Output.Format != config.FormatHTML {
		t.Fatalf("unset flags must not override config: %+v", cfg.Export)
	}
	if d, _ := cfg.Timeout(); d != 5*time.Second {
		t.Fatalf("timeout = %v", d)
	}

	f, _ = parseFlags([]string{"--format", "gif", "a.deck"}, io.Discard)
	if err := f.applyTo(config.DefaultConfig()); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("bad format should be invalid, got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{errors.New("boom"), exitGeneral},
		{fmt.Errorf("x: %w", errUsage), exitUsage},
		{fmt.Errorf("x: %w", deck.ErrParse), exitUsage},
		{fmt.Errorf("x: %w", export.ErrOverflow), exitUsage},
		{fmt.Errorf("x: %w", config.ErrInvalid), exitUsage},
		{fmt.Errorf("x: %w", os.ErrNotExist), exitIO},
		{fmt.Errorf("x: %w", fonts.ErrFontUnavailable), exitFonts},
		{fmt.Errorf("x: %w", export.ErrTimeout), exitTimeout},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	cfg := config.DefaultConfig()
	f := &cliFlags{input: filepath.Join("decks", "talk.md")}
	if got := outputPath(f, cfg); got != filepath.Join("decks", "talk.pdf") {
		t.Fatalf("default output = %q", got)
	}
	cfg.Output.Dir = "out"
	cfg.Output.Format = config.FormatHTML
	if got := outputPath(f, cfg); got != filepath.Join("out", "talk.html") {
		t.Fatalf("output dir ignored: %q", got)
	}
	f.out = "explicit.pdf"
	if got := outputPath(f, cfg); got != "explicit.pdf" {
		t.Fatalf("--out ignored: %q", got)
	}
}

func TestWriteNumbered(t *testing.T) {
	dir := t.TempDir()
	paths, err := writeNumbered(filepath.Join(dir, "demo.png"), [][]byte{[]byte("a"), []byte("b")})
	if err != nil {
		t.Fatalf("writeNumbered: %v", err)
	}
	want := []string{filepath.Join(dir, "demo-01.png"), filepath.Join(dir, "demo-02.png")}
	for i, p := range paths {
		if p != want[i] {
			t.Fatalf("path %d = %q, want %q", i, p, want[i])
		}
	}
}

func TestRunFormats(t *testing.T) {
	for _, format := range []string{config.FormatPDF, config.FormatHTML} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			in := writeDeck(t, dir)
			debug := filepath.Join(dir, "layout.json")
			f, err := parseFlags([]string{"--format", format, "--debug", debug, in}, io.Discard)
			if err != nil {
				t.Fatalf("parseFlags: %v", err)
			}
			written, err := run(context.Background(), f, discard())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(written) != 1 {
				t.Fatalf("written = %v", written)
			}
			data, err := os.ReadFile(written[0])
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			switch format {
			case config.FormatPDF:
				if !bytes.HasPrefix(data, []byte("%PDF-")) {
					t.Fatalf("not a PDF")
				}
			case config.FormatHTML:
				if !strings.Contains(string(data), "Roadmap") {
					t.Fatalf("html misses title")
				}
			}
			if _, err := os.Stat(debug); err != nil {
				t.Fatalf("debug JSON missing: %v", err)
			}
		})
	}
}

func TestRunThumbnails(t *testing.T) {
	dir := t.TempDir()
	in := writeDeck(t, dir)
	f, err := parseFlags([]string{"--format", "png", "-o", filepath.Join(dir, "thumbs", "demo.png"), in}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	written, err := run(context.Background(), f, discard())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected one PNG per slide, got %v", written)
	}
	for _, p := range written {
		data, err := os.ReadFile(p)
		if err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Fatalf("%s is not a PNG (%v)", p, err)
		}
	}
}

func TestRunDataBinding(t *testing.T) {
	dir := t.TempDir()
	in := writeDeck(t, dir)
	dataPath := filepath.Join(dir, "data.json")
	if err := os.WriteFile(dataPath, []byte(`{"year": 2026}`), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	f, err := parseFlags([]string{"--format", "html", "--data", dataPath, in}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	written, err := run(context.Background(), f, discard())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, _ := os.ReadFile(written[0])
	if !strings.Contains(string(data), "Demo 2026") {
		t.Fatalf("meta title should be interpolated")
	}
}

func TestRunMissingDeck(t *testing.T) {
	f := &cliFlags{input: filepath.Join(t.TempDir(), "missing.deck"), set: map[string]bool{}}
	_, err := run(context.Background(), f, discard())
	if exitCode(err) != exitIO {
		t.Fatalf("missing deck should be an IO error, got %v", err)
	}
}

func TestUsageListsAcceptedExtensions(t *testing.T) {
	var buf bytes.Buffer
	if _, err := parseFlags([]string{"--help"}, &buf); err == nil {
		t.Fatalf("--help should stop parsing")
	}
	usage := buf.String()
	for _, ext := range deck.Extensions {
		if !strings.Contains(usage, "deck"+ext) {
			t.Fatalf("usage misses %s: %q", ext, usage)
		}
		if _, err := deck.DetectFormat("x" + ext); err != nil {
			t.Fatalf("advertised extension %s rejected: %v", ext, err)
		}
	}
	if strings.Contains(usage, ".sp|") {
		t.Fatalf("usage advertises an unsupported extension: %q", usage)
	}
}
