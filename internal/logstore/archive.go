package logstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/MattLee479/UpdatedWebsite2/internal/parser"
)

// ExpandGlob resolves a pattern to matching files. Recursive patterns such as
// logs/**/chat_log*.txt are supported.
func ExpandGlob(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
}

// LoadArchives parses every file matched by patterns and concatenates the
// results. Files ending in .zst are decompressed first. Each file is parsed on
// its own so a torn tail in one archive cannot swallow the next file's head.
func LoadArchives(ctx context.Context, patterns []string) (*parser.Result, []string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := ExpandGlob(p)
		if err != nil {
			return nil, nil, fmt.Errorf("expand %q: %w", p, err)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				abs = m
			}
			if !seen[abs] {
				seen[abs] = true
				files = append(files, abs)
			}
		}
	}
	sort.Strings(files)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("init zstd: %w", err)
	}
	defer dec.Close()

	out := &parser.Result{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return out, files, err
		}
		data, err := readArchive(dec, path)
		if err != nil {
			return out, files, err
		}
		res := parser.ParseBytes(data)
		out.Records = append(out.Records, res.Records...)
		out.Skipped += res.Skipped
	}
	return out, files, nil
}

func readArchive(dec *zstd.Decoder, path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return raw, nil
	}
	if err := dec.Reset(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return data, nil
}
