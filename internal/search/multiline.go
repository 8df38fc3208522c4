package search

import (
	"bytes"
	"context"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fzmcp/fzmcp/internal/pipeline"
	"github.com/fzmcp/fzmcp/internal/resultline"
)

const fileReadWorkers = 8

// multilineRecords enumerates files under root and concatenates one
// NUL-terminated record per file: "<path>:\n" followed by the raw
// bytes. Unreadable files are skipped; record order follows the
// enumerator's output so results stay deterministic.
func (s *Service) multilineRecords(ctx context.Context, rg, root string, hidden bool, extraFlags []string) ([]byte, error) {
	args := []string{"--files"}
	if hidden {
		args = append(args, "--hidden")
	}
	args = append(args, extraFlags...)
	args = append(args, root)

	out, err := pipeline.Output(ctx, pipeline.Stage{Path: rg, Args: args}, 0, 1)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, p := range strings.Split(string(out), "\n") {
		if p == "" {
			continue
		}
		if s.keepPath(root, p) {
			paths = append(paths, p)
		}
	}

	return BuildNulRecords(ctx, paths)
}

// BuildNulRecords reads every path and concatenates NUL-terminated
// "<path>:\n<bytes>" records for the ranker's --read0 input. Reads run
// concurrently; assembly preserves the given path order. Unreadable
// files are skipped, never fatal.
func BuildNulRecords(ctx context.Context, paths []string) ([]byte, error) {
	contents := make([][]byte, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(fileReadWorkers)
	for i, p := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, p := range paths {
		if contents[i] == nil {
			continue
		}
		buf.WriteString(resultline.NormalizePath(p))
		buf.WriteString(":\n")
		buf.Write(contents[i])
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// SplitNulRecords decodes a ranker's NUL-framed output into raw
// record strings, replacing undecodable bytes rather than failing.
func SplitNulRecords(out []byte) []string {
	var records []string
	for _, chunk := range bytes.Split(out, []byte{0}) {
		if len(chunk) == 0 {
			continue
		}
		records = append(records, strings.ToValidUTF8(string(chunk), "�"))
	}
	return records
}

// capRunes truncates s to at most limit runes, never mid-rune, and
// marks the cut with "...". limit <= 0 disables the cap.
func capRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i] + "..."
		}
		count++
	}
	return s
}

// multilineMatches reshapes NUL-framed records into structured matches
// with the content preview capped at the configured length. Whole-file
// records carry no line number; 1 stands in.
func (s *Service) multilineMatches(out []byte, limit int) []resultline.Match {
	preview := s.cfg.Search.PreviewLength
	matches := []resultline.Match{}
	for _, record := range SplitNulRecords(out) {
		file, content, ok := strings.Cut(record, ":\n")
		if !ok {
			continue
		}
		content = strings.TrimSpace(content)
		content = capRunes(content, preview)
		matches = append(matches, resultline.Match{
			File:    strings.TrimSpace(file),
			Line:    1,
			Content: content,
		})
		if len(matches) == limit {
			break
		}
	}
	return matches
}
