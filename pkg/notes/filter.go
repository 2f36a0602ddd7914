package notes

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Matcher reports whether note text mentions any configured keyword.
type Matcher struct {
	keywords []string
}

// NewMatcher builds a case-insensitive substring matcher. Empty keywords are
// dropped.
func NewMatcher(keywords []string) Matcher {
	cleaned := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			cleaned = append(cleaned, keyword)
		}
	}
	return Matcher{keywords: cleaned}
}

// Match reports whether text contains at least one keyword.
func (m Matcher) Match(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range m.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Empty reports whether the matcher has no keywords.
func (m Matcher) Empty() bool {
	return len(m.keywords) == 0
}

// FilterStats summarizes one filter pass.
type FilterStats struct {
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
}

// Filter streams the input table and writes rows whose text column matches the
// matcher, preserving all columns and their order. Rows missing the text cell
// are skipped with a warning. An empty match set produces a header-only output.
type Filter struct {
	TextColumn string
	Matcher    Matcher

	// Warn is called for skipped rows. Optional.
	Warn func(row int, reason string)
	// Progress is called periodically with running counts. Optional.
	Progress func(stats FilterStats)
	// ProgressEvery controls how often Progress fires, in scanned rows.
	ProgressEvery int
}

func (f Filter) textColumn() string {
	if f.TextColumn != "" {
		return f.TextColumn
	}
	return DefaultTextColumn
}

// Run filters inputPath into outputPath. Either path may end in .gz.
func (f Filter) Run(ctx context.Context, inputPath, outputPath string) (FilterStats, error) {
	if f.Matcher.Empty() {
		return FilterStats{}, errors.New("filter: at least one keyword is required")
	}

	reader, closeFn, err := openTable(inputPath)
	if err != nil {
		return FilterStats{}, err
	}
	defer closeFn()

	writer, finish, err := createTable(outputPath)
	if err != nil {
		return FilterStats{}, err
	}

	header, err := reader.Read()
	if err != nil {
		finish()
		return FilterStats{}, fmt.Errorf("filter %s: reading header: %w", inputPath, err)
	}
	textIdx := columnIndex(header, f.textColumn())
	if textIdx < 0 {
		finish()
		return FilterStats{}, fmt.Errorf("filter %s: column %q does not exist, available: %v", inputPath, f.textColumn(), header)
	}
	if err := writer.Write(header); err != nil {
		finish()
		return FilterStats{}, err
	}

	progressEvery := f.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 10000
	}

	var stats FilterStats
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			finish()
			return stats, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Skipped++
			if f.Warn != nil {
				f.Warn(row, err.Error())
			}
			continue
		}
		stats.Scanned++
		if textIdx >= len(record) {
			stats.Skipped++
			if f.Warn != nil {
				f.Warn(row, "missing text cell")
			}
			continue
		}
		if f.Matcher.Match(record[textIdx]) {
			if err := writer.Write(record); err != nil {
				finish()
				return stats, err
			}
			stats.Matched++
		}
		if f.Progress != nil && stats.Scanned%progressEvery == 0 {
			f.Progress(stats)
		}
	}

	if err := finish(); err != nil {
		return stats, err
	}
	return stats, nil
}

// createTable opens a CSV writer for path, gzip-compressing when the path ends
// in .gz. The returned finish flushes and closes everything.
func createTable(path string) (*csv.Writer, func() error, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}

	var raw io.Writer = file
	var gz *gzip.Writer
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz = gzip.NewWriter(file)
		raw = gz
	}
	writer := csv.NewWriter(raw)

	finish := func() error {
		writer.Flush()
		err := writer.Error()
		if gz != nil {
			if closeErr := gz.Close(); err == nil {
				err = closeErr
			}
		}
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		return err
	}
	return writer, finish, nil
}
