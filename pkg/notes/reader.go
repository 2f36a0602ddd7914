package notes

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Note is a single clinical discharge record.
type Note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DefaultTextColumn is the free-text column name in MIMIC-style exports.
const DefaultTextColumn = "text"

// DefaultIDColumns is the identifier fallback chain; the first column present
// with a non-empty value wins, otherwise the row index is used.
var DefaultIDColumns = []string{"subject_id", "hadm_id", "patient_id", "note_id", "id"}

// Source streams notes from a delimited file, gzip-compressed or plain.
type Source struct {
	Path       string
	TextColumn string
	IDColumns  []string
	Limit      int

	// Warn is called for rows that cannot be read as notes. Optional.
	Warn func(row int, reason string)
}

// NewSource returns a source with default column resolution.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

func (s *Source) textColumn() string {
	if s.TextColumn != "" {
		return s.TextColumn
	}
	return DefaultTextColumn
}

func (s *Source) idColumns() []string {
	if len(s.IDColumns) > 0 {
		return s.IDColumns
	}
	return DefaultIDColumns
}

func (s *Source) warn(row int, reason string) {
	if s.Warn != nil {
		s.Warn(row, reason)
	}
}

// Notes streams notes in file order. Rows without usable text are skipped with
// a warning, not a stream error.
func (s *Source) Notes(ctx context.Context) (<-chan Note, <-chan error) {
	noteCh := make(chan Note)
	errCh := make(chan error, 1)

	go func() {
		defer close(noteCh)
		defer close(errCh)

		reader, closeFn, err := openTable(s.Path)
		if err != nil {
			errCh <- err
			return
		}
		defer closeFn()

		header, err := reader.Read()
		if err != nil {
			errCh <- fmt.Errorf("notes %s: reading header: %w", s.Path, err)
			return
		}
		textIdx := columnIndex(header, s.textColumn())
		if textIdx < 0 {
			errCh <- fmt.Errorf("notes %s: column %q does not exist, available: %v", s.Path, s.textColumn(), header)
			return
		}
		idIdx := firstColumnIndex(header, s.idColumns())

		emitted := 0
		for row := 1; ; row++ {
			if s.Limit > 0 && emitted >= s.Limit {
				return
			}
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				s.warn(row, err.Error())
				continue
			}
			if textIdx >= len(record) {
				s.warn(row, "missing text cell")
				continue
			}
			text := strings.TrimSpace(record[textIdx])
			if text == "" {
				s.warn(row, "empty note text")
				continue
			}

			note := Note{ID: rowID(record, idIdx, row), Text: text}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case noteCh <- note:
				emitted++
			}
		}
	}()

	return noteCh, errCh
}

func openTable(path string) (*csv.Reader, func(), error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	var raw io.Reader = file
	closeFn := func() { file.Close() }
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("notes %s: %w", path, err)
		}
		raw = gz
		closeFn = func() {
			gz.Close()
			file.Close()
		}
	}

	reader := csv.NewReader(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader, closeFn, nil
}

func columnIndex(header []string, name string) int {
	for i, column := range header {
		if strings.EqualFold(strings.TrimSpace(column), name) {
			return i
		}
	}
	return -1
}

func firstColumnIndex(header []string, names []string) int {
	for _, name := range names {
		if idx := columnIndex(header, name); idx >= 0 {
			return idx
		}
	}
	return -1
}

func rowID(record []string, idIdx, row int) string {
	if idIdx >= 0 && idIdx < len(record) {
		if id := strings.TrimSpace(record[idIdx]); id != "" {
			return id
		}
	}
	return strconv.Itoa(row)
}
