package vocab

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Column headers required in tabular sources.
const (
	ColumnEnglish       = "English Word"
	ColumnWord          = "Traditional Chinese Word"
	ColumnTranscription = "Pinyin"
	ColumnCategory      = "Category"
)

// RequiredColumns lists the headers every tabular source must carry.
var RequiredColumns = []string{ColumnEnglish, ColumnWord, ColumnTranscription, ColumnCategory}

// DefaultFile is the dataset looked up in the working directory when no
// path is configured.
const DefaultFile = "china.xlsx"

// ErrUnsupportedFormat is returned for file extensions with no loader.
var ErrUnsupportedFormat = errors.New("unsupported vocabulary format")

// MissingColumnsError reports the required headers absent from a source.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s (expected: %s)",
		strings.Join(e.Missing, ", "), strings.Join(RequiredColumns, ", "))
}

// Load reads a dataset from path, choosing the decoder by extension
// (.xlsx, .csv or .json).
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	entries, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return NewDataset(entries, path), nil
}

// Decode reads entries from r in the format named by ext.
func Decode(r io.Reader, ext string) ([]Entry, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "xlsx":
		return decodeXLSX(r)
	case "csv":
		return decodeCSV(r)
	case "json":
		return decodeJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// LoadOrSample loads the dataset at path, or DefaultFile when path is
// empty. When the file is missing or cannot be read the embedded sample is
// returned with usedSample set. ds is never nil; err is the reason an
// existing file was rejected and is nil for a missing one.
func LoadOrSample(path string) (ds *Dataset, usedSample bool, err error) {
	if path == "" {
		path = DefaultFile
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return Sample(), true, nil
	}
	ds, err = Load(path)
	if err != nil {
		return Sample(), true, err
	}
	return ds, false, nil
}

// rowsToEntries maps a header row plus data rows to entries. Short rows
// yield empty fields; fully blank rows are skipped.
func rowsToEntries(rows [][]string) ([]Entry, error) {
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Missing: RequiredColumns}
	}

	idx := make(map[string]int)
	for i, h := range rows[0] {
		idx[normalizeHeader(h)] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	cell := func(row []string, col string) string {
		i := idx[normalizeHeader(col)]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		e := Entry{
			English:       cell(row, ColumnEnglish),
			Word:          cell(row, ColumnWord),
			Transcription: cell(row, ColumnTranscription),
			Category:      cell(row, ColumnCategory),
		}
		if e == (Entry{}) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// normalizeHeader lowercases and collapses whitespace so "english  word"
// and "English Word" match.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}
