package vocab

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/mod/semver"
)

// CurrentVersion is written into exported JSON datasets. Readers accept
// any v1 version.
const CurrentVersion = "v1.0.0"

func decodeXLSX(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rowsToEntries(rows)
}

func decodeCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsToEntries(rows)
}

// jsonDataset is the on-disk JSON layout.
type jsonDataset struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Keys every JSON entry must carry, in Entry field order.
var requiredJSONKeys = []string{"english", "word", "transcription", "category"}

// MissingFieldsError reports the keys absent from one JSON entry.
type MissingFieldsError struct {
	Index   int
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("entry %d: missing required fields: %s (expected: %s)",
		e.Index, strings.Join(e.Missing, ", "), strings.Join(requiredJSONKeys, ", "))
}

func decodeJSON(r io.Reader) ([]Entry, error) {
	var raw struct {
		Version string                       `json:"version"`
		Entries []map[string]json.RawMessage `json:"entries"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	doc := jsonDataset{Version: raw.Version, Entries: make([]Entry, 0, len(raw.Entries))}
	for i, fields := range raw.Entries {
		var missing []string
		for _, k := range requiredJSONKeys {
			if v, ok := fields[k]; !ok || string(v) == "null" {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return nil, &MissingFieldsError{Index: i, Missing: missing}
		}

		e := Entry{}
		for k, dst := range map[string]*string{
			"english":       &e.English,
			"word":          &e.Word,
			"transcription": &e.Transcription,
			"category":      &e.Category,
		} {
			if err := json.Unmarshal(fields[k], dst); err != nil {
				return nil, fmt.Errorf("entry %d: field %s: %w", i, k, err)
			}
		}
		doc.Entries = append(doc.Entries, e)
	}

	if !semver.IsValid(doc.Version) {
		return nil, fmt.Errorf("invalid dataset version %q", doc.Version)
	}
	if semver.Major(doc.Version) != semver.Major(CurrentVersion) {
		return nil, fmt.Errorf("unsupported dataset version %s (want %s.x)",
			doc.Version, semver.Major(CurrentVersion))
	}
	return doc.Entries, nil
}

// EncodeJSON writes entries in the versioned JSON layout.
func EncodeJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonDataset{Version: CurrentVersion, Entries: entries})
}

// EncodeXLSX writes entries as a single-sheet workbook with the required
// header row.
func EncodeXLSX(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, len(RequiredColumns))
	for i, c := range RequiredColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.English, e.Word, e.Transcription, e.Category}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
