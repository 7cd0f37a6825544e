package vocab

import (
	"bytes"
	_ "embed"
)

//go:embed sample.json
var sampleJSON []byte

// Sample returns the built-in demonstration dataset.
func Sample() *Dataset {
	entries, err := decodeJSON(bytes.NewReader(sampleJSON))
	if err != nil {
		panic("vocab: embedded sample is invalid: " + err.Error())
	}
	return NewDataset(entries, "sample")
}
