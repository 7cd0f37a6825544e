package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficulty_OptionCount(t *testing.T) {
	assert.Equal(t, 2, Easy.OptionCount())
	assert.Equal(t, 3, Medium.OptionCount())
	assert.Equal(t, 4, Hard.OptionCount())
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"easy", Easy, false},
		{"Medium", Medium, false},
		{" HARD ", Hard, false},
		{"insane", Easy, true},
		{"", Easy, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDifficulty(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDifficulty_Next(t *testing.T) {
	assert.Equal(t, Medium, Easy.Next())
	assert.Equal(t, Hard, Medium.Next())
	assert.Equal(t, Easy, Hard.Next())
}

func TestDifficulty_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Difficulty `json:"d"`
	}{Hard})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"hard"}`, string(b))

	var out struct {
		D Difficulty `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"Medium"}`), &out))
	assert.Equal(t, Medium, out.D)
}
