package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeLabel(t *testing.T) {
	assert.Equal(t, "00:00 - 00:05", RangeLabel(Segment{Start: 0, End: 5.4}))
	assert.Equal(t, "01:01 - 01:30", RangeLabel(Segment{Start: 61.2, End: 90.9}))
	assert.Equal(t, "61:40 - 61:41", RangeLabel(Segment{Start: 3700, End: 3701}))
}

func TestTableRows(t *testing.T) {
	result := &Result{
		Segments: []Segment{
			{Start: 0, End: 2, Text: "  namaste  "},
			{Start: 2, End: 4, Text: "duniya"},
		},
	}

	rows := TableRows(result)
	require.Len(t, rows, 2)
	assert.Equal(t, "00:00 - 00:02", rows[0].Time)
	assert.Equal(t, "namaste", rows[0].Text)
	assert.Equal(t, "duniya", rows[1].Text)

	assert.Nil(t, TableRows(nil))
}
