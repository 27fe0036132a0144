package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTile(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		duration int
		expected []string
	}{
		{
			name:     "hour window with half hour slots",
			start:    "09:00",
			end:      "10:00",
			duration: 30,
			expected: []string{"09:00", "09:30"},
		},
		{
			name:     "window shorter than duration is empty",
			start:    "09:00",
			end:      "09:20",
			duration: 30,
			expected: nil,
		},
		{
			name:     "exact fit yields single slot",
			start:    "09:00",
			end:      "09:30",
			duration: 30,
			expected: []string{"09:00"},
		},
		{
			name:     "uneven tail is dropped",
			start:    "09:00",
			end:      "10:15",
			duration: 30,
			expected: []string{"09:00", "09:30"},
		},
		{
			name:     "25 minute treatment",
			start:    "09:00",
			end:      "10:00",
			duration: 25,
			expected: []string{"09:00", "09:25"},
		},
		{
			name:     "full day hour slots",
			start:    "09:00",
			end:      "12:00",
			duration: 60,
			expected: []string{"09:00", "10:00", "11:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := Tile(tt.start, tt.end, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, slots)
		})
	}
}

func TestTileBounds(t *testing.T) {
	// every slot satisfies start <= s and s+duration <= end, strictly increasing
	slots, err := Tile("08:10", "17:35", 45)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	startMin, _ := MinuteOfDay("08:10")
	endMin, _ := MinuteOfDay("17:35")
	prev := -1
	for _, s := range slots {
		m, err := MinuteOfDay(s)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m, startMin)
		assert.LessOrEqual(t, m+45, endMin)
		if prev >= 0 {
			assert.Equal(t, 45, m-prev)
		}
		prev = m
	}
}

func TestTileErrors(t *testing.T) {
	_, err := Tile("09:00", "10:00", 0)
	assert.Error(t, err)

	_, err = Tile("9am", "10:00", 30)
	assert.Error(t, err)

	_, err = Tile("09:00", "25:00", 30)
	assert.Error(t, err)
}

func TestMinuteOfDayRoundTrip(t *testing.T) {
	m, err := MinuteOfDay("07:05")
	require.NoError(t, err)
	assert.Equal(t, 425, m)
	assert.Equal(t, "07:05", FormatMinute(m))
}

func TestWindowCovers(t *testing.T) {
	w := Window{Start: "09:00", End: "17:00"}

	assert.True(t, w.Covers("09:00"))
	assert.True(t, w.Covers("16:59"))
	assert.False(t, w.Covers("17:00")) // end is exclusive
	assert.False(t, w.Covers("08:59"))
	assert.False(t, w.Covers("bogus"))
}

func TestMergeWindows(t *testing.T) {
	tests := []struct {
		name     string
		windows  []Window
		expected []Window
	}{
		{
			name:     "disjoint windows stay separate",
			windows:  []Window{{"14:00", "17:00"}, {"09:00", "12:00"}},
			expected: []Window{{"09:00", "12:00"}, {"14:00", "17:00"}},
		},
		{
			name:     "overlapping windows merge",
			windows:  []Window{{"09:00", "13:00"}, {"12:00", "17:00"}},
			expected: []Window{{"09:00", "17:00"}},
		},
		{
			name:     "touching windows merge",
			windows:  []Window{{"09:00", "12:00"}, {"12:00", "15:00"}},
			expected: []Window{{"09:00", "15:00"}},
		},
		{
			name:     "contained window is absorbed",
			windows:  []Window{{"09:00", "17:00"}, {"10:00", "11:00"}},
			expected: []Window{{"09:00", "17:00"}},
		},
		{
			name:     "malformed windows are dropped",
			windows:  []Window{{"09:00", "08:00"}, {"oops", "12:00"}},
			expected: nil,
		},
		{
			name:     "empty input",
			windows:  nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeWindows(tt.windows))
		})
	}
}
