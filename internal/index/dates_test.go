package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ParsedDate
		ok   bool
	}{
		{"month space year", "January 2026.pdf", ParsedDate{Year: 2026, Month: 1}, true},
		{"year dash month", "2026-01.pdf", ParsedDate{Year: 2026, Month: 1}, true},
		{"month dash year with suffix", "September-2025-Pigeon-Web-Edition-Final.pdf", ParsedDate{Year: 2025, Month: 9}, true},
		{"month then year anywhere", "Bulletin for March, 2024 edition.pdf", ParsedDate{Year: 2024, Month: 3}, true},
		{"year then month anywhere", "Archive 2023 - October issue.pdf", ParsedDate{Year: 2023, Month: 10}, true},
		{"abbreviated month", "Feb 2025.pdf", ParsedDate{Year: 2025, Month: 2}, true},
		{"underscore separator", "November_2022_final.pdf", ParsedDate{Year: 2022, Month: 11}, true},
		{"no date", "Annual General Meeting Minutes.pdf", ParsedDate{}, false},
		{"implausible year", "January 0026.pdf", ParsedDate{}, false},
		{"bare issue number", "Issue 47.pdf", ParsedDate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFindDate_ReturnsMatchedSubstring(t *testing.T) {
	_, matched, ok := FindDate("Guest Speaker January 2026 Part 2.mp3")
	assert.True(t, ok)
	assert.Equal(t, "January 2026", matched)
}

func TestParsedDate_Label(t *testing.T) {
	assert.Equal(t, "January 2026", ParsedDate{Year: 2026, Month: 1}.Label())
	assert.Equal(t, "2024", ParsedDate{Year: 2024}.Label())
	assert.Equal(t, "", ParsedDate{}.Label())
}

func TestFolderYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2024", 2024, true},
		{" 2019 ", 2019, true},
		{"0042", 0, false},
		{"2024 Archive", 0, false},
		{"Minutes", 0, false},
	}

	for _, tt := range tests {
		got, ok := FolderYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)

		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
