package competitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockmind/internal/models"
)

func TestParseSectors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []models.Sector
	}{
		{
			name:  "canonical example",
			input: "Tech:\nMS\nAAPL\n\nFinance:\nJPM\nBAC",
			expected: []models.Sector{
				{Name: "Tech:", Competitors: []string{"MS", "AAPL"}},
				{Name: "Finance:", Competitors: []string{"JPM", "BAC"}},
			},
		},
		{
			name:  "CRLF and indentation",
			input: "Cloud Computing\r\n    Amazon\r\n    Google\r\n\r\nGaming\r\n\tSony\r\n",
			expected: []models.Sector{
				{Name: "Cloud Computing", Competitors: []string{"Amazon", "Google"}},
				{Name: "Gaming", Competitors: []string{"Sony"}},
			},
		},
		{
			name:  "whitespace-only separators and repeated blanks",
			input: "A\nx\n   \n\t\n\nB\ny\nz",
			expected: []models.Sector{
				{Name: "A", Competitors: []string{"x"}},
				{Name: "B", Competitors: []string{"y", "z"}},
			},
		},
		{
			name:  "single-line blocks dropped",
			input: "Lonely\n\nReal\nOne\n\nAlso lonely",
			expected: []models.Sector{
				{Name: "Real", Competitors: []string{"One"}},
			},
		},
		{
			name:  "no blank separators makes one block",
			input: "Tech\nMS\nFinance\nJPM",
			expected: []models.Sector{
				{Name: "Tech", Competitors: []string{"MS", "Finance", "JPM"}},
			},
		},
		{
			name:  "duplicates within a sector kept",
			input: "Tech\nApple\nApple",
			expected: []models.Sector{
				{Name: "Tech", Competitors: []string{"Apple", "Apple"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sectors, err := ParseSectors(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sectors)
		})
	}
}

func TestParseSectors_Failures(t *testing.T) {
	for _, input := range []string{"", "   \n\n  ", "Only\n\nSingle\n\nLines"} {
		_, err := ParseSectors(input)
		assert.True(t, errors.Is(err, ErrNoSectors), "input %q", input)
	}
}

func TestCompetitorNames(t *testing.T) {
	names := CompetitorNames([]models.Sector{
		{Name: "A", Competitors: []string{"x", "y"}},
		{Name: "B", Competitors: []string{"z"}},
	})
	assert.Equal(t, []string{"x", "y", "z"}, names)
}
