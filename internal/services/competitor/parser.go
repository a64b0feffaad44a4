package competitor

import (
	"errors"
	"strings"

	"github.com/bobmcallan/stockmind/internal/models"
)

// ErrNoSectors is returned when the model output contains no usable block
var ErrNoSectors = errors.New("no sectors in model output")

// ParseSectors parses the model's block format. Blocks are separated by one
// or more blank lines; the first line of a block names the sector and the
// remaining lines are competitors. Blocks with fewer than two lines are dropped.
func ParseSectors(text string) ([]models.Sector, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var sectors []models.Sector
	var block []string

	flush := func() {
		if len(block) >= 2 {
			sectors = append(sectors, models.Sector{
				Name:        block[0],
				Competitors: append([]string(nil), block[1:]...),
			})
		}
		block = block[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	if len(sectors) == 0 {
		return nil, ErrNoSectors
	}
	return sectors, nil
}

// CompetitorNames flattens sectors into competitor names in order
func CompetitorNames(sectors []models.Sector) []string {
	var names []string
	for _, s := range sectors {
		names = append(names, s.Competitors...)
	}
	return names
}
