// Package competitor extracts competitor sectors from a company description
// and ranks competitors by market capitalisation.
package competitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
)

// MaxDescriptionRunes caps the description embedded in the prompt
const MaxDescriptionRunes = 500

const promptTemplate = `Provide a structured list of sectors and their competitors for the following company description:
%s

Format:
Sector Name:
    Competitor 1
    Competitor 2
    Competitor 3

Leave a blank line after each sector. Do not use bullet points, numbering or any other text.`

// FallbackSectors is returned when the model cannot be used
func FallbackSectors() []models.Sector {
	return []models.Sector{
		{Name: "Technology", Competitors: []string{"Microsoft", "Apple", "Google"}},
		{Name: "Financial", Competitors: []string{"JPMorgan Chase", "Bank of America", "Goldman Sachs"}},
	}
}

// Extractor implements CompetitorExtractor using a language model
type Extractor struct {
	llm    interfaces.GeminiClient
	logger *common.Logger
}

// NewExtractor creates an extractor. llm may be nil, in which case the
// fallback sectors are always returned.
func NewExtractor(llm interfaces.GeminiClient, logger *common.Logger) *Extractor {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Extractor{llm: llm, logger: logger}
}

// BuildPrompt renders the extraction prompt for a description
func BuildPrompt(description string) string {
	return fmt.Sprintf(promptTemplate, truncateRunes(strings.TrimSpace(description), MaxDescriptionRunes))
}

// Extract asks the model for sectors and competitors. On any failure the
// fallback sectors are returned with SourceDegraded.
func (e *Extractor) Extract(ctx context.Context, description string) ([]models.Sector, models.SourceStatus) {
	if e.llm == nil {
		e.logger.Warn().Msg("No language model configured, using fallback sectors")
		return FallbackSectors(), models.SourceDegraded
	}

	start := time.Now()
	text, err := e.llm.GenerateContent(ctx, BuildPrompt(description))
	if err != nil {
		e.logger.Warn().Err(err).Msg("Competitor extraction failed, using fallback sectors")
		return FallbackSectors(), models.SourceDegraded
	}

	sectors, err := ParseSectors(text)
	if err != nil {
		e.logger.Warn().Err(err).Int("response_len", len(text)).Msg("Unparseable competitor list, using fallback sectors")
		return FallbackSectors(), models.SourceDegraded
	}

	e.logger.Debug().
		Int("sectors", len(sectors)).
		Int("competitors", len(CompetitorNames(sectors))).
		Dur("elapsed", time.Since(start)).
		Msg("Competitors extracted")

	return sectors, models.SourceOK
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Ensure Extractor implements CompetitorExtractor
var _ interfaces.CompetitorExtractor = (*Extractor)(nil)
