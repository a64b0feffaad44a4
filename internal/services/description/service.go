// Package description looks up short company descriptions from Wikipedia
package description

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/stockmind/internal/clients/wikipedia"
	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
)

const (
	summarySentences = 2
	searchCandidates = 3
)

// companyKeywords mark a page or disambiguation option as being about a business
var companyKeywords = map[string]bool{
	"company": true, "inc": true, "corporation": true, "corp": true,
	"ltd": true, "limited": true, "group": true, "holdings": true,
	"technologies": true, "plc": true, "bank": true,
}

// wrongTopic lists, for names that are also common nouns, words that signal
// the page is about the noun rather than the business.
var wrongTopic = map[string]map[string]bool{
	"apple":  {"fruit": true, "tree": true, "malus": true, "orchard": true, "cultivar": true},
	"amazon": {"river": true, "rainforest": true, "basin": true, "amazons": true},
	"oracle": {"prophecy": true, "prophet": true, "divination": true, "delphi": true},
	"shell":  {"mollusc": true, "mollusk": true, "seashell": true, "exoskeleton": true},
	"target": {"archery": true, "shooting": true, "bullseye": true},
	"square": {"geometry": true, "quadrilateral": true, "polygon": true, "rectangle": true},
	"delta":  {"river": true, "landform": true, "sediment": true, "letter": true},
	"ford":   {"crossing": true, "shallow": true, "stream": true, "wading": true},
}

// Service implements DescriptionProvider
type Service struct {
	wiki   interfaces.WikipediaClient
	logger *common.Logger
}

// NewService creates a description provider. wiki may be nil, in which case
// every lookup returns the industry template.
func NewService(wiki interfaces.WikipediaClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{wiki: wiki, logger: logger}
}

// Describe returns a two-sentence description of the company. It never fails;
// the industry template is returned with SourceDegraded when Wikipedia has
// nothing usable.
func (s *Service) Describe(ctx context.Context, companyName, ticker string) (string, models.SourceStatus) {
	name := strings.TrimSpace(companyName)

	if s.wiki != nil && name != "" {
		if text, ok := s.lookup(ctx, name, ticker); ok {
			return text, models.SourceOK
		}
	}

	s.logger.Info().Str("company", name).Str("ticker", ticker).Msg("Using industry template description")
	return Template(name, ticker), models.SourceDegraded
}

func (s *Service) lookup(ctx context.Context, name, ticker string) (string, bool) {
	for _, variant := range variants(name) {
		if ctx.Err() != nil {
			return "", false
		}
		if text, ok := s.trySummary(ctx, name, variant, true); ok {
			return text, true
		}
	}

	titles, err := s.wiki.Search(ctx, name, searchCandidates)
	if err != nil {
		s.logger.Warn().Err(err).Str("company", name).Msg("Wikipedia search failed")
	}
	for _, title := range titles {
		if text, ok := s.trySummary(ctx, name, title, true); ok {
			return text, true
		}
	}

	if ticker != "" {
		titles, err := s.wiki.Search(ctx, name+" "+ticker, 1)
		if err != nil {
			s.logger.Warn().Err(err).Str("company", name).Str("ticker", ticker).Msg("Wikipedia search with ticker failed")
		}
		for _, title := range titles {
			if text, ok := s.trySummary(ctx, name, title, true); ok {
				return text, true
			}
		}
	}

	return "", false
}

// trySummary fetches one title. A disambiguation page is followed once,
// to its first company-like option.
func (s *Service) trySummary(ctx context.Context, name, title string, followDisambiguation bool) (string, bool) {
	page, err := s.wiki.Summary(ctx, title)
	if err != nil {
		var dErr *wikipedia.DisambiguationError
		switch {
		case errors.As(err, &dErr):
			if !followDisambiguation {
				return "", false
			}
			option := pickCompanyOption(dErr.Options)
			if option == "" {
				s.logger.Debug().Str("title", title).Int("options", len(dErr.Options)).Msg("No company option on disambiguation page")
				return "", false
			}
			return s.trySummary(ctx, name, option, false)
		case errors.Is(err, wikipedia.ErrPageNotFound):
			return "", false
		default:
			s.logger.Warn().Err(err).Str("title", title).Msg("Wikipedia summary failed")
			return "", false
		}
	}

	text := firstSentences(page.Extract, summarySentences)
	if text == "" {
		return "", false
	}
	if wrongTopicFor(name, text) {
		s.logger.Debug().Str("company", name).Str("title", page.Title).Msg("Rejected off-topic summary")
		return "", false
	}
	return text, true
}

// variants returns the decorated titles tried for a company name
func variants(name string) []string {
	return []string{
		name + " Inc.",
		name + " (company)",
		name + " Corporation",
		name,
	}
}

func pickCompanyOption(options []string) string {
	for _, o := range options {
		if containsAnyToken(o, companyKeywords) {
			return o
		}
	}
	return ""
}

// wrongTopicFor reports whether text looks like it describes the common noun
// behind a guarded company name instead of the company itself.
func wrongTopicFor(name, text string) bool {
	for _, tok := range tokens(name) {
		bad, guarded := wrongTopic[tok]
		if !guarded {
			continue
		}
		return containsAnyToken(text, bad) && !containsAnyToken(text, companyKeywords)
	}
	return false
}

// Industry buckets used by the template fallback
const (
	IndustryTechnology = "technology"
	IndustryFinance    = "finance"
	IndustryRetail     = "retail"
	IndustryEnergy     = "energy"
	IndustryHealthcare = "healthcare"
	IndustryOther      = "other"
)

var industryByTicker = map[string]string{
	"AAPL": IndustryTechnology, "MSFT": IndustryTechnology, "GOOGL": IndustryTechnology,
	"GOOG": IndustryTechnology, "META": IndustryTechnology, "NVDA": IndustryTechnology,
	"INTC": IndustryTechnology, "AMD": IndustryTechnology, "IBM": IndustryTechnology,
	"ORCL": IndustryTechnology, "CRM": IndustryTechnology, "ADBE": IndustryTechnology,
	"CSCO": IndustryTechnology, "QCOM": IndustryTechnology, "NFLX": IndustryTechnology,
	"TSLA": IndustryTechnology,
	"JPM": IndustryFinance, "BAC": IndustryFinance, "GS": IndustryFinance,
	"MS": IndustryFinance, "WFC": IndustryFinance, "C": IndustryFinance,
	"V": IndustryFinance, "MA": IndustryFinance, "PYPL": IndustryFinance,
	"AMZN": IndustryRetail, "WMT": IndustryRetail, "TGT": IndustryRetail,
	"COST": IndustryRetail, "HD": IndustryRetail, "NKE": IndustryRetail,
	"XOM": IndustryEnergy, "CVX": IndustryEnergy, "SHEL": IndustryEnergy,
	"BP": IndustryEnergy, "COP": IndustryEnergy,
	"JNJ": IndustryHealthcare, "PFE": IndustryHealthcare, "MRK": IndustryHealthcare,
	"UNH": IndustryHealthcare, "ABBV": IndustryHealthcare, "LLY": IndustryHealthcare,
}

var industryTemplates = map[string]string{
	IndustryTechnology: "%s (%s) is a technology company that develops software, hardware and digital services.",
	IndustryFinance:    "%s (%s) is a financial services company offering banking, payments and investment products.",
	IndustryRetail:     "%s (%s) is a retail company selling consumer goods through stores and online channels.",
	IndustryEnergy:     "%s (%s) is an energy company engaged in the production and distribution of oil, gas and power.",
	IndustryHealthcare: "%s (%s) is a healthcare company that develops medicines, medical products and health services.",
	IndustryOther:      "%s (%s) is a publicly traded company.",
}

// Industry returns the template bucket for a ticker
func Industry(ticker string) string {
	if bucket, ok := industryByTicker[strings.ToUpper(strings.TrimSpace(ticker))]; ok {
		return bucket
	}
	return IndustryOther
}

// Template renders the fallback description for a company
func Template(name, ticker string) string {
	if name == "" {
		name = ticker
	}
	if ticker == "" {
		ticker = "N/A"
	}
	return fmt.Sprintf(industryTemplates[Industry(ticker)], name, ticker)
}

// Ensure Service implements DescriptionProvider
var _ interfaces.DescriptionProvider = (*Service)(nil)
