// Package app wires configuration, clients, services and the MCP server
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockmind/internal/clients/alphavantage"
	"github.com/bobmcallan/stockmind/internal/clients/eodhd"
	"github.com/bobmcallan/stockmind/internal/clients/gemini"
	"github.com/bobmcallan/stockmind/internal/clients/wikipedia"
	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/services/alert"
	"github.com/bobmcallan/stockmind/internal/services/analyze"
	"github.com/bobmcallan/stockmind/internal/services/chart"
	"github.com/bobmcallan/stockmind/internal/services/competitor"
	"github.com/bobmcallan/stockmind/internal/services/description"
	"github.com/bobmcallan/stockmind/internal/services/market"
	"github.com/bobmcallan/stockmind/internal/services/ticker"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config *common.Config
	Logger *common.Logger

	EODHDClient        interfaces.EODHDClient
	SymbolSearchClient interfaces.SymbolSearchClient
	WikipediaClient    interfaces.WikipediaClient
	GeminiClient       interfaces.GeminiClient

	TickerService      *ticker.Service
	DescriptionService *description.Service
	MarketService      *market.Service
	Extractor          *competitor.Extractor
	Ranker             *competitor.Ranker
	AnalyzeService     *analyze.Service
	AlertStore         *alert.Store
	AlertService       *alert.Service
	AlertScheduler     *alert.Scheduler
	ChartService       *chart.Service

	MCPServer   *server.MCPServer
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the given path, STOCKMIND_CONFIG, the binary
// directory, then config/stockmind.toml.
func resolveConfigPath(configPath, binDir string) string {
	if configPath == "" {
		configPath = os.Getenv("STOCKMIND_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "stockmind.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stockmind.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration, builds the logger and wires every service.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()
	config, err := common.LoadConfig(resolveConfigPath(configPath, binDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return New(context.Background(), config, logger), nil
}

// New wires clients and services from an already loaded config.
// Clients whose API key is missing stay nil and the services degrade.
func New(ctx context.Context, config *common.Config, logger *common.Logger) *App {
	startupStart := time.Now()
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	a := &App{
		Config: config,
		Logger: logger,
	}

	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - prices and market caps will be mocked or missing")
	}

	avKey, err := common.ResolveAPIKey("alpha_vantage_api_key", config.Clients.AlphaVantage.APIKey)
	if err != nil {
		logger.Warn().Msg("Alpha Vantage API key not configured - ticker lookup limited to the static table")
	}

	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - competitor extraction will use fallback sectors")
	}

	// Initialize API clients. Interface fields stay nil when a key is missing.
	if eodhdKey != "" {
		a.EODHDClient = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	if avKey != "" {
		a.SymbolSearchClient = alphavantage.NewClient(avKey,
			alphavantage.WithBaseURL(config.Clients.AlphaVantage.BaseURL),
			alphavantage.WithLogger(logger),
			alphavantage.WithTimeout(config.Clients.AlphaVantage.GetTimeout()),
		)
	}

	a.WikipediaClient = wikipedia.NewClient(
		wikipedia.WithBaseURL(config.Clients.Wikipedia.BaseURL),
		wikipedia.WithUserAgent(config.Clients.Wikipedia.UserAgent),
		wikipedia.WithLogger(logger),
		wikipedia.WithRateLimit(config.Clients.Wikipedia.RateLimit),
		wikipedia.WithTimeout(config.Clients.Wikipedia.GetTimeout()),
	)

	if geminiKey != "" {
		geminiClient, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Gemini client - competitor extraction will use fallback sectors")
		} else {
			a.GeminiClient = geminiClient
		}
	}

	// Initialize services
	a.TickerService = ticker.NewService(a.SymbolSearchClient, logger)
	a.TickerService.SetSearchTimeout(config.Clients.AlphaVantage.GetTimeout())
	a.DescriptionService = description.NewService(a.WikipediaClient, logger)
	a.MarketService = market.NewService(a.EODHDClient, logger)
	a.Extractor = competitor.NewExtractor(a.GeminiClient, logger)
	a.Ranker = competitor.NewRanker(a.TickerService, a.MarketService, logger)
	a.Ranker.SetTopN(config.Analyze.TopCompetitors)
	a.AnalyzeService = analyze.NewService(
		a.TickerService,
		a.DescriptionService,
		a.MarketService,
		a.Extractor,
		a.Ranker,
		config.Analyze.Policy,
		logger,
	)

	a.AlertStore = alert.NewStore()
	a.AlertService = alert.NewService(a.AlertStore, a.MarketService, logger)
	a.AlertService.SetRSIPeriod(config.Alerts.RSIPeriod)
	a.AlertScheduler = alert.NewScheduler(a.AlertService, config.Alerts.GetInterval(), logger)

	a.ChartService = chart.NewService(a.MarketService, logger)

	// Create MCP server
	a.MCPServer = server.NewMCPServer(
		"stockmind",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)
	registerTools(a.MCPServer, a)

	a.StartupTime = time.Now()
	logger.Info().
		Str("policy", a.AnalyzeService.Policy()).
		Bool("eodhd", a.EODHDClient != nil).
		Bool("symbol_search", a.SymbolSearchClient != nil).
		Bool("gemini", a.GeminiClient != nil).
		Dur("elapsed", time.Since(startupStart)).
		Msg("Services initialized")

	return a
}

// StartAlertScheduler starts the background alert checker when enabled
func (a *App) StartAlertScheduler() error {
	if !a.Config.Alerts.Enabled {
		a.Logger.Info().Msg("Alert checker disabled")
		return nil
	}
	return a.AlertScheduler.Start()
}

// Close stops background work, waiting at most until ctx is done
func (a *App) Close(ctx context.Context) {
	if a.AlertScheduler != nil {
		a.AlertScheduler.Stop(ctx)
	}
}
