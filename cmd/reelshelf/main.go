package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"reelshelf/internal/batch"
	"reelshelf/internal/cache"
	"reelshelf/internal/config"
	"reelshelf/internal/domain"
	"reelshelf/internal/log"
	"reelshelf/internal/match"
	"reelshelf/internal/provider/googlebooks"
	"reelshelf/internal/provider/openlibrary"
	"reelshelf/internal/provider/tmdb"
	"reelshelf/internal/service"
	"reelshelf/internal/source/todoist"
	"reelshelf/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Cache slot versions. Bump a version when the cached shape or the matching
// rules for that slot change; the old blob is discarded on next open.
const (
	movieSearchVersion    = 2
	movieDetailsVersion   = 1
	movieProvidersVersion = 1
	bookSearchVersion     = 2
)

func main() {
	var showVersion bool
	var syncOnly bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&syncOnly, "sync", false, "refresh and enrich the library, then exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("reelshelf %s\n", Version)
		return
	}

	if err := run(syncOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(syncOnly bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting reelshelf", "version", Version)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	cacheDir, err := cfg.EnsureCacheDir()
	if err != nil {
		return err
	}
	db, err := cache.Open(cacheDir)
	if err != nil {
		return err
	}
	defer db.Close()

	movieSearches := cache.NewStore[*domain.MovieMatch](db, "movie_searches", movieSearchVersion, logger)
	movieDetails := cache.NewStore[*domain.MovieDetails](db, "movie_details", movieDetailsVersion, logger)
	movieProviders := cache.NewStore[*domain.WatchProviders](db, "movie_providers", movieProvidersVersion, logger)
	bookSearches := cache.NewStore[*domain.BookMatch](db, "book_searches", bookSearchVersion, logger)

	var sourceOpts []todoist.Option
	if cfg.Todoist.RelayURL != "" {
		sourceOpts = append(sourceOpts, todoist.WithBaseURL(cfg.Todoist.RelayURL))
	}
	source := todoist.NewClient(cfg.Todoist.Token, logger, sourceOpts...)

	movieProvider, err := tmdb.New(cfg.TMDB.APIKey, logger)
	if err != nil {
		return err
	}

	movies := match.NewMovieMatcher(movieProvider, movieSearches, movieDetails, movieProviders, logger)
	books := match.NewBookMatcher(openlibrary.New(logger), googlebooks.New(logger), bookSearches, logger)

	library := service.NewLibraryService(source, movies, books, service.Options{
		MoviesProject: cfg.Todoist.MoviesProject,
		BooksProject:  cfg.Todoist.BooksProject,
		Region:        cfg.TMDB.Region,
		Concurrency:   cfg.Sync.Concurrency,
		BatchDelay:    time.Duration(cfg.Sync.BatchDelayMs) * time.Millisecond,
	}, logger)
	defer library.Close()

	if syncOnly {
		return runHeadlessSync(library)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; use -sync for headless refresh")
	}

	model := tui.NewModel(library, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runHeadlessSync refreshes both projects once, printing progress lines, and
// leaves the warmed caches behind for the next interactive session.
func runHeadlessSync(library *service.LibraryService) error {
	fmt.Println("Refreshing library...")

	start := time.Now()
	err := library.Refresh(context.Background(), func(p batch.Progress) {
		fmt.Printf("\r  enriched %d/%d", p.Done, p.Total)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	movies := library.Items(domain.MediaKindMovie)
	books := library.Items(domain.MediaKindBook)
	fmt.Printf("Done: %d movies, %d books in %s\n", len(movies), len(books), time.Since(start).Round(time.Second))
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to reelshelf!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	var err error
	if cfg.Todoist.Token, err = promptRequired(reader, "Todoist API token"); err != nil {
		return err
	}
	if cfg.Todoist.MoviesProject, err = prompt(reader, "Movies project ID (empty to skip)"); err != nil {
		return err
	}
	if cfg.Todoist.BooksProject, err = prompt(reader, "Books project ID (empty to skip)"); err != nil {
		return err
	}
	if cfg.TMDB.APIKey, err = promptRequired(reader, "TMDB API key"); err != nil {
		return err
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run reelshelf again to start the application.")
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func promptRequired(reader *bufio.Reader, label string) (string, error) {
	for {
		value, err := prompt(reader, label)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		fmt.Println("A value is required. Please try again.")
	}
}
