package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/AnasZiaf26/Zapit/internal/app"
	"github.com/AnasZiaf26/Zapit/internal/availability"
	"github.com/AnasZiaf26/Zapit/internal/browser"
	"github.com/AnasZiaf26/Zapit/internal/cache"
	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
	"github.com/AnasZiaf26/Zapit/internal/genre"
	"github.com/AnasZiaf26/Zapit/internal/home"
	"github.com/AnasZiaf26/Zapit/internal/locale"
	"github.com/AnasZiaf26/Zapit/internal/log"
	"github.com/AnasZiaf26/Zapit/internal/search"
	"github.com/AnasZiaf26/Zapit/internal/session"
	"github.com/AnasZiaf26/Zapit/internal/store"
	"github.com/AnasZiaf26/Zapit/internal/tmdb"
	"github.com/AnasZiaf26/Zapit/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// plainTimeout bounds the non-interactive output mode
const plainTimeout = 30 * time.Second

func main() {
	var (
		showVersion bool
		configPath  string
		query       string
		lang        string
		kind        string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&query, "q", "", "print search results for a query and exit")
	flag.StringVar(&lang, "lang", "", "content language (overrides the environment)")
	flag.StringVar(&kind, "kind", "", "movie or series")
	flag.Parse()

	if showVersion {
		fmt.Printf("zapit %s\n", Version)
		return
	}

	if err := run(configPath, query, lang, kind); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deps is everything run wires together
type deps struct {
	ctrl   *app.Controller
	home   *home.Orchestrator
	search *search.Coordinator
	close  func()
}

func run(configPath, query, lang, kind string) error {
	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting zapit", "version", Version)

	d, err := wire(cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	langHint, tzHint := locale.Hints()
	if lang != "" {
		langHint = lang
	}
	d.ctrl.Start(ctx, langHint, tzHint)
	if kind != "" {
		k, ok := domain.ParseMediaKind(kind)
		if !ok {
			return fmt.Errorf("unknown kind %q", kind)
		}
		if err := d.ctrl.SetKind(ctx, k); err != nil {
			return err
		}
	}

	if query != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlain(ctx, d, query, os.Stdout)
	}
	return runTUI(ctx, d, cfg, logger)
}

// wire builds the component graph from configuration
func wire(cfg *config.Config, logger *slog.Logger) (*deps, error) {
	responses, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	sessions, err := store.NewSessionStore(cfg.Store.Path)
	if err != nil {
		responses.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := tmdb.NewClient(cfg.Upstream, responses, cfg.Cache.TTL, logger)
	policy := locale.NewPolicy(cfg.Locale, cfg.Region)

	homeOrch := home.NewOrchestrator(client, cfg.Home, logger)
	searchCoord := search.NewCoordinator(client, cfg.Search, search.RealClock{}, logger)

	ctrl := app.NewController(app.Deps{
		Home:         homeOrch,
		Search:       searchCoord,
		Genres:       genre.NewBrowser(client, client, logger),
		Availability: availability.NewResolver(client, policy.Fallbacks, logger),
		Session:      session.NewService(sessions, logger),
		Prefs:        sessions,
	}, policy, logger)

	return &deps{
		ctrl:   ctrl,
		home:   homeOrch,
		search: searchCoord,
		close: func() {
			ctrl.Close()
			if err := sessions.Close(); err != nil {
				logger.Warn("failed to close session store", "error", err)
			}
			if err := responses.Close(); err != nil {
				logger.Warn("failed to close cache", "error", err)
			}
		},
	}, nil
}

func runTUI(ctx context.Context, d *deps, cfg *config.Config, logger *slog.Logger) error {
	changes := tui.NewSignal()
	d.ctrl.SetObserver(changes.Notify)

	opener := browser.NewOpener(cfg.Browser, logger)
	model := tui.NewModel(ctx, d.ctrl, opener, changes.C(), logger)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runPlain prints search results or the home shelves as text, for pipes
// and scripts
func runPlain(ctx context.Context, d *deps, query string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, plainTimeout)
	defer cancel()

	if query != "" {
		d.ctrl.SetQuery(ctx, query)
		d.ctrl.SubmitQuery()
		d.search.Wait()
		printSearch(w, d.search.Snapshot())
		return nil
	}

	if err := d.home.Wait(ctx); err != nil {
		return fmt.Errorf("home did not finish loading: %w", err)
	}
	printHome(w, d.ctrl.Snapshot())
	return nil
}

func printHome(w io.Writer, v app.View) {
	fmt.Fprintf(w, "%s · %s · %s\n\n", v.Context.Kind, locale.DisplayName(v.Context.Locale.Language), v.Context.Region)
	for _, sec := range v.Home.Sections {
		fmt.Fprintln(w, sec.Title)
		switch sec.Status {
		case domain.StatusError:
			fmt.Fprintf(w, "  (failed: %s)\n", sec.Err)
		case domain.StatusLoading:
			fmt.Fprintln(w, "  (still loading)")
		default:
			printItems(w, sec.Items)
		}
		fmt.Fprintln(w)
	}
}

func printSearch(w io.Writer, s search.State) {
	if s.Err != "" {
		fmt.Fprintf(w, "search failed: %s\n", s.Err)
		return
	}
	fmt.Fprintf(w, "Results for %q (page %d of %d)\n", s.Query, s.Page, s.TotalPages)
	printItems(w, s.Items)
}

func printItems(w io.Writer, items []domain.MediaItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (nothing)")
		return
	}
	for _, item := range items {
		line := "  " + item.Title
		if desc := item.Description(); desc != "" {
			line += " (" + desc + ")"
		}
		if item.Kind == domain.KindSeries {
			line += " [series]"
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
