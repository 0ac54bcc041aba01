// Package main provides the CLI entrypoint for bingo.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/bingo/internal/config"
	"github.com/verte-zerg/bingo/internal/engine"
	"github.com/verte-zerg/bingo/internal/generator"
	"github.com/verte-zerg/bingo/internal/historyui"
	"github.com/verte-zerg/bingo/internal/logger"
	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/names"
	"github.com/verte-zerg/bingo/internal/partition"
	"github.com/verte-zerg/bingo/internal/stats"
	"github.com/verte-zerg/bingo/internal/store"
	"github.com/verte-zerg/bingo/internal/tiebreak"
	"github.com/verte-zerg/bingo/internal/tui"
)

const (
	defaultCards   = 70
	defaultRuns    = 10
	defaultPlayers = 2
)

var (
	gameCards     int
	gameRows      int
	gameUniverse  int
	gameLabels    string
	gameNamesFile string
	gameSeed      int64

	playName string

	sessionsStatus string
	sessionsName   string
	sessionsLast   int

	historyName string

	cardsFresh bool

	simulateRuns    int
	simulateColor   bool
	simulateVerbose bool

	pebblePlayers int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bingo",
		Short:         "Bingo draw board",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}
	addGameFlags(rootCmd)
	rootCmd.Flags().StringVar(&playName, "name", "", "name for a new session (default: creation time)")

	rootCmd.AddCommand(newFinishCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newPebbleCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&gameCards, "cards", defaultCards, "number of cards in play")
	cmd.Flags().IntVar(&gameRows, "rows", partition.DefaultRows, "numbers per column on each card")
	cmd.Flags().IntVar(&gameUniverse, "universe", partition.DefaultUniverse, "highest number in the draw")
	cmd.Flags().StringVar(&gameLabels, "labels", strings.Join(partition.DefaultLabels, ","), "comma-separated column labels")
	cmd.Flags().StringVar(&gameNamesFile, "names-file", "", "file mapping numbers to names (default: config dir names.txt)")
	cmd.Flags().Int64Var(&gameSeed, "seed", 0, "random seed (0 picks one from the clock)")
}

type settings struct {
	env  config.EnvConfig
	file config.FileConfig
}

func loadSettings() (settings, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return settings{}, fmt.Errorf("failed to load environment: %w", err)
	}
	fileCfg, err := config.LoadConfig(env.ConfigPath)
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return settings{env: env, file: fileCfg}, nil
}

func applyGameConfig(cmd *cobra.Command, gc config.GameConfig) {
	applyIntConfig(cmd, "cards", &gameCards, gc.Cards)
	applyIntConfig(cmd, "rows", &gameRows, gc.Rows)
	applyIntConfig(cmd, "universe", &gameUniverse, gc.Universe)
	applyLabelsConfig(cmd, "labels", &gameLabels, gc.Labels)
	applyStringConfig(cmd, "names-file", &gameNamesFile, gc.NamesFile)
	applyInt64Config(cmd, "seed", &gameSeed, gc.Seed)
}

func currentGameConfig() (model.GameConfig, error) {
	cfg := model.GameConfig{
		Cards:    gameCards,
		Rows:     gameRows,
		Universe: gameUniverse,
		Labels:   partition.ParseLabels(gameLabels),
		Seed:     gameSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return model.GameConfig{}, err
	}
	return cfg, nil
}

func openLogger(env config.EnvConfig) (*zap.SugaredLogger, func()) {
	log, cleanup, err := logger.New(logger.Config{Path: env.LogPath, Level: env.LogLevel})
	if err != nil {
		logErrf("failed to open log, logging disabled: %v\n", err)
		return logger.Nop(), func() {}
	}
	return log, cleanup
}

func openStore(path string, log *zap.SugaredLogger) (*store.Store, func(), error) {
	st, err := store.Open(path, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closer := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closer, nil
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	set, err := loadSettings()
	if err != nil {
		return err
	}
	applyGameConfig(cmd, set.file.Game)
	cfg, err := currentGameConfig()
	if err != nil {
		return err
	}

	log, cleanup := openLogger(set.env)
	defer cleanup()

	st, closeStore, err := openStore(set.env.DBPath, log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	sess, game, err := startGame(ctx, st, cfg, log)
	if err != nil {
		return err
	}
	nameMap, err := loadNames(partition.Universe(game.Categories()))
	if err != nil {
		return err
	}

	m := tui.NewModel(game, st, sess.Name, nameMap, log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := game.Flush(ctx); err != nil {
		logErrf("%d draws could not be saved: %v\n", game.Unsaved(), err)
	}
	if !m.Finished() {
		logErrf("Session %q is still active. Run bingo to continue.\n", sess.Name)
		return nil
	}
	log.Infow("session.finished", "session", sess.ID, "drawn", game.State().Count())
	summary := stats.Summarize(game.Categories(), game.Records())
	if err := stats.RenderSummary(cmd.OutOrStdout(), summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// startGame resumes the active session or creates a new one from cfg.
func startGame(ctx context.Context, st *store.Store, cfg model.GameConfig, log *zap.SugaredLogger) (model.Session, *engine.Game, error) {
	sess, ok, err := st.ActiveSession(ctx)
	if err != nil {
		return model.Session{}, nil, fmt.Errorf("failed to load active session: %w", err)
	}
	if ok {
		cats, cards, err := loadSessionCards(ctx, st, sess.ID)
		if err != nil {
			return model.Session{}, nil, err
		}
		game, err := engine.Resume(ctx, engine.Config{
			SessionID:  sess.ID,
			Categories: cats,
			Cards:      cards,
			Sources:    engine.SeededSources(sess.Seed),
			Store:      st,
			Log:        log,
		})
		if err != nil {
			return model.Session{}, nil, fmt.Errorf("failed to resume session %q: %w", sess.Name, err)
		}
		return sess, game, nil
	}

	seed := resolveSeed(cfg.Seed)
	sources := engine.SeededSources(seed)
	cats, cards, err := buildCards(sources.Cards, cfg)
	if err != nil {
		return model.Session{}, nil, err
	}
	sess, err = st.CreateSession(ctx, store.NewSession{
		Name:       playName,
		Seed:       seed,
		Rows:       cfg.Rows,
		Categories: cats,
		Cards:      cards,
	})
	if err != nil {
		return model.Session{}, nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Infow("session.created", "session", sess.ID, "name", sess.Name, "cards", len(cards), "seed", seed)
	game, err := engine.New(engine.Config{
		SessionID:  sess.ID,
		Categories: cats,
		Cards:      cards,
		Sources:    sources,
		Store:      st,
		Log:        log,
	})
	if err != nil {
		return model.Session{}, nil, err
	}
	return sess, game, nil
}

func loadSessionCards(ctx context.Context, st *store.Store, id string) ([]model.Category, []model.Card, error) {
	cats, err := st.LoadCategories(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load categories: %w", err)
	}
	cards, err := st.LoadCards(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cards: %w", err)
	}
	return cats, cards, nil
}

func buildCards(src generator.Source, cfg model.GameConfig) ([]model.Category, []model.Card, error) {
	cats, err := partition.New(cfg.Labels, cfg.Universe)
	if err != nil {
		return nil, nil, err
	}
	gen, err := generator.New(src, cats, cfg.Rows)
	if err != nil {
		return nil, nil, err
	}
	cards, err := gen.GenerateCardSet(cfg.Cards)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate cards: %w", err)
	}
	return cats, cards, nil
}

func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func loadNames(universe int) (names.Map, error) {
	path := gameNamesFile
	if path == "" {
		path = config.DefaultNamesPath()
	}
	nameMap, err := names.Load(path, universe)
	if err != nil {
		return nil, fmt.Errorf("failed to load names: %w", err)
	}
	return nameMap, nil
}

func newFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Finish the active session",
		Args:  cobra.NoArgs,
		RunE:  runFinishCmd,
	}
}

func runFinishCmd(cmd *cobra.Command, _ []string) error {
	set, err := loadSettings()
	if err != nil {
		return err
	}
	log, cleanup := openLogger(set.env)
	defer cleanup()

	st, closeStore, err := openStore(set.env.DBPath, log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	sess, ok, err := st.ActiveSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active session: %w", err)
	}
	if !ok {
		return fmt.Errorf("no active session")
	}
	if err := st.FinishSession(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	log.Infow("session.finished", "session", sess.ID, "drawn", len(sess.DrawnNumbers))

	cats, cards, err := loadSessionCards(ctx, st, sess.ID)
	if err != nil {
		return err
	}
	records, err := engine.ReplayRecords(sess.Seed, cats, cards, sess.DrawnNumbers)
	if err != nil {
		return fmt.Errorf("failed to replay session: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Finished %q after %d draws.\n\n", sess.Name, len(sess.DrawnNumbers)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSummary(out, stats.Summarize(cats, records)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
	cmd.Flags().StringVar(&sessionsStatus, "status", "", "status filter (active or finished)")
	cmd.Flags().StringVar(&sessionsName, "name", "", "name filter")
	cmd.Flags().IntVar(&sessionsLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := sessionFilter(sessionsStatus, sessionsName, sessionsLast)
	if err != nil {
		return err
	}
	set, err := loadSettings()
	if err != nil {
		return err
	}
	log, cleanup := openLogger(set.env)
	defer cleanup()

	st, closeStore, err := openStore(set.env.DBPath, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := st.ListSessions(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if err := stats.RenderSessions(cmd.OutOrStdout(), sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func sessionFilter(status, name string, last int) (model.SessionFilter, error) {
	filter := model.SessionFilter{Name: strings.TrimSpace(name), Limit: last}
	switch model.SessionStatus(status) {
	case "":
	case model.StatusActive, model.StatusFinished:
		filter.Status = model.SessionStatus(status)
	default:
		return model.SessionFilter{}, fmt.Errorf("--status must be %q or %q", model.StatusActive, model.StatusFinished)
	}
	if last < 0 {
		return model.SessionFilter{}, fmt.Errorf("--last must be >= 0")
	}
	return filter, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyName, "name", "", "initial name filter")
	cmd.Flags().StringVar(&gameNamesFile, "names-file", "", "file mapping numbers to names (default: config dir names.txt)")
	cmd.Flags().IntVar(&gameUniverse, "universe", partition.DefaultUniverse, "highest number in the draw")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	set, err := loadSettings()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "names-file", &gameNamesFile, set.file.Game.NamesFile)
	applyIntConfig(cmd, "universe", &gameUniverse, set.file.Game.Universe)
	nameMap, err := loadNames(gameUniverse)
	if err != nil {
		return err
	}

	log, cleanup := openLogger(set.env)
	defer cleanup()

	st, closeStore, err := openStore(set.env.DBPath, log)
	if err != nil {
		return err
	}
	defer closeStore()

	m := historyui.NewModel(st, nameMap, model.SessionFilter{Name: strings.TrimSpace(historyName)})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Print the cards of the active session",
		Args:  cobra.NoArgs,
		RunE:  runCardsCmd,
	}
	addGameFlags(cmd)
	cmd.Flags().BoolVar(&cardsFresh, "fresh", false, "print a new card set even when a session is active")
	return cmd
}

func runCardsCmd(cmd *cobra.Command, _ []string) error {
	set, err := loadSettings()
	if err != nil {
		return err
	}
	applyGameConfig(cmd, set.file.Game)
	cfg, err := currentGameConfig()
	if err != nil {
		return err
	}

	var (
		cats    []model.Category
		cards   []model.Card
		heading string
	)
	if !cardsFresh {
		log, cleanup := openLogger(set.env)
		defer cleanup()
		st, closeStore, err := openStore(set.env.DBPath, log)
		if err != nil {
			return err
		}
		defer closeStore()
		ctx := context.Background()
		sess, ok, err := st.ActiveSession(ctx)
		if err != nil {
			return fmt.Errorf("failed to load active session: %w", err)
		}
		if ok {
			cats, cards, err = loadSessionCards(ctx, st, sess.ID)
			if err != nil {
				return err
			}
			heading = fmt.Sprintf("Session %q", sess.Name)
		}
	}
	if cards == nil {
		seed := resolveSeed(cfg.Seed)
		cats, cards, err = buildCards(generator.NewSource(seed), cfg)
		if err != nil {
			return err
		}
		heading = fmt.Sprintf("New card set (seed %d)", seed)
	}

	nameMap, err := loadNames(partition.Universe(cats))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s\n\n", heading); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCards(out, cats, cards, nameMap.Format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate games and report winners and ties",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	addGameFlags(cmd)
	cmd.Flags().IntVar(&simulateRuns, "runs", defaultRuns, "number of games to simulate")
	cmd.Flags().BoolVar(&simulateColor, "color", false, "force coloured histogram output")
	cmd.Flags().BoolVarP(&simulateVerbose, "verbose", "v", false, "print winners and ties of every game")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	set, err := loadSettings()
	if err != nil {
		return err
	}
	applyGameConfig(cmd, set.file.Game)
	applyIntConfig(cmd, "runs", &simulateRuns, set.file.Simulate.Runs)
	cfg, err := currentGameConfig()
	if err != nil {
		return err
	}
	if simulateRuns <= 0 {
		return fmt.Errorf("--runs must be > 0")
	}
	cats, err := partition.New(cfg.Labels, cfg.Universe)
	if err != nil {
		return err
	}

	log, cleanup := openLogger(set.env)
	defer cleanup()

	seed := resolveSeed(cfg.Seed)
	start := time.Now()
	res, err := stats.Simulate(cmd.Context(), stats.SimulationConfig{
		Runs:       simulateRuns,
		Cards:      cfg.Cards,
		Rows:       cfg.Rows,
		Categories: cats,
		Source:     generator.NewSource(seed),
		KeepRuns:   simulateVerbose,
	})
	if err != nil {
		return fmt.Errorf("failed to simulate: %w", err)
	}
	log.Infow("simulation.done", "runs", res.Runs, "cards", cfg.Cards, "seed", seed, "elapsed", time.Since(start))
	if err := stats.RenderSimulation(cmd.OutOrStdout(), res, cfg.Universe, 0, simulateColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPebbleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pebble",
		Short: "Hand out pebbles to break a tie between players",
		Args:  cobra.NoArgs,
		RunE:  runPebbleCmd,
	}
	cmd.Flags().IntVar(&pebblePlayers, "players", defaultPlayers, "number of tied players")
	cmd.Flags().IntVar(&gameUniverse, "universe", partition.DefaultUniverse, "highest pebble number")
	cmd.Flags().Int64Var(&gameSeed, "seed", 0, "random seed (0 picks one from the clock)")
	return cmd
}

func runPebbleCmd(cmd *cobra.Command, _ []string) error {
	set, err := loadSettings()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "universe", &gameUniverse, set.file.Game.Universe)
	if pebblePlayers < 2 || pebblePlayers > gameUniverse {
		return fmt.Errorf("--players must be between 2 and %d", gameUniverse)
	}

	players := make([]int, pebblePlayers)
	for i := range players {
		players[i] = i + 1
	}
	breaker := tiebreak.New(generator.NewSource(resolveSeed(gameSeed)), gameUniverse)
	assignments, err := breaker.Assign(players)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, a := range assignments {
		if _, err := fmt.Fprintf(out, "Player %d: pebble %d\n", a.CardID, a.Pebble); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "Winner: player %d\n", tiebreak.Winner(assignments)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	path := env.ConfigPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyLabelsConfig(cmd *cobra.Command, name string, target *string, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = strings.Join(*value, ",")
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# bingo configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# cards = %d              # Cards in play
# rows = %d                # Numbers per column on each card
# universe = %d           # Highest number in the draw
# labels = [%s]  # Column labels, one range per label
# names-file = %q
# seed = 0                # 0 picks a seed from the clock

[simulate]
# runs = %d               # Games per simulation
`,
		defaultCards,
		partition.DefaultRows,
		partition.DefaultUniverse,
		quoteLabels(partition.DefaultLabels),
		config.DefaultNamesPath(),
		defaultRuns,
	)
}

func quoteLabels(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	return strings.Join(quoted, ", ")
}

func validateConfig(cfg model.GameConfig) error {
	if cfg.Cards <= 0 {
		return fmt.Errorf("--cards must be > 0")
	}
	if cfg.Rows <= 0 {
		return fmt.Errorf("--rows must be > 0")
	}
	if len(cfg.Labels) == 0 {
		return fmt.Errorf("--labels must not be empty")
	}
	if cfg.Universe < len(cfg.Labels) {
		return fmt.Errorf("--universe must be >= number of labels (%d)", len(cfg.Labels))
	}
	if cfg.Cards > cfg.Universe {
		return fmt.Errorf("--cards must be <= --universe (%d) so every tie can be broken", cfg.Universe)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
