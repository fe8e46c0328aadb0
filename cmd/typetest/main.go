// Package main provides the CLI entrypoint for typetest.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typetest/internal/broadcast"
	"github.com/verte-zerg/typetest/internal/config"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/session"
	"github.com/verte-zerg/typetest/internal/stats"
	"github.com/verte-zerg/typetest/internal/statsui"
	"github.com/verte-zerg/typetest/internal/store"
	"github.com/verte-zerg/typetest/internal/texts"
	"github.com/verte-zerg/typetest/internal/tui"
)

const (
	defaultHistoryLast   = 20
	defaultHistoryWindow = 5
	fallbackTermWidth    = 80
)

var (
	testDuration  int
	testTexts     string
	testSave      bool
	testBroadcast string

	textsPath string

	historySince  string
	historyLast   int
	historyWindow int
	historyPlain  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typetest",
		Short:         "Timed typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().IntVar(&testDuration, "duration", session.DefaultDuration, "test length in seconds")
	rootCmd.Flags().StringVar(&testTexts, "texts", "", "paragraphs file (blank-line separated)")
	rootCmd.Flags().BoolVar(&testSave, "save", true, "save results to history")
	rootCmd.Flags().StringVar(&testBroadcast, "broadcast", "", "stream live metrics over websocket on this address (e.g. :8080)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTextsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "duration", &testDuration, fileCfg.Test.Duration)
	applyConfig(cmd, "texts", &testTexts, fileCfg.Test.Texts)
	applyConfig(cmd, "save", &testSave, fileCfg.Test.Save)
	applyConfig(cmd, "broadcast", &testBroadcast, fileCfg.Test.Broadcast)

	cfg := model.Config{
		Duration:  testDuration,
		TextsPath: testTexts,
		Save:      testSave,
		Broadcast: testBroadcast,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	picker, err := loadPicker(cfg.TextsPath)
	if err != nil {
		return err
	}

	var st tui.ResultStore
	if cfg.Save {
		db, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		st = db
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var extra session.Display
	if cfg.Broadcast != "" {
		ln, err := broadcast.Listen(cfg.Broadcast)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Broadcast, err)
		}
		hub := broadcast.NewHub(logErrf)
		extra = hub
		serveErr := make(chan error, 1)
		go func() {
			serveErr <- broadcast.Serve(ctx, ln, hub)
		}()
		defer func() {
			cancel()
			if err := <-serveErr; err != nil {
				logErrf("broadcast server: %v\n", err)
			}
		}()
	}

	m := tui.NewModel(cfg, picker, st, extra)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolvePool loads the paragraph pool from path, the default paragraphs
// file when it exists, or the built-in paragraphs.
func resolvePool(path string) ([]string, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultTextsPath()); err == nil {
			path = config.DefaultTextsPath()
		}
	}
	return texts.Resolve(path)
}

func loadPicker(path string) (*texts.Picker, error) {
	pool, err := resolvePool(path)
	if err != nil {
		return nil, err
	}
	picker, err := texts.NewPicker(pool)
	if err != nil {
		return nil, fmt.Errorf("invalid paragraph pool: %w", err)
	}
	return picker, nil
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
	path := config.DefaultConfigPath()
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "List the paragraph pool",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
	cmd.Flags().StringVar(&textsPath, "texts", "", "paragraphs file (blank-line separated)")
	return cmd
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "texts", &textsPath, fileCfg.Test.Texts)
	pool, err := resolvePool(textsPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, p := range pool {
		if _, err := fmt.Fprintf(out, "%2d  %4d chars  %s\n", i, utf8.RuneCountInString(p), preview(p, 60)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "%d paragraphs\n", len(pool)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N results (0 for all)")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the trend")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print plain text instead of the interactive browser")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.HistoryConfig{
		Since:  sinceTime,
		Last:   historyLast,
		Window: historyWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if interactiveOutput(cmd) {
		p := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to run history ui: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(out, report.Results, cfg.Window, terminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTable(out, report.Results, time.Now()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// interactiveOutput reports whether history should open the browser.
func interactiveOutput(cmd *cobra.Command) bool {
	if historyPlain || cmd.OutOrStdout() != os.Stdout {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typetest configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# duration = %d           # Test length in seconds
# texts = ""             # Paragraphs file, blank-line separated (default: built-in pool)
# save = true            # Save results to history
# broadcast = ""         # Websocket address for live metrics, e.g. ":8080"
`,
		session.DefaultDuration,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
