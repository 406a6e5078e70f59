/*
MIT License

Copyright (c) 2025 Yuval Adar <adary@adary.org>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/adaryorg/securedesk/internal/clipboard"
	"github.com/adaryorg/securedesk/internal/config"
	"github.com/adaryorg/securedesk/internal/isolate"
	"github.com/adaryorg/securedesk/internal/journal"
	"github.com/adaryorg/securedesk/internal/logging"
	"github.com/adaryorg/securedesk/internal/metrics"
	"github.com/adaryorg/securedesk/internal/platform"
	"github.com/adaryorg/securedesk/internal/version"
)

const (
	exitOK     = 0
	exitCancel = 1
	exitError  = 2

	historyLimit = 20
)

// request is what the dialog is built from.
type request struct {
	Title  string
	Prompt string
	Theme  config.ThemeConfig
}

func main() {
	os.Exit(run())
}

func run() int {
	title := flag.String("title", isolate.DefaultTitle, "Dialog title")
	titleShort := flag.String("t", "", "Dialog title")
	promptText := flag.String("prompt", "Enter passphrase", "Text shown above the input")
	promptShort := flag.String("p", "", "Text shown above the input")
	configFile := flag.String("config", "", "Use this config file instead of ~/.config/securedesk/config.toml")
	configShort := flag.String("c", "", "Use this config file instead of ~/.config/securedesk/config.toml")
	noSecure := flag.Bool("no-secure", false, "Show the prompt on the normal desktop")
	noSecureShort := flag.Bool("n", false, "Show the prompt on the normal desktop")
	history := flag.Bool("history", false, "Print recent prompts from the journal")
	historyShort := flag.Bool("H", false, "Print recent prompts from the journal")
	help := flag.Bool("help", false, "Show help information")
	helpShort := flag.Bool("h", false, "Show help information")
	versionFlag := flag.Bool("version", false, "Display version and build information")
	versionShort := flag.Bool("v", false, "Display version and build information")
	flag.Parse()

	if *versionFlag || *versionShort {
		fmt.Println(version.String())
		return exitOK
	}

	if *help || *helpShort {
		showHelp()
		return exitOK
	}

	cfg, err := loadConfig(firstNonEmpty(*configShort, *configFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitError
	}

	if err := logging.InitLogger(logging.Options{
		LogFile:    cfg.Logging.LogFile,
		Level:      cfg.Logging.Level,
		MaxAge:     cfg.Logging.MaxAge,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		Console:    cfg.Logging.Console,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
	}

	if *history || *historyShort {
		if err := printHistory(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read journal: %v\n", err)
			return exitError
		}
		return exitOK
	}

	req := request{
		Title:  firstNonEmpty(*titleShort, *title),
		Prompt: firstNonEmpty(*promptShort, *promptText),
		Theme:  cfg.Theme,
	}
	secure := cfg.SecureDesktop.Enabled && !*noSecure && !*noSecureShort

	outcome, secret, err := ask(cfg, req, secure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to show prompt: %v\n", err)
		return exitError
	}

	logger := logging.GetLogger()
	logger.Info().
		Str("outcome", outcome.String()).
		Bool("secure", secure).
		Msg("Prompt dismissed")
	if outcome != isolate.OutcomeOK {
		return exitCancel
	}
	if secret != "" {
		fmt.Println(secret)
	}
	return exitOK
}

func ask(cfg *config.Config, req request, secure bool) (isolate.Outcome, string, error) {
	collector := metrics.New()
	observers := []isolate.Observer{collector}

	if cfg.Journal.Enabled {
		j, err := openJournal(cfg)
		if err != nil {
			logging.Warn("Journal disabled: %v", err)
		} else {
			defer j.Close()
			observers = append(observers, j)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := clipboard.NewService()
	monitor := clipboard.NewMonitor(service, func(hash []byte) {
		logging.Debug("Clipboard changed (%x)", hash[:4])
	})
	monitor.SetInterval(cfg.Clipboard.PollInterval())
	go func() {
		if err := monitor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn("Clipboard monitor stopped: %v", err)
		}
	}()

	opts := isolate.Options{
		Clipboard:    clipboard.NewGuard(service, monitor),
		Observers:    observers,
		PollInterval: cfg.SecureDesktop.PollInterval(),
		SettleDelay:  cfg.SecureDesktop.SettleDelay(),
		PlaySound:    cfg.SecureDesktop.PlaySound,
		Title:        req.Title,
	}
	platform.New().Apply(&opts)

	protected, err := isolate.New[request, string](buildDialog, dialogResult, opts)
	if err != nil {
		return isolate.OutcomeNone, "", err
	}

	var (
		outcome isolate.Outcome
		secret  string
	)
	if secure {
		outcome, secret, err = protected.ShowDialog(req)
	} else {
		outcome, secret, err = protected.ShowDirect(req)
	}

	if cfg.Metrics.Textfile != "" {
		if werr := collector.WriteTextfile(expandHome(cfg.Metrics.Textfile)); werr != nil {
			logging.Warn("Metrics export failed: %v", werr)
		}
	}

	return outcome, secret, err
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func openJournal(cfg *config.Config) (*journal.Journal, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return journal.Open(filepath.Join(dir, "journal.db"), cfg.Journal.MaxEntries)
}

func printHistory(cfg *config.Config) error {
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(historyLimit)
	if err != nil {
		return err
	}
	stats, err := j.Stats()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tPATH\tOUTCOME\tDURATION\tTAKEOVERS\tCLIPBOARD\tFAILURE")
	for _, e := range entries {
		cleared := "-"
		if e.ClipboardCleared {
			cleared = "cleared"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.Started.Local().Format("2006-01-02 15:04:05"),
			e.Path,
			e.Outcome,
			e.Duration().Round(10*time.Millisecond),
			e.Takeovers,
			cleared,
			e.Failure,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d prompts recorded, %d takeovers, %d clipboard clears\n",
		stats.Total, stats.Takeovers, stats.ClipboardClears)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func showHelp() {
	fmt.Println("securedesk - Protected password prompt")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  securedesk                         Ask for a secret and print it to stdout")
	fmt.Println("  securedesk --title TEXT, -t TEXT   Set the dialog title")
	fmt.Println("  securedesk --prompt TEXT, -p TEXT  Set the text shown above the input")
	fmt.Println("  securedesk --config FILE, -c FILE  Use a custom config file")
	fmt.Println("  securedesk --no-secure, -n         Show the prompt on the normal desktop")
	fmt.Println("  securedesk --history, -H           Print recent prompts from the journal")
	fmt.Println("  securedesk --version, -v           Display version and build information")
	fmt.Println("  securedesk --help, -h              Show this help message")
	fmt.Println()
	fmt.Println("Where the platform supports it, the prompt is shown on a separate secure")
	fmt.Println("desktop that other programs cannot read or inject input into. If that")
	fmt.Println("desktop cannot be created the prompt is shown normally.")
	fmt.Println()
	fmt.Println("Exit status:")
	fmt.Println("  0  accepted (the secret is printed to stdout)")
	fmt.Println("  1  cancelled")
	fmt.Println("  2  error")
}
