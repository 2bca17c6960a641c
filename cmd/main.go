package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/browser"

	"github.com/lalunarecs/audiomoth-server/internal/assets"
	"github.com/lalunarecs/audiomoth-server/internal/config"
	"github.com/lalunarecs/audiomoth-server/internal/errs"
	"github.com/lalunarecs/audiomoth-server/internal/logger"
	"github.com/lalunarecs/audiomoth-server/internal/server"
)

func main() {
	flags := flag.NewFlagSet("audiomoth-server", flag.ContinueOnError)
	port := flags.Int("port", 0, fmt.Sprintf("listening port (default %d)", config.DefaultPort))
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Accept both "--port N dir" and "dir --port N" orderings.
	dir := ""
	if flags.NArg() > 0 {
		dir = flags.Arg(0)
		if err := flags.Parse(flags.Args()[1:]); err != nil {
			os.Exit(1)
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: true,
	})
	log := logger.Get()

	// Startup scan; both values are computed once and never refreshed while
	// the server runs.
	wavCount, err := assets.CountWavFiles(cfg.RootDir)
	if err != nil {
		log.Warn().Err(err).Msg("WAV scan incomplete")
	}
	report, reportFound := assets.FindReport(cfg.RootDir, cfg.ReportPatterns, cfg.ReportSearchDepth)

	printBanner(cfg, wavCount, report, reportFound)

	srv := server.New(cfg)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Listen(); err != nil {
			serveErr <- err
		}
	}()

	if reportFound {
		go openReport(cfg, report)
	}

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if errs.IsAddrInUse(err) {
			fmt.Fprintf(os.Stderr, "\n❌ Error: port %d is already in use.\n\n", cfg.Port)
			fmt.Fprintln(os.Stderr, "Solutions:")
			fmt.Fprintf(os.Stderr, "   1. Stop the process using port %d\n", cfg.Port)
			fmt.Fprintln(os.Stderr, "   2. Use another port: audiomoth-server --port 8080")
		} else {
			fmt.Fprintf(os.Stderr, "❌ Server error: %v\n", err)
		}
		os.Exit(1)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	fmt.Println("\n👋 Server stopped. Goodbye!")
}

func printBanner(cfg *config.Config, wavCount int, report string, reportFound bool) {
	line := strings.Repeat("=", 70)

	fmt.Println(line)
	fmt.Println("🎵 AudioMoth Server - Recording Browser")
	fmt.Println(line)
	fmt.Printf("\n📁 Directory: %s\n", cfg.RootDir)
	fmt.Printf("📊 WAV files found: %d\n", wavCount)

	if reportFound {
		fmt.Printf("📄 Report found: %s\n", report)
	} else {
		fmt.Println("⚠️  No HTML report found. Generate one first with:")
		fmt.Println("   ./metadata_audiomoth.sh <directory>")
	}

	fmt.Printf("\n🌐 Serving at: http://localhost:%d/\n", cfg.Port)
	fmt.Println("   Press Ctrl+C to stop")
	fmt.Println(line)
}

// openReport waits until the listener answers, then points the default
// browser at the report. Everything in here is best-effort: a failure only
// costs the user a click.
func openReport(cfg *config.Config, report string) {
	log := logger.Get()
	base := fmt.Sprintf("http://localhost:%d", cfg.Port)

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(2 * time.Second).
		SetRetryCount(10).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() != http.StatusOK
	})

	if _, err := client.R().Get("/healthz"); err != nil {
		log.Info().Err(err).Msg("Server not reachable, skipping browser launch")
		return
	}

	reportURL := base + "/" + escapeReportPath(report)
	fmt.Printf("\n🎯 Report viewer: %s\n", reportURL)
	fmt.Println("💡 Opening browser...")

	if err := browser.OpenURL(reportURL); err != nil {
		log.Info().Err(err).Msg("Could not open browser automatically")
	}
}

func escapeReportPath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
