package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/opensourceavatars/avatar-site/config"
	"github.com/opensourceavatars/avatar-site/internal/linkcheck"
	"github.com/opensourceavatars/avatar-site/internal/utils"
	"github.com/rs/zerolog"
)

var CLI struct {
	URL     string `short:"u" help:"Sitemap URL to check (defaults to <site.baseurl>/sitemap.xml)"`
	Config  string `short:"c" help:"Directory containing config.yaml" default:"."`
	JSON    bool   `help:"Print the report as JSON"`
	Strict  bool   `help:"Also fail when hreflang alternates are not reciprocal"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("sitemapcheck"),
		kong.Description("Verify that every URL and hreflang alternate in a sitemap resolves."),
	)

	code, err := run(os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sitemapcheck:", err)
		os.Exit(2)
	}
	os.Exit(code)
}

func run(out io.Writer) (int, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return 0, err
	}

	level := cfg.Log.Level
	if CLI.Verbose {
		level = "debug"
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:     level,
		Component: "sitemapcheck",
		Output:    zerolog.ConsoleWriter{Out: os.Stderr},
	})
	if err != nil {
		return 0, err
	}
	defer logger.Close()

	target := CLI.URL
	if target == "" {
		target = cfg.Site.BaseURL + "/sitemap.xml"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := linkcheck.NewChecker(linkcheck.Config{
		UserAgent:   cfg.LinkCheck.UserAgent,
		Parallelism: cfg.LinkCheck.Parallelism,
		Delay:       cfg.LinkCheckDelay(),
	}, logger.Logger)

	report, err := checker.Check(ctx, target)
	if err != nil {
		return 0, err
	}

	if err := printReport(out, report); err != nil {
		return 0, err
	}

	if len(report.Broken()) > 0 || (CLI.Strict && len(report.NonReciprocal) > 0) {
		return 1, nil
	}
	return 0, nil
}

func printReport(out io.Writer, report *linkcheck.Report) error {
	if CLI.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	broken := report.Broken()
	fmt.Fprintf(out, "Sitemap: %s\n", report.Sitemap)
	fmt.Fprintf(out, "Entries: %d, URLs checked: %d, broken: %d\n", report.Entries, len(report.Results), len(broken))
	for _, res := range broken {
		if res.Status > 0 {
			fmt.Fprintf(out, "  BROKEN %d %s\n", res.Status, res.URL)
		} else {
			fmt.Fprintf(out, "  BROKEN %s (%s)\n", res.URL, res.Error)
		}
	}
	for _, issue := range report.NonReciprocal {
		fmt.Fprintf(out, "  ALTERNATE %s -> %s [%s]: %s\n", issue.From, issue.To, issue.Hreflang, issue.Reason)
	}
	return nil
}
