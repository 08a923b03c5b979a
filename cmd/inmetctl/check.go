package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/inmet-alerts-service/internal/adapter/inmet"
	"github.com/couchcryptid/inmet-alerts-service/internal/config"
	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	"github.com/scylladb/termtables"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	feedURL  string
	file     string
	at       string
	timezone string
	json     bool
}

type skippedItem struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type checkResult struct {
	CheckedAt time.Time          `json:"checked_at"`
	Count     int                `json:"count"`
	Alerts    []domain.AlertView `json:"alerts"`
	Expired   int                `json:"expired"`
	Skipped   []skippedItem      `json:"skipped"`
}

func checkEntry() *cobra.Command {
	opts := checkOptions{feedURL: config.DefaultFeedURL, timezone: "America/Sao_Paulo"}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fetch the feed once and list the alerts that are currently valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.feedURL, "feed-url", opts.feedURL, "RSS feed to fetch")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the feed from a file instead of fetching it")
	cmd.Flags().StringVar(&opts.at, "at", "", "Evaluate validity at this RFC3339 instant instead of now")
	cmd.Flags().StringVar(&opts.timezone, "tz", opts.timezone, "Timezone used to display start and end times")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print JSON instead of a table")

	return cmd
}

func runCheck(ctx context.Context, opts checkOptions, out io.Writer) error {
	now := time.Now()
	if opts.at != "" {
		t, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		now = t
	}

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid --tz: %w", err)
	}

	body, err := readFeed(ctx, opts)
	if err != nil {
		return err
	}

	result, err := check(body, now, loc)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = fmt.Fprint(out, renderTable(result))
	return err
}

func readFeed(ctx context.Context, opts checkOptions) ([]byte, error) {
	if opts.file != "" {
		body, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, fmt.Errorf("read feed file: %w", err)
		}
		return body, nil
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return inmet.NewClient(opts.feedURL, logger).Fetch(ctx)
}

// check runs the parse, extract and filter stages once over body.
func check(body []byte, now time.Time, loc *time.Location) (checkResult, error) {
	items, err := domain.ParseFeed(body)
	if err != nil {
		return checkResult{}, err
	}

	results := domain.ExtractItems(items, now)
	res := checkResult{CheckedAt: now.UTC(), Alerts: []domain.AlertView{}, Skipped: []skippedItem{}}
	for _, r := range results {
		switch r.Outcome {
		case domain.OutcomeExpired:
			res.Expired++
		case domain.OutcomeSkipped:
			res.Skipped = append(res.Skipped, skippedItem{Index: r.Index, Reason: r.Err.Error()})
		}
	}
	for _, a := range domain.ActiveAlerts(results) {
		res.Alerts = append(res.Alerts, a.View(loc))
	}
	res.Count = len(res.Alerts)
	return res, nil
}

func renderTable(res checkResult) string {
	view := termtables.CreateTable()
	view.AddHeaders("Status", "Severidade", "Início", "Fim", "Área")
	for _, a := range res.Alerts {
		view.AddRow(a.Status, a.Severity, a.Start, a.End, truncate(a.Area, 60))
	}

	s := view.Render()
	s += fmt.Sprintf("\n%d active, %d expired, %d skipped\n", res.Count, res.Expired, len(res.Skipped))
	for _, sk := range res.Skipped {
		s += fmt.Sprintf("  item %d: %s\n", sk.Index, sk.Reason)
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
