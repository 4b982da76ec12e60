// admin.go - visit statistics and retention for the privacy-conscious tracker
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/store"
)

const pruneEvery = 24 * time.Hour

// generateSalt returns a random per-process salt for visitor hashing.
// Hashes are then only comparable within one process lifetime.
func generateSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("generate salt: %v", err))
	}
	return hex.EncodeToString(b)
}

// pruneVisits deletes visits older than retention now and then once a day
// until ctx is done. A zero retention keeps everything.
func pruneVisits(ctx context.Context, visits *store.Store, retention time.Duration, log *zap.Logger) {
	if retention <= 0 {
		return
	}
	prune := func() {
		if _, err := visits.Cleanup(ctx, time.Now(), retention); err != nil {
			log.Warn("prune visits", zap.Error(err))
		}
	}
	prune()

	ticker := time.NewTicker(pruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

func newStatsCmd(cfgPath *string) *cobra.Command {
	var dbPath, format string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print visit statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.DB.Path
			}
			visits, err := store.Open(dbPath, log.Named("store"))
			if err != nil {
				return err
			}
			defer visits.Close()
			now := time.Now()
			switch format {
			case "json":
				return writeStats(cmd.Context(), cmd.OutOrStdout(), visits, now)
			case "text":
				return writeStatsText(cmd.Context(), cmd.OutOrStdout(), visits, now)
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (defaults to db.path)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

func writeStats(ctx context.Context, w io.Writer, visits *store.Store, now time.Time) error {
	stats, err := visits.Stats(ctx, now)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func writeStatsText(ctx context.Context, w io.Writer, visits *store.Store, now time.Time) error {
	stats, err := visits.Stats(ctx, now)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "total visits\t%s\n", humanize.Comma(stats.TotalVisits))
	fmt.Fprintf(tw, "unique visitors\t%s\n", humanize.Comma(stats.UniqueVisitors))
	fmt.Fprintf(tw, "today\t%s\n", humanize.Comma(stats.VisitsToday))
	fmt.Fprintf(tw, "last 7 days\t%s\n", humanize.Comma(stats.VisitsThisWeek))

	if len(stats.TopPaths) > 0 {
		fmt.Fprintln(tw, "\ntop paths\t")
		for _, p := range stats.TopPaths {
			fmt.Fprintf(tw, "  %s\t%s\n", p.Path, humanize.Comma(p.Views))
		}
	}
	if len(stats.RecentVisits) > 0 {
		fmt.Fprintln(tw, "\nrecent\t")
		for _, v := range stats.RecentVisits {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", v.Path, v.Visitor, humanize.RelTime(v.Timestamp, now, "ago", "from now"))
		}
	}
	return tw.Flush()
}
