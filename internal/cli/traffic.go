package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/internal/common/httpclient"
	"github.com/snellmaster/snellctl/pkg/api"
)

var rankingColumns = []column{
	{"ID", "id"},
	{"NAME", "name"},
	{"BYTES", "bytes"},
}

var trendColumns = []column{
	{"DATE", "date"},
	{"BYTES", "bytes"},
}

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Inspect fleet traffic statistics",
}

var trafficSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show today / month / total traffic counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		retries, _ := cmd.Flags().GetUint("retries")

		c, err := buildConsole()
		if err != nil {
			return err
		}

		summary, err := retry.DoWithData(
			func() (api.TrafficSummary, error) {
				s, err := c.TrafficSummary(cmd.Context())
				if err != nil {
					var transportErr *httpclient.TransportError
					if !errors.As(err, &transportErr) {
						return api.TrafficSummary{}, retry.Unrecoverable(err)
					}
				}
				return s, err
			},
			retry.Context(cmd.Context()),
			retry.Attempts(retries+1),
			retry.Delay(500*time.Millisecond),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				log.Warn().Uint("attempt", n+1).Err(err).Msg("retrying traffic summary")
			}),
		)
		if err != nil {
			return handled(err)
		}

		if jsonOutput {
			printJSON(summary)
			return nil
		}
		fmt.Printf("Today: %s\nMonth: %s\nTotal: %s\n",
			formatBytes(summary.TodayBytes),
			formatBytes(summary.MonthBytes),
			formatBytes(summary.TotalBytes))
		return nil
	},
}

var trafficTopUsersCmd = &cobra.Command{
	Use:   "top-users",
	Short: "Rank users by traffic consumed",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		limit, _ := cmd.Flags().GetInt("limit")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		ranking, err := c.UserTrafficRanking(cmd.Context(), period, limit)
		if err != nil {
			return handled(err)
		}
		return printList(ranking, rankingColumns)
	},
}

var trafficTopNodesCmd = &cobra.Command{
	Use:   "top-nodes",
	Short: "Rank nodes by traffic carried",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		ranking, err := c.NodeTrafficRanking(cmd.Context(), period)
		if err != nil {
			return handled(err)
		}
		return printList(ranking, rankingColumns)
	},
}

var trafficTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show the daily traffic series",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		trend, err := c.TrafficTrend(cmd.Context(), days)
		if err != nil {
			return handled(err)
		}
		return printList(trend, trendColumns)
	},
}

func init() {
	trafficSummaryCmd.Flags().Uint("retries", 0, "Retry transient network failures this many times")

	trafficTopUsersCmd.Flags().String("period", "month", "Ranking period (day, week, month)")
	trafficTopUsersCmd.Flags().Int("limit", 10, "Number of rows")

	trafficTopNodesCmd.Flags().String("period", "month", "Ranking period (day, week, month)")

	trafficTrendCmd.Flags().Int("days", 30, "Number of days in the series")

	trafficCmd.AddCommand(trafficSummaryCmd, trafficTopUsersCmd, trafficTopNodesCmd, trafficTrendCmd)
	rootCmd.AddCommand(trafficCmd)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
