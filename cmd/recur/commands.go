package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/recur/internal/calendar"
	"github.com/username/recur/internal/config"
	"github.com/username/recur/internal/export"
	"github.com/username/recur/pkg/dateutil"
	"github.com/username/recur/pkg/recurrence"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check NAME DATE",
		Short: "Check whether a schedule occurs on a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cal, err := loadCalendar()
			if err != nil {
				return err
			}

			name, date := args[0], args[1]
			ok, err := calendar.NewAgenda(cal, logger).IsScheduled(name, date)
			if err != nil {
				return err
			}

			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s occurs on %s\n", name, date)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %s does not occur on %s\n", name, date)
			}
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var count int
	var from string

	cmd := &cobra.Command{
		Use:   "list NAME",
		Short: "List the next occurrences of a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cal, err := loadCalendar()
			if err != nil {
				return err
			}

			fromDate, err := dateutil.Normalize(from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}

			dates, err := calendar.NewAgenda(cal, logger).Upcoming(args[0], fromDate, count)
			if err != nil {
				return err
			}

			logger.Debug("Listed occurrences",
				zap.String("name", args[0]),
				zap.Stringer("from", fromDate),
				zap.Int("found", len(dates)))

			out := cmd.OutOrStdout()
			if len(dates) == 0 {
				fmt.Fprintf(out, "No occurrences of %s from %s\n", args[0], fromDate)
				return nil
			}
			for _, d := range dates {
				fmt.Fprintf(out, "%s  %s\n", d, d.Weekday().String()[:3])
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of occurrences to list")
	cmd.Flags().StringVar(&from, "from", string(dateutil.TodayName), "First date to consider")

	return cmd
}

func monthCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "month [NAME...]",
		Short: "Show the schedules occurring on each day of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cal, err := loadCalendar()
			if err != nil {
				return err
			}

			year, mon, err := parseMonth(month)
			if err != nil {
				return err
			}

			info, err := calendar.NewAgenda(cal, logger).GetMonthInfo(year, mon, args...)
			if err != nil {
				return err
			}

			printMonth(cmd.OutOrStdout(), info)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")

	return cmd
}

func weekdayCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "weekday NAME",
		Short: "Print the weekday a schedule starts on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cal, err := loadCalendar()
			if err != nil {
				return err
			}

			p, err := cal.Lookup(args[0])
			if err != nil {
				return err
			}
			rec, ok := p.(*recurrence.Recurrence)
			if !ok {
				return fmt.Errorf("%s is a combination and has no start date", args[0])
			}

			format := recurrence.WeekdayLong
			if short {
				format = recurrence.WeekdayShort
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.StartingWeekday(format))
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print the three letter form")

	return cmd
}

func exportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every schedule as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cal, err := loadCalendar()
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = cfg.Export.Output
			}

			exporter := export.NewExporter(cfg.Export.GetProductID(), logger)

			if outPath == "" || outPath == "-" {
				_, err := exporter.Write(cmd.OutOrStdout(), cal)
				return err
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			exported, err := exporter.Write(f, cal)
			if err != nil {
				return err
			}

			logger.Info("Calendar exported",
				zap.String("file", outPath),
				zap.Int("events", exported))
			fmt.Fprintf(cmd.OutOrStdout(), "📅 Exported %d schedule(s) to %s\n", exported, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output .ics file (default: export.output, or stdout)")

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or save the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadCalendar()
			if err != nil {
				return err
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	var savePath string
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Validate the configuration and write it back as a single YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadCalendar()
			if err != nil {
				return err
			}

			if err := config.Save(savePath, cfg); err != nil {
				return err
			}

			logger.Info("Config saved", zap.String("file", savePath))
			fmt.Fprintf(cmd.OutOrStdout(), "💾 Saved config to %s\n", savePath)
			return nil
		},
	}
	saveCmd.Flags().StringVarP(&savePath, "out", "o", "", "Destination YAML file")
	_ = saveCmd.MarkFlagRequired("out")
	cmd.AddCommand(saveCmd)

	return cmd
}

func parseMonth(s string) (int, time.Month, error) {
	if s == "" {
		today := dateutil.Today()
		return today.Year, today.Month, nil
	}

	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --month %q, expected YYYY-MM: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

func printMonth(w io.Writer, info *calendar.MonthInfo) {
	fmt.Fprintf(w, "\n📅 %s %d\n", info.Month, info.Year)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	lastWeek := -1
	for _, day := range info.Days {
		if _, week := dateutil.GetWeekNumber(day.Date); week != lastWeek {
			fmt.Fprintf(w, "  Week %02d (from %s)\n", week, dateutil.StartOfWeek(day.Date))
			lastWeek = week
		}
		marker := " "
		if day.IsBusy() {
			marker = "•"
		}
		fmt.Fprintf(w, "  %s %s %s  %s\n",
			marker,
			day.Date,
			day.Weekday.String()[:3],
			strings.Join(day.Schedules, ", "))
	}

	fmt.Fprintln(w, "\nTotals:")
	for _, name := range sortedCounts(info.Counts) {
		fmt.Fprintf(w, "  %-20s %d\n", name, info.Counts[name])
	}
}

func sortedCounts(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
