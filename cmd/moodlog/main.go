package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pchalerm/moodlog/internal/aggregate"
	"github.com/pchalerm/moodlog/internal/api"
	"github.com/pchalerm/moodlog/internal/classifier"
	"github.com/pchalerm/moodlog/internal/domain"
	"github.com/pchalerm/moodlog/internal/journal"
	"github.com/pchalerm/moodlog/internal/store"
	"github.com/pchalerm/moodlog/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	filePath string
	backend  string
	model    string
)

func main() {
	// Default table location
	home, _ := os.UserHomeDir()
	defaultFile := filepath.Join(home, ".moodlog", "diary_records.csv")

	rootCmd := &cobra.Command{
		Use:   "moodlog",
		Short: "Mood journal with sentiment scoring",
	}

	rootCmd.PersistentFlags().StringVar(&filePath, "file", defaultFile, "diary table path")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "openai", "classifier backend (openai or anthropic)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "classifier model override")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(trendCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getStore() *store.Store {
	return store.New(filePath)
}

func getClassifier() (classifier.Classifier, error) {
	switch backend {
	case "anthropic":
		return classifier.NewAnthropic(model)
	case "openai":
		return classifier.NewOpenAI(model)
	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

func newSuggester() *suggest.Suggester {
	return suggest.New(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func addCmd() *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Analyze and save a diary entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			date := domain.Midnight(time.Now().UTC())
			if dateStr != "" {
				parsed, ok := domain.ParseDate(dateStr)
				if !ok {
					return fmt.Errorf("invalid date: %s (expected YYYY-MM-DD)", dateStr)
				}
				date = parsed
			}

			clf, err := getClassifier()
			if err != nil {
				return err
			}

			j := journal.New(getStore(), clf)

			fmt.Print("Analyzing... ")
			entry, err := j.AnalyzeAndSave(cmd.Context(), date, text)
			if err != nil {
				fmt.Println()
				return err
			}
			fmt.Println("done")

			fmt.Printf("%s  %s %s (%.0f%%)\n", domain.FormatDate(entry.Date), entry.Emoji, entry.Sentiment, entry.Score*100)
			fmt.Printf("Suggestion: %s\n", newSuggester().For(entry.Sentiment, entry.Score))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "entry date (default today)")
	return cmd
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := getStore().LoadAll()
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No entries yet. Use 'moodlog add' to create one.")
				return nil
			}

			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Date.After(entries[j].Date)
			})
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			for _, e := range entries {
				fmt.Printf("%s  %s  %s  %s\n", shortID(e.ID), domain.FormatDate(e.Date), e.Emoji, truncate(e.Text, 60))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an entry by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getStore()

			// Support prefix matching like show/delete in small CLIs
			entries, err := s.LoadAll()
			if err != nil {
				return err
			}

			id := args[0]
			for _, e := range entries {
				if strings.HasPrefix(e.ID, id) {
					id = e.ID
					break
				}
			}

			if err := s.DeleteByID(id); err != nil {
				return err
			}
			fmt.Printf("Deleted %s (no-op if the id was unknown)\n", id)
			return nil
		},
	}
}

func trendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Weekly average sentiment score",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := getStore().LoadAll()
			if err != nil {
				return err
			}

			buckets := aggregate.WeeklyAverageScore(entries)
			if len(buckets) == 0 {
				fmt.Println("No data yet. Add a few entries and come back.")
				return nil
			}

			for _, b := range buckets {
				fmt.Printf("%s  %.2f  %s\n", domain.FormatDate(b.WeekStart), b.AvgScore, bar(b.AvgScore))
			}
			return nil
		},
	}
}

func calendarCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Calendar mood map for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid month: %d", month)
			}

			entries, err := getStore().LoadAll()
			if err != nil {
				return err
			}

			fmt.Printf("%s %d\n", time.Month(month), year)
			fmt.Println("Mo Tu We Th Fr Sa Su")
			for _, week := range aggregate.CalendarMoodMap(entries, year, time.Month(month)) {
				for _, cell := range week {
					if cell == "" {
						cell = "·"
					}
					fmt.Printf("%s  ", cell)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	return cmd
}

func summaryCmd() *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Recent mood summary and a suggestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now().UTC()

			var start time.Time
			switch window {
			case "rolling7":
				start = aggregate.Rolling7Start(today)
			case "week":
				start = aggregate.ISOWeekStart(today)
			default:
				return fmt.Errorf("invalid window: %s (expected rolling7 or week)", window)
			}

			entries, err := getStore().LoadAll()
			if err != nil {
				return err
			}

			recent := aggregate.RecentWindow(entries, start)
			fmt.Printf("Window:        %s (since %s)\n", window, domain.FormatDate(start))
			fmt.Printf("Entries:       %d\n", len(recent))
			fmt.Printf("Mood average:  %.2f\n", aggregate.ScaledSentimentAverage(recent))

			if last, ok := aggregate.Latest(entries); ok {
				fmt.Printf("Suggestion:    %s\n", newSuggester().For(last.Sentiment, last.Score))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&window, "window", "rolling7", "window policy (rolling7 or week)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			clf, err := getClassifier()
			if err != nil {
				return err
			}

			s := getStore()
			server := api.New(s, journal.New(s, clf), newSuggester(), addr)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}

func shortID(id string) string {
	// Legacy tables can hold hand-written ids shorter than a uuid.
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func bar(score float64) string {
	n := int(score*20 + 0.5)
	return strings.Repeat("█", n)
}
