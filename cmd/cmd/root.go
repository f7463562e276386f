/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"seoscope/internal/analytics"
	"seoscope/internal/analyzer"
	"seoscope/internal/config"
	"seoscope/internal/core"
	"seoscope/internal/fetch"
	"seoscope/internal/insights"
	"seoscope/internal/logger"
	"seoscope/internal/store"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seoscope",
	Short: "Seoscope analyzes web pages for SEO quality and tracks score trends.",
	Long: `Seoscope fetches a web page, scores it across content quality, keyword
effectiveness, meta tags, and technical factors, enriches the result with
AI-generated recommendations, and tracks score history for trend analytics:
anomaly detection, forecasting, and significant-change alerts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.seoscope.yaml)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(keywordsCmd)

	analyzeCmd.Flags().StringSlice("keywords", nil, "Comma-separated keywords to track instead of the page's meta keywords")
	analyzeCmd.Flags().Bool("no-insights", false, "Skip the AI insight call and keep only quantitative scores")
	analyzeCmd.Flags().Bool("no-save", false, "Analyze without recording the result in history")

	historyCmd.Flags().Int("limit", 10, "Maximum number of records to show")

	trendsCmd.Flags().Int("horizon", 0, "Forecast horizon in days (default from config)")
	trendsCmd.Flags().Float64("threshold", 0, "Significant-change threshold as a fraction (default from config)")
	trendsCmd.Flags().String("metric", "score", "Series to analyze: score or pagerank")

	keywordsCmd.Flags().String("industry", "general", "Industry to generate keyword suggestions for")
	keywordsCmd.Flags().StringSlice("current", nil, "Comma-separated keywords already in use")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		os.Exit(1)
	}
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze a web page and record its SEO score",
	Long: `Fetch the page at the given URL, compute its SEO sub-scores and composite
score, ask the configured Gemini model for qualitative recommendations, and
append the result to the score history.

Example:
  seoscope analyze https://example.com
  seoscope analyze --keywords go,cli https://example.com
  seoscope analyze --no-insights https://example.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]
		keywords, _ := cmd.Flags().GetStringSlice("keywords")
		noInsights, _ := cmd.Flags().GetBool("no-insights")
		noSave, _ := cmd.Flags().GetBool("no-save")

		if err := runAnalyze(cmd.Context(), url, keywords, noInsights, noSave); err != nil {
			logger.Error("Failed to analyze page", err)
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	},
}

func runAnalyze(ctx context.Context, url string, keywords []string, noInsights, noSave bool) error {
	cfg := config.Get()
	logger.Info("Starting analysis", "url", url)

	fetcher := fetch.NewFetcher(cfg.FetchTimeout())

	var insightGen analyzer.InsightGenerator
	if !noInsights {
		client, err := insights.NewClient("")
		if err != nil {
			logger.Warn("Insight client unavailable, continuing without AI insights", "error", err.Error())
		} else {
			insightGen = client
		}
	}

	page, err := fetcher.FetchPage(ctx, url)
	if err != nil {
		var blocked *fetch.BlockedError
		if errors.As(err, &blocked) {
			fmt.Println(blocked.Error())
			return nil
		}
		return err
	}

	meta := page.Metadata
	if len(keywords) > 0 {
		meta.Keywords = normalizeKeywords(keywords)
	}

	a := analyzer.New(fetcher, insightGen)
	record := a.AnalyzePage(ctx, url, page.Text, meta, page.Document)

	if !noSave {
		db, err := store.NewStore(cfg.App.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer db.Close()

		if err := db.InsertAnalysis(record); err != nil {
			return fmt.Errorf("failed to record analysis: %w", err)
		}
		observation := store.NormalizeSEOData(core.SEOData{
			URL:             url,
			Title:           meta.Title,
			MetaDescription: meta.MetaDescription,
			H1Tags:          meta.H1Tags,
			Keywords:        meta.Keywords,
			CreatedAt:       record.CreatedAt,
		})
		if err := db.InsertSEOData(observation); err != nil {
			return fmt.Errorf("failed to record observation: %w", err)
		}
	}

	printRecord(record)
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history [url]",
	Short: "Show past analysis results for a URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		if err := runHistory(args[0], limit); err != nil {
			logger.Error("Failed to load history", err)
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	},
}

func runHistory(url string, limit int) error {
	cfg := config.Get()
	db, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer db.Close()

	records, err := db.GetAnalysisHistory(url, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No analysis history for", url)
		return nil
	}

	fmt.Printf("Analysis history for %s (%d records, most recent first):\n\n", url, len(records))
	for _, record := range records {
		fmt.Printf("  %s  score %3d  (content %.0f, keywords %.0f, meta %.0f, technical %.0f)\n",
			record.CreatedAt.Format("2006-01-02 15:04"), record.SEOScore,
			record.SubScores.ContentQuality, record.SubScores.KeywordEffectiveness,
			record.SubScores.MetaTags, record.SubScores.Technical)
	}
	return nil
}

var trendsCmd = &cobra.Command{
	Use:     "trends [url]",
	Aliases: []string{"insights"},
	Short:   "Run trend analytics over a URL's score history",
	Long: `Analyze the recorded score history for a URL: flag anomalous observations,
forecast the score over the coming days, and report a significant change
between the two most recent observations when one occurred.

Example:
  seoscope trends https://example.com
  seoscope trends --horizon 14 --threshold 0.1 https://example.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		horizon, _ := cmd.Flags().GetInt("horizon")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		metric, _ := cmd.Flags().GetString("metric")
		if err := runTrends(args[0], metric, horizon, threshold); err != nil {
			logger.Error("Failed to analyze trends", err)
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	},
}

func runTrends(url, metric string, horizon int, threshold float64) error {
	cfg := config.Get()
	db, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer db.Close()

	var series []core.SeriesPoint
	switch metric {
	case "score":
		series, err = db.GetScoreSeries(url)
	case "pagerank":
		series, err = db.GetPageRankSeries(url)
	default:
		return fmt.Errorf("unknown metric %q: expected score or pagerank", metric)
	}
	if err != nil {
		return err
	}

	engine := analytics.NewEngine()
	if cfg.Analytics.Contamination > 0 {
		engine.Contamination = cfg.Analytics.Contamination
	}
	if cfg.Analytics.HorizonDays > 0 {
		engine.HorizonDays = cfg.Analytics.HorizonDays
	}
	if cfg.Analytics.ChangeThreshold > 0 {
		engine.ChangeThreshold = cfg.Analytics.ChangeThreshold
	}
	if horizon > 0 {
		engine.HorizonDays = horizon
	}
	if threshold > 0 {
		engine.ChangeThreshold = threshold
	}

	logger.Info("Analyzing trends", "url", url, "metric", metric, "points", len(series))
	fmt.Print(engine.FormatInsights(engine.Insights(series)))
	return nil
}

var reportCmd = &cobra.Command{
	Use:   "report [url]",
	Short: "Generate an AI-written SEO report from the latest analysis",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReport(cmd.Context(), args[0]); err != nil {
			logger.Error("Failed to generate report", err)
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	},
}

func runReport(ctx context.Context, url string) error {
	cfg := config.Get()
	db, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer db.Close()

	records, err := db.GetAnalysisHistory(url, 1)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no analysis history for %s: run 'seoscope analyze %s' first", url, url)
	}

	client, err := insights.NewClient("")
	if err != nil {
		return err
	}

	report, err := client.GenerateReport(ctx, records[0])
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	fmt.Println(report)
	return nil
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Suggest SEO keywords for an industry",
	Run: func(cmd *cobra.Command, args []string) {
		industry, _ := cmd.Flags().GetString("industry")
		current, _ := cmd.Flags().GetStringSlice("current")
		if err := runKeywords(cmd.Context(), industry, current); err != nil {
			logger.Error("Failed to suggest keywords", err)
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	},
}

func runKeywords(ctx context.Context, industry string, current []string) error {
	client, err := insights.NewClient("")
	if err != nil {
		return err
	}

	suggestions, err := client.SuggestKeywords(ctx, normalizeKeywords(current), industry)
	if err != nil {
		return fmt.Errorf("failed to suggest keywords: %w", err)
	}

	fmt.Printf("Keyword suggestions for %s:\n", industry)
	for _, keyword := range suggestions {
		fmt.Println("  -", keyword)
	}
	return nil
}

// printRecord renders one analysis result for the terminal.
func printRecord(record core.AnalysisRecord) {
	fmt.Printf("\nSEO analysis for %s\n", record.URL)
	fmt.Printf("Composite score: %d/100\n\n", record.SEOScore)

	fmt.Println("Sub-scores:")
	fmt.Printf("  Content quality:       %.1f\n", record.SubScores.ContentQuality)
	fmt.Printf("  Keyword effectiveness: %.1f\n", record.SubScores.KeywordEffectiveness)
	fmt.Printf("  Meta tags:             %.1f\n", record.SubScores.MetaTags)
	fmt.Printf("  Technical:             %.1f\n", record.SubScores.Technical)
	fmt.Printf("  Mobile friendliness:   %.1f\n\n", record.SubScores.MobileFriendliness)

	fmt.Printf("Words: %d  Title length: %d  Description length: %d\n",
		record.ContentMetrics.WordCount, record.ContentMetrics.TitleLength,
		record.ContentMetrics.MetaDescriptionLength)
	fmt.Printf("Images without alt: %d  Internal links: %d  External links: %d\n",
		record.TechnicalFactors.ImagesWithoutAlt, record.TechnicalFactors.InternalLinks,
		record.TechnicalFactors.ExternalLinks)

	if len(record.ContentMetrics.KeywordDensity) > 0 {
		fmt.Println("\nKeyword density (per 100 words):")
		for keyword, density := range record.ContentMetrics.KeywordDensity {
			fmt.Printf("  %-24s %.2f\n", keyword, density)
		}
	}

	if !record.Insights.Empty() {
		printInsightList("Strengths", record.Insights.Strengths)
		printInsightList("Improvements", record.Insights.Improvements)
		printInsightList("Keyword recommendations", record.Insights.KeywordRecommendations)
		printInsightList("Content suggestions", record.Insights.ContentSuggestions)
		printInsightList("Technical recommendations", record.Insights.TechnicalRecommendations)
	}
}

func printInsightList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, item := range items {
		fmt.Println("  -", item)
	}
}

// normalizeKeywords lowercases and trims user-supplied keywords, dropping
// empties.
func normalizeKeywords(keywords []string) []string {
	var cleaned []string
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			cleaned = append(cleaned, keyword)
		}
	}
	return cleaned
}
