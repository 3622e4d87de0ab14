package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/boardkin/internal/config"
	"github.com/dgallion1/boardkin/internal/document"
	"github.com/dgallion1/boardkin/internal/logging"
	"github.com/dgallion1/boardkin/internal/ner"
	"github.com/dgallion1/boardkin/internal/pipeline"
	"github.com/dgallion1/boardkin/internal/tables"
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] <pdf>...",
	Short: "Extract familial relations from one or more PDF files",
	Long: `Run the extraction pipeline over local PDF files and print a JSON array with
one entry per file: its triplets, board members, stage counts and error.

Examples:
  boardkin extract report.pdf
  boardkin extract --dictionary-ner --output out.json a.pdf b.pdf
  boardkin extract --ner-url http://localhost:8501 --workers 4 reports/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var (
	extractParams   string
	extractNERURL   string
	extractNERKey   string
	extractDictNER  bool
	extractOutput   string
	extractWorkers  int
	extractLogLevel string
	extractNoBar    bool
)

func init() {
	cfg := config.Load()

	extractCmd.Flags().StringVar(&extractParams, "params", cfg.ParamsFile, "Extraction parameters YAML file")
	extractCmd.Flags().StringVar(&extractNERURL, "ner-url", cfg.NERURL, "NER service base URL")
	extractCmd.Flags().StringVar(&extractNERKey, "ner-api-key", cfg.NERAPIKey, "NER service bearer token")
	extractCmd.Flags().BoolVar(&extractDictNER, "dictionary-ner", false, "Recognize persons by board-member names instead of the NER service")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write JSON to this file instead of stdout")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 1, "Documents processed in parallel")
	extractCmd.Flags().StringVar(&extractLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	extractCmd.Flags().BoolVar(&extractNoBar, "no-progress", false, "Disable the progress bar")
	extractCmd.MarkFlagsMutuallyExclusive("ner-url", "dictionary-ner")
	rootCmd.AddCommand(extractCmd)
}

// docResult is one entry of the command's JSON output.
type docResult struct {
	File         string                     `json:"file"`
	Triplets     []document.FamilialTriplet `json:"triplets"`
	BoardMembers []map[string]string        `json:"board_members"`
	Stats        *pipeline.Stats            `json:"stats,omitempty"`
	Error        string                     `json:"error,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logging.Stderr(extractLogLevel)

	params, err := config.LoadParams(extractParams)
	if err != nil {
		return fmt.Errorf("load params %s: %w", extractParams, err)
	}

	cfg := config.Load()
	var recognizer ner.Recognizer
	switch {
	case extractDictNER:
	case extractNERURL != "":
		client := ner.NewHTTPRecognizer(ner.HTTPOptions{
			URL:         extractNERURL,
			APIKey:      extractNERKey,
			Timeout:     cfg.NERTimeout,
			BatchSize:   cfg.NERBatchSize,
			Concurrency: cfg.NERConcurrency,
			RateLimit:   cfg.NERRateLimit,
			Log:         log,
		})
		defer client.Close()
		recognizer = client
	default:
		return fmt.Errorf("no NER service configured: pass --ner-url, set NER_URL, or use --dictionary-ner")
	}

	p, err := pipeline.New(pipeline.Options{
		Params:            params,
		Extractor:         tables.NewTabulaExtractor(),
		Recognizer:        recognizer,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		Log:               log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *progressbar.ProgressBar
	if !extractNoBar {
		bar = getProgressBar(len(args), "Extracting")
	}
	results := runDocuments(ctx, p, args, extractWorkers, bar)

	out := cmd.OutOrStdout()
	if extractOutput != "" {
		f, err := os.Create(extractOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeResults(out, results); err != nil {
		return err
	}

	return summarize(cmd.ErrOrStderr(), results)
}

// runDocuments processes files with at most workers in flight and returns
// results in argument order.
func runDocuments(ctx context.Context, runner pipeline.Runner, files []string, workers int, bar *progressbar.ProgressBar) []docResult {
	results := make([]docResult, len(files))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))

	for i, file := range files {
		g.Go(func() error {
			results[i] = runOne(ctx, runner, file)
			if bar != nil {
				bar.Describe(color.BlueString("Extracting %s", filepath.Base(file)))
				bar.Add(1)
			}
			return nil
		})
	}
	g.Wait()
	if bar != nil {
		bar.Finish()
	}
	return results
}

func runOne(ctx context.Context, runner pipeline.Runner, file string) docResult {
	r := docResult{
		File:         file,
		Triplets:     []document.FamilialTriplet{},
		BoardMembers: []map[string]string{},
	}
	res, err := runner.RunWithProgress(ctx, file, nil)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Triplets = res.Triplets
	r.BoardMembers = res.BoardMembers
	r.Stats = &res.Stats
	return r
}

func writeResults(w io.Writer, results []docResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// summarize prints a per-run summary and returns an error when any document failed.
func summarize(w io.Writer, results []docResult) error {
	var failed, triplets int
	for _, r := range results {
		if r.Error != "" {
			failed++
			fmt.Fprintf(w, "%s %s: %s\n", color.RedString("✗"), r.File, r.Error)
			continue
		}
		triplets += len(r.Triplets)
	}
	fmt.Fprintf(w, "%s %d documents, %d relations\n",
		color.GreenString("✓"), len(results)-failed, triplets)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
