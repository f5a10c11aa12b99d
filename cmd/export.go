package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/export"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/render"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/utils"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export books into one PDF",
	Long:  "Export the selected books, in the given order, into one PDF",
	RunE:  runExport,
}

type exportArgs struct {
	books      []int64
	quizBooks  []int64
	outputPath string
	toc        bool
	quiz       bool
	myQuiz     bool
	list       bool
	placement  string
	columns    int
	workers    int
}

var eArgs exportArgs

func init() {
	exportCmd.Flags().Int64SliceVarP(&eArgs.books, "book", "b", nil, "book ids in export order")
	exportCmd.Flags().Int64SliceVar(&eArgs.quizBooks, "quiz-book", nil, "books whose quiz is exported, default all selected books")
	exportCmd.Flags().StringVarP(&eArgs.outputPath, "output", "o", ".", "output file or directory")
	exportCmd.Flags().BoolVar(&eArgs.toc, "toc", false, "insert contents pages")
	exportCmd.Flags().BoolVar(&eArgs.quiz, "quiz", false, "append quiz questions and solutions")
	exportCmd.Flags().BoolVar(&eArgs.myQuiz, "my-quiz", false, "append custom quiz questions")
	exportCmd.Flags().BoolVarP(&eArgs.list, "list", "l", false, "list the book catalog and exit")
	exportCmd.Flags().StringVar(&eArgs.placement, "placement", "", "quiz placement: end or book (env QUIZ_PLACEMENT)")
	exportCmd.Flags().IntVar(&eArgs.columns, "columns", 0, "solution grid columns (env QUIZ_SOLUTION_COLUMNS)")
	exportCmd.Flags().IntVarP(&eArgs.workers, "workers", "w", 0, "browser tabs rendering in parallel (env RENDER_WORKERS)")

	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	catalog, err := store.Books(ctx)
	if err != nil {
		return fmt.Errorf("failed to list books: %v", err)
	}

	if eArgs.list {
		for _, b := range catalog {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d issues\n", b.Id, b.DisplayTitle(), len(b.IssueIds))
		}
		return nil
	}

	if len(eArgs.books) == 0 {
		return fmt.Errorf("at least one --book is required")
	}
	sel, err := export.Select(catalog, eArgs.books, eArgs.quizBooks)
	if err != nil {
		return err
	}

	workers := cfg.RenderWorkers
	if eArgs.workers > 0 {
		workers = eArgs.workers
	}
	pool, err := render.NewPool(workers, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to start browser: %v", err)
	}
	defer pool.Close()

	var tracker *export.Tracker
	if cfg.ProgressWebhook != "" {
		tracker = export.NewTracker(time.Hour, &utils.Webhook{URL: cfg.ProgressWebhook}, slog.Default())
	}

	pdf, err := export.New(store, pool, tracker, slog.Default()).Run(ctx, sel, exportOptions(), uuid.NewString())
	if err != nil {
		return fmt.Errorf("failed to export: %v", err)
	}

	out := outputFile(eArgs.outputPath, sel)
	if err := os.WriteFile(out, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", out, err)
	}

	slog.Info("wrote document", "path", out, "bytes", len(pdf))
	return nil
}

func exportOptions() export.Options {
	opts := export.Options{
		GenerateTOCPages: eArgs.toc,
		ExportQuiz:       eArgs.quiz,
		ExportMyQuiz:     eArgs.myQuiz,
		Placement:        cfg.QuizPlacement,
		Columns:          cfg.SolutionCols,
		ShareThreshold:   cfg.ShareThreshold,
	}
	if eArgs.placement != "" {
		opts.Placement = eArgs.placement
	}
	if eArgs.columns > 0 {
		opts.Columns = eArgs.columns
	}
	return opts
}

// outputFile names the document after the books when path is a directory.
func outputFile(path string, sel export.Selection) string {
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || strings.HasSuffix(path, string(os.PathSeparator)) {
		var titles []string
		for _, b := range sel.Books {
			titles = append(titles, b.DisplayTitle())
		}
		return filepath.Join(path, utils.ExportFileName(titles))
	}
	return path
}
