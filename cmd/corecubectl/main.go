// Command corecubectl is a cobra-based CLI harness that drives
// upload -> query -> close against the Analysis Core without an HTTP
// layer, grounded on the teacher's multiple cmd/* binaries and on
// theRebelliousNerd-codenerd's cmd/nerd/main.go rootCmd/PersistentPreRunE
// structure (global --base-dir/--verbose flags, a zap logger built once
// before any subcommand runs).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nlquery/corecube/internal/config"
	"github.com/nlquery/corecube/internal/corelog"
	"github.com/nlquery/corecube/internal/feedback"
	"github.com/nlquery/corecube/internal/httpapi"
	"github.com/nlquery/corecube/internal/session"
)

var (
	baseDir string
	verbose bool
	log     *zap.Logger
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "corecubectl",
		Short: "drive the natural-language query service from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := corelog.New(verbose)
			if err != nil {
				return fmt.Errorf("corecubectl: build logger: %w", err)
			}
			log = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&baseDir, "base-dir", "./data", "root directory for uploaded files, feedback store, and query cache")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")

	root.AddCommand(uploadCmd(), queryCmd(), visualizeCmd(), filesCmd(), loadCmd(), closeCmd(), runCmd(), ingestCmd())
	return root
}

// newHandlers builds a fresh Handlers against the current --base-dir,
// mirroring a new process picking up persisted state (uploaded files,
// feedback, the query cache) with an empty in-memory Session registry,
// exactly the case Handlers.Load exists to repair.
func newHandlers() (*httpapi.Handlers, error) {
	cfg := config.Load()
	cfg.BaseDir = baseDir

	files, err := httpapi.NewFileStore(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	store := feedback.NewStore(cfg.BaseDir)
	if err := store.Load(); err != nil {
		return nil, err
	}

	return httpapi.NewHandlers(cfg, store, files, session.NewRegistry()), nil
}

func uploadCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "upload a tabular file and create a session for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHandlers()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			resp, err := h.Upload(context.Background(), filepathBase(args[0]), description, f)
			if err != nil {
				log.Error("upload failed", zap.Error(err))
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "optional dataset description")
	return cmd
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <file_id> <question>",
		Short: "ask a natural-language question against an uploaded file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHandlers()
			if err != nil {
				return err
			}
			if _, err := h.Load(context.Background(), args[0]); err != nil {
				return fmt.Errorf("corecubectl: reload session: %w", err)
			}
			resp, err := h.Query(context.Background(), httpapi.QueryRequest{FileID: args[0], Query: args[1]})
			if err != nil {
				log.Error("query failed", zap.String("file_id", args[0]), zap.Error(err))
				return err
			}
			return printJSON(resp)
		},
	}
	return cmd
}

func visualizeCmd() *cobra.Command {
	var chartType, xColumn, yColumn, title string
	cmd := &cobra.Command{
		Use:   "visualize <file_id>",
		Short: "request a chart specification over an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHandlers()
			if err != nil {
				return err
			}
			if _, err := h.Load(context.Background(), args[0]); err != nil {
				return fmt.Errorf("corecubectl: reload session: %w", err)
			}
			resp, err := h.Visualization(context.Background(), httpapi.VisualizationRequest{
				FileID: args[0], ChartType: chartType, XColumn: xColumn, YColumn: yColumn, Title: title,
			})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&chartType, "chart-type", "", "requested chart variant, e.g. bar, line, pie")
	cmd.Flags().StringVar(&xColumn, "x-column", "", "column to plot on the x axis")
	cmd.Flags().StringVar(&yColumn, "y-column", "", "column to plot on the y axis")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	return cmd
}

func filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "list every uploaded file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHandlers()
			if err != nil {
				return err
			}
			resp, err := h.ListFiles(context.Background())
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file_id>",
		Short: "rebuild the session and dialect engine for an already-uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHandlers()
			if err != nil {
				return err
			}
			resp, err := h.Load(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func closeCmd() *cobra.Command {
	var deleteFile bool
	cmd := &cobra.Command{
		Use:   "close <session_id>",
		Short: "close a session and optionally delete its uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHandlers()
			if err != nil {
				return err
			}
			if _, err := h.Load(context.Background(), args[0]); err != nil {
				return fmt.Errorf("corecubectl: reload session: %w", err)
			}
			resp, err := h.CloseSession(context.Background(), args[0], deleteFile)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().BoolVar(&deleteFile, "delete-file", false, "also remove the uploaded file from disk")
	return cmd
}

// runCmd drives the full upload -> query -> close loop in a single
// process, reporting each stage through sessionProgress.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <path> <question>",
		Short: "upload a file, ask one question, then close the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHandlers()
			if err != nil {
				return err
			}
			ctx := context.Background()
			progress := newSessionProgress(filepathBase(args[0]))

			done := progress.stage("upload")
			f, err := os.Open(args[0])
			if err != nil {
				done(err)
				return err
			}
			up, err := h.Upload(ctx, filepathBase(args[0]), "", f)
			f.Close()
			done(err)
			if err != nil {
				return err
			}
			progress.rename(up.FileID)

			done = progress.stage(fmt.Sprintf("query %q", args[1]))
			resp, err := h.Query(ctx, httpapi.QueryRequest{FileID: up.FileID, Query: args[1]})
			done(err)
			if err != nil {
				return err
			}
			if err := printJSON(resp); err != nil {
				return err
			}

			done = progress.stage("close")
			_, err = h.CloseSession(ctx, up.FileID, false)
			done(err)
			return err
		},
	}
	return cmd
}

// ingestCmd uploads every matching file under a directory, reporting
// a per-dataset outcome line as each upload finishes and a closing
// tally keyed by dataset count, via ingestTally.
func ingestCmd() *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "upload every file matching --pattern under a directory, reporting progress per file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := filepath.Glob(filepath.Join(args[0], pattern))
			if err != nil {
				return fmt.Errorf("corecubectl: glob: %w", err)
			}
			if len(matches) == 0 {
				return fmt.Errorf("corecubectl: no files under %q match %q", args[0], pattern)
			}

			h, err := newHandlers()
			if err != nil {
				return err
			}

			tally := newIngestTally()
			var fileIDs []string
			for _, path := range matches {
				name := filepathBase(path)

				f, openErr := os.Open(path)
				if openErr != nil {
					tally.recordFailed(name, openErr)
					continue
				}
				resp, uploadErr := h.Upload(context.Background(), name, "", f)
				f.Close()
				if uploadErr != nil {
					tally.recordFailed(name, uploadErr)
					continue
				}
				fileIDs = append(fileIDs, resp.FileID)
				tally.recordUploaded(name)
			}

			fmt.Print(tally.summary())
			return printJSON(fileIDs)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "*.csv", "glob pattern applied under the directory")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func filepathBase(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
