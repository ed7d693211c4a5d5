package main

import (
	"context"
	"emfdscore.com/emfd/api"
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/pipeline"
	"emfdscore.com/emfd/scoring"
	"emfdscore.com/emfd/table"
	"emfdscore.com/emfd/types"
	"emfdscore.com/emfd/worker"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type batchFlags struct {
	input         string
	output        string
	header        bool
	numDocs       int
	workers       int
	progressEvery int
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "-", "input CSV, text in the first column ('-' for stdin)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "-", "output CSV ('-' for stdout)")
	cmd.Flags().BoolVar(&f.header, "header", false, "input CSV starts with a header row")
	cmd.Flags().IntVar(&f.numDocs, "num-docs", 0, "expected number of documents, used for progress reporting")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 1, "documents annotated and scored concurrently")
	cmd.Flags().IntVar(&f.progressEvery, "progress-every", 100, "log progress every N documents")
}

type batchFunc func(ctx context.Context, params pipeline.BatchParams, anns annotators, docs []string, out io.Writer) error

func rootCmd() *cobra.Command {
	var envFile, logFile string
	cmd := &cobra.Command{
		Use:           "emfd",
		Short:         "Moral foundations scoring of text documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				logger.SetOutput(f)
			}
			return loadEnv(envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file instead of stderr")
	cmd.AddCommand(scoreCmd(), patCmd(), serveCmd(), workerCmd(), superviseCmd())
	return cmd
}

func scoreCmd() *cobra.Command {
	var flags batchFlags
	var dict string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every document with one dictionary (bag of words)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dictionary, err := types.ParseDictionary(dict)
			if err != nil {
				return err
			}
			columns, err := scoring.Columns(dictionary)
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), flags, func(ctx context.Context, params pipeline.BatchParams, anns annotators, docs []string, out io.Writer) error {
				params.Dictionary = dictionary
				params.Annotator = anns.bagOfWords
				results, err := pipeline.ScoreDocs(ctx, params, docs)
				if err != nil {
					return err
				}
				return table.WriteScores(out, columns, results)
			})
		},
	}
	cmd.Flags().StringVarP(&dict, "dict", "d", string(types.DictionaryEMFD), "dictionary: emfd, mfd or mfd2")
	flags.register(cmd)
	return cmd
}

func patCmd() *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "pat",
		Short: "Extract entity agent, patient and attribute scores (e-MFD)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), flags, func(ctx context.Context, params pipeline.BatchParams, anns annotators, docs []string, out io.Writer) error {
				if anns.syntax == nil {
					return errors.New("pat needs an annotation service with a parser, set EMFD_ANNOTATOR_URL")
				}
				params.Annotator = anns.syntax
				rows, err := pipeline.PatDocs(ctx, params, docs)
				if err != nil {
					return err
				}
				return table.WriteEntities(out, rows)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// runBatch reads the documents of flags.input, hands them to fn and writes
// the table fn produces to flags.output.
func runBatch(ctx context.Context, flags batchFlags, fn batchFunc) error {
	config, err := readConfig()
	if err != nil {
		return err
	}
	store, err := loadStore(config)
	if err != nil {
		return err
	}
	anns, err := newAnnotators(config)
	if err != nil {
		return err
	}
	defer anns.close()

	in, closeIn, err := openInput(flags.input)
	if err != nil {
		return err
	}
	defer closeIn()
	docs, err := table.ReadDocuments(in, flags.header)
	if err != nil {
		return fmt.Errorf("read %s: %w", flags.input, err)
	}
	numDocs := flags.numDocs
	if numDocs <= 0 {
		numDocs = len(docs)
	}

	out, closeOut, err := openOutput(flags.output)
	if err != nil {
		return err
	}
	if err := fn(ctx, pipeline.BatchParams{
		Store:         store,
		Workers:       flags.workers,
		NumDocs:       numDocs,
		ProgressEvery: flags.progressEvery,
	}, anns, docs, out); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

func openInput(name string) (io.Reader, func(), error) {
	if name == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(name string) (io.Writer, func() error, error) {
	if name == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scorers and the configured pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			config, err := readConfig()
			if err != nil {
				return err
			}
			if port != "" {
				config.RestAPIPort = port
			}
			store, ppln, anns, err := loadService(config)
			if err != nil {
				return err
			}
			defer anns.close()
			return serveAPI(ctx, config, store, ppln, anns)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port, overrides EMFD_REST_API_PORT")
	return cmd
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume scoring tasks from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			emfdLogger := logger.NewLogger("Main")
			config, err := readConfig()
			if err != nil {
				return err
			}
			store, ppln, anns, err := loadService(config)
			if err != nil {
				return err
			}
			defer anns.close()

			if config.RestAPIActive {
				go func() {
					if err := serveAPI(ctx, config, store, ppln, anns); err != nil {
						emfdLogger.Error().Err(err).Msg("REST API stopped with error")
					}
				}()
			}

			emfdLogger.Info().Msg("Start EMFD Worker")
			for ctx.Err() == nil {
				rmqWorker, err := worker.New(ppln)
				if err != nil {
					return fmt.Errorf("could not initialize RMQ worker: %w", err)
				}
				if err = rmqWorker.Start(ctx); err != nil {
					emfdLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
					select {
					case <-ctx.Done():
					case <-time.After(5 * time.Second):
					}
				}
			}
			return nil
		},
	}
}

// superviseCmd re-runs this binary with the given arguments and relays its
// logs, turning a crash dump into a structured log event.
func superviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supervise -- <command> [flags]",
		Short: "Run another emfd command and log its panics as JSON",
		Args:  cobra.MinimumNArgs(1),

		// Everything after supervise belongs to the child command.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			self, err := os.Executable()
			if err != nil {
				return err
			}
			exitCode, err := logger.Supervise(cmd.Context(), self, args...)
			if err != nil {
				return err
			}
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}
}

func loadService(config Config) (*lexicon.Store, pipeline.Pipeline, annotators, error) {
	store, err := loadStore(config)
	if err != nil {
		return nil, nil, annotators{}, err
	}
	anns, err := newAnnotators(config)
	if err != nil {
		return nil, nil, annotators{}, err
	}
	ppln, err := loadPipeline(config, store, anns)
	if err != nil {
		anns.close()
		return nil, nil, annotators{}, err
	}
	return store, ppln, anns, nil
}

func serveAPI(ctx context.Context, config Config, store *lexicon.Store, ppln pipeline.Pipeline, anns annotators) error {
	handler, err := api.NewHandler(api.Params{
		Store:      store,
		Pipeline:   ppln,
		BagOfWords: anns.bagOfWords,
		Syntax:     anns.syntax,
	})
	if err != nil {
		return err
	}
	return api.Serve(ctx, ":"+config.RestAPIPort, api.NewRouter(handler))
}
