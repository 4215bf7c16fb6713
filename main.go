package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	envFile   string
	seed      string
	noSamples bool
	export    string
	logLevel  string
	logFormat string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:           "library-catalog",
		Short:         "Interactive in-memory library catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := f.manager(cmd)
			if err != nil {
				return err
			}
			NewApp(mgr, in, out, isTerminal(in)).Run(cmd.Context())
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&f.envFile, "env-file", ".env", "path to a .env file")
	pf.StringVar(&f.seed, "seed", "", "JSON file of books to add at startup")
	pf.BoolVar(&f.noSamples, "no-samples", false, "start without the sample shelf")
	pf.StringVar(&f.export, "export", "", "SQLite file the catalog can be exported to")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print catalog statistics and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := f.manager(cmd)
			if err != nil {
				return err
			}
			writeStatistics(cmd.OutOrStdout(), mgr.Statistics())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "export <file.db>",
		Short: "Write the starting catalog to a SQLite file and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := f.manager(cmd)
			if err != nil {
				return err
			}
			n, err := library.ExportTo(cmd.Context(), mgr.Library, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d book(s) to %s\n", n, args[0])
			return nil
		},
	})

	return root
}

// manager resolves configuration and builds the catalog.
func (f *rootFlags) manager(cmd *cobra.Command) (*library.LibraryManager, error) {
	flags := config.Flags{
		EnvFile:   f.envFile,
		Seed:      f.seed,
		Export:    f.export,
		LogLevel:  f.logLevel,
		LogFormat: f.logFormat,
	}
	if cmd.Flags().Changed("no-samples") {
		flags.NoSamples = strconv.FormatBool(f.noSamples)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	return library.NewLibraryManager(library.ManagerOptions{
		NoSamples:  cfg.Catalog.NoSamples,
		SeedPath:   cfg.Catalog.SeedPath,
		ExportPath: cfg.Catalog.ExportPath,
		Logger:     newLogger(cmd.ErrOrStderr(), cfg.Logger),
	})
}

// newLogger builds the CLI logger; debug level also records call sites.
func newLogger(w io.Writer, cfg config.LoggerConfig) *slog.Logger {
	level := logger.ParseLevel(cfg.Level)
	return logger.New(logger.Config{
		Writer:    w,
		Format:    cfg.Format,
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
