package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yumyai/ggderep/internal/config"
	"github.com/yumyai/ggderep/logger"
	"github.com/yumyai/ggderep/pkg/derep"
	"github.com/yumyai/ggderep/pkg/genome"
	"github.com/yumyai/ggderep/pkg/handler"
	"github.com/yumyai/ggderep/pkg/matrix"
	"github.com/yumyai/ggderep/pkg/metrics"
	"github.com/yumyai/ggderep/pkg/results"
)

const VERSION = "0.1.0"

const usage = `usage: ggderep <command> [flags]

commands:
  run     dereplicate genomes from a results directory or a matrix file
  serve   start the HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "serve":
		err = serveCmd(os.Args[2:])
	case "version":
		fmt.Println(VERSION)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "ggderep:", err)
		os.Exit(1)
	}
}

// setup loads .env, the config file and the environment, then initialises
// the package logger at the configured level.
func setup(configPath string) (config.Config, error) {
	if err := logger.InitLogger(zapcore.InfoLevel); err != nil {
		return config.Config{}, err
	}

	// Try load env
	if err := config.LoadDotenv(); err != nil {
		logger.Warn("No .env found, using local environment")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	level, err := cfg.Level()
	if err != nil {
		return cfg, err
	}
	if level != zapcore.InfoLevel {
		if err := logger.InitLogger(level); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

type runFlags struct {
	config          string
	resultsDir      string
	matrixFile      string
	matrixName      string
	convention      string
	externalGenomes string
	fastaText       string
	genomeDB        string
	output          string
	jsonOutput      string
}

func runCmd(args []string) error {
	var f runFlags
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML config file (default $DEREP_CONFIG)")
	fs.StringVar(&f.resultsDir, "results-dir", "", "directory with the reports of an ANI or sourmash run")
	fs.StringVar(&f.matrixFile, "matrix", "", "TAB-delimited matrix file, instead of -results-dir")
	fs.StringVar(&f.matrixName, "matrix-name", "", "report name of -matrix (default: the configured metric)")
	fs.StringVar(&f.convention, "convention", "distance", "values of -matrix: distance or similarity")
	fs.StringVar(&f.externalGenomes, "external-genomes", "", "genome table with name, percent_completion, percent_redundancy, total_length")
	fs.StringVar(&f.fastaText, "fasta-text-file", "", "table with name and path of FASTA files")
	fs.StringVar(&f.genomeDB, "genome-db", "", "sqlite database with a genome_info table")
	fs.StringVar(&f.output, "output", "", "genome groups file (default stdout)")
	fs.StringVar(&f.jsonOutput, "json", "", "also write the report as JSON to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := setup(f.config)
	if err != nil {
		return err
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	dcfg, err := cfg.Derep()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := loadMatrices(f, dcfg)
	if err != nil {
		return err
	}
	genomes, err := loadGenomes(ctx, f)
	if err != nil {
		return err
	}

	d, err := derep.New(dcfg, derep.WithReporter(logger.NewReporter(logger.L(), 0)))
	if err != nil {
		return err
	}
	res, err := d.Run(ctx, derep.Input{Matrices: set, Genomes: genomes})
	if err != nil {
		return err
	}

	if err := writeGroups(f.output, res.Report); err != nil {
		return err
	}

	if f.jsonOutput != "" {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.jsonOutput, b, 0o644); err != nil {
			return err
		}
	}

	logger.Info("Done",
		zap.String("run_id", res.RunID),
		zap.Int("input_genomes", res.Summary.InputGenomes),
		zap.Int("redundant_genomes", res.Summary.RedundantGenomes),
		zap.Int("clusters", res.Summary.Clusters))
	return nil
}

// writeGroups writes the genome groups to path, or to stdout when path is
// empty. A failed Close is reported since buffered data may be lost there.
func writeGroups(path string, r *derep.Report) (err error) {
	if path == "" {
		return derep.WriteGenomeGroups(os.Stdout, r)
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return derep.WriteGenomeGroups(fh, r)
}

func loadMatrices(f runFlags, cfg derep.Config) (matrix.Set, error) {
	switch {
	case f.resultsDir != "" && f.matrixFile != "":
		return nil, errors.New("use either -results-dir or -matrix")
	case f.resultsDir != "":
		logger.Info("Importing results directory", zap.String("dir", f.resultsDir), zap.String("program", cfg.Program.String()))
		if cfg.Program == derep.Sourmash {
			return results.LoadSourmash(f.resultsDir, cfg.MinMashDistance)
		}
		return results.LoadANI(f.resultsDir)
	case f.matrixFile != "":
		conv, err := matrix.ParseConvention(f.convention)
		if err != nil {
			return nil, err
		}
		name := f.matrixName
		if name == "" {
			name = cfg.MetricName()
		}
		m, err := matrix.LoadTSV(f.matrixFile, name, conv)
		if err != nil {
			return nil, err
		}
		return matrix.NewSet(m), nil
	}
	return nil, errors.New("one of -results-dir or -matrix is required")
}

func loadGenomes(ctx context.Context, f runFlags) (*genome.Table, error) {
	var sources []genome.Source
	if f.externalGenomes != "" {
		t, err := genome.LoadTSV(f.externalGenomes)
		if err != nil {
			return nil, err
		}
		sources = append(sources, genome.Source{Label: f.externalGenomes, Table: t})
	}
	if f.fastaText != "" {
		t, err := genome.LoadFastaText(f.fastaText)
		if err != nil {
			return nil, err
		}
		sources = append(sources, genome.Source{Label: f.fastaText, Table: t})
	}
	if f.genomeDB != "" {
		t, err := loadGenomeDB(ctx, f.genomeDB)
		if err != nil {
			return nil, err
		}
		sources = append(sources, genome.Source{Label: f.genomeDB, Table: t})
	}
	if len(sources) == 0 {
		return nil, nil
	}
	return genome.Combine(sources...)
}

func loadGenomeDB(ctx context.Context, path string) (*genome.Table, error) {
	db, err := genome.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	logger.Info("Open database on", zap.String("DB_LOC", path))
	return genome.LoadSQLite(ctx, db)
}

func serveCmd(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file (default $DEREP_CONFIG)")
	genomeDB := fs.String("genome-db", os.Getenv("DEREP_GENOME_DB"), "sqlite database with a genome_info table, used when a request has no genomes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	dcfg, err := cfg.Derep()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &handler.Server{
		Config:  dcfg,
		Jobs:    handler.NewJobManager(),
		Metrics: metrics.New(),
		Log:     logger.L(),
	}
	if *genomeDB != "" {
		if s.Genomes, err = loadGenomeDB(ctx, *genomeDB); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Server starting", zap.String("addr", cfg.Addr))

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Error starting server:", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := s.Jobs.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Cancelled running dereplication jobs", zap.Error(err))
		}
	}
	return nil
}
