// Command bd1dump inspects monthly binary time series files.
//
// It lists the structure catalog, prints series matching a pattern as NDJSON
// or CSV, and exports query results as compressed snapshots.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/bd1"
	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/period"
	"github.com/arloliu/bd1/session"
)

func envString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}

	return def
}

type options struct {
	list        bool
	pattern     string
	start, end  string
	metadata    bool
	csv         bool
	export      string
	compression string
	logLevel    string
	logFormat   string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	name := filepath.Base(os.Args[0])
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.BoolVar(&opts.list, "list", false, "print the header summary and structure catalog instead of series")
	fs.StringVar(&opts.pattern, "pattern", "", "series pattern location.source.parameter.interval.scenario ('*' wildcards, empty matches all)")
	fs.StringVar(&opts.start, "start", "", "first month to read, YYYY-MM (default: start of file)")
	fs.StringVar(&opts.end, "end", "", "last month to read, YYYY-MM (default: end of file)")
	fs.BoolVar(&opts.metadata, "metadata", false, "print series metadata without values")
	fs.BoolVar(&opts.csv, "csv", false, "print values as CSV, one column per series")
	fs.StringVar(&opts.export, "export", "", "write matching series to this snapshot file instead of printing them")
	fs.StringVar(&opts.compression, "compression", "zstd", "snapshot compression: none, zstd, s2 or lz4")
	fs.StringVar(&opts.logLevel, "log-level", envString("BD1_LOG_LEVEL", "warn"), "log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", envString("BD1_LOG_FORMAT", "text"), "log format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [options] file.bd1\n", name)
		fmt.Fprintf(stderr, "\nInspect a monthly binary time series file.\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  %s -list ditches.bd1                          # header and catalog\n", name)
		fmt.Fprintf(stderr, "  %s -pattern 'CU*.*.Flow' -csv ditches.bd1     # Flow for CU* locations\n", name)
		fmt.Fprintf(stderr, "  %s -export flow.snap -compression s2 ditches.bd1\n", name)
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}

	if err := dump(fs.Arg(0), opts, stdout, logger); err != nil {
		logger.Error("bd1dump failed", slog.String("path", fs.Arg(0)), slog.Any("error", err))
		return 1
	}

	return 0
}

func dump(path string, opts options, stdout io.Writer, logger *slog.Logger) error {
	queryOpts, err := rangeOptions(opts.start, opts.end)
	if err != nil {
		return err
	}
	if opts.metadata {
		queryOpts = append(queryOpts, session.WithoutValues())
	}

	s, err := bd1.Open(path, session.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close file", slog.Any("error", err))
		}
	}()

	switch {
	case opts.list:
		return writeCatalog(stdout, s)
	case opts.export != "":
		return export(s, opts, queryOpts, logger)
	}

	list, err := s.Query(opts.pattern, queryOpts...)
	if err != nil {
		return err
	}
	if opts.csv {
		return writeCSV(stdout, list)
	}

	return writeNDJSON(stdout, list)
}

func rangeOptions(start, end string) ([]session.QueryOption, error) {
	var out []session.QueryOption
	if start != "" {
		ym, err := period.Parse(start)
		if err != nil {
			return nil, fmt.Errorf("-start: %w", err)
		}
		out = append(out, session.WithStart(ym))
	}
	if end != "" {
		ym, err := period.Parse(end)
		if err != nil {
			return nil, fmt.Errorf("-end: %w", err)
		}
		out = append(out, session.WithEnd(ym))
	}

	return out, nil
}

func export(s *session.Session, opts options, queryOpts []session.QueryOption, logger *slog.Logger) error {
	compression, ok := format.ParseCompression(opts.compression)
	if !ok {
		return fmt.Errorf("unknown compression %q", opts.compression)
	}

	data, n, err := bd1.Export(s, opts.pattern, compression, queryOpts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.export, data, 0o644); err != nil { //nolint:gosec
		return err
	}

	logger.Info("snapshot written",
		slog.String("file", opts.export),
		slog.Int("series", n),
		slog.Int("bytes", len(data)),
		slog.String("compression", compression.String()))

	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
