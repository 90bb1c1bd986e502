package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alchemy/rotoslog"
	"github.com/phsym/console-slog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/config"
	"m7s.live/fmp4info/pkg/fmp4"
)

const timeFormat = "2006-01-02 15:04:05.000"

type result struct {
	Path        string             `json:"path" yaml:"path"`
	Description *fmp4.Description  `json:"description,omitempty" yaml:"description,omitempty"`
	Details     *fmp4.CodecDetails `json:"details,omitempty" yaml:"details,omitempty"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func newLogger(conf *config.Log) (*slog.Logger, error) {
	level := pkg.ParseLevel(conf.Level)
	handler := pkg.NewMultiLogHandler(level, console.NewHandler(os.Stderr, &console.HandlerOptions{NoColor: conf.NoColor, Level: level, TimeFormat: timeFormat}))
	if conf.Path != "" {
		builder := func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
			return console.NewHandler(w, &console.HandlerOptions{NoColor: true, Level: level, TimeFormat: timeFormat})
		}
		rotating, err := rotoslog.NewHandler(rotoslog.LogHandlerBuilder(builder), rotoslog.LogDir(conf.Path), rotoslog.MaxFileSize(conf.MaxSize), rotoslog.DateTimeLayout("2006-01-02T15"), rotoslog.MaxRotatedFiles(conf.MaxFiles))
		if err != nil {
			return nil, err
		}
		handler.Add(rotating)
	}
	return slog.New(handler), nil
}

// parseAll parses every path, at most conf.Parallel at a time, keeping argument order.
func parseAll(parser *fmp4.Parser, paths []string, conf *config.Output) (results []result, failed int) {
	results = make([]result, len(paths))
	var g errgroup.Group
	g.SetLimit(conf.Parallel)
	for i, path := range paths {
		g.Go(func() (err error) {
			r := &results[i]
			r.Path = path
			if conf.Details {
				r.Description, r.Details, err = parser.ParseDetailed(path)
			} else {
				r.Description, err = parser.Parse(path)
			}
			if err != nil {
				parser.Error("parse failed", "file", path, "error", err)
				r.Error = err.Error()
			}
			return nil
		})
	}
	g.Wait()
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	return
}

func write(w io.Writer, results []result, format string) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(results)
	}
}

func main() {
	confPath := flag.String("c", "config.yaml", "config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-c config.yaml] file.mp4 ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	var conf config.FMP4Info
	if _, err := config.Parse(&conf, *confPath, "FMP4INFO"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := conf.Output.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := newLogger(&conf.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	results, failed := parseAll(fmp4.NewParser(logger), flag.Args(), &conf.Output)
	if err = write(os.Stdout, results, conf.Output.Format); err != nil {
		logger.Error("write failed", "error", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
