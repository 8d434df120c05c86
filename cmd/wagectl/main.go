// Command wagectl loads the wage datasets and prints one view.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"wagedash/internal/config"
	"wagedash/internal/engine"
	"wagedash/internal/export"
	"wagedash/internal/logger"
	"wagedash/internal/models"
	"wagedash/internal/views"
)

type options struct {
	configPath string
	view       string
	format     string
	sel        views.Selection
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("wagectl", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to the YAML config file")
	fs.StringVar(&o.view, "view", string(views.KindGeo), "view to print: geo, trend, age or industry")
	fs.StringVar(&o.format, "format", "text", "output format: text, json, csv or arrow")
	fs.IntVar(&o.sel.Year, "year", 0, "year for the industry view (default: first year in the data)")
	fs.StringVar(&o.sel.Region, "region", "", "region for the trend view (default: first region in the data)")
	fs.StringVar(&o.sel.Metric, "metric", "", "metric for the industry view")
	fs.StringVar(&o.sel.Age, "age", "", "restrict the age view to one bracket")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	switch o.format {
	case "text", "json", "csv", "arrow":
	default:
		return o, fmt.Errorf("unsupported format %q", o.format)
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	kind, err := views.ParseKind(o.view)
	if err != nil {
		return err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	log := logger.New(stderr, cfg.Logging.Level, cfg.Logging.Format)

	tables, errs := engine.NewLoader(log).LoadAll(cfg.Sources())
	data := views.NewDatasets(tables, errs)

	res, err := views.NewAssembler(cfg.Views, log).Compute(kind, data, o.sel)
	if err != nil {
		return err
	}
	return write(stdout, res, o.format)
}

func write(w io.Writer, res *views.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(models.NewViewResponse(res))
	case "csv":
		return export.WriteCSV(w, res.Table, false)
	case "arrow":
		return export.WriteArrow(w, res.Table)
	}
	if res.Empty {
		_, err := fmt.Fprintf(w, "%s view: no rows for the selection\n", res.View)
		return err
	}
	return export.WriteText(w, res.Table)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "wagectl: %v\n", err)
		os.Exit(1)
	}
}
