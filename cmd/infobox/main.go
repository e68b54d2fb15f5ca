package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"infobox/internal"
	"infobox/internal/config"
	"infobox/internal/fetch"
	"infobox/internal/pipeline"
	"infobox/internal/schema"
	"infobox/internal/storage"
	"infobox/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sch, err := cfg.Schema()
	must(err)
	transformer, err := pipeline.NewTransformer(sch)
	must(err)

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file (.csv, .html, .xlsx)")
		output := fs.String("output", "", "output file path")
		format := fs.String("format", "json", "json|xlsx")
		pretty := fs.Bool("pretty", cfg.OutputPretty, "indent json output")
		skip := fs.Int("skip", cfg.InputSkipRows, "records to skip after the header")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}
		if *skip < 0 {
			must(fmt.Errorf("--skip must not be negative: %d", *skip))
		}
		opts := cfg.SourceOptions()
		opts.SkipRows = *skip
		rows, _, err := pipeline.ReadFile(*input, opts)
		must(err)
		records, err := transformer.Transform(rows)
		must(err)
		must(export(records, sch, *format, *output, *pretty))
		fmt.Printf("run done rows=%d records=%d output=%s\n", len(rows), len(records), *output)
	case "import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file (.csv, .html, .xlsx)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		db := openDB(cfg)
		defer db.Close()
		svc := pipeline.NewImportService(db, cfg.SourceOptions(), transformer)
		res, err := svc.ImportFile(*input)
		must(err)
		fmt.Printf("dataset id=%d records=%d duplicate=%t\n", res.Dataset.ID, res.Dataset.RecordCount, res.Duplicate)
	case "export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		datasetID := fs.Int("dataset", 0, "dataset id")
		out := fs.String("out", "", "output file path")
		format := fs.String("format", "json", "json|xlsx")
		pretty := fs.Bool("pretty", cfg.OutputPretty, "indent json output")
		_ = fs.Parse(os.Args[2:])
		if *datasetID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--dataset and --out are required"))
		}
		db := openDB(cfg)
		defer db.Close()
		dataset, err := db.MustDatasetByID(*datasetID)
		must(err)
		records, err := db.GetRecords(dataset.ID)
		must(err)
		must(export(records, sch, *format, *out, *pretty))
		fmt.Printf("exported %d records to %s\n", len(records), *out)
	case "datasets":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max datasets")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		datasets, err := db.ListDatasets(*limit)
		must(err)
		for _, d := range datasets {
			fmt.Printf("%d\t%s\t%s\t%d\t%s\n", d.ID, d.CreatedAt, d.Format, d.RecordCount, d.Source)
		}
	case "find":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		label := fs.String("label", "", "cleaned label")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*label) == "" {
			must(fmt.Errorf("--label is required"))
		}
		db := openDB(cfg)
		defer db.Close()
		records, err := db.FindByLabel(*label)
		must(err)
		must(pipeline.WriteJSON(os.Stdout, records, true))
	case "fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		rawURL := fs.String("url", "", "export url")
		format := fs.String("format", "csv", "csv|html|xlsx")
		doImport := fs.Bool("import", false, "import right after download")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*rawURL) == "" {
			must(fmt.Errorf("--url is required"))
		}
		path, err := fetch.NewClient(cfg).Download(context.Background(), *rawURL, cfg.WatchDir, *format)
		must(err)
		fmt.Printf("fetch done url=%s path=%s\n", *rawURL, path)
		if !*doImport {
			return
		}
		db := openDB(cfg)
		defer db.Close()
		res, err := pipeline.NewImportService(db, cfg.SourceOptions(), transformer).ImportFile(path)
		must(err)
		fmt.Printf("dataset id=%d records=%d duplicate=%t\n", res.Dataset.ID, res.Dataset.RecordCount, res.Duplicate)
	case "watch":
		db := openDB(cfg)
		defer db.Close()
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		must(watcher.NewService(db, cfg, transformer).Run(ctx))
	default:
		usage()
		os.Exit(1)
	}
}

func export(records []internal.Record, sch schema.Schema, format, out string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return pipeline.ExportJSON(records, out, pretty)
	case "xlsx":
		return pipeline.ExportRecordsToXLSX(records, sch, out)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func openDB(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func usage() {
	fmt.Println("usage: infobox <command>")
	fmt.Println("commands:")
	fmt.Println("  run --input=arachnid.csv --output=arachnid.json [--format=json|xlsx] [--pretty] [--skip=3]")
	fmt.Println("  import --input=arachnid.csv")
	fmt.Println("  export --dataset=1 --out=./out/arachnid.json [--format=json|xlsx] [--pretty]")
	fmt.Println("  datasets [--limit=20]")
	fmt.Println("  find --label=Argiope")
	fmt.Println("  fetch --url=https://... [--format=csv|html|xlsx] [--import]")
	fmt.Println("  watch")
	fmt.Println("env: DB_PATH SCHEMA_PATH INPUT_SKIP_ROWS INPUT_ENCODING OUTPUT_DIR OUTPUT_PRETTY WATCH_DIR WATCH_INTERVAL_SEC WATCH_AUTO_EXPORT FETCH_TIMEOUT_MS FETCH_RATE_LIMIT_RPS")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
