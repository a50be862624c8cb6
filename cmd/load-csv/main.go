// Command load-csv streams a CSV file into a MongoDB collection.
//
// Every cell is type-coerced (blank to null, digit runs to int64, decimals
// to float64, everything else kept as string) and header names can be
// normalized to snake_case with -normalize-keys. Field order of the CSV is
// preserved in the stored documents.
//
// The connection string must come from the MONGO_URI environment variable
// (a local .env file is honored) or the -mongo-uri flag:
//
//	load-csv -csv pluto.csv.gz -db nyc -collection pluto -normalize-keys -drop
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"geoload/internal/config"
	"geoload/internal/logger"
	"geoload/internal/metrics"
	"geoload/internal/metrics/prompush"
	csvparser "geoload/internal/parser/csv"
	"geoload/internal/pipeline"
	"geoload/internal/source"
	"geoload/internal/storage/mongodb"
	"geoload/internal/transform"
	"geoload/pkg/document"
)

const tool = "load-csv"

func main() {
	config.LoadDotenv()
	cfg, err := config.LoadCSV()
	if err != nil {
		fatalf("parse flags: %v", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fatalf("%v", err)
	}
	defer log.Sync()

	issues := cfg.Validate()
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			log.Errorf("%v", iss)
		} else {
			log.Warnf("%v", iss)
		}
	}
	if config.HasError(issues) {
		os.Exit(1)
	}

	setupMetrics(cfg.Common, log)

	start := time.Now()
	err = run(context.Background(), cfg, log)
	metrics.RecordRun(tool, err, time.Since(start))
	if mErr := metrics.Flush(); mErr != nil {
		log.Warnf("metrics: flush: %v", mErr)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.CSV, log *zap.SugaredLogger) error {
	in, err := source.Open(cfg.Path, cfg.Encoding)
	if err != nil {
		return err
	}
	defer in.Close()

	keys := transform.NewKeyMapper(cfg.NormalizeKeys)
	rd, err := csvparser.NewReader(in, keys)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.Path, err)
	}
	header := rd.Header()

	sink, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.DB, cfg.Collection, log)
	if err != nil {
		return err
	}
	defer sink.Close(context.Background())

	if cfg.Drop {
		if err := sink.Drop(ctx); err != nil {
			return err
		}
	}

	log.Infow("loading CSV",
		"path", cfg.Path,
		"namespace", cfg.DB+"."+cfg.Collection,
		"columns", len(header),
		"batch_size", cfg.BatchSize,
		"normalize_keys", cfg.NormalizeKeys,
	)

	produce := func(ctx context.Context, out chan<- document.Doc) error {
		for {
			rec, err := rd.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", cfg.Path, err)
			}
			metrics.RecordDocs(tool, "read", 1)
			if err := pipeline.Emit(ctx, out, transform.DocumentFromRow(header, rec)); err != nil {
				return err
			}
		}
	}

	total, err := pipeline.Run(ctx, produce, cfg.BatchSize, countBatches(sink.BulkInsert), log)
	metrics.RecordDocs(tool, "inserted", total)
	if err != nil {
		return err
	}
	log.Infof("done: inserted %d documents into %s.%s", total, cfg.DB, cfg.Collection)
	return nil
}

// countBatches records a batch metric around each successful bulk write.
func countBatches(insert func(context.Context, []document.Doc) (int64, error)) func(context.Context, []document.Doc) (int64, error) {
	return func(ctx context.Context, docs []document.Doc) (int64, error) {
		n, err := insert(ctx, docs)
		if err == nil {
			metrics.RecordBatches(tool, 1)
		}
		return n, err
	}
}

func setupMetrics(c config.Common, log *zap.SugaredLogger) {
	switch c.MetricsBackend {
	case "pushgateway":
		b, err := prompush.NewBackend(tool, c.PushgatewayURL)
		if err != nil {
			log.Warnf("metrics: %v; metrics disabled", err)
			return
		}
		metrics.SetBackend(b)
	case "", "none":
	default:
		// validation already warned
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
