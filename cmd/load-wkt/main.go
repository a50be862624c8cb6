// Command load-wkt streams a CSV with a WKT geometry column into a MongoDB
// collection.
//
// The WKT cell (default column the_geom) is parsed, repaired when invalid,
// optionally reprojected from -crs-in to -crs-out, and stored as GeoJSON
// under -geometry-field. Rows with an empty WKT cell are skipped; a WKT cell
// that fails to parse aborts the run. Remaining columns are type-coerced
// like load-csv, with the null tokens NULL, N/A, NA, and NONE also mapped to
// null.
//
//	load-wkt -csv parcels.csv -db nyc -collection parcels \
//	    -crs-in EPSG:2263 -create-index -drop
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
	"geoload/internal/geometry"
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

const tool = "load-wkt"

func main() {
	config.LoadDotenv()
	cfg, err := config.LoadWKT()
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

func run(ctx context.Context, cfg *config.WKT, log *zap.SugaredLogger) error {
	// CRS identifiers are resolved before any I/O so a typo fails fast.
	rp, err := geometry.NewReprojector(cfg.CRSIn, cfg.CRSOut)
	if err != nil {
		return err
	}

	in, err := source.Open(cfg.Path, cfg.Encoding)
	if err != nil {
		return err
	}
	defer in.Close()

	rd, err := csvparser.NewReader(in, transform.NewKeyMapper(false))
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.Path, err)
	}
	header := rd.Header()
	wktIdx, err := rd.FieldIndex(cfg.WKTField)
	if err != nil {
		return err
	}

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
	if cfg.CreateIndex {
		if err := sink.EnsureGeoIndex(ctx, cfg.GeometryField); err != nil {
			return err
		}
	}

	log.Infow("loading WKT CSV",
		"path", cfg.Path,
		"namespace", cfg.DB+"."+cfg.Collection,
		"wkt_field", cfg.WKTField,
		"crs_in", cfg.CRSIn,
		"crs_out", cfg.CRSOut,
		"batch_size", cfg.BatchSize,
	)

	row := transform.WKTRow{
		WKTIndex:      wktIdx,
		GeometryField: cfg.GeometryField,
		Reprojector:   rp,
	}
	var skipped int64
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
			doc, ok, err := row.Document(header, rec)
			if err != nil {
				return err
			}
			if !ok {
				skipped++
				metrics.RecordDocs(tool, "skipped", 1)
				continue
			}
			if err := pipeline.Emit(ctx, out, doc); err != nil {
				return err
			}
		}
	}

	total, err := pipeline.Run(ctx, produce, cfg.BatchSize, countBatches(sink.BulkInsert), log)
	metrics.RecordDocs(tool, "inserted", total)
	if err != nil {
		return err
	}
	log.Infof("done: inserted %d documents into %s.%s (%d rows skipped, empty WKT)",
		total, cfg.DB, cfg.Collection, skipped)
	log.Infof("note: 2dsphere queries require geometries in WGS84 (EPSG:4326)")
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
