// Command load-geojson streams GeoJSON into a MongoDB collection.
//
// The input may be a single Feature, a FeatureCollection, a bare JSON array
// of Features, or NDJSON where every line is one of those shapes. Feature
// properties are stored nested by default or flattened into the document
// root with -flatten-properties; -create-index ensures a 2dsphere index on
// the geometry field before loading.
//
//	load-geojson -input zones.geojson.gz -db nyc -collection flood_zones \
//	    -flatten-properties -create-index -drop
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"geoload/internal/config"
	"geoload/internal/logger"
	"geoload/internal/metrics"
	"geoload/internal/metrics/prompush"
	"geoload/internal/parser/geojson"
	"geoload/internal/pipeline"
	"geoload/internal/source"
	"geoload/internal/storage/mongodb"
	"geoload/internal/transform"
	"geoload/pkg/document"
)

const tool = "load-geojson"

func main() {
	config.LoadDotenv()
	cfg, err := config.LoadGeoJSON()
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

func run(ctx context.Context, cfg *config.GeoJSON, log *zap.SugaredLogger) error {
	in, err := source.Open(cfg.Path, cfg.Encoding)
	if err != nil {
		return err
	}
	defer in.Close()

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

	log.Infow("loading GeoJSON",
		"path", cfg.Path,
		"namespace", cfg.DB+"."+cfg.Collection,
		"batch_size", cfg.BatchSize,
		"ndjson", cfg.NDJSON,
		"flatten_properties", cfg.FlattenProperties,
	)

	opts := transform.FeatureOptions{
		GeometryField: cfg.GeometryField,
		Flatten:       cfg.FlattenProperties,
		KeepFeatureID: cfg.KeepFeatureID,
	}
	produce := func(ctx context.Context, out chan<- document.Doc) error {
		return geojson.StreamFeatures(in, cfg.NDJSON, func(feat map[string]any) error {
			metrics.RecordDocs(tool, "read", 1)
			return pipeline.Emit(ctx, out, transform.DocumentFromFeature(feat, opts))
		})
	}

	total, err := pipeline.Run(ctx, produce, cfg.BatchSize, countBatches(sink.BulkInsert), log)
	metrics.RecordDocs(tool, "inserted", total)
	if err != nil {
		return err
	}
	log.Infof("done: inserted %d documents into %s.%s", total, cfg.DB, cfg.Collection)
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
