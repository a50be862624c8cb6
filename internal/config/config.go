// Package config defines the per-tool configuration structs and the flag /
// environment loading behind them. All tunables live outside the code:
// flags are defined first so -help shows every knob, and the connection
// string is seeded from the environment (optionally populated from a local
// .env file) with an explicit -mongo-uri override.
//
// Each Load*Args function takes a private FlagSet, a getenv func, and an
// argument slice so tests stay hermetic; the Load* wrappers wire in the real
// process flag set, environment, and os.Args.
package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

// MongoURIEnv names the environment variable holding the connection string.
const MongoURIEnv = "MONGO_URI"

// localURI is the fallback for the tools that tolerate a missing MONGO_URI.
const localURI = "mongodb://localhost:27017"

// Common holds the configuration shared by all three loaders. All fields are
// plain values: the struct is populated once at startup, passed by value,
// and never mutated afterwards.
type Common struct {
	DB         string // target database name
	Collection string // target collection name
	MongoURI   string // connection string (env fallback, flag override)
	BatchSize  int    // documents per bulk insert
	Drop       bool   // drop the collection before loading
	Encoding   string // input character encoding
	LogLevel   string // debug, info, warn, error

	MetricsBackend string // "none" or "pushgateway"
	PushgatewayURL string
}

// CSV configures cmd/load-csv.
type CSV struct {
	Common
	Path          string // CSV path (.csv or .csv.gz)
	NormalizeKeys bool   // snake_case header names
}

// GeoJSON configures cmd/load-geojson.
type GeoJSON struct {
	Common
	Path              string // GeoJSON/NDJSON path (optionally .gz)
	GeometryField     string // document key receiving the geometry
	FlattenProperties bool   // move Feature.properties to the document root
	KeepFeatureID     bool   // retain Feature.id as _feature_id
	CreateIndex       bool   // ensure a 2dsphere index before loading
	NDJSON            bool   // one JSON value per line
}

// WKT configures cmd/load-wkt.
type WKT struct {
	Common
	Path          string // CSV path (.csv or .csv.gz)
	WKTField      string // column holding WKT
	GeometryField string // document key receiving the GeoJSON geometry
	CRSIn         string // source CRS of the WKT (e.g. EPSG:2263)
	CRSOut        string // destination CRS (should stay EPSG:4326)
	CreateIndex   bool   // ensure a 2dsphere index before loading
}

// LoadDotenv populates the process environment from a local .env file when
// one exists. A missing file is not an error.
func LoadDotenv() { _ = godotenv.Load() }

// registerCommon defines the shared flags on fs. When uriRequired the
// -mongo-uri default stays empty so validation can insist on MONGO_URI;
// otherwise a missing environment value silently falls back to localhost.
func registerCommon(fs *flag.FlagSet, getenv func(string) string, c *Common, defaultBatch int, uriRequired bool) {
	uriDefault := getenv(MongoURIEnv)
	if uriDefault == "" && !uriRequired {
		uriDefault = localURI
	}

	fs.StringVar(&c.DB, "db", "", "target database name")
	fs.StringVar(&c.Collection, "collection", "", "target collection name")
	fs.StringVar(&c.MongoURI, "mongo-uri", uriDefault, "MongoDB URI (env "+MongoURIEnv+" is respected)")
	fs.IntVar(&c.BatchSize, "batch-size", defaultBatch, "bulk insert batch size")
	fs.BoolVar(&c.Drop, "drop", false, "drop the collection before loading")
	fs.StringVar(&c.Encoding, "encoding", "utf-8", "input file encoding")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&c.MetricsBackend, "metrics-backend", envOrDefault(getenv, "METRICS_BACKEND", "none"), "metrics backend: none, pushgateway")
	fs.StringVar(&c.PushgatewayURL, "pushgateway-url", envOrDefault(getenv, "PUSHGATEWAY_URL", "http://localhost:9091"), "Pushgateway base URL")
}

// LoadCSVArgs builds the load-csv configuration from fs, getenv, and args.
func LoadCSVArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*CSV, error) {
	cfg := &CSV{}
	registerCommon(fs, getenv, &cfg.Common, 5000, true)
	fs.StringVar(&cfg.Path, "csv", "", "path to CSV (.csv or .csv.gz)")
	fs.BoolVar(&cfg.NormalizeKeys, "normalize-keys", false, "normalize column names to snake_case")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCSV is the production entry point for cmd/load-csv.
func LoadCSV() (*CSV, error) {
	return LoadCSVArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// LoadGeoJSONArgs builds the load-geojson configuration.
func LoadGeoJSONArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*GeoJSON, error) {
	cfg := &GeoJSON{}
	registerCommon(fs, getenv, &cfg.Common, 5000, false)
	fs.StringVar(&cfg.Path, "input", "", "path to .geojson/.json(.gz) or NDJSON")
	fs.StringVar(&cfg.GeometryField, "geometry-field", "geometry", "field name to store geometry under")
	fs.BoolVar(&cfg.FlattenProperties, "flatten-properties", false, "flatten Feature.properties into the document root")
	fs.BoolVar(&cfg.KeepFeatureID, "keep-feature-id", false, "keep the original Feature.id as _feature_id")
	fs.BoolVar(&cfg.CreateIndex, "create-index", false, "create a 2dsphere index on the geometry field")
	fs.BoolVar(&cfg.NDJSON, "ndjson", false, "treat input as NDJSON (one JSON value per line)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGeoJSON is the production entry point for cmd/load-geojson.
func LoadGeoJSON() (*GeoJSON, error) {
	return LoadGeoJSONArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// LoadWKTArgs builds the load-wkt configuration.
func LoadWKTArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*WKT, error) {
	cfg := &WKT{}
	registerCommon(fs, getenv, &cfg.Common, 2000, false)
	fs.StringVar(&cfg.Path, "csv", "", "path to CSV (.csv or .csv.gz)")
	fs.StringVar(&cfg.WKTField, "wkt-field", "the_geom", "CSV column containing WKT")
	fs.StringVar(&cfg.GeometryField, "geometry-field", "geometry", "field name to store GeoJSON geometry under")
	fs.StringVar(&cfg.CRSIn, "crs-in", "EPSG:4326", "source CRS of the WKT (e.g. EPSG:2263)")
	fs.StringVar(&cfg.CRSOut, "crs-out", "EPSG:4326", "destination CRS (2dsphere expects EPSG:4326)")
	fs.BoolVar(&cfg.CreateIndex, "create-index", false, "create a 2dsphere index on the geometry field")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWKT is the production entry point for cmd/load-wkt.
func LoadWKT() (*WKT, error) {
	return LoadWKTArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

func envOrDefault(getenv func(string) string, k, d string) string {
	if v := getenv(k); v != "" {
		return v
	}
	return d
}
