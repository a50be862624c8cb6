package config

import "fmt"

// Severity classifies a configuration issue.
type Severity string

const (
	// SeverityError blocks execution.
	SeverityError Severity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding. Path is the flag it concerns.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at -%s: %s", i.Severity, i.Path, i.Message)
}

// HasError reports whether any issue blocks execution.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func errAt(path, msg string) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: msg}
}

func warnAt(path, msg string) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: msg}
}

// validate checks the shared fields. uriRequired distinguishes the CSV
// loader, for which a missing MONGO_URI is fatal rather than defaulted.
func (c *Common) validate(uriRequired bool) []Issue {
	var issues []Issue
	if c.DB == "" {
		issues = append(issues, errAt("db", "database name is required"))
	}
	if c.Collection == "" {
		issues = append(issues, errAt("collection", "collection name is required"))
	}
	if c.BatchSize < 1 {
		issues = append(issues, errAt("batch-size", fmt.Sprintf("must be >= 1, got %d", c.BatchSize)))
	}
	if c.MongoURI == "" {
		if uriRequired {
			issues = append(issues, errAt("mongo-uri", MongoURIEnv+" not found in environment; define it in .env or pass -mongo-uri"))
		} else {
			issues = append(issues, errAt("mongo-uri", "connection string must not be empty"))
		}
	}
	switch c.MetricsBackend {
	case "", "none", "pushgateway":
	default:
		issues = append(issues, warnAt("metrics-backend", fmt.Sprintf("unknown backend %q; metrics will be disabled", c.MetricsBackend)))
	}
	return issues
}

// Validate reports configuration problems for the CSV loader.
func (c *CSV) Validate() []Issue {
	issues := c.Common.validate(true)
	if c.Path == "" {
		issues = append(issues, errAt("csv", "input path is required"))
	}
	return issues
}

// Validate reports configuration problems for the GeoJSON loader.
func (c *GeoJSON) Validate() []Issue {
	issues := c.Common.validate(false)
	if c.Path == "" {
		issues = append(issues, errAt("input", "input path is required"))
	}
	if c.GeometryField == "" {
		issues = append(issues, errAt("geometry-field", "geometry field name must not be empty"))
	}
	return issues
}

// Validate reports configuration problems for the WKT loader. CRS
// identifiers are resolved later by the reprojector, before any row is
// read; here only emptiness is checked.
func (c *WKT) Validate() []Issue {
	issues := c.Common.validate(false)
	if c.Path == "" {
		issues = append(issues, errAt("csv", "input path is required"))
	}
	if c.WKTField == "" {
		issues = append(issues, errAt("wkt-field", "WKT column name must not be empty"))
	}
	if c.GeometryField == "" {
		issues = append(issues, errAt("geometry-field", "geometry field name must not be empty"))
	}
	if c.CreateIndex && c.CRSOut != "EPSG:4326" {
		issues = append(issues, warnAt("crs-out", "2dsphere indexes expect WGS84 (EPSG:4326) coordinates"))
	}
	return issues
}
