package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Reprojector transforms geometry coordinates from one EPSG coordinate
// reference system to another. When source and destination are equal it is
// the identity and geometries pass through untouched, bit for bit.
type Reprojector struct {
	identity bool
	fn       wgs84.Func
}

// NewReprojector builds a Reprojector from identifiers like "EPSG:4326" (a
// bare numeric code is also accepted). Codes the wgs84 catalogue does not
// carry are a configuration error reported before any row is read.
func NewReprojector(src, dst string) (*Reprojector, error) {
	if strings.EqualFold(strings.TrimSpace(src), strings.TrimSpace(dst)) {
		return &Reprojector{identity: true}, nil
	}

	epsg := wgs84.EPSG()
	from, err := crsForCode(epsg, src)
	if err != nil {
		return nil, fmt.Errorf("source CRS: %w", err)
	}
	to, err := crsForCode(epsg, dst)
	if err != nil {
		return nil, fmt.Errorf("destination CRS: %w", err)
	}
	return &Reprojector{fn: wgs84.Transform(from, to)}, nil
}

// Identity reports whether Apply is a no-op.
func (r *Reprojector) Identity() bool { return r.identity }

// Apply reprojects every vertex of g. The identity Reprojector returns g
// unchanged without rebuilding coordinates. A transform that degenerates the
// geometry (coincident vertices, collapsed rings) is an error.
func (r *Reprojector) Apply(g geom.Geometry) (geom.Geometry, error) {
	if r.identity {
		return g, nil
	}
	out := g.TransformXY(func(xy geom.XY) geom.XY {
		x, y, _ := r.fn(xy.X, xy.Y, 0)
		return geom.XY{X: x, Y: y}
	})
	if err := out.Validate(); err != nil {
		return geom.Geometry{}, fmt.Errorf("reproject: %w", err)
	}
	return out, nil
}

// crsForCode resolves "EPSG:4326" / "epsg:4326" / "4326" against the wgs84
// EPSG repository.
func crsForCode(epsg *wgs84.Repository, id string) (wgs84.CoordinateReferenceSystem, error) {
	s := strings.TrimSpace(id)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if !strings.EqualFold(s[:i], "EPSG") {
			return nil, fmt.Errorf("unsupported CRS authority in %q (only EPSG codes are supported)", id)
		}
		s = s[i+1:]
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("malformed CRS identifier %q", id)
	}
	crs := epsg.Code(code)
	if crs == nil {
		return nil, fmt.Errorf("EPSG:%d is not in the built-in catalogue", code)
	}
	return crs, nil
}
