// Package staticmap renders fixed-size map snapshots with a single marker.
package staticmap

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	sm "github.com/flopp/go-staticmaps"
	"github.com/golang/geo/s2"
)

const (
	snapshotWidth  = 600
	snapshotHeight = 400
	snapshotZoom   = 16
	markerSize     = 16.0
)

// ParseCoords coerces the latitude/longitude form strings to floats.
func ParseCoords(lat, lon string) (float64, float64, error) {
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	lonF, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	return latF, lonF, nil
}

// Render produces a 600x400 PNG with a red marker at the given coordinate.
// Tile content comes from the default OSM tile provider, so the call needs
// network access; any failure is returned for the caller to degrade on.
func Render(lat, lon string) ([]byte, error) {
	latF, lonF, err := ParseCoords(lat, lon)
	if err != nil {
		return nil, err
	}

	ctx := sm.NewContext()
	ctx.SetSize(snapshotWidth, snapshotHeight)
	ctx.SetZoom(snapshotZoom)
	ctx.AddObject(sm.NewMarker(
		s2.LatLngFromDegrees(latF, lonF),
		color.RGBA{R: 0xff, A: 0xff},
		markerSize,
	))

	img, err := ctx.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering map snapshot: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding map snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
