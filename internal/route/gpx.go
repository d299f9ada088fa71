package route

import (
	"encoding/xml"
	"errors"
	"io"

	"backend-trailquest/internal/shared/geo"
)

type gpxFile struct {
	XMLName  xml.Name   `xml:"gpx"`
	Metadata gpxMeta    `xml:"metadata"`
	Tracks   []gpxTrack `xml:"trk"`
}

type gpxMeta struct {
	Name string `xml:"name"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat       float64 `xml:"lat,attr"`
	Lng       float64 `xml:"lon,attr"`
	Elevation float64 `xml:"ele"`
}

var errEmptyGPX = errors.New("gpx contains no track points")

// ParseGPX reads a GPX document and flattens all track segments into an
// ordered point list with cumulative distances and elevation gain/loss.
func ParseGPX(r io.Reader) (Route, error) {
	var file gpxFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return Route{}, err
	}

	var result Route
	result.Name = file.Metadata.Name
	if result.Name == "" && len(file.Tracks) > 0 {
		result.Name = file.Tracks[0].Name
	}

	var points []gpxPoint
	for _, trk := range file.Tracks {
		for _, seg := range trk.Segments {
			points = append(points, seg.Points...)
		}
	}
	if len(points) == 0 {
		return Route{}, errEmptyGPX
	}

	result.Points = make([]TrackPoint, len(points))
	cumulative := 0.0
	for i, p := range points {
		if i > 0 {
			prev := points[i-1]
			cumulative += geo.DistanceMeters(prev.Lat, prev.Lng, p.Lat, p.Lng)
			deltaElev := p.Elevation - prev.Elevation
			if deltaElev > 0 {
				result.ElevationGainM += deltaElev
			} else {
				result.ElevationLossM -= deltaElev
			}
		}
		result.Points[i] = TrackPoint{
			Sequence:           i,
			Lat:                p.Lat,
			Lng:                p.Lng,
			ElevationM:         p.Elevation,
			DistanceFromStartM: cumulative,
		}
	}
	result.DistanceM = cumulative
	return result, nil
}
