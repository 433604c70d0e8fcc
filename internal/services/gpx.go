package services

import (
	"collection-route-service/internal/domain"
	"encoding/xml"
	"errors"
	"fmt"
)

type gpxDoc struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	Xmlns   string   `xml:"xmlns,attr"`
	Track   gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name    string       `xml:"name"`
	Segment gpxTrackSegm `xml:"trkseg"`
}

type gpxTrackSegm struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

// RenderGPX renders a route record's polyline as a GPX 1.1 track.
func RenderGPX(rec domain.RouteRecord) ([]byte, error) {
	if len(rec.Polyline) == 0 {
		return nil, errors.New("render gpx: route has no polyline")
	}

	doc := gpxDoc{
		Version: "1.1",
		Creator: "collection-route-service",
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Track: gpxTrack{
			Name: fmt.Sprintf("Collection route %d (%s)", rec.ID, rec.RouteDate.Format("2006-01-02")),
		},
	}
	doc.Track.Segment.Points = make([]gpxPoint, 0, len(rec.Polyline))
	for _, p := range rec.Polyline {
		doc.Track.Segment.Points = append(doc.Track.Segment.Points, gpxPoint{Lat: p[1], Lon: p[0]})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render gpx: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
