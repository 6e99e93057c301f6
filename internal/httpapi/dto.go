package httpapi

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/passbi/routecore/internal/models"
)

// routePlanDTO is the wire shape of spec §6.1's plan-routes response
// entries: scoring summary, a human-readable instruction list, and a
// GeoJSON FeatureCollection for map rendering, grounded on the
// teacher's RouteSearchResponse/RouteResult pair
// (internal/api/handlers.go) generalized from a strategy-keyed map to
// a ranked list carrying DGVI scores.
type routePlanDTO struct {
	RouteID        string           `json:"route_id"`
	RouteType      models.RouteType `json:"route_type"`
	TotalDuration  float64          `json:"total_duration_seconds"`
	DurationScore  float64          `json:"duration_score"`
	AcDGVIScore    float64          `json:"acdgvi_score"`
	TotalAcDGVI    float64          `json:"total_acdgvi"`
	TotalScore     float64          `json:"total_score"`
	GVIDataMonth   string           `json:"gvi_data_month"`
	Summary        string           `json:"summary"`
	Instructions   []string         `json:"instructions"`
	TimingDetails  []timingDetail   `json:"timing_details"`
	TransferSummary *transferSummary `json:"transfer_summary,omitempty"`
	GeoJSON        *geojson.FeatureCollection `json:"geojson"`
	Segments       []segmentDTO     `json:"segments"`
}

type timingDetail struct {
	Kind            models.SegmentKind `json:"kind"`
	DurationSeconds float64            `json:"duration_seconds"`
	Label           string             `json:"label"`
}

type transferSummary struct {
	FromLine       string  `json:"from_line"`
	ToLine         string  `json:"to_line"`
	WaitingSeconds float64 `json:"waiting_seconds"`
}

type segmentDTO struct {
	Kind              models.SegmentKind `json:"kind"`
	DurationSeconds   float64            `json:"duration_seconds"`
	DistanceMeters    float64            `json:"distance_meters,omitempty"`
	LineDesignation   string             `json:"line_designation,omitempty"`
	DirectionCode     string             `json:"direction_code,omitempty"`
	StartStopName     string             `json:"start_stop_name,omitempty"`
	EndStopName       string             `json:"end_stop_name,omitempty"`
	ExpectedDeparture string             `json:"expected_departure,omitempty"`
	ExpectedArrival   string             `json:"expected_arrival,omitempty"`
}

// toRoutePlanDTO assembles the API representation of one RoutePlan,
// following the teacher's buildSteps geometry-concatenation idiom but
// emitting real GeoJSON instead of a raw polyline.
func toRoutePlanDTO(rp models.RoutePlan) routePlanDTO {
	dto := routePlanDTO{
		RouteID:       rp.RouteID,
		RouteType:     rp.RouteType,
		TotalDuration: rp.TotalDuration.Seconds(),
		DurationScore: rp.DurationScore,
		AcDGVIScore:   rp.AcDGVIScore,
		TotalAcDGVI:   rp.TotalAcDGVI,
		TotalScore:    rp.TotalScore,
		GVIDataMonth:  rp.GVIDataMonth,
		Summary:       summarize(rp),
		GeoJSON:       geojson.NewFeatureCollection(),
	}

	for _, seg := range rp.Segments {
		dto.Instructions = append(dto.Instructions, instructionFor(seg))
		dto.TimingDetails = append(dto.TimingDetails, timingDetail{
			Kind:            seg.Kind,
			DurationSeconds: seg.Duration.Seconds(),
			Label:           instructionFor(seg),
		})
		if seg.Transfer != nil {
			dto.TransferSummary = &transferSummary{
				FromLine:       seg.Transfer.FromLine,
				ToLine:         seg.Transfer.ToLine,
				WaitingSeconds: seg.Transfer.WaitingTime.Seconds(),
			}
		}
		dto.Segments = append(dto.Segments, segmentDTOFor(seg))
		appendSegmentFeature(dto.GeoJSON, seg)
	}

	return dto
}

func instructionFor(seg models.Segment) string {
	switch seg.Kind {
	case models.SegmentWalking:
		return fmt.Sprintf("Walk %.0f m (%.0f s)", seg.DistanceMeters, seg.Duration.Seconds())
	case models.SegmentBusWaiting:
		return fmt.Sprintf("Wait for line %s at %s", seg.LineDesignation, seg.StartStopName)
	case models.SegmentBusRide:
		return fmt.Sprintf("Ride line %s from %s to %s", seg.LineDesignation, seg.StartStopName, seg.EndStopName)
	default:
		return string(seg.Kind)
	}
}

func segmentDTOFor(seg models.Segment) segmentDTO {
	d := segmentDTO{
		Kind:            seg.Kind,
		DurationSeconds: seg.Duration.Seconds(),
		DistanceMeters:  seg.DistanceMeters,
		LineDesignation: seg.LineDesignation,
		DirectionCode:   seg.DirectionCode,
	}
	if seg.Kind == models.SegmentBusRide {
		d.StartStopName = seg.StartStopName
		d.EndStopName = seg.EndStopName
		if !seg.ExpectedDeparture.IsZero() {
			d.ExpectedDeparture = seg.ExpectedDeparture.Format("15:04:05")
		}
		if !seg.ExpectedArrival.IsZero() {
			d.ExpectedArrival = seg.ExpectedArrival.Format("15:04:05")
		}
	}
	return d
}

func appendSegmentFeature(fc *geojson.FeatureCollection, seg models.Segment) {
	var geom orb.Geometry
	switch seg.Kind {
	case models.SegmentWalking:
		if len(seg.Geometry) > 0 {
			geom = seg.Geometry
		}
	case models.SegmentBusRide:
		if len(seg.RideGeometry) > 0 {
			geom = seg.RideGeometry
		}
	case models.SegmentBusWaiting:
		geom = seg.StopPoint
	}
	if geom == nil {
		return
	}

	feature := geojson.NewFeature(geom)
	feature.Properties["kind"] = string(seg.Kind)
	feature.Properties["line_designation"] = seg.LineDesignation
	fc.Append(feature)
}

func summarize(rp models.RoutePlan) string {
	switch rp.RouteType {
	case models.RouteWalking:
		return fmt.Sprintf("Walk, %.0f min", rp.TotalDuration.Minutes())
	case models.RouteDirectBus:
		return fmt.Sprintf("Direct bus, %.0f min", rp.TotalDuration.Minutes())
	case models.RouteTransferBus:
		return fmt.Sprintf("One transfer, %.0f min", rp.TotalDuration.Minutes())
	default:
		return fmt.Sprintf("%.0f min", rp.TotalDuration.Minutes())
	}
}
