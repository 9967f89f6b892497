package service

import (
	"math"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

const earthRadiusKm = 6371

// DistanceKm returns the haversine great-circle distance between two
// samples in kilometers. Inputs must already be validated; antimeridian
// and pole crossings are not handled.
func DistanceKm(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDegrees returns the initial bearing from a to b in [0, 360).
func BearingDegrees(a, b domain.Coordinate) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLon := toRad(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := toDeg(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// SpeedKmh derives speed between two samples from distance and the
// timestamp delta. Returns 0 when the delta is not positive.
func SpeedKmh(a, b domain.Coordinate) float64 {
	dt := b.Timestamp.Sub(a.Timestamp).Hours()
	if dt <= 0 {
		return 0
	}
	return DistanceKm(a, b) / dt
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
