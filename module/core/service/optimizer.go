package service

import (
	"github.com/dispatchly/courier-tracking/module/core/domain"
)

// In-city average speeds per vehicle class, km/h. Motorcycles move fastest
// through traffic; vans and trucks slowest.
var vehicleSpeedKmh = map[domain.VehicleClass]float64{
	domain.VehicleMotorcycle: 35,
	domain.VehicleCar:        28,
	domain.VehicleVan:        24,
	domain.VehicleTruck:      20,
}

const (
	defaultVehicleSpeedKmh = 25
	perStopServiceMinutes  = 4
)

// RouteOptimizer orders a batch of stops with the nearest-neighbor
// heuristic. O(n^2); fine for the tens of stops a driver carries, not
// intended past a few hundred.
type RouteOptimizer struct{}

func NewRouteOptimizer() *RouteOptimizer {
	return &RouteOptimizer{}
}

// Optimize returns the visiting order starting from start. Fails for an
// empty stop list.
func (o *RouteOptimizer) Optimize(stops []domain.Stop, start domain.Coordinate, opts domain.RouteOptions) (*domain.OptimizedRoute, error) {
	if len(stops) == 0 {
		return nil, domain.ErrNoStops
	}

	unvisited := make([]domain.Stop, len(stops))
	copy(unvisited, stops)

	order := make([]string, 0, len(stops))
	current := start
	totalKm := 0.0

	for len(unvisited) > 0 {
		best := 0
		bestDist := DistanceKm(current, unvisited[0].Location)
		for i := 1; i < len(unvisited); i++ {
			if d := DistanceKm(current, unvisited[i].Location); d < bestDist {
				best = i
				bestDist = d
			}
		}

		next := unvisited[best]
		order = append(order, next.ID)
		totalKm += bestDist
		current = next.Location
		unvisited = append(unvisited[:best], unvisited[best+1:]...)
	}

	speed := vehicleSpeedKmh[opts.VehicleClass]
	if speed == 0 {
		speed = defaultVehicleSpeedKmh
	}

	return &domain.OptimizedRoute{
		StopIDs:                  order,
		TotalDistanceKm:          totalKm,
		EstimatedDurationMinutes: totalKm/speed*60 + perStopServiceMinutes*float64(len(stops)),
	}, nil
}
