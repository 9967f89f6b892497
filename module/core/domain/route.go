package domain

// Stop is a single delivery destination handed to the route optimizer.
type Stop struct {
	ID       string     `json:"id"`
	Location Coordinate `json:"location"`
}

type VehicleClass string

const (
	VehicleMotorcycle VehicleClass = "motorcycle"
	VehicleCar        VehicleClass = "car"
	VehicleVan        VehicleClass = "van"
	VehicleTruck      VehicleClass = "truck"
)

// RouteOptions tunes a single optimization request. AvoidTolls is advisory
// only: the optimizer orders stops, it does not compute road paths.
type RouteOptions struct {
	Algorithm       string       `json:"algorithm"`
	VehicleClass    VehicleClass `json:"vehicle_class"`
	AvoidTolls      bool         `json:"avoid_tolls"`
	OptimizeForTime bool         `json:"optimize_for_time"`
}

// OptimizedRoute is the ordered visiting plan for a batch of stops.
// Computed fresh per request, never persisted.
type OptimizedRoute struct {
	StopIDs                  []string `json:"stop_ids"`
	TotalDistanceKm          float64  `json:"total_distance_km"`
	EstimatedDurationMinutes float64  `json:"estimated_duration_minutes"`
}
