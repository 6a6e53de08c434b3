package account

// Counter identifies one loyalty point counter on the account service.
// Field doubles as the /add/ path segment and the JSON key the service
// echoes the updated value under.
type Counter struct {
	Field  string
	Target int
}

// The three counters the service tracks, with their collection targets.
var (
	HealthMeasurement = Counter{Field: "healthMeasurement", Target: 15}
	HealthEducation   = Counter{Field: "healthEducation", Target: 2}
	Exercise          = Counter{Field: "exercise", Target: 6}
)
