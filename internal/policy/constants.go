package policy

import (
	"math"

	"SerialFilter/internal/geofence"
)

// Fence is the compile-time operating-area polygon, transliterated from
// system_config.h's GEOFENCE_POLYGON macro.
var Fence = geofence.Polygon{
	{X: 48.05550749800078, Y: 11.651234342011845},
	{X: 48.055803409139486, Y: 11.653684004312566},
	{X: 48.05469452629921, Y: 11.654558805494695},
	{X: 48.05404812004936, Y: 11.652732871302717},
}

// Home is the redirect target for out-of-fence navigation commands, matching
// system_config.h's HOME_POSITION exactly: the altitude field is left unset
// (NaN) because only latitude/longitude are meaningful to the rewrite.
var Home = Coordinate{
	Latitude:  48.05502700126609,
	Longitude: 11.652206077452211,
	Altitude:  float32(math.NaN()),
}
