package extract

import "math"

// Weighted completeness points per field; confidence is the earned share of
// fullScorePoints capped at 100. The weights feed the 70% review gate, so
// they must stay stable.
const (
	namePoints         = 1.0
	phonePoints        = 1.0
	addressPoints      = 1.5
	servicePoints      = 1.0
	instructionsPoints = 0.5
	fullScorePoints    = 4.0

	minAddressLen = 10
)

// Score derives a 0-100 confidence from field completeness. The model's own
// opinion of its answer is never used.
func Score(f Fields) int {
	points := 0.0
	if f.CustomerName != "" {
		points += namePoints
	}
	if f.CustomerPhone != "" {
		points += phonePoints
	}
	if len(f.LocationAddress) > minAddressLen {
		points += addressPoints
	}
	if f.ServiceType != "" && f.ServiceType != ServiceOther {
		points += servicePoints
	}
	if f.SpecialInstructions != "" {
		points += instructionsPoints
	}
	return int(math.Round(math.Min(100, points/fullScorePoints*100)))
}
