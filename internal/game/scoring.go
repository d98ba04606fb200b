package game

import "math"

// ScoreFunc maps a city's population to points. Any curve must be monotonic:
// a larger city is never worth less than a smaller one.
type ScoreFunc func(population int) int

// LogCurve is the default curve: roughly 100 points per order of magnitude,
// so a metropolis doesn't drown out every town. Zero population scores zero.
func LogCurve(population int) int {
	if population <= 0 {
		return 0
	}
	return int(math.Round(100 * math.Log10(float64(population)+1)))
}

// LinearCurve awards population/1000: raw population scoring, scaled down so
// totals stay readable.
func LinearCurve(population int) int {
	if population < 0 {
		return 0
	}
	return population / 1000
}

// CurveByName resolves a configured curve name, falling back to LogCurve.
func CurveByName(name string) ScoreFunc {
	if name == "linear" {
		return LinearCurve
	}
	return LogCurve
}
