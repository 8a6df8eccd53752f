package embed

import "math"

// NormalizeVector scales v to unit length so stored vectors can be
// compared with a plain dot product. A zero vector normalizes to a zero
// vector of the same length. The input is not modified.
func NormalizeVector(v []float32) []float32 {
	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
