package systems

import "math"

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	// NaN fails every comparison and lands on minVal
	if !(v >= minVal) {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// wrap returns a modulo m in [0, m).
func wrap(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// expf is exp over float32.
func expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

// sqrtf is sqrt over float32.
func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// gaussian is exp(-d²/(2·s²)).
func gaussian(d, s float32) float32 {
	return expf(-d * d / (2 * s * s))
}
