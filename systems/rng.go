package systems

// Salts for the per-cell random draws. Each use within a tick takes its
// own salt so draws are independent.
const (
	SaltSegregationPosX uint32 = 1 + iota
	SaltSegregationNegX
	SaltSegregationPosY
	SaltSegregationNegY
	SaltMutateR
	SaltMutateMu
	SaltMutateSigma
	SaltMutateAgg
	SaltMutateRate
)

// pcgHash is the PCG-RXS-M-XS output permutation applied to a single
// 32-bit word. All arithmetic wraps.
func pcgHash(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// Rand01 returns a uniform value in [0, 1) that depends only on the cell
// index, frame, run seed and salt. Cell processing order cannot change it.
func Rand01(index int, frame, seed, salt uint32) float32 {
	h := pcgHash(uint32(index)*1973 + frame*9277 + seed*26699 + salt)
	return float32(h>>8) / (1 << 24)
}

// symmetric maps a [0,1) draw to [-1,1).
func symmetric(u float32) float32 {
	return 2*u - 1
}
