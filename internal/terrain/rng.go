package terrain

// Partition cell hashing and the per-cell generator. Both are fixed
// formulas: changing a constant changes every world ever generated.

const (
	hashPrimeX  = 374761393
	hashPrimeY  = 668265263
	hashMix     = 1274126177
	lcgMul      = 9301
	lcgInc      = 49297
	lcgModulus  = 233280
	lcgModulusF = float64(lcgModulus)
)

// CellHash mixes a partition cell coordinate with the world seed.
// Arithmetic wraps at 32 bits.
func CellHash(gx, gy int, seed int64) uint32 {
	h := uint32(seed) + uint32(gx)*hashPrimeX + uint32(gy)*hashPrimeY
	h = (h ^ (h >> 13)) * hashMix
	return h ^ (h >> 16)
}

// lcg is the linear congruential generator seeded per cell.
type lcg struct {
	s uint64
}

func newLCG(seed uint32) *lcg {
	return &lcg{s: uint64(seed)}
}

// Float returns the next value in [0,1).
func (r *lcg) Float() float64 {
	r.s = (r.s*lcgMul + lcgInc) % lcgModulus
	return float64(r.s) / lcgModulusF
}
