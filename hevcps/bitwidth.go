package hevcps

// ceilLog2 returns ceil(log2(n)) for n >= 1, and 0 for n <= 1. It
// centralizes the many inline "computed bit width" expressions the
// original decoder repeats at each of the VPS extension's variable-width
// fields (spec.md section 9, "Source-pattern remediations").
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	bits := 0
	v := n - 1
	for v > 0 {
		bits++
		v >>= 1
	}
	return bits
}
