package hevcps

// ScalingList holds the four size classes (4x4, 8x8, 16x16, 32x32) of
// quantization-matrix coefficients, per spec.md section 3.1 / 4.1. Index 0
// is size class 4x4 (16 coefficients per matrix, no DC term), index 1 is
// 8x8, index 2 is 16x16, index 3 is 32x32; 16x16 and 32x32 additionally
// carry a DC coefficient (sl.DC[sizeID-2][matrixID]).
type ScalingList struct {
	Coeffs [4][6][]uint8
	DC     [2][6]int32
}

// defaultScalingListIntra and defaultScalingListInter are the HEVC-defined
// default 8x8 matrices (used to seed the 16x16/32x32 defaults too),
// reproduced from hevc_ps.c's static tables of the same name.
var defaultScalingListIntra = [64]uint8{
	16, 16, 16, 16, 17, 18, 21, 24,
	16, 16, 16, 16, 17, 19, 22, 25,
	16, 16, 17, 18, 20, 22, 25, 29,
	16, 16, 18, 21, 24, 27, 31, 36,
	17, 17, 20, 24, 30, 35, 41, 47,
	18, 19, 22, 27, 35, 44, 54, 65,
	21, 22, 25, 31, 41, 54, 70, 88,
	24, 25, 29, 36, 47, 65, 88, 115,
}

var defaultScalingListInter = [64]uint8{
	16, 16, 16, 16, 17, 18, 20, 24,
	16, 16, 16, 17, 18, 20, 24, 25,
	16, 16, 17, 18, 20, 24, 25, 28,
	16, 17, 18, 20, 24, 25, 28, 33,
	17, 18, 20, 24, 25, 28, 33, 41,
	18, 20, 24, 25, 28, 33, 41, 54,
	20, 24, 25, 28, 33, 41, 54, 71,
	24, 25, 28, 33, 41, 54, 71, 91,
}

// diagScanOrder returns the up-right diagonal scan order for a size x size
// block (ITU-T H.265 clause 6.5.3), generated rather than hardcoded as a
// table — the same coefficient ordering hevc_ps.c's precomputed
// ff_hevc_diag_scan4x4/8x8 tables encode.
func diagScanOrder(size int) (xs, ys []int) {
	xs = make([]int, 0, size*size)
	ys = make([]int, 0, size*size)
	x, y := 0, 0
	for len(xs) < size*size {
		for y >= 0 {
			if x < size && y < size {
				xs = append(xs, x)
				ys = append(ys, y)
			}
			y--
			x++
		}
		y = x
		x = 0
	}
	return xs, ys
}

var diagScan4x4X, diagScan4x4Y = diagScanOrder(4)
var diagScan8x8X, diagScan8x8Y = diagScanOrder(8)

// newDefaultScalingList builds a ScalingList seeded with the HEVC default
// matrices (set_default_scaling_list_data in hevc_ps.c): flat 16 for 4x4,
// the intra/inter 8x8 default tables reused for 8x8/16x16/32x32.
func newDefaultScalingList() *ScalingList {
	sl := &ScalingList{}
	for m := 0; m < 6; m++ {
		sl.Coeffs[0][m] = make([]uint8, 16)
		for i := range sl.Coeffs[0][m] {
			sl.Coeffs[0][m][i] = 16
		}
		sl.DC[0][m] = 16
		sl.DC[1][m] = 16
	}
	for sizeID := 1; sizeID <= 3; sizeID++ {
		for m := 0; m < 6; m++ {
			src := defaultScalingListIntra
			if m >= 3 {
				src = defaultScalingListInter
			}
			cp := src
			sl.Coeffs[sizeID][m] = cp[:]
		}
	}
	return sl
}

// parseScalingListData implements spec.md section 4.1's parse_scaling_list:
// for each of the four size classes and (for size class 3, every third)
// matrix id, either copies from a prior matrix by delta (invariant: delta
// <= matrix_id), or reads a DC-plus-predicted-residual form. chromaFormatIdc
// is consulted to copy size-class-3 chroma matrices from class 2 at 4:4:4.
func parseScalingListData(r BitSource, chromaFormatIdc uint32) (*ScalingList, error) {
	sl := newDefaultScalingList()

	for sizeID := 0; sizeID < 4; sizeID++ {
		step := 1
		if sizeID == 3 {
			step = 3
		}
		for matrixID := 0; matrixID < 6; matrixID += step {
			b, err := r.ReadBit()
			if err != nil {
				return nil, truncated("scaling_list_pred_mode_flag", err)
			}
			predMode := b == 1

			if !predMode {
				delta, err := r.ReadUE()
				if err != nil {
					return nil, truncated("scaling_list_pred_matrix_id_delta", err)
				}
				if delta != 0 {
					refDelta := int(delta) * step
					if refDelta > matrixID {
						return nil, invalid("scaling_list_pred_matrix_id_delta", "delta %d exceeds matrix_id %d", delta, matrixID)
					}
					src := matrixID - refDelta
					sl.Coeffs[sizeID][matrixID] = append([]uint8(nil), sl.Coeffs[sizeID][src]...)
					if sizeID > 1 {
						sl.DC[sizeID-2][matrixID] = sl.DC[sizeID-2][src]
					}
				}
				continue
			}

			nextCoef := int32(8)
			coefNum := 64
			if v := 1 << uint(4+(sizeID<<1)); v < coefNum {
				coefNum = v
			}
			if sizeID > 1 {
				d, err := r.ReadSE()
				if err != nil {
					return nil, truncated("scaling_list_dc_coef_minus8", err)
				}
				nextCoef = d + 8
				sl.DC[sizeID-2][matrixID] = nextCoef
			}

			xs, ys := diagScan4x4X, diagScan4x4Y
			rowStride := 4
			if sizeID > 0 {
				xs, ys = diagScan8x8X, diagScan8x8Y
				rowStride = 8
			}
			coeffs := make([]uint8, rowStride*rowStride)
			for i := 0; i < coefNum; i++ {
				pos := rowStride*ys[i] + xs[i]
				delta, err := r.ReadSE()
				if err != nil {
					return nil, truncated("scaling_list_delta_coef", err)
				}
				nextCoef = ((nextCoef + delta + 256) % 256)
				coeffs[pos] = uint8(nextCoef)
			}
			sl.Coeffs[sizeID][matrixID] = coeffs
		}
	}

	if chromaFormatIdc == 3 {
		for _, m := range []int{1, 2, 4, 5} {
			sl.Coeffs[3][m] = append([]uint8(nil), sl.Coeffs[2][m]...)
		}
		sl.DC[1][1] = sl.DC[0][1]
		sl.DC[1][2] = sl.DC[0][2]
		sl.DC[1][4] = sl.DC[0][4]
		sl.DC[1][5] = sl.DC[0][5]
	}

	return sl, nil
}
