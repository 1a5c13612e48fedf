package hevcps

import "golang.org/x/exp/slices"

// HEVCMaxRefs is HEVC_MAX_REFS from the ITU-T H.265 / original decoder:
// the maximum number of reference pictures a short-term RPS may name.
const HEVCMaxRefs = 16

// ShortTermRPS is the semantic container from spec.md section 3.3: an
// ordered list of delta_poc integers paired with used_by_curr_pic bits,
// sorted ascending by delta_poc, with NumNegativePics entries at the
// front being negative.
type ShortTermRPS struct {
	DeltaPoc        []int32
	UsedByCurrPic   []bool
	NumNegativePics int
}

func (r *ShortTermRPS) numPositivePics() int {
	return len(r.DeltaPoc) - r.NumNegativePics
}

type rpsEntry struct {
	deltaPoc int32
	used     bool
}

// finalizeRPS sorts entries ascending by delta_poc and counts the
// negative prefix, per spec.md section 3.3's stated post-construction
// invariant (property 1 in section 8) and the S6 scenario. This applies
// uniformly to both the inter-RPS-predicted and directly-coded branches,
// which is a deliberate simplification over the original decoder: the
// original only fully sorts (then half-flips) the inter-predicted branch
// and relies on the directly-coded branch's cumulative-delta encoding to
// already land in its own (different) convention. Re-deriving both
// branches through one sort keeps the invariant literally true for every
// RPS regardless of which branch produced it.
func finalizeRPS(entries []rpsEntry) ShortTermRPS {
	slices.SortFunc(entries, func(a, b rpsEntry) int {
		switch {
		case a.deltaPoc < b.deltaPoc:
			return -1
		case a.deltaPoc > b.deltaPoc:
			return 1
		default:
			return 0
		}
	})

	rps := ShortTermRPS{
		DeltaPoc:      make([]int32, len(entries)),
		UsedByCurrPic: make([]bool, len(entries)),
	}
	for i, e := range entries {
		rps.DeltaPoc[i] = e.deltaPoc
		rps.UsedByCurrPic[i] = e.used
		if e.deltaPoc < 0 {
			rps.NumNegativePics++
		}
	}
	return rps
}

// parseShortTermRPS implements spec.md section 4.1's parse_short_term_rps.
// rpsIndex is the index of the RPS being parsed among the sps/slice-header
// rps list; priorRPS holds every previously parsed RPS in the same list
// (needed for inter-RPS prediction); isSliceHeader selects whether
// delta_idx_minus1 is present (slice header) or implied to be 0 (inside an
// SPS's short_term_rps list, where prediction can only reference the
// immediately preceding entry).
func parseShortTermRPS(r BitSource, rpsIndex int, numShortTermRPS int, priorRPS []ShortTermRPS, isSliceHeader bool) (ShortTermRPS, error) {
	var interPred bool
	if rpsIndex != 0 {
		b, err := r.ReadBit()
		if err != nil {
			return ShortTermRPS{}, truncated("inter_ref_pic_set_prediction_flag", err)
		}
		interPred = b == 1
	}

	if interPred {
		deltaIdx := 1
		if isSliceHeader {
			v, err := r.ReadUE()
			if err != nil {
				return ShortTermRPS{}, truncated("delta_idx_minus1", err)
			}
			deltaIdx = int(v) + 1
			if deltaIdx > numShortTermRPS {
				return ShortTermRPS{}, invalid("delta_idx_minus1", "delta_idx %d exceeds num_short_term_rps %d", deltaIdx, numShortTermRPS)
			}
		}
		refIdx := rpsIndex - deltaIdx
		if refIdx < 0 || refIdx >= len(priorRPS) {
			return ShortTermRPS{}, invalid("delta_idx_minus1", "inter-RPS prediction references non-existent RPS %d", refIdx)
		}
		ref := priorRPS[refIdx]

		signBit, err := r.ReadBit()
		if err != nil {
			return ShortTermRPS{}, truncated("delta_rps_sign", err)
		}
		absV, err := r.ReadUE()
		if err != nil {
			return ShortTermRPS{}, truncated("abs_delta_rps_minus1", err)
		}
		absDeltaRPS := int(absV) + 1
		if absDeltaRPS < 1 || absDeltaRPS > 32768 {
			return ShortTermRPS{}, invalid("abs_delta_rps_minus1", "abs_delta_rps %d out of [1,32768]", absDeltaRPS)
		}
		deltaRPS := absDeltaRPS
		if signBit == 1 {
			deltaRPS = -deltaRPS
		}

		numDeltaPocsRef := len(ref.DeltaPoc)
		var entries []rpsEntry
		for i := 0; i <= numDeltaPocsRef; i++ {
			usedBit, err := r.ReadBit()
			if err != nil {
				return ShortTermRPS{}, truncated("used_by_curr_pic_flag", err)
			}
			used := usedBit == 1
			useDelta := used
			if !used {
				b, err := r.ReadBit()
				if err != nil {
					return ShortTermRPS{}, truncated("use_delta_flag", err)
				}
				useDelta = b == 1
			}
			if used || useDelta {
				var dp int32
				if i < numDeltaPocsRef {
					dp = int32(deltaRPS) + ref.DeltaPoc[i]
				} else {
					dp = int32(deltaRPS)
				}
				entries = append(entries, rpsEntry{deltaPoc: dp, used: used})
			}
		}
		return finalizeRPS(entries), nil
	}

	numNeg, err := r.ReadUE()
	if err != nil {
		return ShortTermRPS{}, truncated("num_negative_pics", err)
	}
	numPos, err := r.ReadUE()
	if err != nil {
		return ShortTermRPS{}, truncated("num_positive_pics", err)
	}
	if int(numNeg)+int(numPos) >= HEVCMaxRefs {
		return ShortTermRPS{}, invalid("num_negative_pics", "num_negative_pics(%d)+num_positive_pics(%d) exceeds HEVC_MAX_REFS", numNeg, numPos)
	}

	entries := make([]rpsEntry, 0, int(numNeg)+int(numPos))
	prev := int32(0)
	for i := uint32(0); i < numNeg; i++ {
		d, err := r.ReadUE()
		if err != nil {
			return ShortTermRPS{}, truncated("delta_poc_s0_minus1", err)
		}
		prev -= int32(d) + 1
		usedBit, err := r.ReadBit()
		if err != nil {
			return ShortTermRPS{}, truncated("used_by_curr_pic_s0_flag", err)
		}
		entries = append(entries, rpsEntry{deltaPoc: prev, used: usedBit == 1})
	}
	prev = 0
	for i := uint32(0); i < numPos; i++ {
		d, err := r.ReadUE()
		if err != nil {
			return ShortTermRPS{}, truncated("delta_poc_s1_minus1", err)
		}
		prev += int32(d) + 1
		usedBit, err := r.ReadBit()
		if err != nil {
			return ShortTermRPS{}, truncated("used_by_curr_pic_s1_flag", err)
		}
		entries = append(entries, rpsEntry{deltaPoc: prev, used: usedBit == 1})
	}
	return finalizeRPS(entries), nil
}
