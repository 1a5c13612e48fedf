package hevcps

// PTLCommon is the general or a per-sub-layer profile/tier/level block
// (spec.md section 3.1).
type PTLCommon struct {
	ProfileSpace             uint8
	TierFlag                 bool
	ProfileIDC                uint8
	ProfileCompatibilityFlag [32]bool
	ProgressiveSourceFlag    bool
	InterlacedSourceFlag     bool
	NonPackedConstraintFlag  bool
	FrameOnlyConstraintFlag  bool
	LevelIDC                 uint8
}

// PTL is a full Profile-Tier-Level structure: one general block plus up to
// seven per-sub-layer blocks, each independently gated by presence flags.
// Absent sub-layer entries retain their zero value, per spec.md section
// 3.1's stated invariant.
type PTL struct {
	General PTLCommon

	SubLayerProfilePresentFlag []bool
	SubLayerLevelPresentFlag   []bool
	SubLayer                   []PTLCommon
}

// maxSubLayerPTLEntries is the fixed number of sub-layer presence-flag
// slots the bitstream always reserves room for (padded to 8 with
// reserved_zero_2bits when fewer sub-layers are present).
const maxSubLayerPTLEntries = 8

// decodeProfileTierLevelCommon reads one PTLCommon block: 2+1+5 bits,
// 32 compatibility flags, 4 source/constraint flags, a reserved-zero
// 44-bit block. It does not read level_idc; callers read that separately
// because its presence is gated differently for the general block versus
// sub-layer blocks.
func decodeProfileTierLevelCommon(r BitSource, elem string) (PTLCommon, error) {
	var c PTLCommon
	if r.BitsLeft() < 2+1+5+32+4+44 {
		return c, truncated(elem, errBitsExhausted)
	}
	v, _ := r.ReadBits(8)
	c.ProfileSpace = uint8(v >> 6)
	c.TierFlag = (v>>5)&1 == 1
	c.ProfileIDC = uint8(v & 0x1F)

	for i := 0; i < 32; i++ {
		b, _ := r.ReadBit()
		c.ProfileCompatibilityFlag[i] = b == 1
	}

	b, _ := r.ReadBit()
	c.ProgressiveSourceFlag = b == 1
	b, _ = r.ReadBit()
	c.InterlacedSourceFlag = b == 1
	b, _ = r.ReadBit()
	c.NonPackedConstraintFlag = b == 1
	b, _ = r.ReadBit()
	c.FrameOnlyConstraintFlag = b == 1

	if _, err := r.ReadBits(32); err != nil {
		return c, truncated(elem, err)
	}
	if _, err := r.ReadBits(12); err != nil {
		return c, truncated(elem, err)
	}
	return c, nil
}

// parsePTL implements spec.md section 4.1's parse_ptl: the general block
// (when profilePresentFlag), the general level_idc, then maxSubLayers-1
// per-sub-layer presence flags padded to 8 entries, then the gated
// per-sub-layer blocks.
func parsePTL(r BitSource, maxSubLayers int, profilePresentFlag bool) (PTL, error) {
	var ptl PTL

	if profilePresentFlag {
		c, err := decodeProfileTierLevelCommon(r, "general_profile_tier_level")
		if err != nil {
			return ptl, err
		}
		ptl.General = c
	}

	needed := 8
	if maxSubLayers-1 > 0 {
		needed += 16
	}
	if r.BitsLeft() < needed {
		return ptl, truncated("ptl", errBitsExhausted)
	}
	lvl, _ := r.ReadBits(8)
	ptl.General.LevelIDC = uint8(lvl)

	n := maxSubLayers - 1
	if n < 0 {
		n = 0
	}
	ptl.SubLayerProfilePresentFlag = make([]bool, n)
	ptl.SubLayerLevelPresentFlag = make([]bool, n)
	ptl.SubLayer = make([]PTLCommon, n)

	for i := 0; i < n; i++ {
		b, _ := r.ReadBit()
		ptl.SubLayerProfilePresentFlag[i] = b == 1
		b, _ = r.ReadBit()
		ptl.SubLayerLevelPresentFlag[i] = b == 1
	}

	if n > 0 {
		for i := n; i < maxSubLayerPTLEntries; i++ {
			if _, err := r.ReadBits(2); err != nil {
				return ptl, truncated("ptl_reserved_zero_2bits", err)
			}
		}
	}

	for i := 0; i < n; i++ {
		if ptl.SubLayerProfilePresentFlag[i] {
			c, err := decodeProfileTierLevelCommon(r, "sub_layer_profile_tier_level")
			if err != nil {
				return ptl, err
			}
			ptl.SubLayer[i] = c
		}
		if ptl.SubLayerLevelPresentFlag[i] {
			if r.BitsLeft() < 8 {
				return ptl, truncated("sub_layer_level_idc", errBitsExhausted)
			}
			lvl, _ := r.ReadBits(8)
			ptl.SubLayer[i].LevelIDC = uint8(lvl)
		}
	}

	return ptl, nil
}
