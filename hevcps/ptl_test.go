package hevcps

import "testing"

// writePTLCommon writes one general/sub-layer profile-tier-level block in
// the exact field order decodeProfileTierLevelCommon expects.
func writePTLCommon(w *bitWriter, profileSpace uint32, tier bool, profileIDC uint32) {
	w.writeBits(profileSpace, 2)
	w.writeFlag(tier)
	w.writeBits(profileIDC, 5)
	for i := 0; i < 32; i++ {
		w.writeFlag(i == 1) // profile_compatibility_flag[1] set, rest clear
	}
	w.writeFlag(true)  // progressive_source_flag
	w.writeFlag(false) // interlaced_source_flag
	w.writeFlag(false) // non_packed_constraint_flag
	w.writeFlag(true)  // frame_only_constraint_flag
	w.writeBits(0, 32)
	w.writeBits(0, 12)
}

func TestParsePTLSingleSubLayer(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	writePTLCommon(w, 0, true, 1)
	w.writeBits(93, 8) // general_level_idc

	ptl, err := parsePTL(newBitReader(w.bytes()), 1, true)
	if err != nil {
		t.Fatalf("parsePTL: %v", err)
	}
	if ptl.General.ProfileIDC != 1 {
		t.Errorf("ProfileIDC: got %d, want 1", ptl.General.ProfileIDC)
	}
	if !ptl.General.TierFlag {
		t.Error("expected TierFlag set")
	}
	if !ptl.General.ProfileCompatibilityFlag[1] {
		t.Error("expected ProfileCompatibilityFlag[1] set")
	}
	if ptl.General.ProfileCompatibilityFlag[0] {
		t.Error("expected ProfileCompatibilityFlag[0] clear")
	}
	if ptl.General.LevelIDC != 93 {
		t.Errorf("LevelIDC: got %d, want 93", ptl.General.LevelIDC)
	}
	if len(ptl.SubLayer) != 0 {
		t.Errorf("expected no sub-layer entries, got %d", len(ptl.SubLayer))
	}
}

func TestParsePTLWithSubLayers(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	writePTLCommon(w, 1, false, 2)
	w.writeBits(120, 8) // general_level_idc

	// maxSubLayers = 3 -> n = 2 presence-flag pairs, padded to 8 entries.
	w.writeFlag(true)  // sub_layer_profile_present_flag[0]
	w.writeFlag(true)  // sub_layer_level_present_flag[0]
	w.writeFlag(false) // sub_layer_profile_present_flag[1]
	w.writeFlag(true)  // sub_layer_level_present_flag[1]
	for i := 2; i < 8; i++ {
		w.writeBits(0, 2) // reserved_zero_2bits padding
	}
	writePTLCommon(w, 1, false, 2) // sub-layer 0 profile block
	w.writeBits(110, 8)            // sub-layer 0 level_idc
	w.writeBits(95, 8)             // sub-layer 1 level_idc (no profile block)

	ptl, err := parsePTL(newBitReader(w.bytes()), 3, true)
	if err != nil {
		t.Fatalf("parsePTL: %v", err)
	}
	if len(ptl.SubLayer) != 2 {
		t.Fatalf("expected 2 sub-layer entries, got %d", len(ptl.SubLayer))
	}
	if !ptl.SubLayerProfilePresentFlag[0] || !ptl.SubLayerLevelPresentFlag[0] {
		t.Error("expected sub-layer 0 profile and level present")
	}
	if ptl.SubLayerProfilePresentFlag[1] {
		t.Error("expected sub-layer 1 profile absent")
	}
	if ptl.SubLayer[0].LevelIDC != 110 {
		t.Errorf("sub-layer 0 LevelIDC: got %d, want 110", ptl.SubLayer[0].LevelIDC)
	}
	if ptl.SubLayer[1].LevelIDC != 95 {
		t.Errorf("sub-layer 1 LevelIDC: got %d, want 95", ptl.SubLayer[1].LevelIDC)
	}
	if ptl.SubLayer[1].ProfileIDC != 0 {
		t.Errorf("sub-layer 1 with absent profile block should keep zero value, got %d", ptl.SubLayer[1].ProfileIDC)
	}
}

func TestParsePTLTruncated(t *testing.T) {
	t.Parallel()
	_, err := parsePTL(newBitReader([]byte{0x00, 0x00}), 1, true)
	if err == nil {
		t.Fatal("expected truncated error for short buffer")
	}
}
