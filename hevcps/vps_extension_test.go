package hevcps

import "testing"

// TestDecodeVPSExtensionSingleLayer exercises decodeVPSExtension's
// single-layer path: no per-layer dependency fields are coded when
// MaxLayers is 1, but the OLS, rep-format, and direct-dependency-type
// tail sections are still present and must parse.
func TestDecodeVPSExtensionSingleLayer(t *testing.T) {
	t.Parallel()
	vps := &VPS{
		MaxLayers:              1,
		MaxSubLayers:           1,
		BaseLayerInternalFlag:  false,
		BaseLayerAvailableFlag: true,
		NumLayerSets:           1,
	}

	w := &bitWriter{}
	w.writeFlag(false) // splitting_flag
	for i := 0; i < 16; i++ {
		w.writeFlag(false) // scalability_mask_flag[i]
	}
	w.writeFlag(false) // vps_nuh_layer_id_present_flag
	w.writeBits(0, 4)  // vps_view_id_len

	w.writeBits(0, 3) // sub_layers_vps_max_minus1[0]
	w.writeFlag(false) // max_tid_ref_present_flag
	w.writeFlag(false) // all_ref_layers_active_flag

	w.writeUE(0) // vps_num_profile_tier_level_minus1 -> 1 PTL entry
	writePTLCommon(w, 0, false, 1)
	w.writeBits(120, 8) // general_level_idc

	w.writeUE(0) // vps_num_rep_formats_minus1 -> 1 entry
	w.writeBits(64, 16) // pic_width_vps_in_luma_samples
	w.writeBits(64, 16) // pic_height_vps_in_luma_samples
	w.writeFlag(false) // chroma_and_bit_depth_vps_present_flag
	w.writeFlag(false) // conformance_window_vps_flag

	w.writeBits(0, 2)  // direct_dep_type_len_minus2
	w.writeFlag(false) // direct_dependency_all_layers_flag (no pairs to read, MaxLayers=1)
	w.writeFlag(false) // vps_vui_present_flag

	ext, err := decodeVPSExtension(newBitReader(w.bytes()), &Context{}, vps)
	if err != nil {
		t.Fatalf("decodeVPSExtension: %v", err)
	}
	if ext.NumIndependentLayers != 1 {
		t.Errorf("NumIndependentLayers = %d, want 1", ext.NumIndependentLayers)
	}
	if ext.NumProfileTierLevel != 1 {
		t.Errorf("NumProfileTierLevel = %d, want 1", ext.NumProfileTierLevel)
	}
	if got := ext.PTLs[0].General.ProfileIDC; got != 1 {
		t.Errorf("PTLs[0].General.ProfileIDC = %d, want 1", got)
	}
	if got := ext.PTLs[0].General.LevelIDC; got != 120 {
		t.Errorf("PTLs[0].General.LevelIDC = %d, want 120", got)
	}
	if len(ext.RepFormats) != 1 {
		t.Fatalf("RepFormats length = %d, want 1", len(ext.RepFormats))
	}
	if ext.RepFormats[0].PicWidthLumaSamples != 64 || ext.RepFormats[0].PicHeightLumaSamples != 64 {
		t.Errorf("RepFormats[0] = %+v, want 64x64", ext.RepFormats[0])
	}
	if len(ext.OLS) != 1 || len(ext.OLS[0].OutputLayerFlag) != 1 || !ext.OLS[0].OutputLayerFlag[0] {
		t.Errorf("OLS[0].OutputLayerFlag = %+v, want [true]", ext.OLS)
	}
	if ext.VUIPresentFlag {
		t.Error("VUIPresentFlag: got true, want false")
	}
}

func TestDecodeVPSExtensionTruncated(t *testing.T) {
	t.Parallel()
	vps := &VPS{MaxLayers: 1, MaxSubLayers: 1, NumLayerSets: 1}
	_, err := decodeVPSExtension(newBitReader([]byte{0x00}), &Context{}, vps)
	if err == nil {
		t.Fatal("expected truncated error")
	}
}

func TestCeilLog2Plus1(t *testing.T) {
	t.Parallel()
	cases := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
	}
	for _, c := range cases {
		if got := ceilLog2Plus1(c.n); got != c.want {
			t.Errorf("ceilLog2Plus1(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
