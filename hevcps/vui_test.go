package hevcps

import "testing"

func falsePtr() *bool {
	b := false
	return &b
}

func TestParseVUIMinimal(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeFlag(false) // aspect_ratio_info_present_flag
	w.writeFlag(false) // overscan_info_present_flag
	w.writeFlag(false) // video_signal_type_present_flag
	w.writeFlag(false) // chroma_loc_info_present_flag
	w.writeFlag(false) // neutral_chroma_indication_flag
	w.writeFlag(false) // field_seq_flag
	w.writeFlag(false) // frame_field_info_present_flag
	w.writeFlag(false) // default_display_window_flag
	w.writeFlag(false) // vui_timing_info_present_flag
	w.writeFlag(false) // bitstream_restriction_flag

	ctx := &Context{VUIAlternateHeaderHeuristic: falsePtr()}
	vui, err := parseVUI(newBitReader(w.bytes()), ctx, 1, 0)
	if err != nil {
		t.Fatalf("parseVUI: %v", err)
	}
	if vui.AspectRatioInfoPresentFlag || vui.DefaultDisplayWindowFlag || vui.TimingInfoPresentFlag {
		t.Error("expected all optional VUI blocks absent")
	}
}

func TestParseVUIAspectRatioKnownIdc(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeFlag(true) // aspect_ratio_info_present_flag
	w.writeBits(1, 8) // aspect_ratio_idc = 1 (1:1 square pixels)
	for i := 0; i < 9; i++ {
		w.writeFlag(false)
	}

	ctx := &Context{VUIAlternateHeaderHeuristic: falsePtr()}
	vui, err := parseVUI(newBitReader(w.bytes()), ctx, 1, 0)
	if err != nil {
		t.Fatalf("parseVUI: %v", err)
	}
	if vui.SarWidth != 1 || vui.SarHeight != 1 {
		t.Errorf("SAR: got %d/%d, want 1/1", vui.SarWidth, vui.SarHeight)
	}
}

func TestParseVUIAspectRatioExtendedSAR(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeFlag(true)   // aspect_ratio_info_present_flag
	w.writeBits(255, 8) // aspect_ratio_idc = EXTENDED_SAR
	w.writeBits(1920, 16)
	w.writeBits(1080, 16)
	for i := 0; i < 9; i++ {
		w.writeFlag(false)
	}

	ctx := &Context{VUIAlternateHeaderHeuristic: falsePtr()}
	vui, err := parseVUI(newBitReader(w.bytes()), ctx, 1, 0)
	if err != nil {
		t.Fatalf("parseVUI: %v", err)
	}
	if vui.SarWidth != 1920 || vui.SarHeight != 1080 {
		t.Errorf("SAR: got %d/%d, want 1920/1080", vui.SarWidth, vui.SarHeight)
	}
}

func TestParseVUIVideoSignalTypeAndDefaultDisplayWindow(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeFlag(false) // aspect_ratio_info_present_flag
	w.writeFlag(false) // overscan_info_present_flag
	w.writeFlag(true)  // video_signal_type_present_flag
	w.writeBits(5, 3)  // video_format
	w.writeFlag(true)  // video_full_range_flag
	w.writeFlag(true)  // colour_description_present_flag
	w.writeBits(1, 8)  // colour_primaries
	w.writeBits(1, 8)  // transfer_characteristics
	w.writeBits(1, 8)  // matrix_coeffs
	w.writeFlag(false) // chroma_loc_info_present_flag
	w.writeFlag(false) // neutral_chroma_indication_flag
	w.writeFlag(false) // field_seq_flag
	w.writeFlag(false) // frame_field_info_present_flag
	w.writeFlag(true)  // default_display_window_flag
	w.writeUE(2)        // def_disp_win_left_offset
	w.writeUE(2)        // def_disp_win_right_offset
	w.writeUE(1)        // def_disp_win_top_offset
	w.writeUE(1)        // def_disp_win_bottom_offset
	w.writeFlag(false) // vui_timing_info_present_flag
	w.writeFlag(false) // bitstream_restriction_flag

	ctx := &Context{VUIAlternateHeaderHeuristic: falsePtr()}
	vui, err := parseVUI(newBitReader(w.bytes()), ctx, 1, 0)
	if err != nil {
		t.Fatalf("parseVUI: %v", err)
	}
	if !vui.VideoFullRangeFlag {
		t.Error("expected VideoFullRangeFlag set")
	}
	if vui.MatrixCoefficients != 1 {
		t.Errorf("MatrixCoefficients: got %d, want 1", vui.MatrixCoefficients)
	}
	// chromaFormatIdc=1 (4:2:0): horizMult=2, vertMult=2.
	if vui.DefaultDisplayWindow.LeftOffset != 4 || vui.DefaultDisplayWindow.TopOffset != 2 {
		t.Errorf("DefaultDisplayWindow: got %+v", vui.DefaultDisplayWindow)
	}
}

func TestParseVUIBitstreamRestriction(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	for i := 0; i < 9; i++ {
		w.writeFlag(false)
	}
	w.writeFlag(true) // bitstream_restriction_flag
	w.writeFlag(true) // tiles_fixed_structure_flag
	w.writeFlag(false)
	w.writeFlag(true)
	w.writeUE(3) // min_spatial_segmentation_idc
	w.writeUE(1) // max_bytes_per_pic_denom
	w.writeUE(1) // max_bits_per_min_cu_denom
	w.writeUE(15) // log2_max_mv_length_horizontal
	w.writeUE(15) // log2_max_mv_length_vertical

	ctx := &Context{VUIAlternateHeaderHeuristic: falsePtr()}
	vui, err := parseVUI(newBitReader(w.bytes()), ctx, 1, 0)
	if err != nil {
		t.Fatalf("parseVUI: %v", err)
	}
	if !vui.BitstreamRestriction.TilesFixedStructureFlag {
		t.Error("expected TilesFixedStructureFlag set")
	}
	if vui.BitstreamRestriction.MinSpatialSegmentationIdc != 3 {
		t.Errorf("MinSpatialSegmentationIdc: got %d, want 3", vui.BitstreamRestriction.MinSpatialSegmentationIdc)
	}
}
