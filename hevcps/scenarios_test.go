package hevcps

import "testing"

// TestScenarioS1VPSHeadlineFields builds a VPS matching spec.md section 8's
// S1 headline values (vps_id=0, max_layers=1, max_sub_layers=1, tier=0,
// profile_idc=1, level_idc=120) and checks decodeVPS reproduces them.
func TestScenarioS1VPSHeadlineFields(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeBits(0, 4) // vps_video_parameter_set_id
	w.writeFlag(true)
	w.writeFlag(true)
	w.writeBits(0, 6) // vps_max_layers_minus1 -> 1
	w.writeBits(0, 3) // vps_max_sub_layers_minus1 -> 1
	w.writeFlag(true)
	w.writeBits(0xffff, 16)
	writePTLCommon(w, 0, false, 1) // profile_space=0, tier=0, profile_idc=1
	w.writeBits(120, 8)            // general_level_idc
	w.writeFlag(true)
	w.writeUE(0)
	w.writeUE(0)
	w.writeUE(0)
	w.writeBits(0, 6)
	w.writeUE(0)
	w.writeFlag(false)
	w.writeFlag(false)

	vps, err := decodeVPS(newBitReader(w.bytes()), &Context{})
	if err != nil {
		t.Fatalf("decodeVPS: %v", err)
	}
	if vps.ID != 0 {
		t.Errorf("vps_id: got %d, want 0", vps.ID)
	}
	if vps.MaxLayers != 1 {
		t.Errorf("max_layers: got %d, want 1", vps.MaxLayers)
	}
	if vps.MaxSubLayers != 1 {
		t.Errorf("max_sub_layers: got %d, want 1", vps.MaxSubLayers)
	}
	if vps.PTL.General.TierFlag {
		t.Error("tier: got 1, want 0")
	}
	if vps.PTL.General.ProfileIDC != 1 {
		t.Errorf("profile_idc: got %d, want 1", vps.PTL.General.ProfileIDC)
	}
	if vps.PTL.General.LevelIDC != 120 {
		t.Errorf("level_idc: got %d, want 120", vps.PTL.General.LevelIDC)
	}
}

// TestScenarioS1RegistryInstallsAtSlotZero confirms an S1-shaped VPS
// installs at VPS slot 0 through the Registry entry point.
func TestScenarioS1RegistryInstallsAtSlotZero(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	if _, err := r.DecodeVPS(rawVPSForScenarios(0), &Context{}); err != nil {
		t.Fatalf("DecodeVPS: %v", err)
	}
	if _, ok := r.LookupVPS(0); !ok {
		t.Fatal("expected S1 payload installed at VPS slot 0")
	}
}

// TestScenarioS2SPSMissingVPSIsInvalidData matches spec.md section 8's S2:
// an SPS referencing a non-existent VPS id must fail with InvalidData and
// leave the registry unchanged.
func TestScenarioS2SPSMissingVPSIsInvalidData(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	w := &bitWriter{}
	writeMinimalSPS(w, 3, 0) // vps_id=3, never installed

	_, err := r.DecodeSPS(w.bytes(), &Context{}, true, 0)
	if err == nil {
		t.Fatal("expected error for SPS referencing non-existent VPS")
	}
	var perr *Error
	if !asError(err, &perr) || perr.Kind != KindInvalidData {
		t.Errorf("expected KindInvalidData, got %v", err)
	}
	if _, ok := r.LookupSPS(0); ok {
		t.Error("registry must remain unchanged after a failed SPS decode")
	}
}

// TestScenarioS3DuplicateSPSIsNoOp matches spec.md section 8's S3: two
// identical SPS NALs in sequence install once; the second call returns the
// same pointer and does not touch the slot.
func TestScenarioS3DuplicateSPSIsNoOp(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	if _, err := r.DecodeVPS(rawVPSForScenarios(0), &Context{}); err != nil {
		t.Fatalf("DecodeVPS: %v", err)
	}
	raw := rawSPSForScenarios(0, 0)

	first, err := r.DecodeSPS(raw, &Context{}, true, 0)
	if err != nil {
		t.Fatalf("DecodeSPS (first): %v", err)
	}
	second, err := r.DecodeSPS(append([]byte(nil), raw...), &Context{}, true, 0)
	if err != nil {
		t.Fatalf("DecodeSPS (second): %v", err)
	}
	if first != second {
		t.Error("expected the second identical SPS submission to be a no-op returning the same pointer")
	}
}

// TestScenarioS4UniformTileSplit matches spec.md section 8's S4: a 3x2
// uniform tile grid over a 6x4 CTB picture.
func TestScenarioS4UniformTileSplit(t *testing.T) {
	t.Parallel()
	sps := &SPS{CtbWidth: 6, CtbHeight: 4, Log2CtbSize: 6, Log2MinTbSize: 4, TbMask: 3}
	pps := &PPS{NumTileColumns: 3, NumTileRows: 2, UniformSpacing: true}

	g, err := buildTileGeometry(pps, sps)
	if err != nil {
		t.Fatalf("buildTileGeometry: %v", err)
	}
	wantColBD := []uint32{0, 2, 4, 6}
	for i, v := range wantColBD {
		if g.ColBD[i] != v {
			t.Errorf("ColBD[%d] = %d, want %d", i, g.ColBD[i], v)
		}
	}
	wantRowBD := []uint32{0, 2, 4}
	for i, v := range wantRowBD {
		if g.RowBD[i] != v {
			t.Errorf("RowBD[%d] = %d, want %d", i, g.RowBD[i], v)
		}
	}
	wantTilePosRS := []uint32{0, 2, 4, 12, 14, 16}
	if len(g.TilePosRS) != len(wantTilePosRS) {
		t.Fatalf("TilePosRS length: got %d, want %d", len(g.TilePosRS), len(wantTilePosRS))
	}
	for i, v := range wantTilePosRS {
		if g.TilePosRS[i] != v {
			t.Errorf("TilePosRS[%d] = %d, want %d", i, g.TilePosRS[i], v)
		}
	}
}

// TestScenarioS5NonUniformColumnWidthOverflow matches spec.md section 8's
// S5: explicit column widths summing to >= ctb_width must fail with
// InvalidData.
func TestScenarioS5NonUniformColumnWidthOverflow(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeUE(0) // pps_id
	w.writeUE(0) // sps_id
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeBits(0, 3)
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeUE(0)
	w.writeUE(0)
	w.writeSE(0)
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeSE(0)
	w.writeSE(0)
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeFlag(false) // transquant_bypass_enabled_flag
	w.writeFlag(true)  // tiles_enabled_flag
	w.writeFlag(false) // entropy_coding_sync_enabled_flag

	w.writeUE(2) // num_tile_columns_minus1 -> 3
	w.writeUE(0) // num_tile_rows_minus1 -> 1
	w.writeFlag(false) // uniform_spacing_flag = false
	w.writeUE(2)        // column_width_minus1[0] -> 3
	w.writeUE(3)        // column_width_minus1[1] -> 4, sum=7 >= ctb_width(6)
	w.writeFlag(true)  // loop_filter_across_tiles_enabled_flag

	w.writeFlag(false)
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeFlag(false)
	w.writeUE(0)
	w.writeFlag(false)
	w.writeFlag(false)

	sps := &SPS{Width: 400, Height: 300, CtbWidth: 6, CtbHeight: 4, Log2CtbSize: 6, Log2MinTbSize: 4, TbMask: 3}
	lookup := func(id uint32) (*SPS, bool) {
		if id == 0 {
			return sps, true
		}
		return nil, false
	}
	_, err := decodePPS(newBitReader(w.bytes()), &Context{}, lookup)
	if err == nil {
		t.Fatal("expected InvalidData for column widths summing past ctb_width")
	}
	var perr *Error
	if asError(err, &perr) && perr.Kind != KindInvalidData {
		t.Errorf("expected KindInvalidData, got %v", perr.Kind)
	}
}

// TestScenarioS6ShortTermRPSDirectCoding matches spec.md section 8's S6.
func TestScenarioS6ShortTermRPSDirectCoding(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeUE(2) // num_negative_pics
	w.writeUE(1) // num_positive_pics

	w.writeUE(0)        // delta_poc_s0_minus1[0] -> -1
	w.writeFlag(true)  // used_by_curr_pic_s0_flag[0]
	w.writeUE(1)        // delta_poc_s0_minus1[1] -> -3
	w.writeFlag(false) // used_by_curr_pic_s0_flag[1]

	w.writeUE(1)       // delta_poc_s1_minus1[0] -> +2
	w.writeFlag(true) // used_by_curr_pic_s1_flag[0]

	rps, err := parseShortTermRPS(newBitReader(w.bytes()), 0, 1, nil, false)
	if err != nil {
		t.Fatalf("parseShortTermRPS: %v", err)
	}
	wantDeltas := []int32{-3, -1, 2}
	if len(rps.DeltaPoc) != len(wantDeltas) {
		t.Fatalf("DeltaPoc length: got %d, want %d", len(rps.DeltaPoc), len(wantDeltas))
	}
	for i, v := range wantDeltas {
		if rps.DeltaPoc[i] != v {
			t.Errorf("DeltaPoc[%d] = %d, want %d", i, rps.DeltaPoc[i], v)
		}
	}
	if rps.NumNegativePics != 2 {
		t.Errorf("NumNegativePics: got %d, want 2", rps.NumNegativePics)
	}
	wantUsed := []bool{false, true, true}
	for i, v := range wantUsed {
		if rps.UsedByCurrPic[i] != v {
			t.Errorf("UsedByCurrPic[%d] = %v, want %v", i, rps.UsedByCurrPic[i], v)
		}
	}
}

func rawVPSForScenarios(id uint32) []byte {
	w := &bitWriter{}
	writeMinimalVPS(w, id)
	return w.bytes()
}

func rawSPSForScenarios(vpsID, spsID uint32) []byte {
	w := &bitWriter{}
	writeMinimalSPS(w, vpsID, spsID)
	return w.bytes()
}

// asError is a small errors.As wrapper kept local to avoid importing
// "errors" into every scenario test that only needs this one check.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
