package hevcps

import "testing"

func TestNewDefaultScalingList(t *testing.T) {
	t.Parallel()
	sl := newDefaultScalingList()
	if len(sl.Coeffs[0][0]) != 16 {
		t.Fatalf("4x4 coeffs length: got %d, want 16", len(sl.Coeffs[0][0]))
	}
	for _, v := range sl.Coeffs[0][0] {
		if v != 16 {
			t.Errorf("default 4x4 coefficient: got %d, want 16", v)
		}
	}
	if sl.DC[0][0] != 16 || sl.DC[1][0] != 16 {
		t.Errorf("default DC: got %d/%d, want 16/16", sl.DC[0][0], sl.DC[1][0])
	}
	if len(sl.Coeffs[3][5]) != 64 {
		t.Errorf("32x32 coeffs length: got %d, want 64", len(sl.Coeffs[3][5]))
	}
}

func TestParseScalingListDataAllDeltaZeroMatchesDefault(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	// sizeID 0: matrixID 0 explicit (predMode=true), matrixIDs 1-5 copy-self
	// (predMode=false, delta=0).
	w.writeFlag(true)
	for i := 0; i < 16; i++ {
		w.writeSE(0)
	}
	for m := 1; m < 6; m++ {
		w.writeFlag(false)
		w.writeUE(0)
	}
	// sizeID 1 and 2: all six matrices copy-self.
	for sizeID := 1; sizeID <= 2; sizeID++ {
		for m := 0; m < 6; m++ {
			w.writeFlag(false)
			w.writeUE(0)
		}
	}
	// sizeID 3: matrixID 0 and 3 only (step 3), copy-self.
	w.writeFlag(false)
	w.writeUE(0)
	w.writeFlag(false)
	w.writeUE(0)

	sl, err := parseScalingListData(newBitReader(w.bytes()), 1)
	if err != nil {
		t.Fatalf("parseScalingListData: %v", err)
	}
	for _, v := range sl.Coeffs[0][0] {
		if v != 8 {
			t.Errorf("explicit 4x4 matrix 0 coefficient: got %d, want 8", v)
		}
	}
	// matrixID 1 copied itself via delta=0 (no-op): remains the default.
	for _, v := range sl.Coeffs[0][1] {
		if v != 16 {
			t.Errorf("default-preserved 4x4 matrix 1 coefficient: got %d, want 16", v)
		}
	}
}

func TestParseScalingListDataPredMatrixIDDeltaCopy(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	// matrixID 0: explicit, all-zero deltas -> flat 8.
	w.writeFlag(true)
	for i := 0; i < 16; i++ {
		w.writeSE(0)
	}
	// matrixID 1: predMode=false, delta=1 -> copies matrixID 0's flat-8 list.
	w.writeFlag(false)
	w.writeUE(1)
	// matrixIDs 2-5: copy-self.
	for m := 2; m < 6; m++ {
		w.writeFlag(false)
		w.writeUE(0)
	}
	for sizeID := 1; sizeID <= 2; sizeID++ {
		for m := 0; m < 6; m++ {
			w.writeFlag(false)
			w.writeUE(0)
		}
	}
	w.writeFlag(false)
	w.writeUE(0)
	w.writeFlag(false)
	w.writeUE(0)

	sl, err := parseScalingListData(newBitReader(w.bytes()), 1)
	if err != nil {
		t.Fatalf("parseScalingListData: %v", err)
	}
	for i, v := range sl.Coeffs[0][1] {
		if v != 8 {
			t.Errorf("Coeffs[0][1][%d]: got %d, want 8 (copied from matrix 0)", i, v)
		}
	}
}

// TestParseScalingListDataSizeID3DeltaScalesByStep covers size class 3,
// where matrixId only takes values 0 and 3 (step 3): a
// scaling_list_pred_matrix_id_delta of 1 at matrixId 3 must reference
// matrixId 0, not matrixId 2 (refMatrixId = matrixId - delta * 3).
func TestParseScalingListDataSizeID3DeltaScalesByStep(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	for sizeID := 0; sizeID <= 2; sizeID++ {
		for m := 0; m < 6; m++ {
			w.writeFlag(false)
			w.writeUE(0) // copy-self
		}
	}
	// sizeID 3, matrixID 0: explicit, flat DC+coefficients of 8.
	w.writeFlag(true)
	w.writeSE(0) // scaling_list_dc_coef_minus8 -> DC = 8
	for i := 0; i < 64; i++ {
		w.writeSE(0)
	}
	// sizeID 3, matrixID 3: predMode=false, delta=1 -> must reference
	// matrixID 0 (3 - 1*3 = 0), not matrixID 2 (never coded).
	w.writeFlag(false)
	w.writeUE(1)

	sl, err := parseScalingListData(newBitReader(w.bytes()), 1)
	if err != nil {
		t.Fatalf("parseScalingListData: %v", err)
	}
	if sl.DC[1][3] != sl.DC[1][0] {
		t.Errorf("DC[1][3] = %d, want %d (copied from matrixID 0)", sl.DC[1][3], sl.DC[1][0])
	}
	for i, v := range sl.Coeffs[3][3] {
		if v != 8 {
			t.Errorf("Coeffs[3][3][%d]: got %d, want 8 (copied from matrixID 0)", i, v)
		}
	}
}

func TestParseScalingListDataDeltaExceedsMatrixID(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeFlag(false)
	w.writeUE(5) // matrixID 0, delta 5 > 0: invalid
	_, err := parseScalingListData(newBitReader(w.bytes()), 1)
	if err == nil {
		t.Fatal("expected error for pred_matrix_id_delta exceeding matrix_id")
	}
}
