package hevcps

import (
	"reflect"
	"testing"
)

func TestParseShortTermRPSDirect(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	// rpsIndex 0: no inter_ref_pic_set_prediction_flag read.
	w.writeUE(2) // num_negative_pics
	w.writeUE(1) // num_positive_pics

	w.writeUE(0) // delta_poc_s0_minus1 -> -1
	w.writeFlag(true)
	w.writeUE(1) // delta_poc_s0_minus1 -> -2 cumulative -> -3
	w.writeFlag(false)

	w.writeUE(0) // delta_poc_s1_minus1 -> +1
	w.writeFlag(true)

	rps, err := parseShortTermRPS(newBitReader(w.bytes()), 0, 1, nil, false)
	if err != nil {
		t.Fatalf("parseShortTermRPS: %v", err)
	}
	if rps.NumNegativePics != 2 {
		t.Errorf("NumNegativePics: got %d, want 2", rps.NumNegativePics)
	}
	wantDeltaPoc := []int32{-3, -1, 1}
	if !reflect.DeepEqual(rps.DeltaPoc, wantDeltaPoc) {
		t.Errorf("DeltaPoc: got %v, want %v", rps.DeltaPoc, wantDeltaPoc)
	}
	wantUsed := []bool{false, true, true}
	if !reflect.DeepEqual(rps.UsedByCurrPic, wantUsed) {
		t.Errorf("UsedByCurrPic: got %v, want %v", rps.UsedByCurrPic, wantUsed)
	}
}

func TestParseShortTermRPSTooManyRefs(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeUE(10)
	w.writeUE(10)
	_, err := parseShortTermRPS(newBitReader(w.bytes()), 0, 1, nil, false)
	if err == nil {
		t.Fatal("expected error for num_negative_pics+num_positive_pics >= HEVC_MAX_REFS")
	}
}

func TestParseShortTermRPSInterPrediction(t *testing.T) {
	t.Parallel()
	prior := []ShortTermRPS{
		{DeltaPoc: []int32{-2, -1}, UsedByCurrPic: []bool{true, true}, NumNegativePics: 2},
	}

	w := &bitWriter{}
	w.writeFlag(true) // inter_ref_pic_set_prediction_flag (rpsIndex != 0)
	// isSliceHeader=false so delta_idx implied 1, refIdx = rpsIndex-1 = 0
	w.writeFlag(false) // delta_rps_sign (positive)
	w.writeUE(0)        // abs_delta_rps_minus1 -> 1

	// numDeltaPocsRef = 2, loop i=0..2 (3 iterations)
	w.writeFlag(true) // used[0]
	w.writeFlag(true) // used[1]
	w.writeFlag(false) // used[2]
	w.writeFlag(true)  // use_delta_flag[2]

	rps, err := parseShortTermRPS(newBitReader(w.bytes()), 1, 2, prior, false)
	if err != nil {
		t.Fatalf("parseShortTermRPS: %v", err)
	}
	// deltaRPS = +1; entries: i=0 -> 1+(-2)=-1 used; i=1 -> 1+(-1)=0 used;
	// i=2 (i==numDeltaPocsRef) -> deltaRPS=1, not used but useDelta.
	wantDeltaPoc := []int32{-1, 0, 1}
	if !reflect.DeepEqual(rps.DeltaPoc, wantDeltaPoc) {
		t.Errorf("DeltaPoc: got %v, want %v", rps.DeltaPoc, wantDeltaPoc)
	}
}

func TestParseShortTermRPSInterPredictionBadRef(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeFlag(true) // inter_ref_pic_set_prediction_flag
	w.writeFlag(false)
	w.writeUE(0)
	_, err := parseShortTermRPS(newBitReader(w.bytes()), 1, 2, nil, false)
	if err == nil {
		t.Fatal("expected error referencing a non-existent prior RPS")
	}
}
