package hevcps

// vuiSAR is the 17-entry sample-aspect-ratio lookup table indexed by
// aspect_ratio_idc (1..16); index 0 is the reserved/unused entry.
var vuiSAR = [17][2]uint32{
	{0, 1},
	{1, 1},
	{12, 11},
	{10, 11},
	{16, 11},
	{40, 33},
	{24, 11},
	{20, 11},
	{32, 11},
	{80, 33},
	{18, 11},
	{15, 11},
	{64, 33},
	{160, 99},
	{4, 3},
	{3, 2},
	{2, 1},
}

// DefaultDisplayWindow is the VUI's optional cropping window, in the same
// units as SPS conformance window offsets (spec.md section 4.5).
type DefaultDisplayWindow struct {
	LeftOffset, RightOffset, TopOffset, BottomOffset uint32
}

// TimingInfo is the VUI timing/frame-rate block.
type TimingInfo struct {
	NumUnitsInTick               uint32
	TimeScale                    uint32
	POCProportionalToTimingFlag  bool
	NumTicksPOCDiffOne           uint32
	HRDParametersPresentFlag     bool
	HRD                          HRDParameters
}

// BitstreamRestriction carries the VUI's decoding-constraint hints.
type BitstreamRestriction struct {
	TilesFixedStructureFlag           bool
	MotionVectorsOverPicBoundariesFlag bool
	RestrictedRefPicListsFlag          bool
	MinSpatialSegmentationIdc          uint32
	MaxBytesPerPicDenom                uint32
	MaxBitsPerMinCUDenom               uint32
	Log2MaxMVLengthHorizontal          uint32
	Log2MaxMVLengthVertical            uint32
}

// VUI is the Video Usability Information block (spec.md section 4.5).
type VUI struct {
	AspectRatioInfoPresentFlag bool
	AspectRatioIdc             uint8
	SarWidth, SarHeight        uint32

	OverscanInfoPresentFlag    bool
	OverscanAppropriateFlag    bool

	VideoSignalTypePresentFlag   bool
	VideoFormat                  uint8
	VideoFullRangeFlag           bool
	ColourDescriptionPresentFlag bool
	ColourPrimaries              uint8
	TransferCharacteristics      uint8
	MatrixCoefficients           uint8

	ChromaLocInfoPresentFlag       bool
	ChromaSampleLocTypeTopField    uint32
	ChromaSampleLocTypeBottomField uint32

	NeutralChromaIndicationFlag bool
	FieldSeqFlag                bool
	FrameFieldInfoPresentFlag   bool

	DefaultDisplayWindowFlag bool
	DefaultDisplayWindow     DefaultDisplayWindow

	TimingInfoPresentFlag bool
	TimingInfo            TimingInfo

	BitstreamRestrictionFlag bool
	BitstreamRestriction     BitstreamRestriction
}

func normalizeColourPrimaries(v uint8) uint8 {
	if v == 0 || v == 3 || v > 12 {
		return 2 // unspecified
	}
	return v
}

func normalizeTransferCharacteristics(v uint8) uint8 {
	if v == 0 || v == 3 || v > 18 {
		return 2 // unspecified
	}
	return v
}

const matrixCoefficientsRGB = 0

func normalizeMatrixCoefficients(v uint8) uint8 {
	if v == 3 || v > 14 {
		return 2 // unspecified
	}
	return v
}

// parseVUI implements spec.md section 4.5. chromaFormatIdc drives the
// default-display-window offset scaling (1 or 2, per chroma subsampling);
// maxSubLayersMinus1 sizes the optional VUI-HRD block.
func parseVUI(r BitSource, ctx *Context, chromaFormatIdc uint32, maxSubLayersMinus1 int) (VUI, error) {
	var v VUI

	b, err := r.ReadBit()
	if err != nil {
		return v, truncated("aspect_ratio_info_present_flag", err)
	}
	v.AspectRatioInfoPresentFlag = b == 1
	if v.AspectRatioInfoPresentFlag {
		idc, err := r.ReadBits(8)
		if err != nil {
			return v, truncated("aspect_ratio_idc", err)
		}
		v.AspectRatioIdc = uint8(idc)
		switch {
		case idc < uint32(len(vuiSAR)):
			v.SarWidth, v.SarHeight = vuiSAR[idc][0], vuiSAR[idc][1]
		case idc == 255:
			w, err := r.ReadBits(16)
			if err != nil {
				return v, truncated("sar_width", err)
			}
			h, err := r.ReadBits(16)
			if err != nil {
				return v, truncated("sar_height", err)
			}
			v.SarWidth, v.SarHeight = w, h
		default:
			if err := ctx.warn("aspect_ratio_idc", "unknown SAR index %d", idc); err != nil {
				return v, err
			}
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("overscan_info_present_flag", err)
	}
	v.OverscanInfoPresentFlag = b == 1
	if v.OverscanInfoPresentFlag {
		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("overscan_appropriate_flag", err)
		}
		v.OverscanAppropriateFlag = b == 1
	}

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("video_signal_type_present_flag", err)
	}
	v.VideoSignalTypePresentFlag = b == 1
	if v.VideoSignalTypePresentFlag {
		fmt_, err := r.ReadBits(3)
		if err != nil {
			return v, truncated("video_format", err)
		}
		v.VideoFormat = uint8(fmt_)

		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("video_full_range_flag", err)
		}
		v.VideoFullRangeFlag = b == 1

		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("colour_description_present_flag", err)
		}
		v.ColourDescriptionPresentFlag = b == 1

		if v.ColourDescriptionPresentFlag {
			cp, err := r.ReadBits(8)
			if err != nil {
				return v, truncated("colour_primaries", err)
			}
			tc, err := r.ReadBits(8)
			if err != nil {
				return v, truncated("transfer_characteristics", err)
			}
			mc, err := r.ReadBits(8)
			if err != nil {
				return v, truncated("matrix_coeffs", err)
			}
			// spec.md section 12 resolves the original's literal-constant
			// bug here: store the bits actually read, normalizing only
			// out-of-range indices to "unspecified" as the spec text
			// describes.
			v.ColourPrimaries = normalizeColourPrimaries(uint8(cp))
			v.TransferCharacteristics = normalizeTransferCharacteristics(uint8(tc))
			v.MatrixCoefficients = normalizeMatrixCoefficients(uint8(mc))
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("chroma_loc_info_present_flag", err)
	}
	v.ChromaLocInfoPresentFlag = b == 1
	if v.ChromaLocInfoPresentFlag {
		t, err := r.ReadUE()
		if err != nil {
			return v, truncated("chroma_sample_loc_type_top_field", err)
		}
		v.ChromaSampleLocTypeTopField = t
		bo, err := r.ReadUE()
		if err != nil {
			return v, truncated("chroma_sample_loc_type_bottom_field", err)
		}
		v.ChromaSampleLocTypeBottomField = bo
	}

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("neutral_chroma_indication_flag", err)
	}
	v.NeutralChromaIndicationFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("field_seq_flag", err)
	}
	v.FieldSeqFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("frame_field_info_present_flag", err)
	}
	v.FrameFieldInfoPresentFlag = b == 1

	// VUI alternate-header heuristic (spec.md sections 4.5, 9, 12): if
	// enabled and enough bits remain, peek 21 bits; a match for the
	// alternate-layout pattern treats the flag as absent without
	// consuming it.
	if ctx.vuiAlternateHeaderHeuristic() && r.BitsLeft() >= 68 {
		peeked, err := r.PeekBits(21)
		if err == nil && peeked == 0x100000 {
			v.DefaultDisplayWindowFlag = false
			if err := ctx.warn("default_display_window_flag", "invalid default display window"); err != nil {
				return v, err
			}
		} else {
			b, err = r.ReadBit()
			if err != nil {
				return v, truncated("default_display_window_flag", err)
			}
			v.DefaultDisplayWindowFlag = b == 1
		}
	} else {
		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("default_display_window_flag", err)
		}
		v.DefaultDisplayWindowFlag = b == 1
	}

	backup := r.Mark()

	if v.DefaultDisplayWindowFlag {
		horizMult := uint32(1)
		if chromaFormatIdc < 3 {
			horizMult = 2
		}
		vertMult := uint32(1)
		if chromaFormatIdc < 2 {
			vertMult = 2
		}
		l, err := r.ReadUE()
		if err != nil {
			return v, truncated("def_disp_win_left_offset", err)
		}
		rr, err := r.ReadUE()
		if err != nil {
			return v, truncated("def_disp_win_right_offset", err)
		}
		t, err := r.ReadUE()
		if err != nil {
			return v, truncated("def_disp_win_top_offset", err)
		}
		bo, err := r.ReadUE()
		if err != nil {
			return v, truncated("def_disp_win_bottom_offset", err)
		}
		v.DefaultDisplayWindow = DefaultDisplayWindow{
			LeftOffset:   l * horizMult,
			RightOffset:  rr * horizMult,
			TopOffset:    t * vertMult,
			BottomOffset: bo * vertMult,
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("vui_timing_info_present_flag", err)
	}
	v.TimingInfoPresentFlag = b == 1
	if v.TimingInfoPresentFlag {
		if r.BitsLeft() < 66 {
			// The alternate syntax appears to locate timing info where
			// def_disp_win is normally located: roll back to just after
			// the default_display_window_flag bit and reinterpret.
			if err := ctx.warn("vui_timing_info", "strange VUI timing information, retrying"); err != nil {
				return v, err
			}
			v.DefaultDisplayWindowFlag = false
			v.DefaultDisplayWindow = DefaultDisplayWindow{}
			r.Reset(backup)
		}

		nu, err := r.ReadBits(32)
		if err != nil {
			return v, truncated("vui_num_units_in_tick", err)
		}
		ts, err := r.ReadBits(32)
		if err != nil {
			return v, truncated("vui_time_scale", err)
		}
		v.TimingInfo.NumUnitsInTick = nu
		v.TimingInfo.TimeScale = ts

		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("vui_poc_proportional_to_timing_flag", err)
		}
		v.TimingInfo.POCProportionalToTimingFlag = b == 1
		if v.TimingInfo.POCProportionalToTimingFlag {
			n, err := r.ReadUE()
			if err != nil {
				return v, truncated("vui_num_ticks_poc_diff_one_minus1", err)
			}
			v.TimingInfo.NumTicksPOCDiffOne = n + 1
		}

		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("vui_hrd_parameters_present_flag", err)
		}
		v.TimingInfo.HRDParametersPresentFlag = b == 1
		if v.TimingInfo.HRDParametersPresentFlag {
			hrd, err := parseHRDParameters(r, true, maxSubLayersMinus1)
			if err != nil {
				return v, err
			}
			v.TimingInfo.HRD = hrd
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return v, truncated("bitstream_restriction_flag", err)
	}
	v.BitstreamRestrictionFlag = b == 1
	if v.BitstreamRestrictionFlag {
		br := &v.BitstreamRestriction
		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("tiles_fixed_structure_flag", err)
		}
		br.TilesFixedStructureFlag = b == 1

		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("motion_vectors_over_pic_boundaries_flag", err)
		}
		br.MotionVectorsOverPicBoundariesFlag = b == 1

		b, err = r.ReadBit()
		if err != nil {
			return v, truncated("restricted_ref_pic_lists_flag", err)
		}
		br.RestrictedRefPicListsFlag = b == 1

		if br.MinSpatialSegmentationIdc, err = r.ReadUE(); err != nil {
			return v, truncated("min_spatial_segmentation_idc", err)
		}
		if br.MaxBytesPerPicDenom, err = r.ReadUE(); err != nil {
			return v, truncated("max_bytes_per_pic_denom", err)
		}
		if br.MaxBitsPerMinCUDenom, err = r.ReadUE(); err != nil {
			return v, truncated("max_bits_per_min_cu_denom", err)
		}
		if br.Log2MaxMVLengthHorizontal, err = r.ReadUE(); err != nil {
			return v, truncated("log2_max_mv_length_horizontal", err)
		}
		if br.Log2MaxMVLengthVertical, err = r.ReadUE(); err != nil {
			return v, truncated("log2_max_mv_length_vertical", err)
		}
	}

	return v, nil
}
