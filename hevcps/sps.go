package hevcps

// HEVCMaxSubLayers, HEVCMaxDPBSize, HEVCMaxShortTermRPSCount, and
// HEVCMaxLog2CTBSize are the structural bounds from the original decoder's
// HEVC_MAX_* constants, carried over as spec.md section 3.5's invariants.
const (
	HEVCMaxSubLayers         = 7
	HEVCMaxDPBSize           = 16
	HEVCMaxShortTermRPSCount = 64
	HEVCMaxLog2CTBSize       = 6
	HEVCMaxLongTermRefPics   = 32
)

// PCMParams holds the pulse-code-modulation tool parameters (spec.md
// section 4.4 step 10).
type PCMParams struct {
	BitDepth               uint32 // +1
	BitDepthChroma         uint32 // +1
	Log2MinPCMCbSize       uint32 // +3
	Log2MaxPCMCbSize       uint32
	LoopFilterDisableFlag  bool
}

// SPSRangeExtension carries the nine independently-gated range-extension
// tool flags (spec.md section 12 supplement; grounded on sps_range_extensions
// in hevc_ps.c).
type SPSRangeExtension struct {
	TransformSkipRotationEnabledFlag    bool
	TransformSkipContextEnabledFlag     bool
	ImplicitRDPCMEnabledFlag            bool
	ExplicitRDPCMEnabledFlag            bool
	ExtendedPrecisionProcessingFlag     bool
	IntraSmoothingDisabledFlag          bool
	HighPrecisionOffsetsEnabledFlag     bool
	PersistentRiceAdaptationEnabledFlag bool
	CABACBypassAlignmentEnabledFlag     bool
}

// SPSMultilayerExtension is the multilayer SPS extension tail (spec.md
// section 12 supplement; grounded on sps_multilayer_extensions).
type SPSMultilayerExtension struct {
	InterViewMVVertConstraintFlag bool
}

// SPS is the Sequence Parameter Set (spec.md section 3.5).
type SPS struct {
	VPSID           uint8
	IsMultiLayerExt bool
	UpdateRepFormatFlag bool
	RepFormatIdx    int

	SPSID        uint32
	MaxSubLayers uint32 // +1
	TemporalIDNestingFlag bool
	PTL          PTL

	ChromaFormatIdc         uint32
	SeparateColourPlaneFlag bool
	Width, Height           uint32
	ConformanceWindowFlag   bool
	ConfWin                 ConformanceWindow
	OutputWindow            ConformanceWindow
	BitDepthLuma            uint32 // +8
	BitDepthChroma          uint32 // +8

	Log2MaxPOCLsb uint32 // +4

	SubLayerOrderingInfoPresentFlag bool
	SubLayerOrdering                []SubLayerOrdering

	Log2MinCbSize              uint32 // +3
	Log2DiffMaxMinCbSize       uint32
	Log2MinTbSize              uint32 // +2
	Log2DiffMaxMinTbSize       uint32
	Log2MaxTrafoSize           uint32
	MaxTransformHierarchyDepthInter uint32
	MaxTransformHierarchyDepthIntra uint32

	ScalingListEnabledFlag     bool
	SPSInferScalingListFlag    bool
	SPSScalingListRefLayerID   uint32
	SPSScalingListDataPresentFlag bool
	ScalingList                *ScalingList

	AMPEnabledFlag  bool
	SAOEnabledFlag  bool
	PCMEnabledFlag  bool
	PCM             PCMParams

	NumShortTermRPS uint32
	STRPS           []ShortTermRPS

	LongTermRefPicsPresentFlag bool
	NumLongTermRefPicsSPS      uint32
	LtRefPicPocLsbSps          []uint32
	UsedByCurrPicLtSpsFlag     []bool

	TemporalMVPEnabledFlag          bool
	StrongIntraSmoothingEnableFlag  bool

	VUIParametersPresentFlag bool
	VUI                      VUI

	SPSExtensionPresentFlag  bool
	RangeExtensionFlag       bool
	MultilayerExtensionFlag  bool
	ThreeDExtensionFlag      bool
	ExtensionFlags5Bits      uint32
	RangeExtension           *SPSRangeExtension
	MultilayerExtension      *SPSMultilayerExtension

	// Derived (spec.md section 3.5 "Derived").
	Log2CtbSize                         uint32
	Log2MinPuSize                       uint32
	CtbWidth, CtbHeight, CtbSize        uint32
	MinCbWidth, MinCbHeight             uint32
	MinTbWidth, MinTbHeight             uint32
	MinPuWidth, MinPuHeight             uint32
	TbMask                              uint32
	QpBdOffset                          uint32
	OutputWidth, OutputHeight           uint32
	PixelFormat                         PixelFormat
}

// decodeSPS implements spec.md section 4.4. lookupVPS resolves a vps_id to
// an already-registered VPS (needed for multilayer-ext bounds and
// RepFormat resolution); nuhLayerID is 0 for the base layer.
// applyDefDispWin selects whether the VUI default display window is
// merged into OutputWindow, matching hevc_ps.c's apply_defdispwin gate.
func decodeSPS(r BitSource, ctx *Context, lookupVPS func(id uint8) (*VPS, bool), applyDefDispWin bool, nuhLayerID int) (*SPS, error) {
	sps := &SPS{ChromaFormatIdc: 1}

	vpsID, err := r.ReadBits(4)
	if err != nil {
		return nil, truncated("sps_video_parameter_set_id", err)
	}
	sps.VPSID = uint8(vpsID)

	vps, ok := lookupVPS(sps.VPSID)
	if !ok {
		return nil, invalid("sps_video_parameter_set_id", "VPS %d does not exist", sps.VPSID)
	}

	var v1Compatible uint32 = 1
	if nuhLayerID == 0 {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, truncated("sps_max_sub_layers_minus1", err)
		}
		sps.MaxSubLayers = v + 1
		if sps.MaxSubLayers > HEVCMaxSubLayers {
			return nil, invalid("sps_max_sub_layers_minus1", "value %d exceeds %d", sps.MaxSubLayers-1, HEVCMaxSubLayers-1)
		}
		if sps.MaxSubLayers > vps.MaxSubLayers {
			return nil, invalid("sps_max_sub_layers_minus1", "sps_max_sub_layers_minus1 (%d) greater than vps_max_sub_layers_minus1 (%d)", sps.MaxSubLayers-1, vps.MaxSubLayers-1)
		}
	} else {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, truncated("sps_ext_or_max_sub_layers_minus1", err)
		}
		extOrMax := v + 1
		v1Compatible = extOrMax - 1
		if v1Compatible == 7 {
			sps.MaxSubLayers = vps.MaxSubLayers
		} else {
			sps.MaxSubLayers = extOrMax
		}
	}
	sps.IsMultiLayerExt = nuhLayerID != 0 && v1Compatible == 7

	if !sps.IsMultiLayerExt {
		b, err := r.ReadBit()
		if err != nil {
			return nil, truncated("sps_temporal_id_nesting_flag", err)
		}
		sps.TemporalIDNestingFlag = b == 1
		ptl, err := parsePTL(r, int(sps.MaxSubLayers), true)
		if err != nil {
			return nil, err
		}
		sps.PTL = ptl
	} else if sps.MaxSubLayers > 1 {
		sps.TemporalIDNestingFlag = vps.TemporalIDNestingFlag
	} else {
		sps.TemporalIDNestingFlag = true
	}

	spsID, err := r.ReadUE()
	if err != nil {
		return nil, truncated("sps_seq_parameter_set_id", err)
	}
	if spsID >= 16 {
		return nil, invalid("sps_seq_parameter_set_id", "SPS id out of range: %d", spsID)
	}
	sps.SPSID = spsID

	if sps.IsMultiLayerExt {
		b, err := r.ReadBit()
		if err != nil {
			return nil, truncated("update_rep_format_flag", err)
		}
		sps.UpdateRepFormatFlag = b == 1
		if sps.UpdateRepFormatFlag {
			v, err := r.ReadBits(8)
			if err != nil {
				return nil, truncated("sps_rep_format_idx", err)
			}
			sps.RepFormatIdx = int(v)
		}

		layerIdx := 0
		if idx, ok := vps.Extension.LayerIDInVPS[uint32(nuhLayerID)]; vps.Extension != nil && ok {
			layerIdx = idx
		}
		rf := vps.RepFormatFor(layerIdx)
		if sps.UpdateRepFormatFlag && vps.Extension != nil && sps.RepFormatIdx < len(vps.Extension.RepFormats) {
			rf = &vps.Extension.RepFormats[sps.RepFormatIdx]
		}
		if rf != nil {
			sps.Width = rf.PicWidthLumaSamples
			sps.Height = rf.PicHeightLumaSamples
			sps.ChromaFormatIdc = rf.ChromaFormatIdc
			sps.SeparateColourPlaneFlag = rf.SeparateColourPlaneFlag
			sps.BitDepthLuma = rf.BitDepthLuma
			sps.BitDepthChroma = rf.BitDepthChroma
			sps.ConformanceWindowFlag = rf.ConformanceWindowFlag
			sps.ConfWin = rf.ConfWin
			sps.OutputWindow = rf.ConfWin
		}
	} else {
		cf, err := r.ReadUE()
		if err != nil {
			return nil, truncated("chroma_format_idc", err)
		}
		if cf > 3 {
			return nil, invalid("chroma_format_idc", "unsupported chroma_format_idc %d", cf)
		}
		sps.ChromaFormatIdc = cf
		if cf == 3 {
			b, err := r.ReadBit()
			if err != nil {
				return nil, truncated("separate_colour_plane_flag", err)
			}
			sps.SeparateColourPlaneFlag = b == 1
		}
		if sps.SeparateColourPlaneFlag {
			sps.ChromaFormatIdc = 0
		}

		w, err := r.ReadUE()
		if err != nil {
			return nil, truncated("pic_width_in_luma_samples", err)
		}
		sps.Width = w
		h, err := r.ReadUE()
		if err != nil {
			return nil, truncated("pic_height_in_luma_samples", err)
		}
		sps.Height = h

		b, err := r.ReadBit()
		if err != nil {
			return nil, truncated("conformance_window_flag", err)
		}
		sps.ConformanceWindowFlag = b == 1
		if sps.ConformanceWindowFlag {
			vertMult := uint32(1)
			if sps.ChromaFormatIdc < 2 {
				vertMult = 2
			}
			horizMult := uint32(1)
			if sps.ChromaFormatIdc < 3 {
				horizMult = 2
			}
			l, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_left_offset", err)
			}
			rr, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_right_offset", err)
			}
			t, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_top_offset", err)
			}
			bo, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_bottom_offset", err)
			}
			sps.ConfWin = ConformanceWindow{
				LeftOffset: l * horizMult, RightOffset: rr * horizMult,
				TopOffset: t * vertMult, BottomOffset: bo * vertMult,
			}
			sps.OutputWindow = sps.ConfWin
		}

		bd, err := r.ReadUE()
		if err != nil {
			return nil, truncated("bit_depth_luma_minus8", err)
		}
		sps.BitDepthLuma = bd + 8
		bd, err = r.ReadUE()
		if err != nil {
			return nil, truncated("bit_depth_chroma_minus8", err)
		}
		sps.BitDepthChroma = bd + 8
	}

	if sps.ChromaFormatIdc != 0 && sps.BitDepthLuma != sps.BitDepthChroma {
		return nil, invalid("bit_depth_chroma_minus8", "luma bit depth %d != chroma bit depth %d", sps.BitDepthLuma, sps.BitDepthChroma)
	}

	lg2poc, err := r.ReadUE()
	if err != nil {
		return nil, truncated("log2_max_pic_order_cnt_lsb_minus4", err)
	}
	sps.Log2MaxPOCLsb = lg2poc + 4
	if sps.Log2MaxPOCLsb-4 > 16 {
		return nil, invalid("log2_max_pic_order_cnt_lsb_minus4", "out of range: %d", sps.Log2MaxPOCLsb-4)
	}

	if !sps.IsMultiLayerExt {
		b, err := r.ReadBit()
		if err != nil {
			return nil, truncated("sps_sub_layer_ordering_info_present_flag", err)
		}
		sps.SubLayerOrderingInfoPresentFlag = b == 1
		sps.SubLayerOrdering = make([]SubLayerOrdering, sps.MaxSubLayers)
		start := 0
		if !sps.SubLayerOrderingInfoPresentFlag {
			start = int(sps.MaxSubLayers) - 1
		}
		for i := start; i < int(sps.MaxSubLayers); i++ {
			dpb, err := r.ReadUE()
			if err != nil {
				return nil, truncated("sps_max_dec_pic_buffering_minus1", err)
			}
			reorder, err := r.ReadUE()
			if err != nil {
				return nil, truncated("sps_max_num_reorder_pics", err)
			}
			latencyPlus1, err := r.ReadUE()
			if err != nil {
				return nil, truncated("sps_max_latency_increase_plus1", err)
			}
			o := SubLayerOrdering{MaxDecPicBuffering: dpb + 1, NumReorderPics: reorder, MaxLatencyIncrease: latencyPlus1}
			if o.MaxDecPicBuffering > HEVCMaxDPBSize {
				return nil, invalid("sps_max_dec_pic_buffering_minus1", "out of range: %d", o.MaxDecPicBuffering-1)
			}
			if o.NumReorderPics > o.MaxDecPicBuffering-1 {
				if err := ctx.warn("sps_max_num_reorder_pics", "out of range: %d", o.NumReorderPics); err != nil {
					return nil, err
				}
				o.MaxDecPicBuffering = o.NumReorderPics + 1
			}
			if !sps.SubLayerOrderingInfoPresentFlag {
				for j := 0; j < int(sps.MaxSubLayers); j++ {
					sps.SubLayerOrdering[j] = o
				}
				break
			}
			sps.SubLayerOrdering[i] = o
		}
	}

	v, err := r.ReadUE()
	if err != nil {
		return nil, truncated("log2_min_luma_coding_block_size_minus3", err)
	}
	sps.Log2MinCbSize = v + 3
	v, err = r.ReadUE()
	if err != nil {
		return nil, truncated("log2_diff_max_min_luma_coding_block_size", err)
	}
	sps.Log2DiffMaxMinCbSize = v
	v, err = r.ReadUE()
	if err != nil {
		return nil, truncated("log2_min_luma_transform_block_size_minus2", err)
	}
	sps.Log2MinTbSize = v + 2
	v, err = r.ReadUE()
	if err != nil {
		return nil, truncated("log2_diff_max_min_luma_transform_block_size", err)
	}
	sps.Log2DiffMaxMinTbSize = v
	sps.Log2MaxTrafoSize = sps.Log2DiffMaxMinTbSize + sps.Log2MinTbSize

	if sps.Log2MinCbSize < 3 || sps.Log2MinCbSize > 30 {
		return nil, invalid("log2_min_luma_coding_block_size_minus3", "invalid log2_min_cb_size %d", sps.Log2MinCbSize)
	}
	if sps.Log2DiffMaxMinCbSize > 30 {
		return nil, invalid("log2_diff_max_min_luma_coding_block_size", "invalid value %d", sps.Log2DiffMaxMinCbSize)
	}
	if sps.Log2MinTbSize >= sps.Log2MinCbSize || sps.Log2MinTbSize < 2 {
		return nil, invalid("log2_min_luma_transform_block_size_minus2", "invalid log2_min_tb_size %d", sps.Log2MinTbSize)
	}
	if sps.Log2DiffMaxMinTbSize > 30 {
		return nil, invalid("log2_diff_max_min_luma_transform_block_size", "invalid value %d", sps.Log2DiffMaxMinTbSize)
	}

	sps.MaxTransformHierarchyDepthInter, err = r.ReadUE()
	if err != nil {
		return nil, truncated("max_transform_hierarchy_depth_inter", err)
	}
	sps.MaxTransformHierarchyDepthIntra, err = r.ReadUE()
	if err != nil {
		return nil, truncated("max_transform_hierarchy_depth_intra", err)
	}

	b, err := r.ReadBit()
	if err != nil {
		return nil, truncated("scaling_list_enabled_flag", err)
	}
	sps.ScalingListEnabledFlag = b == 1
	if sps.ScalingListEnabledFlag {
		if sps.IsMultiLayerExt {
			b, err := r.ReadBit()
			if err != nil {
				return nil, truncated("sps_infer_scaling_list_flag", err)
			}
			sps.SPSInferScalingListFlag = b == 1
		}
		if sps.SPSInferScalingListFlag {
			v, err := r.ReadBits(6)
			if err != nil {
				return nil, truncated("sps_scaling_list_ref_layer_id", err)
			}
			sps.SPSScalingListRefLayerID = v
		} else {
			sps.ScalingList = newDefaultScalingList()
			b, err := r.ReadBit()
			if err != nil {
				return nil, truncated("sps_scaling_list_data_present_flag", err)
			}
			sps.SPSScalingListDataPresentFlag = b == 1
			if sps.SPSScalingListDataPresentFlag {
				sl, err := parseScalingListData(r, sps.ChromaFormatIdc)
				if err != nil {
					return nil, err
				}
				sps.ScalingList = sl
			}
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("amp_enabled_flag", err)
	}
	sps.AMPEnabledFlag = b == 1
	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("sample_adaptive_offset_enabled_flag", err)
	}
	sps.SAOEnabledFlag = b == 1
	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("pcm_enabled_flag", err)
	}
	sps.PCMEnabledFlag = b == 1

	if sps.PCMEnabledFlag {
		v, err := r.ReadBits(4)
		if err != nil {
			return nil, truncated("pcm_sample_bit_depth_luma_minus1", err)
		}
		sps.PCM.BitDepth = v + 1
		v, err = r.ReadBits(4)
		if err != nil {
			return nil, truncated("pcm_sample_bit_depth_chroma_minus1", err)
		}
		sps.PCM.BitDepthChroma = v + 1
		lg, err := r.ReadUE()
		if err != nil {
			return nil, truncated("log2_min_pcm_luma_coding_block_size_minus3", err)
		}
		sps.PCM.Log2MinPCMCbSize = lg + 3
		diff, err := r.ReadUE()
		if err != nil {
			return nil, truncated("log2_diff_max_min_pcm_luma_coding_block_size", err)
		}
		sps.PCM.Log2MaxPCMCbSize = sps.PCM.Log2MinPCMCbSize + diff

		if sps.PCM.BitDepth > sps.BitDepthLuma {
			return nil, invalid("pcm_sample_bit_depth_luma_minus1", "PCM bit depth (%d) greater than normal bit depth (%d)", sps.PCM.BitDepth, sps.BitDepthLuma)
		}
		b, err := r.ReadBit()
		if err != nil {
			return nil, truncated("pcm_loop_filter_disabled_flag", err)
		}
		sps.PCM.LoopFilterDisableFlag = b == 1
	}

	numSTRPS, err := r.ReadUE()
	if err != nil {
		return nil, truncated("num_short_term_ref_pic_sets", err)
	}
	if numSTRPS > HEVCMaxShortTermRPSCount {
		return nil, invalid("num_short_term_ref_pic_sets", "too many short term RPS: %d", numSTRPS)
	}
	sps.NumShortTermRPS = numSTRPS
	sps.STRPS = make([]ShortTermRPS, numSTRPS)
	for i := uint32(0); i < numSTRPS; i++ {
		rps, err := parseShortTermRPS(r, int(i), int(numSTRPS), sps.STRPS[:i], false)
		if err != nil {
			return nil, err
		}
		sps.STRPS[i] = rps
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("long_term_ref_pics_present_flag", err)
	}
	sps.LongTermRefPicsPresentFlag = b == 1
	if sps.LongTermRefPicsPresentFlag {
		n, err := r.ReadUE()
		if err != nil {
			return nil, truncated("num_long_term_ref_pics_sps", err)
		}
		if n > HEVCMaxLongTermRefPics-1 {
			return nil, invalid("num_long_term_ref_pics_sps", "out of range: %d", n)
		}
		sps.NumLongTermRefPicsSPS = n
		sps.LtRefPicPocLsbSps = make([]uint32, n)
		sps.UsedByCurrPicLtSpsFlag = make([]bool, n)
		for i := uint32(0); i < n; i++ {
			lsb, err := r.ReadBits(int(sps.Log2MaxPOCLsb))
			if err != nil {
				return nil, truncated("lt_ref_pic_poc_lsb_sps", err)
			}
			sps.LtRefPicPocLsbSps[i] = lsb
			b, err := r.ReadBit()
			if err != nil {
				return nil, truncated("used_by_curr_pic_lt_sps_flag", err)
			}
			sps.UsedByCurrPicLtSpsFlag[i] = b == 1
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("sps_temporal_mvp_enabled_flag", err)
	}
	sps.TemporalMVPEnabledFlag = b == 1
	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("strong_intra_smoothing_enabled_flag", err)
	}
	sps.StrongIntraSmoothingEnableFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vui_parameters_present_flag", err)
	}
	sps.VUIParametersPresentFlag = b == 1
	if sps.VUIParametersPresentFlag {
		vui, err := parseVUI(r, ctx, sps.ChromaFormatIdc, int(sps.MaxSubLayers)-1)
		if err != nil {
			return nil, err
		}
		sps.VUI = vui
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("sps_extension_present_flag", err)
	}
	sps.SPSExtensionPresentFlag = b == 1
	if sps.SPSExtensionPresentFlag {
		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("sps_range_extension_flag", err)
		}
		sps.RangeExtensionFlag = b == 1
		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("sps_multilayer_extension_flag", err)
		}
		sps.MultilayerExtensionFlag = b == 1
		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("sps_3d_extension_flag", err)
		}
		sps.ThreeDExtensionFlag = b == 1
		v, err := r.ReadBits(5)
		if err != nil {
			return nil, truncated("sps_extension_5bits", err)
		}
		sps.ExtensionFlags5Bits = v

		if sps.RangeExtensionFlag {
			ext, err := parseSPSRangeExtension(r)
			if err != nil {
				return nil, err
			}
			sps.RangeExtension = ext
		}
		if sps.MultilayerExtensionFlag {
			ext, err := parseSPSMultilayerExtension(r)
			if err != nil {
				return nil, err
			}
			sps.MultilayerExtension = ext
		}
	}

	if applyDefDispWin && sps.VUIParametersPresentFlag && sps.VUI.DefaultDisplayWindowFlag {
		sps.OutputWindow.LeftOffset += sps.VUI.DefaultDisplayWindow.LeftOffset
		sps.OutputWindow.RightOffset += sps.VUI.DefaultDisplayWindow.RightOffset
		sps.OutputWindow.TopOffset += sps.VUI.DefaultDisplayWindow.TopOffset
		sps.OutputWindow.BottomOffset += sps.VUI.DefaultDisplayWindow.BottomOffset
	}

	sps.OutputWidth = sps.Width - (sps.OutputWindow.LeftOffset + sps.OutputWindow.RightOffset)
	sps.OutputHeight = sps.Height - (sps.OutputWindow.TopOffset + sps.OutputWindow.BottomOffset)
	if sps.Width <= sps.OutputWindow.LeftOffset+sps.OutputWindow.RightOffset ||
		sps.Height <= sps.OutputWindow.TopOffset+sps.OutputWindow.BottomOffset {
		if err := ctx.warn("conformance_window", "invalid visible frame dimensions %dx%d; displaying whole surface", sps.OutputWidth, sps.OutputHeight); err != nil {
			return nil, err
		}
		sps.ConfWin = ConformanceWindow{}
		sps.OutputWindow = ConformanceWindow{}
		sps.OutputWidth = sps.Width
		sps.OutputHeight = sps.Height
	}

	sps.Log2CtbSize = sps.Log2MinCbSize + sps.Log2DiffMaxMinCbSize
	sps.Log2MinPuSize = sps.Log2MinCbSize - 1

	if sps.Log2CtbSize > HEVCMaxLog2CTBSize {
		return nil, invalid("log2_diff_max_min_luma_coding_block_size", "CTB size out of range: 2^%d", sps.Log2CtbSize)
	}
	if sps.Log2CtbSize < 4 {
		return nil, invalid("log2_diff_max_min_luma_coding_block_size", "log2_ctb_size %d below minimum profile bound", sps.Log2CtbSize)
	}

	sps.CtbWidth = ceilDiv(sps.Width, 1<<sps.Log2CtbSize)
	sps.CtbHeight = ceilDiv(sps.Height, 1<<sps.Log2CtbSize)
	sps.CtbSize = sps.CtbWidth * sps.CtbHeight

	sps.MinCbWidth = sps.Width >> sps.Log2MinCbSize
	sps.MinCbHeight = sps.Height >> sps.Log2MinCbSize
	sps.MinTbWidth = sps.Width >> sps.Log2MinTbSize
	sps.MinTbHeight = sps.Height >> sps.Log2MinTbSize
	sps.MinPuWidth = sps.Width >> sps.Log2MinPuSize
	sps.MinPuHeight = sps.Height >> sps.Log2MinPuSize
	sps.TbMask = (1 << (sps.Log2CtbSize - sps.Log2MinTbSize)) - 1

	sps.QpBdOffset = 6 * (sps.BitDepthLuma - 8)

	if sps.MaxTransformHierarchyDepthInter > sps.Log2CtbSize-sps.Log2MinTbSize {
		return nil, invalid("max_transform_hierarchy_depth_inter", "out of range: %d", sps.MaxTransformHierarchyDepthInter)
	}
	if sps.MaxTransformHierarchyDepthIntra > sps.Log2CtbSize-sps.Log2MinTbSize {
		return nil, invalid("max_transform_hierarchy_depth_intra", "out of range: %d", sps.MaxTransformHierarchyDepthIntra)
	}
	maxTrafo := sps.Log2CtbSize
	if maxTrafo > 5 {
		maxTrafo = 5
	}
	if sps.Log2MaxTrafoSize > maxTrafo {
		return nil, invalid("log2_diff_max_min_luma_transform_block_size", "max transform block size out of range: %d", sps.Log2MaxTrafoSize)
	}

	pf, err := resolvePixelFormat(sps.ChromaFormatIdc, sps.BitDepthChroma)
	if err != nil {
		if err2 := ctx.warn("chroma_format_idc", "%v", err); err2 != nil {
			return nil, err2
		}
	} else {
		sps.PixelFormat = applyVUIPixelFormatRewrites(pf, &sps.VUI)
	}

	if r.BitsLeft() < 0 {
		return nil, invalid("sps_rbsp", "overread SPS")
	}

	return sps, nil
}

func ceilDiv(v, d uint32) uint32 {
	return (v + d - 1) / d
}

// parseSPSRangeExtension implements spec.md section 12's supplemented
// range-extension flags (sps_range_extensions in hevc_ps.c): nine
// independently-gated tool-enable bits in bitstream order.
func parseSPSRangeExtension(r BitSource) (*SPSRangeExtension, error) {
	e := &SPSRangeExtension{}
	fields := []*bool{
		&e.TransformSkipRotationEnabledFlag,
		&e.TransformSkipContextEnabledFlag,
		&e.ImplicitRDPCMEnabledFlag,
		&e.ExplicitRDPCMEnabledFlag,
		&e.ExtendedPrecisionProcessingFlag,
		&e.IntraSmoothingDisabledFlag,
		&e.HighPrecisionOffsetsEnabledFlag,
		&e.PersistentRiceAdaptationEnabledFlag,
		&e.CABACBypassAlignmentEnabledFlag,
	}
	for _, f := range fields {
		b, err := r.ReadBit()
		if err != nil {
			return nil, truncated("sps_range_extension", err)
		}
		*f = b == 1
	}
	return e, nil
}

// parseSPSMultilayerExtension implements the single inter_view_mv_vert
// constraint flag (spec.md section 12 supplement).
func parseSPSMultilayerExtension(r BitSource) (*SPSMultilayerExtension, error) {
	b, err := r.ReadBit()
	if err != nil {
		return nil, truncated("inter_view_mv_vert_constraint_flag", err)
	}
	return &SPSMultilayerExtension{InterViewMVVertConstraintFlag: b == 1}, nil
}
