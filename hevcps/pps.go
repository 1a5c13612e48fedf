package hevcps

// ConformanceOffsets is a left/top/right/bottom offset quadruple shared
// by the PPS multilayer extension's resampling windows (spec.md
// section 4.6).
type ConformanceOffsets struct {
	LeftOffset, TopOffset, RightOffset, BottomOffset int32
}

// ChromaQPOffset is one entry of a PPS range extension's
// chroma_qp_offset_list (spec.md section 4.6).
type ChromaQPOffset struct {
	CbOffset, CrOffset int32
}

// PPSRangeExtension holds the pps_range_extension() fields (spec.md
// section 4.6), present when the SPS profile is Range Extensions and
// pps_range_extensions_flag is set.
type PPSRangeExtension struct {
	Log2MaxTransformSkipBlockSize    uint32 // +2, default 2
	CrossComponentPredictionEnabled  bool
	ChromaQPOffsetListEnabled        bool
	DiffCuChromaQPOffsetDepth        uint32
	ChromaQPOffsetList               []ChromaQPOffset
	Log2SAOOffsetScaleLuma           uint32
	Log2SAOOffsetScaleChroma         uint32
}

// RefLocOffset is one per-reference-layer resampling entry of the PPS
// multilayer extension (spec.md section 4.6).
type RefLocOffset struct {
	RefLocOffsetLayerID uint32

	ScaledRefLayerOffsetPresentFlag bool
	ScaledRefWindow                 ConformanceOffsets

	RefRegionOffsetPresentFlag bool
	RefWindow                  ConformanceOffsets

	ResamplePhaseSetPresentFlag bool
	PhaseHorLuma                uint32
	PhaseVerLuma                uint32
	PhaseHorChroma              int32 // stored as value-8
	PhaseVerChroma              int32 // stored as value-8
}

// PPSMultilayerExtension holds the pps_multilayer_extension() fields
// (spec.md section 4.6).
type PPSMultilayerExtension struct {
	PocResetInfoPresentFlag bool
	InferScalingListFlag    bool
	ScalingListRefLayerID   uint32

	RefLocOffsets []RefLocOffset

	ColourMappingEnabledFlag bool
	LUT3D                    *LUT3D
}

// PPS is the Picture Parameter Set (spec.md section 3.6).
type PPS struct {
	ID    uint32
	SPSID uint32

	DependentSliceSegmentsEnabledFlag bool
	OutputFlagPresentFlag             bool
	NumExtraSliceHeaderBits           uint32
	SignDataHidingFlag                bool
	CabacInitPresentFlag              bool

	NumRefIdxL0DefaultActive uint32 // +1
	NumRefIdxL1DefaultActive uint32 // +1
	InitQPMinus26            int32

	ConstrainedIntraPredFlag bool
	TransformSkipEnabledFlag bool
	CuQPDeltaEnabledFlag     bool
	DiffCuQPDeltaDepth       uint32

	CbQPOffset int32
	CrQPOffset int32

	SliceChromaQPOffsetsPresentFlag bool
	WeightedPredFlag                bool
	WeightedBipredFlag              bool
	TransquantBypassEnableFlag      bool
	TilesEnabledFlag                bool
	EntropyCodingSyncEnabledFlag    bool

	NumTileColumns uint32 // +1, default 1
	NumTileRows    uint32 // +1, default 1
	UniformSpacing bool   // default true
	ColumnWidth    []uint32
	RowHeight      []uint32

	LoopFilterAcrossTilesEnabledFlag     bool // default true
	LoopFilterAcrossSlicesEnabledFlag    bool
	DeblockingFilterControlPresentFlag   bool
	DeblockingFilterOverrideEnabledFlag  bool
	DeblockingFilterDisabledFlag         bool
	BetaOffsetDiv2                       int32
	TcOffsetDiv2                         int32

	ScalingListDataPresentFlag bool
	ScalingList                *ScalingList

	ListsModificationPresentFlag bool
	Log2ParallelMergeLevel       uint32 // +2

	SliceSegmentHeaderExtensionPresentFlag bool

	ExtensionPresentFlag        bool
	RangeExtensionFlag          bool
	MultilayerExtensionFlag     bool
	RangeExtension              *PPSRangeExtension
	MultilayerExtension         *PPSMultilayerExtension

	Tiles *TileGeometry
}

// decodePPS implements spec.md section 4.6's PPS syntax, followed by a
// finalize step building tile geometry from the companion SPS. sps may
// be nil (the id was not found in the registry); in that case several
// bound checks and the finalize step are skipped, mirroring hevc_ps.c's
// `if (sps && ...)` guards.
func decodePPS(r BitSource, ctx *Context, lookupSPS func(id uint32) (*SPS, bool)) (*PPS, error) {
	pps := &PPS{
		NumTileColumns:                   1,
		NumTileRows:                      1,
		UniformSpacing:                   true,
		LoopFilterAcrossTilesEnabledFlag: true,
	}

	id, err := r.ReadUE()
	if err != nil {
		return nil, truncated("pps_pic_parameter_set_id", err)
	}
	if id >= 64 {
		return nil, invalid("pps_pic_parameter_set_id", "pps_id %d out of range", id)
	}
	pps.ID = id

	spsID, err := r.ReadUE()
	if err != nil {
		return nil, truncated("pps_seq_parameter_set_id", err)
	}
	if spsID >= 16 {
		return nil, invalid("pps_seq_parameter_set_id", "sps_id %d out of range", spsID)
	}
	pps.SPSID = spsID

	var sps *SPS
	if lookupSPS != nil {
		sps, _ = lookupSPS(spsID)
	}

	b, err := r.ReadBit()
	if err != nil {
		return nil, truncated("dependent_slice_segments_enabled_flag", err)
	}
	pps.DependentSliceSegmentsEnabledFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("output_flag_present_flag", err)
	}
	pps.OutputFlagPresentFlag = b == 1

	v, err := r.ReadBits(3)
	if err != nil {
		return nil, truncated("num_extra_slice_header_bits", err)
	}
	pps.NumExtraSliceHeaderBits = v

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("sign_data_hiding_enabled_flag", err)
	}
	pps.SignDataHidingFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("cabac_init_present_flag", err)
	}
	pps.CabacInitPresentFlag = b == 1

	n, err := r.ReadUE()
	if err != nil {
		return nil, truncated("num_ref_idx_l0_default_active_minus1", err)
	}
	pps.NumRefIdxL0DefaultActive = n + 1

	n, err = r.ReadUE()
	if err != nil {
		return nil, truncated("num_ref_idx_l1_default_active_minus1", err)
	}
	pps.NumRefIdxL1DefaultActive = n + 1

	s, err := r.ReadSE()
	if err != nil {
		return nil, truncated("init_qp_minus26", err)
	}
	pps.InitQPMinus26 = s

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("constrained_intra_pred_flag", err)
	}
	pps.ConstrainedIntraPredFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("transform_skip_enabled_flag", err)
	}
	pps.TransformSkipEnabledFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("cu_qp_delta_enabled_flag", err)
	}
	pps.CuQPDeltaEnabledFlag = b == 1

	if pps.CuQPDeltaEnabledFlag {
		d, err := r.ReadUE()
		if err != nil {
			return nil, truncated("diff_cu_qp_delta_depth", err)
		}
		pps.DiffCuQPDeltaDepth = d
	}
	if sps != nil && pps.DiffCuQPDeltaDepth > sps.Log2DiffMaxMinCbSize {
		return nil, invalid("diff_cu_qp_delta_depth", "diff_cu_qp_delta_depth %d exceeds log2_diff_max_min_cb_size %d", pps.DiffCuQPDeltaDepth, sps.Log2DiffMaxMinCbSize)
	}

	s, err = r.ReadSE()
	if err != nil {
		return nil, truncated("pps_cb_qp_offset", err)
	}
	if s < -12 || s > 12 {
		return nil, invalid("pps_cb_qp_offset", "out of range: %d", s)
	}
	pps.CbQPOffset = s

	s, err = r.ReadSE()
	if err != nil {
		return nil, truncated("pps_cr_qp_offset", err)
	}
	if s < -12 || s > 12 {
		return nil, invalid("pps_cr_qp_offset", "out of range: %d", s)
	}
	pps.CrQPOffset = s

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("pps_slice_chroma_qp_offsets_present_flag", err)
	}
	pps.SliceChromaQPOffsetsPresentFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("weighted_pred_flag", err)
	}
	pps.WeightedPredFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("weighted_bipred_flag", err)
	}
	pps.WeightedBipredFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("transquant_bypass_enabled_flag", err)
	}
	pps.TransquantBypassEnableFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("tiles_enabled_flag", err)
	}
	pps.TilesEnabledFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("entropy_coding_sync_enabled_flag", err)
	}
	pps.EntropyCodingSyncEnabledFlag = b == 1

	if pps.TilesEnabledFlag {
		n, err := r.ReadUE()
		if err != nil {
			return nil, truncated("num_tile_columns_minus1", err)
		}
		pps.NumTileColumns = n + 1
		n, err = r.ReadUE()
		if err != nil {
			return nil, truncated("num_tile_rows_minus1", err)
		}
		pps.NumTileRows = n + 1

		if sps != nil && (pps.NumTileColumns == 0 || pps.NumTileColumns > sps.CtbWidth) {
			return nil, invalid("num_tile_columns_minus1", "out of range: %d", pps.NumTileColumns-1)
		}
		if sps != nil && (pps.NumTileRows == 0 || pps.NumTileRows > sps.CtbHeight) {
			return nil, invalid("num_tile_rows_minus1", "out of range: %d", pps.NumTileRows-1)
		}

		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("uniform_spacing_flag", err)
		}
		pps.UniformSpacing = b == 1

		if !pps.UniformSpacing {
			pps.ColumnWidth = make([]uint32, pps.NumTileColumns)
			pps.RowHeight = make([]uint32, pps.NumTileRows)

			var sum uint32
			for i := uint32(0); i < pps.NumTileColumns-1; i++ {
				w, err := r.ReadUE()
				if err != nil {
					return nil, truncated("column_width_minus1", err)
				}
				pps.ColumnWidth[i] = w + 1
				sum += pps.ColumnWidth[i]
			}
			if sps != nil {
				if sum >= sps.CtbWidth {
					return nil, invalid("column_width_minus1", "invalid tile widths")
				}
				pps.ColumnWidth[pps.NumTileColumns-1] = sps.CtbWidth - sum
			}

			sum = 0
			for i := uint32(0); i < pps.NumTileRows-1; i++ {
				h, err := r.ReadUE()
				if err != nil {
					return nil, truncated("row_height_minus1", err)
				}
				pps.RowHeight[i] = h + 1
				sum += pps.RowHeight[i]
			}
			if sps != nil {
				if sum >= sps.CtbHeight {
					return nil, invalid("row_height_minus1", "invalid tile heights")
				}
				pps.RowHeight[pps.NumTileRows-1] = sps.CtbHeight - sum
			}
		}

		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("loop_filter_across_tiles_enabled_flag", err)
		}
		pps.LoopFilterAcrossTilesEnabledFlag = b == 1
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("pps_loop_filter_across_slices_enabled_flag", err)
	}
	pps.LoopFilterAcrossSlicesEnabledFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("deblocking_filter_control_present_flag", err)
	}
	pps.DeblockingFilterControlPresentFlag = b == 1

	if pps.DeblockingFilterControlPresentFlag {
		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("deblocking_filter_override_enabled_flag", err)
		}
		pps.DeblockingFilterOverrideEnabledFlag = b == 1

		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("pps_deblocking_filter_disabled_flag", err)
		}
		pps.DeblockingFilterDisabledFlag = b == 1

		if !pps.DeblockingFilterDisabledFlag {
			s, err := r.ReadSE()
			if err != nil {
				return nil, truncated("pps_beta_offset_div2", err)
			}
			if s < -6 || s > 6 {
				return nil, invalid("pps_beta_offset_div2", "out of range: %d", s)
			}
			pps.BetaOffsetDiv2 = s

			s, err = r.ReadSE()
			if err != nil {
				return nil, truncated("pps_tc_offset_div2", err)
			}
			if s < -6 || s > 6 {
				return nil, invalid("pps_tc_offset_div2", "out of range: %d", s)
			}
			pps.TcOffsetDiv2 = s
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("pps_scaling_list_data_present_flag", err)
	}
	pps.ScalingListDataPresentFlag = b == 1

	if pps.ScalingListDataPresentFlag {
		chromaFormatIdc := uint32(1)
		if sps != nil {
			chromaFormatIdc = sps.ChromaFormatIdc
		}
		sl, err := parseScalingListData(r, chromaFormatIdc)
		if err != nil {
			return nil, err
		}
		pps.ScalingList = sl
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("lists_modification_present_flag", err)
	}
	pps.ListsModificationPresentFlag = b == 1

	n, err = r.ReadUE()
	if err != nil {
		return nil, truncated("log2_parallel_merge_level_minus2", err)
	}
	pps.Log2ParallelMergeLevel = n + 2
	if sps != nil && pps.Log2ParallelMergeLevel > sps.Log2CtbSize {
		return nil, invalid("log2_parallel_merge_level_minus2", "out of range: %d", pps.Log2ParallelMergeLevel-2)
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("slice_segment_header_extension_present_flag", err)
	}
	pps.SliceSegmentHeaderExtensionPresentFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("pps_extension_present_flag", err)
	}
	pps.ExtensionPresentFlag = b == 1

	if pps.ExtensionPresentFlag {
		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("pps_range_extension_flag", err)
		}
		pps.RangeExtensionFlag = b == 1

		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("pps_multilayer_extension_flag", err)
		}
		pps.MultilayerExtensionFlag = b == 1

		if _, err := r.ReadBits(6); err != nil { // pps_extension_6bits, reserved
			return nil, truncated("pps_extension_6bits", err)
		}

		isRangeExtProfile := sps != nil && sps.PTL.General.ProfileIDC == profileIdcRangeExtensions
		if isRangeExtProfile && pps.RangeExtensionFlag {
			ext, err := parsePPSRangeExtension(r, pps)
			if err != nil {
				return nil, err
			}
			pps.RangeExtension = ext
		}
		if pps.MultilayerExtensionFlag {
			ext, err := parsePPSMultilayerExtension(r, pps)
			if err != nil {
				return nil, err
			}
			pps.MultilayerExtension = ext
		}
	}

	if sps != nil {
		geo, err := buildTileGeometry(pps, sps)
		if err != nil {
			return nil, err
		}
		pps.Tiles = geo
	}

	if r.BitsLeft() < 0 {
		if err := ctx.warn("pps", "overread by %d bits", -r.BitsLeft()); err != nil {
			return nil, err
		}
	}

	return pps, nil
}

// profileIdcRangeExtensions is the HEVC Range Extensions profile_idc
// value (FF_PROFILE_HEVC_REXT in hevc_ps.c), gating pps_range_extensions().
const profileIdcRangeExtensions = 4

// parsePPSRangeExtension implements spec.md section 4.6's range
// extension, grounded on hevc_ps.c's pps_range_extensions.
func parsePPSRangeExtension(r BitSource, pps *PPS) (*PPSRangeExtension, error) {
	ext := &PPSRangeExtension{Log2MaxTransformSkipBlockSize: 2}

	if pps.TransformSkipEnabledFlag {
		n, err := r.ReadUE()
		if err != nil {
			return nil, truncated("log2_max_transform_skip_block_size_minus2", err)
		}
		ext.Log2MaxTransformSkipBlockSize = n + 2
	}

	b, err := r.ReadBit()
	if err != nil {
		return nil, truncated("cross_component_prediction_enabled_flag", err)
	}
	ext.CrossComponentPredictionEnabled = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("chroma_qp_offset_list_enabled_flag", err)
	}
	ext.ChromaQPOffsetListEnabled = b == 1

	if ext.ChromaQPOffsetListEnabled {
		n, err := r.ReadUE()
		if err != nil {
			return nil, truncated("diff_cu_chroma_qp_offset_depth", err)
		}
		ext.DiffCuChromaQPOffsetDepth = n

		lenMinus1, err := r.ReadUE()
		if err != nil {
			return nil, truncated("chroma_qp_offset_list_len_minus1", err)
		}
		if lenMinus1 > 5 {
			return nil, invalid("chroma_qp_offset_list_len_minus1", "shall be in [0,5], got %d", lenMinus1)
		}
		ext.ChromaQPOffsetList = make([]ChromaQPOffset, lenMinus1+1)
		for i := range ext.ChromaQPOffsetList {
			cb, err := r.ReadSE()
			if err != nil {
				return nil, truncated("cb_qp_offset_list", err)
			}
			cr, err := r.ReadSE()
			if err != nil {
				return nil, truncated("cr_qp_offset_list", err)
			}
			ext.ChromaQPOffsetList[i] = ChromaQPOffset{CbOffset: cb, CrOffset: cr}
		}
	}

	n, err := r.ReadUE()
	if err != nil {
		return nil, truncated("log2_sao_offset_scale_luma", err)
	}
	ext.Log2SAOOffsetScaleLuma = n

	n, err = r.ReadUE()
	if err != nil {
		return nil, truncated("log2_sao_offset_scale_chroma", err)
	}
	ext.Log2SAOOffsetScaleChroma = n

	return ext, nil
}

// parsePPSMultilayerExtension implements spec.md section 4.6's
// multilayer extension, grounded on hevc_ps.c's pps_multilayer_extensions.
func parsePPSMultilayerExtension(r BitSource, pps *PPS) (*PPSMultilayerExtension, error) {
	ext := &PPSMultilayerExtension{}

	b, err := r.ReadBit()
	if err != nil {
		return nil, truncated("poc_reset_info_present_flag", err)
	}
	ext.PocResetInfoPresentFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("pps_infer_scaling_list_flag", err)
	}
	ext.InferScalingListFlag = b == 1

	if ext.InferScalingListFlag {
		v, err := r.ReadBits(6)
		if err != nil {
			return nil, truncated("pps_scaling_list_ref_layer_id", err)
		}
		ext.ScalingListRefLayerID = v
	}

	n, err := r.ReadUE()
	if err != nil {
		return nil, truncated("num_ref_loc_offsets", err)
	}
	ext.RefLocOffsets = make([]RefLocOffset, n)
	for i := range ext.RefLocOffsets {
		o := RefLocOffset{}

		v, err := r.ReadBits(6)
		if err != nil {
			return nil, truncated("ref_loc_offset_layer_id", err)
		}
		o.RefLocOffsetLayerID = v

		b, err := r.ReadBit()
		if err != nil {
			return nil, truncated("scaled_ref_layer_offset_present_flag", err)
		}
		o.ScaledRefLayerOffsetPresentFlag = b == 1
		if o.ScaledRefLayerOffsetPresentFlag {
			left, err := r.ReadSE()
			if err != nil {
				return nil, truncated("scaled_ref_layer_left_offset", err)
			}
			top, err := r.ReadSE()
			if err != nil {
				return nil, truncated("scaled_ref_layer_top_offset", err)
			}
			right, err := r.ReadSE()
			if err != nil {
				return nil, truncated("scaled_ref_layer_right_offset", err)
			}
			bottom, err := r.ReadSE()
			if err != nil {
				return nil, truncated("scaled_ref_layer_bottom_offset", err)
			}
			o.ScaledRefWindow = ConformanceOffsets{
				LeftOffset: left << 1, TopOffset: top << 1,
				RightOffset: right << 1, BottomOffset: bottom << 1,
			}
		}

		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("ref_region_offset_present_flag", err)
		}
		o.RefRegionOffsetPresentFlag = b == 1
		if o.RefRegionOffsetPresentFlag {
			left, err := r.ReadSE()
			if err != nil {
				return nil, truncated("ref_region_left_offset", err)
			}
			top, err := r.ReadSE()
			if err != nil {
				return nil, truncated("ref_region_top_offset", err)
			}
			right, err := r.ReadSE()
			if err != nil {
				return nil, truncated("ref_region_right_offset", err)
			}
			bottom, err := r.ReadSE()
			if err != nil {
				return nil, truncated("ref_region_bottom_offset", err)
			}
			o.RefWindow = ConformanceOffsets{
				LeftOffset: left << 1, TopOffset: top << 1,
				RightOffset: right << 1, BottomOffset: bottom << 1,
			}
		}

		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("resample_phase_set_present_flag", err)
		}
		o.ResamplePhaseSetPresentFlag = b == 1
		if o.ResamplePhaseSetPresentFlag {
			hl, err := r.ReadUE()
			if err != nil {
				return nil, truncated("phase_hor_luma", err)
			}
			o.PhaseHorLuma = hl
			vl, err := r.ReadUE()
			if err != nil {
				return nil, truncated("phase_ver_luma", err)
			}
			o.PhaseVerLuma = vl
			hc, err := r.ReadUE()
			if err != nil {
				return nil, truncated("phase_hor_chroma_plus8", err)
			}
			o.PhaseHorChroma = int32(hc) - 8
			vc, err := r.ReadUE()
			if err != nil {
				return nil, truncated("phase_ver_chroma_plus8", err)
			}
			o.PhaseVerChroma = int32(vc) - 8
		}

		ext.RefLocOffsets[i] = o
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("colour_mapping_enabled_flag", err)
	}
	ext.ColourMappingEnabledFlag = b == 1
	if ext.ColourMappingEnabledFlag {
		lut, err := parseLUT3D(r)
		if err != nil {
			return nil, err
		}
		ext.LUT3D = lut
	}

	return ext, nil
}
