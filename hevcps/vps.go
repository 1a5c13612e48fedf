package hevcps

// SubLayerOrdering is the per-sub-layer DPB sizing triple shared by the
// VPS and SPS (spec.md sections 3.4, 3.5).
type SubLayerOrdering struct {
	MaxDecPicBuffering uint32 // +1
	NumReorderPics     uint32
	MaxLatencyIncrease uint32 // signed via -1 bias; 0 means "no limit"
}

// HRDLayerSet tags one HRDParameters block to the layer set it describes.
type HRDLayerSet struct {
	LayerSetIdx uint32
	HRD         HRDParameters
}

// VPS is the Video Parameter Set (spec.md section 3.4).
type VPS struct {
	ID                     uint8
	BaseLayerInternalFlag  bool
	BaseLayerAvailableFlag bool
	MaxLayers              uint32 // +1
	MaxSubLayers           uint32 // +1
	TemporalIDNestingFlag  bool

	PTL PTL

	SubLayerOrderingInfoPresentFlag bool
	SubLayerOrdering                []SubLayerOrdering

	MaxLayerID    uint32
	NumLayerSets  uint32 // +1
	LayerIDIncluded [][]bool

	TimingInfoPresentFlag        bool
	NumUnitsInTick               uint32
	TimeScale                    uint32
	POCProportionalToTimingFlag  bool
	NumTicksPOCDiffOne           uint32
	HRD                          []HRDLayerSet

	ExtensionFlag bool
	Extension     *VPSExtension
}

// decodeVPS implements spec.md section 4.2: base VPS syntax through the
// trailing extension_flag. The extension body itself is parsed by
// decodeVPSExtension once byte-aligned.
func decodeVPS(r BitSource, ctx *Context) (*VPS, error) {
	vps := &VPS{}

	id, err := r.ReadBits(4)
	if err != nil {
		return nil, truncated("vps_video_parameter_set_id", err)
	}
	vps.ID = uint8(id)

	b, err := r.ReadBit()
	if err != nil {
		return nil, truncated("vps_base_layer_internal_flag", err)
	}
	vps.BaseLayerInternalFlag = b == 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vps_base_layer_available_flag", err)
	}
	vps.BaseLayerAvailableFlag = b == 1

	v, err := r.ReadBits(6)
	if err != nil {
		return nil, truncated("vps_max_layers_minus1", err)
	}
	vps.MaxLayers = v + 1

	v, err = r.ReadBits(3)
	if err != nil {
		return nil, truncated("vps_max_sub_layers_minus1", err)
	}
	vps.MaxSubLayers = v + 1

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vps_temporal_id_nesting_flag", err)
	}
	vps.TemporalIDNestingFlag = b == 1

	marker, err := r.ReadBits(16)
	if err != nil {
		return nil, truncated("vps_reserved_0xffff_16bits", err)
	}
	if marker != 0xffff {
		return nil, invalid("vps_reserved_0xffff_16bits", "expected 0xffff, got 0x%x", marker)
	}

	ptl, err := parsePTL(r, int(vps.MaxSubLayers), true)
	if err != nil {
		return nil, err
	}
	vps.PTL = ptl

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vps_sub_layer_ordering_info_present_flag", err)
	}
	vps.SubLayerOrderingInfoPresentFlag = b == 1

	vps.SubLayerOrdering = make([]SubLayerOrdering, vps.MaxSubLayers)
	start := 0
	if !vps.SubLayerOrderingInfoPresentFlag {
		start = int(vps.MaxSubLayers) - 1
	}
	for i := start; i < int(vps.MaxSubLayers); i++ {
		dpb, err := r.ReadUE()
		if err != nil {
			return nil, truncated("vps_max_dec_pic_buffering_minus1", err)
		}
		reorder, err := r.ReadUE()
		if err != nil {
			return nil, truncated("vps_max_num_reorder_pics", err)
		}
		latency, err := r.ReadUE()
		if err != nil {
			return nil, truncated("vps_max_latency_increase_plus1", err)
		}
		o := SubLayerOrdering{MaxDecPicBuffering: dpb + 1, NumReorderPics: reorder, MaxLatencyIncrease: latency}
		if !vps.SubLayerOrderingInfoPresentFlag {
			for j := 0; j < int(vps.MaxSubLayers); j++ {
				vps.SubLayerOrdering[j] = o
			}
			break
		}
		vps.SubLayerOrdering[i] = o
	}

	v, err = r.ReadBits(6)
	if err != nil {
		return nil, truncated("vps_max_layer_id", err)
	}
	vps.MaxLayerID = v

	nls, err := r.ReadUE()
	if err != nil {
		return nil, truncated("vps_num_layer_sets_minus1", err)
	}
	if nls+1 > 1024 {
		return nil, invalid("vps_num_layer_sets_minus1", "num_layer_sets %d exceeds 1024", nls+1)
	}
	vps.NumLayerSets = nls + 1

	vps.LayerIDIncluded = make([][]bool, vps.NumLayerSets)
	for i := 1; i < int(vps.NumLayerSets); i++ {
		vps.LayerIDIncluded[i] = make([]bool, vps.MaxLayerID+1)
		for j := 0; j <= int(vps.MaxLayerID); j++ {
			b, err := r.ReadBit()
			if err != nil {
				return nil, truncated("layer_id_included_flag", err)
			}
			vps.LayerIDIncluded[i][j] = b == 1
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vps_timing_info_present_flag", err)
	}
	vps.TimingInfoPresentFlag = b == 1
	if vps.TimingInfoPresentFlag {
		vps.NumUnitsInTick, err = r.ReadBits(32)
		if err != nil {
			return nil, truncated("vps_num_units_in_tick", err)
		}
		vps.TimeScale, err = r.ReadBits(32)
		if err != nil {
			return nil, truncated("vps_time_scale", err)
		}
		b, err = r.ReadBit()
		if err != nil {
			return nil, truncated("vps_poc_proportional_to_timing_flag", err)
		}
		vps.POCProportionalToTimingFlag = b == 1
		if vps.POCProportionalToTimingFlag {
			n, err := r.ReadUE()
			if err != nil {
				return nil, truncated("vps_num_ticks_poc_diff_one_minus1", err)
			}
			vps.NumTicksPOCDiffOne = n + 1
		}

		numHRD, err := r.ReadUE()
		if err != nil {
			return nil, truncated("vps_num_hrd_parameters", err)
		}
		vps.HRD = make([]HRDLayerSet, numHRD)
		for i := range vps.HRD {
			idx, err := r.ReadUE()
			if err != nil {
				return nil, truncated("hrd_layer_set_idx", err)
			}
			commonInfPresent := true
			if i > 0 {
				b, err := r.ReadBit()
				if err != nil {
					return nil, truncated("cprms_present_flag", err)
				}
				commonInfPresent = b == 1
			}
			hrd, err := parseHRDParameters(r, commonInfPresent, int(vps.MaxSubLayers)-1)
			if err != nil {
				return nil, err
			}
			vps.HRD[i] = HRDLayerSet{LayerSetIdx: idx, HRD: hrd}
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vps_extension_flag", err)
	}
	vps.ExtensionFlag = b == 1

	if vps.ExtensionFlag {
		r.AlignToByte()
		ext, err := decodeVPSExtension(r, ctx, vps)
		if err != nil {
			return nil, err
		}
		vps.Extension = ext
	}

	return vps, nil
}

// RepFormatFor resolves the representation format that applies to a given
// VPS layer index, following either an explicit per-layer rep_format_idx
// or the sole rep_format[0] fallback (spec.md section 4.4 step 4).
func (v *VPS) RepFormatFor(layerIdx int) *RepFormat {
	if v.Extension == nil || len(v.Extension.RepFormats) == 0 {
		return nil
	}
	idx := 0
	if layerIdx < len(v.Extension.VPSRepFormatIdx) {
		idx = v.Extension.VPSRepFormatIdx[layerIdx]
	}
	if idx < 0 || idx >= len(v.Extension.RepFormats) {
		idx = 0
	}
	return &v.Extension.RepFormats[idx]
}
