package hevcps

// SubLayerHRD holds the per-CPB-entry arrays sized by cpb_cnt_minus1+1,
// per spec.md section 3.2.
type SubLayerHRD struct {
	BitRateValue   []uint32
	CPBSizeValue   []uint32
	CPBSizeDUValue []uint32 // only when sub_pic_hrd_params_present_flag
	BitRateDUValue []uint32 // only when sub_pic_hrd_params_present_flag
	CBRFlag        []bool
}

func parseSubLayerHRD(r BitSource, cpbCnt int, subPicPresent bool) (SubLayerHRD, error) {
	var s SubLayerHRD
	n := cpbCnt + 1
	s.BitRateValue = make([]uint32, n)
	s.CPBSizeValue = make([]uint32, n)
	s.CBRFlag = make([]bool, n)
	if subPicPresent {
		s.CPBSizeDUValue = make([]uint32, n)
		s.BitRateDUValue = make([]uint32, n)
	}
	for i := 0; i < n; i++ {
		v, err := r.ReadUE()
		if err != nil {
			return s, truncated("bit_rate_value_minus1", err)
		}
		s.BitRateValue[i] = v + 1

		v, err = r.ReadUE()
		if err != nil {
			return s, truncated("cpb_size_value_minus1", err)
		}
		s.CPBSizeValue[i] = v + 1

		if subPicPresent {
			v, err = r.ReadUE()
			if err != nil {
				return s, truncated("cpb_size_du_value_minus1", err)
			}
			s.CPBSizeDUValue[i] = v + 1

			v, err = r.ReadUE()
			if err != nil {
				return s, truncated("bit_rate_du_value_minus1", err)
			}
			s.BitRateDUValue[i] = v + 1
		}

		b, err := r.ReadBit()
		if err != nil {
			return s, truncated("cbr_flag", err)
		}
		s.CBRFlag[i] = b == 1
	}
	return s, nil
}

// SubPicHRDParams are the sub-picture HRD fields, present only when
// sub_pic_hrd_params_present_flag is set.
type SubPicHRDParams struct {
	TickDivisor                          uint32 // +2
	DUCPBRemovalDelayIncrementLength     uint32 // +1
	SubPicCPBParamsInPicTimingSEIFlag    bool
	DPBOutputDelayDULength               uint32 // +1
}

// HRDSubLayer is the per-sub-layer portion of HRDParameters.
type HRDSubLayer struct {
	FixedPicRateGeneralFlag   bool
	FixedPicRateWithinCVSFlag bool
	LowDelayHRDFlag           bool
	CPBCntMinus1              uint32
	ElementalDurationInTC     uint32
	NAL                       SubLayerHRD
	VCL                       SubLayerHRD
}

// HRDParameters is the Hypothetical Reference Decoder parameter block
// (spec.md section 3.2).
type HRDParameters struct {
	NALHRDParametersPresentFlag   bool
	VCLHRDParametersPresentFlag   bool
	SubPicHRDParamsPresentFlag    bool
	SubPicHRDParams               SubPicHRDParams
	BitRateScale                  uint32
	CPBSizeScale                  uint32
	CPBSizeDUScale                uint32
	InitialCPBRemovalDelayLength  uint32 // +1; defaults to 23 when no HRD present
	AUCPBRemovalDelayLength       uint32 // +1
	DPBOutputDelayLength          uint32 // +1

	SubLayer []HRDSubLayer
}

// parseHRDParameters implements spec.md section 4.1's parse_hrd_parameters:
// the common_inf block (gated by commonInfPresent) followed by
// maxSubLayersMinus1+1 per-sub-layer blocks. initial_cpb_removal_delay_length
// defaults to 23 when neither NAL nor VCL HRD is present, per spec.md
// section 3.2's explicit default-on-absence rule.
func parseHRDParameters(r BitSource, commonInfPresent bool, maxSubLayersMinus1 int) (HRDParameters, error) {
	h := HRDParameters{InitialCPBRemovalDelayLength: 23}

	if commonInfPresent {
		b, err := r.ReadBit()
		if err != nil {
			return h, truncated("nal_hrd_parameters_present_flag", err)
		}
		h.NALHRDParametersPresentFlag = b == 1

		b, err = r.ReadBit()
		if err != nil {
			return h, truncated("vcl_hrd_parameters_present_flag", err)
		}
		h.VCLHRDParametersPresentFlag = b == 1

		if h.NALHRDParametersPresentFlag || h.VCLHRDParametersPresentFlag {
			b, err = r.ReadBit()
			if err != nil {
				return h, truncated("sub_pic_hrd_params_present_flag", err)
			}
			h.SubPicHRDParamsPresentFlag = b == 1

			if h.SubPicHRDParamsPresentFlag {
				v, err := r.ReadBits(8)
				if err != nil {
					return h, truncated("tick_divisor_minus2", err)
				}
				h.SubPicHRDParams.TickDivisor = v + 2

				v, err = r.ReadBits(5)
				if err != nil {
					return h, truncated("du_cpb_removal_delay_increment_length_minus1", err)
				}
				h.SubPicHRDParams.DUCPBRemovalDelayIncrementLength = v + 1

				bit, err := r.ReadBit()
				if err != nil {
					return h, truncated("sub_pic_cpb_params_in_pic_timing_sei_flag", err)
				}
				h.SubPicHRDParams.SubPicCPBParamsInPicTimingSEIFlag = bit == 1

				v, err = r.ReadBits(5)
				if err != nil {
					return h, truncated("dpb_output_delay_du_length_minus1", err)
				}
				h.SubPicHRDParams.DPBOutputDelayDULength = v + 1
			}

			v, err := r.ReadBits(4)
			if err != nil {
				return h, truncated("bit_rate_scale", err)
			}
			h.BitRateScale = v

			v, err = r.ReadBits(4)
			if err != nil {
				return h, truncated("cpb_size_scale", err)
			}
			h.CPBSizeScale = v

			if h.SubPicHRDParamsPresentFlag {
				v, err = r.ReadBits(4)
				if err != nil {
					return h, truncated("cpb_size_du_scale", err)
				}
				h.CPBSizeDUScale = v
			}

			v, err = r.ReadBits(5)
			if err != nil {
				return h, truncated("initial_cpb_removal_delay_length_minus1", err)
			}
			h.InitialCPBRemovalDelayLength = v + 1

			v, err = r.ReadBits(5)
			if err != nil {
				return h, truncated("au_cpb_removal_delay_length_minus1", err)
			}
			h.AUCPBRemovalDelayLength = v + 1

			v, err = r.ReadBits(5)
			if err != nil {
				return h, truncated("dpb_output_delay_length_minus1", err)
			}
			h.DPBOutputDelayLength = v + 1
		}
	}

	h.SubLayer = make([]HRDSubLayer, maxSubLayersMinus1+1)
	for i := 0; i <= maxSubLayersMinus1; i++ {
		sl := &h.SubLayer[i]

		b, err := r.ReadBit()
		if err != nil {
			return h, truncated("fixed_pic_rate_general_flag", err)
		}
		sl.FixedPicRateGeneralFlag = b == 1

		if !sl.FixedPicRateGeneralFlag {
			b, err = r.ReadBit()
			if err != nil {
				return h, truncated("fixed_pic_rate_within_cvs_flag", err)
			}
			sl.FixedPicRateWithinCVSFlag = b == 1
		} else {
			// Normative default when absent: inherits the general flag
			// for the same sub-layer (spec.md section 12 resolves the
			// source's FIXME here per the specification text).
			sl.FixedPicRateWithinCVSFlag = true
		}

		if sl.FixedPicRateWithinCVSFlag {
			v, err := r.ReadUE()
			if err != nil {
				return h, truncated("elemental_duration_in_tc_minus1", err)
			}
			sl.ElementalDurationInTC = v + 1
		} else {
			b, err = r.ReadBit()
			if err != nil {
				return h, truncated("low_delay_hrd_flag", err)
			}
			sl.LowDelayHRDFlag = b == 1
		}

		if !sl.LowDelayHRDFlag {
			v, err := r.ReadUE()
			if err != nil {
				return h, truncated("cpb_cnt_minus1", err)
			}
			if v > 31 {
				return h, invalid("cpb_cnt_minus1", "cpb_cnt_minus1 %d exceeds 31", v)
			}
			sl.CPBCntMinus1 = v
		}

		if h.NALHRDParametersPresentFlag {
			s, err := parseSubLayerHRD(r, int(sl.CPBCntMinus1), h.SubPicHRDParamsPresentFlag)
			if err != nil {
				return h, err
			}
			sl.NAL = s
		}
		if h.VCLHRDParametersPresentFlag {
			s, err := parseSubLayerHRD(r, int(sl.CPBCntMinus1), h.SubPicHRDParamsPresentFlag)
			if err != nil {
				return h, err
			}
			sl.VCL = s
		}
	}

	return h, nil
}
