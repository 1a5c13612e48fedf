package hevcps

// RepFormat is one representation-format record referenced by VPS
// extension layers (spec.md section 3.4's bullet on representation
// formats, and section 4.3 step 12's carry-over invariant).
type RepFormat struct {
	PicWidthLumaSamples     uint32
	PicHeightLumaSamples    uint32
	ChromaAndBitDepthPresent bool
	ChromaFormatIdc         uint32
	SeparateColourPlaneFlag bool
	BitDepthLuma            uint32
	BitDepthChroma          uint32
	ConformanceWindowFlag   bool
	ConfWin                 ConformanceWindow
}

// ConformanceWindow is the shared conformance/default-display-window shape
// used by both SPS and RepFormat (spec.md sections 3.5, 4.4).
type ConformanceWindow struct {
	LeftOffset, RightOffset, TopOffset, BottomOffset uint32
}

// DirectDependencyType is the optional per-pair (or single, shared)
// dependency-type code from spec.md section 4.3 step 14.
type DirectDependencyType struct {
	PerPair []uint32 // indexed [i][j] flattened i*MaxLayers+j, i>=1, j<i
	Single  *uint32  // non-nil when direct_dependency_all_layers_type was coded
}

// LayerSet names the NUH layer ids that belong to one layer set, base or
// additional (spec.md section 3.4's layer-set bullet).
type LayerSet struct {
	LayerIDs []uint32
}

// OutputLayerSet is one entry of the OLS table (spec.md section 3.4's
// output-layer-sets bullet).
type OutputLayerSet struct {
	LayerSetIdx         uint32
	OutputLayerFlag     []bool // indexed by position within the layer set
	NecessaryLayerFlag  []bool // indexed the same way; derived
	PTLIdx              []uint32
	AltOutputLayerFlag  bool
}

// VPSExtension is the parsed multilayer extension body (spec.md section
// 3.4's VPS-extension bullets, decoded per section 4.3).
type VPSExtension struct {
	PTL [1]PTL // entry 0 used only when MaxLayers>1 && BaseLayerInternalFlag

	SplittingFlag      bool
	ScalabilityMaskFlag [16]bool
	DimensionIDLen     []uint32 // per scalability type, +1

	NuhLayerIDPresentFlag bool
	LayerIDInNuh          []uint32
	LayerIDInVPS          map[uint32]int // nuh layer id -> vps layer index
	DimensionID           [][]uint32     // [layerIdx][scalabilityType]

	ViewIDLen uint32
	ViewIDVal []uint32

	DirectDependencyFlag [][]bool // [i][j], i>=1, j<i
	DependencyFlag       [][]bool // transitive closure, full [max][max]

	NumDirectRefLayers map[uint32]int
	IDDirectRefLayer   map[uint32][]uint32
	IDRefLayer         map[uint32][]uint32
	IDPredictedLayer   map[uint32][]uint32

	NumIndependentLayers      int
	NumLayersInTreePartition  []int
	TreePartitionLayerIDList  [][]uint32

	NumAddLayerSets      uint32
	LayerSets            []LayerSet // index 0..NumLayerSets-1 (base + additional)
	HighestLayerIdx      [][]uint32 // [addSetIdx][treeIdx]

	VPSSubLayersMaxMinus1 []uint32 // per layer
	MaxSubLayersInLayerSet []uint32

	DefaultRefLayersActiveFlag bool // all_ref_layers_active_flag
	MaxTidIlRefPicsPlus1       [][]uint32 // [i][j], default 8 (7+1)

	NumProfileTierLevel uint32 // +1
	ProfilePresentFlag  []bool
	PTLs                []PTL

	NumAddOLSs             uint32
	DefaultOutputLayerIdc  uint32
	OLS                    []OutputLayerSet

	RepFormats      []RepFormat
	VPSRepFormatIdx []int // per layer index

	DirectDepType DirectDependencyType

	VUIPresentFlag bool
}

func ceilLog2Plus1(n int) int {
	bits := 1
	for (1 << uint(bits)) < n+1 {
		bits++
	}
	return bits
}

// decodeVPSExtension implements spec.md section 4.3. The caller has
// already byte-aligned the reader. This implementation generalizes the
// original decoder's fixed-size C arrays into Go slices/maps, but follows
// the same derivation order and the same bit-consumption sequence.
func decodeVPSExtension(r BitSource, ctx *Context, vps *VPS) (*VPSExtension, error) {
	ext := &VPSExtension{
		LayerIDInVPS:      make(map[uint32]int),
		NumDirectRefLayers: make(map[uint32]int),
		IDDirectRefLayer:   make(map[uint32][]uint32),
		IDRefLayer:         make(map[uint32][]uint32),
		IDPredictedLayer:   make(map[uint32][]uint32),
	}

	maxLayers := int(vps.MaxLayers)
	if maxLayers > 63 {
		maxLayers = 63
	}

	if vps.MaxLayers > 1 && vps.BaseLayerInternalFlag {
		ptl, err := parsePTL(r, int(vps.MaxSubLayers), false)
		if err != nil {
			return nil, err
		}
		ext.PTL[0] = ptl
	}

	b, err := r.ReadBit()
	if err != nil {
		return nil, truncated("splitting_flag", err)
	}
	ext.SplittingFlag = b == 1

	numScalabilityTypes := 0
	for i := 0; i < 16; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, truncated("scalability_mask_flag", err)
		}
		ext.ScalabilityMaskFlag[i] = bit == 1
		if ext.ScalabilityMaskFlag[i] {
			numScalabilityTypes++
		}
	}

	nDims := numScalabilityTypes
	if ext.SplittingFlag {
		nDims--
	}
	ext.DimensionIDLen = make([]uint32, numScalabilityTypes+1)
	for j := 0; j < nDims; j++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, truncated("dimension_id_len_minus1", err)
		}
		ext.DimensionIDLen[j] = v + 1
	}
	if ext.SplittingFlag && numScalabilityTypes > 0 {
		offset := uint32(0)
		for j := 0; j < numScalabilityTypes-1; j++ {
			offset += ext.DimensionIDLen[j]
		}
		ext.DimensionIDLen[numScalabilityTypes-1] = 6 - offset
		ext.DimensionIDLen[numScalabilityTypes] = 6
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vps_nuh_layer_id_present_flag", err)
	}
	ext.NuhLayerIDPresentFlag = b == 1

	ext.LayerIDInNuh = make([]uint32, maxLayers)
	ext.DimensionID = make([][]uint32, maxLayers)
	ext.LayerIDInVPS[0] = 0

	for i := 1; i < maxLayers; i++ {
		if ext.NuhLayerIDPresentFlag {
			v, err := r.ReadBits(6)
			if err != nil {
				return nil, truncated("layer_id_in_nuh", err)
			}
			if v <= ext.LayerIDInNuh[i-1] {
				return nil, invalid("layer_id_in_nuh", "layer_id_in_nuh[%d]=%d not increasing", i, v)
			}
			ext.LayerIDInNuh[i] = v
		} else {
			ext.LayerIDInNuh[i] = uint32(i)
		}
		ext.LayerIDInVPS[ext.LayerIDInNuh[i]] = i

		ext.DimensionID[i] = make([]uint32, numScalabilityTypes)
		if !ext.SplittingFlag {
			for j := 0; j < numScalabilityTypes; j++ {
				v, err := r.ReadBits(int(ext.DimensionIDLen[j]))
				if err != nil {
					return nil, truncated("dimension_id", err)
				}
				ext.DimensionID[i][j] = v
			}
		} else {
			offset := uint32(0)
			for j := 0; j < numScalabilityTypes; j++ {
				width := ext.DimensionIDLen[j]
				ext.DimensionID[i][j] = (ext.LayerIDInNuh[i] >> offset) & ((1 << width) - 1)
				offset += width
			}
		}
	}

	viewOrderIdx := make(map[uint32]uint32)
	numViews := 1
	for i := 0; i < maxLayers; i++ {
		lid := ext.LayerIDInNuh[i]
		var voi uint32
		smIdx, j := 0, 0
		for smIdx = 0; smIdx < 16; smIdx++ {
			if ext.ScalabilityMaskFlag[smIdx] {
				if smIdx == 1 {
					voi = ext.DimensionID[i][j]
				}
				j++
			}
		}
		viewOrderIdx[lid] = voi
		if i > 0 {
			newView := true
			for j := 0; j < i; j++ {
				if viewOrderIdx[ext.LayerIDInNuh[j]] == voi {
					newView = false
					break
				}
			}
			if newView {
				numViews++
			}
		}
	}

	v, err := r.ReadBits(4)
	if err != nil {
		return nil, truncated("view_id_len", err)
	}
	ext.ViewIDLen = v
	if ext.ViewIDLen > 0 {
		ext.ViewIDVal = make([]uint32, numViews)
		for i := 0; i < numViews; i++ {
			val, err := r.ReadBits(int(ext.ViewIDLen))
			if err != nil {
				return nil, truncated("view_id_val", err)
			}
			ext.ViewIDVal[i] = val
		}
	}

	ext.DirectDependencyFlag = make([][]bool, maxLayers)
	for i := 1; i < maxLayers; i++ {
		ext.DirectDependencyFlag[i] = make([]bool, i)
		for j := 0; j < i; j++ {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, truncated("direct_dependency_flag", err)
			}
			ext.DirectDependencyFlag[i][j] = bit == 1
		}
	}

	// Transitive closure (spec.md section 4.3 step 5): dep[i][j] = dd[i][j]
	// || exists k<i: dd[i][k] && dep[k][j].
	dependency := make([][]bool, maxLayers)
	for i := range dependency {
		dependency[i] = make([]bool, maxLayers)
	}
	for i := 0; i < maxLayers; i++ {
		for j := 0; j < maxLayers; j++ {
			if i > 0 && j < i && ext.DirectDependencyFlag[i][j] {
				dependency[i][j] = true
			}
			for k := 0; k < i; k++ {
				if j < len(ext.DirectDependencyFlag[i]) && ext.DirectDependencyFlag[i][k] && dependency[k][j] {
					dependency[i][j] = true
				}
			}
		}
	}
	ext.DependencyFlag = dependency

	for i := 0; i < maxLayers; i++ {
		iNuh := ext.LayerIDInNuh[i]
		var direct, refs, pred []uint32
		for j := 0; j < maxLayers; j++ {
			jNuh := ext.LayerIDInNuh[j]
			if i > 0 && j < len(ext.DirectDependencyFlag[i]) && ext.DirectDependencyFlag[i][j] {
				direct = append(direct, jNuh)
			}
			if dependency[i][j] {
				refs = append(refs, jNuh)
			}
			if dependency[j][i] {
				pred = append(pred, jNuh)
			}
		}
		ext.NumDirectRefLayers[iNuh] = len(direct)
		ext.IDDirectRefLayer[iNuh] = direct
		ext.IDRefLayer[iNuh] = refs
		ext.IDPredictedLayer[iNuh] = pred
	}

	// Tree partitions (step 6): a layer with zero direct refs roots a tree;
	// the tree collects every layer it (transitively) predicts.
	var inList = make(map[uint32]bool)
	for i := 0; i < maxLayers; i++ {
		iNuh := ext.LayerIDInNuh[i]
		if ext.NumDirectRefLayers[iNuh] != 0 {
			continue
		}
		tree := []uint32{iNuh}
		for _, p := range ext.IDPredictedLayer[iNuh] {
			if !inList[p] {
				tree = append(tree, p)
				inList[p] = true
			}
		}
		ext.TreePartitionLayerIDList = append(ext.TreePartitionLayerIDList, tree)
		ext.NumLayersInTreePartition = append(ext.NumLayersInTreePartition, len(tree))
	}
	ext.NumIndependentLayers = len(ext.TreePartitionLayerIDList)

	if ext.NumIndependentLayers > 1 {
		n, err := r.ReadUE()
		if err != nil {
			return nil, truncated("num_add_layer_sets", err)
		}
		if n > 1023 {
			return nil, invalid("num_add_layer_sets", "value %d exceeds 1023", n)
		}
		if n == 0 && !vps.BaseLayerAvailableFlag {
			return nil, invalid("num_add_layer_sets", "num_add_layer_sets and vps_base_layer_available_flag both zero")
		}
		ext.NumAddLayerSets = n
	}

	ext.LayerSets = make([]LayerSet, vps.NumLayerSets, int(vps.NumLayerSets)+int(ext.NumAddLayerSets))
	ext.LayerSets[0] = LayerSet{LayerIDs: []uint32{0}}
	for i := 1; i < int(vps.NumLayerSets); i++ {
		var ids []uint32
		for m := 0; m <= int(vps.MaxLayerID); m++ {
			if i < len(vps.LayerIDIncluded) && m < len(vps.LayerIDIncluded[i]) && vps.LayerIDIncluded[i][m] {
				ids = append(ids, uint32(m))
			}
		}
		ext.LayerSets[i] = LayerSet{LayerIDs: ids}
	}

	ext.HighestLayerIdx = make([][]uint32, ext.NumAddLayerSets)
	for i := 0; i < int(ext.NumAddLayerSets); i++ {
		ext.HighestLayerIdx[i] = make([]uint32, ext.NumIndependentLayers)
		var ids []uint32
		for tIdx := 1; tIdx < ext.NumIndependentLayers; tIdx++ {
			length := ceilLog2Plus1(ext.NumLayersInTreePartition[tIdx])
			v, err := r.ReadBits(length)
			if err != nil {
				return nil, truncated("highest_layer_idx", err)
			}
			if int(v) > ext.NumLayersInTreePartition[tIdx] {
				return nil, invalid("highest_layer_idx", "highest_layer_idx %d exceeds tree size %d", v, ext.NumLayersInTreePartition[tIdx])
			}
			ext.HighestLayerIdx[i][tIdx] = v
			for layerCnt := 0; layerCnt <= int(v)-1 && layerCnt < len(ext.TreePartitionLayerIDList[tIdx]); layerCnt++ {
				ids = append(ids, ext.TreePartitionLayerIDList[tIdx][layerCnt])
			}
		}
		ext.LayerSets = append(ext.LayerSets, LayerSet{LayerIDs: ids})
	}
	numLayerSets := int(vps.NumLayerSets) + int(ext.NumAddLayerSets)

	ext.VPSSubLayersMaxMinus1 = make([]uint32, maxLayers)
	start := 0
	if vps.BaseLayerInternalFlag {
		start = 1
	}
	for i := start; i < maxLayers; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, truncated("sub_layers_vps_max_minus1", err)
		}
		ext.VPSSubLayersMaxMinus1[i] = v
	}
	ext.MaxSubLayersInLayerSet = make([]uint32, numLayerSets)
	for ls := 0; ls < numLayerSets; ls++ {
		maxSL := uint32(0)
		for _, lid := range ext.LayerSets[ls].LayerIDs {
			if idx, ok := ext.LayerIDInVPS[lid]; ok && idx < len(ext.VPSSubLayersMaxMinus1) {
				if ext.VPSSubLayersMaxMinus1[idx]+1 > maxSL {
					maxSL = ext.VPSSubLayersMaxMinus1[idx] + 1
				}
			}
		}
		if maxSL == 0 {
			maxSL = 1
		}
		ext.MaxSubLayersInLayerSet[ls] = maxSL
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("max_tid_ref_present_flag", err)
	}
	maxTidRefPresent := b == 1
	ext.MaxTidIlRefPicsPlus1 = make([][]uint32, maxLayers)
	for i := range ext.MaxTidIlRefPicsPlus1 {
		ext.MaxTidIlRefPicsPlus1[i] = make([]uint32, maxLayers)
		for j := range ext.MaxTidIlRefPicsPlus1[i] {
			ext.MaxTidIlRefPicsPlus1[i][j] = 8 // default 7+1
		}
	}
	if maxTidRefPresent {
		for i := 0; i < maxLayers-1; i++ {
			for j := i + 1; j < maxLayers; j++ {
				if j < len(ext.DirectDependencyFlag) && i < len(ext.DirectDependencyFlag[j]) && ext.DirectDependencyFlag[j][i] {
					v, err := r.ReadBits(3)
					if err != nil {
						return nil, truncated("max_tid_il_ref_pics_plus1", err)
					}
					ext.MaxTidIlRefPicsPlus1[i][j] = v + 1
				}
			}
		}
	}

	b, err = r.ReadBit()
	if err != nil {
		return nil, truncated("all_ref_layers_active_flag", err)
	}
	ext.DefaultRefLayersActiveFlag = b == 1

	nPTL, err := r.ReadUE()
	if err != nil {
		return nil, truncated("vps_num_profile_tier_level_minus1", err)
	}
	ext.NumProfileTierLevel = nPTL + 1
	ext.PTLs = make([]PTL, ext.NumProfileTierLevel)
	ext.ProfilePresentFlag = make([]bool, ext.NumProfileTierLevel)
	if vps.BaseLayerInternalFlag {
		ext.PTLs[0] = vps.PTL
		ext.ProfilePresentFlag[0] = true
	}
	firstIdx := 0
	if vps.BaseLayerInternalFlag {
		firstIdx = 1
	}
	for i := firstIdx; i < int(ext.NumProfileTierLevel); i++ {
		present := true
		if i != 0 {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, truncated("vps_profile_present_flag", err)
			}
			present = bit == 1
		}
		ext.ProfilePresentFlag[i] = present
		ptl, err := parsePTL(r, int(vps.MaxSubLayers), present)
		if err != nil {
			return nil, err
		}
		ext.PTLs[i] = ptl
	}

	numOutputLayerSets := numLayerSets
	if numLayerSets > 1 {
		n, err := r.ReadUE()
		if err != nil {
			return nil, truncated("num_add_olss", err)
		}
		ext.NumAddOLSs = n
	}
	numOutputLayerSets += int(ext.NumAddOLSs)

	if numLayerSets > 1 {
		v, err := r.ReadBits(2)
		if err != nil {
			return nil, truncated("default_output_layer_idc", err)
		}
		if v > 2 {
			v = 2
		}
		ext.DefaultOutputLayerIdc = v
	}

	ext.OLS = make([]OutputLayerSet, numOutputLayerSets)
	olsLenBits := ceilLog2Plus1(numLayerSets - 1)
	for i := 0; i < numOutputLayerSets; i++ {
		lsIdx := uint32(0)
		if i == 0 {
			lsIdx = 0
		} else if i < numLayerSets {
			lsIdx = uint32(i)
		} else {
			v, err := r.ReadBits(olsLenBits)
			if err != nil {
				return nil, truncated("layer_set_idx_for_ols_minus1", err)
			}
			lsIdx = v
		}
		ls := ext.LayerSets[lsIdx]
		n := len(ls.LayerIDs)
		highestNuh := uint32(0)
		for _, lid := range ls.LayerIDs {
			if lid > highestNuh {
				highestNuh = lid
			}
		}

		ols := OutputLayerSet{LayerSetIdx: lsIdx, OutputLayerFlag: make([]bool, n)}
		needsExplicit := ext.DefaultOutputLayerIdc == 2 || (i > 0 && lsIdx >= vps.NumLayerSets)
		for k, lid := range ls.LayerIDs {
			switch {
			case needsExplicit:
				bit, err := r.ReadBit()
				if err != nil {
					return nil, truncated("output_layer_flag", err)
				}
				ols.OutputLayerFlag[k] = bit == 1
			case ext.DefaultOutputLayerIdc == 0:
				ols.OutputLayerFlag[k] = true
			case ext.DefaultOutputLayerIdc == 1:
				ols.OutputLayerFlag[k] = lid == highestNuh
			}
		}

		// necessary_layer_flag: a layer is necessary iff it's an output
		// layer of this OLS or a dependency of one (step 11 derivation).
		ols.NecessaryLayerFlag = make([]bool, n)
		for k, lid := range ls.LayerIDs {
			if ols.OutputLayerFlag[k] {
				ols.NecessaryLayerFlag[k] = true
				for refK, refLid := range ls.LayerIDs {
					if dependency[ext.LayerIDInVPS[lid]][ext.LayerIDInVPS[refLid]] {
						ols.NecessaryLayerFlag[refK] = true
					}
				}
			}
		}

		numNecessary := 0
		for _, v := range ols.NecessaryLayerFlag {
			if v {
				numNecessary++
			}
		}
		if ext.NumProfileTierLevel > 1 {
			ols.PTLIdx = make([]uint32, numNecessary)
			ptlBits := ceilLog2Plus1(int(ext.NumProfileTierLevel) - 1)
			if ptlBits < 1 {
				ptlBits = 1
			}
			for k := range ols.PTLIdx {
				v, err := r.ReadBits(ptlBits)
				if err != nil {
					return nil, truncated("profile_tier_level_idx", err)
				}
				ols.PTLIdx[k] = v
			}
		}

		if numOutputLayerSets > 1 {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, truncated("alt_output_layer_flag", err)
			}
			ols.AltOutputLayerFlag = bit == 1
		}
		ext.OLS[i] = ols
	}

	nRep, err := r.ReadUE()
	if err != nil {
		return nil, truncated("vps_num_rep_formats_minus1", err)
	}
	if nRep+1 > 256 {
		return nil, invalid("vps_num_rep_formats_minus1", "value %d exceeds 255", nRep)
	}
	ext.RepFormats = make([]RepFormat, nRep+1)
	for i := range ext.RepFormats {
		rf := RepFormat{}
		if i > 0 {
			rf = ext.RepFormats[i-1] // carry over trailing fields, step 12
		}
		w, err := r.ReadBits(16)
		if err != nil {
			return nil, truncated("pic_width_vps_in_luma_samples", err)
		}
		rf.PicWidthLumaSamples = w
		h, err := r.ReadBits(16)
		if err != nil {
			return nil, truncated("pic_height_vps_in_luma_samples", err)
		}
		rf.PicHeightLumaSamples = h

		bit, err := r.ReadBit()
		if err != nil {
			return nil, truncated("chroma_and_bit_depth_vps_present_flag", err)
		}
		rf.ChromaAndBitDepthPresent = bit == 1
		if rf.ChromaAndBitDepthPresent {
			cf, err := r.ReadBits(2)
			if err != nil {
				return nil, truncated("chroma_format_vps_idc", err)
			}
			rf.ChromaFormatIdc = cf
			if cf == 3 {
				bit, err := r.ReadBit()
				if err != nil {
					return nil, truncated("separate_colour_plane_vps_flag", err)
				}
				rf.SeparateColourPlaneFlag = bit == 1
			}
			bd, err := r.ReadBits(4)
			if err != nil {
				return nil, truncated("bit_depth_vps_luma_minus8", err)
			}
			rf.BitDepthLuma = bd + 8
			bd, err = r.ReadBits(4)
			if err != nil {
				return nil, truncated("bit_depth_vps_chroma_minus8", err)
			}
			rf.BitDepthChroma = bd + 8
		}

		bit, err = r.ReadBit()
		if err != nil {
			return nil, truncated("conformance_window_vps_flag", err)
		}
		rf.ConformanceWindowFlag = bit == 1
		if rf.ConformanceWindowFlag {
			l, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_vps_left_offset", err)
			}
			rr, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_vps_right_offset", err)
			}
			t, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_vps_top_offset", err)
			}
			bo, err := r.ReadUE()
			if err != nil {
				return nil, truncated("conf_win_vps_bottom_offset", err)
			}
			rf.ConfWin = ConformanceWindow{LeftOffset: l, RightOffset: rr, TopOffset: t, BottomOffset: bo}
		}
		ext.RepFormats[i] = rf
	}

	ext.VPSRepFormatIdx = make([]int, maxLayers)
	if len(ext.RepFormats) > 1 {
		repFormatIdxPresent := false
		if b, err := r.ReadBit(); err == nil {
			repFormatIdxPresent = b == 1
		} else {
			return nil, truncated("vps_rep_format_idx_present_flag", err)
		}
		lenBits := ceilLog2Plus1(len(ext.RepFormats) - 1)
		from := 0
		if vps.BaseLayerInternalFlag {
			from = 1
		}
		for i := from; i < maxLayers; i++ {
			if repFormatIdxPresent {
				v, err := r.ReadBits(lenBits)
				if err != nil {
					return nil, truncated("vps_rep_format_idx", err)
				}
				ext.VPSRepFormatIdx[i] = int(v)
			}
		}
	}

	// DPB size block (step 13): for every output layer set beyond the
	// first and every in-set sub-layer, present flags gate one unsigned
	// Exp-Golomb value per necessary layer (max_vps_dec_pic_buffering)
	// followed by two per sub-layer (reorder pics, latency increase).
	for i := 1; i < numOutputLayerSets; i++ {
		ols := &ext.OLS[i]
		lsIdx := ols.LayerSetIdx
		maxSL := int(ext.MaxSubLayersInLayerSet[lsIdx])
		subLayerFlagInfoPresent, err := r.ReadBit()
		if err != nil {
			return nil, truncated("sub_layer_flag_info_present_flag", err)
		}
		for j := 0; j < maxSL; j++ {
			present := j == 0
			if j > 0 && subLayerFlagInfoPresent == 1 {
				bit, err := r.ReadBit()
				if err != nil {
					return nil, truncated("sub_layer_dpb_info_present_flag", err)
				}
				present = bit == 1
			}
			if !present {
				continue
			}
			for k := range ols.NecessaryLayerFlag {
				if !ols.NecessaryLayerFlag[k] {
					continue
				}
				if _, err := r.ReadUE(); err != nil {
					return nil, truncated("max_vps_dec_pic_buffering_minus1", err)
				}
			}
			if _, err := r.ReadUE(); err != nil {
				return nil, truncated("max_vps_num_reorder_pics", err)
			}
			if _, err := r.ReadUE(); err != nil {
				return nil, truncated("max_vps_latency_increase_plus1", err)
			}
		}
	}

	lenMinus2, err := r.ReadBits(2)
	if err != nil {
		return nil, truncated("direct_dep_type_len_minus2", err)
	}
	typeLen := int(lenMinus2) + 2
	bit, err := r.ReadBit()
	if err != nil {
		return nil, truncated("direct_dependency_all_layers_flag", err)
	}
	if bit == 1 {
		v, err := r.ReadBits(typeLen)
		if err != nil {
			return nil, truncated("direct_dependency_all_layers_type", err)
		}
		if v > 6 {
			return nil, invalid("direct_dependency_all_layers_type", "value %d exceeds 6", v)
		}
		ext.DirectDepType.Single = &v
	} else {
		ext.DirectDepType.PerPair = make([]uint32, maxLayers*maxLayers)
		for i := 1; i < maxLayers; i++ {
			for j := 0; j < i; j++ {
				if j < len(ext.DirectDependencyFlag[i]) && ext.DirectDependencyFlag[i][j] {
					v, err := r.ReadBits(typeLen)
					if err != nil {
						return nil, truncated("direct_dependency_type", err)
					}
					if v > 6 {
						return nil, invalid("direct_dependency_type", "value %d exceeds 6", v)
					}
					ext.DirectDepType.PerPair[i*maxLayers+j] = v
				}
			}
		}
	}

	bit, err = r.ReadBit()
	if err != nil {
		return nil, truncated("vps_vui_present_flag", err)
	}
	ext.VUIPresentFlag = bit == 1
	if ext.VUIPresentFlag {
		r.AlignToByte()
		if err := skipVPSVUI(r, ctx, vps, ext, numOutputLayerSets); err != nil {
			return nil, err
		}
	}

	return ext, nil
}

// skipVPSVUI implements spec.md section 4.3 step 15's bit-consumption
// shape. Its fields (per layer-set bit/picture-rate presence, tile and
// WPP use maps, ILP offsets) have no consumer elsewhere in this package,
// so values are read and discarded; this mirrors the original decoder's
// vps_vui, which also computes no return value. The BSP HRD parameters
// are not parsed: when vps_vui_bsp_hrd_present_flag is set a Warning is
// raised and the remaining flags are read from the bits that follow the
// flag, not from after the BSP HRD block.
func skipVPSVUI(r BitSource, ctx *Context, vps *VPS, ext *VPSExtension, numOutputLayerSets int) error {
	maxLayers := int(vps.MaxLayers)
	if maxLayers > 63 {
		maxLayers = 63
	}
	start := 1
	if vps.BaseLayerInternalFlag {
		start = 0
	}

	crossLayerPicTypeAligned, err := r.ReadBit()
	if err != nil {
		return truncated("cross_layer_pic_type_aligned_flag", err)
	}
	if crossLayerPicTypeAligned == 0 {
		if _, err := r.ReadBit(); err != nil {
			return truncated("cross_layer_irap_aligned_flag", err)
		}
	}
	bitRatePresent, err := r.ReadBit()
	if err != nil {
		return truncated("bit_rate_present_vps_flag", err)
	}
	picRatePresent, err := r.ReadBit()
	if err != nil {
		return truncated("pic_rate_present_vps_flag", err)
	}
	numLayerSets := len(ext.LayerSets)
	if bitRatePresent == 1 || picRatePresent == 1 {
		for i := start; i < numLayerSets; i++ {
			maxSL := 1
			if i < len(ext.MaxSubLayersInLayerSet) {
				maxSL = int(ext.MaxSubLayersInLayerSet[i])
			}
			for j := 0; j < maxSL; j++ {
				brHere, pcHere := false, false
				if bitRatePresent == 1 {
					v, err := r.ReadBit()
					if err != nil {
						return truncated("bit_rate_present_flag", err)
					}
					brHere = v == 1
				}
				if picRatePresent == 1 {
					v, err := r.ReadBit()
					if err != nil {
						return truncated("pic_rate_present_flag", err)
					}
					pcHere = v == 1
				}
				if brHere {
					if _, err := r.ReadBits(16); err != nil {
						return truncated("avg_bit_rate", err)
					}
					if _, err := r.ReadBits(16); err != nil {
						return truncated("max_bit_rate", err)
					}
				}
				if pcHere {
					if _, err := r.ReadBits(2); err != nil {
						return truncated("constant_pic_rate_idc", err)
					}
					if _, err := r.ReadBits(16); err != nil {
						return truncated("avg_pic_rate", err)
					}
				}
			}
		}
	}

	videoSignalIdxPresent, err := r.ReadBit()
	if err != nil {
		return truncated("video_signal_info_idx_present_flag", err)
	}
	numVideoSignal := uint32(0)
	if videoSignalIdxPresent == 1 {
		numVideoSignal, err = r.ReadBits(4)
		if err != nil {
			return truncated("vps_num_video_signal_info_minus1", err)
		}
	}
	for i := uint32(0); i <= numVideoSignal; i++ {
		if _, err := r.ReadBits(3); err != nil {
			return truncated("video_vps_format", err)
		}
		if _, err := r.ReadBit(); err != nil {
			return truncated("video_full_range_vps_flag", err)
		}
		if _, err := r.ReadBits(8); err != nil {
			return truncated("colour_primaries_vps", err)
		}
		if _, err := r.ReadBits(8); err != nil {
			return truncated("transfer_characteristics_vps", err)
		}
		if _, err := r.ReadBits(8); err != nil {
			return truncated("matrix_coeffs_vps", err)
		}
	}
	if videoSignalIdxPresent == 1 && numVideoSignal > 0 {
		for i := start; i < maxLayers; i++ {
			if _, err := r.ReadBits(4); err != nil {
				return truncated("vps_video_signal_info_idx", err)
			}
		}
	}

	tilesNotInUse, err := r.ReadBit()
	if err != nil {
		return truncated("tiles_not_in_use_flag", err)
	}
	tilesInUse := make([]bool, maxLayers)
	if tilesNotInUse == 0 {
		for i := start; i < maxLayers; i++ {
			v, err := r.ReadBit()
			if err != nil {
				return truncated("tiles_in_use_flag", err)
			}
			tilesInUse[i] = v == 1
			if tilesInUse[i] {
				if _, err := r.ReadBit(); err != nil {
					return truncated("loop_filter_not_across_tiles_flag", err)
				}
			}
		}
		from := 1
		if !vps.BaseLayerInternalFlag {
			from = 2
		}
		for i := from; i < maxLayers; i++ {
			iNuh := ext.LayerIDInNuh[i]
			for range ext.IDDirectRefLayer[iNuh] {
				if tilesInUse[i] {
					if _, err := r.ReadBit(); err != nil {
						return truncated("tile_boundaries_aligned_flag", err)
					}
				}
			}
		}
	}

	wppNotInUse, err := r.ReadBit()
	if err != nil {
		return truncated("wpp_not_in_use_flag", err)
	}
	if wppNotInUse == 0 {
		for i := start; i < maxLayers; i++ {
			if _, err := r.ReadBit(); err != nil {
				return truncated("wpp_in_use_flag", err)
			}
		}
	}

	if _, err := r.ReadBit(); err != nil {
		return truncated("single_layer_for_non_irap_flag", err)
	}
	if _, err := r.ReadBit(); err != nil {
		return truncated("higher_layer_irap_skip_flag", err)
	}
	ilpRestricted, err := r.ReadBit()
	if err != nil {
		return truncated("ilp_restricted_ref_layers_flag", err)
	}
	if ilpRestricted == 1 {
		for i := 1; i < maxLayers; i++ {
			iNuh := ext.LayerIDInNuh[i]
			for range ext.IDDirectRefLayer[iNuh] {
				offsetPlus1, err := r.ReadUE()
				if err != nil {
					return truncated("min_spatial_segment_offset_plus1", err)
				}
				if offsetPlus1 > 0 {
					ctuBased, err := r.ReadBit()
					if err != nil {
						return truncated("ctu_based_offset_enabled_flag", err)
					}
					if ctuBased == 1 {
						if _, err := r.ReadUE(); err != nil {
							return truncated("min_horizontal_ctu_offset_plus1", err)
						}
					}
				}
			}
		}
	}

	bspPresent, err := r.ReadBit()
	if err != nil {
		return truncated("vps_vui_bsp_hrd_present_flag", err)
	}
	if bspPresent == 1 {
		if err := ctx.warn("vps_vui_bsp_hrd_params", "BSP HRD params present but not modeled"); err != nil {
			return err
		}
	}

	for i := 1; i < maxLayers; i++ {
		iNuh := ext.LayerIDInNuh[i]
		if ext.NumDirectRefLayers[iNuh] == 0 {
			if _, err := r.ReadBit(); err != nil {
				return truncated("base_layer_parameter_set_compatibility_flag", err)
			}
		}
	}

	return nil
}
