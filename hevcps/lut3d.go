package hevcps

// YUVOffset is one vertex's predicted-or-coded (Y, U, V) triple within a
// cuboid of the 3D asymmetric LUT's octant tree (spec.md section 4.7).
type YUVOffset struct {
	Y, U, V int32
}

// cuboid holds the four corner vertex values produced for one (y, u, v)
// octant leaf, mirroring TCom3DAsymLUT's SCuboid.
type cuboid struct {
	P [4]YUVOffset
}

// LUT3D is a parsed colour_mapping_table (3D asymmetric LUT), carried by a
// PPS when colour_mapping_enabled_flag is set (spec.md section 3.7).
type LUT3D struct {
	RefLayerID           []uint32 // length num_cm_ref_layers_minus1+1
	OctantDepth          uint32
	YPartNumLog2         uint32
	InputBitDepthLuma    uint32
	InputBitDepthChroma  uint32
	OutputBitDepthLuma   uint32
	OutputBitDepthChroma uint32
	ResQuantBit          uint32
	FLCBits              uint32

	AdaptThresholdU int32
	AdaptThresholdV int32

	DeltaBitDepthLuma   int32
	DeltaBitDepthChroma int32
	MaxPartNumLog2      uint32

	YShift2Idx int32
	UShift2Idx int32
	VShift2Idx int32

	MappingShift  int32
	MappingOffset int32

	// Cuboid is indexed [yIdx][uIdx][vIdx] over a YSize x CSize x CSize
	// grid, where YSize = 1<<(OctantDepth+YPartNumLog2) and
	// CSize = 1<<OctantDepth.
	Cuboid [][][]cuboid
}

// readParam decodes one ReadParam codeword: a ue(v) prefix, an rParam-bit
// fixed codeword, and (when the combined symbol is nonzero) a sign bit.
func readParam(r BitSource, rParam int) (int32, error) {
	prefix, err := r.ReadUE()
	if err != nil {
		return 0, truncated("lut3d_param_prefix", err)
	}
	codeWord, err := r.ReadBits(rParam)
	if err != nil {
		return 0, truncated("lut3d_param_suffix", err)
	}
	symbol := (prefix << uint(rParam)) + codeWord
	if symbol == 0 {
		return 0, nil
	}
	sign, err := r.ReadBit()
	if err != nil {
		return 0, truncated("lut3d_param_sign", err)
	}
	if sign == 1 {
		return -int32(symbol), nil
	}
	return int32(symbol), nil
}

// vertexPred returns the predictor for one cuboid vertex: the fixed
// (1024,0,0)/(0,1024,0)/(0,0,1024) identity basis at the root of the Y
// axis, else the corresponding vertex of the cuboid one Y step below.
func vertexPred(lut *LUT3D, yIdx, uIdx, vIdx, vertex int) YUVOffset {
	if yIdx == 0 {
		switch vertex {
		case 0:
			return YUVOffset{Y: 1024}
		case 1:
			return YUVOffset{U: 1024}
		case 2:
			return YUVOffset{V: 1024}
		default:
			return YUVOffset{}
		}
	}
	return lut.Cuboid[yIdx-1][uIdx][vIdx].P[vertex]
}

// setVertexResidual applies a decoded delta triple on top of its
// predictor and stores the result, per spec.md section 4.7's residual
// tree construction.
func setVertexResidual(lut *LUT3D, yIdx, uIdx, vIdx, vertex int, deltaY, deltaU, deltaV int32) {
	pred := vertexPred(lut, yIdx, uIdx, vIdx, vertex)
	lut.Cuboid[yIdx][uIdx][vIdx].P[vertex] = YUVOffset{
		Y: pred.Y + (deltaY << lut.ResQuantBit),
		U: pred.U + (deltaU << lut.ResQuantBit),
		V: pred.V + (deltaV << lut.ResQuantBit),
	}
}

// parseOctant recursively decodes one octant of the LUT tree (spec.md
// section 4.7): internal nodes split into 8 half-length children; leaves
// code a coded_vertex_flag and optional ReadParam delta per vertex for
// each Y sub-partition, then fill every remaining (u, v) position in the
// octant with a zero-delta prediction across the full Y extent.
func parseOctant(r BitSource, lut *LUT3D, depth, yIdx, uIdx, vIdx, length int) error {
	split := depth < int(lut.OctantDepth)
	if split {
		b, err := r.ReadBit()
		if err != nil {
			return truncated("split_octant_flag", err)
		}
		split = b == 1
	}

	yPartNum := 1 << lut.YPartNumLog2

	if split {
		half := length >> 1
		for l := 0; l < 2; l++ {
			for m := 0; m < 2; m++ {
				for n := 0; n < 2; n++ {
					y := yIdx + l*half*yPartNum
					u := uIdx + m*half
					v := vIdx + n*half
					if err := parseOctant(r, lut, depth+1, y, u, v, half); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	nFLCbits := int(lut.MappingShift) - int(lut.ResQuantBit) - int(lut.FLCBits)
	if nFLCbits < 0 {
		nFLCbits = 0
	}
	shift := int(lut.OctantDepth) - depth

	for l := 0; l < yPartNum; l++ {
		for vertex := 0; vertex < 4; vertex++ {
			b, err := r.ReadBit()
			if err != nil {
				return truncated("coded_vertex_flag", err)
			}
			var dy, du, dv int32
			if b == 1 {
				dy, err = readParam(r, nFLCbits)
				if err != nil {
					return err
				}
				du, err = readParam(r, nFLCbits)
				if err != nil {
					return err
				}
				dv, err = readParam(r, nFLCbits)
				if err != nil {
					return err
				}
			}
			base := yIdx + (l << shift)
			setVertexResidual(lut, base, uIdx, vIdx, vertex, dy, du, dv)
			for m := 1; m < (1 << shift); m++ {
				setVertexResidual(lut, base+m, uIdx, vIdx, vertex, 0, 0, 0)
			}
		}
	}

	for u := 0; u < length; u++ {
		for v := 0; v < length; v++ {
			if u == 0 && v == 0 {
				continue
			}
			for y := 0; y < length*yPartNum; y++ {
				for vertex := 0; vertex < 4; vertex++ {
					setVertexResidual(lut, yIdx+y, uIdx+u, vIdx+v, vertex, 0, 0, 0)
				}
			}
		}
	}

	return nil
}

// allocateCuboids allocates the dense [ySize][cSize][cSize]cuboid storage
// the octant decode writes into.
func allocateCuboids(ySize, cSize int) [][][]cuboid {
	c := make([][][]cuboid, ySize)
	for i := range c {
		c[i] = make([][]cuboid, cSize)
		for j := range c[i] {
			c[i][j] = make([]cuboid, cSize)
		}
	}
	return c
}

// parseLUT3D implements spec.md section 4.7: the colour_mapping_table
// header fields followed by the recursive octant-tree decode, grounded on
// hevc_ps.c's xParse3DAsymLUT/xParse3DAsymLUTOctant.
func parseLUT3D(r BitSource) (*LUT3D, error) {
	lut := &LUT3D{}

	n, err := r.ReadUE()
	if err != nil {
		return nil, truncated("num_cm_ref_layers_minus1", err)
	}
	lut.RefLayerID = make([]uint32, n+1)
	for i := range lut.RefLayerID {
		v, err := r.ReadBits(6)
		if err != nil {
			return nil, truncated("cm_ref_layer_id", err)
		}
		lut.RefLayerID[i] = v
	}

	v, err := r.ReadBits(2)
	if err != nil {
		return nil, truncated("cm_octant_depth", err)
	}
	lut.OctantDepth = v

	v, err = r.ReadBits(2)
	if err != nil {
		return nil, truncated("cm_y_part_num_log2", err)
	}
	lut.YPartNumLog2 = v

	v, err = r.ReadUE()
	if err != nil {
		return nil, truncated("luma_bit_depth_cm_input_minus8", err)
	}
	lut.InputBitDepthLuma = v + 8

	v, err = r.ReadUE()
	if err != nil {
		return nil, truncated("chroma_bit_depth_cm_input_minus8", err)
	}
	lut.InputBitDepthChroma = v + 8

	v, err = r.ReadUE()
	if err != nil {
		return nil, truncated("luma_bit_depth_cm_output_minus8", err)
	}
	lut.OutputBitDepthLuma = v + 8

	v, err = r.ReadUE()
	if err != nil {
		return nil, truncated("chroma_bit_depth_cm_output_minus8", err)
	}
	lut.OutputBitDepthChroma = v + 8

	v, err = r.ReadBits(2)
	if err != nil {
		return nil, truncated("cm_res_quant_bit", err)
	}
	lut.ResQuantBit = v

	v, err = r.ReadBits(2)
	if err != nil {
		return nil, truncated("cm_delta_flc_bits_minus1", err)
	}
	lut.FLCBits = v + 1

	lut.AdaptThresholdU = 1 << (int32(lut.InputBitDepthChroma) - 1)
	lut.AdaptThresholdV = lut.AdaptThresholdU

	if lut.OctantDepth == 1 {
		d, err := r.ReadSE()
		if err != nil {
			return nil, truncated("cm_adapt_threshold_u_delta", err)
		}
		lut.AdaptThresholdU += d
		d, err = r.ReadSE()
		if err != nil {
			return nil, truncated("cm_adapt_threshold_v_delta", err)
		}
		lut.AdaptThresholdV += d
	}

	lut.DeltaBitDepthLuma = int32(lut.OutputBitDepthLuma) - int32(lut.InputBitDepthLuma)
	lut.DeltaBitDepthChroma = int32(lut.OutputBitDepthChroma) - int32(lut.InputBitDepthChroma)
	lut.MaxPartNumLog2 = 3*lut.OctantDepth + lut.YPartNumLog2

	lut.YShift2Idx = int32(lut.InputBitDepthLuma) - int32(lut.OctantDepth) - int32(lut.YPartNumLog2)
	lut.UShift2Idx = int32(lut.InputBitDepthChroma) - int32(lut.OctantDepth)
	lut.VShift2Idx = lut.UShift2Idx

	lut.MappingShift = 10 + int32(lut.InputBitDepthLuma) - int32(lut.OutputBitDepthLuma)
	lut.MappingOffset = 1 << uint(lut.MappingShift-1)

	ySize := 1 << (lut.OctantDepth + lut.YPartNumLog2)
	cSize := 1 << lut.OctantDepth
	lut.Cuboid = allocateCuboids(ySize, cSize)

	if err := parseOctant(r, lut, 0, 0, 0, 0, 1<<lut.OctantDepth); err != nil {
		return nil, err
	}

	return lut, nil
}
