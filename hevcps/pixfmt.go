package hevcps

// PixelFormat names the sample layout and bit depth resolved from
// (chroma_format_idc, bit_depth_chroma), per spec.md section 4.4's fixed
// table covering 4:0:0/4:2:0/4:2:2/4:4:4 at 8, 9, 10 and 12 bits and
// 4:2:0/4:2:2/4:4:4 at 14 bits (4:0:0 at 14 bits has no format), plus the
// RGB-matrix-coefficients rewrite of 8/10/12-bit 4:4:4 to GBR-planar
// variants and the 4:2:0 8-bit full-range tag.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	FormatGray8
	FormatGray16
	FormatYUV420P
	FormatYUV420P9
	FormatYUV420P10
	FormatYUV420P12
	FormatYUV420P14
	FormatYUV422P
	FormatYUV422P9
	FormatYUV422P10
	FormatYUV422P12
	FormatYUV422P14
	FormatYUV444P
	FormatYUV444P9
	FormatYUV444P10
	FormatYUV444P12
	FormatYUV444P14
	FormatGBRP
	FormatGBRP10
	FormatGBRP12
	FormatYUVJ420P // full-range 4:2:0 8-bit
)

func (f PixelFormat) String() string {
	switch f {
	case FormatGray8:
		return "gray8"
	case FormatGray16:
		return "gray16"
	case FormatYUV420P:
		return "yuv420p"
	case FormatYUV420P9:
		return "yuv420p9"
	case FormatYUV420P10:
		return "yuv420p10"
	case FormatYUV420P12:
		return "yuv420p12"
	case FormatYUV420P14:
		return "yuv420p14"
	case FormatYUV422P:
		return "yuv422p"
	case FormatYUV422P9:
		return "yuv422p9"
	case FormatYUV422P10:
		return "yuv422p10"
	case FormatYUV422P12:
		return "yuv422p12"
	case FormatYUV422P14:
		return "yuv422p14"
	case FormatYUV444P:
		return "yuv444p"
	case FormatYUV444P9:
		return "yuv444p9"
	case FormatYUV444P10:
		return "yuv444p10"
	case FormatYUV444P12:
		return "yuv444p12"
	case FormatYUV444P14:
		return "yuv444p14"
	case FormatGBRP:
		return "gbrp"
	case FormatGBRP10:
		return "gbrp10"
	case FormatGBRP12:
		return "gbrp12"
	case FormatYUVJ420P:
		return "yuvj420p"
	default:
		return "unknown"
	}
}

// resolvePixelFormat implements the (chroma_format_idc, bit_depth_chroma)
// table from hevc_ps.c's pix_fmt switch, covering 8/9/10/12-bit depths
// across monochrome/4:2:0/4:2:2/4:4:4 and 14-bit depth for 4:2:0/4:2:2/
// 4:4:4; monochrome at 14 bits returns an InvalidData error.
func resolvePixelFormat(chromaFormatIdc uint32, bitDepthChroma uint32) (PixelFormat, error) {
	switch bitDepthChroma {
	case 8:
		switch chromaFormatIdc {
		case 0:
			return FormatGray8, nil
		case 1:
			return FormatYUV420P, nil
		case 2:
			return FormatYUV422P, nil
		case 3:
			return FormatYUV444P, nil
		}
	case 9:
		switch chromaFormatIdc {
		case 0:
			return FormatGray16, nil
		case 1:
			return FormatYUV420P9, nil
		case 2:
			return FormatYUV422P9, nil
		case 3:
			return FormatYUV444P9, nil
		}
	case 10:
		switch chromaFormatIdc {
		case 0:
			return FormatGray16, nil
		case 1:
			return FormatYUV420P10, nil
		case 2:
			return FormatYUV422P10, nil
		case 3:
			return FormatYUV444P10, nil
		}
	case 12:
		switch chromaFormatIdc {
		case 0:
			return FormatGray16, nil
		case 1:
			return FormatYUV420P12, nil
		case 2:
			return FormatYUV422P12, nil
		case 3:
			return FormatYUV444P12, nil
		}
	case 14:
		switch chromaFormatIdc {
		case 1:
			return FormatYUV420P14, nil
		case 2:
			return FormatYUV422P14, nil
		case 3:
			return FormatYUV444P14, nil
		}
	}
	return FormatUnknown, invalid("bit_depth_chroma_minus8", "no pixel format for chroma_format_idc=%d bit_depth_chroma=%d", chromaFormatIdc, bitDepthChroma)
}

// applyVUIPixelFormatRewrites applies the two VUI-driven adjustments from
// spec.md section 4.4: RGB matrix coefficients rewrite 4:4:4 variants to
// their GBR-planar equivalents, and full-range signaling at 4:2:0 8-bit
// tags the format as full-range.
func applyVUIPixelFormatRewrites(f PixelFormat, vui *VUI) PixelFormat {
	if vui == nil {
		return f
	}
	if vui.VideoSignalTypePresentFlag && vui.ColourDescriptionPresentFlag && vui.MatrixCoefficients == matrixCoefficientsRGB {
		switch f {
		case FormatYUV444P:
			return FormatGBRP
		case FormatYUV444P10:
			return FormatGBRP10
		case FormatYUV444P12:
			return FormatGBRP12
		}
	}
	if vui.VideoSignalTypePresentFlag && vui.VideoFullRangeFlag && f == FormatYUV420P {
		return FormatYUVJ420P
	}
	return f
}
