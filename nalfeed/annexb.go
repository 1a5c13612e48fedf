package nalfeed

import "github.com/zsiec/hevcps"

// HEVC NAL unit type constants, ITU-T H.265 Table 7-1 — carried over
// from the teacher's demux/h265.go.
const (
	NALTypeVPS       = 32
	NALTypeSPS       = 33
	NALTypePPS       = 34
	NALTypeAUD       = 35
	NALTypeEOS       = 36
	NALTypeEOB       = 37
	NALTypeFiller    = 38
	NALTypeSEIPrefix = 39
	NALTypeSEISuffix = 40
)

// NALUnit is one Annex B NAL unit: its HEVC NAL type and its raw bytes
// (including the 2-byte NAL header, without the start code), as found by
// Split.
type NALUnit struct {
	Type byte
	Data []byte
}

// NALType extracts the 6-bit NAL unit type from an HEVC 2-byte NAL
// header's first byte: forbidden(1) | type(6) | layer_id_high(1).
func NALType(firstByte byte) byte {
	return (firstByte >> 1) & 0x3f
}

// LayerID extracts nuh_layer_id (6 bits, split across both header
// bytes) from an HEVC 2-byte NAL header.
func LayerID(header [2]byte) int {
	return int(header[0]&0x1)<<5 | int(header[1]>>3)
}

// Split scans data for Annex B start codes (00 00 01 or 00 00 00 01) and
// returns one NALUnit per contiguous run between them, adapted from the
// teacher's demux internal parseAnnexBGeneric (internal/demux/h264.go).
func Split(data []byte) []NALUnit {
	n := len(data)
	if n < 4 {
		return nil
	}

	type scPos struct{ scStart, dataStart int }
	var positions []scPos
	i := 0
	for i < n-2 {
		if data[i] == 0 && data[i+1] == 0 {
			if i < n-3 && data[i+2] == 0 && data[i+3] == 1 {
				positions = append(positions, scPos{scStart: i, dataStart: i + 4})
				i += 4
				continue
			}
			if data[i+2] == 1 {
				positions = append(positions, scPos{scStart: i, dataStart: i + 3})
				i += 3
				continue
			}
		}
		i++
	}

	var units []NALUnit
	for idx, pos := range positions {
		if pos.dataStart >= n {
			continue
		}
		end := n
		if idx+1 < len(positions) {
			end = positions[idx+1].scStart
		}
		if pos.dataStart+2 > end {
			continue
		}
		units = append(units, NALUnit{
			Type: NALType(data[pos.dataStart]),
			Data: data[pos.dataStart:end],
		})
	}
	return units
}

// StripEmulationPrevention removes 00 00 03 emulation-prevention byte
// sequences from a NAL payload, producing the RBSP hevcps's decode
// functions expect. Adapted from the teacher's
// internal/demux/h264.go:removeEmulationPrevention.
func StripEmulationPrevention(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 3 &&
			(i+3 >= len(data) || data[i+3] <= 3) {
			out = append(out, 0, 0)
			i += 2
		} else {
			out = append(out, data[i])
		}
	}
	return out
}

// RBSP strips this unit's 2-byte NAL header and its emulation-prevention
// bytes, returning the payload hevcps's decode functions expect.
func (u NALUnit) RBSP() []byte {
	if len(u.Data) < 2 {
		return nil
	}
	return StripEmulationPrevention(u.Data[2:])
}

// Header returns this unit's 2-byte NAL header.
func (u NALUnit) Header() [2]byte {
	var h [2]byte
	if len(u.Data) >= 2 {
		h[0], h[1] = u.Data[0], u.Data[1]
	}
	return h
}

// Feed splits an Annex B byte stream and decodes every VPS/SPS/PPS NAL
// unit it contains through reg, in stream order, skipping all other NAL
// types. It is the minimal driver loop spec.md section 5 describes: "one
// logical owner — the NAL dispatcher — calls the entry points
// sequentially".
func Feed(data []byte, reg *hevcps.Registry, ctx *hevcps.Context) error {
	for _, u := range Split(data) {
		rbsp := u.RBSP()
		switch u.Type {
		case NALTypeVPS:
			if _, err := reg.DecodeVPS(rbsp, ctx); err != nil {
				return err
			}
		case NALTypeSPS:
			layerID := LayerID(u.Header())
			if _, err := reg.DecodeSPS(rbsp, ctx, true, layerID); err != nil {
				return err
			}
		case NALTypePPS:
			if _, err := reg.DecodePPS(rbsp, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
