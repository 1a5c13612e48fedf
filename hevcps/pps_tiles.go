package hevcps

// TileGeometry is the CTB-addressing machinery derived from a PPS's tile
// layout once paired with its SPS (spec.md section 4.6's setup_pps step):
// raster-scan/tile-scan address conversion tables, per-tile bounds, and
// the Z-scan minimum transform-block address lookup used by slice
// parsing elsewhere in an HEVC decoder.
type TileGeometry struct {
	ColBD, RowBD []uint32 // length NumTileColumns+1 / NumTileRows+1
	ColIdxX      []uint32 // length sps.CtbWidth

	CtbAddrRSToTS []uint32 // length ctb_width*ctb_height
	CtbAddrTSToRS []uint32
	TileID        []uint32
	TileWidth     []uint32
	WppPosTS      []uint32
	TilePosRS     []uint32 // length NumTileColumns*NumTileRows

	// MinTBAddrZS is a (tbMask+2) x (tbMask+2) table, offset so that
	// MinTBAddrZS[y+1][x+1] gives the Z-scan address for transform-block
	// coordinate (x, y); row/column -1 is a -1 sentinel border, matching
	// hevc_ps.c's min_tb_addr_zs_tab layout.
	MinTBAddrZS [][]int32
}

// buildTileGeometry implements spec.md section 4.6's setup_pps: it
// derives column/row boundaries (computing a uniform split when
// pps.UniformSpacing is set), the raster<->tile-scan CTB address tables,
// per-CTB tile id and tile width, the WPP substream start positions, the
// per-tile top-left raster address, and the Z-scan minimum
// transform-block address table, grounded on hevc_ps.c's setup_pps.
func buildTileGeometry(pps *PPS, sps *SPS) (*TileGeometry, error) {
	g := &TileGeometry{}

	numCols := int(pps.NumTileColumns)
	numRows := int(pps.NumTileRows)
	ctbWidth := int(sps.CtbWidth)
	ctbHeight := int(sps.CtbHeight)

	columnWidth := pps.ColumnWidth
	rowHeight := pps.RowHeight
	if pps.UniformSpacing || len(columnWidth) == 0 {
		columnWidth = make([]uint32, numCols)
		for i := 0; i < numCols; i++ {
			columnWidth[i] = uint32((i+1)*ctbWidth/numCols - i*ctbWidth/numCols)
		}
		rowHeight = make([]uint32, numRows)
		for i := 0; i < numRows; i++ {
			rowHeight[i] = uint32((i+1)*ctbHeight/numRows - i*ctbHeight/numRows)
		}
	}

	g.ColBD = make([]uint32, numCols+1)
	for i := 0; i < numCols; i++ {
		g.ColBD[i+1] = g.ColBD[i] + columnWidth[i]
	}
	g.RowBD = make([]uint32, numRows+1)
	for i := 0; i < numRows; i++ {
		g.RowBD[i+1] = g.RowBD[i] + rowHeight[i]
	}

	g.ColIdxX = make([]uint32, ctbWidth)
	for i, j := 0, 0; i < ctbWidth; i++ {
		if uint32(i) > g.ColBD[j] {
			j++
		}
		g.ColIdxX[i] = uint32(j)
	}

	picAreaInCTBs := ctbWidth * ctbHeight
	g.CtbAddrRSToTS = make([]uint32, picAreaInCTBs)
	g.CtbAddrTSToRS = make([]uint32, picAreaInCTBs)
	g.TileID = make([]uint32, picAreaInCTBs)
	g.TileWidth = make([]uint32, picAreaInCTBs)
	g.WppPosTS = make([]uint32, picAreaInCTBs)

	for rs := 0; rs < picAreaInCTBs; rs++ {
		tbX := rs % ctbWidth
		tbY := rs / ctbWidth
		tileX, tileY := 0, 0
		for i := 0; i < numCols; i++ {
			if uint32(tbX) < g.ColBD[i+1] {
				tileX = i
				break
			}
		}
		for i := 0; i < numRows; i++ {
			if uint32(tbY) < g.RowBD[i+1] {
				tileY = i
				break
			}
		}

		val := uint32(0)
		for i := 0; i < tileX; i++ {
			val += rowHeight[tileY] * columnWidth[i]
		}
		for i := 0; i < tileY; i++ {
			val += uint32(ctbWidth) * rowHeight[i]
		}
		val += (uint32(tbY) - g.RowBD[tileY]) * columnWidth[tileX] + uint32(tbX) - g.ColBD[tileX]

		g.CtbAddrRSToTS[rs] = val
		g.CtbAddrTSToRS[val] = uint32(rs)
	}

	row, wppPos, tileID := 0, uint32(0), 0
	for j := 0; j < numRows; j++ {
		for i := 0; i < numCols; i++ {
			for y := g.RowBD[j]; y < g.RowBD[j+1]; y++ {
				for x := g.ColBD[i]; x < g.ColBD[i+1]; x++ {
					ts := g.CtbAddrRSToTS[y*uint32(ctbWidth)+x]
					g.TileID[ts] = uint32(tileID)
					g.TileWidth[ts] = columnWidth[tileID%numCols]
				}
				g.WppPosTS[row] = wppPos
				row++
				wppPos += columnWidth[tileID%numCols]
			}
			tileID++
		}
	}

	g.TilePosRS = make([]uint32, tileID)
	for j := 0; j < numRows; j++ {
		for i := 0; i < numCols; i++ {
			g.TilePosRS[j*numCols+i] = g.RowBD[j]*uint32(ctbWidth) + g.ColBD[i]
		}
	}

	log2Diff := int(sps.Log2CtbSize) - int(sps.Log2MinTbSize)
	side := int(sps.TbMask) + 2
	g.MinTBAddrZS = make([][]int32, side)
	for y := range g.MinTBAddrZS {
		g.MinTBAddrZS[y] = make([]int32, side)
	}
	for y := 0; y < side; y++ {
		g.MinTBAddrZS[y][0] = -1
	}
	for x := 0; x < side; x++ {
		g.MinTBAddrZS[0][x] = -1
	}
	for y := 0; y <= int(sps.TbMask); y++ {
		for x := 0; x <= int(sps.TbMask); x++ {
			tbX := x >> log2Diff
			tbY := y >> log2Diff
			rs := ctbWidth*tbY + tbX
			val := int32(g.CtbAddrRSToTS[rs]) << uint(log2Diff*2)
			for i := 0; i < log2Diff; i++ {
				m := 1 << i
				if m&x != 0 {
					val += int32(m * m)
				}
				if m&y != 0 {
					val += int32(2 * m * m)
				}
			}
			g.MinTBAddrZS[y+1][x+1] = val
		}
	}

	return g, nil
}
