package hevcps

import "testing"

// tinySPS builds an SPS value directly (bypassing bitstream decoding) with
// just the fields buildTileGeometry reads: a 4x2 CTB grid with 64-sample
// CTBs and an 8-sample minimum transform block.
func tinySPS() *SPS {
	return &SPS{
		CtbWidth:     4,
		CtbHeight:    2,
		Log2CtbSize:  6,
		Log2MinTbSize: 3,
		TbMask:        (1 << (6 - 3)) - 1,
	}
}

func TestBuildTileGeometrySingleTile(t *testing.T) {
	t.Parallel()
	sps := tinySPS()
	pps := &PPS{NumTileColumns: 1, NumTileRows: 1, UniformSpacing: true}

	g, err := buildTileGeometry(pps, sps)
	if err != nil {
		t.Fatalf("buildTileGeometry: %v", err)
	}
	if len(g.CtbAddrRSToTS) != 8 {
		t.Fatalf("CtbAddrRSToTS length: got %d, want 8", len(g.CtbAddrRSToTS))
	}
	for rs, ts := range g.CtbAddrRSToTS {
		if int(ts) != rs {
			t.Errorf("single-tile raster==tile-scan: CtbAddrRSToTS[%d] = %d, want %d", rs, ts, rs)
		}
	}
	for _, id := range g.TileID {
		if id != 0 {
			t.Errorf("expected all CTBs in tile 0, got %d", id)
		}
	}
}

func TestBuildTileGeometryUniformSplit(t *testing.T) {
	t.Parallel()
	sps := tinySPS()
	pps := &PPS{NumTileColumns: 2, NumTileRows: 2, UniformSpacing: true}

	g, err := buildTileGeometry(pps, sps)
	if err != nil {
		t.Fatalf("buildTileGeometry: %v", err)
	}
	wantColBD := []uint32{0, 2, 4}
	for i, v := range wantColBD {
		if g.ColBD[i] != v {
			t.Errorf("ColBD[%d] = %d, want %d", i, g.ColBD[i], v)
		}
	}
	wantRowBD := []uint32{0, 1, 2}
	for i, v := range wantRowBD {
		if g.RowBD[i] != v {
			t.Errorf("RowBD[%d] = %d, want %d", i, g.RowBD[i], v)
		}
	}
	// CTB(0,0) is raster address 0, in tile (0,0) -> tile-scan address 0 too.
	if g.CtbAddrRSToTS[0] != 0 {
		t.Errorf("CtbAddrRSToTS[0] = %d, want 0", g.CtbAddrRSToTS[0])
	}
	// CTB(2,0) (raster addr 2) is the first CTB of tile (1,0); with tile
	// (0,0) holding 2x1=2 CTBs, its tile-scan address is 2.
	if g.CtbAddrRSToTS[2] != 2 {
		t.Errorf("CtbAddrRSToTS[2] = %d, want 2", g.CtbAddrRSToTS[2])
	}
	if len(g.TilePosRS) != 4 {
		t.Errorf("TilePosRS length: got %d, want 4", len(g.TilePosRS))
	}
}

func TestBuildTileGeometryExplicitColumnWidths(t *testing.T) {
	t.Parallel()
	sps := tinySPS()
	pps := &PPS{
		NumTileColumns: 2,
		NumTileRows:    1,
		UniformSpacing: false,
		ColumnWidth:    []uint32{1, 3},
		RowHeight:      []uint32{2},
	}

	g, err := buildTileGeometry(pps, sps)
	if err != nil {
		t.Fatalf("buildTileGeometry: %v", err)
	}
	if g.ColBD[1] != 1 || g.ColBD[2] != 4 {
		t.Errorf("ColBD: got %v, want [0 1 4]", g.ColBD)
	}
}

func TestBuildTileGeometryMinTBAddrZSBorder(t *testing.T) {
	t.Parallel()
	sps := tinySPS()
	pps := &PPS{NumTileColumns: 1, NumTileRows: 1, UniformSpacing: true}

	g, err := buildTileGeometry(pps, sps)
	if err != nil {
		t.Fatalf("buildTileGeometry: %v", err)
	}
	side := int(sps.TbMask) + 2
	if len(g.MinTBAddrZS) != side || len(g.MinTBAddrZS[0]) != side {
		t.Fatalf("MinTBAddrZS dims: got %dx%d, want %dx%d", len(g.MinTBAddrZS), len(g.MinTBAddrZS[0]), side, side)
	}
	for y := 0; y < side; y++ {
		if g.MinTBAddrZS[y][0] != -1 {
			t.Errorf("MinTBAddrZS[%d][0] = %d, want -1 border sentinel", y, g.MinTBAddrZS[y][0])
		}
	}
	for x := 0; x < side; x++ {
		if g.MinTBAddrZS[0][x] != -1 {
			t.Errorf("MinTBAddrZS[0][%d] = %d, want -1 border sentinel", x, g.MinTBAddrZS[0][x])
		}
	}
	if g.MinTBAddrZS[1][1] != 0 {
		t.Errorf("MinTBAddrZS[1][1] = %d, want 0 for the top-left transform block", g.MinTBAddrZS[1][1])
	}
}
