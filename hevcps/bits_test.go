package hevcps

import "testing"

func TestBitReaderReadBits(t *testing.T) {
	t.Parallel()
	br := newBitReader([]byte{0xb5}) // 1011 0101
	v, err := br.ReadBits(4)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if v != 0xb {
		t.Errorf("got %x, want 0xb", v)
	}
	v, err = br.ReadBits(4)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if v != 0x5 {
		t.Errorf("got %x, want 0x5", v)
	}
}

func TestBitReaderReadUE(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	w.writeUE(0)
	w.writeUE(1)
	w.writeUE(5)
	w.writeUE(100)
	br := newBitReader(w.bytes())
	for _, want := range []uint32{0, 1, 5, 100} {
		got, err := br.ReadUE()
		if err != nil {
			t.Fatalf("ReadUE: %v", err)
		}
		if got != want {
			t.Errorf("ReadUE: got %d, want %d", got, want)
		}
	}
}

func TestBitReaderReadSE(t *testing.T) {
	t.Parallel()
	w := &bitWriter{}
	vals := []int32{0, 1, -1, 2, -2, 17, -17}
	for _, v := range vals {
		w.writeSE(v)
	}
	br := newBitReader(w.bytes())
	for _, want := range vals {
		got, err := br.ReadSE()
		if err != nil {
			t.Fatalf("ReadSE: %v", err)
		}
		if got != want {
			t.Errorf("ReadSE: got %d, want %d", got, want)
		}
	}
}

func TestBitReaderPeekBitsDoesNotConsume(t *testing.T) {
	t.Parallel()
	br := newBitReader([]byte{0xf0})
	peeked, err := br.PeekBits(4)
	if err != nil {
		t.Fatalf("PeekBits: %v", err)
	}
	if peeked != 0xf {
		t.Errorf("peeked: got %x, want 0xf", peeked)
	}
	read, err := br.ReadBits(4)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if read != 0xf {
		t.Errorf("read after peek: got %x, want 0xf", read)
	}
}

func TestBitReaderMarkReset(t *testing.T) {
	t.Parallel()
	br := newBitReader([]byte{0xaa, 0xbb})
	mark := br.Mark()
	first, _ := br.ReadBits(8)
	br.Reset(mark)
	second, _ := br.ReadBits(8)
	if first != second {
		t.Errorf("mark/reset mismatch: %x != %x", first, second)
	}
	if first != 0xaa {
		t.Errorf("got %x, want 0xaa", first)
	}
}

func TestBitReaderAlignToByte(t *testing.T) {
	t.Parallel()
	br := newBitReader([]byte{0xff, 0x01})
	br.ReadBits(3)
	br.AlignToByte()
	v, err := br.ReadBits(8)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if v != 0x01 {
		t.Errorf("got %x, want 0x01", v)
	}
}

func TestBitReaderBitsLeft(t *testing.T) {
	t.Parallel()
	br := newBitReader([]byte{0x00, 0x00})
	if br.BitsLeft() != 16 {
		t.Fatalf("BitsLeft: got %d, want 16", br.BitsLeft())
	}
	br.ReadBits(5)
	if br.BitsLeft() != 11 {
		t.Errorf("BitsLeft after read: got %d, want 11", br.BitsLeft())
	}
}

func TestBitReaderExhausted(t *testing.T) {
	t.Parallel()
	br := newBitReader([]byte{0x00})
	if _, err := br.ReadBits(8); err != nil {
		t.Fatalf("unexpected error reading last byte: %v", err)
	}
	if _, err := br.ReadBit(); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}

func TestBitReaderReadUETooManyLeadingZeros(t *testing.T) {
	t.Parallel()
	// 32+ leading zero bits with no terminating 1 bit is malformed.
	br := newBitReader([]byte{0x00, 0x00, 0x00, 0x00, 0x00})
	if _, err := br.ReadUE(); err == nil {
		t.Fatal("expected error for runaway Exp-Golomb prefix")
	}
}
