package hevcps

import (
	"errors"
	"testing"
)

func TestErrorUnwrapSentinels(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kind Kind
		want error
	}{
		{KindTruncated, ErrTruncated},
		{KindInvalidData, ErrInvalidData},
		{KindOutOfMemory, ErrOutOfMemory},
		{KindWarning, ErrInvalidData},
	}
	for _, c := range cases {
		e := newErr(c.kind, "some_elem", errors.New("boom"))
		if !errors.Is(e, c.want) {
			t.Errorf("Kind %v: errors.Is(%v) = false, want true", c.kind, c.want)
		}
	}
}

func TestErrorMessageIncludesElemAndKind(t *testing.T) {
	t.Parallel()
	e := invalid("sps_seq_parameter_set_id", "id %d out of range", 99)
	msg := e.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
	if e.Elem != "sps_seq_parameter_set_id" {
		t.Errorf("Elem: got %q", e.Elem)
	}
	if e.Kind != KindInvalidData {
		t.Errorf("Kind: got %v, want KindInvalidData", e.Kind)
	}
}

func TestTruncatedHelperWrapsBitsExhausted(t *testing.T) {
	t.Parallel()
	e := truncated("vps_video_parameter_set_id", errBitsExhausted)
	if e.Kind != KindTruncated {
		t.Errorf("Kind: got %v, want KindTruncated", e.Kind)
	}
	if !errors.Is(e, ErrTruncated) {
		t.Error("expected errors.Is match against ErrTruncated")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	cases := map[Kind]string{
		KindTruncated:   "truncated",
		KindInvalidData: "invalid data",
		KindOutOfMemory: "out of memory",
		KindWarning:     "warning",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
