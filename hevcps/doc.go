// Package hevcps parses and validates the high-level parameter-set syntax
// of HEVC (H.265) bitstreams: the Video Parameter Set (VPS), Sequence
// Parameter Set (SPS), and Picture Parameter Set (PPS), including the
// Annex F multi-layer extensions and the Annex H 3D asymmetric
// colour-mapping LUT.
//
// The package does not frame NAL units or strip emulation-prevention
// bytes; callers supply an already-extracted NAL payload with its 2-byte
// header and emulation-prevention bytes removed. See the nalfeed package
// for an adapter that does that framing.
//
// The three entry points are [Registry.DecodeVPS], [Registry.DecodeSPS],
// and [Registry.DecodePPS]. Each reads one parameter set from such a
// payload, validates it against the invariants in the ITU-T H.265
// specification, and on success installs it into the [Registry]. The
// registry owns parameter-set payloads in fixed slots keyed by id and
// applies the cascading-invalidation rule described on
// [Registry.DecodeVPS].
package hevcps
