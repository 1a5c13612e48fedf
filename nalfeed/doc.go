// Package nalfeed is the Annex B framer hevcps expects to sit in front
// of it: it splits a byte stream on start codes, strips emulation
// prevention bytes, and classifies each NAL unit by HEVC NAL type before
// handing its RBSP payload to hevcps's decode entry points. hevcps
// itself only consumes an already-framed BitSource (spec.md section 1's
// "out of scope: the NAL-unit framer ... is an external collaborator");
// this package is that collaborator, adapted from the teacher's
// demux/h265.go and internal/demux/h264.go.
package nalfeed
