package hevcps

import (
	"bytes"
	"log/slog"
)

// Registry sizing, per spec.md section 3.8.
const (
	MaxVPSCount = 16
	MaxSPSCount = 16
	MaxPPSCount = 64
)

type vpsSlot struct {
	vps *VPS
	raw []byte
}

type spsSlot struct {
	sps *SPS
	raw []byte
}

type ppsSlot struct {
	pps *PPS
	raw []byte
}

// Registry holds the three fixed-size parameter-set slot arrays plus the
// three "active" weak references a NAL dispatcher drives slice parsing
// through (spec.md section 3.8). Per spec.md section 5, a Registry is
// single-threaded and synchronous: it performs no internal locking and
// must be owned by one caller at a time, unlike the teacher's
// internal/stream/manager.go (which guards its map with a sync.RWMutex
// because streams are created and removed from concurrent goroutines).
// Active references are "weak" in the sense that they are recomputed
// from slot occupancy on every read rather than held directly, so a
// removed slot is observed as absent without a separate invalidation
// step.
type Registry struct {
	logger *slog.Logger

	vps [MaxVPSCount]*vpsSlot
	sps [MaxSPSCount]*spsSlot
	pps [MaxPPSCount]*ppsSlot

	activeVPSID  uint8
	hasActiveVPS bool
	activeSPSID  uint32
	hasActiveSPS bool
	activePPSID  uint32
	hasActivePPS bool
}

// NewRegistry creates an empty Registry. If logger is nil, slog.Default()
// is used for lifecycle diagnostics.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger.With("component", "hevcps-registry")}
}

// LookupVPS returns the VPS stored at id, if any.
func (r *Registry) LookupVPS(id uint8) (*VPS, bool) {
	if int(id) >= len(r.vps) || r.vps[id] == nil {
		return nil, false
	}
	return r.vps[id].vps, true
}

// LookupSPS returns the SPS stored at id, if any.
func (r *Registry) LookupSPS(id uint32) (*SPS, bool) {
	if int(id) >= len(r.sps) || r.sps[id] == nil {
		return nil, false
	}
	return r.sps[id].sps, true
}

// LookupPPS returns the PPS stored at id, if any.
func (r *Registry) LookupPPS(id uint32) (*PPS, bool) {
	if int(id) >= len(r.pps) || r.pps[id] == nil {
		return nil, false
	}
	return r.pps[id].pps, true
}

// ActiveVPS returns the current active VPS, recomputed from slot
// occupancy: if the slot backing the previously-set active id was
// removed, the active reference is observed as cleared.
func (r *Registry) ActiveVPS() (*VPS, bool) {
	if !r.hasActiveVPS {
		return nil, false
	}
	return r.LookupVPS(r.activeVPSID)
}

// ActiveSPS returns the current active SPS; see ActiveVPS.
func (r *Registry) ActiveSPS() (*SPS, bool) {
	if !r.hasActiveSPS {
		return nil, false
	}
	return r.LookupSPS(r.activeSPSID)
}

// ActivePPS returns the current active PPS; see ActiveVPS.
func (r *Registry) ActivePPS() (*PPS, bool) {
	if !r.hasActivePPS {
		return nil, false
	}
	return r.LookupPPS(r.activePPSID)
}

// SetActiveVPS, SetActiveSPS, SetActivePPS mark a stored id as the
// current active set, for subsequent dependent parsing.
func (r *Registry) SetActiveVPS(id uint8) { r.activeVPSID, r.hasActiveVPS = id, true }
func (r *Registry) SetActiveSPS(id uint32) { r.activeSPSID, r.hasActiveSPS = id, true }
func (r *Registry) SetActivePPS(id uint32) { r.activePPSID, r.hasActivePPS = id, true }

// removePPS implements spec.md section 4.8's PPS eviction: drop the
// slot and clear the active pointer if it referred to this slot,
// grounded on hevc_ps.c's remove_pps.
func (r *Registry) removePPS(id uint32) {
	if r.pps[id] == nil {
		return
	}
	if r.hasActivePPS && r.activePPSID == id {
		r.hasActivePPS = false
	}
	r.pps[id] = nil
}

// removeSPS implements spec.md section 4.8's SPS eviction: drop the
// slot, cascade to every PPS referencing it, and clear the active
// pointer if it referred to this slot, grounded on hevc_ps.c's
// remove_sps.
func (r *Registry) removeSPS(id uint32) {
	if r.sps[id] == nil {
		return
	}
	if r.hasActiveSPS && r.activeSPSID == id {
		r.hasActiveSPS = false
	}
	for i, slot := range r.pps {
		if slot != nil && slot.pps.SPSID == id {
			r.removePPS(uint32(i))
		}
	}
	r.sps[id] = nil
}

// removeVPS implements spec.md section 4.8's VPS eviction: cascades to
// every dependent SPS (and, transitively, PPS), grounded on hevc_ps.c's
// remove_vps.
func (r *Registry) removeVPS(id uint8) {
	if r.vps[id] == nil {
		return
	}
	if r.hasActiveVPS && r.activeVPSID == id {
		r.hasActiveVPS = false
	}
	for i, slot := range r.sps {
		if slot != nil && slot.sps.VPSID == id {
			r.removeSPS(uint32(i))
		}
	}
	r.vps[id] = nil
}

// DecodeVPS parses raw (an emulation-prevention-stripped VPS RBSP) and
// installs it at its vps_video_parameter_set_id slot, cascading removal
// of dependent SPS/PPS slots per spec.md section 4.8. A byte-identical
// re-submission at the same id is a silent no-op.
func (r *Registry) DecodeVPS(raw []byte, ctx *Context) (*VPS, error) {
	vps, err := decodeVPS(newBitReader(raw), ctx)
	if err != nil {
		return nil, err
	}
	if int(vps.ID) >= len(r.vps) {
		return nil, invalid("vps_video_parameter_set_id", "id %d out of range", vps.ID)
	}
	if slot := r.vps[vps.ID]; slot != nil && bytes.Equal(slot.raw, raw) {
		return slot.vps, nil
	}
	r.removeVPS(vps.ID)
	r.vps[vps.ID] = &vpsSlot{vps: vps, raw: append([]byte(nil), raw...)}
	r.logger.Info("vps installed", "id", vps.ID)
	return vps, nil
}

// DecodeSPS parses raw and installs it at its sps_seq_parameter_set_id
// slot, looking up its vps_id dependency through this Registry.
// applyDefDispWin selects whether the VUI default display window is
// merged into the SPS output window (spec.md section 6). nuhLayerID is
// the NAL unit header's nuh_layer_id, needed to select the
// multilayer-extension-SPS branch.
func (r *Registry) DecodeSPS(raw []byte, ctx *Context, applyDefDispWin bool, nuhLayerID int) (*SPS, error) {
	sps, err := decodeSPS(newBitReader(raw), ctx, r.LookupVPS, applyDefDispWin, nuhLayerID)
	if err != nil {
		return nil, err
	}
	if int(sps.SPSID) >= len(r.sps) {
		return nil, invalid("sps_seq_parameter_set_id", "id %d out of range", sps.SPSID)
	}
	if slot := r.sps[sps.SPSID]; slot != nil && bytes.Equal(slot.raw, raw) {
		return slot.sps, nil
	}
	r.removeSPS(sps.SPSID)
	r.sps[sps.SPSID] = &spsSlot{sps: sps, raw: append([]byte(nil), raw...)}
	r.logger.Info("sps installed", "id", sps.SPSID, "vps_id", sps.VPSID)
	return sps, nil
}

// DecodePPS parses raw and installs it at its pps_pic_parameter_set_id
// slot, looking up its sps_id dependency through this Registry.
func (r *Registry) DecodePPS(raw []byte, ctx *Context) (*PPS, error) {
	pps, err := decodePPS(newBitReader(raw), ctx, r.LookupSPS)
	if err != nil {
		return nil, err
	}
	if int(pps.ID) >= len(r.pps) {
		return nil, invalid("pps_pic_parameter_set_id", "id %d out of range", pps.ID)
	}
	if slot := r.pps[pps.ID]; slot != nil && bytes.Equal(slot.raw, raw) {
		return slot.pps, nil
	}
	r.removePPS(pps.ID)
	r.pps[pps.ID] = &ppsSlot{pps: pps, raw: append([]byte(nil), raw...)}
	r.logger.Info("pps installed", "id", pps.ID, "sps_id", pps.SPSID)
	return pps, nil
}
