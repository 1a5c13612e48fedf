package hevcps

import (
	"fmt"
	"log/slog"
)

// ErrRecognition is a bitmask controlling how aggressively parsing treats
// anomalies, mirroring FFmpeg's err_recognition flags that spec.md section
// 6 references.
type ErrRecognition uint32

const (
	// ErrRecognitionExplode escalates every KindWarning anomaly to
	// KindInvalidData, making the parse fail instead of merely logging.
	ErrRecognitionExplode ErrRecognition = 1 << iota
)

// Context carries the diagnostic and behavioral configuration threaded
// through every decode call: the error-recognition bitmask, the VUI
// alternate-header lookahead toggle, and the logger anomalies are
// reported to. The VUI default-display-window merge is a separate,
// per-call choice — see decodeSPS's and Registry.DecodeSPS's
// applyDefDispWin parameter.
type Context struct {
	// ErrRecognition controls warning escalation; see
	// ErrRecognitionExplode.
	ErrRecognition ErrRecognition

	// VUIAlternateHeaderHeuristic preserves the original decoder's
	// defensive lookahead described in spec.md section 4.5 and flagged
	// as an open question in section 9: if the VUI bitstream looks like
	// it uses an alternate (non-normative) header layout, the
	// default-display-window field is treated as absent and the reader
	// rolls back one field. Defaults to true (matching the original's
	// always-on behavior) when a zero-value Context is used.
	VUIAlternateHeaderHeuristic *bool

	// Logger receives Warning-kind diagnostics. A nil Logger falls back to
	// slog.Default(). Registry lifecycle events go to the logger passed to
	// NewRegistry, not to this one.
	Logger *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Context) explode() bool {
	if c == nil {
		return false
	}
	return c.ErrRecognition&ErrRecognitionExplode != 0
}

func (c *Context) vuiAlternateHeaderHeuristic() bool {
	if c == nil || c.VUIAlternateHeaderHeuristic == nil {
		return true
	}
	return *c.VUIAlternateHeaderHeuristic
}

// warn reports a Kind Warning anomaly. It returns an error only when the
// EXPLODE bit escalates it to KindInvalidData; otherwise it logs and
// returns nil so the caller can continue parsing.
func (c *Context) warn(elem string, format string, args ...any) error {
	e := newErr(KindWarning, elem, fmt.Errorf(format, args...))
	if c.explode() {
		e.Kind = KindInvalidData
		return e
	}
	c.logger().Warn(e.Error(), "component", "hevcps", "element", elem)
	return nil
}
