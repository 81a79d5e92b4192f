package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/phaseplay/internal/timeline"
)

// DomainTable prefixes table fingerprints. The version suffix leaves room
// for changing the encoding later.
const DomainTable = "phaseplay/table/v1"

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TableHash fingerprints a timeline table. Tables that differ only in
// formatting of their source document hash identically.
func TableHash(t *timeline.Table) (string, error) {
	data, err := Marshal(TableValue(t))
	if err != nil {
		return "", fmt.Errorf("TableHash: %w", err)
	}
	return hashWithDomain(DomainTable, data), nil
}

// TableValue converts a table into canonical-encodable values.
// Durations become integer nanoseconds.
func TableValue(t *timeline.Table) map[string]any {
	phases := make([]any, len(t.Phases))
	for i, p := range t.Phases {
		phases[i] = map[string]any{
			"name":           p.Name,
			"clear_siblings": p.ClearSiblings,
			"on_enter":       cuesValue(p.OnEnter),
			"on_stop":        cuesValue(p.OnStop),
			"on_clear":       cuesValue(p.OnClear),
		}
	}
	jumps := make([]any, len(t.Jumps))
	for i, j := range t.Jumps {
		jumps[i] = map[string]any{
			"from":            j.From,
			"to":              j.To,
			"start_offset_ns": int64(j.StartOffset),
		}
	}
	return map[string]any{
		"start_phase": t.StartPhase,
		"phases":      phases,
		"jumps":       jumps,
	}
}

func cuesValue(cues []timeline.Cue) []any {
	out := make([]any, len(cues))
	for i, c := range cues {
		out[i] = map[string]any{
			"emitter":  string(c.Emitter),
			"delay_ns": int64(c.Delay),
		}
	}
	return out
}
