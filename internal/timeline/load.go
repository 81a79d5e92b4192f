package timeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Loader error codes.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeReadFailed  = "E002"
	ErrCodeUnsupported = "E003"
	ErrCodeParseFailed = "E004"
	ErrCodeNotFound    = "E005"
	ErrCodeBuildFailed = "E006"
)

// LoadError reports why a timeline document could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Err     error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Document is the on-disk shape of a timeline. Times are float seconds.
type Document struct {
	StartPhase string     `yaml:"start_phase,omitempty" json:"start_phase,omitempty"`
	Phases     []PhaseDoc `yaml:"phases" json:"phases"`
	Jumps      []JumpDoc  `yaml:"jumps,omitempty" json:"jumps,omitempty"`
}

// PhaseDoc is the document form of a Phase.
type PhaseDoc struct {
	Name          string   `yaml:"name" json:"name"`
	ClearSiblings bool     `yaml:"clear_siblings,omitempty" json:"clear_siblings,omitempty"`
	OnEnter       []CueDoc `yaml:"on_enter,omitempty" json:"on_enter,omitempty"`
	OnStop        []CueDoc `yaml:"on_stop,omitempty" json:"on_stop,omitempty"`
	OnClear       []CueDoc `yaml:"on_clear,omitempty" json:"on_clear,omitempty"`
}

// CueDoc is the document form of a Cue.
type CueDoc struct {
	Emitter string  `yaml:"emitter" json:"emitter"`
	Delay   float64 `yaml:"delay,omitempty" json:"delay,omitempty"`
}

// JumpDoc is the document form of a Jump.
type JumpDoc struct {
	From        string  `yaml:"from" json:"from"`
	To          string  `yaml:"to" json:"to"`
	StartOffset float64 `yaml:"start_offset,omitempty" json:"start_offset,omitempty"`
}

// Load reads a timeline document, choosing the format from the file
// extension (.yaml, .yml or .cue).
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "timeline file not found", Path: path}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: "reading timeline file", Path: path, Err: err}
	}

	var tbl *Table
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		tbl, err = ParseYAML(data)
	case ".cue":
		tbl, err = ParseCUE(data, path)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported timeline extension %q (want .yaml, .yml or .cue)", filepath.Ext(path)),
			Path:    path,
		}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	return tbl, nil
}

// ParseYAML decodes a YAML timeline document. Unknown fields are rejected.
func ParseYAML(data []byte) (*Table, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: "empty timeline document"}
		}
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "parsing YAML", Err: err}
	}
	return tableOf(&doc)
}

// ParseCUE evaluates a CUE source and decodes its top-level `timeline`
// value. The filename is only used for positions in error messages.
func ParseCUE(data []byte, filename string) (*Table, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: "building CUE value", Err: err}
	}

	tv := v.LookupPath(cue.ParsePath("timeline"))
	if !tv.Exists() {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "no top-level timeline value"}
	}
	if err := tv.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: "timeline value is not concrete", Err: err}
	}

	var doc Document
	if err := tv.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "decoding timeline value", Err: err}
	}
	return tableOf(&doc)
}

func tableOf(doc *Document) (*Table, error) {
	t, err := doc.Table()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "invalid time value", Err: err}
	}
	return t, nil
}

// Table converts the document into a Table. Times that are not finite or
// do not fit a Duration are rejected.
func (d *Document) Table() (*Table, error) {
	t := &Table{
		StartPhase: d.StartPhase,
		Phases:     make([]Phase, 0, len(d.Phases)),
		Jumps:      make([]Jump, 0, len(d.Jumps)),
	}
	for i, p := range d.Phases {
		phase := Phase{Name: p.Name, ClearSiblings: p.ClearSiblings}
		var err error
		if phase.OnEnter, err = cuesFromDocs(fmt.Sprintf("phases[%d].on_enter", i), p.OnEnter); err != nil {
			return nil, err
		}
		if phase.OnStop, err = cuesFromDocs(fmt.Sprintf("phases[%d].on_stop", i), p.OnStop); err != nil {
			return nil, err
		}
		if phase.OnClear, err = cuesFromDocs(fmt.Sprintf("phases[%d].on_clear", i), p.OnClear); err != nil {
			return nil, err
		}
		t.Phases = append(t.Phases, phase)
	}
	for i, j := range d.Jumps {
		offset, err := ParseSeconds(j.StartOffset)
		if err != nil {
			return nil, fmt.Errorf("jumps[%d].start_offset: %w", i, err)
		}
		t.Jumps = append(t.Jumps, Jump{From: j.From, To: j.To, StartOffset: offset})
	}
	return t, nil
}

// DocumentOf converts a Table back into its document form.
func DocumentOf(t *Table) *Document {
	d := &Document{StartPhase: t.StartPhase}
	for _, p := range t.Phases {
		d.Phases = append(d.Phases, PhaseDoc{
			Name:          p.Name,
			ClearSiblings: p.ClearSiblings,
			OnEnter:       docsFromCues(p.OnEnter),
			OnStop:        docsFromCues(p.OnStop),
			OnClear:       docsFromCues(p.OnClear),
		})
	}
	for _, j := range t.Jumps {
		d.Jumps = append(d.Jumps, JumpDoc{From: j.From, To: j.To, StartOffset: j.StartOffset.Seconds()})
	}
	return d
}

// Seconds converts float seconds to a Duration, rounding to the nearest
// nanosecond. Out of range values saturate and NaN is zero.
func Seconds(s float64) time.Duration {
	d, err := ParseSeconds(s)
	if err == nil {
		return d
	}
	switch {
	case math.IsNaN(s):
		return 0
	case s > 0:
		return math.MaxInt64
	default:
		return math.MinInt64
	}
}

// ParseSeconds converts float seconds to a Duration, rounding to the
// nearest nanosecond. NaN, infinities and values beyond the Duration range
// are errors.
func ParseSeconds(s float64) (time.Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, fmt.Errorf("%v seconds is not a finite time", s)
	}
	ns := math.Round(s * float64(time.Second))
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
	if ns >= float64(math.MaxInt64) || ns < float64(math.MinInt64) {
		return 0, fmt.Errorf("%v seconds is out of range", s)
	}
	return time.Duration(ns), nil
}

func cuesFromDocs(field string, docs []CueDoc) ([]Cue, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	cues := make([]Cue, len(docs))
	for i, c := range docs {
		delay, err := ParseSeconds(c.Delay)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].delay: %w", field, i, err)
		}
		cues[i] = Cue{Emitter: EmitterID(c.Emitter), Delay: delay}
	}
	return cues, nil
}

func docsFromCues(cues []Cue) []CueDoc {
	if len(cues) == 0 {
		return nil
	}
	docs := make([]CueDoc, len(cues))
	for i, c := range cues {
		docs[i] = CueDoc{Emitter: string(c.Emitter), Delay: c.Delay.Seconds()}
	}
	return docs
}
