package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/phaseplay/internal/timeline"
)

// loadTimeline loads a timeline document, reporting load failures through
// the formatter as command errors (exit code 2).
func loadTimeline(f *OutputFormatter, path string) (*timeline.Table, error) {
	f.Debug("loading timeline", "path", path)

	tbl, err := timeline.Load(path)
	if err == nil {
		f.Debug("timeline loaded", "path", path, "phases", len(tbl.Phases), "jumps", len(tbl.Jumps))
		return tbl, nil
	}

	code, message := timeline.ErrCodeGeneric, err.Error()
	var loadErr *timeline.LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
		if loadErr.Err != nil {
			message = fmt.Sprintf("%s: %v", message, loadErr.Err)
		}
	}
	_ = f.Error(code, message, map[string]string{"path": path})
	return nil, WrapExitError(ExitCommandError, "failed to load timeline", err)
}
