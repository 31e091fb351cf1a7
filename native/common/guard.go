package common

import "errors"

// ErrModulePaused is returned when the node-level pause switch disables a
// native module.
var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a named module is paused.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the call when the supplied module is paused. A nil view or
// empty module name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
