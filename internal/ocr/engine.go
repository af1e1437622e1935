package ocr

import (
	"context"
)

// Engine recognizes text in one image file. Implementations must be safe
// for concurrent Recognize calls; each call is independent.
type Engine interface {
	// Name identifies the engine in config, logs, and the engines command.
	Name() string

	// Available reports whether the engine can run right now. A non-nil
	// error describes what is missing.
	Available() error

	// Recognize runs OCR on the image at imagePath. The context carries
	// the invocation deadline; exceeding it returns *TimeoutError.
	Recognize(ctx context.Context, imagePath string, lang Language) (*Result, error)
}

// AutoEngine selects the first available engine in preference order.
const AutoEngine = "auto"

// EngineInfo describes one engine's availability for the engines command.
type EngineInfo struct {
	Name      string
	Available bool
	Detail    string
}

// Manager holds the configured engines in preference order and resolves
// which one a run should use.
type Manager struct {
	engines []Engine
}

// NewManager returns a manager over engines, ordered by preference.
func NewManager(engines ...Engine) *Manager {
	return &Manager{engines: engines}
}

// DefaultManager returns the standard engine set: the tesseract binary
// first, the in-process gosseract bindings as fallback.
func DefaultManager() *Manager {
	return NewManager(NewTesseract(), NewGosseract())
}

// Select resolves name to a usable engine. The empty string and AutoEngine
// pick the first available engine; a concrete name requires that engine to
// be available. When nothing can run, the error is *EngineUnavailableError;
// a name outside the configured set is *UnknownEngineError.
func (m *Manager) Select(name string) (Engine, error) {
	if name == "" || name == AutoEngine {
		var firstErr error
		for _, e := range m.engines {
			err := e.Available()
			if err == nil {
				return e, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, &EngineUnavailableError{Engine: AutoEngine, Err: firstErr}
	}

	for _, e := range m.engines {
		if e.Name() != name {
			continue
		}
		if err := e.Available(); err != nil {
			return nil, &EngineUnavailableError{Engine: name, Err: err}
		}
		return e, nil
	}
	return nil, &UnknownEngineError{Name: name}
}

// Info reports each engine's availability in preference order.
func (m *Manager) Info() []EngineInfo {
	infos := make([]EngineInfo, 0, len(m.engines))
	for _, e := range m.engines {
		info := EngineInfo{Name: e.Name(), Available: true}
		if err := e.Available(); err != nil {
			info.Available = false
			info.Detail = err.Error()
		}
		infos = append(infos, info)
	}
	return infos
}
