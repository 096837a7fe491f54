package store

import (
	"errors"

	"github.com/stefanpenner/tempo/pkg/engine"
	"github.com/stefanpenner/tempo/pkg/routine"
)

// EngineSource adapts a Store to engine.Source.
type EngineSource struct {
	Store *Store
}

// ActiveRoutine returns nil when there is no schedule to follow.
func (src EngineSource) ActiveRoutine() (*routine.Routine, error) {
	r, err := src.Store.ActiveRoutine()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return r, err
}

// EngineSettings projects the persisted settings onto what the evaluator needs.
func (src EngineSource) EngineSettings() (engine.Settings, error) {
	settings, err := src.Store.LoadSettings()
	return engine.Settings{
		VitaminDEnabled: settings.VitaminDEnabled,
		VitaminDTime:    settings.VitaminDTime,
	}, err
}

// SaveRoutine writes r.
func (src EngineSource) SaveRoutine(r routine.Routine) error {
	return src.Store.SaveRoutine(r)
}
