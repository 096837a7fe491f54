package store

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/stefanpenner/tempo/pkg/engine"
	"github.com/stefanpenner/tempo/pkg/routine"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		return routine.TimeOfDay(fl.Field().Int()).Valid()
	})
}

// LoadSettings reads settings.yaml. Missing keys keep their defaults and a
// missing file yields DefaultSettings.
func (s *Store) LoadSettings() (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(s.SettingsPath())
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("reading settings.yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: parsing settings.yaml: %v", ErrInvalidSettings, err)
	}
	if err := ValidateSettings(settings); err != nil {
		return DefaultSettings(), err
	}
	return settings, nil
}

// SaveSettings validates and writes settings.yaml.
func (s *Store) SaveSettings(settings Settings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serializing settings.yaml: %w", err)
	}
	return writeFileAtomic(s.SettingsPath(), data)
}

// ValidateSettings checks ranges and that the tick interval never skips a
// minute.
func ValidateSettings(settings Settings) error {
	if err := validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := engine.ValidateInterval(settings.TickInterval); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}
