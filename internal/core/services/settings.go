package services

import (
	"fmt"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyBrushName  = "brush.name"
	keyBrushSize  = "brush.size"
	keyBrushColor = "brush.color"
	keyTextFace   = "text.face"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Brush: domain.Brush{
			Name:  s.getString(keyBrushName, defaults.Brush.Name),
			Size:  s.getInt(keyBrushSize, defaults.Brush.Size),
			Color: s.getString(keyBrushColor, defaults.Brush.Color),
		},
		Text: domain.TextSettings{
			Face: s.getTextFace(defaults.Text.Face),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyBrushName, settings.Brush.Name); err != nil {
		return fmt.Errorf("save brush name: %w", err)
	}
	if err := s.configStore.Set(keyBrushSize, settings.Brush.Size); err != nil {
		return fmt.Errorf("save brush size: %w", err)
	}
	if err := s.configStore.Set(keyBrushColor, settings.Brush.Color); err != nil {
		return fmt.Errorf("save brush color: %w", err)
	}
	if err := s.configStore.Set(keyTextFace, settings.Text.Face.String()); err != nil {
		return fmt.Errorf("save text face: %w", err)
	}
	return nil
}

// SetBrush updates the stroke brush.
func (s *SettingsService) SetBrush(brush domain.Brush) error {
	if err := brush.Validate(); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Keep the current label when none is given
	if brush.Name == "" {
		brush.Name = settings.Brush.Name
	}
	settings.Brush = brush

	return s.Save(settings)
}

// SetTextFace updates the glyph face.
func (s *SettingsService) SetTextFace(face domain.TextFace) error {
	if !face.IsValid() {
		return fmt.Errorf("%w: text face %q", domain.ErrInvalidInput, face)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Text.Face = face

	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getTextFace(defaultVal domain.TextFace) domain.TextFace {
	val := s.configStore.GetString(keyTextFace)
	if val == "" {
		return defaultVal
	}
	face := domain.TextFace(val)
	if !face.IsValid() {
		return defaultVal
	}
	return face
}
