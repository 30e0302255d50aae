package driving

import "github.com/custodia-labs/managed-outline/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetBrush updates the stroke brush.
	SetBrush(brush domain.Brush) error

	// SetTextFace updates the glyph face.
	SetTextFace(face domain.TextFace) error

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
