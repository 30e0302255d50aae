package driven

// ConfigStore holds the persisted brush and text settings as dotted keys
// ("brush.size", "text.face"). Missing or mistyped keys read as zero values
// so SettingsService can substitute its defaults.
type ConfigStore interface {
	GetString(key string) string
	GetInt(key string) int

	// Set stores a value and persists the file immediately.
	Set(key string, value any) error

	// Path returns the location of the configuration file.
	Path() string
}
