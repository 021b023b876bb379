package domain

// ImportOptions configures a single import call.
type ImportOptions struct {
	// LoadAudio dereferences audio recordings into Button.Audio.
	LoadAudio bool `json:"load_audio" yaml:"load_audio" mapstructure:"load_audio"`
	// LoadImages reads resolved image entries into Button.Image.Data.
	LoadImages bool `json:"load_images" yaml:"load_images" mapstructure:"load_images"`
}

// DefaultImportOptions loads everything.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{LoadAudio: true, LoadImages: true}
}
