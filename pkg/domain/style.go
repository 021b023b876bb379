package domain

// Style holds optional visual attributes. Zero values mean "not set".
// Style is comparable, so equal styles can be used as map keys for deduplication.
type Style struct {
	BackgroundColor string  `json:"background_color,omitempty" yaml:"background_color,omitempty"`
	BorderColor     string  `json:"border_color,omitempty" yaml:"border_color,omitempty"`
	FontColor       string  `json:"font_color,omitempty" yaml:"font_color,omitempty"`
	FontFamily      string  `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	FontSize        float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FontWeight      string  `json:"font_weight,omitempty" yaml:"font_weight,omitempty"`
}

// IsZero reports whether no attribute is set.
func (s *Style) IsZero() bool {
	return s == nil || *s == Style{}
}
