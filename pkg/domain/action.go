package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Intent is the closed vocabulary of cross-platform button behaviours.
type Intent string

const (
	IntentNavigate     Intent = "navigate"
	IntentGoBack       Intent = "go_back"
	IntentGoHome       Intent = "go_home"
	IntentSpeak        Intent = "speak"
	IntentInsertText   Intent = "insert_text"
	IntentDeleteWord   Intent = "delete_word"
	IntentDeleteLetter Intent = "delete_letter"
	IntentClear        Intent = "clear"
	// IntentPlatformSpecific escapes the vocabulary. The original vendor commands
	// ride in Action.Platform so export stays lossless.
	IntentPlatformSpecific Intent = "platform_specific"
)

// Intents lists every intent. Codecs must be able to encode each of them.
var Intents = []Intent{
	IntentNavigate,
	IntentGoBack,
	IntentGoHome,
	IntentSpeak,
	IntentInsertText,
	IntentDeleteWord,
	IntentDeleteLetter,
	IntentClear,
	IntentPlatformSpecific,
}

// Category groups intents.
type Category string

const (
	CategoryNavigation    Category = "navigation"
	CategoryCommunication Category = "communication"
	CategoryTextEditing   Category = "text_editing"
	CategoryCustom        Category = "custom"
)

// Category returns the category of the intent.
func (i Intent) Category() Category {
	switch i {
	case IntentNavigate, IntentGoBack, IntentGoHome:
		return CategoryNavigation
	case IntentSpeak:
		return CategoryCommunication
	case IntentInsertText, IntentDeleteWord, IntentDeleteLetter, IntentClear:
		return CategoryTextEditing
	case IntentPlatformSpecific:
		return CategoryCustom
	default:
		return CategoryCustom
	}
}

// Valid reports whether i belongs to the vocabulary.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Param is one key/value parameter of a vendor command. Order is preserved.
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// PlatformCommand is a vendor command exactly as read from the source format.
type PlatformCommand struct {
	ID     string  `json:"id" yaml:"id"`
	Params []Param `json:"params,omitempty" yaml:"params,omitempty"`
}

// Param returns the first parameter value with the given key.
func (c PlatformCommand) Param(key string) (string, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// SetParam replaces the value of key, appending it if missing.
func (c *PlatformCommand) SetParam(key, value string) {
	for i := range c.Params {
		if c.Params[i].Key == key {
			c.Params[i].Value = value
			return
		}
	}
	c.Params = append(c.Params, Param{Key: key, Value: value})
}

// ParamMap returns the parameters as a map (later keys win).
func (c PlatformCommand) ParamMap() map[string]string {
	m := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		m[p.Key] = p.Value
	}
	return m
}

// Action is the semantic meaning of a button press.
type Action struct {
	Intent Intent

	// TargetPageID is set for IntentNavigate. It may not resolve (dangling).
	TargetPageID string

	// Text is the payload of IntentSpeak and IntentInsertText.
	Text string

	// Platform holds the raw vendor commands keyed by format name.
	Platform map[string][]PlatformCommand

	// Fallback is used by converters that cannot encode a platform-specific action
	// of another format.
	Fallback *Action
}

// ActionCodec translates between one platform's commands and semantic actions.
// Decode is partial on the command side: unknown commands must come back as
// IntentPlatformSpecific carrying the commands verbatim. Encode is total on the
// intent side: every intent has an encoding.
type ActionCodec interface {
	Platform() string
	Decode(cmds []PlatformCommand) *Action
	Encode(a *Action) []PlatformCommand
}

// Navigate creates a navigation action.
func Navigate(targetPageID string) *Action {
	return &Action{Intent: IntentNavigate, TargetPageID: targetPageID}
}

// Speak creates a speak action. An empty text means "speak the button message".
func Speak(text string) *Action {
	return &Action{Intent: IntentSpeak, Text: text}
}

// InsertText creates an insert-text action.
func InsertText(text string) *Action {
	return &Action{Intent: IntentInsertText, Text: text}
}

// Simple creates a parameterless action (go back, go home, deletes, clear).
func Simple(intent Intent) *Action {
	return &Action{Intent: intent}
}

// Custom creates a platform-specific action carrying vendor commands verbatim.
func Custom(platform string, cmds ...PlatformCommand) *Action {
	a := &Action{Intent: IntentPlatformSpecific}
	return a.WithPlatform(platform, cmds...)
}

// WithPlatform attaches raw vendor commands for a format.
func (a *Action) WithPlatform(platform string, cmds ...PlatformCommand) *Action {
	if a.Platform == nil {
		a.Platform = make(map[string][]PlatformCommand)
	}
	a.Platform[platform] = cmds
	return a
}

// Commands returns the raw vendor commands stored for a format.
func (a *Action) Commands(platform string) []PlatformCommand {
	if a == nil || a.Platform == nil {
		return nil
	}
	return a.Platform[platform]
}

// Category returns the category of the action's intent.
func (a *Action) Category() Category {
	return a.Intent.Category()
}

// IsNavigation reports whether the action targets another page.
func (a *Action) IsNavigation() bool {
	return a != nil && a.Intent == IntentNavigate
}

// Describe returns a textual rendering for consumers that do not understand the intent.
func (a *Action) Describe() string {
	if a == nil {
		return ""
	}
	switch a.Intent {
	case IntentNavigate:
		return "navigate:" + a.TargetPageID
	case IntentSpeak, IntentInsertText:
		if a.Text == "" {
			return string(a.Intent)
		}
		return string(a.Intent) + ":" + a.Text
	case IntentGoBack, IntentGoHome, IntentDeleteWord, IntentDeleteLetter, IntentClear:
		return string(a.Intent)
	case IntentPlatformSpecific:
		platforms := make([]string, 0, len(a.Platform))
		for platform := range a.Platform {
			platforms = append(platforms, platform)
		}
		sort.Strings(platforms)
		var parts []string
		for _, platform := range platforms {
			for _, c := range a.Platform[platform] {
				parts = append(parts, fmt.Sprintf("%s/%s", platform, c.ID))
			}
		}
		if len(parts) == 0 && a.Fallback != nil {
			return a.Fallback.Describe()
		}
		return "custom:" + strings.Join(parts, ",")
	default:
		return "unknown"
	}
}

// Clone returns a deep copy of the action.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	c := *a
	if a.Platform != nil {
		c.Platform = make(map[string][]PlatformCommand, len(a.Platform))
		for k, cmds := range a.Platform {
			copied := make([]PlatformCommand, len(cmds))
			for i, cmd := range cmds {
				copied[i] = PlatformCommand{ID: cmd.ID, Params: append([]Param(nil), cmd.Params...)}
			}
			c.Platform[k] = copied
		}
	}
	c.Fallback = a.Fallback.Clone()
	return &c
}
