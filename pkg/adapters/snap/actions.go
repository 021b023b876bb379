package snap

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

// Snap action codes stored in Button.ActionCode.
const (
	codeNavigate     = "Navigate"
	codeGoBack       = "GoBack"
	codeGoHome       = "GoHome"
	codeSpeak        = "SpeakMessage"
	codeInsertText   = "InsertText"
	codeDeleteWord   = "DeleteWord"
	codeDeleteLetter = "DeleteCharacter"
	codeClear        = "ClearMessageWindow"

	// paramPage carries a Page row id. paramTarget carries a navigation target
	// that names no page of the set and is never resolved against row ids.
	paramPage   = "page"
	paramTarget = "target"
	paramText   = "text"
)

var codeIntents = map[string]domain.Intent{
	codeNavigate:     domain.IntentNavigate,
	codeGoBack:       domain.IntentGoBack,
	codeGoHome:       domain.IntentGoHome,
	codeSpeak:        domain.IntentSpeak,
	codeInsertText:   domain.IntentInsertText,
	codeDeleteWord:   domain.IntentDeleteWord,
	codeDeleteLetter: domain.IntentDeleteLetter,
	codeClear:        domain.IntentClear,
}

var intentCodes = map[domain.Intent]string{
	domain.IntentNavigate:     codeNavigate,
	domain.IntentGoBack:       codeGoBack,
	domain.IntentGoHome:       codeGoHome,
	domain.IntentSpeak:        codeSpeak,
	domain.IntentInsertText:   codeInsertText,
	domain.IntentDeleteWord:   codeDeleteWord,
	domain.IntentDeleteLetter: codeDeleteLetter,
	domain.IntentClear:        codeClear,
}

// Codec maps Snap action codes to semantic actions and back.
type Codec struct {
	// PageID resolves a Page row reference to a page id.
	PageID func(ref string) (string, bool)
	// PageRef returns the Page row reference of a page id.
	PageRef func(id string) (string, bool)
}

var _ domain.ActionCodec = (*Codec)(nil)

// Platform implements domain.ActionCodec.
func (c *Codec) Platform() string {
	return Format
}

// Decode maps the first command. Unknown codes become platform-specific actions
// carrying the command verbatim.
func (c *Codec) Decode(cmds []domain.PlatformCommand) *domain.Action {
	if len(cmds) == 0 || cmds[0].ID == "" {
		return nil
	}
	cmd := cmds[0]
	var action *domain.Action
	intent, ok := codeIntents[cmd.ID]
	switch {
	case !ok:
		action = &domain.Action{Intent: domain.IntentPlatformSpecific}
	case intent == domain.IntentNavigate:
		action = domain.Navigate(c.target(cmd))
	case intent == domain.IntentSpeak, intent == domain.IntentInsertText:
		text, _ := cmd.Param(paramText)
		action = &domain.Action{Intent: intent, Text: text}
	default:
		action = domain.Simple(intent)
	}
	return action.WithPlatform(Format, cloneCommands(cmds)...)
}

// Encode maps an action to commands. Stored Snap commands are replayed when the
// first one still means the action's intent.
func (c *Codec) Encode(a *domain.Action) []domain.PlatformCommand {
	if a == nil {
		return nil
	}
	if stored := a.Commands(Format); len(stored) > 0 {
		intent, ok := codeIntents[stored[0].ID]
		if !ok {
			intent = domain.IntentPlatformSpecific
		}
		if intent == a.Intent {
			return c.refresh(cloneCommands(stored), a)
		}
	}
	if a.Intent == domain.IntentPlatformSpecific {
		if a.Fallback != nil {
			return c.Encode(a.Fallback)
		}
		return nil
	}
	code, ok := intentCodes[a.Intent]
	if !ok {
		return nil
	}
	cmd := domain.PlatformCommand{ID: code}
	switch a.Intent {
	case domain.IntentNavigate:
		c.setTarget(&cmd, a.TargetPageID)
	case domain.IntentSpeak, domain.IntentInsertText:
		if a.Text != "" || a.Intent == domain.IntentInsertText {
			cmd.Params = []domain.Param{{Key: paramText, Value: a.Text}}
		}
	}
	return []domain.PlatformCommand{cmd}
}

func (c *Codec) refresh(cmds []domain.PlatformCommand, a *domain.Action) []domain.PlatformCommand {
	code := intentCodes[a.Intent]
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.ID != code {
			continue
		}
		switch a.Intent {
		case domain.IntentNavigate:
			c.setTarget(cmd, a.TargetPageID)
		case domain.IntentSpeak, domain.IntentInsertText:
			if _, had := cmd.Param(paramText); had || a.Text != "" {
				cmd.SetParam(paramText, a.Text)
			}
		}
		break
	}
	return cmds
}

// target reads the navigation target of a Navigate command. A Page row id
// that resolves wins; an explicit unresolved target is kept verbatim.
func (c *Codec) target(cmd domain.PlatformCommand) string {
	if ref, ok := cmd.Param(paramPage); ok {
		if c.PageID != nil {
			if id, ok := c.PageID(ref); ok {
				return id
			}
		}
		if raw, ok := cmd.Param(paramTarget); ok {
			return raw
		}
		return ref
	}
	raw, _ := cmd.Param(paramTarget)
	return raw
}

// setTarget writes pageID as a Page row reference when the set has that page,
// and under paramTarget otherwise.
func (c *Codec) setTarget(cmd *domain.PlatformCommand, pageID string) {
	params := cmd.Params[:0:0]
	for _, p := range cmd.Params {
		if p.Key != paramPage && p.Key != paramTarget {
			params = append(params, p)
		}
	}
	cmd.Params = params
	if c.PageRef != nil {
		if ref, ok := c.PageRef(pageID); ok {
			cmd.SetParam(paramPage, ref)
			return
		}
	}
	cmd.SetParam(paramTarget, pageID)
}

func cloneCommands(cmds []domain.PlatformCommand) []domain.PlatformCommand {
	out := make([]domain.PlatformCommand, len(cmds))
	for i, cmd := range cmds {
		out[i] = domain.PlatformCommand{ID: cmd.ID, Params: append([]domain.Param(nil), cmd.Params...)}
	}
	return out
}

// decodeParams reads the ActionParameters column, a JSON array of key/value pairs.
func decodeParams(raw string) ([]domain.Param, error) {
	if raw == "" {
		return nil, nil
	}
	var params []domain.Param
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("invalid action parameters: %w", err)
	}
	return params, nil
}

func encodeParams(params []domain.Param) (string, error) {
	if len(params) == 0 {
		return "", nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
