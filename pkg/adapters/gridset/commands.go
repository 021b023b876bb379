package gridset

import (
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Grid 3 command ids understood by the codec.
const (
	cmdJumpTo         = "Jump.To"
	cmdJumpBack       = "Jump.Back"
	cmdJumpHome       = "Jump.Home"
	cmdSpeak          = "Action.Speak"
	cmdInsertText     = "Action.InsertText"
	cmdDeleteWord     = "Action.DeleteWord"
	cmdDeleteLetter   = "Action.DeleteLetter"
	cmdClear          = "Action.Clear"
	cmdAutoContent    = "AutoContent.Activate"
	settingsCmdPrefix = "Settings."
	paramGrid         = "grid"
	paramText         = "text"
)

var commandIntents = map[string]domain.Intent{
	cmdJumpTo:       domain.IntentNavigate,
	cmdJumpBack:     domain.IntentGoBack,
	cmdJumpHome:     domain.IntentGoHome,
	cmdSpeak:        domain.IntentSpeak,
	cmdInsertText:   domain.IntentInsertText,
	cmdDeleteWord:   domain.IntentDeleteWord,
	cmdDeleteLetter: domain.IntentDeleteLetter,
	cmdClear:        domain.IntentClear,
}

var intentCommands = map[domain.Intent]string{
	domain.IntentNavigate:     cmdJumpTo,
	domain.IntentGoBack:       cmdJumpBack,
	domain.IntentGoHome:       cmdJumpHome,
	domain.IntentSpeak:        cmdSpeak,
	domain.IntentInsertText:   cmdInsertText,
	domain.IntentDeleteWord:   cmdDeleteWord,
	domain.IntentDeleteLetter: cmdDeleteLetter,
	domain.IntentClear:        cmdClear,
}

// recognized reports whether id belongs to the command table. Settings and
// auto-content commands are recognized but have no portable intent.
func recognized(id string) bool {
	if _, ok := commandIntents[id]; ok {
		return true
	}
	return id == cmdAutoContent || strings.HasPrefix(id, settingsCmdPrefix)
}

// Codec maps Grid 3 commands to semantic actions and back.
// Navigation parameters name grids, so the codec is bound to a name<->id mapping
// of the board set being read or written.
type Codec struct {
	// PageID resolves a grid name to a page id. Unresolved names stay as-is.
	PageID func(name string) (string, bool)
	// PageName returns the grid name of a page id. Unresolved ids stay as-is.
	PageName func(id string) (string, bool)
}

var _ domain.ActionCodec = (*Codec)(nil)

// Platform implements domain.ActionCodec.
func (c *Codec) Platform() string {
	return Format
}

// Decode scans cmds for the first recognized command and maps it to an intent.
// The full command list is attached verbatim so export can replay it.
func (c *Codec) Decode(cmds []domain.PlatformCommand) *domain.Action {
	if len(cmds) == 0 {
		return nil
	}
	var action *domain.Action
	for _, cmd := range cmds {
		if !recognized(cmd.ID) {
			continue
		}
		action = c.decodeOne(cmd)
		break
	}
	if action == nil {
		action = &domain.Action{Intent: domain.IntentPlatformSpecific}
	}
	return action.WithPlatform(Format, cloneCommands(cmds)...)
}

func (c *Codec) decodeOne(cmd domain.PlatformCommand) *domain.Action {
	intent, ok := commandIntents[cmd.ID]
	if !ok {
		return &domain.Action{Intent: domain.IntentPlatformSpecific}
	}
	switch intent {
	case domain.IntentNavigate:
		raw, _ := cmd.Param(paramGrid)
		name := plainText(raw)
		target := name
		if c.PageID != nil {
			if id, ok := c.PageID(name); ok {
				target = id
			}
		}
		return domain.Navigate(target)
	case domain.IntentSpeak, domain.IntentInsertText:
		raw, _ := cmd.Param(paramText)
		return &domain.Action{Intent: intent, Text: plainText(raw)}
	default:
		return domain.Simple(intent)
	}
}

// Encode maps an action to commands. Stored Grid 3 commands are replayed when
// their first recognized command still means the action's intent, with the
// navigation target and text refreshed; otherwise commands are derived from the
// intent. Platform-specific actions of other formats fall back to their Fallback.
func (c *Codec) Encode(a *domain.Action) []domain.PlatformCommand {
	if a == nil {
		return nil
	}
	if stored := a.Commands(Format); len(stored) > 0 && c.replayable(stored, a) {
		return c.refresh(cloneCommands(stored), a)
	}
	if a.Intent == domain.IntentPlatformSpecific {
		if a.Fallback != nil {
			return c.Encode(a.Fallback)
		}
		return nil
	}
	id, ok := intentCommands[a.Intent]
	if !ok {
		return nil
	}
	cmd := domain.PlatformCommand{ID: id}
	switch a.Intent {
	case domain.IntentNavigate:
		cmd.Params = []domain.Param{{Key: paramGrid, Value: escape(c.name(a.TargetPageID))}}
	case domain.IntentInsertText:
		cmd.Params = []domain.Param{{Key: paramText, Value: buildRich(a.Text, nil)}}
	case domain.IntentSpeak:
		if a.Text != "" {
			cmd.Params = []domain.Param{{Key: paramText, Value: buildRich(a.Text, nil)}}
		}
	}
	return []domain.PlatformCommand{cmd}
}

func (c *Codec) replayable(stored []domain.PlatformCommand, a *domain.Action) bool {
	for _, cmd := range stored {
		if !recognized(cmd.ID) {
			continue
		}
		intent, ok := commandIntents[cmd.ID]
		if !ok {
			intent = domain.IntentPlatformSpecific
		}
		return intent == a.Intent
	}
	return a.Intent == domain.IntentPlatformSpecific
}

func (c *Codec) refresh(cmds []domain.PlatformCommand, a *domain.Action) []domain.PlatformCommand {
	for i := range cmds {
		cmd := &cmds[i]
		switch {
		case cmd.ID == cmdJumpTo && a.Intent == domain.IntentNavigate:
			raw, _ := cmd.Param(paramGrid)
			cmd.SetParam(paramGrid, rewriteText(raw, c.name(a.TargetPageID)))
		case (cmd.ID == cmdSpeak || cmd.ID == cmdInsertText) && cmd.ID == intentCommands[a.Intent]:
			raw, had := cmd.Param(paramText)
			if !had && a.Text == "" {
				continue
			}
			if !had {
				cmd.SetParam(paramText, buildRich(a.Text, nil))
				continue
			}
			cmd.SetParam(paramText, rewriteText(raw, a.Text))
		}
	}
	return cmds
}

func (c *Codec) name(pageID string) string {
	if c.PageName != nil {
		if name, ok := c.PageName(pageID); ok {
			return name
		}
	}
	return pageID
}

func cloneCommands(cmds []domain.PlatformCommand) []domain.PlatformCommand {
	out := make([]domain.PlatformCommand, len(cmds))
	for i, cmd := range cmds {
		out[i] = domain.PlatformCommand{ID: cmd.ID, Params: append([]domain.Param(nil), cmd.Params...)}
	}
	return out
}

func toCommands(in []commandXML) []domain.PlatformCommand {
	out := make([]domain.PlatformCommand, 0, len(in))
	for _, c := range in {
		cmd := domain.PlatformCommand{ID: c.ID}
		for _, p := range c.Params {
			cmd.Params = append(cmd.Params, domain.Param{Key: p.Key, Value: p.Inner})
		}
		out = append(out, cmd)
	}
	return out
}

func fromCommands(in []domain.PlatformCommand) []commandXML {
	out := make([]commandXML, 0, len(in))
	for _, c := range in {
		cmd := commandXML{ID: c.ID}
		for _, p := range c.Params {
			cmd.Params = append(cmd.Params, paramXML{Key: p.Key, Inner: p.Value})
		}
		out = append(out, cmd)
	}
	return out
}
