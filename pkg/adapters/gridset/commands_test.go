package gridset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/domain"
)

func testCodec() *Codec {
	ids := map[string]string{"Fruits": "fruits-guid"}
	names := map[string]string{"fruits-guid": "Fruits"}
	return &Codec{
		PageID: func(name string) (string, bool) {
			id, ok := ids[name]
			return id, ok
		},
		PageName: func(id string) (string, bool) {
			name, ok := names[id]
			return name, ok
		},
	}
}

func TestCodec_EncodesEveryIntent(t *testing.T) {
	c := testCodec()
	for _, intent := range domain.Intents {
		if intent == domain.IntentPlatformSpecific {
			continue
		}
		a := &domain.Action{Intent: intent, TargetPageID: "fruits-guid", Text: "hello"}
		cmds := c.Encode(a)
		require.NotEmpty(t, cmds, intent)

		back := c.Decode(cmds)
		require.NotNil(t, back, intent)
		assert.Equal(t, intent, back.Intent, intent)
	}
}

func TestCodec_DecodeFirstRecognized(t *testing.T) {
	c := testCodec()
	cmds := []domain.PlatformCommand{
		{ID: "Vendor.Beep"},
		{ID: "Jump.To", Params: []domain.Param{{Key: "grid", Value: "Fruits"}}},
		{ID: "Action.Speak"},
	}
	a := c.Decode(cmds)
	assert.Equal(t, domain.IntentNavigate, a.Intent)
	assert.Equal(t, "fruits-guid", a.TargetPageID)
	assert.Len(t, a.Commands(Format), 3, "all commands are kept")

	dangling := c.Decode([]domain.PlatformCommand{{ID: "Jump.To", Params: []domain.Param{{Key: "grid", Value: "Nowhere"}}}})
	assert.Equal(t, "Nowhere", dangling.TargetPageID)
	assert.Equal(t, "Jump.To", c.Encode(dangling)[0].ID)
	v, _ := c.Encode(dangling)[0].Param("grid")
	assert.Equal(t, "Nowhere", v, "dangling targets export verbatim")

	settings := c.Decode([]domain.PlatformCommand{{ID: "Settings.Volume"}, {ID: "Action.Clear"}})
	assert.Equal(t, domain.IntentPlatformSpecific, settings.Intent, "settings commands are recognized first")

	assert.Nil(t, c.Decode(nil))
}

func TestCodec_ReplayRefreshesTarget(t *testing.T) {
	c := testCodec()
	a := c.Decode([]domain.PlatformCommand{
		{ID: "Jump.To", Params: []domain.Param{{Key: "grid", Value: "Fruits"}, {Key: "transition", Value: "slide"}}},
	})
	a.TargetPageID = "veg"

	cmds := c.Encode(a)
	require.Len(t, cmds, 1)
	v, _ := cmds[0].Param("grid")
	assert.Equal(t, "veg", v)
	v, _ = cmds[0].Param("transition")
	assert.Equal(t, "slide", v, "extra parameters survive")

	// A changed intent drops the stored commands.
	a.Intent = domain.IntentGoHome
	assert.Equal(t, []domain.PlatformCommand{{ID: "Jump.Home"}}, c.Encode(a))
}

func TestCodec_ForeignPlatformUsesFallback(t *testing.T) {
	c := testCodec()
	a := domain.Custom("snap", domain.PlatformCommand{ID: "42"})
	assert.Nil(t, c.Encode(a))

	a.Fallback = domain.Simple(domain.IntentClear)
	assert.Equal(t, []domain.PlatformCommand{{ID: "Action.Clear"}}, c.Encode(a))
}
