package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/i18n"
)

func TestT(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "New Chat", i18n.T("en", "new_chat"))
	assert.Equal(t, "แชทใหม่", i18n.T("th", "new_chat"))
	assert.Equal(t, "New Chat", i18n.T("fr", "new_chat"), "unknown locale falls back to English")
	assert.Equal(t, "no_such_key", i18n.T("en", "no_such_key"), "unknown key falls back to itself")
}

func TestMatch(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "th", i18n.Match("th"))
	assert.Equal(t, "th", i18n.Match("th-TH,th;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", i18n.Match("en-US,en;q=0.9"))
	assert.Equal(t, "en", i18n.Match("de-DE"), "unsupported language falls back to English")
	assert.Equal(t, "en", i18n.Match(""))
	assert.Equal(t, "en", i18n.Match("not a header"))
}
