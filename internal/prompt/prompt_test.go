/*
MIT License

Copyright (c) 2025 Yuval Adar <adary@adary.org>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package prompt

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaryorg/securedesk/internal/config"
	"github.com/adaryorg/securedesk/internal/isolate"
)

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(model)
}

func press(t *testing.T, m model, key tea.KeyType) (model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: key})
	return updated.(model), cmd
}

func TestModelEnterAccepts(t *testing.T) {
	m := newModel(Options{Title: "Unlock", Prompt: "Passphrase"})
	m = typeText(t, m, "hunter2")

	m, cmd := press(t, m, tea.KeyEnter)

	assert.Equal(t, isolate.OutcomeOK, m.outcome)
	assert.Equal(t, "hunter2", m.input.Value())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelCancelKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := typeText(t, newModel(Options{}), "secret")

		m, cmd := press(t, m, key)

		assert.Equal(t, isolate.OutcomeCancel, m.outcome, key.String())
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestModelViewHidesSecret(t *testing.T) {
	m := newModel(Options{Title: "Unlock", Prompt: "Passphrase"})
	m = typeText(t, m, "hunter2")

	view := m.View()
	assert.Contains(t, view, "Unlock")
	assert.Contains(t, view, "Passphrase")
	assert.Contains(t, view, helpText)
	assert.NotContains(t, view, "hunter2")

	m, _ = press(t, m, tea.KeyEnter)
	assert.Empty(t, m.View())
}

func TestModelWindowSize(t *testing.T) {
	updated, cmd := newModel(Options{}).Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m := updated.(model)

	assert.Nil(t, cmd)
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 24, m.height)
	assert.Len(t, strings.Split(m.View(), "\n"), 24)
}

func TestDialogFinishAndDestroy(t *testing.T) {
	d, err := New(Options{})
	require.NoError(t, err)
	pd := d.(*PasswordDialog)

	m := typeText(t, newModel(Options{}), "hunter2")
	m, _ = press(t, m, tea.KeyEnter)
	pd.finish(m)

	assert.Equal(t, "hunter2", Secret(d))

	secret := pd.secret
	d.Destroy()
	assert.Empty(t, Secret(d))
	assert.Equal(t, make([]byte, len("hunter2")), secret)
}

func TestDialogCancelKeepsNoSecret(t *testing.T) {
	d, err := New(Options{})
	require.NoError(t, err)
	pd := d.(*PasswordDialog)

	m := typeText(t, newModel(Options{}), "hunter2")
	m, _ = press(t, m, tea.KeyEsc)
	pd.finish(m)

	assert.Equal(t, isolate.OutcomeCancel, pd.outcome)
	assert.Empty(t, Secret(d))
}

func TestSecretOfForeignDialog(t *testing.T) {
	assert.Empty(t, Secret(nil))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"#123456", "#123456"},
		{"gold", "#FFD700"},
		{"GRAY", "#808080"},
		{"grey", "#808080"},
		{"15", "15"},
		{"unknown", "unknown"},
	}

	for _, test := range tests {
		result := parseColor(test.input)
		if string(result) != test.expected {
			t.Errorf("parseColor(%q) = %q, expected %q", test.input, string(result), test.expected)
		}
	}
}

func TestColorConfigToStyle(t *testing.T) {
	style := colorConfigToStyle(config.ColorConfig{Foreground: "red", Bold: true})
	assert.True(t, style.GetBold())
	assert.Equal(t, parseColor("red"), style.GetForeground())
}
