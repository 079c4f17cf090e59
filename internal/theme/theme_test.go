package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	out := Fields("host", "imap.example.com", "user", "", "dangling")

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "host")
	assert.Contains(t, lines[0], "imap.example.com")
	assert.Contains(t, lines[1], "(none)")
}

func TestSchemeStyle(t *testing.T) {
	assert.Equal(t, ColorGreen, SchemeStyle("imaps").GetForeground())
	assert.Equal(t, ColorYellow, SchemeStyle("smtp").GetForeground())
	assert.Equal(t, ColorGray, SchemeStyle("gopher").GetForeground())
}
