package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonoThemeOutput(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var buf bytes.Buffer
	OK(&buf, "saved")
	Fail(&buf, "nope")
	assert.Equal(t, "ok saved\nx nope\n", buf.String())
}

func TestTableHasOneLinePerRow(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	out := Table([]string{"Name", "Price"}, [][]string{{"Lamp", "$1.00"}, {"Desk", "$2.00"}})
	assert.Contains(t, out, "Lamp")
	assert.Contains(t, out, "$2.00")
	// top border, header, separator, two rows, bottom border
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 6)

	assert.Equal(t, "(none)", Table([]string{"Name"}, nil))
}

func TestKeyValuesAligns(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	lines := KeyValues([][2]string{{"id", "1"}, {"username", "ann"}})
	assert.Equal(t, []string{"id        1", "username  ann"}, lines)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
}
