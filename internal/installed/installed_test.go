package installed

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStatic_NormalizesAndFiltersShortNames(t *testing.T) {
	names := Static{"  Adobe Photoshop ", "VLC", "Zoom", "", "7-Zip 23.01"}.Names()

	assert.Contains(t, names, "adobe photoshop")
	assert.Contains(t, names, "zoom", "length 4 is kept for collection")
	assert.Contains(t, names, "7-zip 23.01")
	assert.NotContains(t, names, "vlc")
	assert.NotContains(t, names, "")
	assert.Len(t, names, 3)
}

func TestStatic_CountsCharactersNotBytes(t *testing.T) {
	names := Static{"Ñoño", "güi"}.Names()
	assert.Contains(t, names, "ñoño", "four characters even though six bytes")
	assert.NotContains(t, names, "güi")
}

func TestStatic_Empty(t *testing.T) {
	assert.Empty(t, Static(nil).Names())
}

func TestSystem_NeverPanics(t *testing.T) {
	// platform dependent; only the contract that every kept name is normalized holds
	for n := range (System{}).Names() {
		assert.Equal(t, Normalize(n), n)
		assert.GreaterOrEqual(t, utf8.RuneCountInString(n), MinNameLen)
	}
}

func TestMerge(t *testing.T) {
	names := Merge(Static{"Mozilla Firefox"}, Static{"mozilla firefox", "Visual Studio Code"}).Names()
	assert.Equal(t, map[string]struct{}{"mozilla firefox": {}, "visual studio code": {}}, names)
	assert.Empty(t, Merge().Names())
}
