package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalizedTextValid(t *testing.T) {
	assert.False(t, LocalizedText{}.Valid())
	assert.True(t, LocalizedText{En: "Hello"}.Valid())
	assert.True(t, LocalizedText{Ms: "Selamat datang"}.Valid())
	assert.True(t, LocalizedText{En: "Hello", Ms: "Selamat datang"}.Valid())
}

func TestLocalizedTextGet(t *testing.T) {
	both := LocalizedText{En: "Donate", Ms: "Derma"}
	enOnly := LocalizedText{En: "Donate"}
	msOnly := LocalizedText{Ms: "Derma"}

	tests := []struct {
		name string
		text LocalizedText
		lang string
		want string
	}{
		{"ms from full pair", both, LangMalay, "Derma"},
		{"en from full pair", both, LangEnglish, "Donate"},
		{"ms falls back to en", enOnly, LangMalay, "Donate"},
		{"en falls back to ms", msOnly, LangEnglish, "Derma"},
		{"unknown lang behaves like en", both, "fr", "Donate"},
		{"empty value returns empty", LocalizedText{}, LangMalay, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.text.Get(tt.lang))
		})
	}
}

func TestLocalizedTextMissing(t *testing.T) {
	assert.Empty(t, LocalizedText{En: "a", Ms: "b"}.Missing())
	assert.Equal(t, []string{LangMalay}, LocalizedText{En: "a"}.Missing())
	assert.Equal(t, []string{LangEnglish}, LocalizedText{Ms: "b"}.Missing())
	assert.Equal(t, []string{LangEnglish, LangMalay}, LocalizedText{}.Missing())
}

func TestLocalizedTextSource(t *testing.T) {
	lang, text, ok := LocalizedText{En: "Donate"}.Source()
	assert.True(t, ok)
	assert.Equal(t, LangEnglish, lang)
	assert.Equal(t, "Donate", text)

	lang, text, ok = LocalizedText{Ms: "Derma"}.Source()
	assert.True(t, ok)
	assert.Equal(t, LangMalay, lang)
	assert.Equal(t, "Derma", text)

	// English diutamakan sebagai sumber bila kedua-duanya ada
	lang, _, ok = LocalizedText{En: "Donate", Ms: "Derma"}.Source()
	assert.True(t, ok)
	assert.Equal(t, LangEnglish, lang)

	_, _, ok = LocalizedText{}.Source()
	assert.False(t, ok)
}

func TestLocalizedTextFill(t *testing.T) {
	v := LocalizedText{En: "Donate"}

	assert.True(t, v.Fill(LangMalay, "Derma"))
	assert.Equal(t, "Derma", v.Ms)

	// Sisi yang sudah berisi tidak ditimpa
	assert.False(t, v.Fill(LangMalay, "Sumbangan"))
	assert.Equal(t, "Derma", v.Ms)
	assert.False(t, v.Fill(LangEnglish, "Give"))
	assert.Equal(t, "Donate", v.En)

	// Teks kosong atau bahasa tidak dikenali tidak menulis apa-apa
	empty := LocalizedText{}
	assert.False(t, empty.Fill(LangEnglish, ""))
	assert.False(t, empty.Fill("fr", "Donner"))
	assert.False(t, empty.Valid())
}
