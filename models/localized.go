package models

// Bahasa yang disokong oleh laman
const (
	LangEnglish = "en"
	LangMalay   = "ms"
)

// LocalizedText ialah nilai dwibahasa (English/Bahasa Melayu). Sekurang-
// kurangnya satu bahasa mesti diisi; bahasa yang kosong boleh diisi semula
// oleh skrip translate-backfill.
type LocalizedText struct {
	En string `gorm:"type:text" json:"en"`
	Ms string `gorm:"type:text" json:"ms"`
}

// Valid reports whether at least one language is populated.
func (t LocalizedText) Valid() bool {
	return t.En != "" || t.Ms != ""
}

// Get mengembalikan teks mengikut bahasa diminta, fallback ke bahasa yang
// ada jika sisi diminta kosong.
func (t LocalizedText) Get(lang string) string {
	switch lang {
	case LangMalay:
		if t.Ms != "" {
			return t.Ms
		}
		return t.En
	default:
		if t.En != "" {
			return t.En
		}
		return t.Ms
	}
}

// Missing returns the language codes whose side is empty. An invalid value
// (both sides empty) returns both codes; callers should skip such rows.
func (t LocalizedText) Missing() []string {
	var missing []string
	if t.En == "" {
		missing = append(missing, LangEnglish)
	}
	if t.Ms == "" {
		missing = append(missing, LangMalay)
	}
	return missing
}

// Source mengembalikan bahasa sumber untuk backfill: sisi yang berisi.
// Tidak sah jika kedua-dua sisi kosong.
func (t LocalizedText) Source() (lang, text string, ok bool) {
	if t.En != "" {
		return LangEnglish, t.En, true
	}
	if t.Ms != "" {
		return LangMalay, t.Ms, true
	}
	return "", "", false
}

// Fill sets the given language side if it is currently empty. Returns true
// when a write happened.
func (t *LocalizedText) Fill(lang, text string) bool {
	switch lang {
	case LangEnglish:
		if t.En == "" && text != "" {
			t.En = text
			return true
		}
	case LangMalay:
		if t.Ms == "" && text != "" {
			t.Ms = text
			return true
		}
	}
	return false
}
