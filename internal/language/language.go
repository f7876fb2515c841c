package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// transcriptionLanguages are the bases WhisperX ships alignment models for.
var transcriptionLanguages = []string{
	"en", "fr", "de", "es", "it", "ja", "zh", "nl", "uk", "pt",
	"ar", "cs", "ru", "pl", "hu", "fi", "fa", "el", "tr", "da",
	"he", "vi", "ko", "ur", "te", "hi", "ca", "ml", "no", "nn",
	"sk", "sl", "hr", "ro", "eu", "gl", "ka", "lv", "tl", "sv",
}

var byName map[string]language.Base

func init() {
	names := display.English.Languages()
	byName = make(map[string]language.Base, len(transcriptionLanguages))
	for _, code := range transcriptionLanguages {
		base := language.MustParseBase(code)
		tag, _ := language.Compose(base)
		if name := strings.ToLower(names.Name(tag)); name != "" {
			byName[name] = base
		}
	}
}

func parse(code string) (language.Base, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return language.Base{}, false
	}
	if base, ok := byName[code]; ok {
		return base, true
	}
	if base, err := language.ParseBase(code); err == nil {
		return base, true
	}
	if tag, err := language.Parse(code); err == nil {
		base, conf := tag.Base()
		return base, conf != language.No
	}
	return language.Base{}, false
}

// ToISO2 converts a two- or three-letter code, a BCP 47 tag or an English
// language name to its ISO 639-1 code. Unknown input returns "".
func ToISO2(code string) string {
	base, ok := parse(code)
	if !ok {
		return ""
	}
	return base.String()
}

// ToISO3 converts code to its ISO 639-2/T code.
func ToISO3(code string) string {
	base, ok := parse(code)
	if !ok {
		return ""
	}
	return base.ISO3()
}

// DisplayName returns the English name for code, or the trimmed input when
// it is not recognised.
func DisplayName(code string) string {
	base, ok := parse(code)
	if !ok {
		return strings.TrimSpace(code)
	}
	tag, _ := language.Compose(base)
	return display.English.Languages().Name(tag)
}

// Supported reports whether WhisperX can transcribe code.
func Supported(code string) bool {
	iso2 := ToISO2(code)
	for _, candidate := range transcriptionLanguages {
		if candidate == iso2 {
			return true
		}
	}
	return false
}
