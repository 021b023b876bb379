package gridset

import (
	"strings"

	"golang.org/x/text/language"
)

// grid3Locales maps bare language codes to the locale Grid 3 expects.
var grid3Locales = map[string]string{
	"af": "af-ZA",
	"ar": "ar-SA",
	"eu": "eu-ES",
	"ca": "ca-ES",
	"hr": "hr-HR",
	"cs": "cs-CZ",
	"da": "da-DK",
	"nl": "nl-NL",
	"en": "en-GB",
	"fo": "fo-FO",
	"fi": "fi-FI",
	"fr": "fr-FR",
	"de": "de-DE",
	"el": "el-GR",
	"he": "he-IL",
	"it": "it-IT",
	"nb": "nb-NO",
	"no": "nb-NO",
	"pl": "pl-PL",
	"pt": "pt-PT",
	"ru": "ru-RU",
	"sk": "sk-SK",
	"sl": "sl-SI",
	"es": "es-ES",
	"sv": "sv-SE",
	"uk": "uk-UA",
	"cy": "cy-GB",
	"zh": "zh-CN",
	"ja": "ja-JP",
	"ko": "ko-KR",
}

// Right-to-left languages without a Grid 3 voice fall back to Arabic.
var rtlLanguages = map[string]bool{
	"fa": true, "ur": true, "yi": true, "dv": true, "ha": true, "ps": true,
}

// MapLanguage converts a language code (e.g. "fr", "pt-BR") to a Grid 3 locale.
// Codes that already carry a region are kept; bare codes use the explicit table,
// then the RTL fallback, then the most likely region. Unparseable input is
// returned unchanged.
func MapLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	lower := strings.ToLower(strings.ReplaceAll(code, "_", "-"))
	if loc, ok := grid3Locales[lower]; ok {
		return loc
	}
	if rtlLanguages[lower] {
		return "ar-SA"
	}

	tag, err := language.Parse(lower)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return code
	}
	return base.String() + "-" + region.String()
}
