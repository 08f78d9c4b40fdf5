package schema

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Style values control the verbosity and structure of assistant replies.
const (
	StyleShort  = "short"
	StyleSteps  = "steps"
	StyleDetail = "detail"
)

// Persona values control the tone of assistant replies.
const (
	PersonaFriendly = "friendly"
	PersonaFun      = "fun"
	PersonaStrict   = "strict"
	PersonaSmart    = "smart"
)

// Defaults applied when a preference is missing or unrecognised.
const (
	DefaultStyle    = StyleSteps
	DefaultPersona  = PersonaFriendly
	DefaultLanguage = "ru"
)

// languageNames maps supported interface language codes to the language
// name used in prompt instructions.
var languageNames = map[string]string{
	"ru": "Russian",
	"kk": "Kazakh",
	"en": "English",
	"tr": "Turkish",
	"uz": "Uzbek",
	"ky": "Kyrgyz",
	"uk": "Ukrainian",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
}

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Preferences are the user-selected reply modifiers, read from the
// persisted store before every prompt composition.
type Preferences struct {
	Style    string `json:"style"`
	Persona  string `json:"persona"`
	Language string `json:"lang"`
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// DefaultPreferences returns the preferences used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{
		Style:    DefaultStyle,
		Persona:  DefaultPersona,
		Language: DefaultLanguage,
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Normalize returns a copy with unrecognised values replaced by defaults.
func (p Preferences) Normalize() Preferences {
	switch p.Style {
	case StyleShort, StyleSteps, StyleDetail:
	default:
		p.Style = DefaultStyle
	}
	switch p.Persona {
	case PersonaFriendly, PersonaFun, PersonaStrict, PersonaSmart:
	default:
		p.Persona = DefaultPersona
	}
	if _, ok := languageNames[p.Language]; !ok {
		p.Language = DefaultLanguage
	}
	return p
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC FUNCTIONS

// LanguageName returns the English name of a supported language code, used
// in the reply-language instruction. Unknown codes map to the default
// language's name.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return languageNames[DefaultLanguage]
}

// IsSupportedLanguage reports whether code is one of the supported
// interface languages.
func IsSupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// Languages returns the supported interface language codes.
func Languages() []string {
	result := make([]string, 0, len(languageNames))
	for code := range languageNames {
		result = append(result, code)
	}
	return result
}
