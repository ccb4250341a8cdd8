package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// supported is the set of languages the dubbing pipeline offers.
var supported = []language.Tag{
	language.Korean,
	language.English,
	language.Japanese,
	language.SimplifiedChinese,
	language.Spanish,
	language.French,
	language.German,
	language.Italian,
	language.Portuguese,
	language.Russian,
	language.Vietnamese,
	language.Indonesian,
	language.Thai,
	language.Arabic,
	language.Hindi,
}

var (
	byInput  map[string]language.Tag
	korean   = display.Korean.Languages()
	english  = display.English.Languages()
	selfName = display.Self
)

func init() {
	byInput = make(map[string]language.Tag, len(supported)*4)
	for _, tag := range supported {
		for _, key := range []string{
			tag.String(),
			korean.Name(tag),
			english.Name(tag),
			selfName.Name(tag),
		} {
			key = strings.ToLower(strings.TrimSpace(key))
			if key == "" {
				continue
			}
			if _, ok := byInput[key]; !ok {
				byInput[key] = tag
			}
		}
	}
}

// Normalize converts a language input to its BCP-47 code.
// Accepts codes, English names, Korean names, and endonyms.
// Returns false when the language is not recognized or not supported.
func Normalize(value string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	if tag, ok := byInput[key]; ok {
		return tag.String(), true
	}
	parsed, err := language.Parse(key)
	if err != nil {
		return "", false
	}
	for _, tag := range supported {
		if base, _ := tag.Base(); base.String() == mustBase(parsed) {
			return tag.String(), true
		}
	}
	return "", false
}

// NormalizeAll normalizes every element, preserving order and dropping
// duplicates. The second return lists inputs that were not recognized.
func NormalizeAll(values []string) ([]string, []string) {
	var codes []string
	var unknown []string
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		code, ok := Normalize(value)
		if !ok {
			unknown = append(unknown, value)
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, unknown
}

// DisplayName returns the Korean display name for a normalized code,
// matching the labels the dubbing product shows. Unrecognized codes pass
// through unchanged.
func DisplayName(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	if name := korean.Name(tag); name != "" {
		return name
	}
	return code
}

// EnglishName returns the English display name for a normalized code.
func EnglishName(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	if name := english.Name(tag); name != "" {
		return name
	}
	return code
}

func mustBase(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
