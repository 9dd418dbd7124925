package language

import (
	"strings"

	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// words maps English and native language names that are not valid BCP 47
// tags onto the English display name.
var words = map[string]string{
	"english":    "English",
	"chinese":    "Chinese",
	"mandarin":   "Chinese",
	"中文":         "Chinese",
	"汉语":         "Chinese",
	"japanese":   "Japanese",
	"日本語":        "Japanese",
	"korean":     "Korean",
	"한국어":        "Korean",
	"spanish":    "Spanish",
	"español":    "Spanish",
	"french":     "French",
	"français":   "French",
	"german":     "German",
	"deutsch":    "German",
	"russian":    "Russian",
	"русский":    "Russian",
	"portuguese": "Portuguese",
	"português":  "Portuguese",
}

var namer = display.English.Languages()

// PromptName returns the language name to put in a prompt for a configured
// target language. Language words and BCP 47 tags ("de", "fra", "zh-Hans",
// "pt_BR") map to their English name; anything else is returned trimmed.
func PromptName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if name, ok := words[strings.ToLower(value)]; ok {
		return name
	}
	if name := tagName(value); name != "" {
		return name
	}
	return value
}

func tagName(value string) string {
	tag, err := textlang.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == textlang.No || base.String() == "und" {
		return ""
	}
	return namer.Name(base)
}
