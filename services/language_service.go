package services

import (
	"strings"

	"mannMitraAPI/config"
)

// hinglishKeywords are common romanized-Hindi words used to recognize
// Hinglish in otherwise ASCII text.
var hinglishKeywords = map[string]bool{}

func init() {
	for _, w := range []string{
		"kya", "hai", "nahi", "kar", "raha", "rah", "hun", "hoon", "tha", "thi",
		"ka", "ki", "ke", "ko", "se", "me", "pe", "par", "aur", "lekin", "magar",
		"fir", "phir", "ab", "tab", "jab", "kab", "kyun", "kaise", "kahan",
		"acha", "theek", "badiya", "mast", "yaar", "bahut", "thoda", "zyada",
		"padhai", "dost", "ghar", "dil", "mann", "tension",
	} {
		hinglishKeywords[w] = true
	}
}

// DetectLanguage classifies text as "hi", "hinglish" or "en" from its
// character mix. Devanagari plus ASCII letters in one message reads as
// Hinglish; romanized Hindi is caught by IsHinglish.
func DetectLanguage(text string) string {
	hasHindi := false
	hasEnglish := false
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			hasHindi = true
		} else if r < 128 && ((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			hasEnglish = true
		}
	}

	switch {
	case hasHindi && hasEnglish:
		return "hinglish"
	case hasHindi:
		return "hi"
	case IsHinglish(text):
		return "hinglish"
	default:
		return config.DefaultLanguage
	}
}

// IsHinglish reports whether ASCII text mixes romanized-Hindi filler words
// with English vocabulary.
func IsHinglish(text string) bool {
	hindiWords := 0
	englishWords := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if hinglishKeywords[word] {
			hindiWords++
		} else if len(word) > 2 && isASCIIWord(word) {
			englishWords++
		}
	}
	return hindiWords > 0 && englishWords > 0
}

// LanguageName resolves a language code to its display name, defaulting to
// English for unknown codes.
func LanguageName(code string) string {
	if name, ok := config.SupportedLanguages[code]; ok {
		return name
	}
	return config.SupportedLanguages[config.DefaultLanguage]
}

func IsSupportedLanguage(code string) bool {
	_, ok := config.SupportedLanguages[code]
	return ok
}

func isASCIIWord(word string) bool {
	for _, r := range word {
		if r >= 128 {
			return false
		}
	}
	return true
}
