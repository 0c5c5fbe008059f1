package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain english", "I am feeling stressed about my exams", "en"},
		{"pure hindi", "मुझे बहुत चिंता हो रही है", "hi"},
		{"devanagari mixed with english", "मुझे tension हो रही है before exams", "hinglish"},
		{"romanized hindi with english", "yaar I am not feeling theek today", "hinglish"},
		{"romanized hindi only fillers", "kya hai yaar bahut tension", "en"},
		{"empty string", "", "en"},
		{"numbers and punctuation", "12345 !!!", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}

func TestIsHinglish(t *testing.T) {
	assert.True(t, IsHinglish("yaar this padhai is too much"))
	assert.False(t, IsHinglish("this course load is too much"))
	assert.False(t, IsHinglish("kya hai"))
	assert.False(t, IsHinglish(""))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "Hindi", LanguageName("hi"))
	assert.Equal(t, "English", LanguageName("fr"))
}

func TestIsSupportedLanguage(t *testing.T) {
	assert.True(t, IsSupportedLanguage("en"))
	assert.True(t, IsSupportedLanguage("hi"))
	assert.True(t, IsSupportedLanguage("hinglish"))
	assert.False(t, IsSupportedLanguage("fr"))
	assert.False(t, IsSupportedLanguage(""))
}
