package crisis

import (
	"reflect"
	"testing"
)

func TestDetect(t *testing.T) {
	keywords := []string{"end it all", "suicide", "खुद को मारना", "marna chahta"}

	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"no match", "I had a good day at school", []string{}},
		{"single english match", "I want to end it all", []string{"end it all"}},
		{"case insensitive", "SUICIDE is on my mind", []string{"suicide"}},
		{"substring match without word boundary", "thinking about suicidenotes", []string{"suicide"}},
		{"hindi script match", "मैं खुद को मारना चाहता हूँ", []string{"खुद को मारना"}},
		{"hinglish match", "bas ab marna chahta hoon", []string{"marna chahta"}},
		{
			"multiple matches preserve keyword-list order",
			"suicide... I just want to end it all",
			[]string{"end it all", "suicide"},
		},
		{"empty message", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.message, keywords)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestDetectEmptyKeywordList(t *testing.T) {
	if got := Detect("I want to end it all", nil); len(got) != 0 {
		t.Errorf("Detect with no keywords = %v, want empty", got)
	}
}
