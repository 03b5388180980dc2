package transliteration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArabic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain word", "بيت", "byt"},
		{"definite article", "البيت", "al-byt"},
		{"article after space", "في البيت", "fy al-byt"},
		{"medial alif lam", "مال", "mal"},
		{"diacritics stripped", "مُحَمَّد", "mhmd"},
		{"digraph letters", "شمس", "shms"},
		{"greeting", "سلام عليكم", "slam ‘lykm"},
		{"alef maksura", "على", "‘la"},
		{"ya with small alef", "يٰس", "yas"},
		{"lam alef ligature", "ﻻ", "la"},
		{"madda", "آمين", "aamyn"},
		{"digits and comma", "٣، ٤", "3, 4"},
		{"silent tatweel before punctuation", "ب-ـ-", "b-"},
		{"doubled comma collapses", "ب،,", "b,"},
		{"joiners removed", "ب\u200cت", "bt"},
		{"private use input survives", "\uE000البيت", "\uE000al-byt"},
		{"latin apostrophe kept", "don’t بيت", "don’t byt"},
		{"modifier ayn kept", "ʿAli بيت", "ʿAli byt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transliterate(tt.input, "arabic")
			assert.Equal(t, tt.want, got.Transliterated)
		})
	}
}

func TestDevanagari(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"consonant vowel signs", "नमस्ते", "namaste"},
		{"final schwa dropped", "कमल", "kamal"},
		{"lone consonant keeps schwa", "न", "na"},
		{"long vowel sign", "भारत", "bhaarat"},
		{"anusvara", "हिंदी", "hindee"},
		{"two words", "राम राम", "raam raam"},
		{"conjunct", "ज्ञान", "gyaan"},
		{"nukta decomposed", "\u0915\u093c\u093f\u0932\u093e", "qilaa"},
		{"nukta precomposed", "\u0958\u093f\u0932\u093e", "qilaa"},
		{"om", "ॐ", "Om"},
		{"danda", "नमस्ते।", "namaste."},
		{"virama before punctuation", "क-्-", "ka-"},
		{"digits", "२०२४", "2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transliterate(tt.input, "devanagari")
			assert.Equal(t, tt.want, got.Transliterated)
		})
	}
}

func TestLatinThroughScriptTables(t *testing.T) {
	for _, script := range Default().Scripts() {
		got := Transliterate("Hello, world 42!", script)
		assert.Equal(t, "Hello, world 42!", got.Transliterated, script)
	}
}
