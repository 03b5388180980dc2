package transliteration

import (
	"errors"
	"sync"
	"testing"
)

func TestTransliterateKorean(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"페이커", "peikeo"},
		{"김치", "gimchi"},
		{"토르소", "toreuso"},
		{"꿈을꾸다", "kkumeulkkuda"},
		{"페이커#KR1", "peikeo#KR1"},
	}
	for _, tt := range tests {
		got := Transliterate(tt.input, "")
		if got.Transliterated != tt.want {
			t.Errorf("Transliterate(%q) = %q, want %q", tt.input, got.Transliterated, tt.want)
		}
		if got.Script != "hangul" {
			t.Errorf("Transliterate(%q) used %q, want hangul", tt.input, got.Script)
		}
	}
}

func TestTransliterateChinese(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"不知火舞", "buzhihuowu"},
		{"大魔王", "damowang"},
		{"人人人", "renrenren"},
		{"你好，世界", "nihao,shijie"},
	}
	for _, tt := range tests {
		got := Transliterate(tt.input, "chinese")
		if got.Transliterated != tt.want {
			t.Errorf("Transliterate(%q) = %q, want %q", tt.input, got.Transliterated, tt.want)
		}
	}
}

func TestTransliterateArabicWord(t *testing.T) {
	got := Transliterate("بيت", "arabic")
	if got.Transliterated != "byt" {
		t.Errorf("Transliterate(%q) = %q, want %q", "بيت", got.Transliterated, "byt")
	}
	if got.Original != "بيت" || got.Status != StatusOK {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestTransliterateLatinIsUnsupported(t *testing.T) {
	got := Transliterate("Faker#NA1", "")
	if got.Transliterated != "Faker#NA1" {
		t.Errorf("Transliterate(Latin) = %q, want input unchanged", got.Transliterated)
	}
	if got.Status != StatusUnsupportedScript || got.Script != Latin {
		t.Errorf("Transliterate(Latin) status = %q script = %q", got.Status, got.Script)
	}
	if !errors.Is(got.Err(), ErrUnsupportedScript) {
		t.Errorf("Err() = %v, want ErrUnsupportedScript", got.Err())
	}
}

func TestTransliterateUnknownScript(t *testing.T) {
	got := Transliterate("بيت", "klingon")
	if got.Transliterated != "بيت" || got.Status != StatusUnsupportedScript || got.Script != "klingon" {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestTransliterateEmpty(t *testing.T) {
	for _, script := range append(Default().Scripts(), "", "auto", "klingon") {
		got := Transliterate("", script)
		if got.Transliterated != "" {
			t.Errorf("Transliterate(%q, %q) = %q, want empty", "", script, got.Transliterated)
		}
	}
}

func TestTransliterateAliases(t *testing.T) {
	tests := []struct {
		script string
		want   string
	}{
		{"hindi", "devanagari"},
		{"HI", "devanagari"},
		{"Korean", "hangul"},
		{" zh ", "han"},
		{"ar", "arabic"},
	}
	for _, tt := range tests {
		got := Transliterate("x", tt.script)
		if got.Script != tt.want {
			t.Errorf("Transliterate(_, %q).Script = %q, want %q", tt.script, got.Script, tt.want)
		}
	}
}

func TestValidateInput(t *testing.T) {
	if err := ValidateInput("नमस्ते"); err != nil {
		t.Errorf("ValidateInput(valid) = %v", err)
	}
	if err := ValidateInput("\xff\xfe"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ValidateInput(invalid UTF-8) = %v, want ErrInvalidInput", err)
	}
	big := make([]byte, MaxInputBytes+1)
	for i := range big {
		big[i] = 'a'
	}
	if err := ValidateInput(string(big)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ValidateInput(oversized) = %v, want ErrInvalidInput", err)
	}
}

func TestInvalidBytesPassThrough(t *testing.T) {
	in := "ب\xffت"
	got := Transliterate(in, "arabic")
	if got.Transliterated != "b\xfft" {
		t.Errorf("Transliterate(%q) = %q", in, got.Transliterated)
	}
}

func TestConcurrentCallsAgree(t *testing.T) {
	inputs := []string{"नमस्ते दुनिया", "السلام عليكم", "페이커", "不知火舞", "plain"}
	want := make([]string, len(inputs))
	for i, in := range inputs {
		want[i] = Transliterate(in, "").Transliterated
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range inputs {
				if got := Transliterate(in, "").Transliterated; got != want[i] {
					t.Errorf("Transliterate(%q) = %q, want %q", in, got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}
