package language

import "testing"

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"deu", "de"},
		{"spa", "es"},
		{"jpn", "ja"},
		{"pt-BR", "pt"},
		{"english", "en"},
		{"French", "fr"},
		{"GERMAN", "de"},
		{"not a language", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToISO3(t *testing.T) {
	if got := ToISO3("en"); got != "eng" {
		t.Fatalf("ToISO3(en) = %q", got)
	}
	if got := ToISO3("german"); got != "deu" {
		t.Fatalf("ToISO3(german) = %q", got)
	}
	if got := ToISO3(""); got != "" {
		t.Fatalf("ToISO3(\"\") = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("fr"); got != "French" {
		t.Fatalf("DisplayName(fr) = %q", got)
	}
	if got := DisplayName(" not a language "); got != "not a language" {
		t.Fatalf("unexpected passthrough %q", got)
	}
}

func TestSupported(t *testing.T) {
	if !Supported("english") || !Supported("nl") {
		t.Fatal("expected english and dutch to be supported")
	}
	if Supported("xx") || Supported("") {
		t.Fatal("unexpected support for unknown language")
	}
}
