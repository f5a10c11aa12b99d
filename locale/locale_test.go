package locale

import "testing"

func TestFor(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"de", "Inhaltsverzeichnis"},
		{"de-CH", "Inhaltsverzeichnis"},
		{"fr_CH", "Table des matières"},
		{"it", "Indice"},
		{"en-GB", "Contents"},
		{"", "Inhaltsverzeichnis"},
		{"ja", "Inhaltsverzeichnis"},
	}

	for _, tt := range tests {
		if got := For(tt.code).Contents; got != tt.want {
			t.Errorf("For(%q).Contents = %q, want %q", tt.code, got, tt.want)
		}
	}
}
