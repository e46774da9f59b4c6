package locale

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		in   string
		want Lang
	}{
		{"hello there", English},
		{"", English},
		{"   ", English},
		{"12345 !!", English},
		{"नमस्कार", Marathi},
		{"मला एक जोक सांग", Marathi},
		{"tell me a joke in Marathi", Marathi},
		{"ok नमस्कार", Marathi},
		{"this is a long english sentence with नाव", English},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Detect(tt.in); got != tt.want {
				t.Errorf("Detect(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasDevanagari(t *testing.T) {
	if HasDevanagari("plain ascii") {
		t.Error("ascii flagged as Devanagari")
	}
	if !HasDevanagari("abc विनोद") {
		t.Error("missed Devanagari text")
	}
}
