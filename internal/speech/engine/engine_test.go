package engine

import "testing"

func TestParseModelVersion(t *testing.T) {
	tests := []struct {
		name string
		want ModelVersion
	}{
		{"v2", V2},
		{"V2", V2},
		{"parakeet-v2-en", V2},
		{"Parakeet V2", V2},
		{"v3", V3},
		{"parakeet-v3", V3},
		{"", V3},
		{"whatever", V3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseModelVersion(tc.name); got != tc.want {
				t.Errorf("ParseModelVersion(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestModelVersionNames(t *testing.T) {
	if V2.String() != "v2" || V3.String() != "v3" {
		t.Errorf("String: %q, %q", V2.String(), V3.String())
	}
	if V2.DisplayName() != "Parakeet v2" || V3.DisplayName() != "Parakeet v3" {
		t.Errorf("DisplayName: %q, %q", V2.DisplayName(), V3.DisplayName())
	}
}
