package rpc

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"1.42", Version{1, 42}, false},
		{"0.0", Version{0, 0}, false},
		{"2.0", Version{2, 0}, false},
		{"1", Version{}, true},
		{"1.2.3", Version{}, true},
		{"", Version{}, true},
		{"a.b", Version{}, true},
		{"-1.2", Version{}, true},
		{"1.-2", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseVersion(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVersion_String(t *testing.T) {
	v := Version{Major: 1, Minor: 42}
	if v.String() != "1.42" {
		t.Errorf("String() = %q, want 1.42", v.String())
	}
}

func TestCanSend(t *testing.T) {
	cap := Version{Major: 1, Minor: 42}

	tests := []struct {
		requested string
		want      bool
	}{
		{"1.0", true},
		{"1.42", true},
		{"1.99", false},
		{"2.0", false},
		{"0.42", false},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			v, err := ParseVersion(tt.requested)
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.requested, err)
			}
			if got := CanSend(v, cap); got != tt.want {
				t.Errorf("CanSend(%s, %s) = %v, want %v", tt.requested, cap, got, tt.want)
			}
		})
	}
}
