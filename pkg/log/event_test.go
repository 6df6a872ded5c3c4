package log

import "testing"

func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirectionDecode, "DECODE"},
		{DirectionEncode, "ENCODE"},
		{Direction(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.dir.String()
		if got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryValue, "VALUE"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.cat.String()
		if got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"decode", DirectionDecode, true},
		{"ENCODE", DirectionEncode, true},
		{"Encode", DirectionEncode, true},
		{"in", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"value", CategoryValue, true},
		{"ERROR", CategoryError, true},
		{"state", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseCategory(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDirectionValues(t *testing.T) {
	// Values are persisted in trace files and must not change.
	if DirectionDecode != 0 {
		t.Errorf("DirectionDecode = %d, want 0", DirectionDecode)
	}
	if DirectionEncode != 1 {
		t.Errorf("DirectionEncode = %d, want 1", DirectionEncode)
	}
}

func TestCategoryValues(t *testing.T) {
	if CategoryValue != 0 {
		t.Errorf("CategoryValue = %d, want 0", CategoryValue)
	}
	if CategoryError != 1 {
		t.Errorf("CategoryError = %d, want 1", CategoryError)
	}
}
