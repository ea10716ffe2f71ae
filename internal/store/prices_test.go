package store

import "testing"

func TestScalePrice(t *testing.T) {
	cases := []struct {
		in    string
		scale int32
		want  int64
	}{
		{"97.123", 4, 971230},
		{"100", 2, 10000},
		{"0.00001234", 8, 1234},
		{"64000.10", 2, 6400010},
		{"-1.5", 1, -15},
	}

	for _, c := range cases {
		got, err := ScalePrice(c.in, c.scale)
		if err != nil {
			t.Errorf("ScalePrice(%q, %d) failed: %v", c.in, c.scale, err)
			continue
		}
		if got != c.want {
			t.Errorf("ScalePrice(%q, %d) = %d, want %d", c.in, c.scale, got, c.want)
		}
	}

	if _, err := ScalePrice("abc", 4); err == nil {
		t.Error("expected error for non-numeric price")
	}
}

func TestFormatPriceRoundTrip(t *testing.T) {
	if got := FormatPrice(971230, 4); got != "97.123" {
		t.Errorf("FormatPrice(971230, 4) = %s, want 97.123", got)
	}
	if got := FormatPrice(10000, 2); got != "100" {
		t.Errorf("FormatPrice(10000, 2) = %s, want 100", got)
	}
}

func TestEventName(t *testing.T) {
	cases := map[int]string{
		1: EventNameDCUp, -1: EventNameDCDown,
		2: EventNameOSUp, -2: EventNameOSDown,
		0: "NONE",
	}
	for code, want := range cases {
		if got := EventName(code); got != want {
			t.Errorf("EventName(%d) = %s, want %s", code, got, want)
		}
	}
}
