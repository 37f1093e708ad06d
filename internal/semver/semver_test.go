package semver

import "testing"

func TestParse(t *testing.T) {
	t.Run("parses a plain release version", func(t *testing.T) {
		v, err := Parse("1.2.3")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if v.Major != 1 || v.Minor != 2 || v.Patch != 3 {
			t.Errorf("Expected 1.2.3, got %d.%d.%d", v.Major, v.Minor, v.Patch)
		}
		if v.IsPrerelease() {
			t.Error("Expected release version, got prerelease")
		}
	})

	t.Run("parses a prerelease version", func(t *testing.T) {
		v, err := Parse("2.0.0-rc.1")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if v.Prerelease != "rc.1" {
			t.Errorf("Expected prerelease rc.1, got %q", v.Prerelease)
		}
		if !v.IsPrerelease() {
			t.Error("Expected IsPrerelease to be true")
		}
	})

	t.Run("round-trips through String", func(t *testing.T) {
		for _, s := range []string{"0.1.0", "10.20.30", "1.0.0-beta", "1.0.0-rc.2"} {
			v, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", s, err)
			}
			if v.String() != s {
				t.Errorf("Expected %q, got %q", s, v.String())
			}
		}
	})

	t.Run("rejects malformed versions", func(t *testing.T) {
		invalid := []string{
			"",
			"1",
			"1.2",
			"1.2.3.4",
			"1.2.x",
			"01.2.3",
			"1.2.3-",
			"1.2.3-rc..1",
			"1.2.3-rc_1",
			"-1.2.3",
			"v1.2.3",
		}
		for _, s := range invalid {
			if _, err := Parse(s); err == nil {
				t.Errorf("Expected error for %q, got nil", s)
			}
		}
	})
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"1.3.0", "1.2.9", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-rc.1", "1.0.0", -1},
		{"1.0.0", "1.0.0-rc.1", 1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-rc.1", "1.0.0-rc.2", -1},
		{"1.0.0-rc.2", "1.0.0-rc.10", -1},
		{"1.0.0-1", "1.0.0-alpha", -1},
		{"1.0.0-rc", "1.0.0-rc.1", -1},
	}

	for _, c := range cases {
		a, err := Parse(c.a)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", c.a, err)
		}
		b, err := Parse(c.b)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", c.b, err)
		}
		if got := Compare(a, b); got != c.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
