package catalog

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electronics":         "electronics",
		"  Home & Garden  ":   "home-garden",
		"Café Crème":          "cafe-creme",
		"Kids' Toys -- 2025!": "kids-toys-2025",
		"Ünïcödé":             "unicode",
		"---":                 "",
		"already-a-slug":      "already-a-slug",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
