package sanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/system/sanitize"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hello, World!", "Hello, World!"},
		{"bold", "<b>hi</b>", "hi"},
		{"nested", "<div><p>one <em>two</em></p></div>", "one two"},
		{"script dropped", "safe<script>alert('x')</script>", "safe"},
		{"attributes", `<a href="javascript:alert(1)">link</a>`, "link"},
		{"ampersand kept", "Tom & Jerry", "Tom & Jerry"},
		{"encoded tag", "&lt;b&gt;x&lt;/b&gt;", "x"},
		{"double encoded tag", "&amp;lt;b&amp;gt;x&amp;lt;/b&amp;gt;", "x"},
		{"triple encoded script", "&amp;amp;lt;script&amp;amp;gt;alert(1)&amp;amp;lt;/script&amp;amp;gt;", ""},
		{"bare less-than kept", "1 < 2", "1 < 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.StripTags(tt.in); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripTags_DeeplyEncodedStaysInert(t *testing.T) {
	in := "&lt;script&gt;alert(1)&lt;/script&gt;"
	for i := 0; i < 12; i++ {
		in = strings.ReplaceAll(in, "&", "&amp;")
	}
	got := sanitize.StripTags(in)
	if strings.Contains(got, "<") {
		t.Errorf("StripTags left markup live: %q", got)
	}
}

func TestSanitize_StripsAndTrims(t *testing.T) {
	if got := sanitize.Sanitize("<b>hi</b>  ", 1000); got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestSanitize_Truncates(t *testing.T) {
	got := sanitize.Sanitize(strings.Repeat("a", 50), 10)
	if got != strings.Repeat("a", 10) {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	got := sanitize.Sanitize("héllo wörld", 4)
	if got != "héll" {
		t.Errorf("got %q, want %q", got, "héll")
	}
}

func TestSanitize_DefaultMaxLen(t *testing.T) {
	got := sanitize.Sanitize(strings.Repeat("x", 1500), 0)
	if len(got) != sanitize.DefaultMaxLen {
		t.Errorf("length: got %d, want %d", len(got), sanitize.DefaultMaxLen)
	}
}

func TestValue_NonStringBecomesEmpty(t *testing.T) {
	for _, v := range []any{123, 4.5, true, nil, []string{"a"}, map[string]any{"a": "b"}} {
		if got := sanitize.Value(v, 1000); got != "" {
			t.Errorf("Value(%v) = %q, want empty", v, got)
		}
	}
	if got := sanitize.Value(" <i>ok</i> ", 1000); got != "ok" {
		t.Errorf("Value(string) = %q", got)
	}
}

func TestSanitizeObject_Shallow(t *testing.T) {
	nested := map[string]any{"inner": "<b>keep</b>"}
	in := map[string]any{
		"a":      "<i>x</i>",
		"b":      5,
		"nested": nested,
		"list":   []any{"<b>y</b>"},
	}

	out := sanitize.SanitizeObject(in, 0)

	if out["a"] != "x" {
		t.Errorf("a: got %v, want x", out["a"])
	}
	if out["b"] != 5 {
		t.Errorf("b: got %v, want 5", out["b"])
	}
	if got := out["nested"].(map[string]any)["inner"]; got != "<b>keep</b>" {
		t.Errorf("nested values must not be recursed into, got %v", got)
	}
	if got := out["list"].([]any)[0]; got != "<b>y</b>" {
		t.Errorf("slices must not be recursed into, got %v", got)
	}
	if in["a"] != "<i>x</i>" {
		t.Error("input map must not be modified")
	}
}

func TestSanitizeObject_MaxLen(t *testing.T) {
	out := sanitize.SanitizeObject(map[string]any{"bio": strings.Repeat("z", 2500)}, 0)
	if got := len(out["bio"].(string)); got != sanitize.DefaultObjectMaxLen {
		t.Errorf("length: got %d, want %d", got, sanitize.DefaultObjectMaxLen)
	}
}

func TestEmailValid(t *testing.T) {
	valid := []string{"editor@example.org", "first.last@sub.example.com"}
	invalid := []string{"", "nope", "no at sign.com", "a@b@c.com", "<x>@example.com"}

	for _, e := range valid {
		if !sanitize.EmailValid(e) {
			t.Errorf("EmailValid(%q) = false, want true", e)
		}
	}
	for _, e := range invalid {
		if sanitize.EmailValid(e) {
			t.Errorf("EmailValid(%q) = true, want false", e)
		}
	}
}
