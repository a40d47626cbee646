package slide

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#FFFFFF", color.NRGBA{255, 255, 255, 255}, true},
		{"#1a1a1a", color.NRGBA{0x1a, 0x1a, 0x1a, 255}, true},
		{"#abc", color.NRGBA{0xaa, 0xbb, 0xcc, 255}, true},
		{"#00000080", color.NRGBA{0, 0, 0, 0x80}, true},
		{"white", color.NRGBA{}, false},
		{"#12345", color.NRGBA{}, false},
		{"#GGGGGG", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"same", Rect{0, 0, 10, 10}, true},
		{"inside", Rect{2, 2, 3, 3}, true},
		{"partial", Rect{5, 5, 10, 10}, true},
		{"touching right edge", Rect{10, 0, 5, 5}, false},
		{"touching bottom edge", Rect{0, 10, 5, 5}, false},
		{"far away", Rect{50, 50, 5, 5}, false},
	}
	for _, tt := range tests {
		if got := a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%s: Overlaps = %v, want %v", tt.name, got, tt.want)
		}
		if got := tt.b.Overlaps(a); got != tt.want {
			t.Errorf("%s: Overlaps is not symmetric", tt.name)
		}
	}
}

func TestParseLogoPosition(t *testing.T) {
	p, err := ParseLogoPosition(" Top-Right ")
	if err != nil {
		t.Fatal(err)
	}
	if p != TopRight || !p.IsTop() {
		t.Errorf("got %q, IsTop=%v", p, p.IsTop())
	}
	if BottomLeft.IsTop() {
		t.Error("bottom-left should not be a top position")
	}
	if _, err := ParseLogoPosition("center"); err == nil {
		t.Error("expected error for unknown position")
	}
}

func TestTableValidate(t *testing.T) {
	ok := &Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}, {"3", "4"}}}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}
	ragged := &Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}}
	if err := ragged.Validate(); err == nil {
		t.Error("expected error for ragged row")
	}
	var none *Table
	if none.Drawable() {
		t.Error("nil table should not be drawable")
	}
}

func baseSet() AttributeSet {
	return AttributeSet{
		Font: "a.ttf", FontSize: 14, TitleFontSize: 22, LineSpacing: 1,
		Background: "#FFFFFF", TextColor: "#000000",
		Border: true, BorderWidth: 2, BorderColor: "#000000",
		Title: "Title", Bullet: true,
		Table: &Table{Headers: []string{"h"}, Rows: [][]string{{"c"}}, BorderWidth: 1, BorderColor: "#333333"},
		Logo:  &Logo{Path: "logo.png", Position: TopLeft},
	}
}

func TestDifferences(t *testing.T) {
	a := baseSet()
	b := baseSet()
	if d := Differences(a, b); len(d) != 0 {
		t.Fatalf("identical sets differ in %v", d)
	}

	b.Font = "b.ttf"
	b.Logo = &Logo{Path: "logo.png", Position: BottomRight}
	b.Table = &Table{Headers: []string{"h"}, Rows: [][]string{{"c"}}, BorderWidth: 3, BorderColor: "#333333"}
	d := Differences(a, b)
	want := []string{DimFont, DimLogo, DimTableBorderWidth}
	if len(d) != len(want) {
		t.Fatalf("got %v, want %v", d, want)
	}
	for i := range want {
		if d[i] != want[i] {
			t.Errorf("diff %d: got %q, want %q", i, d[i], want[i])
		}
	}

	b = baseSet()
	b.Logo = nil
	b.Table = nil
	d = Differences(a, b)
	if len(d) != 2 || d[0] != DimLogo || d[1] != DimTable {
		t.Errorf("presence changes: got %v", d)
	}
}

func TestAttributeSetValidate(t *testing.T) {
	a := baseSet()
	if err := a.Validate(); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}
	a.TextColor = "black"
	if err := a.Validate(); err == nil {
		t.Error("expected error for bad text color")
	}
	a = baseSet()
	a.Logo.Position = "middle"
	if err := a.Validate(); err == nil {
		t.Error("expected error for bad logo position")
	}
}
