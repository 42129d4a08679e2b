package overlay

import (
	"reflect"
	"strings"
	"testing"
)

func TestBreakpointFor(t *testing.T) {
	tests := []struct {
		width int
		want  Breakpoint
	}{
		{0, BreakpointNarrow},
		{320, BreakpointNarrow},
		{479, BreakpointNarrow},
		{480, BreakpointMedium},
		{800, BreakpointMedium},
		{1023, BreakpointMedium},
		{1024, BreakpointWide},
		{1920, BreakpointWide},
	}

	for _, tt := range tests {
		if got := BreakpointFor(tt.width); got != tt.want {
			t.Errorf("BreakpointFor(%d) = %s, want %s", tt.width, got, tt.want)
		}
	}
}

func TestComputeGeometryPanelStack(t *testing.T) {
	geo := ComputeGeometry(800)

	if geo.Breakpoint != BreakpointMedium {
		t.Fatalf("Breakpoint = %s", geo.Breakpoint)
	}
	if len(geo.Panels) != 3 {
		t.Fatalf("Expected 3 cover panels, got %d", len(geo.Panels))
	}

	// Each successive layer is larger, more transparent, and staggered
	// 2px closer to the corner so it expands around the target.
	for i := 1; i < len(geo.Panels); i++ {
		if geo.Panels[i].Width <= geo.Panels[i-1].Width {
			t.Errorf("Panel %d should be wider than panel %d", i, i-1)
		}
		if geo.Panels[i].Opacity >= geo.Panels[i-1].Opacity {
			t.Errorf("Panel %d should be more transparent than panel %d", i, i-1)
		}
		if geo.Panels[i].Top != geo.Panels[i-1].Top-2 || geo.Panels[i].Right != geo.Panels[i-1].Right-2 {
			t.Errorf("Panel %d should sit 2px closer to the corner than panel %d", i, i-1)
		}
	}

	if geo.Panels[0].Width != 100 || geo.Panels[0].Height != 60 {
		t.Errorf("Base panel = %vx%v, want 100x60 at medium", geo.Panels[0].Width, geo.Panels[0].Height)
	}
	if geo.Panels[0].Opacity != 1.0 || geo.Panels[2].Opacity != 0.4 {
		t.Errorf("Opacity ramp = %v..%v", geo.Panels[0].Opacity, geo.Panels[2].Opacity)
	}
}

func TestComputeGeometryShareButton(t *testing.T) {
	tests := []struct {
		width    int
		wantSize int
		wantEdge int
	}{
		{320, 50, 10},
		{800, 58, 15},
		{1440, 65, 20},
	}

	for _, tt := range tests {
		geo := ComputeGeometry(tt.width)
		if geo.ShareButton.Size != tt.wantSize {
			t.Errorf("width %d: button size = %d, want %d", tt.width, geo.ShareButton.Size, tt.wantSize)
		}
		if geo.ShareButton.Top != tt.wantEdge || geo.ShareButton.Right != tt.wantEdge {
			t.Errorf("width %d: button edge = %d/%d, want %d", tt.width, geo.ShareButton.Top, geo.ShareButton.Right, tt.wantEdge)
		}
	}
}

func TestComputeGeometryDeterministic(t *testing.T) {
	a := ComputeGeometry(640)
	b := ComputeGeometry(640)
	if !reflect.DeepEqual(a, b) {
		t.Error("Same width must always yield the same geometry")
	}
}

func TestShareTargets(t *testing.T) {
	targets := ShareTargets("https://example.com/page", "hola")
	if len(targets) != 4 {
		t.Fatalf("Expected 4 share targets, got %d", len(targets))
	}

	var clipboard int
	for _, target := range targets {
		switch target.Kind {
		case "link":
			if target.URL == "" {
				t.Errorf("Link target %q missing URL", target.Name)
			}
		case "clipboard":
			clipboard++
		default:
			t.Errorf("Unknown target kind %q", target.Kind)
		}
	}
	if clipboard != 1 {
		t.Errorf("Expected exactly one clipboard target, got %d", clipboard)
	}
}

func TestSuppressionCSSCoversAllSelectors(t *testing.T) {
	css := SuppressionCSS()
	for _, sel := range SuppressionSelectors() {
		if !strings.Contains(css, sel) {
			t.Errorf("CSS missing rule for %s", sel)
		}
	}
}
