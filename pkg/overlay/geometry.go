package overlay

// Breakpoint buckets the frame width into the three responsive layouts.
type Breakpoint string

const (
	BreakpointNarrow Breakpoint = "narrow"
	BreakpointMedium Breakpoint = "medium"
	BreakpointWide   Breakpoint = "wide"

	narrowMaxWidth = 480
	mediumMaxWidth = 1024
)

// BreakpointFor maps a frame width in CSS pixels to its layout bucket.
func BreakpointFor(frameWidth int) Breakpoint {
	switch {
	case frameWidth < narrowMaxWidth:
		return BreakpointNarrow
	case frameWidth < mediumMaxWidth:
		return BreakpointMedium
	default:
		return BreakpointWide
	}
}

// Panel is one translucent cover layer, positioned relative to the
// frame's top-right corner.
type Panel struct {
	Top     float64 `json:"top"`
	Right   float64 `json:"right"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Opacity float64 `json:"opacity"`
}

// ShareButton is the replacement control rendered at the suppressed
// control's position.
type ShareButton struct {
	Top   int `json:"top"`
	Right int `json:"right"`
	Size  int `json:"size"`
}

// Geometry is the full responsive layout for one breakpoint: a stack of
// cover panels, each layer larger and more transparent than the last,
// plus the replacement share button.
type Geometry struct {
	Breakpoint  Breakpoint  `json:"breakpoint"`
	Panels      []Panel     `json:"panels"`
	ShareButton ShareButton `json:"shareButton"`
}

// Per-breakpoint base dimensions for the cover stack and the button.
var layouts = map[Breakpoint]struct {
	panelWidth  float64
	panelHeight float64
	panelOffset float64
	buttonSize  int
	buttonEdge  int
}{
	BreakpointNarrow: {panelWidth: 80, panelHeight: 50, panelOffset: 8, buttonSize: 50, buttonEdge: 10},
	BreakpointMedium: {panelWidth: 100, panelHeight: 60, panelOffset: 12, buttonSize: 58, buttonEdge: 15},
	BreakpointWide:   {panelWidth: 120, panelHeight: 70, panelOffset: 16, buttonSize: 65, buttonEdge: 20},
}

// Successive layers scale up, fade out, and creep 2px back toward the
// corner so the stack expands around the target rather than growing
// down-left, masking it even when the widget shifts a few pixels
// between re-renders.
var layerScales = []float64{1.0, 1.1, 1.2}
var layerOpacities = []float64{1.0, 0.7, 0.4}

const layerStagger = 2.0

// ComputeGeometry derives the overlay layout for a frame width. Pure;
// the same width always yields the same plan.
func ComputeGeometry(frameWidth int) Geometry {
	bp := BreakpointFor(frameWidth)
	layout := layouts[bp]

	panels := make([]Panel, len(layerScales))
	for i := range layerScales {
		panels[i] = Panel{
			Top:     layout.panelOffset - float64(i)*layerStagger,
			Right:   layout.panelOffset - float64(i)*layerStagger,
			Width:   layout.panelWidth * layerScales[i],
			Height:  layout.panelHeight * layerScales[i],
			Opacity: layerOpacities[i],
		}
	}

	return Geometry{
		Breakpoint: bp,
		Panels:     panels,
		ShareButton: ShareButton{
			Top:   layout.buttonEdge,
			Right: layout.buttonEdge,
			Size:  layout.buttonSize,
		},
	}
}
