package filtergraph

import "fmt"

const (
	// SquareSize is the side length of cropped avatar previews.
	SquareSize = 236
	// CanvasSize is the side length of the decoration canvas.
	CanvasSize = 288

	// backgroundSeconds bounds the duration of the generated canvas.
	backgroundSeconds = 100
)

// Pad labels used by the decoration graph.
const (
	padBackground    = "background"
	padRoundedAvatar = "rounded_avatar"
	padAvatar        = "avatar"
	padMerged        = "merged"
	padSplitPalette  = "s0"
	padSplitFrames   = "s1"
	padPalette       = "palette"
)

// circleAlpha keeps a pixel opaque when its squared distance from the
// image center is within the squared radius min(W,H)/2, else clears it.
// Registers: 1 holds r², 3 holds the pixel's squared distance.
const circleAlpha = "st(1,pow(min(W/2,H/2),2))+st(3,pow(X-(W/2),2)+pow(Y-(H/2),2));if(lte(ld(3),ld(1)),255,0)"

// CropToSquare scales the single input so its shorter side equals size,
// never undershooting, then crops the centered size×size square.
func CropToSquare(size int) Graph {
	return Graph{
		Inputs: 1,
		Stages: []Stage{
			{
				Filter: "scale",
				Params: []Param{
					Int("w", size),
					Int("h", size),
					String("force_original_aspect_ratio", "increase"),
				},
			},
			{
				Filter: "crop",
				Params: []Param{
					Int("w", size),
					Int("h", size),
					String("x", "(in_w-out_w)/2"),
					String("y", "(in_h-out_h)/2"),
				},
			},
		},
	}
}

// Decoration composites input 0 (the base avatar), masked to a circle,
// on a transparent canvas×canvas surface, lays input 1 (the animated
// decoration) over it and quantizes the result against one shared palette.
func Decoration(canvas int) Graph {
	centered := []Param{
		String("x", "(main_w-overlay_w)/2"),
		String("y", "(main_h-overlay_h)/2"),
	}

	return Graph{
		Inputs: 2,
		Stages: []Stage{
			// Transparent compositing surface.
			{
				Filter: "color",
				Params: []Param{
					String("s", fmt.Sprintf("%dx%d", canvas, canvas)),
					Int("d", backgroundSeconds),
				},
			},
			{Filter: "format", Params: []Param{Positional("argb")}},
			{
				Filter:  "colorchannelmixer",
				Params:  []Param{String("aa", "0.0")},
				Outputs: []Pad{Label(padBackground)},
			},

			// Circular mask on the base avatar.
			{
				Inputs: []Pad{Input(0)},
				Filter: "format",
				Params: []Param{Positional("yuva444p")},
			},
			{
				Filter: "geq",
				Params: []Param{
					String("lum", "p(X,Y)"),
					String("a", circleAlpha),
				},
				Outputs: []Pad{Label(padRoundedAvatar)},
			},

			{
				Inputs:  []Pad{Label(padBackground), Label(padRoundedAvatar)},
				Filter:  "overlay",
				Params:  append(append([]Param{}, centered...), Int("shortest", 1), String("format", "auto")),
				Outputs: []Pad{Label(padAvatar)},
			},
			{
				Inputs:  []Pad{Label(padAvatar), Input(1)},
				Filter:  "overlay",
				Params:  append(append([]Param{}, centered...), String("format", "auto")),
				Outputs: []Pad{Label(padMerged)},
			},

			// Two-pass palette: one global palette keeps colors stable across frames.
			{
				Inputs:  []Pad{Label(padMerged)},
				Filter:  "split",
				Outputs: []Pad{Label(padSplitPalette), Label(padSplitFrames)},
			},
			{
				Inputs:  []Pad{Label(padSplitPalette)},
				Filter:  "palettegen",
				Outputs: []Pad{Label(padPalette)},
			},
			{
				Inputs: []Pad{Label(padSplitFrames), Label(padPalette)},
				Filter: "paletteuse",
			},
		},
	}
}
