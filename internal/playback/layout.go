package playback

// Viewport is the available display area.
type Viewport struct {
	Width  float64
	Height float64
}

// Transform places the video surface in a viewport.
type Transform struct {
	// Rotation in degrees, clockwise.
	Rotation int
	Width    float64
	Height   float64
}

// Layout rotates the surface a quarter turn in portrait viewports so video
// always renders landscape. The surface dimensions are swapped to match.
func Layout(v Viewport) Transform {
	if v.Height > v.Width {
		return Transform{Rotation: 90, Width: v.Height, Height: v.Width}
	}
	return Transform{Width: v.Width, Height: v.Height}
}
