package gaze

import "testing"

func TestChanged_RawTolerance(t *testing.T) {
	base := Point{X: 0.5, Y: 0.5}

	tests := []struct {
		name  string
		other Point
		want  bool
	}{
		{"identical", Point{X: 0.5, Y: 0.5}, false},
		{"below tolerance on both axes", Point{X: 0.5 + 9e-6, Y: 0.5 - 9e-6}, false},
		{"at tolerance on x", Point{X: 0.5 + 2e-5, Y: 0.5}, true},
		{"at tolerance on y", Point{X: 0.5, Y: 0.5 - 2e-5}, true},
		{"far away", Point{X: 0.1, Y: 0.9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Changed(tt.other, base, nil); got != tt.want {
				t.Errorf("Changed(%v, %v) = %v, want %v", tt.other, base, got, tt.want)
			}
			// symmetric
			if got := Changed(base, tt.other, nil); got != tt.want {
				t.Errorf("Changed(%v, %v) = %v, want %v", base, tt.other, got, tt.want)
			}
		})
	}
}

func TestChanged_ExactlyTolerance(t *testing.T) {
	// a difference of exactly Tolerance counts as a change
	a := Point{X: 0, Y: 0}
	b := Point{X: Tolerance, Y: 0}
	if !Changed(a, b, nil) {
		t.Error("a difference equal to Tolerance should be a change")
	}
}

func TestToScreen(t *testing.T) {
	screen := Screen{Width: 10, Height: 10}

	tests := []struct {
		p    Point
		want ScreenPoint
	}{
		{Point{X: 0.04, Y: 0.04}, ScreenPoint{X: 0, Y: 0}},
		{Point{X: 0.06, Y: 0.06}, ScreenPoint{X: 1, Y: 1}},
		{Point{X: 0.26, Y: 0.74}, ScreenPoint{X: 3, Y: 7}},
		{Point{X: 1, Y: 1}, ScreenPoint{X: 10, Y: 10}},
		{Point{X: -0.06, Y: 0}, ScreenPoint{X: -1, Y: 0}},
	}

	for _, tt := range tests {
		if got := tt.p.ToScreen(screen); got != tt.want {
			t.Errorf("%v.ToScreen() = %+v, want %+v", tt.p, got, tt.want)
		}
	}
}

func TestChanged_ScreenAgreesWithPixels(t *testing.T) {
	screen := Screen{Width: 10, Height: 10}
	points := []Point{
		{X: 0.04, Y: 0.04},
		{X: 0.06, Y: 0.06},
		{X: 0.01, Y: 0.02},
		{X: 0.14, Y: 0.06},
		{X: 0.5, Y: 0.5},
		{X: 0.52, Y: 0.48},
	}

	for _, a := range points {
		for _, b := range points {
			samePixel := a.ToScreen(screen) == b.ToScreen(screen)
			if got := Changed(a, b, &screen); got == samePixel {
				t.Errorf("Changed(%v, %v, screen) = %v, pixels equal = %v", a, b, got, samePixel)
			}
		}
	}

	// (0.04,0.04) and (0.06,0.06) straddle the pixel boundary
	if !Changed(Point{X: 0.04, Y: 0.04}, Point{X: 0.06, Y: 0.06}, &screen) {
		t.Error("points on different pixels should be a change")
	}
	// differences far above the raw tolerance are hidden by the same pixel
	if Changed(Point{X: 0.51, Y: 0.51}, Point{X: 0.54, Y: 0.54}, &screen) {
		t.Error("points on the same pixel should not be a change")
	}
}

func TestScreenValidate(t *testing.T) {
	tests := []struct {
		name    string
		screen  Screen
		wantErr bool
	}{
		{"full hd", Screen{Width: 1920, Height: 1080}, false},
		{"zero width", Screen{Width: 0, Height: 1080}, true},
		{"negative height", Screen{Width: 1920, Height: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.screen.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
