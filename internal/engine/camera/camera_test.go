package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() <= 1e-5
}

func TestFlyCamera_Movement(t *testing.T) {
	tests := []struct {
		name string
		in   Controls
		want mgl32.Vec3
	}{
		{"forward", Controls{Forward: true}, mgl32.Vec3{0, 0, 1.9}},
		{"back", Controls{Back: true}, mgl32.Vec3{0, 0, 2.1}},
		{"right", Controls{Right: true}, mgl32.Vec3{0.1, 0, 2}},
		{"left", Controls{Left: true}, mgl32.Vec3{-0.1, 0, 2}},
		{"up", Controls{Up: true}, mgl32.Vec3{0, 0.1, 2}},
		{"down", Controls{Down: true}, mgl32.Vec3{0, -0.1, 2}},
		{"sprint forward", Controls{Forward: true, Sprint: true}, mgl32.Vec3{0, 0, 1.6}},
		{"idle", Controls{}, mgl32.Vec3{0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFlyCamera(800, 800, mgl32.Vec3{0, 0, 2})
			c.Inputs(tt.in)
			if !near(c.Position(), tt.want) {
				t.Errorf("expected %v, got %v", tt.want, c.Position())
			}
		})
	}
}

func TestFlyCamera_LookRequiresButton(t *testing.T) {
	c := NewFlyCamera(800, 800, mgl32.Vec3{})
	c.Inputs(Controls{MouseDX: 200, MouseDY: 200})
	if c.Orientation != (mgl32.Vec3{0, 0, -1}) {
		t.Errorf("orientation changed without look button: %v", c.Orientation)
	}

	c.Inputs(Controls{Look: true, MouseDX: 200})
	if near(c.Orientation, mgl32.Vec3{0, 0, -1}) {
		t.Error("orientation should change while looking")
	}
	if c.Orientation[1] > 1e-5 || c.Orientation[1] < -1e-5 {
		t.Errorf("horizontal drag should keep the view level, got %v", c.Orientation)
	}
}

func TestFlyCamera_PitchClamp(t *testing.T) {
	c := NewFlyCamera(800, 800, mgl32.Vec3{})

	for i := 0; i < 50; i++ {
		c.HandleDrag(0, -200)
	}

	pitch := 90 - angleBetween(c.Orientation, c.Up)
	if pitch > c.MaxPitch+0.01 || pitch < c.MaxPitch-0.01 {
		t.Errorf("expected pitch clamped to %f, got %f", c.MaxPitch, pitch)
	}
	if c.Orientation[2] >= 0 {
		t.Errorf("view should not flip over the top, got %v", c.Orientation)
	}

	for i := 0; i < 50; i++ {
		c.HandleDrag(0, 200)
	}
	pitch = 90 - angleBetween(c.Orientation, c.Up)
	if pitch < -c.MaxPitch-0.01 || pitch > -c.MaxPitch+0.01 {
		t.Errorf("expected pitch clamped to %f, got %f", -c.MaxPitch, pitch)
	}
}

func TestFlyCamera_Matrix(t *testing.T) {
	c := NewFlyCamera(800, 600, mgl32.Vec3{0, 0, 2})
	c.UpdateMatrix()

	clip := c.Matrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip[3])
	if ndc[0] > 1e-5 || ndc[0] < -1e-5 || ndc[1] > 1e-5 || ndc[1] < -1e-5 {
		t.Errorf("point straight ahead should be centered, got %v", ndc)
	}
	if ndc[2] < -1 || ndc[2] > 1 {
		t.Errorf("point should be inside the depth range, got %f", ndc[2])
	}

	behind := c.Matrix().Mul4x1(mgl32.Vec4{0, 0, 5, 1})
	if behind[3] > 0 {
		t.Errorf("point behind the camera should have negative w, got %f", behind[3])
	}
}

func TestFlyCamera_FitToBounds(t *testing.T) {
	c := NewFlyCamera(800, 800, mgl32.Vec3{})
	c.FitToBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{3, 1, 1})

	if c.Eye[0] != 1 || c.Eye[1] != 0 || c.Eye[2] <= 1 {
		t.Errorf("expected eye in front of center (1, 0, 0), got %v", c.Eye)
	}
	c.UpdateMatrix()
	for _, corner := range []mgl32.Vec3{{-1, -1, 1}, {3, 1, 1}, {3, -1, -1}} {
		clip := c.Matrix().Mul4x1(corner.Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip[3])
		for i := 0; i < 3; i++ {
			if ndc[i] < -1 || ndc[i] > 1 {
				t.Errorf("corner %v outside view: ndc %v", corner, ndc)
				break
			}
		}
	}
}
