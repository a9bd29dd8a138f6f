// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Controls is one frame of movement intent, produced by the input layer.
type Controls struct {
	Forward, Back bool
	Left, Right   bool
	Up, Down      bool
	Sprint        bool

	// Look is true while the look button is held; MouseDX and MouseDY are
	// the relative motion in pixels since the last frame.
	Look             bool
	MouseDX, MouseDY float32
}

// FlyCamera is a free-flying first-person camera.
type FlyCamera struct {
	Eye         mgl32.Vec3
	Orientation mgl32.Vec3
	Up          mgl32.Vec3

	Width, Height int
	FOV           float32 // vertical, degrees
	Near, Far     float32

	Speed       float32
	SprintSpeed float32
	Sensitivity float32
	MaxPitch    float32 // degrees from the horizon

	matrix mgl32.Mat4
}

// NewFlyCamera creates a camera at pos looking down -Z.
func NewFlyCamera(width, height int, pos mgl32.Vec3) *FlyCamera {
	c := &FlyCamera{
		Eye:         pos,
		Orientation: mgl32.Vec3{0, 0, -1},
		Up:          mgl32.Vec3{0, 1, 0},
		Width:       width,
		Height:      height,
		FOV:         45,
		Near:        0.1,
		Far:         1000,
		Speed:       0.1,
		SprintSpeed: 0.4,
		Sensitivity: 100,
		MaxPitch:    85,
	}
	c.UpdateMatrix()
	return c
}

// Position returns the eye position in world space.
func (c *FlyCamera) Position() mgl32.Vec3 {
	return c.Eye
}

// Matrix returns projection * view as of the last UpdateMatrix.
func (c *FlyCamera) Matrix() mgl32.Mat4 {
	return c.matrix
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Eye.Add(c.Orientation), c.Up)
}

// ProjectionMatrix returns the perspective projection.
func (c *FlyCamera) ProjectionMatrix() mgl32.Mat4 {
	aspect := float32(1)
	if c.Height > 0 {
		aspect = float32(c.Width) / float32(c.Height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// UpdateMatrix recomputes the combined matrix.
func (c *FlyCamera) UpdateMatrix() {
	c.matrix = c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// SetViewport updates the aspect ratio after a resize.
func (c *FlyCamera) SetViewport(width, height int) {
	c.Width = width
	c.Height = height
}

func (c *FlyCamera) right() mgl32.Vec3 {
	return c.Orientation.Cross(c.Up).Normalize()
}

// Inputs applies one frame of controls.
func (c *FlyCamera) Inputs(in Controls) {
	speed := c.Speed
	if in.Sprint {
		speed = c.SprintSpeed
	}

	if in.Forward {
		c.Eye = c.Eye.Add(c.Orientation.Mul(speed))
	}
	if in.Back {
		c.Eye = c.Eye.Sub(c.Orientation.Mul(speed))
	}
	if in.Right {
		c.Eye = c.Eye.Add(c.right().Mul(speed))
	}
	if in.Left {
		c.Eye = c.Eye.Sub(c.right().Mul(speed))
	}
	if in.Up {
		c.Eye = c.Eye.Add(c.Up.Mul(speed))
	}
	if in.Down {
		c.Eye = c.Eye.Sub(c.Up.Mul(speed))
	}

	if in.Look && c.Width > 0 && c.Height > 0 {
		c.HandleDrag(in.MouseDX, in.MouseDY)
	}
}

// HandleDrag rotates the view by a mouse delta in pixels. Pitch is clamped
// to MaxPitch from the horizon.
func (c *FlyCamera) HandleDrag(deltaX, deltaY float32) {
	rotX := c.Sensitivity * deltaY / float32(c.Height)
	rotY := c.Sensitivity * deltaX / float32(c.Width)

	pitch := 90 - angleBetween(c.Orientation, c.Up)
	target := mgl32.Clamp(pitch-rotX, -c.MaxPitch, c.MaxPitch)
	if target != pitch {
		c.Orientation = mgl32.QuatRotate(mgl32.DegToRad(target-pitch), c.right()).Rotate(c.Orientation)
	}
	c.Orientation = mgl32.QuatRotate(mgl32.DegToRad(-rotY), c.Up).Rotate(c.Orientation).Normalize()
}

// FitToBounds moves the camera onto the +Z side of the box, looking at its
// center from far enough away to see all of it.
func (c *FlyCamera) FitToBounds(min, max mgl32.Vec3) {
	center := min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2
	if radius <= 0 {
		radius = 1
	}

	dist := radius / float32(math.Sin(float64(mgl32.DegToRad(c.FOV))/2))
	c.Eye = center.Add(mgl32.Vec3{0, 0, dist})
	c.Orientation = mgl32.Vec3{0, 0, -1}
	if c.Far < dist+radius*2 {
		c.Far = dist + radius*2
	}
	c.Speed = radius / 50
	c.SprintSpeed = c.Speed * 4
}

// angleBetween returns the angle between a and b in degrees.
func angleBetween(a, b mgl32.Vec3) float32 {
	cos := a.Dot(b) / (a.Len() * b.Len())
	cos = mgl32.Clamp(cos, -1, 1)
	return mgl32.RadToDeg(float32(math.Acos(float64(cos))))
}
