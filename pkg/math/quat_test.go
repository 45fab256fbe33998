package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if abs(length-1) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 2, Z: 0}, float32(math.Pi/2))
	if abs(q.W-float32(math.Cos(math.Pi/4))) > 0.001 {
		t.Errorf("W = %v, want cos(45deg)", q.W)
	}
	if abs(q.Y-float32(math.Sin(math.Pi/4))) > 0.001 {
		t.Errorf("Y = %v, want sin(45deg) with axis normalized", q.Y)
	}

	if got := QuatFromAxisAngle(Vec3{}, 1); got != QuatIdentity() {
		t.Errorf("zero axis should give identity, got %v", got)
	}
}

func TestQuatMulMatchesMatrix(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, 0.4)
	b := QuatFromAxisAngle(Vec3{0, 0, 1}, 0.3)
	got := a.Mul(b).ToMat4()
	want := RotateAxis(Vec3{0, 0, 1}, 0.7)
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("composed rotation = %v, want %v", got, want)
	}
}

func TestVec2Rotate(t *testing.T) {
	v := Vec2{1, 0}.Rotate(math.Pi / 2)
	if abs(v.X) > 1e-6 || abs(v.Y-1) > 1e-6 {
		t.Errorf("Rotate = %v, want (0,1)", v)
	}
	if (Vec2{2, 3}).Rotate(0) != (Vec2{2, 3}) {
		t.Error("zero rotation should return the input")
	}
}

func TestVec3Cross(t *testing.T) {
	c := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if c != (Vec3{0, 0, 1}) {
		t.Errorf("X x Y = %v, want Z", c)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}
