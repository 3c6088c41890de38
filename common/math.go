package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer and texture uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// MipLevelCount returns the number of levels in a full mip chain for a texture of the given size,
// floor(log2(max(width, height))) + 1. Non-positive sizes have a single level.
//
// Parameters:
//   - width: base level width in texels
//   - height: base level height in texels
//
// Returns:
//   - int: the mip level count
func MipLevelCount(width, height int) int {
	largest := max(width, height)
	if largest <= 1 {
		return 1
	}
	levels := 1
	for largest > 1 {
		largest >>= 1
		levels++
	}
	return levels
}

// MipSize returns the dimension of the given mip level for a base dimension, never below 1.
func MipSize(base, level int) int {
	return max(1, base>>level)
}

// ModelMatrix builds a model matrix as T * Rz * Ry * Rx * S from translation, Euler rotation in
// radians, and scale.
//
// Parameters:
//   - pos: world-space translation
//   - rot: rotation around the X, Y and Z axes in radians
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func ModelMatrix(pos, rot, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
	r := mgl32.HomogRotate3DZ(rot.Z()).Mul4(mgl32.HomogRotate3DY(rot.Y())).Mul4(mgl32.HomogRotate3DX(rot.X()))
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Radians converts degrees to radians in float32.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// TransformPoint multiplies a point (w = 1) by a 4x4 matrix and returns the xyz of the result.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}
