package light

import "github.com/Carmen-Shannon/oxy-gl/common"

// CullPointLights returns the indices of the lights whose influence sphere intersects the
// frustum. Order is preserved.
//
// Parameters:
//   - lights: the candidate lights
//   - frustum: the camera frustum in world space
//
// Returns:
//   - []int: indices into lights of the visible ones
func CullPointLights(lights []PointLight, frustum common.Frustum) []int {
	visible := make([]int, 0, len(lights))
	for i, l := range lights {
		if frustum.ContainsSphere(l.Position, l.Radius()) {
			visible = append(visible, i)
		}
	}
	return visible
}
