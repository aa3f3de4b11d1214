package entity_test

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/AIpakchoi/carla/entity"
	"github.com/stretchr/testify/assert"
)

func straightBuffer(start geometry.Point, yaw float64, n int) entity.Buffer {
	forward := entity.Direction(yaw)
	buffer := make(entity.Buffer, 0, n)
	for i := 0; i < n; i++ {
		buffer = append(buffer, entity.NewSimpleWaypoint(
			entity.Add(start, entity.Scale(forward, float64(i))), yaw, false))
	}
	return buffer
}

func TestSimpleWaypoint(t *testing.T) {
	wp := entity.NewSimpleWaypoint(geometry.Point{X: 1, Y: 2}, math.Pi/2, true)
	assert.True(t, wp.InJunction())
	assert.InDelta(t, 0, wp.Forward().X, 1e-9)
	assert.InDelta(t, 1, wp.Forward().Y, 1e-9)
	assert.Equal(t, geometry.Point{X: 1, Y: 2}, wp.Transform().Location)

	other := entity.NewSimpleWaypoint(geometry.Point{X: 4, Y: 6}, 0, false)
	assert.InDelta(t, 5, wp.Distance(other), 1e-9)
	assert.InDelta(t, 25, wp.DistanceSquared(other), 1e-9)
}

func TestGetTargetWaypoint(t *testing.T) {
	buffer := straightBuffer(geometry.Point{}, 0, 20)

	// 返回首个距离超过目标的路点
	wp, index := entity.GetTargetWaypoint(buffer, 4.5)
	assert.Equal(t, 5, index)
	assert.InDelta(t, 5, wp.Position().X, 1e-9)

	// 零距离返回第二个路点
	_, index = entity.GetTargetWaypoint(buffer, 0)
	assert.Equal(t, 1, index)

	// 超出缓冲区时返回最后一个路点
	wp, index = entity.GetTargetWaypoint(buffer, 100)
	assert.Equal(t, 19, index)
	assert.InDelta(t, 19, wp.Position().X, 1e-9)
}

func TestVectorHelpers(t *testing.T) {
	a := geometry.Point{X: 3, Y: 4}
	assert.InDelta(t, 5, entity.Length2D(a), 1e-9)
	assert.InDelta(t, 5, entity.Length(a), 1e-9)

	unit := entity.Unit2D(a)
	assert.InDelta(t, 1, entity.Length2D(unit), 1e-9)

	// 零向量不单位化
	zero := entity.Unit2D(geometry.Point{})
	assert.Equal(t, geometry.Point{}, zero)

	// 左垂向量
	perpendicular := entity.LeftPerpendicular2D(geometry.Point{X: 1})
	assert.Equal(t, geometry.Point{X: 0, Y: 1}, perpendicular)

	assert.InDelta(t, 0, entity.Dot2D(a, entity.LeftPerpendicular2D(a)), 1e-9)
	assert.InDelta(t, -1, entity.Cross2D(geometry.Point{Y: 1}, geometry.Point{X: 1}), 1e-9)
}
