// internal/scroll/scroll_test.go
package scroll

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
)

func sum(steps []Step) (x, y float64) {
	for _, s := range steps {
		x += s.DeltaX
		y += s.DeltaY
	}
	return x, y
}

func TestPlan_ExactSum(t *testing.T) {
	deltas := [][2]float64{
		{0, 1}, {1, 0}, {0, -1}, {3, 7}, {-7, 3}, {100, 0}, {0, 1000},
		{-1234, 567}, {89, -89}, {5000, -4999}, {17, 4321}, {-2, -3},
		{91, 0}, {0, -90}, {250, 250}, {1, 1},
	}
	for _, d := range deltas {
		for speed := 1; speed <= 100; speed++ {
			steps := Plan(d[0], d[1], float64(speed))
			require.NotEmpty(t, steps, "delta %v speed %d", d, speed)
			x, y := sum(steps)
			require.Equal(t, d[0], x, "delta %v speed %d", d, speed)
			require.Equal(t, d[1], y, "delta %v speed %d", d, speed)
		}
	}
}

func TestPlan_ZeroDelta(t *testing.T) {
	assert.Empty(t, Plan(0, 0, 50))
	assert.Equal(t, []Step{{DeltaX: 0.2, DeltaY: -0.4}}, Plan(0.2, -0.4, 50), "a sub-pixel delta is one step")
}

func TestPlan_StepSize(t *testing.T) {
	t.Run("below threshold the step equals the speed", func(t *testing.T) {
		steps := Plan(0, 500, 50)
		require.Len(t, steps, 10)
		for _, s := range steps {
			assert.Equal(t, 50.0, s.DeltaY)
			assert.Equal(t, 0.0, s.DeltaX)
		}
	})

	t.Run("max speed covers the distance in one step", func(t *testing.T) {
		steps := Plan(-3000, 1200, 100)
		require.Len(t, steps, 1)
		assert.Equal(t, Step{DeltaX: -3000, DeltaY: 1200}, steps[0])
	})

	t.Run("above threshold steps get larger", func(t *testing.T) {
		slow := Plan(0, 2000, 89)
		fast := Plan(0, 2000, 95)
		assert.Greater(t, len(slow), len(fast))
	})

	t.Run("speed is clamped", func(t *testing.T) {
		assert.Equal(t, Plan(0, 300, 1), Plan(0, 300, -20))
		assert.Equal(t, Plan(0, 300, 100), Plan(0, 300, 500))
	})

	t.Run("remainders land on the last step", func(t *testing.T) {
		steps := Plan(7, 105, 10)
		require.Len(t, steps, 10)
		for _, s := range steps[:9] {
			assert.Equal(t, Step{DeltaX: 0, DeltaY: 10}, s)
		}
		assert.Equal(t, Step{DeltaX: 7, DeltaY: 15}, steps[9])
	})

	t.Run("minor axis is spread evenly", func(t *testing.T) {
		steps := Plan(-400, 40, 40)
		require.Len(t, steps, 10)
		for _, s := range steps {
			assert.Equal(t, Step{DeltaX: -40, DeltaY: 4}, s)
		}
	})
}

func TestPlan_FractionalDeltas(t *testing.T) {
	deltas := [][2]float64{
		{0.4, 0}, {10.4, -20.6}, {0, 250.5}, {-0.25, 0.75}, {1234.567, -89.125},
		{-3.3, -7.7}, {0, -4999.999}, {100.5, 100.5},
	}
	for _, d := range deltas {
		for _, speed := range []float64{1, 5, 50, 89, 90, 95, 100} {
			steps := Plan(d[0], d[1], speed)
			require.NotEmpty(t, steps, "delta %v speed %v", d, speed)
			x, y := sum(steps)
			require.Equal(t, d[0], x, "delta %v speed %v", d, speed)
			require.Equal(t, d[1], y, "delta %v speed %v", d, speed)

			for _, s := range steps[:len(steps)-1] {
				assert.Equal(t, math.Trunc(s.DeltaX), s.DeltaX, "only the last step is fractional")
				assert.Equal(t, math.Trunc(s.DeltaY), s.DeltaY, "only the last step is fractional")
			}
		}
	}

	steps := Plan(0, 250.5, 50)
	require.Len(t, steps, 5)
	assert.Equal(t, 50.5, steps[4].DeltaY)
}

func TestPlanDetent(t *testing.T) {
	steps := PlanDetent(0, 530, 100)
	require.Len(t, steps, 5)
	for _, s := range steps[:4] {
		assert.Equal(t, 100.0, s.DeltaY)
	}
	assert.Equal(t, 130.0, steps[4].DeltaY)

	x, y := sum(PlanDetent(-33, -1001, 53))
	assert.Equal(t, -33.0, x)
	assert.Equal(t, -1001.0, y)

	assert.Len(t, PlanDetent(0, 40, 100), 1, "a delta smaller than a notch is one step")
	assert.Len(t, PlanDetent(0, 400, 0), 1)
	assert.Equal(t, []Step{{DeltaY: 400.5}}, PlanDetent(0, 400.5, 0))

	x, y = sum(PlanDetent(12.25, -530.75, 100))
	assert.Equal(t, 12.25, x)
	assert.Equal(t, -530.75, y)
	assert.Empty(t, PlanDetent(0, 0, 100))
}

func TestInView(t *testing.T) {
	m := geometry.Metrics{
		ViewportWidth: 1000, ViewportHeight: 800,
		DocumentWidth: 1000, DocumentHeight: 5000,
		ScrollX: 0, ScrollY: 1000,
	}

	t.Run("inside", func(t *testing.T) {
		_, ok := InView(geometry.BoundingBox{X: 100, Y: 100, Width: 50, Height: 50}, m, 20)
		assert.True(t, ok)
	})

	t.Run("margin pushes it out", func(t *testing.T) {
		_, ok := InView(geometry.BoundingBox{X: 100, Y: 10, Width: 50, Height: 50}, m, 20)
		assert.False(t, ok)
	})

	t.Run("below the fold", func(t *testing.T) {
		region, ok := InView(geometry.BoundingBox{X: 100, Y: 900, Width: 50, Height: 50}, m, 0)
		assert.False(t, ok)
		dx, dy := Delta(region, m)
		assert.Equal(t, 0.0, dx)
		assert.Equal(t, 150.0, dy)
	})

	t.Run("above the viewport", func(t *testing.T) {
		region, ok := InView(geometry.BoundingBox{X: 10, Y: -300.5, Width: 50, Height: 50}, m, 0)
		assert.False(t, ok)
		_, dy := Delta(region, m)
		assert.Equal(t, -301.0, dy)
	})

	t.Run("element hugging the document edge is in view once clamped", func(t *testing.T) {
		top := geometry.Metrics{ViewportWidth: 1000, ViewportHeight: 800, DocumentWidth: 1000, DocumentHeight: 5000}
		_, ok := InView(geometry.BoundingBox{X: 0, Y: 0, Width: 1000, Height: 40}, top, 50)
		assert.True(t, ok)

		bottom := top
		bottom.ScrollY = 4200
		_, ok = InView(geometry.BoundingBox{X: 0, Y: 760, Width: 200, Height: 40}, bottom, 50)
		assert.True(t, ok)
	})

	t.Run("horizontal overflow", func(t *testing.T) {
		wide := geometry.Metrics{ViewportWidth: 500, ViewportHeight: 800, DocumentWidth: 3000, DocumentHeight: 800}
		region, ok := InView(geometry.BoundingBox{X: 700, Y: 100, Width: 100, Height: 20}, wide, 0)
		assert.False(t, ok)
		dx, dy := Delta(region, wide)
		assert.Equal(t, 300.0, dx)
		assert.Equal(t, 0.0, dy)
	})
}
