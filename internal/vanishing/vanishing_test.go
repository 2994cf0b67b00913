package vanishing

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSampler replays a fixed sequence of draws.
type scriptedSampler struct {
	seq []int
	i   int
}

func (s *scriptedSampler) IntN(n int) int {
	v := s.seq[s.i%len(s.seq)] % n
	s.i++
	return v
}

// recordingSampler wraps another sampler and keeps every draw.
type recordingSampler struct {
	inner Sampler
	draws []int
}

func (s *recordingSampler) IntN(n int) int {
	v := s.inner.IntN(n)
	s.draws = append(s.draws, v)
	return v
}

func deg(d float64) float64 { return d * math.Pi / 180 }

// lineThrough returns the polar line with angle thetaDeg passing through (x, y).
func lineThrough(x, y, thetaDeg float64) Line {
	sin, cos := math.Sincos(deg(thetaDeg))
	return Line{Rho: x*cos + y*sin, Theta: deg(thetaDeg)}
}

func TestIntersect_Scenario(t *testing.T) {
	a := Line{Rho: 100, Theta: deg(30)}
	b := Line{Rho: 100, Theta: deg(150)}

	p, found := Intersect(a, b)
	require.True(t, found)
	assert.InDelta(t, 0, p.X, 1)
	assert.InDelta(t, 200, p.Y, 1)

	clamped := p.Clamp(640, 480)
	assert.GreaterOrEqual(t, clamped.X, 0)
	assert.LessOrEqual(t, clamped.X, 640)
	assert.GreaterOrEqual(t, clamped.Y, 0)
	assert.LessOrEqual(t, clamped.Y, 480)
}

func TestIntersect_Residual(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		a := Line{Rho: r.Float64()*800 - 200, Theta: r.Float64() * math.Pi}
		b := Line{Rho: r.Float64()*800 - 200, Theta: r.Float64() * math.Pi}
		if math.Abs(a.Theta-b.Theta) < deg(1) {
			continue
		}

		p, found := Intersect(a, b)
		require.True(t, found)

		// Truncation moves each coordinate by less than one pixel.
		assert.Less(t, Distance(a, p), math.Sqrt2)
		assert.Less(t, Distance(b, p), math.Sqrt2)
	}
}

func TestIntersect_Parallel(t *testing.T) {
	tests := []struct {
		name string
		a, b Line
	}{
		{"identical", Line{Rho: 100, Theta: deg(40)}, Line{Rho: 100, Theta: deg(40)}},
		{"same angle", Line{Rho: 100, Theta: deg(40)}, Line{Rho: 250, Theta: deg(40)}},
		{"horizontal", Line{Rho: 10, Theta: math.Pi / 2}, Line{Rho: 240, Theta: math.Pi / 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, found := Intersect(tt.a, tt.b)
			assert.False(t, found)
		})
	}
}

func TestCountInliers_IdenticalLines(t *testing.T) {
	lines := make([]Line, 10)
	for i := range lines {
		lines[i] = Line{Rho: 100, Theta: math.Pi / 2}
	}

	assert.Equal(t, 10, CountInliers(lines, Point{X: 50, Y: 100}, 0.5))
}

func TestCountInliers_MonotonicInThreshold(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	lines := make([]Line, 60)
	for i := range lines {
		lines[i] = Line{Rho: r.Float64() * 600, Theta: r.Float64() * math.Pi}
	}
	p := Point{X: 320, Y: 200}

	prev := math.MaxInt
	for th := 200.0; th >= 0; th -= 2.5 {
		n := CountInliers(lines, p, th)
		assert.LessOrEqual(t, n, prev, "threshold %v", th)
		prev = n
	}
	assert.Equal(t, 0, CountInliers(lines, p, 0))
}

func TestFilterVertical(t *testing.T) {
	lines := []Line{
		{Rho: 10, Theta: deg(2)},
		{Rho: 20, Theta: deg(45)},
		{Rho: 30, Theta: deg(90)},
		{Rho: 40, Theta: deg(178)},
		{Rho: 50, Theta: deg(12)},
	}

	got := FilterVertical(lines, 10)
	require.Len(t, got, 3)
	assert.Equal(t, 20.0, got[0].Rho)
	assert.Equal(t, 30.0, got[1].Rho)
	assert.Equal(t, 50.0, got[2].Rho)

	assert.Len(t, FilterVertical(lines, 0), 5)
	assert.Len(t, lines, 5, "input must not be modified")
}

func TestBucket(t *testing.T) {
	lines := []Line{
		{Theta: deg(30)},
		{Theta: deg(120)},
		{Theta: deg(89)},
		{Theta: math.Pi / 2},
	}

	b := Bucket(lines)
	assert.Equal(t, []int{0, 2}, b.Low)
	assert.Equal(t, []int{1, 3}, b.High)
	assert.True(t, b.Balanced())

	assert.False(t, Bucket(lines[:1]).Balanced())
}

func TestEstimate_Degenerate(t *testing.T) {
	e := NewEstimator(50, 10, 640, 480, &scriptedSampler{seq: []int{0}})

	_, err := e.Estimate(nil)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, err = e.Estimate([]Line{{Rho: 10, Theta: deg(45)}})
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestEstimate_NoConvergence(t *testing.T) {
	lines := []Line{
		{Rho: 10, Theta: deg(60)},
		{Rho: 80, Theta: deg(60)},
		{Rho: 200, Theta: deg(60)},
	}
	e := NewEstimator(20, 10, 640, 480, &scriptedSampler{seq: []int{0, 1, 2, 2, 1}})

	_, err := e.Estimate(lines)
	assert.ErrorIs(t, err, ErrNoConvergence)
	assert.NotErrorIs(t, err, ErrDegenerateInput)
}

func TestEstimate_FindsCommonPoint(t *testing.T) {
	lines := []Line{
		lineThrough(320, 100, 40),
		lineThrough(320, 100, 60),
		lineThrough(320, 100, 120),
		lineThrough(320, 100, 140),
		{Rho: 300, Theta: deg(100)},
	}
	e := NewEstimator(100, 10, 640, 480, rand.New(rand.NewPCG(1, 2)))

	h, err := e.Estimate(lines)
	require.NoError(t, err)
	assert.InDelta(t, 320, h.Point.X, 2)
	assert.InDelta(t, 100, h.Point.Y, 2)
	assert.Equal(t, 4, h.Inliers)
	assert.NotEqual(t, 4, h.A)
	assert.NotEqual(t, 4, h.B)
}

func TestEstimate_TiesKeepEarliest(t *testing.T) {
	// Buckets: Low = [0, 2], High = [1, 3]. Pairs (0,1) and (2,3) each meet
	// at a point with two inliers.
	lines := []Line{
		lineThrough(200, 200, 45),
		lineThrough(200, 200, 135),
		lineThrough(400, 300, 30),
		lineThrough(400, 300, 150),
	}

	e := NewEstimator(2, 10, 640, 480, &scriptedSampler{seq: []int{0, 0, 1, 1}})
	h, err := e.Estimate(lines)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Inliers)
	assert.Equal(t, 0, h.A)
	assert.Equal(t, 1, h.B)

	e = NewEstimator(2, 10, 640, 480, &scriptedSampler{seq: []int{1, 1, 0, 0}})
	h, err = e.Estimate(lines)
	require.NoError(t, err)
	assert.Equal(t, 2, h.A)
	assert.Equal(t, 3, h.B)
}

func TestEstimate_StrictlyBetterReplaces(t *testing.T) {
	lines := []Line{
		lineThrough(200, 200, 45),
		lineThrough(200, 200, 135),
		lineThrough(400, 300, 30),
		lineThrough(400, 300, 150),
		lineThrough(400, 300, 60),
	}

	e := NewEstimator(2, 10, 640, 480, &scriptedSampler{seq: []int{0, 0, 1, 1}})
	h, err := e.Estimate(lines)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Inliers)
	assert.Equal(t, 2, h.A)
	assert.Equal(t, 3, h.B)
	assert.InDelta(t, 400, h.Point.X, 2)
	assert.InDelta(t, 300, h.Point.Y, 2)
}

func TestEstimate_BestDominatesEveryTrial(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 43))
	lines := make([]Line, 0, 30)
	for i := 0; i < 30; i++ {
		lines = append(lines, Line{Rho: r.Float64() * 500, Theta: deg(5 + r.Float64()*170)})
	}

	rec := &recordingSampler{inner: rand.New(rand.NewPCG(9, 9))}
	e := NewEstimator(60, 10, 640, 480, rec)
	best, err := e.Estimate(lines)
	require.NoError(t, err)

	buckets := Bucket(lines)
	require.True(t, buckets.Balanced())
	require.Len(t, rec.draws, 120)
	for i := 0; i < len(rec.draws); i += 2 {
		a := buckets.Low[rec.draws[i]]
		b := buckets.High[rec.draws[i+1]]
		p, ok := Intersect(lines[a], lines[b])
		if !ok {
			continue
		}
		assert.GreaterOrEqual(t, best.Inliers, CountInliers(lines, p, 10))
	}
}

func TestEstimate_ClampsToImage(t *testing.T) {
	lines := []Line{
		lineThrough(-100, -50, 45),
		lineThrough(-100, -50, 135),
	}
	e := NewEstimator(5, 10, 640, 480, &scriptedSampler{seq: []int{0}})

	h, err := e.Estimate(lines)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 0, Y: 0}, h.Point)

	lines = []Line{
		lineThrough(900, 700, 45),
		lineThrough(900, 700, 135),
	}
	h, err = e.Estimate(lines)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 640, Y: 480}, h.Point)
}

func TestMiddleX(t *testing.T) {
	const width, height = 640, 480
	cross200 := lineThrough(200, 240, 45)
	cross400 := lineThrough(400, 240, 135)
	crossFar := lineThrough(-500, 240, 60)
	flatLow := Line{Rho: 100, Theta: math.Pi/2 - 1e-12}
	flatHigh := Line{Rho: 100, Theta: math.Pi / 2}

	lines := []Line{cross200, cross400, crossFar, flatLow, flatHigh}

	tests := []struct {
		name  string
		a, b  int
		want  int
		delta float64
	}{
		{"two crossings", 0, 1, 300, 1},
		{"clamped crossing", 2, 1, 200, 1},
		{"parallel low falls back left", 3, 1, 200, 1},
		{"parallel high falls back right", 0, 4, 420, 1},
		{"both parallel", 3, 4, 320, 0},
		{"negative index", -1, 1, 320, 0},
		{"index past end", 0, 5, 320, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MiddleX(lines, tt.a, tt.b, width, height)
			assert.InDelta(t, tt.want, got, tt.delta)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, width)
		})
	}
}

func TestComputeError(t *testing.T) {
	tests := []struct {
		x    int
		want float64
	}{
		{320, 0},
		{0, -0.5},
		{640, 0.5},
		{160, -0.25},
		{480, 0.25},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeError(Point{X: tt.x, Y: 100}, 640), "x=%d", tt.x)
	}
	assert.Equal(t, 0.0, ComputeError(Point{X: 10}, 0))
}
