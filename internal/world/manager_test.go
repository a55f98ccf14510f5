package world

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tileworld/internal/terrain"
	"tileworld/internal/tiling"
)

func scenarioConfig() terrain.Config {
	return terrain.Config{
		Seed:                707,
		IslandDensity:       12.1,
		IslandSize:          14,
		IslandSizeVariation: 0.5,
		EdgeNoise:           0.2,
	}
}

func newTestManager(t *testing.T, r *fakeRenderer, workers int) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		Renderer: r,
		Tileset:  tiling.DefaultTileset(),
		Terrain:  scenarioConfig(),
		Workers:  workers,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// span is one chunk width in world pixels for the test managers.
const span = DefaultChunkSize * 16

func TestNewManagerRequiresCollaborators(t *testing.T) {
	_, err := NewManager(Options{Renderer: &fakeRenderer{}})
	assert.ErrorIs(t, err, ErrNoTileset)

	_, err = NewManager(Options{Tileset: tiling.DefaultTileset()})
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestManagerDefaults(t *testing.T) {
	m, err := NewManager(Options{Renderer: &fakeRenderer{}, Tileset: tiling.DefaultTileset()})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, DefaultChunkSize, m.ChunkSize())
	w, h := m.TileSize()
	assert.Equal(t, tiling.DefaultTileset().TileWidth(), w)
	assert.Equal(t, tiling.DefaultTileset().TileHeight(), h)
	assert.Equal(t, 0, m.Len())
}

func TestLayerPlacementFollowsTileset(t *testing.T) {
	spec := tiling.DefaultTilesetSpec()
	spec.TileWidth, spec.TileHeight = 32, 24
	ts, err := tiling.NewTileset(spec)
	require.NoError(t, err)

	r := &fakeRenderer{}
	m, err := NewManager(Options{Renderer: r, Tileset: ts, Terrain: scenarioConfig(), BaseRadius: 1})
	require.NoError(t, err)
	defer m.Close()

	w, h := m.ChunkSpan()
	assert.Equal(t, float64(DefaultChunkSize*32), w)
	assert.Equal(t, float64(DefaultChunkSize*24), h)

	_, err = m.Update(0, 0, 1)
	require.NoError(t, err)
	require.NotEmpty(t, r.layers)
	for _, l := range r.layers {
		assert.Equal(t, float64(l.coord.X)*w, l.x, "chunk %s", l.coord)
		assert.Equal(t, float64(l.coord.Y)*h, l.y, "chunk %s", l.coord)
		// the layer's own centre must map back to its chunk
		assert.Equal(t, l.coord, m.FocusChunk(l.x+w/2, l.y+h/2))
	}

	assert.Equal(t, ChunkCoord{X: 1, Y: 0}, m.FocusChunk(w+1, h-1))
	assert.Equal(t, ChunkCoord{X: -1, Y: -1}, m.FocusChunk(-1, -1))
}

func TestLoadRadius(t *testing.T) {
	m := newTestManager(t, &fakeRenderer{}, 0)
	tests := []struct {
		zoom float64
		want int
	}{
		{1, 3},
		{2, 2},
		{4, 2},
		{0.5, 5},
		{0.25, 9},
		{0, 3},
		{-1, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.LoadRadius(tt.zoom), "zoom %v", tt.zoom)
	}
}

func TestFocusChunk(t *testing.T) {
	m := newTestManager(t, &fakeRenderer{}, 0)
	assert.Equal(t, ChunkCoord{0, 0}, m.FocusChunk(0, 0))
	assert.Equal(t, ChunkCoord{0, 0}, m.FocusChunk(span-1, span-1))
	assert.Equal(t, ChunkCoord{1, 2}, m.FocusChunk(span, 2*span+5))
	assert.Equal(t, ChunkCoord{-1, -1}, m.FocusChunk(-1, -0.5))
}

func TestUpdateLoadsRadius(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestManager(t, r, 0)

	res, err := m.Update(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.LoadRadius)
	assert.Equal(t, 49, res.Created)
	assert.Equal(t, 49, res.Materialized)
	assert.Equal(t, 49, m.Len())
	assert.Equal(t, 49, r.live())

	for y := -3; y <= 3; y++ {
		for x := -3; x <= 3; x++ {
			c, ok := m.Chunk(ChunkCoord{x, y})
			require.True(t, ok, "chunk %d,%d", x, y)
			assert.True(t, c.HasLayer())
		}
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestManager(t, r, 0)

	_, err := m.Update(100, 100, 1)
	require.NoError(t, err)
	before := m.Coords()

	res, err := m.Update(100, 100, 1)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Zero(t, res.Evicted)
	assert.Zero(t, res.Materialized)
	assert.Equal(t, before, m.Coords())
	assert.Equal(t, 49, r.created)
}

func TestUpdateKeepsMarginRing(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestManager(t, r, 0)

	_, err := m.Update(0, 0, 1)
	require.NoError(t, err)

	// one chunk east: column -3 is now at distance 4 = radius+1 and stays
	res, err := m.Update(span, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, res.Evicted)
	assert.Equal(t, 7, res.Created)
	assert.True(t, hasChunk(m, ChunkCoord{-3, 0}))

	// two chunks east: column -3 is at distance 5 and goes
	res, err = m.Update(2*span, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Evicted)
	assert.False(t, hasChunk(m, ChunkCoord{-3, 0}))
	assert.Equal(t, r.created-r.destroyed, m.Len())
}

func TestResidentSetBounds(t *testing.T) {
	m := newTestManager(t, &fakeRenderer{}, 0)
	path := [][3]float64{
		{0, 0, 1},
		{3 * span, span, 1},
		{-2 * span, 4 * span, 0.5},
		{-2 * span, 4 * span, 2},
		{10 * span, -7 * span, 1},
	}
	for _, p := range path {
		_, err := m.Update(p[0], p[1], p[2])
		require.NoError(t, err)

		focus := m.FocusChunk(p[0], p[1])
		radius := m.LoadRadius(p[2])
		for y := focus.Y - radius; y <= focus.Y+radius; y++ {
			for x := focus.X - radius; x <= focus.X+radius; x++ {
				assert.True(t, hasChunk(m, ChunkCoord{x, y}))
			}
		}
		for _, c := range m.Coords() {
			assert.LessOrEqual(t, c.Chebyshev(focus), radius+1, "stale chunk %s", c)
		}
	}
}

func TestScenarioSeed707(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestManager(t, r, 0)

	_, err := m.Update(0, 0, 1)
	require.NoError(t, err)
	first, ok := m.Chunk(ChunkCoord{0, 0})
	require.True(t, ok)
	assert.Equal(t, 32, first.Size())

	other := newTestManager(t, &fakeRenderer{}, 0)
	_, err = other.Update(0, 0, 1)
	require.NoError(t, err)
	second, ok := other.Chunk(ChunkCoord{0, 0})
	require.True(t, ok)
	assert.Equal(t, first.Tiles(), second.Tiles())

	layer := first.Layer().(*fakeLayer)
	_, err = m.Update(20*span, 0, 1)
	require.NoError(t, err)
	assert.False(t, hasChunk(m, ChunkCoord{0, 0}))
	assert.True(t, layer.destroyed)

	// coming back regenerates the same tiles
	_, err = m.Update(0, 0, 1)
	require.NoError(t, err)
	again, ok := m.Chunk(ChunkCoord{0, 0})
	require.True(t, ok)
	assert.Equal(t, first.Tiles(), again.Tiles())
}

func TestLayerReceivesEveryTile(t *testing.T) {
	m := newTestManager(t, &fakeRenderer{}, 0)
	_, err := m.Update(0, 0, 4)
	require.NoError(t, err)

	c, ok := m.Chunk(ChunkCoord{1, -1})
	require.True(t, ok)
	layer := c.Layer().(*fakeLayer)
	require.Len(t, layer.tiles, 32*32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			assert.Equal(t, c.Tile(x, y).TileIndex, layer.tiles[[2]int{x, y}])
		}
	}
}

func TestLayerFailureIsRetried(t *testing.T) {
	r := &fakeRenderer{failures: 5}
	m := newTestManager(t, r, 0)

	res, err := m.Update(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 49, res.Created)
	assert.Equal(t, 44, res.Materialized)
	assert.Equal(t, 49, m.Len())

	res, err = m.Update(0, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 5, res.Materialized)
	for _, c := range m.Coords() {
		chunk, _ := m.Chunk(c)
		assert.True(t, chunk.HasLayer(), "chunk %s", c)
	}
}

func TestSetTerrainConfigRegenerates(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestManager(t, r, 0)

	_, err := m.Update(0, 0, 1)
	require.NoError(t, err)
	old, _ := m.Chunk(ChunkCoord{0, 0})

	cfg := scenarioConfig()
	cfg.Seed = 708
	require.NoError(t, m.SetTerrainConfig(cfg))
	assert.Zero(t, m.Len())
	assert.Zero(t, r.live())
	assert.Equal(t, cfg, m.TerrainConfig())
	assert.Zero(t, m.synth.SeedField().Len())

	res, err := m.Update(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 49, res.Created)

	fresh, _ := m.Chunk(ChunkCoord{0, 0})
	assert.NotSame(t, old, fresh)

	want := NewSynthesizer(cfg, DefaultChunkSize, terrain.DefaultCellSize, tiling.DefaultTileset())
	c, err := want.Synthesize(t.Context(), ChunkCoord{0, 0})
	require.NoError(t, err)
	assert.Equal(t, c.Tiles(), fresh.Tiles())
}

func TestLayerReadsDuringUpdate(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestManager(t, r, 0)

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				for _, coord := range m.Coords() {
					if c, ok := m.Chunk(coord); ok && c.HasLayer() {
						_ = c.Layer()
					}
				}
			}
		}()
	}

	// walk back and forth so chunks are materialised and released
	for i := 0; i < 20; i++ {
		x := float64(i%5) * span * 3
		_, err := m.Update(x, 0, 1)
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()
	assert.Equal(t, m.Len(), r.live())
}

func TestClosedManager(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestManager(t, r, 2)
	_, err := m.Update(0, 0, 1)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Zero(t, m.Len())

	_, err = m.Update(0, 0, 1)
	assert.ErrorIs(t, err, ErrManagerClosed)
	assert.ErrorIs(t, m.SetTerrainConfig(scenarioConfig()), ErrManagerClosed)
}

func TestAsyncMatchesSync(t *testing.T) {
	direct := newTestManager(t, &fakeRenderer{}, 0)
	_, err := direct.Update(0, 0, 1)
	require.NoError(t, err)

	r := &fakeRenderer{}
	async := newTestManager(t, r, 4)
	res, err := async.Update(0, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 49, res.Queued)

	require.Eventually(t, func() bool { return async.Pending() == 0 }, 10*time.Second, 5*time.Millisecond)

	res, err = async.Update(0, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, res.Queued)
	assert.Equal(t, 49, async.Len())
	assert.Equal(t, 49, r.live())

	for _, coord := range direct.Coords() {
		a, ok := async.Chunk(coord)
		require.True(t, ok)
		s, _ := direct.Chunk(coord)
		assert.Equal(t, s.Tiles(), a.Tiles(), "chunk %s", coord)
		assert.True(t, a.HasLayer())
	}
}

func TestAsyncCancelsLeftBehindJobs(t *testing.T) {
	m := newTestManager(t, &fakeRenderer{}, 1)
	_, err := m.Update(0, 0, 1)
	require.NoError(t, err)

	res, err := m.Update(40*span, 40*span, 1)
	require.NoError(t, err)
	assert.Equal(t, 49, res.Queued)

	require.Eventually(t, func() bool { return m.Pending() == 0 }, 10*time.Second, 5*time.Millisecond)
	_, err = m.Update(40*span, 40*span, 1)
	require.NoError(t, err)

	focus := m.FocusChunk(40*span, 40*span)
	for _, c := range m.Coords() {
		assert.LessOrEqual(t, c.Chebyshev(focus), 4, "stale chunk %s", c)
	}
}

func hasChunk(m *Manager, c ChunkCoord) bool {
	_, ok := m.Chunk(c)
	return ok
}

func BenchmarkUpdateWalk(b *testing.B) {
	m, err := NewManager(Options{
		Renderer: &fakeRenderer{},
		Tileset:  tiling.DefaultTileset(),
		Terrain:  scenarioConfig(),
	})
	if err != nil {
		b.Fatal(err)
	}
	defer m.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// walk east one chunk every 8 frames
		w, _ := m.ChunkSpan()
		x := float64(i/8) * w
		if _, err := m.Update(x, 0, 1); err != nil {
			b.Fatal(err)
		}
	}
}
