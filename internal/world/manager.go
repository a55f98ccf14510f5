package world

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"tileworld/internal/profiling"
	"tileworld/internal/terrain"
	"tileworld/internal/tiling"
)

const (
	// DefaultBaseRadius is the load radius in chunks at zoom 1, before the
	// one-chunk margin.
	DefaultBaseRadius = 2
)

var (
	ErrNoTileset     = errors.New("world: no tileset")
	ErrNoRenderer    = errors.New("world: no renderer")
	ErrManagerClosed = errors.New("world: manager closed")
)

// Options configures a Manager.
type Options struct {
	Renderer Renderer
	Tileset  *tiling.Tileset
	Terrain  terrain.Config

	ChunkSize  int // tiles per chunk edge, default 32
	BaseRadius int // default 2
	CellSize   int // seed partition cell edge, default 100

	// Workers > 0 moves chunk synthesis onto background goroutines.
	Workers   int
	QueueSize int

	Logger logrus.FieldLogger
}

// UpdateResult counts what one Update call did.
type UpdateResult struct {
	Focus        ChunkCoord
	LoadRadius   int
	Created      int // synthesised synchronously
	Queued       int // handed to background workers
	Cancelled    int // background jobs dropped for leaving the radius
	Evicted      int
	Materialized int // layers created
}

// Manager keeps the set of resident chunks around a moving focus point.
// Update, SetTerrainConfig and Close are serialised. Chunk, Coords, Len and
// Pending, and the tiles and layer handle of a returned chunk, may be read
// from any goroutine.
type Manager struct {
	mu sync.Mutex

	renderer   Renderer
	tileset    *tiling.Tileset
	chunkSize  int
	tileW      int // pixel size of one tile, from the tileset
	tileH      int
	baseRadius int
	cellSize   int

	store    *ChunkStore
	streamer *ChunkStreamer
	synth    *Synthesizer
	log      logrus.FieldLogger
	closed   bool
}

// NewManager validates opts and builds a manager with an empty resident set.
func NewManager(opts Options) (*Manager, error) {
	if opts.Tileset == nil {
		return nil, ErrNoTileset
	}
	if opts.Renderer == nil {
		return nil, ErrNoRenderer
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.BaseRadius <= 0 {
		opts.BaseRadius = DefaultBaseRadius
	}
	if opts.CellSize <= 0 {
		opts.CellSize = terrain.DefaultCellSize
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}

	m := &Manager{
		renderer:   opts.Renderer,
		tileset:    opts.Tileset,
		chunkSize:  opts.ChunkSize,
		tileW:      opts.Tileset.TileWidth(),
		tileH:      opts.Tileset.TileHeight(),
		baseRadius: opts.BaseRadius,
		cellSize:   opts.CellSize,
		store:      NewChunkStore(),
		log:        opts.Logger.WithField("component", "chunks"),
	}
	m.synth = NewSynthesizer(opts.Terrain, m.chunkSize, m.cellSize, m.tileset)
	if opts.Workers > 0 {
		m.streamer = NewChunkStreamer(m.store, opts.Workers, opts.QueueSize, m.log)
	}
	return m, nil
}

// ChunkSize returns the chunk edge length in tiles.
func (m *Manager) ChunkSize() int { return m.chunkSize }

// TileSize returns the tile size in world pixels. It is always the
// tileset's sprite size, so layers line up with chunk coordinates.
func (m *Manager) TileSize() (w, h int) { return m.tileW, m.tileH }

// ChunkSpan returns the size of one chunk in world pixels.
func (m *Manager) ChunkSpan() (w, h float64) {
	return float64(m.chunkSize * m.tileW), float64(m.chunkSize * m.tileH)
}

// ChunkOrigin returns the world pixel position of the chunk's top-left corner.
func (m *Manager) ChunkOrigin(coord ChunkCoord) (x, y float64) {
	w, h := m.ChunkSpan()
	return float64(coord.X) * w, float64(coord.Y) * h
}

// FocusChunk returns the chunk containing world pixel (x, y).
func (m *Manager) FocusChunk(x, y float64) ChunkCoord {
	w, h := m.ChunkSpan()
	return ChunkCoord{X: floorDiv(x, w), Y: floorDiv(y, h)}
}

// LoadRadius returns the Chebyshev load radius for zoom. Zooming out widens it.
// Non-positive or non-finite zoom counts as 1.
func (m *Manager) LoadRadius(zoom float64) int {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	return int(math.Ceil(float64(m.baseRadius)/zoom)) + 1
}

// Update loads every chunk within the load radius of the focus, evicts those
// beyond radius+1 and retries layers that failed earlier. Calling it again
// with the same focus and zoom changes nothing.
func (m *Manager) Update(focusX, focusY, zoom float64) (UpdateResult, error) {
	defer profiling.Track("world.Update")()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return UpdateResult{}, ErrManagerClosed
	}

	focus := m.FocusChunk(focusX, focusY)
	radius := m.LoadRadius(zoom)
	res := UpdateResult{Focus: focus, LoadRadius: radius}

	if m.streamer != nil {
		res.Cancelled = m.streamer.CancelWhere(func(c ChunkCoord) bool {
			return c.Chebyshev(focus) > radius
		})
	}

	res.Evicted = m.evict(focus, radius+1)

	for y := focus.Y - radius; y <= focus.Y+radius; y++ {
		for x := focus.X - radius; x <= focus.X+radius; x++ {
			coord := ChunkCoord{X: x, Y: y}
			if m.store.Has(coord) {
				continue
			}
			if m.streamer != nil {
				if m.streamer.Request(coord, m.synth) {
					res.Queued++
				}
				continue
			}
			if m.load(coord) {
				res.Created++
			}
		}
	}

	res.Materialized = m.materializePending(focus, radius+1)
	return res, nil
}

// load synthesises coord on the calling goroutine and stores it.
func (m *Manager) load(coord ChunkCoord) bool {
	chunk, err := m.synth.Synthesize(context.Background(), coord)
	if err != nil {
		m.log.WithError(err).WithField("chunk", coord.String()).Warn("chunk generation failed")
		return false
	}
	if !m.store.Add(chunk) {
		return false
	}
	m.log.WithFields(logrus.Fields{"chunk_x": coord.X, "chunk_y": coord.Y}).Debug("chunk loaded")
	return true
}

func (m *Manager) evict(focus ChunkCoord, keep int) int {
	defer profiling.Track("world.Evict")()
	n := 0
	for _, coord := range m.store.FarFrom(focus, keep) {
		chunk, ok := m.store.Remove(coord)
		if !ok {
			continue
		}
		chunk.releaseLayer()
		n++
		m.log.WithFields(logrus.Fields{"chunk_x": coord.X, "chunk_y": coord.Y}).Debug("chunk evicted")
	}
	return n
}

// materializePending creates layers for resident chunks that lack one.
func (m *Manager) materializePending(focus ChunkCoord, keep int) int {
	n := 0
	for _, chunk := range m.store.Chunks() {
		if chunk.HasLayer() || chunk.Coord.Chebyshev(focus) > keep {
			continue
		}
		if m.materialize(chunk) {
			n++
		}
	}
	return n
}

func (m *Manager) materialize(chunk *Chunk) bool {
	x, y := m.ChunkOrigin(chunk.Coord)
	layer, err := m.renderer.CreateLayer(chunk.Coord, x, y, m.chunkSize, m.chunkSize)
	if err != nil {
		m.log.WithError(err).WithField("chunk", chunk.Coord.String()).Warn("layer allocation failed, will retry")
		return false
	}
	if layer == nil {
		m.log.WithField("chunk", chunk.Coord.String()).Warn("renderer returned no layer, will retry")
		return false
	}
	for y := 0; y < m.chunkSize; y++ {
		for x := 0; x < m.chunkSize; x++ {
			layer.PutTile(chunk.Tile(x, y).TileIndex, x, y)
		}
	}
	chunk.setLayer(layer)
	return true
}

// SetTerrainConfig replaces the generation parameters. Every resident chunk
// is released and the seed cache starts empty; the next Update regenerates
// the working set from scratch.
func (m *Manager) SetTerrainConfig(cfg terrain.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}

	cancelled := 0
	if m.streamer != nil {
		cancelled = m.streamer.CancelAll()
	}
	released := m.releaseAll()
	m.synth = NewSynthesizer(cfg, m.chunkSize, m.cellSize, m.tileset)

	m.log.WithFields(logrus.Fields{
		"seed":      cfg.Seed,
		"density":   cfg.IslandDensity,
		"size":      cfg.IslandSize,
		"variation": cfg.IslandSizeVariation,
		"edge":      cfg.EdgeNoise,
		"released":  released,
		"cancelled": cancelled,
	}).Info("terrain config replaced")
	return nil
}

func (m *Manager) releaseAll() int {
	chunks := m.store.Clear()
	for _, c := range chunks {
		c.releaseLayer()
	}
	return len(chunks)
}

// TerrainConfig returns the active generation parameters.
func (m *Manager) TerrainConfig() terrain.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.Config()
}

// Chunk returns the resident chunk at coord.
func (m *Manager) Chunk(coord ChunkCoord) (*Chunk, bool) {
	return m.store.Get(coord)
}

// Coords lists resident chunk coordinates.
func (m *Manager) Coords() []ChunkCoord {
	return m.store.Coords()
}

// Len returns the number of resident chunks.
func (m *Manager) Len() int {
	return m.store.Len()
}

// Pending returns the number of background jobs in flight.
func (m *Manager) Pending() int {
	if m.streamer == nil {
		return 0
	}
	return m.streamer.Pending()
}

// Close stops background workers and releases every layer.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.streamer != nil {
		m.streamer.Close()
	}
	if n := m.releaseAll(); n > 0 {
		m.log.WithField("released", n).Debug("manager closed")
	}
	return nil
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager{resident=%d pending=%d}", m.Len(), m.Pending())
}
