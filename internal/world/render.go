package world

// Renderer is the drawing collaborator. The manager calls it only from the
// goroutine that calls Update.
type Renderer interface {
	// CreateLayer allocates a width×height tile layer whose top-left corner
	// sits at (originX, originY) in world pixels.
	CreateLayer(coord ChunkCoord, originX, originY float64, width, height int) (Layer, error)
}

// Layer is one chunk's renderable.
type Layer interface {
	PutTile(index, x, y int)
	Destroy()
}
