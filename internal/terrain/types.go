package terrain

// Type is the material of a single world tile.
type Type uint8

const (
	Water Type = iota
	// Sand is reserved. The classifier never produces it.
	Sand
	Grass
)

func (t Type) String() string {
	switch t {
	case Water:
		return "water"
	case Sand:
		return "sand"
	case Grass:
		return "grass"
	default:
		return "unknown"
	}
}

// Letter returns the single-letter form used in tileset descriptors.
func (t Type) Letter() byte {
	switch t {
	case Water:
		return 'W'
	case Sand:
		return 'S'
	case Grass:
		return 'G'
	default:
		return '?'
	}
}
