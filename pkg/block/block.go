// Package block defines the tagged-variant block table: a flat registry
// indexed by BlockID, built once at startup and shared read-only by every
// actor. There is no dynamic dispatch between block kinds.
package block

// ID identifies a block type. Zero is always air.
type ID uint8

const Air ID = 0

// Kind distinguishes the two block variants the renderer needs to treat
// differently: nothing to draw, or a cube with per-face textures.
type Kind uint8

const (
	KindAir Kind = iota
	KindCube
)

// TexID indexes into the texture atlas.
type TexID uint8

// Face indexes Def.Faces, matching the mesher's Direction order.
type Face int

const (
	FaceNorth Face = iota // -Z
	FaceSouth             // +Z
	FaceEast              // +X
	FaceWest              // -X
	FaceUp                // +Y
	FaceDown              // -Y
)

// Def is one entry of the block registry: either Air (Kind == KindAir, the
// rest of the fields unused) or a Cube with six face textures.
type Def struct {
	Kind  Kind
	Faces [6]TexID
}

// Registry is the immutable, shared block table. Built once by NewDefaultRegistry
// and never mutated afterward, so it requires no synchronization to share
// across the Input, Meshing, and server actors.
type Registry struct {
	defs []Def
}

// Get returns the definition for id, or the air definition if id is out of
// range (an out-of-range id never occurs for locally-authored block data,
// but network-delivered bytes are untrusted).
func (r *Registry) Get(id ID) Def {
	if int(id) >= len(r.defs) {
		return Def{Kind: KindAir}
	}
	return r.defs[id]
}

// IsAir reports whether id renders as empty space.
func (r *Registry) IsAir(id ID) bool {
	return r.Get(id).Kind == KindAir
}

// block names, in registry order. Index 0 is always air.
var defaultNames = []string{
	"air",
	"grass",
	"dirt",
	"stone",
	"oak_log",
	"oak_leaves",
	"glass",
	"water",
	"sand",
	"snow",
	"oak_planks",
	"stone_bricks",
	"netherrack",
	"gold_block",
	"packed_ice",
	"lava",
	"barrel",
	"bookshelf",
}

// Named IDs for the blocks the server's world generator and tests refer to
// directly. Texture wiring for the remainder lives entirely in
// NewDefaultRegistry's atlas layout.
const (
	Grass ID = iota + 1
	Dirt
	Stone
	OakLog
	OakLeaves
	Glass
	Water
	Sand
	Snow
	OakPlanks
	StoneBricks
	Netherrack
	GoldBlock
	PackedIce
	Lava
	Barrel
	Bookshelf
)

// NewDefaultRegistry builds the block table used by the single-process
// client+server binary. Every non-air block gets a uniform texture ID equal
// to its own ID on all six faces; a richer per-face atlas layout is a
// texture-atlas-loading concern and out of scope here.
func NewDefaultRegistry() *Registry {
	defs := make([]Def, len(defaultNames))
	defs[Air] = Def{Kind: KindAir}
	for id := 1; id < len(defaultNames); id++ {
		defs[id] = Def{Kind: KindCube, Faces: [6]TexID{
			TexID(id), TexID(id), TexID(id), TexID(id), TexID(id), TexID(id),
		}}
	}
	// Water and glass keep their own texture but the renderer's blend
	// state (not modeled here) is what would make them see-through;
	// the registry only carries geometry/texture data.
	return &Registry{defs: defs}
}

// Name returns the human-readable name of id, or "" if out of range.
func (r *Registry) Name(id ID) string {
	if int(id) >= len(defaultNames) {
		return ""
	}
	return defaultNames[id]
}
