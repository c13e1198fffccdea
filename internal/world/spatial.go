package world

import (
	"math"
	"slices"
)

// ObjectKind separates the object namespaces placed on a city map.
type ObjectKind int

const (
	ObjectVehicle ObjectKind = iota
	ObjectScenery
	ObjectProjectile
)

// TileMap is the spatial/rendering collaborator of a city. The core only
// adds, moves and removes objects; drawing is someone else's business.
type TileMap interface {
	AddObject(kind ObjectKind, id string, pos Vec3)
	MoveObject(kind ObjectKind, id string, pos Vec3)
	RemoveObject(kind ObjectKind, id string)
	Contains(kind ObjectKind, id string) bool
	Count(kind ObjectKind) int
	// Nearby lists candidates close to pos; callers filter by distance.
	Nearby(kind ObjectKind, pos Vec3) []string
}

const spatialCellSize = 20

type spatialCell struct {
	cx, cy int32
}

type objectKey struct {
	kind ObjectKind
	id   string
}

// SpatialGrid is the default cell-based TileMap.
// Accessed only from the game loop goroutine, no locks.
type SpatialGrid struct {
	cells map[spatialCell]map[objectKey]struct{}
	pos   map[objectKey]Vec3
}

func NewSpatialGrid() *SpatialGrid {
	return &SpatialGrid{
		cells: make(map[spatialCell]map[objectKey]struct{}),
		pos:   make(map[objectKey]Vec3),
	}
}

func toSpatialCoord(v float64) int32 {
	return int32(math.Floor(v / spatialCellSize))
}

func cellOf(p Vec3) spatialCell {
	return spatialCell{cx: toSpatialCoord(p.X), cy: toSpatialCoord(p.Y)}
}

// AddObject places an object. Adding an object that is already present only
// moves it, so repeated placement never duplicates.
func (g *SpatialGrid) AddObject(kind ObjectKind, id string, p Vec3) {
	k := objectKey{kind, id}
	if _, ok := g.pos[k]; ok {
		g.MoveObject(kind, id, p)
		return
	}
	g.pos[k] = p
	c := cellOf(p)
	cell := g.cells[c]
	if cell == nil {
		cell = make(map[objectKey]struct{})
		g.cells[c] = cell
	}
	cell[k] = struct{}{}
}

func (g *SpatialGrid) RemoveObject(kind ObjectKind, id string) {
	k := objectKey{kind, id}
	p, ok := g.pos[k]
	if !ok {
		return
	}
	delete(g.pos, k)
	c := cellOf(p)
	if cell := g.cells[c]; cell != nil {
		delete(cell, k)
		if len(cell) == 0 {
			delete(g.cells, c)
		}
	}
}

// MoveObject updates an object's cell when its position changes.
func (g *SpatialGrid) MoveObject(kind ObjectKind, id string, p Vec3) {
	k := objectKey{kind, id}
	old, ok := g.pos[k]
	if !ok {
		return
	}
	if cellOf(old) == cellOf(p) {
		g.pos[k] = p
		return
	}
	g.RemoveObject(kind, id)
	g.AddObject(kind, id, p)
}

func (g *SpatialGrid) Contains(kind ObjectKind, id string) bool {
	_, ok := g.pos[objectKey{kind, id}]
	return ok
}

func (g *SpatialGrid) Count(kind ObjectKind) int {
	n := 0
	for k := range g.pos {
		if k.kind == kind {
			n++
		}
	}
	return n
}

// Nearby returns the ids of objects of the given kind in the 3x3 cell
// neighbourhood of p, sorted. Caller does fine-grained distance filtering.
func (g *SpatialGrid) Nearby(kind ObjectKind, p Vec3) []string {
	c := cellOf(p)
	var result []string
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for k := range g.cells[spatialCell{cx: c.cx + dx, cy: c.cy + dy}] {
				if k.kind == kind {
					result = append(result, k.id)
				}
			}
		}
	}
	slices.Sort(result)
	return result
}
