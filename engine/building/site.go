package building

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// RoadType distinguishes public streets from private access roads.
type RoadType int

const (
	PublicRoad RoadType = iota
	PrivateRoad
)

func (r RoadType) String() string {
	if r == PrivateRoad {
		return "Private"
	}
	return "Public"
}

// Road is a polyline of a given width.
type Road struct {
	ID    string
	Type  RoadType
	Path  []mgl32.Vec3
	Width float32
}

// NewRoad creates a road with a generated id.
//
// Parameters:
//   - roadType: public or private
//   - width: carriageway width in world units
//   - path: centreline points
//
// Returns:
//   - *Road: the new road
func NewRoad(roadType RoadType, width float32, path ...mgl32.Vec3) *Road {
	return &Road{ID: uuid.NewString(), Type: roadType, Path: path, Width: width}
}

// Length returns the summed length of the centreline segments.
func (r *Road) Length() float32 {
	var total float32
	for i := 1; i < len(r.Path); i++ {
		total += r.Path[i].Sub(r.Path[i-1]).Len()
	}
	return total
}

// Area is a parcel: an outline, the roads it fronts, and the building on it, if any.
type Area struct {
	ID            string
	Outline       []mgl32.Vec3
	AdjacentRoads []*Road
	Building      *Building
	FAR           float32
	OSR           float32
}

// NewArea creates an empty parcel with a generated id and zero FAR/OSR.
//
// Parameters:
//   - outline: the parcel corners
//
// Returns:
//   - *Area: the new parcel
func NewArea(outline ...mgl32.Vec3) *Area {
	return &Area{ID: uuid.NewString(), Outline: outline}
}

// Place puts a building on the parcel and adopts its FAR/OSR.
//
// Parameters:
//   - b: the building
func (a *Area) Place(b *Building) {
	a.Building = b
	if b != nil {
		a.FAR = b.FAR
		a.OSR = b.OSR
	}
}

// Zone groups parcels and the roads that serve them.
type Zone struct {
	ID      string
	Outline []mgl32.Vec3
	Areas   []*Area
	Roads   []*Road
}

// NewZone creates a zone. An empty id is replaced with a generated one.
//
// Parameters:
//   - id: the zone id, or ""
//   - outline: the zone corners
//
// Returns:
//   - *Zone: the new zone
func NewZone(id string, outline ...mgl32.Vec3) *Zone {
	if id == "" {
		id = uuid.NewString()
	}
	return &Zone{ID: id, Outline: outline}
}

// AddArea appends a parcel.
func (z *Zone) AddArea(a *Area) {
	z.Areas = append(z.Areas, a)
}

// AddRoad appends a road.
func (z *Zone) AddRoad(r *Road) {
	z.Roads = append(z.Roads, r)
}

// Ground is the whole site: its outline, zones and the road network.
type Ground struct {
	Outline []mgl32.Vec3
	Zones   []*Zone
	Roads   []*Road
}

// NewGround returns a 20x20 site centred on the origin.
func NewGround() *Ground {
	return &Ground{
		Outline: []mgl32.Vec3{
			{10, 10, 0},
			{-10, 10, 0},
			{10, -10, 0},
			{-10, -10, 0},
		},
	}
}

// AddZone appends a zone.
func (g *Ground) AddZone(z *Zone) {
	g.Zones = append(g.Zones, z)
}

// AddRoad appends a road.
func (g *Ground) AddRoad(r *Road) {
	g.Roads = append(g.Roads, r)
}

// FindArea looks a parcel up by id across every zone.
//
// Parameters:
//   - id: the parcel id
//
// Returns:
//   - *Area: the parcel
//   - error: error if no zone holds the id
func (g *Ground) FindArea(id string) (*Area, error) {
	for _, z := range g.Zones {
		for _, a := range z.Areas {
			if a.ID == id {
				return a, nil
			}
		}
	}
	return nil, fmt.Errorf("area %s not found", id)
}

// Buildings returns every placed building in zone then parcel order.
func (g *Ground) Buildings() []*Building {
	var out []*Building
	for _, z := range g.Zones {
		for _, a := range z.Areas {
			if a.Building != nil {
				out = append(out, a.Building)
			}
		}
	}
	return out
}

// NewSite lays out the default site around a building: one zone covering the ground, one
// parcel sized to the building's FAR boundary holding the building, and a public road along
// the parcel's front edge.
//
// Parameters:
//   - b: the building to place
//
// Returns:
//   - *Ground: the site
//   - *Area: the parcel holding the building
func NewSite(b Building) (*Ground, *Area) {
	g := NewGround()
	zone := NewZone("", g.Outline...)

	half := max(b.BoundarySide(), Footprint) / 2
	c := b.Position
	area := NewArea(
		c.Add(mgl32.Vec3{-half, 0, -half}),
		c.Add(mgl32.Vec3{half, 0, -half}),
		c.Add(mgl32.Vec3{half, 0, half}),
		c.Add(mgl32.Vec3{-half, 0, half}),
	)
	road := NewRoad(PublicRoad, 6, c.Add(mgl32.Vec3{-half, 0, half + 3}), c.Add(mgl32.Vec3{half, 0, half + 3}))
	area.AdjacentRoads = append(area.AdjacentRoads, road)
	area.Place(&b)

	zone.AddArea(area)
	zone.AddRoad(road)
	g.AddZone(zone)
	g.AddRoad(road)
	return g, area
}
