package game

import (
	"fmt"
	"math/rand"

	"github.com/maelmnr/Triangle-game/internal/catalog"
	"github.com/maelmnr/Triangle-game/internal/geometry"
)

// Difficulty selects the triangle generator's constraints. Harder tiers
// shrink the geographic spread and draw lower-population vertex cities.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty string from the API.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

type tierParams struct {
	minPairKm    float64
	maxPairKm    float64
	minVertexPop int
	maxVertexPop int
}

var tiers = map[Difficulty]tierParams{
	DifficultyEasy:   {minPairKm: 800, maxPairKm: 6000, minVertexPop: 1_000_000},
	DifficultyMedium: {minPairKm: 400, maxPairKm: 2500, minVertexPop: 250_000},
	DifficultyHard:   {minPairKm: 150, maxPairKm: 1200, minVertexPop: 50_000, maxVertexPop: 1_000_000},
}

// Triangle is the round boundary: three vertex cities plus the projection
// used for all containment tests in this round.
type Triangle struct {
	Vertices [3]catalog.City

	proj   *geometry.Projector
	planar [3]geometry.Planar
}

// NewTriangle builds a triangle from three cities, rejecting degenerate
// (collinear or duplicate) vertex sets.
func NewTriangle(vertices [3]catalog.City) (Triangle, error) {
	pts := [3]geometry.Point{
		{Lat: vertices[0].Lat, Lng: vertices[0].Lng},
		{Lat: vertices[1].Lat, Lng: vertices[1].Lng},
		{Lat: vertices[2].Lat, Lng: vertices[2].Lng},
	}
	proj := geometry.NewProjector(geometry.Centroid(pts[0], pts[1], pts[2]))
	planar := [3]geometry.Planar{proj.Project(pts[0]), proj.Project(pts[1]), proj.Project(pts[2])}

	if geometry.Collinear(planar[0], planar[1], planar[2], geometry.DefaultEpsilon) {
		return Triangle{}, fmt.Errorf("vertices %s, %s, %s are collinear: %w",
			vertices[0].Name, vertices[1].Name, vertices[2].Name, ErrGeneration)
	}

	return Triangle{Vertices: vertices, proj: proj, planar: planar}, nil
}

// Contains reports whether the city's coordinate lies inside the triangle.
// Points on an edge count as inside.
func (t Triangle) Contains(c catalog.City) bool {
	p := t.proj.Project(geometry.Point{Lat: c.Lat, Lng: c.Lng})
	return geometry.ContainsPoint(t.planar, p, geometry.DefaultEpsilon)
}

const (
	defaultMaxAttempts = 128
	pairAttempts       = 16
)

// Generator samples triangles from the catalog under tier constraints.
type Generator struct {
	catalog     *catalog.Catalog
	rng         *rand.Rand
	maxAttempts int
}

// NewGenerator returns a generator drawing from cat with the given source of
// randomness. The rng is not synchronized; callers own it.
func NewGenerator(cat *catalog.Catalog, rng *rand.Rand) *Generator {
	return &Generator{catalog: cat, rng: rng, maxAttempts: defaultMaxAttempts}
}

// Generate picks three cities satisfying the tier's pairwise distance band
// and non-collinearity, optionally restricted to a region. Returns
// ErrGeneration when the attempt budget runs out, which signals that the
// catalog is too sparse for the requested tier/region.
func (g *Generator) Generate(tier Difficulty, region string) (Triangle, error) {
	params, ok := tiers[tier]
	if !ok {
		return Triangle{}, fmt.Errorf("unknown difficulty %q", tier)
	}
	filter := catalog.Filter{
		Region:        region,
		MinPopulation: params.minVertexPop,
		MaxPopulation: params.maxVertexPop,
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		tri, ok := g.sampleOnce(filter, params)
		if !ok {
			continue
		}
		return tri, nil
	}

	return Triangle{}, fmt.Errorf("tier %s, region %q: %w", tier, region, ErrGeneration)
}

// sampleOnce anchors on a random first vertex, then draws the remaining two
// conditioned on the distance band. Retrying only the later vertices keeps
// tight bands (hard tier) feasible even on a globally scattered catalog.
func (g *Generator) sampleOnce(filter catalog.Filter, params tierParams) (Triangle, bool) {
	var picked [3]catalog.City
	first, ok := g.catalog.Sample(g.rng, filter)
	if !ok {
		return Triangle{}, false
	}
	picked[0] = first

	for i := 1; i < 3; i++ {
		found := false
		for try := 0; try < pairAttempts; try++ {
			city, ok := g.catalog.Sample(g.rng, filter)
			if !ok {
				return Triangle{}, false
			}
			if fitsBand(city, picked[:i], params) {
				picked[i] = city
				found = true
				break
			}
		}
		if !found {
			return Triangle{}, false
		}
	}

	tri, err := NewTriangle(picked)
	if err != nil {
		return Triangle{}, false
	}
	return tri, true
}

func fitsBand(city catalog.City, chosen []catalog.City, params tierParams) bool {
	for _, other := range chosen {
		if other.Name == city.Name {
			return false
		}
		d := geometry.Haversine(
			geometry.Point{Lat: city.Lat, Lng: city.Lng},
			geometry.Point{Lat: other.Lat, Lng: other.Lng},
		)
		if d < params.minPairKm || d > params.maxPairKm {
			return false
		}
	}
	return true
}
