// Package catalog wraps the embedded city dataset: immutable reference data
// with name, country, region, coordinates, and population. It backs both the
// guess lookup and the triangle generator's sampling.
package catalog

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

//go:embed cities.csv
var dataFS embed.FS

// ErrUnknownCity is returned when a lookup doesn't match any city in the
// dataset. Surfaced to the player as "not recognized"; the guess does not
// consume a turn.
var ErrUnknownCity = errors.New("city not recognized")

// City is one row of the dataset.
type City struct {
	Name       string
	Country    string
	Region     string
	Lat        float64
	Lng        float64
	Population int
}

// Filter narrows Sample to a subset of the dataset. Zero values mean
// unconstrained.
type Filter struct {
	Region        string
	MinPopulation int
	MaxPopulation int
}

func (f Filter) matches(c City) bool {
	if f.Region != "" && c.Region != f.Region {
		return false
	}
	if f.MinPopulation > 0 && c.Population < f.MinPopulation {
		return false
	}
	if f.MaxPopulation > 0 && c.Population > f.MaxPopulation {
		return false
	}
	return true
}

// Catalog holds the parsed dataset with a case-insensitive name index.
type Catalog struct {
	cities []City
	byName map[string]int
}

// New loads the embedded dataset.
func New() (*Catalog, error) {
	f, err := dataFS.Open("cities.csv")
	if err != nil {
		return nil, fmt.Errorf("opening embedded dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a CSV dataset with columns name,country,region,lat,lng,population.
// A header row is skipped if present.
func Load(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	c := &Catalog{byName: make(map[string]int)}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %w", err)
		}
		line++
		if line == 1 && rec[0] == "name" {
			continue
		}

		lat, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing latitude: %w", line, err)
		}
		lng, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing longitude: %w", line, err)
		}
		pop, err := strconv.Atoi(rec[5])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing population: %w", line, err)
		}

		city := City{
			Name:       rec[0],
			Country:    rec[1],
			Region:     rec[2],
			Lat:        lat,
			Lng:        lng,
			Population: pop,
		}
		c.byName[normalize(city.Name)] = len(c.cities)
		c.cities = append(c.cities, city)
	}

	if len(c.cities) == 0 {
		return nil, errors.New("dataset is empty")
	}
	return c, nil
}

// normalize lowercases a query and keeps only the segment before the first
// comma, so "Lyon, France" matches "Lyon".
func normalize(name string) string {
	name, _, _ = strings.Cut(name, ",")
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds a city by name, case-insensitively. A trailing
// ", Country" qualifier is tolerated and ignored.
func (c *Catalog) Lookup(name string) (City, error) {
	i, ok := c.byName[normalize(name)]
	if !ok {
		return City{}, fmt.Errorf("%q: %w", name, ErrUnknownCity)
	}
	return c.cities[i], nil
}

// Sample draws one city uniformly from those matching f. ok is false when
// nothing matches.
func (c *Catalog) Sample(rng *rand.Rand, f Filter) (City, bool) {
	// Reservoir of one; avoids materializing the filtered subset.
	var picked City
	n := 0
	for _, city := range c.cities {
		if !f.matches(city) {
			continue
		}
		n++
		if rng.Intn(n) == 0 {
			picked = city
		}
	}
	return picked, n > 0
}

// Size returns the number of cities in the dataset.
func (c *Catalog) Size() int { return len(c.cities) }
