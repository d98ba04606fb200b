package catalog

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

const testCSV = `name,country,region,lat,lng,population
Paris,France,europe,48.8566,2.3522,2140526
Lyon,France,europe,45.7640,4.8357,522969
Berlin,Germany,europe,52.5200,13.4050,3644826
Nairobi,Kenya,africa,-1.2921,36.8219,4397073
Kigali,Rwanda,africa,-1.9441,30.0619,1132686
`

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("loading test dataset: %v", err)
	}
	return c
}

func TestLookup(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		query    string
		wantName string
		wantErr  bool
	}{
		{"Paris", "Paris", false},
		{"paris", "Paris", false},
		{"  LYON  ", "Lyon", false},
		{"Berlin, Germany", "Berlin", false},
		{"Atlantis", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			city, err := c.Lookup(tt.query)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCity) {
					t.Fatalf("Lookup(%q) error = %v, want ErrUnknownCity", tt.query, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tt.query, err)
			}
			if city.Name != tt.wantName {
				t.Errorf("Lookup(%q) = %q, want %q", tt.query, city.Name, tt.wantName)
			}
		})
	}
}

func TestSampleRespectsFilter(t *testing.T) {
	c := testCatalog(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		city, ok := c.Sample(rng, Filter{Region: "africa"})
		if !ok {
			t.Fatal("Sample returned no city for africa")
		}
		if city.Region != "africa" {
			t.Fatalf("Sample returned %q from region %q", city.Name, city.Region)
		}
	}

	for i := 0; i < 50; i++ {
		city, ok := c.Sample(rng, Filter{MinPopulation: 1_000_000, MaxPopulation: 3_000_000})
		if !ok {
			t.Fatal("Sample returned no city for population band")
		}
		if city.Population < 1_000_000 || city.Population > 3_000_000 {
			t.Fatalf("Sample returned %q with population %d", city.Name, city.Population)
		}
	}
}

func TestSampleNoMatch(t *testing.T) {
	c := testCatalog(t)
	rng := rand.New(rand.NewSource(1))

	if _, ok := c.Sample(rng, Filter{Region: "oceania"}); ok {
		t.Error("Sample found a city in an empty region")
	}
	if _, ok := c.Sample(rng, Filter{MinPopulation: 100_000_000}); ok {
		t.Error("Sample found a city above the population floor")
	}
}

func TestEmbeddedDataset(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("loading embedded dataset: %v", err)
	}
	if c.Size() < 200 {
		t.Errorf("embedded dataset has %d cities, want at least 200", c.Size())
	}

	// Spot-check a few entries the generator and tests rely on.
	for _, name := range []string{"Tokyo", "Lagos", "Berlin", "Lima", "Sydney"} {
		if _, err := c.Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load(strings.NewReader("name,country,region,lat,lng,population\nX,Y,europe,abc,0,0\n")); err == nil {
		t.Error("Load accepted a non-numeric latitude")
	}
	if _, err := Load(strings.NewReader("")); err == nil {
		t.Error("Load accepted an empty dataset")
	}
}
