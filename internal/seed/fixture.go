package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is a demo catalog. Rows refer to each other by name and numbers are
// written as text, the way they are typed into the forms.
type Fixture struct {
	Suppliers []FixtureSupplier `yaml:"suppliers"`
	Inventory []FixtureItem     `yaml:"inventory"`
	Recipes   []FixtureRecipe   `yaml:"recipes"`
	Dishes    []FixtureDish     `yaml:"dishes"`
}

type FixtureSupplier struct {
	Name    string `yaml:"name"`
	Contact string `yaml:"contact"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
}

type FixtureItem struct {
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	Quantity     string `yaml:"quantity"`
	Size         string `yaml:"size"`
	Unit         string `yaml:"unit"`
	PricePerUnit string `yaml:"price_per_unit"`
	PricePerPack string `yaml:"price_per_pack"`
	Supplier     string `yaml:"supplier"`
}

type FixtureLine struct {
	Item     string `yaml:"item"`
	Recipe   string `yaml:"recipe"`
	Quantity string `yaml:"quantity"`
	Unit     string `yaml:"unit"`
}

type FixtureRecipe struct {
	Name        string        `yaml:"name"`
	BatchSize   string        `yaml:"batch_size"`
	BatchUnit   string        `yaml:"batch_unit"`
	Units       *int          `yaml:"units"`
	Ingredients []FixtureLine `yaml:"ingredients"`
}

type FixtureDish struct {
	Name        string        `yaml:"name"`
	SellPrice   string        `yaml:"sell_price"`
	Ingredients []FixtureLine `yaml:"ingredients"`
}

// LoadFixture reads a YAML catalog fixture.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed catalog: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed catalog %s: %w", path, err)
	}
	return &f, nil
}
