// Package loot holds loot table definitions and the generator that rolls them
// when a monster dies.
package loot

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/item"
)

// chanceResolution is the granularity of drop-chance rolls.
const chanceResolution = 10000

// CurrencyDrop defines the range of gold a monster can drop on death.
type CurrencyDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ItemDrop defines a single item entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// Table defines the possible drops for a monster template.
type Table struct {
	Currency *CurrencyDrop `yaml:"currency"`
	Items    []ItemDrop    `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff all currency and item constraints hold;
// an empty loot table is valid.
func (t *Table) Validate() error {
	if t.Currency != nil {
		if t.Currency.Min < 0 {
			return fmt.Errorf("loot table: currency min must be >= 0, got %d", t.Currency.Min)
		}
		if t.Currency.Min > t.Currency.Max {
			return fmt.Errorf("loot table: currency min (%d) must be <= max (%d)", t.Currency.Min, t.Currency.Max)
		}
	}
	for i, it := range t.Items {
		if it.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if it.Chance <= 0 || it.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, it.Chance)
		}
		if it.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, it.MinQty)
		}
		if it.MinQty > it.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, it.MinQty, it.MaxQty)
		}
	}
	return nil
}

// CheckItems reports the first drop whose item id is not in reg.
func (t *Table) CheckItems(reg *item.Registry) error {
	for i, it := range t.Items {
		if _, ok := reg.Get(it.ItemID); !ok {
			return fmt.Errorf("loot table: item[%d] references unknown item %q", i, it.ItemID)
		}
	}
	return nil
}

// Result holds the generated loot from a single kill.
type Result struct {
	Currency int
	Items    []item.Instance
}

// Generator rolls loot tables.
type Generator struct {
	src    dice.Source
	logger *zap.Logger
}

// NewGenerator creates a Generator that draws randomness from src.
//
// Precondition: src and logger must be non-nil.
func NewGenerator(src dice.Source, logger *zap.Logger) *Generator {
	return &Generator{src: src, logger: logger}
}

// Generate rolls t. A nil table yields an empty Result.
//
// Precondition: t must have passed Validate.
// Postcondition: Currency is in [Currency.Min, Currency.Max] if currency is set;
// each item's Quantity is in [MinQty, MaxQty] for items that pass the chance roll,
// and each carries a fresh instance id.
func (g *Generator) Generate(t *Table) Result {
	var result Result
	if t == nil {
		return result
	}
	if t.Currency != nil && t.Currency.Max > 0 {
		result.Currency = dice.Range(g.src, t.Currency.Min, t.Currency.Max)
	}
	for _, it := range t.Items {
		if g.src.Intn(chanceResolution) >= int(it.Chance*chanceResolution) {
			continue
		}
		result.Items = append(result.Items, item.Instance{
			InstanceID: uuid.New().String(),
			ItemDefID:  it.ItemID,
			Quantity:   dice.Range(g.src, it.MinQty, it.MaxQty),
		})
	}
	g.logger.Debug("loot generated",
		zap.Int("currency", result.Currency),
		zap.Int("items", len(result.Items)),
	)
	return result
}
