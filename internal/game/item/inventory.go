package item

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInventoryFull is returned when an item does not fit.
var ErrInventoryFull = errors.New("inventory full")

// Instance is one concrete stack of an item.
type Instance struct {
	InstanceID string `json:"instance_id"`
	ItemDefID  string `json:"item_def_id"`
	Quantity   int    `json:"quantity"`
}

// Inventory is a slot-limited container owned by one character.
type Inventory struct {
	MaxSlots int
	items    []Instance
}

// NewInventory creates an empty Inventory with maxSlots slots.
//
// Precondition: maxSlots >= 0.
func NewInventory(maxSlots int) *Inventory {
	return &Inventory{MaxSlots: maxSlots}
}

// Add places quantity units of def into the inventory, topping up existing
// stacks first for stackable items. It is atomic: if the items do not fit, no
// state is modified.
//
// Precondition: def is non-nil; quantity > 0.
// Postcondition: on error the inventory is unchanged.
func (inv *Inventory) Add(def *Def, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("adding %q: quantity must be > 0", def.ID)
	}
	if !def.Stackable {
		if len(inv.items)+quantity > inv.MaxSlots {
			return fmt.Errorf("adding %d of %q: %w", quantity, def.ID, ErrInventoryFull)
		}
		for i := 0; i < quantity; i++ {
			inv.items = append(inv.items, Instance{InstanceID: uuid.NewString(), ItemDefID: def.ID, Quantity: 1})
		}
		return nil
	}

	// Phase 1: plan merges into existing stacks and count new slots.
	remaining := quantity
	room := make(map[int]int)
	for i := range inv.items {
		if remaining == 0 {
			break
		}
		if inv.items[i].ItemDefID != def.ID || inv.items[i].Quantity >= def.MaxStack {
			continue
		}
		take := min(remaining, def.MaxStack-inv.items[i].Quantity)
		room[i] = take
		remaining -= take
	}
	newSlots := (remaining + def.MaxStack - 1) / def.MaxStack
	if len(inv.items)+newSlots > inv.MaxSlots {
		return fmt.Errorf("adding %d of %q: %w", quantity, def.ID, ErrInventoryFull)
	}

	// Phase 2: apply.
	for i, take := range room {
		inv.items[i].Quantity += take
	}
	for remaining > 0 {
		q := min(remaining, def.MaxStack)
		inv.items = append(inv.items, Instance{InstanceID: uuid.NewString(), ItemDefID: def.ID, Quantity: q})
		remaining -= q
	}
	return nil
}

// Put stores an already-identified instance, such as a loot drop, as its own stack.
//
// Postcondition: on error the inventory is unchanged.
func (inv *Inventory) Put(inst Instance) error {
	if inst.Quantity <= 0 {
		return fmt.Errorf("putting %q: quantity must be > 0", inst.ItemDefID)
	}
	if len(inv.items)+1 > inv.MaxSlots {
		return fmt.Errorf("putting %q: %w", inst.ItemDefID, ErrInventoryFull)
	}
	if inst.InstanceID == "" {
		inst.InstanceID = uuid.NewString()
	}
	inv.items = append(inv.items, inst)
	return nil
}

// Remove removes quantity units from the instance identified by instanceID.
//
// Precondition: 0 < quantity <= instance quantity.
// Postcondition: the instance is dropped when its quantity reaches zero.
func (inv *Inventory) Remove(instanceID string, quantity int) error {
	for i := range inv.items {
		if inv.items[i].InstanceID != instanceID {
			continue
		}
		if quantity <= 0 || quantity > inv.items[i].Quantity {
			return fmt.Errorf("cannot remove %d from instance with quantity %d", quantity, inv.items[i].Quantity)
		}
		if quantity == inv.items[i].Quantity {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
		} else {
			inv.items[i].Quantity -= quantity
		}
		return nil
	}
	return fmt.Errorf("instance %q not found", instanceID)
}

// Items returns a copy of every stack.
func (inv *Inventory) Items() []Instance {
	out := make([]Instance, len(inv.items))
	copy(out, inv.items)
	return out
}

// Count returns the total quantity held of itemDefID.
func (inv *Inventory) Count(itemDefID string) int {
	n := 0
	for _, it := range inv.items {
		if it.ItemDefID == itemDefID {
			n += it.Quantity
		}
	}
	return n
}

// UsedSlots returns the number of occupied slots.
func (inv *Inventory) UsedSlots() int { return len(inv.items) }
