// Package catalog holds the price list sold at the register.
// Entries are either a single Item or a named group of Items; there is no deeper nesting.
package catalog

import (
	"fmt"

	"github.com/register-pos/internal/domain/shared"
)

// Item is a sellable line with a yen price
type Item struct {
	Name  string `json:"name" bson:"name"`
	Price int64  `json:"price" bson:"price"`
}

// Kind tags the shape of an Entry
type Kind int

const (
	KindLeaf Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Entry is either Leaf(Item) or Group(name -> Item)
type Entry struct {
	kind        Kind
	item        Item
	customPrice bool
	names       []string
	members     map[string]Item
}

// Leaf builds a fixed-price leaf entry
func Leaf(item Item) Entry {
	return Entry{kind: KindLeaf, item: item}
}

// CustomPriceLeaf builds a leaf whose price is supplied by the cashier
func CustomPriceLeaf(name string) Entry {
	return Entry{kind: KindLeaf, item: Item{Name: name}, customPrice: true}
}

// Member is a named Item inside a group
type Member struct {
	Key  string
	Item Item
}

// Group builds a group entry. Member order is kept for display.
func Group(members ...Member) Entry {
	e := Entry{kind: KindGroup, members: make(map[string]Item, len(members))}
	for _, m := range members {
		if _, dup := e.members[m.Key]; !dup {
			e.names = append(e.names, m.Key)
		}
		e.members[m.Key] = m.Item
	}
	return e
}

func (e Entry) Kind() Kind { return e.kind }

// Item returns the leaf item; ok is false for groups
func (e Entry) Item() (Item, bool) {
	if e.kind != KindLeaf {
		return Item{}, false
	}
	return e.item, true
}

// CustomPrice reports whether the leaf needs a caller-supplied price
func (e Entry) CustomPrice() bool { return e.kind == KindLeaf && e.customPrice }

// Members returns the group's sub-item keys in insertion order
func (e Entry) Members() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Member looks up a sub-item of a group
func (e Entry) Member(key string) (Item, bool) {
	if e.kind != KindGroup {
		return Item{}, false
	}
	item, ok := e.members[key]
	return item, ok
}

// Catalog is an ordered, read-only set of entries keyed by category name
type Catalog struct {
	order   []string
	entries map[string]Entry
}

// Category pairs a name with its entry for construction
type Category struct {
	Name  string
	Entry Entry
}

// New builds a catalog from categories. A repeated name replaces the earlier entry.
func New(categories ...Category) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(categories))}
	for _, cat := range categories {
		if _, dup := c.entries[cat.Name]; !dup {
			c.order = append(c.order, cat.Name)
		}
		c.entries[cat.Name] = cat.Entry
	}
	return c
}

// Flat builds a one-tier catalog where every item is its own category
func Flat(items ...Item) *Catalog {
	cats := make([]Category, 0, len(items))
	for _, item := range items {
		cats = append(cats, Category{Name: item.Name, Entry: Leaf(item)})
	}
	return New(cats...)
}

// Categories returns the category names in display order
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Entry returns the entry stored under category
func (c *Catalog) Entry(category string) (Entry, bool) {
	e, ok := c.entries[category]
	return e, ok
}

// Lookup resolves a leaf by category alone or a group member by category and sub-item.
// The catalog price is returned as-is; custom-price leaves resolve to 0.
func (c *Catalog) Lookup(category, subItem string) (Item, bool) {
	e, ok := c.entries[category]
	if !ok {
		return Item{}, false
	}
	switch e.kind {
	case KindLeaf:
		if subItem != "" {
			return Item{}, false
		}
		return e.item, true
	case KindGroup:
		return e.Member(subItem)
	}
	return Item{}, false
}

// Selection is what the cashier picked for one line
type Selection struct {
	Category    string `json:"category"`
	SubItem     string `json:"sub_item,omitempty"`
	CustomPrice int64  `json:"custom_price,omitempty"`
}

// Resolve turns a selection into the Item to append. A group member is named by
// the key the cashier picked. Every rejection is a shared.ValidationError.
func (c *Catalog) Resolve(sel Selection) (Item, error) {
	if sel.Category == "" {
		return Item{}, shared.NewValidationError("category", "no category selected")
	}
	e, ok := c.entries[sel.Category]
	if !ok {
		return Item{}, shared.NewValidationError("category", fmt.Sprintf("unknown category %q", sel.Category))
	}

	switch e.kind {
	case KindGroup:
		if sel.SubItem == "" {
			return Item{}, shared.NewValidationError("sub_item", fmt.Sprintf("category %q requires a sub-item", sel.Category))
		}
		item, ok := e.members[sel.SubItem]
		if !ok {
			return Item{}, shared.NewValidationError("sub_item", fmt.Sprintf("unknown sub-item %q in %q", sel.SubItem, sel.Category))
		}
		return Item{Name: sel.SubItem, Price: item.Price}, nil
	case KindLeaf:
		if e.customPrice {
			if sel.CustomPrice <= 0 {
				return Item{}, shared.NewValidationError("custom_price", "must be greater than 0")
			}
			return Item{Name: e.item.Name, Price: sel.CustomPrice}, nil
		}
		return e.item, nil
	}
	return Item{}, shared.NewValidationError("category", fmt.Sprintf("category %q has no items", sel.Category))
}
