// Package catalog holds the static flavour catalog. It is configuration,
// not data: prices never change at runtime, and lookups are pure.
package catalog

import "github.com/shopspring/decimal"

// Item is one purchasable flavour.
type Item struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// Category groups items for display. Declaration order is display order.
type Category struct {
	Name  string `json:"category"`
	Items []Item `json:"items"`
}

var categories = []Category{
	{
		Name: "Ice-Cream",
		Items: []Item{
			item("Vanilla", "Ice-Cream", 150),
			item("21 Love", "Ice-Cream", 180),
			item("Strawberry", "Ice-Cream", 160),
			item("Chocolate", "Ice-Cream", 170),
		},
	},
	{
		Name: "Kulfi",
		Items: []Item{
			item("Vanilla Kulfi", "Kulfi", 200),
			item("Pista Kulfi", "Kulfi", 220),
			item("Chocolate Kulfi", "Kulfi", 210),
			item("Strawberry Kulfi", "Kulfi", 200),
			item("Blueberry Kulfi", "Kulfi", 220),
			item("Mango Kulfi", "Kulfi", 210),
			item("Orange Kulfi", "Kulfi", 200),
		},
	},
}

func item(name, category string, price int64) Item {
	return Item{Name: name, Category: category, Price: decimal.NewFromInt(price)}
}

// Categories returns the catalog in display order. The result shares no
// backing arrays with the internal data, so callers may reorder it.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		items := make([]Item, len(c.Items))
		copy(items, c.Items)
		out[i] = Category{Name: c.Name, Items: items}
	}
	return out
}

// Items returns every item across all categories in display order.
func Items() []Item {
	var all []Item
	for _, c := range categories {
		all = append(all, c.Items...)
	}
	return all
}

// PriceOf returns the unit price for a flavour name, or zero when the name
// is unknown. It never fails: an unknown flavour simply prices at zero.
func PriceOf(name string) decimal.Decimal {
	for _, c := range categories {
		for _, it := range c.Items {
			if it.Name == name {
				return it.Price
			}
		}
	}
	return decimal.Zero
}

// Has reports whether the catalog contains the named flavour.
func Has(name string) bool {
	for _, c := range categories {
		for _, it := range c.Items {
			if it.Name == name {
				return true
			}
		}
	}
	return false
}
