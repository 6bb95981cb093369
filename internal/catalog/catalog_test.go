package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceOfKnownFlavours(t *testing.T) {
	cases := map[string]int64{
		"Vanilla":     150,
		"21 Love":     180,
		"Pista Kulfi": 220,
		"Mango Kulfi": 210,
	}
	for name, want := range cases {
		if got := PriceOf(name); !got.Equal(decimal.NewFromInt(want)) {
			t.Errorf("PriceOf(%q) = %s, want %d", name, got, want)
		}
	}
}

func TestPriceOfUnknownFlavourIsZero(t *testing.T) {
	if got := PriceOf("Bubblegum"); !got.IsZero() {
		t.Fatalf("expected zero for unknown flavour, got %s", got)
	}
	if got := PriceOf(""); !got.IsZero() {
		t.Fatalf("expected zero for empty name, got %s", got)
	}
}

func TestCategoriesOrderAndContents(t *testing.T) {
	cats := Categories()
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Name != "Ice-Cream" || cats[1].Name != "Kulfi" {
		t.Fatalf("unexpected category order: %s, %s", cats[0].Name, cats[1].Name)
	}
	if len(cats[0].Items) != 4 || len(cats[1].Items) != 7 {
		t.Fatalf("unexpected item counts: %d, %d", len(cats[0].Items), len(cats[1].Items))
	}
	if cats[0].Items[0].Name != "Vanilla" {
		t.Fatalf("expected Vanilla first, got %s", cats[0].Items[0].Name)
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cats := Categories()
	cats[0].Items[0].Name = "Mutated"
	if Categories()[0].Items[0].Name != "Vanilla" {
		t.Fatal("Categories exposed internal state")
	}
}

func TestHas(t *testing.T) {
	if !Has("Blueberry Kulfi") {
		t.Fatal("expected Blueberry Kulfi in catalog")
	}
	if Has("Rum Raisin") {
		t.Fatal("did not expect Rum Raisin in catalog")
	}
}
