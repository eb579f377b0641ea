package template

import "testing"

func TestCatalogReturnsIndependentCopies(t *testing.T) {
	tpl, ok := ByID("personal-monthly")
	if !ok {
		t.Fatal("personal-monthly should exist")
	}

	tpl.Name = "mutated"
	tpl.Categories[0].Name = "mutated"
	tpl.Transactions[0].Description = "mutated"

	fresh, ok := ByID("personal-monthly")
	if !ok {
		t.Fatal("personal-monthly should exist")
	}
	if fresh.Name == "mutated" {
		t.Error("mutating a returned template changed the catalog name")
	}
	if fresh.Categories[0].Name == "mutated" {
		t.Error("mutating a returned template changed a catalog category")
	}
	if fresh.Transactions[0].Description == "mutated" {
		t.Error("mutating a returned template changed a catalog transaction")
	}

	list := Catalog()
	list[0].Categories[0].Name = "mutated"
	if again := Catalog(); again[0].Categories[0].Name == "mutated" {
		t.Error("mutating a listed template changed a catalog category")
	}
}
