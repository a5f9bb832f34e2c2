// internal/authz/registry_test.go
package authz

import "testing"

func TestRegistry_Accumulates(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	register("Stock", "GET", "Can view Stock")
	register("Stock", "POST", "Can create Stock")
	register("Product", "GET", "Can view Product")

	cat := Catalog()
	if len(cat) != 2 {
		t.Fatalf("modules = %d, want 2", len(cat))
	}
	if got := len(cat["Stock"]); got != 2 {
		t.Fatalf("Stock actions = %d, want 2", got)
	}
	if cat["Product"][0].Name != "Can view Product" {
		t.Fatalf("Product entry = %+v", cat["Product"][0])
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	register("Stock", "GET", "Can view Stock")

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration should panic")
		}
	}()
	register("Stock", "GET", "Can view Stock again")
}

func TestRegistry_CatalogIsACopy(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	register("Stock", "GET", "Can view Stock")

	cat := Catalog()
	cat["Stock"][0].Name = "mutated"
	delete(cat, "Stock")

	fresh := Catalog()
	if fresh["Stock"][0].Name != "Can view Stock" {
		t.Fatal("Catalog must return an independent copy")
	}
}
