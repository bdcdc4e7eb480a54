package pakgo_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hupe1980/pakgo"
	"github.com/hupe1980/pakgo/blobstore"
	"github.com/hupe1980/pakgo/query"
	"github.com/hupe1980/pakgo/value"
)

// Product is indexed by brand and price.
type Product struct {
	SKU   string `json:"sku"`
	Brand string `json:"brand"`
	Price int64  `json:"price"`
}

func (p Product) PakIndices() []pakgo.Attribute {
	return []pakgo.Attribute{
		{Key: "brand", Value: value.String(p.Brand)},
		{Key: "price", Value: value.Int(p.Price)},
	}
}

// Example_buildAndQuery demonstrates packing records and querying them back.
func Example_buildAndQuery() {
	ctx := context.Background()

	b := pakgo.NewBuilder()
	for _, p := range []Product{
		{SKU: "acme-1", Brand: "acme", Price: 999},
		{SKU: "acme-2", Brand: "acme", Price: 1999},
		{SKU: "globex-1", Brand: "globex", Price: 499},
	} {
		if _, err := b.Pak(p); err != nil {
			log.Fatal(err)
		}
	}

	r, err := b.FinalizeToMemory()
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// All acme products under 1500
	q := query.Equals("brand", value.String("acme")).
		And(query.LessThan("price", value.Int(1500)))

	hits, err := pakgo.QueryAs[Product](ctx, r, q)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range hits {
		fmt.Println(p.SKU)
	}
	// Output: acme-1
}

// Example_get demonstrates direct retrieval by pointer.
func Example_get() {
	b := pakgo.NewBuilder()
	ptr, err := b.Pak(Product{SKU: "acme-1", Brand: "acme", Price: 999})
	if err != nil {
		log.Fatal(err)
	}

	r, err := b.FinalizeToMemory()
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	p, err := pakgo.Get[Product](r, ptr)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s costs %d\n", p.SKU, p.Price)
	// Output: acme-1 costs 999
}

// Example_rangeQuery demonstrates combining predicates with Or.
func Example_rangeQuery() {
	ctx := context.Background()

	b := pakgo.NewBuilder()
	for _, p := range []Product{
		{SKU: "acme-1", Brand: "acme", Price: 999},
		{SKU: "acme-2", Brand: "acme", Price: 1999},
		{SKU: "globex-1", Brand: "globex", Price: 499},
	} {
		if _, err := b.Pak(p); err != nil {
			log.Fatal(err)
		}
	}

	r, err := b.FinalizeToMemory()
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Budget picks or anything from globex; a record matching both legs
	// still shows up exactly once.
	q := query.LessThanOrEqual("price", value.Int(999)).
		Or(query.Equals("brand", value.String("globex")))

	hits, err := pakgo.QueryAs[Product](ctx, r, q)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range hits {
		fmt.Println(p.SKU)
	}
	// Output:
	// acme-1
	// globex-1
}

// Example_meta demonstrates attaching and reading artifact metadata.
func Example_meta() {
	b := pakgo.NewBuilder()
	if err := b.SetMeta(pakgo.Meta{Name: "catalog", Version: "1.0.0"}); err != nil {
		log.Fatal(err)
	}
	if _, err := b.Pak(Product{SKU: "acme-1", Brand: "acme", Price: 999}); err != nil {
		log.Fatal(err)
	}

	r, err := b.FinalizeToMemory()
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	m, err := r.Meta()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s v%s, %d record(s)\n", m.Name, m.Version, r.Count())
	// Output: catalog v1.0.0, 1 record(s)
}

// Example_file demonstrates publishing an artifact to disk and reopening it.
func Example_file() {
	path := "./example_catalog.pak"
	defer os.Remove(path) // Cleanup after example

	b := pakgo.NewBuilder()
	if _, err := b.Pak(Product{SKU: "acme-1", Brand: "acme", Price: 999}); err != nil {
		log.Fatal(err)
	}

	r, err := b.FinalizeToFile(path)
	if err != nil {
		log.Fatal(err)
	}
	r.Close()

	// Reopen memory-mapped.
	r, err = pakgo.OpenFile(path)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	fmt.Println(r.Keys())
	// Output: [brand price]
}

// Example_store demonstrates publishing to a blob store and reading it back.
func Example_store() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	b := pakgo.NewBuilder()
	if _, err := b.Pak(Product{SKU: "acme-1", Brand: "acme", Price: 999}); err != nil {
		log.Fatal(err)
	}

	r, err := b.FinalizeToStore(ctx, store, "catalog/2024.pak")
	if err != nil {
		log.Fatal(err)
	}
	r.Close()

	r, err = pakgo.OpenStore(ctx, store, "catalog/2024.pak")
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	fmt.Printf("%s holds %d record\n", r.Source(), r.Count())
	// Output: catalog/2024.pak holds 1 record
}
