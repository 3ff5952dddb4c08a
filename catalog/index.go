package catalog

import "iter"

// The hierarchy index: pure lookups and flattenings over a loaded document.
// Lookups are O(depth) scans in document order; flattenings are lazy,
// restartable sequences that never mutate the source.

// FindDistrict returns the district with the given id, or nil.
func (d *Document) FindDistrict(id string) *District {
	for i := range d.Districts {
		if d.Districts[i].DistrictID == id {
			return &d.Districts[i]
		}
	}
	return nil
}

// FindStore returns the store with the given id along with its owning
// district, or nil, nil. The owning district is returned so callers can
// cascade or re-link without a second scan.
func (d *Document) FindStore(id string) (*District, *Store) {
	for i := range d.Districts {
		dist := &d.Districts[i]
		for j := range dist.Stores {
			if dist.Stores[j].StoreID == id {
				return dist, &dist.Stores[j]
			}
		}
	}
	return nil, nil
}

// FindProduct returns the product with the given item identifier along with
// its owning store and district, or nil, nil, nil.
func (d *Document) FindProduct(item string) (*District, *Store, *Product) {
	for i := range d.Districts {
		dist := &d.Districts[i]
		for j := range dist.Stores {
			st := &dist.Stores[j]
			for k := range st.Products {
				if st.Products[k].Item == item {
					return dist, st, &st.Products[k]
				}
			}
		}
	}
	return nil, nil, nil
}

// AllDistricts yields every district in document order.
func (d *Document) AllDistricts() iter.Seq[District] {
	return func(yield func(District) bool) {
		for _, dist := range d.Districts {
			if !yield(dist) {
				return
			}
		}
	}
}

// AllStores yields every store in document order: district order first,
// then each district's store order.
func (d *Document) AllStores() iter.Seq[Store] {
	return func(yield func(Store) bool) {
		for _, dist := range d.Districts {
			for _, st := range dist.Stores {
				if !yield(st) {
					return
				}
			}
		}
	}
}

// AllProducts yields every product in document order.
func (d *Document) AllProducts() iter.Seq[Product] {
	return func(yield func(Product) bool) {
		for _, dist := range d.Districts {
			for _, st := range dist.Stores {
				for _, p := range st.Products {
					if !yield(p) {
						return
					}
				}
			}
		}
	}
}

// IDExists reports whether the identifier is taken anywhere in the catalog,
// by any kind. district_id, store_id, and item share one global namespace:
// create operations reject an identifier that collides at any level.
func (d *Document) IDExists(id string) bool {
	if d.FindDistrict(id) != nil {
		return true
	}
	if _, st := d.FindStore(id); st != nil {
		return true
	}
	_, _, p := d.FindProduct(id)
	return p != nil
}
