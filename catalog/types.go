package catalog

import "context"

// Kind identifies a resource level in the hierarchy.
type Kind string

const (
	KindDistrict Kind = "district"
	KindStore    Kind = "store"
	KindProduct  Kind = "product"
)

// Document is the whole persisted catalog: every district with its nested
// stores and products. The wire shape and the storage shape are identical.
type Document struct {
	// Revision is a storage-managed opaque token, refreshed on every save.
	// Backends with conditional writes use it to detect concurrent writers.
	Revision  string     `json:"revision,omitempty"`
	Districts []District `json:"districts"`
}

// District is the top level of the hierarchy. DistrictID is its immutable
// identity; the district owns its stores exclusively.
type District struct {
	DistrictID string  `json:"district_id"`
	DistName   string  `json:"dist_name"`
	Stores     []Store `json:"stores"`
}

// Store belongs to exactly one district. StoreID is unique across the whole
// catalog, not just within the owning district.
type Store struct {
	StoreID   string    `json:"store_id"`
	StoreName string    `json:"store_name"`
	Address   string    `json:"address"`
	Products  []Product `json:"products"`
}

// Product belongs to exactly one store. Item doubles as the identifier, so
// product names are unique across the whole catalog.
type Product struct {
	Item  string  `json:"item"`
	Price float64 `json:"price"`
}

// DocumentStore is the persistence contract the catalog operations run
// against. Load returns the complete current document; a missing backing
// document is an empty catalog, not an error. Save durably replaces the
// whole document; on failure the previously persisted document must remain
// intact. Both wrap ErrStorageUnavailable on backing-store failure.
type DocumentStore interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// Clone returns a deep copy of the document. Mutating the copy never
// affects the original.
func (d Document) Clone() Document {
	out := Document{Revision: d.Revision}
	if d.Districts != nil {
		out.Districts = make([]District, len(d.Districts))
		for i, dist := range d.Districts {
			out.Districts[i] = dist.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the district and its subtree.
func (d District) Clone() District {
	out := d
	if d.Stores != nil {
		out.Stores = make([]Store, len(d.Stores))
		for i, st := range d.Stores {
			out.Stores[i] = st.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the store and its products.
func (s Store) Clone() Store {
	out := s
	if s.Products != nil {
		out.Products = make([]Product, len(s.Products))
		copy(out.Products, s.Products)
	}
	return out
}

// normalize replaces nil child sequences with empty ones so reads and the
// persisted document always carry explicit empty collections.
func (d *District) normalize() {
	if d.Stores == nil {
		d.Stores = []Store{}
	}
	for i := range d.Stores {
		d.Stores[i].normalize()
	}
}

func (s *Store) normalize() {
	if s.Products == nil {
		s.Products = []Product{}
	}
}
