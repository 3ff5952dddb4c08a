package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Service exposes the catalog's resource operations. All mutations run a
// load → mutate → save cycle under a single process-wide write lock; reads
// run lock-free against whatever complete snapshot Load returns.
type Service struct {
	docs   DocumentStore
	logger *zap.Logger

	// writeMu serializes every mutating operation. The backing store is one
	// whole-document blob, so unserialized read-modify-write cycles would
	// silently lose updates.
	writeMu sync.Mutex
}

// NewService creates a Service on top of a document store.
func NewService(docs DocumentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, logger: logger}
}

// loadForRead fetches the current document for a read-only operation.
// An unreadable backing store degrades to an empty catalog so reads answer
// from nothing rather than fail the request.
func (s *Service) loadForRead(ctx context.Context) (Document, error) {
	doc, err := s.docs.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrStorageUnavailable) {
			s.logger.Warn("document store unreadable, serving empty catalog", zap.Error(err))
			return Document{}, nil
		}
		return Document{}, err
	}
	return doc, nil
}

// mutate runs fn inside the write lock between a full load and a full save.
// A load failure short-circuits before fn runs; a save failure leaves the
// previously persisted document intact (the store guarantees atomic replace).
func (s *Service) mutate(ctx context.Context, fn func(doc *Document) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.docs.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.docs.Save(ctx, doc)
}

// --- District operations ---

// GetDistrict returns the district with its nested stores and products.
func (s *Service) GetDistrict(ctx context.Context, id string) (District, error) {
	doc, err := s.loadForRead(ctx)
	if err != nil {
		return District{}, err
	}
	dist := doc.FindDistrict(id)
	if dist == nil {
		return District{}, ErrNotFound
	}
	out := dist.Clone()
	out.normalize()
	return out, nil
}

// CreateDistrict creates a district, optionally seeded with a nested stores
// subtree. Every identifier the request introduces must be unused anywhere
// in the catalog.
func (s *Service) CreateDistrict(ctx context.Context, id string, in DistrictCreate) (District, error) {
	if err := validateDistrictCreate(id, in); err != nil {
		return District{}, err
	}

	var created District
	err := s.mutate(ctx, func(doc *Document) error {
		ids := append([]string{id}, subtreeIDs(in.Stores)...)
		if err := checkNewIDs(doc, ids, nil); err != nil {
			return err
		}
		dist := District{DistrictID: id, DistName: in.DistName, Stores: in.Stores}
		dist.normalize()
		doc.Districts = append(doc.Districts, dist)
		created = dist.Clone()
		return nil
	})
	if err != nil {
		return District{}, err
	}

	s.logger.Info("district created",
		zap.String("district_id", id),
		zap.Int("seeded_stores", len(created.Stores)),
	)
	return created, nil
}

// PatchDistrict merges the supplied fields into an existing district.
// The identifier is immutable; a non-nil Stores replaces the whole subtree.
func (s *Service) PatchDistrict(ctx context.Context, id string, p DistrictPatch) (District, error) {
	var updated District
	err := s.mutate(ctx, func(doc *Document) error {
		dist := doc.FindDistrict(id)
		if dist == nil {
			return ErrNotFound
		}

		var fields []string
		if p.DistrictID != nil && *p.DistrictID != id {
			fields = append(fields, "district_id")
		}
		if p.DistName != nil && *p.DistName == "" {
			fields = append(fields, "dist_name")
		}
		if p.Stores != nil {
			validateSubtree(*p.Stores, "stores", &fields)
		}
		if len(fields) > 0 {
			return invalid(fields...)
		}

		if p.Stores != nil {
			// Identifiers in the replacement subtree may reuse ids the
			// district already owns, but nothing owned elsewhere.
			owned := idSet(subtreeIDs(dist.Stores))
			if err := checkNewIDs(doc, subtreeIDs(*p.Stores), owned); err != nil {
				return err
			}
		}

		if p.DistName != nil {
			dist.DistName = *p.DistName
		}
		if p.Stores != nil {
			dist.Stores = *p.Stores
		}
		dist.normalize()
		updated = dist.Clone()
		return nil
	})
	if err != nil {
		return District{}, err
	}

	s.logger.Info("district updated", zap.String("district_id", id))
	return updated, nil
}

// DeleteDistrict removes a district and cascades to all its stores and
// their products.
func (s *Service) DeleteDistrict(ctx context.Context, id string) error {
	var stores, products int
	err := s.mutate(ctx, func(doc *Document) error {
		for i := range doc.Districts {
			if doc.Districts[i].DistrictID != id {
				continue
			}
			stores = len(doc.Districts[i].Stores)
			for _, st := range doc.Districts[i].Stores {
				products += len(st.Products)
			}
			doc.Districts = append(doc.Districts[:i], doc.Districts[i+1:]...)
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("district deleted",
		zap.String("district_id", id),
		zap.Int("cascaded_stores", stores),
		zap.Int("cascaded_products", products),
	)
	return nil
}

// --- Store operations ---

// GetStore returns the store with its nested products.
func (s *Service) GetStore(ctx context.Context, id string) (Store, error) {
	doc, err := s.loadForRead(ctx)
	if err != nil {
		return Store{}, err
	}
	_, st := doc.FindStore(id)
	if st == nil {
		return Store{}, ErrNotFound
	}
	out := st.Clone()
	out.normalize()
	return out, nil
}

// CreateStore creates a store under the district named by in.DistrictID.
func (s *Service) CreateStore(ctx context.Context, id string, in StoreCreate) (Store, error) {
	if err := validateStoreCreate(id, in); err != nil {
		return Store{}, err
	}

	var created Store
	err := s.mutate(ctx, func(doc *Document) error {
		if doc.IDExists(id) {
			return ErrConflict
		}
		parent := doc.FindDistrict(in.DistrictID)
		if parent == nil {
			return ErrParentNotFound
		}
		st := Store{StoreID: id, StoreName: in.StoreName, Address: in.Address, Products: []Product{}}
		parent.Stores = append(parent.Stores, st)
		created = st.Clone()
		return nil
	})
	if err != nil {
		return Store{}, err
	}

	s.logger.Info("store created",
		zap.String("store_id", id),
		zap.String("district_id", in.DistrictID),
	)
	return created, nil
}

// PatchStore merges the supplied fields into an existing store.
func (s *Service) PatchStore(ctx context.Context, id string, p StorePatch) (Store, error) {
	var updated Store
	err := s.mutate(ctx, func(doc *Document) error {
		_, st := doc.FindStore(id)
		if st == nil {
			return ErrNotFound
		}

		var fields []string
		if p.StoreID != nil && *p.StoreID != id {
			fields = append(fields, "store_id")
		}
		if p.StoreName != nil && *p.StoreName == "" {
			fields = append(fields, "store_name")
		}
		if p.Address != nil && *p.Address == "" {
			fields = append(fields, "address")
		}
		if len(fields) > 0 {
			return invalid(fields...)
		}

		if p.StoreName != nil {
			st.StoreName = *p.StoreName
		}
		if p.Address != nil {
			st.Address = *p.Address
		}
		st.normalize()
		updated = st.Clone()
		return nil
	})
	if err != nil {
		return Store{}, err
	}

	s.logger.Info("store updated", zap.String("store_id", id))
	return updated, nil
}

// DeleteStore removes a store and cascades to its products.
func (s *Service) DeleteStore(ctx context.Context, id string) error {
	var products int
	err := s.mutate(ctx, func(doc *Document) error {
		for i := range doc.Districts {
			dist := &doc.Districts[i]
			for j := range dist.Stores {
				if dist.Stores[j].StoreID != id {
					continue
				}
				products = len(dist.Stores[j].Products)
				dist.Stores = append(dist.Stores[:j], dist.Stores[j+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("store deleted",
		zap.String("store_id", id),
		zap.Int("cascaded_products", products),
	)
	return nil
}

// --- Product operations ---

// GetProduct returns the product identified by its item name.
func (s *Service) GetProduct(ctx context.Context, item string) (Product, error) {
	doc, err := s.loadForRead(ctx)
	if err != nil {
		return Product{}, err
	}
	_, _, p := doc.FindProduct(item)
	if p == nil {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

// CreateProduct creates a product under the store named by in.StoreID.
func (s *Service) CreateProduct(ctx context.Context, item string, in ProductCreate) (Product, error) {
	if err := validateProductCreate(item, in); err != nil {
		return Product{}, err
	}

	var created Product
	err := s.mutate(ctx, func(doc *Document) error {
		if doc.IDExists(item) {
			return ErrConflict
		}
		_, parent := doc.FindStore(in.StoreID)
		if parent == nil {
			return ErrParentNotFound
		}
		prod := Product{Item: item, Price: *in.Price}
		parent.Products = append(parent.Products, prod)
		created = prod
		return nil
	})
	if err != nil {
		return Product{}, err
	}

	s.logger.Info("product created",
		zap.String("item", item),
		zap.String("store_id", in.StoreID),
	)
	return created, nil
}

// PatchProduct merges the supplied fields into an existing product.
func (s *Service) PatchProduct(ctx context.Context, item string, p ProductPatch) (Product, error) {
	var updated Product
	err := s.mutate(ctx, func(doc *Document) error {
		_, _, prod := doc.FindProduct(item)
		if prod == nil {
			return ErrNotFound
		}

		var fields []string
		if p.Item != nil && *p.Item != item {
			fields = append(fields, "item")
		}
		if p.Price != nil && *p.Price < 0 {
			fields = append(fields, "price")
		}
		if len(fields) > 0 {
			return invalid(fields...)
		}

		if p.Price != nil {
			prod.Price = *p.Price
		}
		updated = *prod
		return nil
	})
	if err != nil {
		return Product{}, err
	}

	s.logger.Info("product updated", zap.String("item", item))
	return updated, nil
}

// DeleteProduct removes a product. Nothing else is affected.
func (s *Service) DeleteProduct(ctx context.Context, item string) error {
	err := s.mutate(ctx, func(doc *Document) error {
		for i := range doc.Districts {
			dist := &doc.Districts[i]
			for j := range dist.Stores {
				st := &dist.Stores[j]
				for k := range st.Products {
					if st.Products[k].Item != item {
						continue
					}
					st.Products = append(st.Products[:k], st.Products[k+1:]...)
					return nil
				}
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.String("item", item))
	return nil
}

// --- Flattening reads ---

// Districts returns every district in document order.
func (s *Service) Districts(ctx context.Context) ([]District, error) {
	doc, err := s.loadForRead(ctx)
	if err != nil {
		return nil, err
	}
	out := []District{}
	for dist := range doc.AllDistricts() {
		dist = dist.Clone()
		dist.normalize()
		out = append(out, dist)
	}
	return out, nil
}

// Stores returns every store across all districts in document order.
func (s *Service) Stores(ctx context.Context) ([]Store, error) {
	doc, err := s.loadForRead(ctx)
	if err != nil {
		return nil, err
	}
	out := []Store{}
	for st := range doc.AllStores() {
		st = st.Clone()
		st.normalize()
		out = append(out, st)
	}
	return out, nil
}

// Products returns every product across the whole catalog in document order.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	doc, err := s.loadForRead(ctx)
	if err != nil {
		return nil, err
	}
	out := []Product{}
	for p := range doc.AllProducts() {
		out = append(out, p)
	}
	return out, nil
}

// Snapshot returns the full current document, for debug views.
func (s *Service) Snapshot(ctx context.Context) (Document, error) {
	doc, err := s.loadForRead(ctx)
	if err != nil {
		return Document{}, err
	}
	doc = doc.Clone()
	if doc.Districts == nil {
		doc.Districts = []District{}
	}
	for i := range doc.Districts {
		doc.Districts[i].normalize()
	}
	return doc, nil
}

// --- uniqueness helpers ---

// checkNewIDs rejects identifiers that collide within the request payload or
// with anything already in the catalog, except identifiers listed in owned
// (those are being replaced by the same request).
func checkNewIDs(doc *Document, ids []string, owned map[string]struct{}) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrConflict
		}
		seen[id] = struct{}{}
		if _, ok := owned[id]; ok {
			continue
		}
		if doc.IDExists(id) {
			return ErrConflict
		}
	}
	return nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
