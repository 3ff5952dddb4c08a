package catalog

import (
	"fmt"
	"strings"
)

// Request schemas. Every operation validates its full payload before any
// mutation; a failure rejects the whole request.

// DistrictCreate carries the fields for creating a district. The identifier
// comes from the request path; if DistrictID is set it must match. Stores may
// seed the district with a nested subtree, validated like individual creates.
type DistrictCreate struct {
	DistrictID string  `json:"district_id"`
	DistName   string  `json:"dist_name"`
	Stores     []Store `json:"stores"`
}

// StoreCreate carries the fields for creating a store under an existing
// district. DistrictID names the parent and must resolve.
type StoreCreate struct {
	StoreID    string `json:"store_id"`
	DistrictID string `json:"district_id"`
	StoreName  string `json:"store_name"`
	Address    string `json:"address"`
}

// ProductCreate carries the fields for creating a product under an existing
// store. Price is a pointer so a missing price is distinguishable from an
// explicit zero.
type ProductCreate struct {
	Item    string   `json:"item"`
	StoreID string   `json:"store_id"`
	Price   *float64 `json:"price"`
}

// DistrictPatch is a partial update. Nil fields are left untouched. A non-nil
// Stores replaces the whole subtree and is re-validated like a create.
type DistrictPatch struct {
	DistrictID *string  `json:"district_id"`
	DistName   *string  `json:"dist_name"`
	Stores     *[]Store `json:"stores"`
}

// StorePatch is a partial update for a store.
type StorePatch struct {
	StoreID   *string `json:"store_id"`
	StoreName *string `json:"store_name"`
	Address   *string `json:"address"`
}

// ProductPatch is a partial update for a product.
type ProductPatch struct {
	Item  *string  `json:"item"`
	Price *float64 `json:"price"`
}

func validateDistrictCreate(id string, in DistrictCreate) error {
	var fields []string
	if strings.TrimSpace(id) == "" {
		fields = append(fields, "district_id")
	} else if in.DistrictID != "" && in.DistrictID != id {
		fields = append(fields, "district_id")
	}
	if in.DistName == "" {
		fields = append(fields, "dist_name")
	}
	validateSubtree(in.Stores, "stores", &fields)
	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}

func validateStoreCreate(id string, in StoreCreate) error {
	var fields []string
	if strings.TrimSpace(id) == "" {
		fields = append(fields, "store_id")
	} else if in.StoreID != "" && in.StoreID != id {
		fields = append(fields, "store_id")
	}
	if in.DistrictID == "" {
		fields = append(fields, "district_id")
	}
	if in.StoreName == "" {
		fields = append(fields, "store_name")
	}
	if in.Address == "" {
		fields = append(fields, "address")
	}
	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}

func validateProductCreate(item string, in ProductCreate) error {
	var fields []string
	if strings.TrimSpace(item) == "" {
		fields = append(fields, "item")
	} else if in.Item != "" && in.Item != item {
		fields = append(fields, "item")
	}
	if in.StoreID == "" {
		fields = append(fields, "store_id")
	}
	if in.Price == nil || *in.Price < 0 {
		fields = append(fields, "price")
	}
	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}

// validateSubtree checks a nested stores payload: every store and product
// must carry its required fields and a non-negative price.
func validateSubtree(stores []Store, prefix string, fields *[]string) {
	for i, st := range stores {
		if strings.TrimSpace(st.StoreID) == "" {
			*fields = append(*fields, fmt.Sprintf("%s[%d].store_id", prefix, i))
		}
		if st.StoreName == "" {
			*fields = append(*fields, fmt.Sprintf("%s[%d].store_name", prefix, i))
		}
		if st.Address == "" {
			*fields = append(*fields, fmt.Sprintf("%s[%d].address", prefix, i))
		}
		for j, p := range st.Products {
			if strings.TrimSpace(p.Item) == "" {
				*fields = append(*fields, fmt.Sprintf("%s[%d].products[%d].item", prefix, i, j))
			}
			if p.Price < 0 {
				*fields = append(*fields, fmt.Sprintf("%s[%d].products[%d].price", prefix, i, j))
			}
		}
	}
}

// subtreeIDs returns every identifier introduced by a nested stores payload,
// in document order.
func subtreeIDs(stores []Store) []string {
	var ids []string
	for _, st := range stores {
		ids = append(ids, st.StoreID)
		for _, p := range st.Products {
			ids = append(ids, p.Item)
		}
	}
	return ids
}
