// Package snapshot encodes the catalog payload stored with each backup.
//
// The payload is a versioned JSON envelope:
//
//	{"schema_version":1,"products":[{...},...]}
//
// Version 0 is the legacy form, a bare JSON array of product objects. Both decode
// into catalog.Product values. Encoding is deterministic, so two captures of an
// unchanged catalog produce identical bytes and checksums.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
)

const (
	LegacySchemaVersion  = 0
	CurrentSchemaVersion = 1
)

// Product is the serialized form of catalog.Product. The surrogate id is not
// part of it; order in the products array is the restore order.
type Product struct {
	ProductID     string                      `json:"product_id"`
	Name          string                      `json:"name"`
	FullName      string                      `json:"full_name"`
	Description   string                      `json:"description"`
	Brand         string                      `json:"brand"`
	Industry      string                      `json:"industry"`
	Chemistry     string                      `json:"chemistry"`
	URL           string                      `json:"url"`
	Image         string                      `json:"image"`
	Benefits      []string                    `json:"benefits"`
	Applications  []string                    `json:"applications"`
	Technical     []catalog.TechnicalProperty `json:"technical"`
	Sizing        []string                    `json:"sizing"`
	Published     bool                        `json:"published"`
	BenefitsCount int                         `json:"benefits_count"`
	LastEdited    string                      `json:"last_edited"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

type envelope struct {
	SchemaVersion int       `json:"schema_version"`
	Products      []Product `json:"products"`
}

// Encoded is a payload ready to be stored on a backup row.
type Encoded struct {
	Data          []byte
	Checksum      string
	SchemaVersion int
	Count         int
}

// Encode serializes products in the given order.
func Encode(products []*catalog.Product) (Encoded, error) {
	env := envelope{
		SchemaVersion: CurrentSchemaVersion,
		Products:      make([]Product, 0, len(products)),
	}
	for _, p := range products {
		if p == nil {
			continue
		}
		env.Products = append(env.Products, fromCatalog(p))
	}
	data, err := json.Marshal(env)
	if err != nil {
		return Encoded{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return Encoded{
		Data:          data,
		Checksum:      Checksum(data),
		SchemaVersion: CurrentSchemaVersion,
		Count:         len(env.Products),
	}, nil
}

// Checksum is the hex sha256 of a payload.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Decode verifies and deserializes a payload. An empty expectedChecksum skips
// verification (rows written before checksums existed). Every failure wraps
// aggregates.ErrCorruptSnapshot.
func Decode(data []byte, expectedChecksum string) ([]*catalog.Product, error) {
	raw, err := decodeProducts(data, expectedChecksum)
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Product, 0, len(raw))
	for i := range raw {
		p := toCatalog(raw[i])
		if p.ProductID == "" {
			return nil, fmt.Errorf("%w: product at index %d has no product_id", aggregates.ErrCorruptSnapshot, i)
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodePreview returns the identifying fields of at most limit products and
// the number of products in the payload. limit <= 0 returns all of them.
func DecodePreview(data []byte, expectedChecksum string, limit int) ([]backup.PreviewItem, int, error) {
	raw, err := decodeProducts(data, expectedChecksum)
	if err != nil {
		return nil, 0, err
	}
	n := len(raw)
	if limit > 0 && n > limit {
		n = limit
	}
	items := make([]backup.PreviewItem, 0, n)
	for _, p := range raw[:n] {
		items = append(items, backup.PreviewItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			Brand:     p.Brand,
			Industry:  p.Industry,
		})
	}
	return items, len(raw), nil
}

// SchemaVersionOf reports which envelope version a payload uses.
func SchemaVersionOf(data []byte) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("%w: empty payload", aggregates.ErrCorruptSnapshot)
	}
	if trimmed[0] == '[' {
		return LegacySchemaVersion, nil
	}
	var head struct {
		SchemaVersion *int `json:"schema_version"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return 0, fmt.Errorf("%w: %v", aggregates.ErrCorruptSnapshot, err)
	}
	if head.SchemaVersion == nil {
		return 0, fmt.Errorf("%w: missing schema_version", aggregates.ErrCorruptSnapshot)
	}
	return *head.SchemaVersion, nil
}

func decodeProducts(data []byte, expectedChecksum string) ([]Product, error) {
	if expectedChecksum != "" && Checksum(data) != expectedChecksum {
		return nil, fmt.Errorf("%w: checksum mismatch", aggregates.ErrCorruptSnapshot)
	}
	version, err := SchemaVersionOf(data)
	if err != nil {
		return nil, err
	}
	switch version {
	case LegacySchemaVersion:
		var legacy []Product
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("%w: %v", aggregates.ErrCorruptSnapshot, err)
		}
		return legacy, nil
	case CurrentSchemaVersion:
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", aggregates.ErrCorruptSnapshot, err)
		}
		return env.Products, nil
	default:
		return nil, fmt.Errorf("%w: unsupported schema_version %d", aggregates.ErrCorruptSnapshot, version)
	}
}

func fromCatalog(p *catalog.Product) Product {
	return Product{
		ProductID:     p.ProductID,
		Name:          p.Name,
		FullName:      p.FullName,
		Description:   p.Description,
		Brand:         p.Brand,
		Industry:      p.Industry,
		Chemistry:     p.Chemistry,
		URL:           p.URL,
		Image:         p.Image,
		Benefits:      nonNil([]string(p.Benefits)),
		Applications:  nonNil([]string(p.Applications)),
		Technical:     nonNil([]catalog.TechnicalProperty(p.Technical)),
		Sizing:        nonNil([]string(p.Sizing)),
		Published:     p.Published,
		BenefitsCount: p.BenefitsCount,
		LastEdited:    p.LastEdited,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func toCatalog(p Product) *catalog.Product {
	out := &catalog.Product{
		ProductID:    p.ProductID,
		Name:         p.Name,
		FullName:     p.FullName,
		Description:  p.Description,
		Brand:        p.Brand,
		Industry:     p.Industry,
		Chemistry:    p.Chemistry,
		URL:          p.URL,
		Image:        p.Image,
		Benefits:     datatypes.JSONSlice[string](nonNil(p.Benefits)),
		Applications: datatypes.JSONSlice[string](nonNil(p.Applications)),
		Technical:    datatypes.JSONSlice[catalog.TechnicalProperty](nonNil(p.Technical)),
		Sizing:       datatypes.JSONSlice[string](nonNil(p.Sizing)),
		Published:    p.Published,
		LastEdited:   p.LastEdited,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	// benefits_count is derived; legacy payloads may carry a stale value.
	out.BenefitsCount = len(out.Benefits)
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
