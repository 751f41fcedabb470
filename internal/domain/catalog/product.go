package catalog

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// TechnicalProperty is one row of a product's technical data sheet.
type TechnicalProperty struct {
	Property string `json:"property"`
	Value    string `json:"value"`
	Unit     string `json:"unit,omitempty"`
}

// Product is a row of the live catalog. ProductID is the business key; ID only
// fixes storage order.
type Product struct {
	ID            int64                                 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     string                                `gorm:"column:product_id;not null;uniqueIndex:idx_product_product_id" json:"product_id"`
	Name          string                                `gorm:"column:name;not null" json:"name"`
	FullName      string                                `gorm:"column:full_name" json:"full_name"`
	Description   string                                `gorm:"column:description;type:text" json:"description"`
	Brand         string                                `gorm:"column:brand;index" json:"brand"`
	Industry      string                                `gorm:"column:industry;index" json:"industry"`
	Chemistry     string                                `gorm:"column:chemistry" json:"chemistry"`
	URL           string                                `gorm:"column:url" json:"url"`
	Image         string                                `gorm:"column:image" json:"image"`
	Benefits      datatypes.JSONSlice[string]            `gorm:"column:benefits" json:"benefits"`
	Applications  datatypes.JSONSlice[string]            `gorm:"column:applications" json:"applications"`
	Technical     datatypes.JSONSlice[TechnicalProperty] `gorm:"column:technical" json:"technical"`
	Sizing        datatypes.JSONSlice[string]            `gorm:"column:sizing" json:"sizing"`
	Published     bool                                  `gorm:"column:published;not null;default:false" json:"published"`
	BenefitsCount int                                   `gorm:"column:benefits_count;not null;default:0" json:"benefits_count"`
	LastEdited    string                                `gorm:"column:last_edited" json:"last_edited"`
	CreatedAt     time.Time                             `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time                             `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

// Normalize trims scalar fields, replaces nil sequences with empty ones and
// recomputes BenefitsCount.
func (p *Product) Normalize() {
	if p == nil {
		return
	}
	p.ProductID = strings.TrimSpace(p.ProductID)
	p.Name = strings.TrimSpace(p.Name)
	p.FullName = strings.TrimSpace(p.FullName)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Industry = strings.TrimSpace(p.Industry)
	p.Chemistry = strings.TrimSpace(p.Chemistry)
	p.URL = strings.TrimSpace(p.URL)
	p.Image = strings.TrimSpace(p.Image)
	if p.Benefits == nil {
		p.Benefits = datatypes.JSONSlice[string]{}
	}
	if p.Applications == nil {
		p.Applications = datatypes.JSONSlice[string]{}
	}
	if p.Technical == nil {
		p.Technical = datatypes.JSONSlice[TechnicalProperty]{}
	}
	if p.Sizing == nil {
		p.Sizing = datatypes.JSONSlice[string]{}
	}
	p.BenefitsCount = len(p.Benefits)
}

// ProductIDs returns the business keys of products in order.
func ProductIDs(products []*Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		if p != nil {
			out = append(out, p.ProductID)
		}
	}
	return out
}
