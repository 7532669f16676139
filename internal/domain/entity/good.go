package entity

import "time"

// Good representa un bien del catálogo. Name, CatalogCode y LineReference van en mayúsculas.
// No puede eliminarse mientras existan renglones de órdenes o remitos que lo referencien.
type Good struct {
	ID            string
	Name          string
	CategoryID    *string
	CatalogCode   string
	LineReference string // renglón (texto libre)
	Image         []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (g *Good) AuditType() string { return "Good" }
func (g *Good) AuditID() string   { return g.ID }
func (g *Good) AuditRepr() string { return g.Name }

func (g *Good) AuditFields() map[string]string {
	return map[string]string{
		"name":           g.Name,
		"category":       deref(g.CategoryID),
		"catalog_code":   g.CatalogCode,
		"line_reference": g.LineReference,
		"image_size":     itoa(len(g.Image)),
	}
}

// GoodStock bien con su stock disponible global (comprado - entregado).
type GoodStock struct {
	Good
	CategoryName string
	Purchased    int
	Delivered    int
	Available    int
}
