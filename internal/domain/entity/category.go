package entity

import "time"

// Category representa un rubro (agrupador de bienes, órdenes y servicios).
// Name se guarda normalizado en mayúsculas y es único.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) AuditType() string { return "Category" }
func (c *Category) AuditID() string   { return c.ID }
func (c *Category) AuditRepr() string { return c.Name }

func (c *Category) AuditFields() map[string]string {
	return map[string]string{"name": c.Name}
}
