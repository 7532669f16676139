package entity

import "time"

// Acciones registradas en la bitácora.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// Auditable lo implementan las entidades cuyas mutaciones quedan en la bitácora.
// AuditFields devuelve una instantánea de los campos comparables como texto.
type Auditable interface {
	AuditType() string
	AuditID() string
	AuditRepr() string
	AuditFields() map[string]string
}

// FieldChange valor anterior y nuevo de un campo modificado.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// AuditLogEntry entrada de la bitácora. Changes es nil para CREATE y DELETE.
type AuditLogEntry struct {
	ID         string
	UserID     *string
	Action     string
	Timestamp  time.Time
	TargetType string
	TargetID   string
	TargetRepr string
	Changes    map[string]FieldChange
}

// MutationEvent lo emite cada operación de los libros dentro de su transacción.
// Before es nil en CREATE; After es nil en DELETE.
type MutationEvent struct {
	Action string
	Before Auditable
	After  Auditable
}

// Target devuelve la entidad que identifica al evento.
func (e MutationEvent) Target() Auditable {
	if e.After != nil {
		return e.After
	}
	return e.Before
}
