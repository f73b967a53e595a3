// Package model defines the core data structures for the proyectos application.
package model

import "time"

// EstadoActivo marks a project record as active. Inactive records are
// invisible to every generated query.
const (
	EstadoActivo   = 1
	EstadoInactivo = 0
)

// Situación codes seeded by the initial migration.
const (
	SituacionSuscrito    = 1
	SituacionEnEjecucion = 2
	SituacionTerminado   = 3
	SituacionLiquidado   = 4
	SituacionSuspendido  = 5
)

// Project is a row of the projects view: the project itself plus the
// descriptions of its entity and status.
type Project struct {
	StartDate  *time.Time `json:"fecha_inicio,omitempty"`
	EndDate    *time.Time `json:"fecha_final,omitempty"`
	Name       string     `json:"nombre_proyecto"`
	Object     string     `json:"objeto_proyecto,omitempty"`
	EntityName string     `json:"entidad,omitempty"`
	StatusName string     `json:"situacion,omitempty"`
	Code       int        `json:"codigo_proyecto"`
	Year       int        `json:"anio_proyecto"`
	EntityCode int        `json:"cod_entidad,omitempty"`
	StatusCode int        `json:"cod_situacion,omitempty"`
	State      int        `json:"estado"`
	Value      float64    `json:"valor_proyecto"`
}

// IsActive reports whether the project is in the active state.
func (p Project) IsActive() bool {
	return p.State == EstadoActivo
}

// Entity is a contracting or sponsoring organization.
type Entity struct {
	CreatedAt   time.Time
	Description string
	TaxID       string
	Code        int
}

// Status is a coded lifecycle state of a project.
type Status struct {
	Description string
	Code        int
}

// Contractor is a person or company executing a project.
type Contractor struct {
	CreatedAt      time.Time
	Name           string
	Identification string
	Phone          string
	Email          string
	Code           int
}

// ActType classifies an act by the lifecycle milestone it records.
type ActType string

// Act types.
const (
	ActStart      ActType = "inicio"
	ActSuspension ActType = "suspension"
	ActResumption ActType = "reinicio"
	ActPartial    ActType = "parcial"
	ActFinal      ActType = "final"
	ActSettlement ActType = "liquidacion"
)

// Valid reports whether t is a known act type.
func (t ActType) Valid() bool {
	switch t {
	case ActStart, ActSuspension, ActResumption, ActPartial, ActFinal, ActSettlement:
		return true
	}
	return false
}

// Act is a dated record tied to a project (and optionally a contractor).
type Act struct {
	Date           time.Time
	CreatedAt      time.Time
	ContractorCode *int
	Type           ActType
	Description    string
	Code           int
	ProjectCode    int
}

// Document is the bookkeeping record of a file attached to a project.
// The file itself lives outside the database under StoredName.
type Document struct {
	CreatedAt    time.Time
	OriginalName string
	StoredName   string
	MimeType     string
	Code         int
	ProjectCode  int
	Size         int64
}
