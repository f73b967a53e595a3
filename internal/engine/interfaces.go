package engine

import (
	"context"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/resolve"
)

// Translator turns question text into a query descriptor.
type Translator interface {
	Generate(text string) model.QueryDescriptor
}

// DetailExtractor pulls structured project details out of free text.
type DetailExtractor interface {
	Details(text string) model.ExtractedDetails
}

// Store is the data access the engine needs.
type Store interface {
	resolve.EntityLookup
	ExecuteQuery(ctx context.Context, d model.QueryDescriptor) ([]model.Project, error)
}
