package catalogue

import "github.com/Veraticus/consulta-proyectos/internal/model"

// Fixture is a predefined, reusable set of entities and projects.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Entities returns the entities the fixture creates, including those
	// without projects.
	Entities() []EntityName

	// Projects returns the projects the fixture creates.
	Projects() []Project
}

type fixture struct {
	name     string
	entities []EntityName
	projects []Project
}

func (f *fixture) Name() string           { return f.name }
func (f *fixture) Entities() []EntityName { return f.entities }
func (f *fixture) Projects() []Project    { return f.projects }

// Predefined fixtures.
var (
	// FixtureMunicipal is a small catalogue with one project per common
	// question shape and an inactive project that queries must skip.
	FixtureMunicipal = &fixture{
		name:     "Municipal",
		entities: []EntityName{EntityAlcaldiaMedellin, EntityGobernacionNarino},
		projects: []Project{
			{Name: "Puente La Paz", Entity: EntityAlcaldiaMedellin, Year: 2021,
				Status: model.SituacionSuscrito, Value: 120_000_000},
			{Name: "Vía Santa Elena", Entity: EntityAlcaldiaMedellin, Year: 2022,
				Status: model.SituacionEnEjecucion, Value: 2_000_000_000},
			{Name: "Dotación escolar", Entity: EntityGobernacionNarino, Year: 2022,
				Status: model.SituacionLiquidado, Value: 80_000_000},
			{Name: "Hospital San Pedro", Entity: EntityGobernacionNarino, Year: 2022,
				Status: model.SituacionEnEjecucion, Value: 5_000_000_000, Inactive: true},
		},
	}

	// FixtureNational holds national entities whose descriptions share the
	// word "nacional", for exercising fuzzy resolution.
	FixtureNational = &fixture{
		name:     "National",
		entities: []EntityName{EntityMinEducacion, EntityInvias},
		projects: []Project{
			{Name: "Colegios 10", Entity: EntityMinEducacion, Year: 2023,
				Status: model.SituacionEnEjecucion, Value: 900_000_000},
			{Name: "Doble calzada", Entity: EntityInvias, Year: 2023,
				Status: model.SituacionSuscrito, Value: 40_000_000_000},
		},
	}
)
