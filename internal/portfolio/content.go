package portfolio

import (
	"context"
	"sort"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Document names in the data directory.
const (
	ProjectsDoc     = "projects"
	EducationDoc    = "education"
	SkillsDoc       = "skills"
	TechnologiesDoc = "technologies"
	MessagesDoc     = "messages"
	StatsDoc        = "stats"
	PersonalInfoDoc = "personal-info"
	ArchivePrefix   = "message-archive-"
)

// ProjectPatch is the writable subset of a project.
type ProjectPatch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Technologies *[]string `json:"technologies"`
	Image        *string   `json:"image"`
	GithubURL    *string   `json:"githubUrl"`
	LiveURL      *string   `json:"liveUrl"`
	Category     *string   `json:"category"`
	Featured     *bool     `json:"featured"`
	Order        *int      `json:"order"`
}

// Apply merges the set fields into p.
func (in ProjectPatch) Apply(p *models.Project) {
	set(&p.Title, in.Title)
	set(&p.Description, in.Description)
	set(&p.Technologies, in.Technologies)
	set(&p.Image, in.Image)
	set(&p.GithubURL, in.GithubURL)
	set(&p.LiveURL, in.LiveURL)
	set(&p.Category, in.Category)
	set(&p.Featured, in.Featured)
	set(&p.Order, in.Order)
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
}

// Projects manages portfolio projects.
type Projects struct {
	*Resource[models.Project]
}

// NewProjects creates the project service.
func NewProjects(store storage.Provider, events Publisher) *Projects {
	col := storage.NewCollection[models.Project](store, ProjectsDoc)
	return &Projects{newResource(col, "project", func(p *models.Project) *models.Meta { return &p.Meta }, events)}
}

// List returns projects ordered by their display order, newest first within
// the same order.
func (s *Projects) List(ctx context.Context) ([]models.Project, error) {
	items, err := s.Resource.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// EducationPatch is the writable subset of an education entry.
type EducationPatch struct {
	Institution *string `json:"institution"`
	Degree      *string `json:"degree"`
	Field       *string `json:"field"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Certificate *string `json:"certificate"`
}

// Apply merges the set fields into e.
func (in EducationPatch) Apply(e *models.Education) {
	set(&e.Institution, in.Institution)
	set(&e.Degree, in.Degree)
	set(&e.Field, in.Field)
	set(&e.StartDate, in.StartDate)
	set(&e.EndDate, in.EndDate)
	set(&e.Description, in.Description)
	set(&e.Location, in.Location)
	set(&e.Certificate, in.Certificate)
}

// Education manages education entries.
type Education struct {
	*Resource[models.Education]
}

// NewEducation creates the education service.
func NewEducation(store storage.Provider, events Publisher) *Education {
	col := storage.NewCollection[models.Education](store, EducationDoc)
	return &Education{newResource(col, "education", func(e *models.Education) *models.Meta { return &e.Meta }, events)}
}

// List returns entries with the most recent start date first.
func (s *Education) List(ctx context.Context) ([]models.Education, error) {
	items, err := s.Resource.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartDate > items[j].StartDate
	})
	return items, nil
}

// SkillPatch is the writable subset of a skill.
type SkillPatch struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Level    *int    `json:"level"`
	Icon     *string `json:"icon"`
}

// Apply merges the set fields into s.
func (in SkillPatch) Apply(s *models.Skill) {
	set(&s.Name, in.Name)
	set(&s.Category, in.Category)
	set(&s.Level, in.Level)
	set(&s.Icon, in.Icon)
}

// Skills manages the skills listing, stored as {"skills": [...]}.
type Skills struct {
	*Resource[models.Skill]
}

// NewSkills creates the skills service.
func NewSkills(store storage.Provider, events Publisher) *Skills {
	col := storage.NewWrappedCollection[models.Skill](store, SkillsDoc, "skills")
	return &Skills{newResource(col, "skill", func(s *models.Skill) *models.Meta { return &s.Meta }, events)}
}

// TechnologyPatch is the writable subset of a technology.
type TechnologyPatch struct {
	Name              *string `json:"name"`
	Category          *string `json:"category"`
	Icon              *string `json:"icon"`
	Proficiency       *int    `json:"proficiency"`
	YearsOfExperience *int    `json:"yearsOfExperience"`
}

// Apply merges the set fields into t.
func (in TechnologyPatch) Apply(t *models.Technology) {
	set(&t.Name, in.Name)
	set(&t.Category, in.Category)
	set(&t.Icon, in.Icon)
	set(&t.Proficiency, in.Proficiency)
	set(&t.YearsOfExperience, in.YearsOfExperience)
}

// Technologies manages the technology stack listing.
type Technologies struct {
	*Resource[models.Technology]
}

// NewTechnologies creates the technologies service.
func NewTechnologies(store storage.Provider, events Publisher) *Technologies {
	col := storage.NewCollection[models.Technology](store, TechnologiesDoc)
	return &Technologies{newResource(col, "technology", func(t *models.Technology) *models.Meta { return &t.Meta }, events)}
}
