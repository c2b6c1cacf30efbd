package resume

import (
	"context"
	"time"
)

type Collection string

const (
	Experiences Collection = "experiences"
	Educations  Collection = "educations"
	Projects    Collection = "projects"
	Skills      Collection = "skills"
)

// SyncOrder is the order collections are reconciled in.
var SyncOrder = []Collection{Experiences, Educations, Projects, Skills}

// ID is nil for a record that has not been stored yet.
type Experience struct {
	ID          *int64
	CompanyName string
	Position    string
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
}

type Education struct {
	ID              *int64
	InstitutionName string
	Degree          *string
	Major           *string
	StartDate       *time.Time
	EndDate         *time.Time
}

type Project struct {
	ID          *int64
	ProjectName string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	ProjectURL  *string
}

type Skill struct {
	ID        *int64
	SkillName string
	Category  *string
}

func (e Experience) Identity() *int64 { return e.ID }
func (e Education) Identity() *int64  { return e.ID }
func (p Project) Identity() *int64    { return p.ID }
func (s Skill) Identity() *int64      { return s.ID }

// ProfilePatch carries the resume fields of the user profile. Applying it
// writes all five columns; a nil field is stored as NULL.
type ProfilePatch struct {
	Nickname       *string
	Bio            *string
	ResumePhotoURL *string
	ResumeTitle    *string
	Introduction   *string
}

// Snapshot is the full client-side state of a resume. A nil collection was
// not submitted; an empty one clears everything stored for it.
type Snapshot struct {
	Profile     *ProfilePatch
	Experiences []Experience
	Educations  []Education
	Projects    []Project
	Skills      []Skill
}

// Missing lists the collections that were not submitted, in SyncOrder.
func (s Snapshot) Missing() []Collection {
	present := map[Collection]bool{
		Experiences: s.Experiences != nil,
		Educations:  s.Educations != nil,
		Projects:    s.Projects != nil,
		Skills:      s.Skills != nil,
	}
	var missing []Collection
	for _, c := range SyncOrder {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	OverwriteProfile(ctx context.Context, userID int64, p ProfilePatch) error
	ListIDs(ctx context.Context, c Collection, userID int64) ([]int64, error)

	ApplyExperiences(ctx context.Context, userID int64, plan Plan[Experience]) error
	ApplyEducations(ctx context.Context, userID int64, plan Plan[Education]) error
	ApplyProjects(ctx context.Context, userID int64, plan Plan[Project]) error
	ApplySkills(ctx context.Context, userID int64, plan Plan[Skill]) error

	ListExperiences(ctx context.Context, userID int64) ([]Experience, error)
	ListEducations(ctx context.Context, userID int64) ([]Education, error)
	ListProjects(ctx context.Context, userID int64) ([]Project, error)
	ListSkills(ctx context.Context, userID int64) ([]Skill, error)

	AddExperience(ctx context.Context, userID int64, e Experience) (*Experience, error)
	DeleteExperience(ctx context.Context, userID, experienceID int64) error
}
