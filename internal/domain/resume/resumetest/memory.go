// Package resumetest provides an in-memory resume.Repository for use case tests.
package resumetest

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"sync"

	"github.com/khoahotran/careerfolio/internal/domain/resume"
	"github.com/khoahotran/careerfolio/pkg/apperror"
)

type row[T any] struct {
	userID int64
	rec    T
}

type table[T resume.Identified] map[int64]row[T]

func (t table[T]) ids(userID int64) []int64 {
	var out []int64
	for id, r := range t {
		if r.userID == userID {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t table[T]) list(userID int64) []T {
	var out []T
	for _, id := range t.ids(userID) {
		out = append(out, t[id].rec)
	}
	return out
}

// Store mimics the relational layout: one table per collection, ids shared
// through a single sequence. InTx restores every table when fn fails.
type Store struct {
	mu sync.Mutex

	profiles    map[int64]resume.ProfilePatch
	experiences table[resume.Experience]
	educations  table[resume.Education]
	projects    table[resume.Project]
	skills      table[resume.Skill]
	seq         int64

	// Fail makes the named method return the given error.
	Fail map[string]error
}

func New() *Store {
	return &Store{
		profiles:    map[int64]resume.ProfilePatch{},
		experiences: table[resume.Experience]{},
		educations:  table[resume.Education]{},
		projects:    table[resume.Project]{},
		skills:      table[resume.Skill]{},
		Fail:        map[string]error{},
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) fail(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Fail[method]
}

// Seed helpers store a record for userID and return its id.

func (s *Store) SeedExperience(userID int64, e resume.Experience) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	e.ID = &id
	s.experiences[id] = row[resume.Experience]{userID, e}
	return id
}

func (s *Store) SeedEducation(userID int64, e resume.Education) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	e.ID = &id
	s.educations[id] = row[resume.Education]{userID, e}
	return id
}

func (s *Store) SeedProject(userID int64, p resume.Project) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	p.ID = &id
	s.projects[id] = row[resume.Project]{userID, p}
	return id
}

func (s *Store) SeedSkill(userID int64, sk resume.Skill) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	sk.ID = &id
	s.skills[id] = row[resume.Skill]{userID, sk}
	return id
}

func (s *Store) SeedProfile(userID int64, p resume.ProfilePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = p
}

func (s *Store) Profile(userID int64) (resume.ProfilePatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return p, ok
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repo resume.Repository) error) error {
	s.mu.Lock()
	profiles := maps.Clone(s.profiles)
	experiences := maps.Clone(s.experiences)
	educations := maps.Clone(s.educations)
	projects := maps.Clone(s.projects)
	skills := maps.Clone(s.skills)
	seq := s.seq
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.profiles = profiles
		s.experiences = experiences
		s.educations = educations
		s.projects = projects
		s.skills = skills
		s.seq = seq
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) OverwriteProfile(ctx context.Context, userID int64, p resume.ProfilePatch) error {
	if err := s.fail("OverwriteProfile"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = p
	return nil
}

func (s *Store) ListIDs(ctx context.Context, c resume.Collection, userID int64) ([]int64, error) {
	if err := s.fail("ListIDs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch c {
	case resume.Experiences:
		return s.experiences.ids(userID), nil
	case resume.Educations:
		return s.educations.ids(userID), nil
	case resume.Projects:
		return s.projects.ids(userID), nil
	case resume.Skills:
		return s.skills.ids(userID), nil
	}
	return nil, apperror.NewInvalidInput("unknown collection "+string(c), nil)
}

func apply[T resume.Identified](s *Store, t table[T], userID int64, plan resume.Plan[T], withID func(T, int64) T) {
	for _, id := range plan.Delete {
		if r, ok := t[id]; ok && r.userID == userID {
			delete(t, id)
		}
	}
	for _, rec := range plan.Update {
		id := *rec.Identity()
		if r, ok := t[id]; ok && r.userID == userID {
			t[id] = row[T]{userID, rec}
		}
	}
	for _, rec := range plan.Insert {
		id := s.nextID()
		t[id] = row[T]{userID, withID(rec, id)}
	}
}

func (s *Store) ApplyExperiences(ctx context.Context, userID int64, plan resume.Plan[resume.Experience]) error {
	if err := s.fail("ApplyExperiences"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(s, s.experiences, userID, plan, func(e resume.Experience, id int64) resume.Experience { e.ID = &id; return e })
	return nil
}

func (s *Store) ApplyEducations(ctx context.Context, userID int64, plan resume.Plan[resume.Education]) error {
	if err := s.fail("ApplyEducations"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(s, s.educations, userID, plan, func(e resume.Education, id int64) resume.Education { e.ID = &id; return e })
	return nil
}

func (s *Store) ApplyProjects(ctx context.Context, userID int64, plan resume.Plan[resume.Project]) error {
	if err := s.fail("ApplyProjects"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(s, s.projects, userID, plan, func(p resume.Project, id int64) resume.Project { p.ID = &id; return p })
	return nil
}

func (s *Store) ApplySkills(ctx context.Context, userID int64, plan resume.Plan[resume.Skill]) error {
	if err := s.fail("ApplySkills"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(s, s.skills, userID, plan, func(sk resume.Skill, id int64) resume.Skill { sk.ID = &id; return sk })
	return nil
}

func (s *Store) ListExperiences(ctx context.Context, userID int64) ([]resume.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.experiences.list(userID), nil
}

func (s *Store) ListEducations(ctx context.Context, userID int64) ([]resume.Education, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.educations.list(userID), nil
}

func (s *Store) ListProjects(ctx context.Context, userID int64) ([]resume.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.list(userID), nil
}

func (s *Store) ListSkills(ctx context.Context, userID int64) ([]resume.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.list(userID), nil
}

func (s *Store) AddExperience(ctx context.Context, userID int64, e resume.Experience) (*resume.Experience, error) {
	id := s.SeedExperience(userID, e)
	e.ID = &id
	return &e, nil
}

func (s *Store) DeleteExperience(ctx context.Context, userID, experienceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.experiences[experienceID]
	if !ok || r.userID != userID {
		return apperror.NewNotFound("experience", strconv.FormatInt(experienceID, 10))
	}
	delete(s.experiences, experienceID)
	return nil
}

var _ resume.Repository = (*Store)(nil)
