// Package enrollmenttest provides an in-memory enrollment.Repository for use case tests.
package enrollmenttest

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
)

type progressKey struct {
	enrollmentID int64
	lectureID    int64
}

// Store keeps everything in maps. InTx snapshots the maps and restores them
// when fn fails, so aborted transactions leave no trace.
type Store struct {
	mu sync.Mutex

	lectures         map[int64]enrollment.LectureRef
	enrollments      map[int64]enrollment.Enrollment
	progress         map[progressKey]enrollment.LectureProgress
	pricing          map[int64]enrollment.CoursePricing
	enrollmentCounts map[int64]int
	nextID           int64

	// Fail makes the named method return the given error.
	Fail map[string]error
	// PercentWrites counts UpdateProgressPercent calls per enrollment.
	PercentWrites map[int64]int
}

func New() *Store {
	return &Store{
		lectures:         map[int64]enrollment.LectureRef{},
		enrollments:      map[int64]enrollment.Enrollment{},
		progress:         map[progressKey]enrollment.LectureProgress{},
		pricing:          map[int64]enrollment.CoursePricing{},
		enrollmentCounts: map[int64]int{},
		nextID:           1000,
		Fail:             map[string]error{},
		PercentWrites:    map[int64]int{},
	}
}

func (s *Store) AddCourse(p enrollment.CoursePricing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pricing[p.CourseID] = p
}

func (s *Store) AddLecture(l enrollment.LectureRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lectures[l.LectureID] = l
}

func (s *Store) AddEnrollment(e enrollment.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	s.enrollments[e.ID] = e
}

func (s *Store) SetProgress(p enrollment.LectureProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progressKey{p.EnrollmentID, p.LectureID}] = p
}

func (s *Store) Enrollment(id int64) enrollment.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrollments[id]
}

func (s *Store) Progress(enrollmentID, lectureID int64) (enrollment.LectureProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{enrollmentID, lectureID}]
	return p, ok
}

func (s *Store) EnrollmentCount(courseID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrollmentCounts[courseID]
}

func (s *Store) fail(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Fail[method]
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repo enrollment.Repository) error) error {
	s.mu.Lock()
	enrollments := maps.Clone(s.enrollments)
	progress := maps.Clone(s.progress)
	counts := maps.Clone(s.enrollmentCounts)
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.enrollments = enrollments
		s.progress = progress
		s.enrollmentCounts = counts
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) FindLecture(ctx context.Context, lectureID int64) (*enrollment.LectureRef, error) {
	if err := s.fail("FindLecture"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lectures[lectureID]
	if !ok {
		return nil, apperror.NewNotFound("lecture", strconv.FormatInt(lectureID, 10))
	}
	return &l, nil
}

func (s *Store) FindByUserAndCourse(ctx context.Context, userID, courseID int64) (*enrollment.Enrollment, error) {
	if err := s.fail("FindByUserAndCourse"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return &e, nil
		}
	}
	return nil, apperror.NewNotFound("enrollment", strconv.FormatInt(courseID, 10))
}

func (s *Store) FindByUserAndLecture(ctx context.Context, userID, lectureID int64) (*enrollment.Enrollment, error) {
	s.mu.Lock()
	l, ok := s.lectures[lectureID]
	s.mu.Unlock()
	if !ok {
		return nil, apperror.NewNotFound("enrollment", strconv.FormatInt(lectureID, 10))
	}
	return s.FindByUserAndCourse(ctx, userID, l.CourseID)
}

func (s *Store) UpsertLectureProgress(ctx context.Context, p enrollment.LectureProgress) error {
	if err := s.fail("UpsertLectureProgress"); err != nil {
		return err
	}
	s.SetProgress(p)
	return nil
}

func (s *Store) CountStats(ctx context.Context, key enrollment.Key) (enrollment.Stats, error) {
	if err := s.fail("CountStats"); err != nil {
		return enrollment.Stats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked(key), nil
}

func (s *Store) statsLocked(key enrollment.Key) enrollment.Stats {
	var st enrollment.Stats
	for _, l := range s.lectures {
		if l.CourseID != key.CourseID {
			continue
		}
		st.TotalLectures++
		if p, ok := s.progress[progressKey{key.EnrollmentID, l.LectureID}]; ok && p.Completed {
			st.CompletedLectures++
		}
	}
	return st
}

func (s *Store) CountStatsBatch(ctx context.Context, keys []enrollment.Key) (map[int64]enrollment.Stats, error) {
	if err := s.fail("CountStatsBatch"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]enrollment.Stats, len(keys))
	for _, k := range keys {
		out[k.EnrollmentID] = s.statsLocked(k)
	}
	return out, nil
}

func (s *Store) UpdateProgressPercent(ctx context.Context, enrollmentID int64, percent int) error {
	if err := s.fail("UpdateProgressPercent"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return apperror.NewNotFound("enrollment", strconv.FormatInt(enrollmentID, 10))
	}
	e.ProgressPercent = percent
	s.enrollments[enrollmentID] = e
	s.PercentWrites[enrollmentID]++
	return nil
}

func (s *Store) ListSummariesByUser(ctx context.Context, userID int64) ([]*enrollment.Summary, error) {
	if err := s.fail("ListSummariesByUser"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*enrollment.Summary
	for _, e := range s.enrollments {
		if e.UserID != userID {
			continue
		}
		out = append(out, &enrollment.Summary{
			EnrollmentID:    e.ID,
			CourseID:        e.CourseID,
			Title:           s.pricing[e.CourseID].Title,
			EnrolledAt:      e.EnrolledAt,
			ProgressPercent: e.ProgressPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

func (s *Store) FindCoursePricing(ctx context.Context, courseID int64) (*enrollment.CoursePricing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pricing[courseID]
	if !ok {
		return nil, apperror.NewNotFound("course", strconv.FormatInt(courseID, 10))
	}
	return &p, nil
}

func (s *Store) Create(ctx context.Context, userID, courseID int64) (*enrollment.Enrollment, error) {
	if err := s.fail("Create"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e := enrollment.Enrollment{ID: s.nextID, UserID: userID, CourseID: courseID, EnrolledAt: time.Now()}
	s.enrollments[e.ID] = e
	return &e, nil
}

func (s *Store) IncrementEnrollmentCount(ctx context.Context, courseID int64) error {
	if err := s.fail("IncrementEnrollmentCount"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollmentCounts[courseID]++
	return nil
}

var _ enrollment.Repository = (*Store)(nil)
