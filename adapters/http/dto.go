package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	profileUC "github.com/khoahotran/careerfolio/internal/application/usecase/profile"
	"github.com/khoahotran/careerfolio/internal/domain/cart"
	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/internal/domain/memo"
	"github.com/khoahotran/careerfolio/internal/domain/profile"
	"github.com/khoahotran/careerfolio/internal/domain/resume"
	"github.com/khoahotran/careerfolio/internal/domain/user"
	"github.com/khoahotran/careerfolio/pkg/patch"
)

const dateLayout = "2006-01-02"

// Date is a calendar date encoded as "YYYY-MM-DD". Full RFC 3339 timestamps are accepted on input.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("invalid date %q", s)
		}
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func datePtr(d *Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func toDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

// Auth DTOs

type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type SignupRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	PhoneNumber *string `json:"phoneNumber"`
	LoginID     string  `json:"id" binding:"required"`
	Password    string  `json:"password" binding:"required"`
}

type LoginRequest struct {
	LoginID  string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID       int64  `json:"idx"`
	LoginID  string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

func ToUserDTO(a *user.Account) UserDTO {
	return UserDTO{
		ID:       a.ID,
		LoginID:  a.LoginID,
		Name:     a.Name,
		Email:    a.Email,
		Nickname: a.Nickname,
		Role:     a.Role,
	}
}

// Course DTOs

type CreateCourseRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   *string `json:"description"`
	Price         int64   `json:"price" binding:"min=0"`
	DiscountPrice *int64  `json:"discount_price"`
}

type UpdateCourseRequest struct {
	Title         patch.Field[string] `json:"title"`
	Description   patch.Field[string] `json:"description"`
	Price         patch.Field[int64]  `json:"price"`
	DiscountPrice patch.Field[int64]  `json:"discount_price"`
}

func (r UpdateCourseRequest) ToPatch() course.Patch {
	return course.Patch{
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
	}
}

type SectionRequest struct {
	Title string `json:"title" binding:"required"`
}

type SectionOrderRequest struct {
	Sections []struct {
		ID    int64 `json:"idx" binding:"required"`
		Order int   `json:"order" binding:"min=1"`
	} `json:"sections" binding:"required,min=1,dive"`
}

type LectureOrderRequest struct {
	Lectures []struct {
		ID        int64 `json:"idx" binding:"required"`
		SectionID int64 `json:"section_idx" binding:"required"`
		Order     int   `json:"order" binding:"min=1"`
	} `json:"lectures" binding:"required,min=1,dive"`
}

type UpdateLectureRequest struct {
	Title           patch.Field[string] `json:"title"`
	DurationSeconds patch.Field[int]    `json:"duration_seconds"`
	VideoURL        patch.Field[string] `json:"video_url"`
}

type LectureDTO struct {
	ID              int64   `json:"idx"`
	SectionID       int64   `json:"section_idx"`
	Title           string  `json:"title"`
	VideoURL        *string `json:"video_url,omitempty"`
	DurationSeconds int     `json:"duration_seconds"`
	Order           int     `json:"order"`
	WatchedSeconds  *int    `json:"watched_seconds,omitempty"`
	IsCompleted     *bool   `json:"is_completed,omitempty"`
}

type SectionDTO struct {
	ID       int64        `json:"idx"`
	CourseID int64        `json:"course_idx"`
	Title    string       `json:"title"`
	Order    int          `json:"order"`
	Lectures []LectureDTO `json:"lectures"`
}

type CourseDTO struct {
	ID              int64        `json:"idx"`
	InstructorID    int64        `json:"instructor_idx"`
	InstructorName  string       `json:"instructor_name"`
	Title           string       `json:"title"`
	Description     *string      `json:"description"`
	ThumbnailURL    *string      `json:"thumbnail_url"`
	Price           int64        `json:"price"`
	DiscountPrice   *int64       `json:"discount_price"`
	Status          string       `json:"status"`
	AvgRating       float64      `json:"avg_rating"`
	ReviewCount     int          `json:"review_count"`
	EnrollmentCount int          `json:"enrollment_count"`
	CreatedAt       time.Time    `json:"created_at"`
	Sections        []SectionDTO `json:"sections,omitempty"`
}

func ToLectureDTO(l *course.Lecture) LectureDTO {
	return LectureDTO{
		ID:              l.ID,
		SectionID:       l.SectionID,
		Title:           l.Title,
		VideoURL:        l.VideoURL,
		DurationSeconds: l.DurationSeconds,
		Order:           l.Order,
		WatchedSeconds:  l.WatchedSeconds,
		IsCompleted:     l.IsCompleted,
	}
}

func ToSectionDTO(s *course.Section) SectionDTO {
	dto := SectionDTO{
		ID:       s.ID,
		CourseID: s.CourseID,
		Title:    s.Title,
		Order:    s.Order,
		Lectures: make([]LectureDTO, len(s.Lectures)),
	}
	for i, l := range s.Lectures {
		dto.Lectures[i] = ToLectureDTO(l)
	}
	return dto
}

func ToCourseDTO(c *course.Course) CourseDTO {
	dto := CourseDTO{
		ID:              c.ID,
		InstructorID:    c.InstructorID,
		InstructorName:  c.InstructorName,
		Title:           c.Title,
		Description:     c.Description,
		ThumbnailURL:    c.ThumbnailURL,
		Price:           c.Price,
		DiscountPrice:   c.DiscountPrice,
		Status:          string(c.Status),
		AvgRating:       c.AvgRating,
		ReviewCount:     c.ReviewCount,
		EnrollmentCount: c.EnrollmentCount,
		CreatedAt:       c.CreatedAt,
	}
	if c.Sections != nil {
		dto.Sections = make([]SectionDTO, len(c.Sections))
		for i, s := range c.Sections {
			dto.Sections[i] = ToSectionDTO(s)
		}
	}
	return dto
}

func ToCourseDTOs(courses []*course.Course) []CourseDTO {
	out := make([]CourseDTO, len(courses))
	for i, c := range courses {
		out[i] = ToCourseDTO(c)
	}
	return out
}

// Admin DTOs

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SetPriceRequest struct {
	Price         *int64 `json:"price" binding:"required"`
	DiscountPrice *int64 `json:"discount_price"`
}

// Cart, payment and enrollment DTOs

type CourseIDRequest struct {
	CourseID int64 `json:"courseId" binding:"required"`
}

type CheckoutRequest struct {
	CourseIDs []int64 `json:"courseIds" binding:"required,min=1"`
}

type CartItemDTO struct {
	CourseID       int64   `json:"course_idx"`
	Title          string  `json:"title"`
	ThumbnailURL   *string `json:"thumbnail_url"`
	Price          int64   `json:"price"`
	DiscountPrice  *int64  `json:"discount_price"`
	InstructorName string  `json:"instructor_name"`
}

func ToCartItemDTOs(items []*cart.Item) []CartItemDTO {
	out := make([]CartItemDTO, len(items))
	for i, it := range items {
		out[i] = CartItemDTO{
			CourseID:       it.CourseID,
			Title:          it.Title,
			ThumbnailURL:   it.ThumbnailURL,
			Price:          it.Price,
			DiscountPrice:  it.DiscountPrice,
			InstructorName: it.InstructorName,
		}
	}
	return out
}

type EnrollmentSummaryDTO struct {
	EnrollmentID    int64     `json:"enrollment_idx"`
	CourseID        int64     `json:"course_idx"`
	Title           string    `json:"title"`
	ThumbnailURL    *string   `json:"thumbnail_url"`
	InstructorName  string    `json:"instructor_name"`
	EnrolledAt      time.Time `json:"enrolled_at"`
	ProgressPercent int       `json:"progress_percent"`
}

func ToEnrollmentSummaryDTOs(summaries []*enrollment.Summary) []EnrollmentSummaryDTO {
	out := make([]EnrollmentSummaryDTO, len(summaries))
	for i, s := range summaries {
		out[i] = EnrollmentSummaryDTO{
			EnrollmentID:    s.EnrollmentID,
			CourseID:        s.CourseID,
			Title:           s.Title,
			ThumbnailURL:    s.ThumbnailURL,
			InstructorName:  s.InstructorName,
			EnrolledAt:      s.EnrolledAt,
			ProgressPercent: s.ProgressPercent,
		}
	}
	return out
}

// Learn and memo DTOs

type RecordProgressRequest struct {
	LectureID      int64 `json:"lectureId" binding:"required"`
	WatchedSeconds *int  `json:"watchedSeconds" binding:"required,min=0"`
}

type CreateMemoRequest struct {
	LectureID        int64  `json:"lectureId" binding:"required"`
	TimestampSeconds *int   `json:"timestampSeconds" binding:"required,min=0"`
	Content          string `json:"content" binding:"required"`
}

type MemoDTO struct {
	ID               int64     `json:"idx"`
	EnrollmentID     int64     `json:"enrollment_idx"`
	LectureID        int64     `json:"lecture_idx"`
	TimestampSeconds int       `json:"timestamp_seconds"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
}

func ToMemoDTO(m *memo.Memo) MemoDTO {
	return MemoDTO{
		ID:               m.ID,
		EnrollmentID:     m.EnrollmentID,
		LectureID:        m.LectureID,
		TimestampSeconds: m.TimestampSeconds,
		Content:          m.Content,
		CreatedAt:        m.CreatedAt,
	}
}

func ToMemoDTOs(memos []*memo.Memo) []MemoDTO {
	out := make([]MemoDTO, len(memos))
	for i, m := range memos {
		out[i] = ToMemoDTO(m)
	}
	return out
}

// Profile and resume DTOs

type ProfileDTO struct {
	UserID         int64     `json:"user_idx"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PhoneNumber    *string   `json:"phone_number"`
	Nickname       *string   `json:"nickname"`
	Bio            *string   `json:"bio"`
	PictureURL     *string   `json:"profile_picture_url"`
	ResumePhotoURL *string   `json:"resume_photo_url"`
	ResumeTitle    *string   `json:"resume_title"`
	Introduction   *string   `json:"introduction"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ExperienceDTO struct {
	ID          *int64  `json:"idx"`
	CompanyName string  `json:"company_name"`
	Position    string  `json:"position"`
	StartDate   *Date   `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
	Description *string `json:"description"`
}

type EducationDTO struct {
	ID              *int64  `json:"idx"`
	InstitutionName string  `json:"institution_name"`
	Degree          *string `json:"degree"`
	Major           *string `json:"major"`
	StartDate       *Date   `json:"start_date"`
	EndDate         *Date   `json:"end_date"`
}

type ProjectDTO struct {
	ID          *int64  `json:"idx"`
	ProjectName string  `json:"project_name"`
	Description *string `json:"description"`
	StartDate   *Date   `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
	ProjectURL  *string `json:"project_url"`
}

type SkillDTO struct {
	ID        *int64  `json:"idx"`
	SkillName string  `json:"skill_name"`
	Category  *string `json:"category"`
}

type ProfileDataDTO struct {
	Profile     ProfileDTO      `json:"profile"`
	Experiences []ExperienceDTO `json:"experiences"`
	Educations  []EducationDTO  `json:"educations"`
	Projects    []ProjectDTO    `json:"projects"`
	Skills      []SkillDTO      `json:"skills"`
}

func ToProfileDTO(p *profile.Profile) ProfileDTO {
	return ProfileDTO{
		UserID:         p.UserID,
		Name:           p.Name,
		Email:          p.Email,
		PhoneNumber:    p.PhoneNumber,
		Nickname:       p.Nickname,
		Bio:            p.Bio,
		PictureURL:     p.PictureURL,
		ResumePhotoURL: p.ResumePhotoURL,
		ResumeTitle:    p.ResumeTitle,
		Introduction:   p.Introduction,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ToExperienceDTO(e resume.Experience) ExperienceDTO {
	return ExperienceDTO{
		ID:          e.ID,
		CompanyName: e.CompanyName,
		Position:    e.Position,
		StartDate:   toDate(e.StartDate),
		EndDate:     toDate(e.EndDate),
		Description: e.Description,
	}
}

func ToProfileDataDTO(d *profileUC.ProfileData) ProfileDataDTO {
	dto := ProfileDataDTO{
		Profile:     ToProfileDTO(d.Profile),
		Experiences: make([]ExperienceDTO, len(d.Experiences)),
		Educations:  make([]EducationDTO, len(d.Educations)),
		Projects:    make([]ProjectDTO, len(d.Projects)),
		Skills:      make([]SkillDTO, len(d.Skills)),
	}
	for i, e := range d.Experiences {
		dto.Experiences[i] = ToExperienceDTO(e)
	}
	for i, e := range d.Educations {
		dto.Educations[i] = EducationDTO{
			ID:              e.ID,
			InstitutionName: e.InstitutionName,
			Degree:          e.Degree,
			Major:           e.Major,
			StartDate:       toDate(e.StartDate),
			EndDate:         toDate(e.EndDate),
		}
	}
	for i, p := range d.Projects {
		dto.Projects[i] = ProjectDTO{
			ID:          p.ID,
			ProjectName: p.ProjectName,
			Description: p.Description,
			StartDate:   toDate(p.StartDate),
			EndDate:     toDate(p.EndDate),
			ProjectURL:  p.ProjectURL,
		}
	}
	for i, s := range d.Skills {
		dto.Skills[i] = SkillDTO{ID: s.ID, SkillName: s.SkillName, Category: s.Category}
	}
	return dto
}

type ExperienceRequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	Position    string  `json:"position" binding:"required"`
	StartDate   *Date   `json:"start_date" binding:"required"`
	EndDate     *Date   `json:"end_date"`
	Description *string `json:"description"`
}

func (r ExperienceRequest) ToDomain() resume.Experience {
	return resume.Experience{
		CompanyName: r.CompanyName,
		Position:    r.Position,
		StartDate:   datePtr(r.StartDate),
		EndDate:     datePtr(r.EndDate),
		Description: r.Description,
	}
}

type ResumeProfileRequest struct {
	Nickname       *string `json:"nickname"`
	Bio            *string `json:"bio"`
	ResumePhotoURL *string `json:"resume_photo_url"`
	ResumeTitle    *string `json:"resume_title"`
	Introduction   *string `json:"introduction"`
}

// BulkUpdateRequest is the whole resume as edited on the client. Every
// collection must be present; [] clears it.
type BulkUpdateRequest struct {
	Profile     *ResumeProfileRequest `json:"profile"`
	Experiences *[]ExperienceDTO      `json:"experiences"`
	Educations  *[]EducationDTO       `json:"educations"`
	Projects    *[]ProjectDTO         `json:"projects"`
	Skills      *[]SkillDTO           `json:"skills"`
}

// ToSnapshot keeps an omitted collection nil so the synchronizer rejects it
// instead of clearing the stored rows.
func (r BulkUpdateRequest) ToSnapshot() resume.Snapshot {
	var s resume.Snapshot
	if r.Profile != nil {
		s.Profile = &resume.ProfilePatch{
			Nickname:       r.Profile.Nickname,
			Bio:            r.Profile.Bio,
			ResumePhotoURL: r.Profile.ResumePhotoURL,
			ResumeTitle:    r.Profile.ResumeTitle,
			Introduction:   r.Profile.Introduction,
		}
	}
	if r.Experiences != nil {
		s.Experiences = make([]resume.Experience, len(*r.Experiences))
		for i, e := range *r.Experiences {
			s.Experiences[i] = resume.Experience{
				ID:          e.ID,
				CompanyName: e.CompanyName,
				Position:    e.Position,
				StartDate:   datePtr(e.StartDate),
				EndDate:     datePtr(e.EndDate),
				Description: e.Description,
			}
		}
	}
	if r.Educations != nil {
		s.Educations = make([]resume.Education, len(*r.Educations))
		for i, e := range *r.Educations {
			s.Educations[i] = resume.Education{
				ID:              e.ID,
				InstitutionName: e.InstitutionName,
				Degree:          e.Degree,
				Major:           e.Major,
				StartDate:       datePtr(e.StartDate),
				EndDate:         datePtr(e.EndDate),
			}
		}
	}
	if r.Projects != nil {
		s.Projects = make([]resume.Project, len(*r.Projects))
		for i, p := range *r.Projects {
			s.Projects[i] = resume.Project{
				ID:          p.ID,
				ProjectName: p.ProjectName,
				Description: p.Description,
				StartDate:   datePtr(p.StartDate),
				EndDate:     datePtr(p.EndDate),
				ProjectURL:  p.ProjectURL,
			}
		}
	}
	if r.Skills != nil {
		s.Skills = make([]resume.Skill, len(*r.Skills))
		for i, sk := range *r.Skills {
			s.Skills[i] = resume.Skill{ID: sk.ID, SkillName: sk.SkillName, Category: sk.Category}
		}
	}
	return s
}
