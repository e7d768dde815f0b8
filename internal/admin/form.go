package admin

import (
	"strings"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"github.com/google/uuid"
)

// MsgRequiredFields is shown when a form fails validation.
const MsgRequiredFields = "Please fill in required fields (Name and Position)"

// ValidationError lists the required fields that are blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return MsgRequiredFields + ": missing " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return domainerrors.ErrInvalidInput
}

// Form is the editable state of one member. ID is uuid.Nil for a member
// that has not been saved yet.
type Form struct {
	ID              uuid.UUID
	Name            string
	Position        string
	Bio             string
	ImageURL        string
	ImageFilePath   string
	Email           string
	Phone           string
	SocialLinks     entities.SocialLinks
	Specialties     []string
	YearsExperience int
	JoinDate        string
	DisplayOrder    int
	Featured        bool
	Active          bool
}

// NewForm returns a blank, active, unfeatured form at displayOrder.
func NewForm(displayOrder int) *Form {
	return &Form{
		Specialties:  []string{},
		DisplayOrder: displayOrder,
		Active:       true,
	}
}

// FormFrom pre-fills a form from an existing member.
func FormFrom(m *entities.TeamMember) *Form {
	f := &Form{
		ID:            m.ID,
		Name:          m.Name,
		Position:      m.Position,
		Bio:           m.Bio,
		ImageURL:      m.ImageURL,
		ImageFilePath: m.ImageFilePath,
		Email:         m.Email,
		Phone:         m.Phone,
		SocialLinks:   m.SocialLinks,
		Specialties:   append([]string{}, m.Specialties...),
		JoinDate:      m.JoinDate,
		DisplayOrder:  m.DisplayOrder,
		Featured:      m.Featured,
		Active:        m.Active,
	}
	if m.YearsExperience != nil {
		f.YearsExperience = *m.YearsExperience
	}
	return f
}

// IsNew reports whether saving creates a member.
func (f *Form) IsNew() bool {
	return f.ID == uuid.Nil
}

// Validate checks that name and position are non-blank.
func (f *Form) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.Position) == "" {
		missing = append(missing, "position")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// AddSpecialty appends the trimmed tag unless it is blank or already
// present (exact, case-sensitive match).
func (f *Form) AddSpecialty(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, s := range f.Specialties {
		if s == tag {
			return false
		}
	}
	f.Specialties = append(f.Specialties, tag)
	return true
}

// RemoveSpecialty drops every tag equal to tag.
func (f *Form) RemoveSpecialty(tag string) {
	kept := f.Specialties[:0]
	for _, s := range f.Specialties {
		if s != tag {
			kept = append(kept, s)
		}
	}
	f.Specialties = kept
}

// Input converts the form into a create payload.
func (f *Form) Input() *entities.TeamMemberInput {
	return &entities.TeamMemberInput{
		Name:            strings.TrimSpace(f.Name),
		Position:        strings.TrimSpace(f.Position),
		Bio:             strings.TrimSpace(f.Bio),
		ImageURL:        f.ImageURL,
		ImageFilePath:   f.ImageFilePath,
		Email:           strings.TrimSpace(f.Email),
		Phone:           strings.TrimSpace(f.Phone),
		SocialLinks:     f.SocialLinks,
		Specialties:     append([]string{}, f.Specialties...),
		YearsExperience: f.years(),
		JoinDate:        f.JoinDate,
		DisplayOrder:    f.DisplayOrder,
		Featured:        f.Featured,
		Active:          f.Active,
	}
}

// Patch converts the form into an update that sets every field, so
// emptied fields are cleared in the store.
func (f *Form) Patch() *entities.TeamMemberPatch {
	in := f.Input()
	years := 0
	if in.YearsExperience != nil {
		years = *in.YearsExperience
	}
	return &entities.TeamMemberPatch{
		Name:            &in.Name,
		Position:        &in.Position,
		Bio:             &in.Bio,
		ImageURL:        &in.ImageURL,
		ImageFilePath:   &in.ImageFilePath,
		Email:           &in.Email,
		Phone:           &in.Phone,
		SocialLinks:     &in.SocialLinks,
		Specialties:     &in.Specialties,
		YearsExperience: &years,
		JoinDate:        &in.JoinDate,
		DisplayOrder:    &in.DisplayOrder,
		Featured:        &in.Featured,
		Active:          &in.Active,
	}
}

func (f *Form) years() *int {
	if f.YearsExperience <= 0 {
		return nil
	}
	v := f.YearsExperience
	return &v
}
