package entities

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageBucket is the storage bucket that holds team member portraits.
const ImageBucket = "team-images"

// SocialLinks holds the optional profile links shown on a member card.
type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

// IsZero reports whether no link is set.
func (s SocialLinks) IsZero() bool {
	return s == SocialLinks{}
}

// TeamMember represents a cafe team member profile
type TeamMember struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Position        string      `json:"position"`
	Bio             string      `json:"bio,omitempty"`
	ImageURL        string      `json:"imageUrl,omitempty"`
	ImageFilePath   string      `json:"imageFilePath,omitempty"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	SocialLinks     SocialLinks `json:"socialLinks"`
	Specialties     []string    `json:"specialties"`
	YearsExperience *int        `json:"yearsExperience,omitempty"`
	JoinDate        string      `json:"joinDate,omitempty"`
	DisplayOrder    int         `json:"displayOrder"`
	Featured        bool        `json:"featured"`
	Active          bool        `json:"active"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// EffectivelyFeatured reports whether the member qualifies for promoted display.
// Inactive members are never promoted.
func (m *TeamMember) EffectivelyFeatured() bool {
	return m.Featured && m.Active
}

// Clone returns a deep copy so cached members can be handed out safely.
func (m *TeamMember) Clone() *TeamMember {
	if m == nil {
		return nil
	}
	c := *m
	if m.Specialties != nil {
		c.Specialties = append([]string(nil), m.Specialties...)
	}
	if m.YearsExperience != nil {
		v := *m.YearsExperience
		c.YearsExperience = &v
	}
	return &c
}

// IsAbsoluteURL reports whether s already points at an http(s) location.
func IsAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// TeamMemberInput is the payload for creating a team member.
// ID and timestamps are assigned by the store.
type TeamMemberInput struct {
	Name            string      `json:"name" binding:"required"`
	Position        string      `json:"position" binding:"required"`
	Bio             string      `json:"bio,omitempty"`
	ImageURL        string      `json:"imageUrl,omitempty"`
	ImageFilePath   string      `json:"imageFilePath,omitempty"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	SocialLinks     SocialLinks `json:"socialLinks"`
	Specialties     []string    `json:"specialties,omitempty"`
	YearsExperience *int        `json:"yearsExperience,omitempty"`
	JoinDate        string      `json:"joinDate,omitempty"`
	DisplayOrder    int         `json:"displayOrder"`
	Featured        bool        `json:"featured"`
	Active          bool        `json:"active"`
}

// TeamMemberPatch is a partial update. A nil field is left untouched; a
// non-nil field is written even when it holds the zero value, in which case
// optional columns are cleared. JSON null decodes to a non-nil zero value.
type TeamMemberPatch struct {
	Name            *string      `json:"name,omitempty"`
	Position        *string      `json:"position,omitempty"`
	Bio             *string      `json:"bio,omitempty"`
	ImageURL        *string      `json:"imageUrl,omitempty"`
	ImageFilePath   *string      `json:"imageFilePath,omitempty"`
	Email           *string      `json:"email,omitempty"`
	Phone           *string      `json:"phone,omitempty"`
	SocialLinks     *SocialLinks `json:"socialLinks,omitempty"`
	Specialties     *[]string    `json:"specialties,omitempty"`
	YearsExperience *int         `json:"yearsExperience,omitempty"`
	JoinDate        *string      `json:"joinDate,omitempty"`
	DisplayOrder    *int         `json:"displayOrder,omitempty"`
	Featured        *bool        `json:"featured,omitempty"`
	Active          *bool        `json:"active,omitempty"`
}

// UnmarshalJSON decodes a patch body. A key sent as null counts as present
// and carries the zero value, so {"bio":null} clears bio.
func (p *TeamMemberPatch) UnmarshalJSON(data []byte) error {
	type plain TeamMemberPatch
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if !bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		switch key {
		case "name":
			decoded.Name = new(string)
		case "position":
			decoded.Position = new(string)
		case "bio":
			decoded.Bio = new(string)
		case "imageUrl":
			decoded.ImageURL = new(string)
		case "imageFilePath":
			decoded.ImageFilePath = new(string)
		case "email":
			decoded.Email = new(string)
		case "phone":
			decoded.Phone = new(string)
		case "socialLinks":
			decoded.SocialLinks = &SocialLinks{}
		case "specialties":
			decoded.Specialties = &[]string{}
		case "yearsExperience":
			decoded.YearsExperience = new(int)
		case "joinDate":
			decoded.JoinDate = new(string)
		case "displayOrder":
			decoded.DisplayOrder = new(int)
		case "featured":
			decoded.Featured = new(bool)
		case "active":
			decoded.Active = new(bool)
		}
	}

	*p = TeamMemberPatch(decoded)
	return nil
}

// IsEmpty reports whether the patch carries no fields.
func (p *TeamMemberPatch) IsEmpty() bool {
	return p == nil || *p == TeamMemberPatch{}
}

// TeamMemberFilter narrows list and count queries. Nil fields match anything.
type TeamMemberFilter struct {
	Active   *bool
	Featured *bool
}

// TeamStats holds aggregate counts for the admin dashboard.
type TeamStats struct {
	TotalMembers    int64 `json:"totalMembers"`
	ActiveMembers   int64 `json:"activeMembers"`
	FeaturedMembers int64 `json:"featuredMembers"`
}

// ToggleField names a boolean column that can be flipped in place.
type ToggleField string

const (
	ToggleFeatured ToggleField = "featured"
	ToggleActive   ToggleField = "active"
)

// Valid reports whether f is a known toggle column.
func (f ToggleField) Valid() bool {
	return f == ToggleFeatured || f == ToggleActive
}

// SortTeamMembers orders members by display order, then creation time, then id
// so that equal display orders never flap between reads.
func SortTeamMembers(members []*TeamMember) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
