package identity

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("identity not found")
	ErrEmailTaken = errors.New("email already in use")
	ErrPhoneTaken = errors.New("phone already in use")
)

// Roles a caller may register with. Admin accounts are seeded at
// startup, never self-registered.
const (
	RoleClient     = "client"
	RoleWorker     = "worker"
	RoleThekedar   = "thekedar"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

func IsProviderRole(role string) bool {
	switch role {
	case RoleWorker, RoleThekedar, RoleConsultant:
		return true
	}
	return false
}

// Verification status values for provider document review.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

type Verification struct {
	DocumentURL string     `bson:"documentUrl" json:"documentUrl"`
	Status      string     `bson:"status" json:"status"`
	SubmittedAt time.Time  `bson:"submittedAt" json:"submittedAt"`
	ReviewedAt  *time.Time `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

type User struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Name         string `bson:"name" json:"name"`
	PasswordHash string `bson:"passwordHash" json:"-"` // never expose hash in JSON
	Role         string `bson:"role" json:"role"`
	Verified     bool   `bson:"verified" json:"isVerified"`

	// profile
	Bio       string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Skills    []string `bson:"skills,omitempty" json:"skills,omitempty"`
	City      string   `bson:"city,omitempty" json:"city,omitempty"`
	DailyRate int      `bson:"dailyRate,omitempty" json:"dailyRate,omitempty"`
	AvatarURL string   `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`

	Verification *Verification `bson:"verification,omitempty" json:"verification,omitempty"`

	// password-reset sub-state, cleared after each full cycle
	ResetCode        string     `bson:"resetCode,omitempty" json:"-"`
	ResetCodeExpires *time.Time `bson:"resetCodeExpires,omitempty" json:"-"`
	ResetVerified    bool       `bson:"resetVerified,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasLocalCredential reports whether this account can log in with a
// password at all (federated sign-ins have no hash set).
func (u User) HasLocalCredential() bool {
	return u.PasswordHash != ""
}

// ListFilter narrows admin user listings. Nil pointers mean "any".
type ListFilter struct {
	Role               *string
	VerificationStatus *string
	Limit              int64
}

type UpdateProfileRequest struct {
	Name      string   `json:"name" binding:"required"`
	Bio       string   `json:"bio" binding:"max=2000"`
	Skills    []string `json:"skills" binding:"max=20,dive,max=50"`
	City      string   `json:"city" binding:"max=80"`
	DailyRate int      `json:"dailyRate" binding:"min=0"`
}
