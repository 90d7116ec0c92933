package models

import "strings"

// Role gates which parts of the portal a user may reach.
type Role string

const (
	RolePatient       Role = "Patient"
	RoleDoctor        Role = "Doctor"
	RoleHospitalAdmin Role = "Hospital Admin"
)

// ParseRole accepts the display names plus a few loose spellings ("hospital_admin", "admin").
func ParseRole(raw string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	switch normalized {
	case "patient":
		return RolePatient, true
	case "doctor":
		return RoleDoctor, true
	case "hospital admin", "admin":
		return RoleHospitalAdmin, true
	}
	return "", false
}

type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "Verified"
	VerificationPending  VerificationStatus = "Pending"
	VerificationRejected VerificationStatus = "Rejected"
)

// UserModel is a portal account. VerificationStatus gates doctors and marks
// patient accounts active (Verified) or suspended (Rejected).
type UserModel struct {
	Base
	Name               string             `json:"name"                         gorm:"not null"`
	Email              string             `json:"email"                        gorm:"uniqueIndex;not null"`
	Role               Role               `json:"role"                         gorm:"type:varchar(32);index;not null"`
	AvatarURL          string             `json:"avatarUrl"`
	VerificationStatus VerificationStatus `json:"verificationStatus,omitempty" gorm:"type:varchar(16)"`
}

func (UserModel) TableName() string { return "users" }

// CanSummarize reports whether the user may request AI record summaries.
func (u *UserModel) CanSummarize() bool {
	return u != nil && u.Role == RoleDoctor && u.VerificationStatus == VerificationVerified
}
