package models

import "time"

// RequestStatus defines lifecycle states for registration and account requests.
// pending is the sole initial state; approved and rejected are terminal.
type RequestStatus string

const (
	// RequestStatusPending indicates the request is awaiting admin review.
	RequestStatusPending RequestStatus = "pending"
	// RequestStatusApproved indicates the request was accepted and an account created.
	RequestStatusApproved RequestStatus = "approved"
	// RequestStatusRejected indicates the request was denied with a reason.
	RequestStatusRejected RequestStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// RegistrationRequest is a self-service signup awaiting admin review. The
// password hash is captured at submission time and copied verbatim into the
// user row on approval; it is never echoed to any caller.
type RegistrationRequest struct {
	ID              uint          `gorm:"primaryKey" json:"requestId"`
	Username        string        `gorm:"size:60;not null;index" json:"username"`
	Email           string        `gorm:"size:120;not null;index" json:"email"`
	PasswordHash    string        `gorm:"not null" json:"-"`
	Role            Role          `gorm:"type:varchar(16);not null" json:"role"`
	CompanyName     string        `gorm:"size:160" json:"company_name,omitempty"`
	Address         string        `gorm:"type:text" json:"address,omitempty"`
	Status          RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	RequestedAt     time.Time     `gorm:"not null;index" json:"requested_at"`
	ReviewedAt      *time.Time    `json:"reviewed_at,omitempty"`
	ReviewedBy      *uint         `json:"reviewed_by,omitempty"`
	Reviewer        *User         `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
}

// RequestStats is the per-status breakdown shown on the admin dashboard.
type RequestStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}
