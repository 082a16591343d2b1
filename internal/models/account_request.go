package models

import "time"

// AccountRequest is the affiliation-proof variant of a signup request: the
// requester uploads a document proving their company affiliation, and the
// admin sets the initial password when approving. It shares the request
// lifecycle states with RegistrationRequest.
type AccountRequest struct {
	ID                       uint          `gorm:"primaryKey" json:"requestId"`
	Username                 string        `gorm:"size:60;not null;index" json:"username"`
	Email                    string        `gorm:"size:120;not null;index" json:"email"`
	CompanyName              string        `gorm:"size:160;not null" json:"company_name"`
	AffiliationProofFileName string        `gorm:"size:255;not null" json:"affiliation_proof_file_name"`
	AffiliationProofPath     string        `gorm:"size:512;not null" json:"-"`
	AffiliationProofType     string        `gorm:"size:100;not null" json:"affiliation_proof_type"`
	Status                   RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNotes               string        `gorm:"type:text" json:"admin_notes,omitempty"`
	RequestedAt              time.Time     `gorm:"not null;index" json:"requested_at"`
	ReviewedAt               *time.Time    `json:"reviewed_at,omitempty"`
	ReviewedBy               *uint         `json:"reviewed_by,omitempty"`
}
