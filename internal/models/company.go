package models

import "time"

// Company is the mining company profile created alongside an approved
// company-role account. Exactly one company exists per company user.
type Company struct {
	ID               uint      `gorm:"primaryKey" json:"companyId"`
	CompanyName      string    `gorm:"size:160;not null" json:"company_name"`
	Address          string    `gorm:"type:text" json:"address"`
	RegistrationDate time.Time `gorm:"not null" json:"registration_date"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User             *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
