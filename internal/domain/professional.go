package domain

import (
	"time"
)

type WorkModality string

const (
	WorkModalityInPerson WorkModality = "in_person"
	WorkModalityOnline   WorkModality = "online"
	WorkModalityMixed    WorkModality = "mixed"
)

type Professional struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	Specialty       string       `json:"specialty"`
	SpecialtyOther  *string      `json:"specialty_other,omitempty"`
	LicenseNumber   string       `json:"license_number"`
	MainFocus       string       `json:"main_focus,omitempty"`
	WorkModality    WorkModality `json:"work_modality"`
	Languages       *string      `json:"languages,omitempty"`
	ExperienceYears *int         `json:"experience_years,omitempty"`
	CertificateURL  *string      `json:"certificate_url,omitempty"`
	CVURL           *string      `json:"cv_url,omitempty"`
	CasesAttended   int          `json:"cases_attended"`
	Rating          float64      `json:"rating"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	// Заполняется джойном с users
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type CreateProfessionalDTO struct {
	Specialty       string       `json:"specialty" binding:"required"`
	SpecialtyOther  *string      `json:"specialty_other"`
	LicenseNumber   string       `json:"license_number" binding:"required"`
	MainFocus       string       `json:"main_focus"`
	WorkModality    WorkModality `json:"work_modality" binding:"required,oneof=in_person online mixed"`
	Languages       *string      `json:"languages"`
	ExperienceYears *int         `json:"experience_years"`
}

type UpdateProfessionalDTO struct {
	Specialty       *string       `json:"specialty"`
	SpecialtyOther  *string       `json:"specialty_other"`
	LicenseNumber   *string       `json:"license_number"`
	MainFocus       *string       `json:"main_focus"`
	WorkModality    *WorkModality `json:"work_modality" binding:"omitempty,oneof=in_person online mixed"`
	Languages       *string       `json:"languages"`
	ExperienceYears *int          `json:"experience_years"`
}

type ProfessionalFilter struct {
	Specialty    *string       `json:"specialty"`
	WorkModality *WorkModality `json:"work_modality"`
	Query        *string       `json:"query"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}
