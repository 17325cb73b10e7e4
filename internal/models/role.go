package models

// Permission names gating state-changing and export routes.
const (
	PermArticlesWrite      = "articles:write"
	PermDistrictsWrite     = "districts:write"
	PermBeneficiariesWrite = "beneficiaries:write"
	PermFundRequestsWrite  = "fund_requests:write"
	PermExportRun          = "export:run"
	PermAdminAll           = "admin:all"
)

// Role groups permissions; users carry roles through user_roles.
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
}

// Permission is a single named grant.
type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}
