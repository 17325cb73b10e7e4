package database

import (
	"fmt"

	"aidtrack/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Session{},
		&models.Article{},
		&models.District{},
		&models.DistrictEntry{},
		&models.PublicEntry{},
		&models.InstitutionEntry{},
		&models.FundRequest{},
		&models.FundRequestRecipient{},
		&models.FundRequestArticleRow{},
		&models.DraftSnapshot{},
		&models.Sequence{},
		&models.AuditLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedRoles inserts the built-in roles and permissions when missing.
// admin gets admin:all; operator can write everything but not export or
// administer; viewer is read-only (no permissions, only authenticated reads).
func SeedRoles(db *gorm.DB) error {
	perms := []models.Permission{
		{Name: models.PermArticlesWrite, Description: "manage the article catalog"},
		{Name: models.PermDistrictsWrite, Description: "manage districts"},
		{Name: models.PermBeneficiariesWrite, Description: "record beneficiary entries"},
		{Name: models.PermFundRequestsWrite, Description: "create and edit fund requests"},
		{Name: models.PermExportRun, Description: "export data files"},
		{Name: models.PermAdminAll, Description: "full access"},
	}
	for i := range perms {
		if err := db.Where(models.Permission{Name: perms[i].Name}).
			FirstOrCreate(&perms[i]).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", perms[i].Name, err)
		}
	}

	byName := make(map[string]models.Permission, len(perms))
	for _, p := range perms {
		byName[p.Name] = p
	}

	roles := []struct {
		name, desc string
		perms      []string
	}{
		{"admin", "full access", []string{models.PermAdminAll}},
		{"operator", "data entry staff", []string{
			models.PermArticlesWrite,
			models.PermDistrictsWrite,
			models.PermBeneficiariesWrite,
			models.PermFundRequestsWrite,
		}},
		{"viewer", "read-only access", nil},
	}
	for _, r := range roles {
		var role models.Role
		if err := db.Where(models.Role{Name: r.name}).
			Attrs(models.Role{Description: r.desc}).
			FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r.name, err)
		}
		var rp []models.Permission
		for _, n := range r.perms {
			rp = append(rp, byName[n])
		}
		if len(rp) > 0 {
			if err := db.Model(&role).Association("Permissions").Replace(rp); err != nil {
				return fmt.Errorf("seed role permissions %s: %w", r.name, err)
			}
		}
	}
	return nil
}
