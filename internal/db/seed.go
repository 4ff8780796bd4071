package db

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clubops/billing/internal/models"
)

// Seed inserts a small dev fixture set: one tenant's members and a stored
// payment method each. Idempotent; keyed on email within the dev tenant.
func Seed(db *gorm.DB) {
	const tenant = "tenant-dev"
	members := []models.Member{
		{TenantID: tenant, Email: "ada@example.org", Name: "Ada Lovelace", Active: true},
		{TenantID: tenant, Email: "grace@example.org", Name: "Grace Hopper", Active: true},
	}
	for _, m := range members {
		var existing models.Member
		if err := db.Where("tenant_id = ? AND email = ?", tenant, m.Email).First(&existing).Error; err == gorm.ErrRecordNotFound {
			m.ID = uuid.NewString()
			if db.Create(&m).Error == nil {
				pm := models.PaymentMethod{
					ID:       uuid.NewString(),
					TenantID: tenant,
					MemberID: m.ID,
					Status:   models.PaymentMethodActive,
					Label:    "Dev card",
					Brand:    "visa",
					Last4:    "4242",
					ExpMonth: 12,
					ExpYear:  2030,
				}
				db.Create(&pm)
			}
		}
	}
}
