package migration

import (
	"errors"

	authdomain "github.com/printpower/storefront/internal/auth/domain"
	catalogdomain "github.com/printpower/storefront/internal/catalog/domain"
	causedomain "github.com/printpower/storefront/internal/cause/domain"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/events"
	notificationdomain "github.com/printpower/storefront/internal/notification/domain"
	orderdomain "github.com/printpower/storefront/internal/order/domain"
	quotedomain "github.com/printpower/storefront/internal/quote/domain"
	"gorm.io/gorm"
)

// Models is every table the storefront owns.
func Models() []any {
	return []any{
		&authdomain.User{},
		&catalogdomain.Product{},
		&causedomain.Cause{},
		&donationdomain.Donation{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&quotedomain.PressmasterRequest{},
		&notificationdomain.Notification{},
		&events.StoreEvent{},
	}
}

// Run creates or updates the schema so the storefront is usable out of
// the box for local and self-hosted environments.
func Run(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	return db.AutoMigrate(Models()...)
}
