package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/config"
	contentdomain "github.com/opencitizen/notifstore/internal/content/domain"
	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
	demandtypedomain "github.com/opencitizen/notifstore/internal/demandtype/domain"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	statusdomain "github.com/opencitizen/notifstore/internal/status/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)

// AutoMigrate creates the schema from the models. Used for the non-postgres
// dialects, sqlite test databases included.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&demanddomain.Demand{},
		&demanddomain.Notification{},
		&contentdomain.NotificationContent{},
		&statusdomain.DemandStatus{},
		&eventdomain.NotificationEvent{},
		&demandtypedomain.DemandType{},
	)
}
