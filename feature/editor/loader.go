package editor

import (
	"github.com/jarmstrongdbrx/data-entry-app/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the table editor feature. client may be nil to run
// without the snapshot archive.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger, schema string) *Feature {
	svc := NewService(db, client, bucket, logger, schema)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "editor"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
