package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookdueapp/bookdue-server/internal/auth"
	"github.com/bookdueapp/bookdue-server/internal/importer"
	"github.com/bookdueapp/bookdue-server/internal/logger"
	"github.com/bookdueapp/bookdue-server/internal/service"
	"github.com/bookdueapp/bookdue-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	validate := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, validate, log.Logger), nil
}

// ProvideDeadlineService provides the deadline service.
func ProvideDeadlineService(i do.Injector) (*service.DeadlineService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validate := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDeadlineService(storeHandle.Store, validate, log.Logger), nil
}

// ProvidePaceService provides the pace service.
func ProvidePaceService(i do.Injector) (*service.PaceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPaceService(storeHandle.Store, log.Logger), nil
}

// ProvideAchievementService provides the achievement service.
func ProvideAchievementService(i do.Injector) (*service.AchievementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAchievementService(storeHandle.Store, log.Logger), nil
}

// ProvideImporter provides the backup importer.
func ProvideImporter(i do.Injector) (*importer.Importer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return importer.NewImporter(storeHandle.Store, log.Logger), nil
}
