package providers

import (
	"github.com/samber/do/v2"

	"github.com/illustash/illustash-server/internal/logger"
	"github.com/illustash/illustash-server/internal/service"
)

// ProvideSearchService provides the illustration search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, log.Logger), nil
}
