//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/config"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/httpapi"
)

// InitializeContainer builds a ready-to-serve container.
func InitializeContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger, info httpapi.ServiceInfo) (*Container, func(), error) {
	wire.Build(ServerSet)
	return nil, nil, nil
}

// InitializeStore builds the connection used by the maintenance commands.
func InitializeStore(cfg *config.Config, logger *zap.Logger) (*Store, func(), error) {
	wire.Build(StoreSet, wire.Struct(new(Store), "*"))
	return nil, nil, nil
}
