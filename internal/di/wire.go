//go:build wireinject
// +build wireinject

package di

import (
	"PriceSim/pkg/config"
	"PriceSim/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideSessionCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideSessionStore,
		ProvideResultPublisher,

		// Core and use cases
		ProvideProjector,
		ProvideSimulator,
		ProvideRecomputer,
		ProvideKafkaRecomputeHandler,

		// Transport
		ProvideHTTPHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
