package main

import (
	"homeserve/internal/catalog/handler"
	"homeserve/internal/catalog/repository"
	"homeserve/internal/catalog/service"
	"homeserve/internal/catalog/validator"
	"homeserve/pkg/app"
	"homeserve/pkg/config"
)

const ServiceName = "catalog"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Catalog service")
	listingService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewListingHandler(listingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ListingService {
	listingValidator := validator.NewListingValidator(cfg.Log)
	listingRepo := repository.NewMongoListingRepository(cfg)
	listingService := service.NewListingService(
		listingRepo,
		listingValidator,
		cfg,
	)

	cfg.Log.Info("Catalog service initialized", "database", cfg.MongoDatabaseName)
	return listingService
}
