package main

import (
	"time"

	"github.com/ecomatch/internal/config"
	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	rating := func(v float64) *float64 { return &v }

	// 添加配送员（巴黎市区附近）
	deliverers := []models.Deliverer{
		{
			Name:              "Nina Laurent",
			Available:         true,
			VehicleType:       constants.VehicleTypeBike,
			VehicleCapacityKg: 15,
			CurrentLat:        48.8566,
			CurrentLng:        2.3522,
			AverageRating:     rating(4.8),
			RatingCount:       126,
		},
		{
			Name:              "Karim Benali",
			Available:         true,
			VehicleType:       constants.VehicleTypeCar,
			VehicleCapacityKg: 120,
			CurrentLat:        48.8606,
			CurrentLng:        2.3376,
			AverageRating:     rating(4.3),
			RatingCount:       58,
		},
		{
			Name:              "Sofia Marques",
			Available:         true,
			VehicleType:       constants.VehicleTypeVan,
			VehicleCapacityKg: 600,
			CurrentLat:        48.8738,
			CurrentLng:        2.2950,
			AverageRating:     nil,
			RatingCount:       0,
		},
		{
			Name:              "Louis Petit",
			Available:         false,
			VehicleType:       constants.VehicleTypeCar,
			VehicleCapacityKg: 100,
			CurrentLat:        48.8529,
			CurrentLng:        2.3499,
			AverageRating:     rating(3.9),
			RatingCount:       41,
		},
	}

	for _, deliverer := range deliverers {
		var existing models.Deliverer
		if err := models.DB.Where("name = ?", deliverer.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&deliverer).Error; err != nil {
				stdLog.Printf("Failed to create deliverer %s: %v", deliverer.Name, err)
			} else {
				stdLog.Printf("Created deliverer: %s", deliverer.Name)
			}
		} else {
			stdLog.Printf("Deliverer already exists: %s", deliverer.Name)
		}
	}

	// 添加公告
	pickupBefore := time.Now().Add(4 * time.Hour)
	announcements := []models.Announcement{
		{
			Reference:       "ANN-2026-0001",
			ClientID:        1,
			Title:           "Documents urgents centre-ville",
			Status:          constants.AnnouncementStatusPublished,
			PickupAddress:   "12 Rue de Rivoli, Paris",
			PickupLat:       48.8556,
			PickupLng:       2.3600,
			DeliveryAddress: "3 Avenue Montaigne, Paris",
			DeliveryLat:     48.8662,
			DeliveryLng:     2.3031,
			PackageCategory: constants.PackageCategoryStandard,
			WeightKg:        2,
			SuggestedPrice:  models.NewMoneyFromFloat(12),
			MaxPrice:        models.NewMoneyFromFloat(20),
			Negotiable:      true,
			PickupBefore:    &pickupBefore,
		},
		{
			Reference:       "ANN-2026-0002",
			ClientID:        2,
			Title:           "Colis fragile électroménager",
			Status:          constants.AnnouncementStatusPublished,
			PickupAddress:   "25 Boulevard Voltaire, Paris",
			PickupLat:       48.8590,
			PickupLng:       2.3700,
			DeliveryAddress: "8 Rue de Vaugirard, Paris",
			DeliveryLat:     48.8480,
			DeliveryLng:     2.3330,
			PackageCategory: constants.PackageCategoryFragile,
			WeightKg:        18,
			SuggestedPrice:  models.NewMoneyFromFloat(25),
			MaxPrice:        models.NewMoneyFromFloat(40),
			Negotiable:      false,
		},
	}

	for _, announcement := range announcements {
		var existing models.Announcement
		if err := models.DB.Where("reference = ?", announcement.Reference).First(&existing).Error; err != nil {
			if err := models.DB.Create(&announcement).Error; err != nil {
				stdLog.Printf("Failed to create announcement %s: %v", announcement.Reference, err)
			} else {
				stdLog.Printf("Created announcement: %s", announcement.Reference)
			}
		} else {
			stdLog.Printf("Announcement already exists: %s", announcement.Reference)
		}
	}

	stdLog.Println("Seed completed")
}
