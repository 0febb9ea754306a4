package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ledgerly/ledgerly-backend/config"
	"github.com/ledgerly/ledgerly-backend/database"
	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
	"github.com/ledgerly/ledgerly-backend/internal/auth"
	"github.com/ledgerly/ledgerly-backend/internal/importledger"
	"github.com/ledgerly/ledgerly-backend/internal/organization"
	"github.com/ledgerly/ledgerly-backend/routes"
	"github.com/ledgerly/ledgerly-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	log.Println("running database migrations...")
	if err := db.AutoMigrate(
		&organization.Organization{},
		&auth.Role{},
		&auth.User{},
		&importledger.Import{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	roles, err := auth.SeedRoles(db)
	if err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := auth.SeedSuperAdmin(db, roles, cfg); err != nil {
		log.Fatalf("failed to seed super admin: %v", err)
	}

	rdb := utils.NewRedisClient(cfg)

	var publisher auditlog.Publisher
	if kp := utils.NewKafkaAuditPublisher(cfg); kp != nil {
		defer kp.Close()
		publisher = kp
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.Setup(router, db, cfg, roles, rdb, publisher, utils.NewSMTPMailer(cfg))

	log.Printf("listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
