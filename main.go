package main

import (
	"time"

	"github.com/salesboost/salesboost/config"
	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/routes"
	"github.com/salesboost/salesboost/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Campaign{},
		&models.Challenge{},
		&models.Action{},
		&models.ActionCompletion{},
		&models.BonusDeclaration{},
		&models.CampaignValidation{},
		&models.EvidenceFile{},
		&models.Activity{},
	)

	r := routes.SetupRouter(db)

	// Background sweep for evidence rows whose owners are gone (best-effort)
	utils.StartEvidenceCleaner(time.Duration(cfg.EvidenceSweepMin) * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
