package main

import (
	"report_api/internal/config"
	"report_api/internal/database"
	"report_api/internal/di"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}
	logger := di.NewLogger(cfg)

	// Миграции нужны даже при выключенной истории, если задан DSN
	dbCfg := database.FromAppConfig(cfg)
	dbCfg.Debug = true

	db, err := database.NewDatabase(dbCfg)
	if err != nil {
		logger.WithError(err).Fatal("Не удалось подключиться к базе данных")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Не удалось выполнить миграции")
	}

	logger.Info("Миграции выполнены успешно")
}
