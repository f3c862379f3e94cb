package main

import (
	"flag"
	"fmt"

	C "github.com/wyciszone/fpgrowth-with-weight/config"
	"github.com/wyciszone/fpgrowth-with-weight/filestore"
	H "github.com/wyciszone/fpgrowth-with-weight/handler"
	PS "github.com/wyciszone/fpgrowth-with-weight/pattern_service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	configFilePath := flag.String("config_filepath", "", "Optional: yaml config file")
	envFlag := flag.String("env", C.DEVELOPMENT, "")
	portFlag := flag.Int("port", C.DefaultPort, "")
	storeReportsFlag := flag.Bool("store_reports", false, "Store every run's report through the configured storage")
	flag.Parse()

	config, err := C.Load(*configFilePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "env":
			config.Env = *envFlag
		case "port":
			config.Port = *portFlag
		}
	})
	config.AppName = "pattern_server"
	if err := C.Init(config); err != nil {
		log.WithError(err).Fatal("Invalid config")
	}

	var fileManager filestore.FileManager
	if *storeReportsFlag {
		fileManager, err = config.NewFileManager()
		if err != nil {
			log.WithError(err).Fatal("Failed to init file manager")
		}
	}
	patternService, err := PS.New(config.RunCacheSize, fileManager, config.ReportFormat)
	if err != nil {
		log.WithError(err).Fatal("Failed to init pattern service")
	}

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	H.InitRoutes(r, patternService, config.TopPatterns)

	log.WithField("port", config.Port).Info("Starting pattern server")
	if err := r.Run(fmt.Sprintf(":%d", config.Port)); err != nil {
		log.WithError(err).Fatal("Pattern server stopped")
	}
}
