package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"video-optimizer/config"
	"video-optimizer/database"
	"video-optimizer/ffmpeg"
	"video-optimizer/handlers"
	"video-optimizer/recipes"
	"video-optimizer/videos"
	"video-optimizer/workers"
)

func serve() {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	// the frontend is served separately
	e.Use(middleware.CORS())

	e.GET("/api/videos", handlers.VideosAll)
	e.GET("/api/videos/status/count", handlers.StatusCounts)
	e.GET("/api/videos/:status", handlers.VideosByStatus)
	e.POST("/api/videos/:id/status", handlers.StatusPost)
	e.DELETE("/api/videos/:id", handlers.VideoDelete)
	e.GET("/api/system/status", handlers.SystemStatus)

	e.Logger.Fatal(e.Start(config.GetListenAddr()))
}

func startPreparer() {
	gen, err := recipes.NewOpenAIGenerator()
	if err != nil {
		log.Panicf("cannot start preparer: %v", err)
	}
	workers.Preparer(gen)
}

func main() {
	// optional .env for local runs; real deployments set the environment
	godotenv.Load()

	initLogger()

	ffmpeg.Init(log)
	handlers.Init(log)
	recipes.Init(log)
	videos.Init(log)
	workers.Init(log)

	dbPath := config.GetDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		log.Panicf("failed to create db dir for %s", dbPath)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Panicf("failed to connect to database %s: %v", dbPath, err)
	}

	if err := db.AutoMigrate(&videos.Video{}); err != nil {
		log.Panicf("failed to migrate database: %v", err)
	}

	database.Init(db, log)
	defer database.Fini()

	role := "all"
	if len(os.Args) > 1 {
		role = os.Args[1]
	}

	switch role {
	case "serve":
		serve()
	case "scanner":
		workers.Scanner()
	case "preparer":
		startPreparer()
	case "processor":
		workers.Processor()
	case "mover":
		workers.Mover()
	case "approver":
		workers.Approver()
	case "reaper":
		workers.Reaper()
	case "all":
		go workers.Scanner()
		go startPreparer()
		go workers.Processor()
		go workers.Mover()
		go workers.Approver()
		go workers.Reaper()
		serve()
	default:
		log.Panicf("unknown role %q (want serve|scanner|preparer|processor|mover|approver|reaper|all)", role)
	}
}
