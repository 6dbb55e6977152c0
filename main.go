package main

import (
	"fachschaft-protokolle/internal/auth"
	"fachschaft-protokolle/internal/config"
	"fachschaft-protokolle/internal/constants"
	"fachschaft-protokolle/internal/database"
	"fachschaft-protokolle/internal/environment"
	"fachschaft-protokolle/internal/locking"
	"fachschaft-protokolle/internal/logging"
	"fachschaft-protokolle/internal/mail"
	"fachschaft-protokolle/internal/middlewares"
	"fachschaft-protokolle/internal/pad"
	"fachschaft-protokolle/internal/protokoll"
	"fachschaft-protokolle/internal/protokolle"
	"fachschaft-protokolle/internal/routes"
	"fmt"
	"github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	c := config.InitConfig()

	logger := logging.InitLogging(c)

	controllerRegistry, err := injectDependencies(c, logger)
	if err != nil {
		logger.LogErrorf(nil, "injecting depencies failed: %s", err.Error())
		return
	}

	ginLogger := logging.InitGinLogger(c)

	gin.DefaultWriter = io.MultiWriter(&zapio.Writer{Log: ginLogger, Level: config.Config().Logging.Level})
	if config.Config().Logging.Level == zap.DebugLevel {
		logger.LogDebug(nil, "Enabling Gin debug (writes to access log)")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		ginzap.GinzapWithConfig(ginLogger, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        false,
			SkipPaths:  []string{"/status", "/heartbeat"},
		}),
		ginzap.RecoveryWithZap(ginLogger, true),
	)

	// Routes
	routes.InitRouter(r, controllerRegistry, c)

	SetupCloseHandler(logger)
	go checkToolchain(c, logger)

	if len(config.Config().ListeningAddress) == 0 && len(config.Config().ListeningPort) == 0 {
		panic("No listening address/port provided")
	}

	logger.LogInfof(nil, "API running. Listening on %s:%s", config.Address(), config.Port())

	err = r.Run(config.Address() + ":" + config.Port())
	if err != nil {
		logger.LogErrorf(nil, "Listening on %s:%s failed: %s", config.Address(), config.Port(), err.Error())
		return
	}
}

func injectDependencies(config *config.Configuration, logger logging.Logger) (map[int]any, error) {
	logType := logging.GetLogTypeInitialization()

	if len(config.Auth.SigningKey) == 0 {
		logger.LogWarn(logType, "no signing key configured, using the built-in development key")
	} else {
		middlewares.SigningKey = config.Auth.SigningKey
	}

	db, err := database.InitDatabase(config, logger)
	if err != nil {
		logger.LogError(nil, "error initializing database: ", err)
		return nil, err
	}

	env := environment.Environment(
		&database.GormRepository{DB: db},
		logger,
	)

	storage := protokoll.Storage{
		Root:    config.Storage.MediaRoot,
		BaseURL: config.Storage.MediaUrl,
		SiteURL: config.SiteBase(),
	}
	templates := &protokoll.DirTemplateLoader{Dir: config.Storage.TemplatesDir}
	padClient := pad.New(config)

	mailSender, err := mail.NewSender(config, logger)
	if err != nil {
		logger.LogErrorf(logType, "Error initializing mail: %v", err)
		return nil, err
	}

	generator := protokoll.NewGenerator(
		env,
		storage,
		&protokoll.SourceResolver{Pad: padClient, Storage: storage, Templates: templates},
		protokoll.NewAssembler(protokoll.NewTagRegistry(), templates),
		protokoll.NewDriver(config.Toolchain.Txt2tags, config.Toolchain.Pdflatex),
	)

	padURL := ""
	if config.Pad.Url != nil && config.Pad.Url.URL != nil {
		padURL = config.Pad.Url.String()
	}

	protokolleController := &protokolle.Controller{
		Env:                env,
		Generator:          generator,
		Storage:            storage,
		Templates:          templates,
		Pad:                padClient,
		Mail:               mailSender,
		Locker:             locking.New(config, logger),
		Sanitizer:          bluemonday.UGCPolicy(),
		MailFrom:           config.Mail.From,
		SiteURL:            config.SiteBase(),
		PadURL:             padURL,
		PadSessionDuration: config.Pad.SessionDuration.Duration,
		Now:                time.Now,
	}

	authController := &auth.Controller{
		Env:         env,
		AuthService: &auth.AuthService{Env: env},
	}

	controllerRegistry := make(map[int]any)
	controllerRegistry[constants.Protokolle] = protokolleController
	controllerRegistry[constants.Auth] = authController

	return controllerRegistry, nil
}

// checkToolchain warns on startup if txt2tags or pdflatex cannot be found.
func checkToolchain(c *config.Configuration, logger logging.Logger) {
	for _, bin := range []string{c.Toolchain.Txt2tags, c.Toolchain.Pdflatex} {
		if _, err := exec.LookPath(bin); err != nil {
			logger.LogWarnf(logging.GetLogTypeInitialization(), "%s not found, generating minutes will fail: %v", bin, err)
		}
	}
}

func SetupCloseHandler(logger logging.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-c
		fmt.Println()
		logger.LogWarnf(nil, "Cleaning up...")
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}()
}
