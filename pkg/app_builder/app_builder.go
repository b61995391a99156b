package appbuilder

import (
	"fmt"

	"satch-client/pkg/logger"
	"satch-client/pkg/rabbitmq"
	"satch-client/pkg/rest"
	"satch-client/pkg/utilities"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type AppConfig interface {
	GetLoggerConfig() logger.LoggerConfig
	GetRabbitmqConfig() rabbitmq.RabbitmqConfig
	GetRestApiPort() uint16
}

type AppBuilder[T utilities.JsonConfigObj[U], U AppConfig] struct {
	Logger         *logger.Logger
	Config         U
	Conn           *amqp.Connection
	workerServices []rabbitmq.WorkerService
	middlewares    []rest.Middleware
	routes         []rest.Route
	engine         *gin.Engine
}

func New[T utilities.JsonConfigObj[U], U AppConfig]() *AppBuilder[T, U] {
	return &AppBuilder[T, U]{}
}

func (a *AppBuilder[T, U]) InitLogger(loggerArgs logger.GlobalLoggerConfig) *AppBuilder[T, U] {
	logger.InitDefaultLogger(loggerArgs)
	a.Logger = logger.Default()
	a.Logger.Info("Logger initialized")

	return a
}

// ResolveEnvironment loads .env files before the config so env overrides can see them.
func (a *AppBuilder[T, U]) ResolveEnvironment(files ...string) *AppBuilder[T, U] {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := utilities.LoadEnvFiles(files...); err != nil {
		a.Logger.Error(err, "Failed to load environment files")
		panic(err)
	}
	return a
}

func (a *AppBuilder[T, U]) LoadConfig(filePath string) *AppBuilder[T, U] {
	a.Logger.Infof("Preparing to load config from %s ...", filePath)
	config, err := utilities.ReadConfig[T, U](filePath)
	if err != nil {
		a.Logger.Error(err, "Failed to load config")
		panic(err)
	}

	a.Config = config
	logger.ApplyConfig(config.GetLoggerConfig())
	a.Logger.Info("Config successfully loaded.")
	return a
}

// WithOption runs fn against the builder, for wiring that needs the loaded config.
func (a *AppBuilder[T, U]) WithOption(fn func(a *AppBuilder[T, U])) *AppBuilder[T, U] {
	fn(a)
	return a
}

func (a *AppBuilder[T, U]) InitRabbitmqConnection() *AppBuilder[T, U] {
	a.Logger.Info("Preparing to connect to Rabbitmq server...")
	rabbitmqConfig := a.Config.GetRabbitmqConfig()
	conn, err := rabbitmq.ConnectToRabbitmq(
		rabbitmqConfig.User,
		rabbitmqConfig.Password,
		rabbitmqConfig.Host,
	)
	if err != nil {
		panic(err)
	}

	a.Conn = conn
	a.Logger.Info("Connection with Rabbitmq server established")

	return a
}

func (a *AppBuilder[T, U]) InitRabbitmqRegistries() *AppBuilder[T, U] {
	a.Logger.Info("Initializing Rabbitmq registries from config")
	rabbitmqConf := a.Config.GetRabbitmqConfig()

	ch, err := a.Conn.Channel()
	if err != nil {
		panic(err)
	}
	defer ch.Close()
	if err := rabbitmq.DeclareTopology(ch, rabbitmqConf); err != nil {
		a.Logger.Error(err, "Failed to declare Rabbitmq topology")
		panic(err)
	}

	rabbitmq.InitializeConsumerRegistry(a.Conn, rabbitmqConf.ConsumersConfig)
	rabbitmq.InitializePublisherRegistry(a.Conn, rabbitmqConf.PublishersConfig)
	a.Logger.Info("Successfully initialized Rabbitmq registries from config")

	return a
}

func (a *AppBuilder[T, U]) AddWorkerServices(workerServices ...rabbitmq.WorkerService) *AppBuilder[T, U] {
	a.Logger.Info("Adding Worker Services to Application...")
	a.workerServices = append(a.workerServices, workerServices...)
	return a
}

func (a *AppBuilder[T, U]) AddGinMiddleware(middlewares ...rest.Middleware) *AppBuilder[T, U] {
	a.middlewares = append(a.middlewares, middlewares...)
	return a
}

func (a *AppBuilder[T, U]) AddGinRoutes(routes ...rest.Route) *AppBuilder[T, U] {
	a.Logger.Info("Adding Gin REST API routes to Application...")
	a.routes = append(a.routes, routes...)
	return a
}

// AddSwagger serves the Swagger UI against the document published at docURL.
func (a *AppBuilder[T, U]) AddSwagger(docURL string) *AppBuilder[T, U] {
	a.Logger.Info("Adding SwaggerUI...")
	a.routes = append(a.routes, rest.NewRoute(
		rest.GET,
		"swagger",
		"*any",
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(docURL)),
	))

	return a
}

func (a *AppBuilder[T, U]) InitGinRouter() *AppBuilder[T, U] {
	a.Logger.Info("Initializing Gin Router...")
	router := gin.New()
	router.Use(gin.Recovery())

	a.Logger.Info("Registering REST API routes...")
	rest.Register(router, a.middlewares, a.routes)

	a.engine = router
	a.Logger.Infof("Successfully registered %d REST API routes.", len(a.routes))
	return a
}

func (a *AppBuilder[T, U]) Build() ApplicationInterface {
	return &Application{
		Logger:         a.Logger,
		Addr:           fmt.Sprintf("0.0.0.0:%d", a.Config.GetRestApiPort()),
		Conn:           a.Conn,
		WorkerServices: a.workerServices,
		Engine:         a.engine,
	}
}
