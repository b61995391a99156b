package main

import (
	"context"
	"time"

	"satch-client/internal/app/config"
	"satch-client/internal/app/gateway"
	"satch-client/internal/app/handlers"
	"satch-client/internal/app/journal"
	"satch-client/internal/app/orchestrator"
	"satch-client/internal/app/signer"
	"satch-client/internal/app/workers"
	appbuilder "satch-client/pkg/app_builder"
	"satch-client/pkg/logger"
	"satch-client/pkg/rabbitmq"
	"satch-client/pkg/rest"
	"satch-client/pkg/utilities"
)

const (
	serviceName         = "satch-client"
	logPublisherAlias   = "LogPublisher"
	startupCheckTimeout = 15 * time.Second
)

type builder = appbuilder.AppBuilder[config.SatchClientConfigJson, config.SatchClientConfig]

func main() {
	var (
		gw         *gateway.SolanaGateway
		repository journal.Repository
		service    *orchestrator.Service
		payer      *signer.KeypairSigner
		keyring    *signer.Keyring
		handler    *handlers.Handler
	)

	b := appbuilder.New[config.SatchClientConfigJson, config.SatchClientConfig]().
		InitLogger(logger.GlobalLoggerConfig{
			Args: []logger.LoggerArg{
				{Key: "application", Value: serviceName},
				{Key: "version", Value: "1.0.0"},
			},
		}).
		ResolveEnvironment().
		LoadConfig("config.json").
		WithOption(func(a *builder) {
			// ----- JOURNAL -----
			db, err := journal.Open(a.Config.GetJournalConfig())
			utilities.FailOnError(err, "Unable to open submission journal")
			repository = journal.NewRepository(db)

			// ----- LEDGER -----
			gw, err = gateway.NewSolanaGateway(a.Config.GetSolanaConfig())
			utilities.FailOnError(err, "Unable to create ledger gateway")
			ctx, cancel := context.WithTimeout(context.Background(), startupCheckTimeout)
			defer cancel()
			utilities.FailOnError(gw.ValidateProgram(ctx), "Program is not usable")

			// ----- SIGNERS -----
			orchestratorConf := a.Config.GetOrchestratorConfig()
			payer, err = signer.LoadKeypairSigner(orchestratorConf.PayerKeypairPath)
			utilities.FailOnError(err, "Unable to load payer keypair")
			keyring = signer.NewKeyring(orchestratorConf.KeyringDir, payer)
			a.Logger.Infof("Payer %s loaded", payer.PublicKey())

			// ----- ORCHESTRATOR -----
			service = orchestrator.NewService(gw, gw.ProgramID, orchestratorConf.Options).WithJournal(repository)
			handler = handlers.NewHandler(service, repository, a.Config.GetRestConfig().BaseUrl)
		}).
		InitRabbitmqConnection().
		InitRabbitmqRegistries().
		WithOption(func(a *builder) {
			logPublisher := rabbitmq.GetPublisher(logPublisherAlias)
			if logPublisher == nil {
				a.Logger.Warnf("No %s configured, logs stay local", logPublisherAlias)
				return
			}
			logger.AddSinkToLoggerInstance(logger.Default(), rabbitmq.CreateRabbitmqLoggerSink(serviceName, logPublisher))
		})

	b.AddWorkerServices(
		workers.NewLedgerJobWorker(service, payer, keyring),
		journal.NewReconcileWorker(repository, gw, b.Config.GetJournalConfig()),
	).
		AddGinMiddleware(
			rest.NewMiddleware("*", rest.RequestLogMiddleware()),
			rest.NewMiddleware("*", rest.CORSMiddleware()),
		).
		AddGinRoutes(handler.Routes()...).
		AddSwagger("/v1/openapi.json").
		InitGinRouter().
		Build().
		Start()
}
