package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/database/mongoclient"
	"github.com/mspark/gemapi/base/log"
	bValidator "github.com/mspark/gemapi/base/validator"
	mmiddleware "github.com/mspark/gemapi/middleware"
	"github.com/mspark/gemapi/service/coingate"
	"github.com/mspark/gemapi/service/mailer"
	"github.com/mspark/gemapi/service/query"
	"github.com/mspark/gemapi/service/scheduler"
	scheduler_delivery "github.com/mspark/gemapi/service/scheduler/delivery/http"
	account_repository "github.com/mspark/gemapi/stores/account/repository"
	auction_delivery "github.com/mspark/gemapi/stores/auction/delivery/http"
	auction_repository "github.com/mspark/gemapi/stores/auction/repository"
	auction_usecase "github.com/mspark/gemapi/stores/auction/usecase"
	auth_delivery "github.com/mspark/gemapi/stores/auth/delivery/http"
	auth_middleware "github.com/mspark/gemapi/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/mspark/gemapi/stores/auth/usecase"
	bid_delivery "github.com/mspark/gemapi/stores/bid/delivery/http"
	bid_repository "github.com/mspark/gemapi/stores/bid/repository"
	bid_usecase "github.com/mspark/gemapi/stores/bid/usecase"
	gem_repository "github.com/mspark/gemapi/stores/gem/repository"
	hc_delivery "github.com/mspark/gemapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/mspark/gemapi/stores/healthcheck/repository"
	hc_usecase "github.com/mspark/gemapi/stores/healthcheck/usecase"
	mspark_repository "github.com/mspark/gemapi/stores/mspark/repository"
	payment_delivery "github.com/mspark/gemapi/stores/payment/delivery/http"
	payment_repository "github.com/mspark/gemapi/stores/payment/repository"
	payment_usecase "github.com/mspark/gemapi/stores/payment/usecase"
)

func init() {
	configFile := pflag.String("config", "infra/configs/config.yaml", "path to config file")
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init gateway client
	gateway := coingate.NewClient(&coingate.ClientCfg{
		HttpClient: http.Client{},
		Timeout:    viper.GetDuration("coingate.timeout"),
		ApiUrl:     viper.GetString("coingate.apiUrl"),
		ApiKey:     viper.GetString("coingate.apiKey"),
	})

	// init mailer
	mailerSvc := mailer.New(&mailer.Cfg{
		Host:     viper.GetString("mail.host"),
		Port:     viper.GetInt("mail.port"),
		Username: viper.GetString("mail.username"),
		Password: viper.GetString("mail.password"),
		From:     viper.GetString("mail.from"),
	})

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient)
	accountRepo := account_repository.New(q)
	gemRepo := gem_repository.New(q)
	msparkRepo := mspark_repository.New(q)
	auctionRepo := auction_repository.New(q)
	bidRepo := bid_repository.New(q)
	paymentRepo := payment_repository.New(q)

	schedulerSvc := scheduler.New(&scheduler.Cfg{
		AuctionRepo: auctionRepo,
		MaxAttempts: viper.GetInt("scheduler.maxAttempts"),
		RetryDelay:  viper.GetDuration("scheduler.retryDelay"),
	})

	apiUrl := viper.GetString("server.apiUrl")
	clientUrl := viper.GetString("server.clientUrl")

	hc := hc_usecase.New(hcRepo)
	paymentUC := payment_usecase.New(&payment_usecase.PaymentUseCaseCfg{
		PaymentRepo:     paymentRepo,
		AuctionRepo:     auctionRepo,
		AccountRepo:     accountRepo,
		GemRepo:         gemRepo,
		MsparkRepo:      msparkRepo,
		Gateway:         gateway,
		Mailer:          mailerSvc,
		ApiUrl:          apiUrl,
		ClientUrl:       clientUrl,
		PriceCurrency:   viper.GetString("coingate.priceCurrency"),
		ReceiveCurrency: viper.GetString("coingate.receiveCurrency"),
	})
	auctionUC := auction_usecase.New(&auction_usecase.AuctionUseCaseCfg{
		AuctionRepo: auctionRepo,
		GemRepo:     gemRepo,
		Scheduler:   schedulerSvc,
		Settlement:  paymentUC,
		Query:       q,
	})
	bidUC := bid_usecase.New(&bid_usecase.BidUseCaseCfg{
		BidRepo:     bidRepo,
		AuctionRepo: auctionRepo,
		AccountRepo: accountRepo,
		GemRepo:     gemRepo,
		Completer:   auctionUC,
		Mailer:      mailerSvc,
		Query:       q,
		ClientUrl:   clientUrl,
	})
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), accountRepo)

	authMiddleware := auth_middleware.New(auth)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth)
	auction_delivery.New(e, authMiddleware, auctionUC)
	bid_delivery.New(e, authMiddleware, bidUC)
	payment_delivery.New(e, authMiddleware, paymentUC)
	scheduler_delivery.New(e, authMiddleware, schedulerSvc)

	// auction usecase completes, scheduler fires; wire them up after both
	// exist, then recover pending timers
	if err := schedulerSvc.Start(context, auctionUC); err != nil {
		log.Log().WithField("err", err).Panic("scheduler start failed")
	}

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	schedulerSvc.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
