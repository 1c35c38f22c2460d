package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/api"
	"github.com/OshiSharma1222/starquik/internal/graceful"
	"github.com/OshiSharma1222/starquik/internal/logging"
	"github.com/OshiSharma1222/starquik/internal/metrics"
	"github.com/OshiSharma1222/starquik/internal/stellar"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("failed to load .env: %v", err)
	}

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)
	logger.SetLevel(cfg.LogLevel)

	metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceHTTP, metrics.ServiceLedger}, logger)
	defer func() {
		if metricsServer != nil {
			if err := metricsServer.Stop(context.WithoutCancel(ctx)); err != nil {
				logger.Errorf("failed to stop metrics server: %v", err)
			}
		}
	}()

	ledgerMetrics := metrics.NewLedgerMetrics()
	ledger := stellar.NewClient(cfg.Stellar.HorizonURL, ledgerMetrics)

	// no faucet on networks without one
	var faucet stellar.Faucet
	if cfg.Stellar.FriendbotURL != "" {
		faucet = stellar.NewFriendbot(cfg.Stellar.FriendbotURL, ledgerMetrics)
	}

	network := stellar.NewNetwork(ledger, faucet, cfg.Stellar.buildConfig(), ledgerMetrics, logger)
	srv := api.NewServer(cfg.Server, api.NewHandler(network, network.Query), logger)

	graceful.CancelOnSignal(ctx, cancel, logger)

	logger.WithFields(logrus.Fields{
		"horizon": cfg.Stellar.HorizonURL,
		"network": cfg.Stellar.NetworkPassphrase,
	}).Info("starting stellar api")

	err = srv.Start(ctx)
	if err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
