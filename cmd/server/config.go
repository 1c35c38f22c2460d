package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/api"
	"github.com/OshiSharma1222/starquik/internal/logging"
	"github.com/OshiSharma1222/starquik/internal/metrics"
	"github.com/OshiSharma1222/starquik/internal/stellar"
)

type config struct {
	LogFormat logging.LogFormat `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  logrus.Level      `envconfig:"LOG_LEVEL" default:"info"`
	Server    api.Config
	Stellar   stellarConfig
	Metrics   metrics.Config
}

type stellarConfig struct {
	HorizonURL        string          `envconfig:"HORIZON_URL" default:"https://horizon-testnet.stellar.org"`
	NetworkPassphrase string          `envconfig:"NETWORK_PASSPHRASE" default:"Test SDF Network ; September 2015"`
	FriendbotURL      string          `envconfig:"FRIENDBOT_URL" default:"https://friendbot.stellar.org"`
	TxTimeout         time.Duration   `envconfig:"TX_TIMEOUT" default:"180s"`
	BaseFee           int64           `envconfig:"BASE_FEE" default:"100"`
	PoolFeeBP         int32           `envconfig:"POOL_FEE_BPS" default:"30"`
	DepositMinPrice   string          `envconfig:"DEPOSIT_MIN_PRICE" default:"0.0000001"`
	DepositMaxPrice   string          `envconfig:"DEPOSIT_MAX_PRICE" default:"100000000"`
	DefaultSlippage   decimal.Decimal `envconfig:"DEFAULT_SLIPPAGE" default:"1"`
}

func (c stellarConfig) buildConfig() stellar.BuildConfig {
	cfg := stellar.DefaultBuildConfig(c.NetworkPassphrase)
	cfg.BaseFee = c.BaseFee
	cfg.Timeout = c.TxTimeout
	cfg.PoolFeeBP = c.PoolFeeBP
	cfg.DepositMinPrice = c.DepositMinPrice
	cfg.DepositMaxPrice = c.DepositMaxPrice
	cfg.DefaultSlippage = c.DefaultSlippage
	return cfg
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
