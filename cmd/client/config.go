package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/logging"
	"github.com/OshiSharma1222/starquik/internal/wallet"
)

type config struct {
	APIURL        string            `envconfig:"STARQUIK_API_URL" default:"http://localhost:5000"`
	Secret        string            `envconfig:"STARQUIK_SECRET"`
	Network       string            `envconfig:"STARQUIK_NETWORK" default:"TESTNET"`
	Confirm       bool              `envconfig:"STARQUIK_CONFIRM" default:"true"`
	QuoteDebounce time.Duration     `envconfig:"QUOTE_DEBOUNCE" default:"500ms"`
	SettlePause   time.Duration     `envconfig:"SETTLE_PAUSE" default:"2s"`
	PoolFeeBP     int32             `envconfig:"POOL_FEE_BPS" default:"30"`
	LogFormat     logging.LogFormat `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel      logrus.Level      `envconfig:"LOG_LEVEL" default:"info"`
}

func (c config) walletConfig() (wallet.Config, error) {
	passphrase, err := wallet.Passphrase(c.Network)
	if err != nil {
		return wallet.Config{}, err
	}
	return wallet.Config{
		Passphrase:  passphrase,
		SettlePause: c.SettlePause,
		PoolFeeBP:   c.PoolFeeBP,
	}, nil
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
