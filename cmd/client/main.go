package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/graceful"
	"github.com/OshiSharma1222/starquik/internal/logging"
	"github.com/OshiSharma1222/starquik/internal/stellar"
	"github.com/OshiSharma1222/starquik/internal/wallet"
)

type app struct {
	cfg    config
	client *wallet.Client
	logger *logrus.Logger
	stdin  *bufio.Scanner

	// set only for commands that sign
	orchestrator *wallet.Orchestrator
}

type command struct {
	usage string
	signs bool
	run   func(ctx context.Context, a *app, args []string) error
}

const (
	usageQuote            = "quote SOURCE DEST   (amounts are read from stdin)"
	usageTrustline        = "trustline CODE:ISSUER"
	usageSwap             = "swap SOURCE DEST AMOUNT [SLIPPAGE]"
	usageProvideLiquidity = "provide-liquidity ASSET_A ASSET_B MAX_A MAX_B [MIN_PRICE MAX_PRICE]"
	usageWithdraw         = "withdraw POOL_ID SHARES [MIN_A MIN_B]"
)

var commands = map[string]command{
	"health":            {usage: "health", run: health},
	"account":           {usage: "account [ACCOUNT]", run: account},
	"pools":             {usage: "pools [ACCOUNT]", run: pools},
	"market":            {usage: "market [ASSET...]", run: market},
	"history":           {usage: "history [-limit N] [-cursor C] [ACCOUNT]", run: history},
	"assets":            {usage: "assets [CODE]", run: assets},
	"quote":             {usage: usageQuote, run: quote},
	"fund":              {usage: "fund [ACCOUNT]", run: fund},
	"trustline":         {usage: usageTrustline, signs: true, run: trustline},
	"swap":              {usage: usageSwap, signs: true, run: swap},
	"provide-liquidity": {usage: usageProvideLiquidity, signs: true, run: provideLiquidity},
	"withdraw":          {usage: usageWithdraw, signs: true, run: withdraw},
}

func main() {
	flag.Usage = usage
	flag.Parse()

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("failed to load .env: %v", err)
	}
	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	graceful.CancelOnSignal(ctx, cancel, logger)

	a := &app{
		cfg:    cfg,
		client: wallet.NewClient(cfg.APIURL),
		logger: logger,
		stdin:  bufio.NewScanner(os.Stdin),
	}
	if cmd.signs {
		if err := a.setupSigner(); err != nil {
			logger.Fatalf("failed to set up signer: %v", err)
		}
	}

	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		logger.WithField("kind", stellar.KindOf(err)).Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s COMMAND [ARGS]\n\ncommands:\n", os.Args[0])
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func (a *app) setupSigner() error {
	if a.cfg.Secret == "" {
		return errors.New("STARQUIK_SECRET is required")
	}
	walletCfg, err := a.cfg.walletConfig()
	if err != nil {
		return err
	}

	var signer wallet.Signer
	signer, err = wallet.NewKeypairSigner(a.cfg.Secret)
	if err != nil {
		return err
	}
	if a.cfg.Confirm {
		signer = wallet.NewConfirmingSigner(signer, a.confirm)
	}

	a.orchestrator = wallet.NewOrchestrator(a.client, signer, wallet.NewLogNotifier(a.logger), walletCfg, a.logger)
	return nil
}

func (a *app) confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	if !a.stdin.Scan() {
		if err := a.stdin.Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(a.stdin.Text()))
	return answer == "y" || answer == "yes", nil
}

// accountArg falls back to the signing key when no account is given.
func (a *app) accountArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.cfg.Secret == "" {
		return "", errors.New("an account id or STARQUIK_SECRET is required")
	}
	s, err := wallet.NewKeypairSigner(a.cfg.Secret)
	if err != nil {
		return "", err
	}
	return s.PublicKey(), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
