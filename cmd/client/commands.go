package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/OshiSharma1222/starquik/internal/stellar"
	"github.com/OshiSharma1222/starquik/internal/wallet"
)

func health(ctx context.Context, a *app, _ []string) error {
	res, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func account(ctx context.Context, a *app, args []string) error {
	id, err := a.accountArg(args)
	if err != nil {
		return err
	}
	acc, err := a.client.Account(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(acc)
}

func pools(ctx context.Context, a *app, args []string) error {
	id, err := a.accountArg(args)
	if err != nil {
		return err
	}
	shares, err := a.client.AccountPools(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(shares)
}

func market(ctx context.Context, a *app, args []string) error {
	res, err := a.client.Pools(ctx, args...)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func history(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", stellar.DefaultHistoryLimit, "page size")
	cursor := fs.String("cursor", "", "paging token of the last seen transaction")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.accountArg(fs.Args())
	if err != nil {
		return err
	}
	page, err := a.client.Transactions(ctx, id, *limit, *cursor)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func assets(ctx context.Context, a *app, args []string) error {
	var code string
	if len(args) > 0 {
		code = args[0]
	}
	res, err := a.client.Assets(ctx, code)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func fund(ctx context.Context, a *app, args []string) error {
	id, err := a.accountArg(args)
	if err != nil {
		return err
	}
	res, err := a.client.FundTestnet(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(res)
}

// quote reads one amount per line and prints the quote for the latest one.
func quote(ctx context.Context, a *app, args []string) error {
	if err := need(args, 2, usageQuote); err != nil {
		return err
	}
	source, dest, err := parsePair(args[0], args[1])
	if err != nil {
		return err
	}

	w := wallet.NewQuoteWatcher(a.client, a.cfg.QuoteDebounce, func(r wallet.QuoteResult) {
		switch {
		case r.Err != nil:
			a.logger.WithField("amount", r.Request.Amount).Warn(r.Err)
		case len(r.Paths) == 0:
			fmt.Println("-")
		default:
			best := r.Paths[0]
			fmt.Printf("%s %s -> %s %s (%d hops)\n",
				r.Request.Amount, source, best.DestinationAmount, dest, len(best.Path))
		}
	})
	defer w.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for a.stdin.Scan() {
			lines <- a.stdin.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			w.Update(wallet.QuoteRequest{Source: source, Dest: dest, Amount: strings.TrimSpace(line)})
		}
	}
}

func trustline(ctx context.Context, a *app, args []string) error {
	if err := need(args, 1, usageTrustline); err != nil {
		return err
	}
	asset, err := stellar.ParseAsset(args[0])
	if err != nil {
		return err
	}
	res, err := a.orchestrator.Do(ctx, stellar.TrustlineRequest{
		PublicKey:   a.orchestrator.PublicKey(),
		AssetCode:   asset.Code,
		AssetIssuer: asset.Issuer,
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func swap(ctx context.Context, a *app, args []string) error {
	if err := need(args, 3, usageSwap); err != nil {
		return err
	}
	source, dest, err := parsePair(args[0], args[1])
	if err != nil {
		return err
	}
	req := stellar.SwapRequest{
		PublicKey:   a.orchestrator.PublicKey(),
		SourceAsset: source,
		DestAsset:   dest,
		Amount:      stellar.Amount(args[2]),
	}
	if len(args) > 3 {
		req.Slippage = stellar.Amount(args[3])
	}
	res, err := a.orchestrator.Do(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func provideLiquidity(ctx context.Context, a *app, args []string) error {
	if err := need(args, 4, usageProvideLiquidity); err != nil {
		return err
	}
	assetA, assetB, err := parsePair(args[0], args[1])
	if err != nil {
		return err
	}
	req := wallet.LiquidityRequest{
		AssetA:     assetA,
		AssetB:     assetB,
		MaxAmountA: args[2],
		MaxAmountB: args[3],
	}
	if len(args) >= 6 {
		req.MinPrice, req.MaxPrice = args[4], args[5]
	}
	results, err := a.orchestrator.ProvideLiquidity(ctx, req)
	if perr := printJSON(results); perr != nil {
		return perr
	}
	return err
}

func withdraw(ctx context.Context, a *app, args []string) error {
	if err := need(args, 2, usageWithdraw); err != nil {
		return err
	}
	req := stellar.WithdrawRequest{
		PublicKey: a.orchestrator.PublicKey(),
		PoolID:    args[0],
		Amount:    stellar.Amount(args[1]),
	}
	if len(args) >= 4 {
		req.MinAmountA, req.MinAmountB = stellar.Amount(args[2]), stellar.Amount(args[3])
	}
	res, err := a.orchestrator.Do(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func parsePair(a, b string) (stellar.Asset, stellar.Asset, error) {
	first, err := stellar.ParseAsset(a)
	if err != nil {
		return stellar.Asset{}, stellar.Asset{}, err
	}
	second, err := stellar.ParseAsset(b)
	if err != nil {
		return stellar.Asset{}, stellar.Asset{}, err
	}
	return first, second, nil
}
