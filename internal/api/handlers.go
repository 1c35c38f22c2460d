package api

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/OshiSharma1222/starquik/internal/stellar"
)

// Builder builds unsigned intents and forwards signed ones.
type Builder interface {
	Build(ctx context.Context, req stellar.Request) (stellar.Intent, error)
	Submit(ctx context.Context, signedXDR string) (stellar.SubmitResult, error)
	Passphrase() string
}

// Querier serves the read-only endpoints.
type Querier interface {
	GetAccount(ctx context.Context, accountID string) (stellar.Account, error)
	GetPools(ctx context.Context, reserves string) ([]stellar.Pool, error)
	GetPool(ctx context.Context, poolID string) (stellar.Pool, error)
	GetAccountPools(ctx context.Context, accountID string) ([]stellar.PoolShare, error)
	TransactionHistory(ctx context.Context, accountID string, limit int, cursor string) (stellar.TxPage, error)
	Quote(ctx context.Context, source, dest stellar.Asset, amount stellar.Amount) (iter.Seq[stellar.Path], error)
	Assets(ctx context.Context, code string) ([]stellar.AssetRecord, error)
	FundTestnet(ctx context.Context, accountID string) (json.RawMessage, error)
}

type Handler struct {
	builder Builder
	query   Querier
}

func NewHandler(builder Builder, query Querier) *Handler {
	return &Handler{builder: builder, query: query}
}

type BuildResponse struct {
	XDR            string              `json:"xdr"`
	PoolID         string              `json:"poolId,omitempty"`
	ExpectedAmount string              `json:"expectedAmount,omitempty"`
	MinAmount      string              `json:"minAmount,omitempty"`
	Path           []stellar.PathAsset `json:"path,omitzero"`
}

type SubmitRequest struct {
	SignedXDR string `json:"signedXdr"`
}

type FundRequest struct {
	PublicKey string `json:"publicKey"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Network string `json:"network"`
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/api/health", h.health)

	g := e.Group("/api/stellar")
	g.GET("/account/:publicKey", h.getAccount)
	g.GET("/account/:publicKey/transactions", h.getTransactions)
	g.GET("/account/:publicKey/pools", h.getAccountPools)
	g.GET("/pools", h.getPools)
	g.GET("/pools/:poolId", h.getPool)
	g.GET("/quote", h.getQuote)
	g.GET("/assets", h.getAssets)

	g.POST("/build/trustline", buildHandler[stellar.TrustlineRequest](h))
	g.POST("/build/pool-trustline", buildHandler[stellar.PoolTrustlineRequest](h))
	g.POST("/build/deposit", buildHandler[stellar.DepositRequest](h))
	g.POST("/build/withdraw", buildHandler[stellar.WithdrawRequest](h))
	g.POST("/build/swap", buildHandler[stellar.SwapRequest](h))

	g.POST("/submit", h.submit)
	g.POST("/fund-testnet", h.fundTestnet)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Network: h.builder.Passphrase()})
}

func (h *Handler) getAccount(c echo.Context) error {
	acc, err := h.query.GetAccount(c.Request().Context(), c.Param("publicKey"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *Handler) getTransactions(c echo.Context) error {
	// unparsable limits fall back to the default page size
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, err := h.query.TransactionHistory(c.Request().Context(), c.Param("publicKey"), limit, c.QueryParam("cursor"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) getAccountPools(c echo.Context) error {
	shares, err := h.query.GetAccountPools(c.Request().Context(), c.Param("publicKey"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shares)
}

func (h *Handler) getPools(c echo.Context) error {
	pools, err := h.query.GetPools(c.Request().Context(), c.QueryParam("reserves"))
	if err != nil {
		return err
	}
	if pools == nil {
		pools = []stellar.Pool{}
	}
	return c.JSON(http.StatusOK, pools)
}

func (h *Handler) getPool(c echo.Context) error {
	pool, err := h.query.GetPool(c.Request().Context(), c.Param("poolId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pool)
}

func (h *Handler) getQuote(c echo.Context) error {
	source := stellar.Asset{Code: c.QueryParam("sourceCode"), Issuer: c.QueryParam("sourceIssuer")}
	dest := stellar.Asset{Code: c.QueryParam("destCode"), Issuer: c.QueryParam("destIssuer")}

	paths, err := h.query.Quote(c.Request().Context(), source, dest, stellar.Amount(c.QueryParam("amount")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slices.Collect(paths))
}

func (h *Handler) getAssets(c echo.Context) error {
	assets, err := h.query.Assets(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		return err
	}
	if assets == nil {
		assets = []stellar.AssetRecord{}
	}
	return c.JSON(http.StatusOK, assets)
}

func buildHandler[R stellar.Request](h *Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req R
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		intent, err := h.builder.Build(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, BuildResponse{
			XDR:            intent.XDR,
			PoolID:         intent.PoolID,
			ExpectedAmount: intent.ExpectedAmount,
			MinAmount:      intent.MinAmount,
			Path:           intent.Path,
		})
	}
}

func (h *Handler) submit(c echo.Context) error {
	var req SubmitRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := h.builder.Submit(c.Request().Context(), req.SignedXDR)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) fundTestnet(c echo.Context) error {
	var req FundRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	body, err := h.query.FundTestnet(c.Request().Context(), req.PublicKey)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, body)
}

func bindJSON(c echo.Context, v any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil {
		return &stellar.Error{
			Kind:    stellar.KindValidation,
			Message: fmt.Sprintf("invalid request body: %v", err),
			Err:     err,
		}
	}
	return nil
}
