package http

import (
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
	"github.com/hxuan190/pool-sniper/internal/http/httputil"
)

type PoolHandler struct {
	sniper Sniper
}

func NewPoolHandler(sniper Sniper) *PoolHandler {
	return &PoolHandler{sniper: sniper}
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/stats", h.getStats)
	pub.GET("/list", h.listPools)
	pub.GET("/:address", h.getPool)

	admin.POST("/:address/unsubscribe", h.unsubscribe)
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

// PoolStatsResponse summarises what the sniper is tracking
type PoolStatsResponse struct {
	// Number of pools detected since start
	PoolCount int `json:"pool_count" example:"3"`

	// Number of pools whose swap logs are being watched
	SubscriptionCount int `json:"subscription_count" example:"3"`

	// Stage reached by the event processor on its current event
	State string `json:"state" enums:"idle,subscribed,pool_detected,market_keys_resolved,quote_ready" example:"subscribed"`
}

// @Summary Sniper statistics
// @Tags pools
// @Produce json
// @Success 200 {object} httputil.Response{data=PoolStatsResponse}
// @Router /api/v1/pools/stats [get]
func (h *PoolHandler) getStats(c *gin.Context) {
	registry := h.sniper.Registry()
	httputil.Success(c, PoolStatsResponse{
		PoolCount:         registry.Len(),
		SubscriptionCount: registry.SubscriptionCount(),
		State:             h.sniper.State().String(),
	})
}

// PoolInfo is the short form of a detected pool
type PoolInfo struct {
	Address    string    `json:"address" example:"58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"`
	CoinMint   string    `json:"coin_mint" example:"So11111111111111111111111111111111111111112"`
	PcMint     string    `json:"pc_mint" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
	Watched    bool      `json:"watched" example:"true"`
	DetectedAt time.Time `json:"detected_at"`
}

// PoolListResponse is one page of detected pools, newest first
type PoolListResponse struct {
	Pools []PoolInfo `json:"pools"`
	Total int        `json:"total" example:"3"`
	Page  int        `json:"page" example:"1"`
	Limit int        `json:"limit" example:"100"`
	Pages int        `json:"pages" example:"1"`
}

// @Summary List detected pools
// @Tags pools
// @Produce json
// @Param page query int false "Page, 1-indexed"
// @Param limit query int false "Page size, max 500"
// @Success 200 {object} httputil.Response{data=PoolListResponse}
// @Router /api/v1/pools/list [get]
func (h *PoolHandler) listPools(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	page = max(page, 1)
	if limit < 1 {
		limit = 100
	}
	limit = min(limit, 500)

	registry := h.sniper.Registry()
	all := registry.Pools()
	total := len(all)
	offset := min((page-1)*limit, total)
	end := min(offset+limit, total)

	pools := make([]PoolInfo, 0, end-offset)
	for _, pool := range all[offset:end] {
		pools = append(pools, PoolInfo{
			Address:    pool.Address().String(),
			CoinMint:   pool.Amm.CoinMint.String(),
			PcMint:     pool.Amm.PcMint.String(),
			Watched:    registry.HasSubscription(pool.Address()),
			DetectedAt: pool.DetectedAt,
		})
	}

	httputil.Success(c, PoolListResponse{
		Pools: pools,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: (total + limit - 1) / limit,
	})
}

// PoolDetailResponse is a detected pool with its opening reserves and swap activity
type PoolDetailResponse struct {
	Amm                domain.AmmKeys    `json:"amm"`
	InitialCoinBalance uint64            `json:"initial_coin_balance" example:"1000000000"`
	InitialPcBalance   uint64            `json:"initial_pc_balance" example:"2000000000"`
	CreationSignature  string            `json:"creation_signature"`
	DetectedAt         time.Time         `json:"detected_at"`
	Watched            bool              `json:"watched" example:"true"`
	SwapCounts         map[string]uint64 `json:"swap_counts"`
}

// @Summary Pool details
// @Tags pools
// @Produce json
// @Param address path string true "Pool address"
// @Success 200 {object} httputil.Response{data=PoolDetailResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/pools/{address} [get]
func (h *PoolHandler) getPool(c *gin.Context) {
	addr, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		httputil.HandleError(c, common.HTTPErrorBadRequest("invalid pool address"))
		return
	}
	registry := h.sniper.Registry()
	pool, ok := registry.Pool(addr)
	if !ok {
		httputil.HandleError(c, common.HTTPErrorNotFound("pool not found"))
		return
	}

	httputil.Success(c, PoolDetailResponse{
		Amm:                pool.Amm,
		InitialCoinBalance: pool.InitialCoinBalance,
		InitialPcBalance:   pool.InitialPcBalance,
		CreationSignature:  pool.CreationSignature.String(),
		DetectedAt:         pool.DetectedAt,
		Watched:            registry.HasSubscription(addr),
		SwapCounts:         registry.SwapCounts(addr),
	})
}

// @Summary Stop watching a pool's swaps
// @Tags admin
// @Produce json
// @Param address path string true "Pool address"
// @Success 200 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/admin/pools/{address}/unsubscribe [post]
func (h *PoolHandler) unsubscribe(c *gin.Context) {
	addr, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		httputil.HandleError(c, common.HTTPErrorBadRequest("invalid pool address"))
		return
	}
	if !h.sniper.UnsubscribePool(addr) {
		httputil.HandleError(c, common.HTTPErrorNotFound("no live subscription for pool"))
		return
	}
	httputil.Success(c, gin.H{"address": addr.String(), "unsubscribed": true})
}
