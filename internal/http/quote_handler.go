package http

import (
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
	"github.com/hxuan190/pool-sniper/internal/http/httputil"
	"github.com/hxuan190/pool-sniper/internal/metrics"
	"github.com/hxuan190/pool-sniper/internal/services/quote"
)

type QuoteHandler struct {
	sniper Sniper
}

func NewQuoteHandler(sniper Sniper) *QuoteHandler {
	return &QuoteHandler{sniper: sniper}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest prices a swap against the reserves a pool opened with
type QuoteRequest struct {
	// Detected pool address
	Pool string `form:"pool" binding:"required" example:"58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"`

	// Amount in smallest units; input for ExactIn, output for ExactOut
	Amount string `form:"amount" binding:"required" example:"100000000"`

	SwapMode string `form:"swapMode" enums:"ExactIn,ExactOut" example:"ExactIn"`

	// Which vault receives the input
	Direction string `form:"direction" enums:"coin2pc,pc2coin" example:"coin2pc"`

	// Slippage tolerance in basis points, default 1000
	SlippageBps *uint64 `form:"slippageBps" example:"1000"`
}

// QuoteResponse is a constant-product quote with its slippage bound
type QuoteResponse struct {
	Pool       string `json:"pool"`
	InputMint  string `json:"input_mint"`
	OutputMint string `json:"output_mint"`
	SwapMode   string `json:"swap_mode" example:"ExactIn"`
	domain.SwapQuote
	TimeTaken float64 `json:"time_taken" example:"0.00002"`
}

// @Summary Quote a swap on a detected pool
// @Tags quote
// @Produce json
// @Param pool query string true "Pool address"
// @Param amount query string true "Amount in smallest units"
// @Param swapMode query string false "ExactIn or ExactOut" Enums(ExactIn, ExactOut)
// @Param direction query string false "coin2pc or pc2coin" Enums(coin2pc, pc2coin)
// @Param slippageBps query int false "Slippage in bps"
// @Success 200 {object} httputil.Response{data=QuoteResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	start := time.Now()

	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleError(c, common.HTTPErrorBadRequest(err.Error()))
		return
	}

	swapMode := req.SwapMode
	if swapMode == "" {
		swapMode = "ExactIn"
	}
	if swapMode != "ExactIn" && swapMode != "ExactOut" {
		httputil.HandleError(c, common.HTTPErrorBadRequest("swapMode must be ExactIn or ExactOut"))
		return
	}
	exactIn := swapMode == "ExactIn"

	direction := domain.Coin2PC
	if req.Direction != "" {
		d, ok := domain.ParseSwapDirection(req.Direction)
		if !ok {
			httputil.HandleError(c, common.HTTPErrorBadRequest("direction must be coin2pc or pc2coin"))
			return
		}
		direction = d
	}

	amount, err := strconv.ParseUint(req.Amount, 10, 64)
	if err != nil {
		httputil.HandleError(c, common.HTTPErrorBadRequest("invalid amount"))
		return
	}
	slippage := uint64(common.DefaultSlippageBps)
	if req.SlippageBps != nil {
		slippage = *req.SlippageBps
	}

	addr, err := solana.PublicKeyFromBase58(req.Pool)
	if err != nil {
		httputil.HandleError(c, common.HTTPErrorBadRequest("invalid pool address"))
		return
	}
	pool, ok := h.sniper.Registry().Pool(addr)
	if !ok {
		metrics.QuoteRequests.WithLabelValues(swapMode, "not_found").Inc()
		httputil.HandleError(c, common.HTTPErrorNotFound("pool not found"))
		return
	}

	q, err := quote.Quote(pool.InitialCoinBalance, pool.InitialPcBalance, h.sniper.Fees(), direction, amount, exactIn, slippage)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues(swapMode, "error").Inc()
		httputil.HandleError(c, common.HTTPErrorFromPipeline(err))
		return
	}
	metrics.QuoteRequests.WithLabelValues(swapMode, "ok").Inc()

	input, output := pool.Amm.CoinMint, pool.Amm.PcMint
	if direction == domain.PC2Coin {
		input, output = output, input
	}
	httputil.Success(c, QuoteResponse{
		Pool:       addr.String(),
		InputMint:  input.String(),
		OutputMint: output.String(),
		SwapMode:   swapMode,
		SwapQuote:  *q,
		TimeTaken:  time.Since(start).Seconds(),
	})
}
