package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/optionstrategy/internal/strategy/application"
	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
	"github.com/wyfcoding/optionstrategy/pkg/logger"
)

// maxBodyBytes 单个请求体上限
const maxBodyBytes = 1 << 20

// StrategyHandler 策略估值与行情查询的 HTTP 处理器
type StrategyHandler struct {
	strategy *application.StrategyService
	market   *application.MarketService
}

// NewStrategyHandler 创建 HTTP 处理器，market 为 nil 时不注册行情路由
func NewStrategyHandler(strategy *application.StrategyService, market *application.MarketService) *StrategyHandler {
	return &StrategyHandler{strategy: strategy, market: market}
}

// RegisterRoutes 注册路由
func (h *StrategyHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/strategy")
	{
		api.POST("/evaluate", h.Evaluate)
		if h.market != nil {
			api.GET("/underlyings/:ticker", h.GetUnderlying)
			api.GET("/underlyings/:ticker/strikes", h.ListStrikes)
			api.POST("/quotes", h.RefreshQuotes)
			api.GET("/rates", h.GetDiscountRate)
		}
	}
}

// decodeStrict 拒绝未知字段后再按 binding 标签校验
func decodeStrict(c *gin.Context, out any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(out)
}

// Evaluate 对多腿组合定价、分类并调整报价
func (h *StrategyHandler) Evaluate(c *gin.Context) {
	var cmd application.EvaluateCommand
	if err := decodeStrict(c, &cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), domain.KindInvalidInput.String())
		return
	}

	report, err := h.strategy.Evaluate(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, report)
}

// GetUnderlying 标的现价、分红与利率表
func (h *StrategyHandler) GetUnderlying(c *gin.Context) {
	snap, err := h.market.Underlying(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, snap)
}

// ListStrikes 期权链中包含 filter 的合约
func (h *StrategyHandler) ListStrikes(c *gin.Context) {
	ids, err := h.market.Strikes(c.Request.Context(), c.Param("ticker"), c.Query("filter"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"instruments": ids})
}

// RefreshQuotes 批量刷新合约报价
func (h *StrategyHandler) RefreshQuotes(c *gin.Context) {
	var cmd application.QuotesCommand
	if err := decodeStrict(c, &cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), domain.KindInvalidInput.String())
		return
	}
	snap, err := h.market.Quotes(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, snap)
}

// GetDiscountRate 按估值日与到期日挑选贴现利率
func (h *StrategyHandler) GetDiscountRate(c *gin.Context) {
	valuation, err := time.Parse(domain.DateLayout, c.DefaultQuery("valuation", time.Now().UTC().Format(domain.DateLayout)))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, fmt.Sprintf("valuation: %v", err), domain.KindInvalidInput.String())
		return
	}
	maturity, err := time.Parse(domain.DateLayout, c.Query("maturity"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, fmt.Sprintf("maturity: %v", err), domain.KindInvalidInput.String())
		return
	}
	rate, err := h.market.DiscountRate(c.Request.Context(), c.Query("ticker"), valuation, maturity)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, rate)
}

// statusOf 错误类别到 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMarketDataGap):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrComputation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPricingFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *StrategyHandler) fail(c *gin.Context, err error) {
	code := statusOf(err)
	detail := ""
	if ee, ok := domain.AsEngineError(err); ok {
		detail = ee.Kind.String()
		if ee.LegIndex >= 0 {
			detail = fmt.Sprintf("%s (leg %d)", detail, ee.LegIndex)
		}
	}
	if code >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "strategy request failed", "path", c.FullPath(), "error", err)
	}
	response.ErrorWithStatus(c, code, err.Error(), detail)
}
