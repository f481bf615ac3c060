package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayx/marketplace"
)

// List deals the caller participates in
// (GET /api/deals)
func (impl *ServerImpl) GetDeals(c *gin.Context) {
	const op = "GetDeals"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	filter := marketplace.DealFilter{ParticipantID: &actorID}
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid limit"})
			return
		}
		filter.Limit = parsed
	}
	deals, err := impl.market.ListDeals(c.Request.Context(), filter)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	views := make([]dealView, len(deals))
	for i, deal := range deals {
		views[i] = newDealView(deal)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"items": views,
	})
}

// Get deal details
// (GET /api/deals/:dealID)
func (impl *ServerImpl) GetDeal(c *gin.Context) {
	const op = "GetDeal"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	dealID, ok := parseUUIDParam(c, "dealID")
	if !ok {
		return
	}
	deal, err := impl.market.GetDeal(c.Request.Context(), dealID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	// 只有成交雙方可以查看成交紀錄
	if deal.ClientID != actorID && deal.SupplierID != actorID {
		c.Status(http.StatusForbidden)
		return
	}
	c.JSON(http.StatusOK, newDealView(*deal))
}
