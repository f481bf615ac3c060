package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type placeBidRequest struct {
	Amount  int64  `json:"amount" binding:"required"`
	Message string `json:"message"`
}

// Place a bid on a freight listing
// (POST /api/listings/:listingID/bids)
func (impl *ServerImpl) PostBid(c *gin.Context) {
	const op = "PostBid"
	claims, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	var body placeBidRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	// 過濾報價留言中的HTML
	body.Message = impl.htmlChecker.Sanitize(body.Message)

	bid, err := impl.market.PlaceBid(c.Request.Context(), actorID, listingID, body.Amount, body.Message)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	slog.Info("New bid occurs", slog.String("user", actorID.String()), slog.Int64("amount", bid.Amount), slog.String("listingID", listingID.String()))

	// 將出價事件推上stream，讓SSE訂閱者和通知worker接手
	event := BidEvent{
		ListingID:  listingID,
		BidID:      bid.ID,
		BidderID:   actorID,
		BidderName: claims.Username,
		Amount:     bid.Amount,
		CreatedAt:  bid.CreatedAt,
	}
	if err := impl.producer.Publish(event); err != nil {
		slog.Error("Fail to publish bid event", slog.String("op", op), slog.Any("error", err))
	}

	c.Header("Location", fmt.Sprintf("/api/listings/%s/bids/%s", listingID, bid.ID))
	c.JSON(http.StatusCreated, newBidView(*bid))
}

// List bids of a freight listing
// (GET /api/listings/:listingID/bids)
func (impl *ServerImpl) GetBids(c *gin.Context) {
	const op = "GetBids"
	if _, _, ok := impl.requireAuth(c); !ok {
		return
	}
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	bids, err := impl.market.ListBids(c.Request.Context(), listingID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	views := make([]bidView, len(bids))
	for i, bid := range bids {
		views[i] = newBidView(bid)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"items": views,
	})
}

// Accept a bid without closing the listing
// (POST /api/listings/:listingID/bids/:bidID/accept)
func (impl *ServerImpl) PostAcceptBid(c *gin.Context) {
	const op = "PostAcceptBid"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	bidID, ok := parseUUIDParam(c, "bidID")
	if !ok {
		return
	}
	if err := impl.market.AcceptBid(c.Request.Context(), actorID, listingID, bidID); err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject all pending bids except the accepted one
// (POST /api/listings/:listingID/reject-others)
func (impl *ServerImpl) PostRejectOtherBids(c *gin.Context) {
	const op = "PostRejectOtherBids"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	if err := impl.market.RejectOtherBids(c.Request.Context(), actorID, listingID); err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Close a listing, rejecting all pending bids
// (POST /api/listings/:listingID/close)
func (impl *ServerImpl) PostCloseListing(c *gin.Context) {
	const op = "PostCloseListing"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	if err := impl.market.CloseListing(c.Request.Context(), actorID, listingID); err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type finalizeRequest struct {
	BidID uuid.UUID `json:"bidId" binding:"required"`
}

// Finalize a listing with the winning bid
// (POST /api/listings/:listingID/finalize)
func (impl *ServerImpl) PostFinalizeListing(c *gin.Context) {
	const op = "PostFinalizeListing"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	var body finalizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	// 取得Redis上需求單的結標鎖，避免多個節點同時結標
	lockKey := fmt.Sprintf("%slisting:%s:lock", impl.config.Redis.KeyPrefix, listingID)
	dMutex := impl.newMutex(lockKey)
	lockCtx, err := dMutex.Lock(c.Request.Context())
	if err != nil {
		abortWithDomainError(c, op, fmt.Errorf("[%s] Fail to acquire finalize lock, err=%w", op, err))
		return
	}
	defer func() {
		if _, err := dMutex.Unlock(); err != nil {
			slog.Warn("Fail to release finalize lock", slog.String("op", op), slog.Any("error", err))
		}
	}()

	deal, err := impl.market.FinalizeAuction(lockCtx, actorID, listingID, body.BidID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	slog.Info("Listing finalized",
		slog.String("listingID", listingID.String()),
		slog.String("dealID", deal.ID.String()),
		slog.Int64("amount", deal.AgreedAmount),
		slog.String("finalizedAt", time.Now().Format(time.RFC3339)))
	c.Header("Location", "/api/deals/"+deal.ID.String())
	c.JSON(http.StatusCreated, newDealView(*deal))
}
