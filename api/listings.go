package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"wayx/marketplace"
	"wayx/models"
)

type createListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Price       int64  `json:"price" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Transport   string `json:"transport" binding:"required"`
}

// Create a freight listing
// (POST /api/listings)
func (impl *ServerImpl) PostListing(c *gin.Context) {
	const op = "PostListing"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	var body createListingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	// 處理需求單描述，避免儲存未經過濾的HTML
	body.Description = impl.htmlChecker.Sanitize(body.Description)

	listing, err := impl.market.CreateListing(c.Request.Context(), marketplace.CreateListingInput{
		OwnerID:     actorID,
		Title:       body.Title,
		Description: body.Description,
		Origin:      body.Origin,
		Destination: body.Destination,
		Price:       body.Price,
		Currency:    body.Currency,
		Transport:   models.TransportMode(body.Transport),
	})
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.Header("Location", "/api/listings/"+listing.ID.String())
	c.JSON(http.StatusCreated, newListingView(*listing))
}

// List freight listings
// (GET /api/listings)
func (impl *ServerImpl) GetListings(c *gin.Context) {
	const op = "GetListings"
	filter := marketplace.ListingFilter{}
	// 建立查詢
	//  - status
	if status := c.Query("status"); status != "" {
		filter.Status = lo.ToPtr(models.ListingStatus(status))
	}
	//  - owner(me表示只看自己的需求單)
	if c.Query("owner") == "me" {
		_, actorID, ok := impl.requireAuth(c)
		if !ok {
			return
		}
		filter.OwnerID = &actorID
	}
	//  - limit
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid limit"})
			return
		}
		filter.Limit = parsed
	}

	listings, err := impl.market.ListListings(c.Request.Context(), filter)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	views := make([]listingView, len(listings))
	for i, listing := range listings {
		views[i] = newListingView(listing)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"items": views,
	})
}

// Get freight listing details
// (GET /api/listings/:listingID)
func (impl *ServerImpl) GetListing(c *gin.Context) {
	const op = "GetListing"
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	listing, err := impl.market.GetListing(c.Request.Context(), listingID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, newListingView(*listing))
}

type patchListingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	Price       *int64  `json:"price"`
	Currency    *string `json:"currency"`
	Transport   *string `json:"transport"`
}

// Update freight listing fields
// (PATCH /api/listings/:listingID)
func (impl *ServerImpl) PatchListing(c *gin.Context) {
	const op = "PatchListing"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	var body patchListingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	if body.Description != nil {
		body.Description = lo.ToPtr(impl.htmlChecker.Sanitize(*body.Description))
	}
	patch := marketplace.ListingPatch{
		Title:       body.Title,
		Description: body.Description,
		Origin:      body.Origin,
		Destination: body.Destination,
		Price:       body.Price,
		Currency:    body.Currency,
	}
	if body.Transport != nil {
		patch.Transport = lo.ToPtr(models.TransportMode(*body.Transport))
	}
	listing, err := impl.market.UpdateListing(c.Request.Context(), actorID, listingID, patch)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, newListingView(*listing))
}

// Track listing bid events
// (GET /api/listings/:listingID/events)
func (impl *ServerImpl) GetListingEvents(c *gin.Context) {
	const op = "GetListingEvents"
	listingID, ok := parseUUIDParam(c, "listingID")
	if !ok {
		return
	}
	// 檢查需求單是否存在
	listing, err := impl.market.GetListing(c.Request.Context(), listingID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	// 已結案的需求單不會再有新的出價事件
	if listing.Status == models.ListingClosed {
		c.JSON(http.StatusGone, errorResponse{Message: "listing is closed"})
		return
	}
	// 連線建立時先送出目前的報價快照，之後只推增量事件
	bids, err := impl.market.ListBids(c.Request.Context(), listingID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	snapshot := make([]bidView, len(bids))
	for i, bid := range bids {
		snapshot[i] = newBidView(bid)
	}
	// SSE請求合法，開始初始化串流
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Transfer-Encoding", "chunked")
	ch, err := impl.sseManager.Subscribe(listingID.String())
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	defer impl.sseManager.Unsubscribe(listingID.String(), ch)
	c.SSEvent("snapshot", snapshot)
	w.Flush()
	for {
		select {
		case <-w.CloseNotify():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("bid", event)
			w.Flush()
		// 30秒沒有事件就發送一個空行，確保瀏覽器和反向代理不會斷開連線
		case <-time.After(30 * time.Second):
			w.WriteString("\n\n")
			w.Flush()
		}
	}
}
