package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ensureThreadRequest struct {
	ListingID  uuid.UUID `json:"listingId" binding:"required"`
	SupplierID uuid.UUID `json:"supplierId"`
}

// Open or reuse the chat thread for a listing and a supplier
// (POST /api/threads)
func (impl *ServerImpl) PostThread(c *gin.Context) {
	const op = "PostThread"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	var body ensureThreadRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	// 供應商開啟對話時可以省略supplierId，默認是自己
	supplierID := body.SupplierID
	if supplierID == uuid.Nil {
		supplierID = actorID
	}
	thread, err := impl.market.EnsureThread(c.Request.Context(), actorID, body.ListingID, supplierID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, newThreadView(*thread))
}

// List chat threads the caller participates in
// (GET /api/threads)
func (impl *ServerImpl) GetThreads(c *gin.Context) {
	const op = "GetThreads"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	threads, err := impl.market.ListThreads(c.Request.Context(), actorID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	views := make([]threadView, len(threads))
	for i, thread := range threads {
		views[i] = newThreadView(thread)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"items": views,
	})
}

// List messages of a chat thread, oldest first
// (GET /api/threads/:threadID/messages)
func (impl *ServerImpl) GetThreadMessages(c *gin.Context) {
	const op = "GetThreadMessages"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	threadID, ok := parseUUIDParam(c, "threadID")
	if !ok {
		return
	}
	messages, err := impl.market.ListMessages(c.Request.Context(), actorID, threadID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	views := make([]messageView, len(messages))
	for i, message := range messages {
		views[i] = newMessageView(message)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"items": views,
	})
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// Send a message in a chat thread
// (POST /api/threads/:threadID/messages)
func (impl *ServerImpl) PostThreadMessage(c *gin.Context) {
	const op = "PostThreadMessage"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	threadID, ok := parseUUIDParam(c, "threadID")
	if !ok {
		return
	}
	var body sendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	// 過濾訊息中的HTML
	body.Body = impl.htmlChecker.Sanitize(body.Body)

	message, err := impl.market.SendMessage(c.Request.Context(), actorID, threadID, body.Body)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, newMessageView(*message))
}
