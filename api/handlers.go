package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wayx/marketplace"
	"wayx/models"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFromError 將marketplace的錯誤分類對應到HTTP狀態碼
func statusFromError(err error) int {
	switch {
	case errors.Is(err, marketplace.ErrListingNotFound),
		errors.Is(err, marketplace.ErrBidNotFound),
		errors.Is(err, marketplace.ErrDealNotFound),
		errors.Is(err, marketplace.ErrNotificationNotFound),
		errors.Is(err, marketplace.ErrThreadNotFound),
		errors.Is(err, marketplace.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, marketplace.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, marketplace.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, marketplace.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithDomainError 依錯誤分類回應對應的狀態碼，非預期錯誤只記錄不外洩
func abortWithDomainError(c *gin.Context, op string, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		slog.Error("Unexpected error", slog.String("op", op), slog.Any("error", err))
		c.JSON(status, errorResponse{Message: "internal error"})
		return
	}
	c.JSON(status, errorResponse{Message: err.Error()})
}

// requireAuth 驗證請求的存取憑證，失敗時直接回應401
func (impl *ServerImpl) requireAuth(c *gin.Context) (*JWT, uuid.UUID, bool) {
	claims := impl.authenticate(c)
	if claims == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}
	actorID, err := claims.actorID()
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}
	return claims, actorID, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

type listingView struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Transport   string    `json:"transport"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newListingView(listing models.Listing) listingView {
	return listingView{
		ID:          listing.ID,
		OwnerID:     listing.OwnerID,
		Title:       listing.Title,
		Description: listing.Description,
		Origin:      listing.Origin,
		Destination: listing.Destination,
		Price:       listing.Price,
		Currency:    listing.Currency,
		Transport:   string(listing.Transport),
		Status:      string(listing.Status),
		CreatedAt:   listing.CreatedAt,
	}
}

type bidView struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listingId"`
	BidderID  uuid.UUID `json:"bidderId"`
	Amount    int64     `json:"amount"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func newBidView(bid models.Bid) bidView {
	return bidView{
		ID:        bid.ID,
		ListingID: bid.ListingID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		Message:   bid.Message,
		Status:    string(bid.Status),
		CreatedAt: bid.CreatedAt,
	}
}

type dealView struct {
	ID           uuid.UUID `json:"id"`
	ListingID    uuid.UUID `json:"listingId"`
	BidID        uuid.UUID `json:"bidId"`
	ClientID     uuid.UUID `json:"clientId"`
	SupplierID   uuid.UUID `json:"supplierId"`
	AgreedAmount int64     `json:"agreedAmount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newDealView(deal models.Deal) dealView {
	return dealView{
		ID:           deal.ID,
		ListingID:    deal.ListingID,
		BidID:        deal.BidID,
		ClientID:     deal.ClientID,
		SupplierID:   deal.SupplierID,
		AgreedAmount: deal.AgreedAmount,
		Currency:     deal.Currency,
		Status:       string(deal.Status),
		CreatedAt:    deal.CreatedAt,
	}
}

type threadView struct {
	ID         uuid.UUID `json:"id"`
	ListingID  uuid.UUID `json:"listingId"`
	ClientID   uuid.UUID `json:"clientId"`
	SupplierID uuid.UUID `json:"supplierId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newThreadView(thread models.ChatThread) threadView {
	return threadView{
		ID:         thread.ID,
		ListingID:  thread.ListingID,
		ClientID:   thread.ClientID,
		SupplierID: thread.SupplierID,
		CreatedAt:  thread.CreatedAt,
	}
}

type messageView struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"threadId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func newMessageView(message models.ChatMessage) messageView {
	return messageView{
		ID:        message.ID,
		ThreadID:  message.ThreadID,
		AuthorID:  message.AuthorID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}

type notificationView struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Link      string    `json:"link"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func newNotificationView(notification models.Notification) notificationView {
	return notificationView{
		ID:        notification.ID,
		Title:     notification.Title,
		Message:   notification.Message,
		Type:      string(notification.Type),
		Link:      notification.Link,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}
