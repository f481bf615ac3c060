package api

import (
	"time"

	"github.com/google/uuid"
)

// BidEvent 是透過Redis Stream在節點間傳遞的出價事件，
// 一方面推送到SSE訂閱者，一方面由通知worker轉成站內通知。
type BidEvent struct {
	ListingID  uuid.UUID `json:"listingId" msgpack:"listing_id"`
	BidID      uuid.UUID `json:"bidId" msgpack:"bid_id"`
	BidderID   uuid.UUID `json:"-" msgpack:"bidder_id"`
	BidderName string    `json:"bidder" msgpack:"bidder_name"`
	Amount     int64     `json:"amount" msgpack:"amount"`
	CreatedAt  time.Time `json:"time" msgpack:"created_at"`
}
