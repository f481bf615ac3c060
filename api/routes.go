package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 將所有HTTP路由掛上router
func (impl *ServerImpl) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.GET("/sso/:provider/login", impl.GetSSOLogin)
		auth.GET("/sso/:provider/callback", impl.GetSSOCallback)
		auth.GET("/logout", impl.GetLogout)
	}

	router.GET("/user/info", impl.GetUserInfo)

	api := router.Group("/api")
	{
		api.POST("/listings", impl.PostListing)
		api.GET("/listings", impl.GetListings)
		api.GET("/listings/:listingID", impl.GetListing)
		api.PATCH("/listings/:listingID", impl.PatchListing)
		api.GET("/listings/:listingID/events", impl.GetListingEvents)

		api.POST("/listings/:listingID/bids", impl.PostBid)
		api.GET("/listings/:listingID/bids", impl.GetBids)
		api.POST("/listings/:listingID/bids/:bidID/accept", impl.PostAcceptBid)
		api.POST("/listings/:listingID/reject-others", impl.PostRejectOtherBids)
		api.POST("/listings/:listingID/close", impl.PostCloseListing)
		api.POST("/listings/:listingID/finalize", impl.PostFinalizeListing)

		api.GET("/deals", impl.GetDeals)
		api.GET("/deals/:dealID", impl.GetDeal)

		api.POST("/threads", impl.PostThread)
		api.GET("/threads", impl.GetThreads)
		api.GET("/threads/:threadID/messages", impl.GetThreadMessages)
		api.POST("/threads/:threadID/messages", impl.PostThreadMessage)

		api.GET("/notifications", impl.GetNotifications)
		api.POST("/notifications/:notificationID/read", impl.PostNotificationRead)
		api.POST("/notifications/read-all", impl.PostNotificationsReadAll)

		api.PATCH("/users/:userID/role", impl.PatchUserRole)
	}
}
