package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/PrayerWall/controllers"
	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/middlewares"
	"github.com/PrayerWall/services"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectDB()
	services.InitPushNotificationService()
	services.InitEmailService()
}

func main() {
	router := gin.Default()

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}

	router.POST("/login", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.UserLogin)
	router.POST("/signup", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.PublicUserSignup)
	router.GET("/ping", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.Ping)

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth)
	auth.Use(middlewares.RateLimitMiddleware(10, 10, getKey))
	{

		// user routes
		auth.GET("/users/me", controllers.GetUserProfile)
		auth.POST("/users/push-token", controllers.StorePushToken)

		// feed routes
		auth.GET("/prayers/feed/:feed", controllers.GetFeed)
		auth.GET("/prayers/partner-match", controllers.GetPartnerMatch)

		// prayer routes
		auth.POST("/prayers", controllers.CreatePrayer)
		auth.GET("/prayers/:prayer_id", controllers.GetPrayer)
		auth.PUT("/prayers/:prayer_id", controllers.UpdatePrayer)

		// prayer status (attribute store) routes
		auth.POST("/prayers/:prayer_id/archive", controllers.ArchivePrayer)
		auth.POST("/prayers/:prayer_id/restore", controllers.RestorePrayer)
		auth.POST("/prayers/:prayer_id/answer", controllers.AnswerPrayer)
		auth.GET("/prayers/:prayer_id/attributes", controllers.GetPrayerAttributes)
		auth.POST("/prayers/:prayer_id/attributes", controllers.SetPrayerAttribute)
		auth.DELETE("/prayers/:prayer_id/attributes/:attribute_name", controllers.RemovePrayerAttribute)
		auth.GET("/prayers/:prayer_id/activity", controllers.GetPrayerActivity)

		// prayer mode routes
		auth.GET("/prayer-mode", controllers.GetPrayerMode)
		auth.POST("/prayers/:prayer_id/mark", controllers.MarkPrayer)
		auth.POST("/prayers/:prayer_id/skip", controllers.SkipPrayer)

		// invite routes
		auth.POST("/invites", controllers.CreateInviteToken)
		auth.GET("/invites/stats", controllers.GetInviteStats)
		auth.GET("/users/:user_profile_id/descendants", controllers.GetUserDescendants)
		auth.GET("/users/:user_profile_id/invite-path", controllers.GetUserInvitePath)

		//admin only routes
		admin := auth.Group("/")
		admin.Use(middlewares.CheckAdmin)
		admin.Use(middlewares.RateLimitMiddleware(5, 5, getKey))
		{
			admin.POST("/users", controllers.UserSignup)

			admin.GET("/prayers", controllers.GetPrayers)
			admin.PATCH("/prayers/:prayer_id/flag", controllers.FlagPrayer)
		}
	}

	if err := router.Run(); err != nil {
		log.Fatal(err)
	}
}
