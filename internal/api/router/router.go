package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/config"
	"github.com/simonbalanoff/SigEpRush-API/internal/api/handler"
	"github.com/simonbalanoff/SigEpRush-API/internal/api/middleware"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/pkg/jwt"
	"github.com/simonbalanoff/SigEpRush-API/pkg/redis"
)

// Setup builds the gin engine.
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	members middleware.MembershipResolver,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.SetupValidator()

	r := gin.New()

	// ── global middleware ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	limit := middleware.RateLimit(rdb, cfg.Auth.RateLimit.Limit, cfg.Auth.RateLimit.Window)
	termAdmin := middleware.TermMember(members, model.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", limit, h.Auth.Login)
			auth.POST("/register", limit, h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/invite", middleware.RoleAuth(model.RoleAdmin), h.Auth.CreateUser)

			users := authorized.Group("/users", middleware.RoleAuth(model.RoleAdmin))
			{
				users.GET("", h.User.ListUsers)
				users.PATCH("/:userId/role", h.User.UpdateRole)
			}

			terms := authorized.Group("/terms")
			{
				terms.POST("", h.Term.CreateTerm)
				terms.POST("/join", limit, h.Term.JoinTerm)
				terms.GET("/mine", h.Term.ListMine)
				terms.GET("/admin", h.Term.ListAdmin)

				terms.PATCH("/:termId", termAdmin, h.Term.UpdateTerm)
				terms.POST("/:termId/invite", termAdmin, h.Term.RotateInvite)
				terms.GET("/:termId/members", termAdmin, h.Membership.ListMembers)
				terms.PATCH("/:termId/members/role", termAdmin, h.Membership.UpdateRole)

				terms.GET("/:termId/pnms", middleware.TermMember(members), h.PNM.ListPNMs)
				terms.POST("/:termId/pnms", middleware.TermMember(members, model.RoleAdmin, model.RoleAdder), h.PNM.CreatePNM)
				terms.GET("/:termId/pnms/export", termAdmin, h.Export.ExportRanking)
			}

			// membership for these is checked against the candidate's own term
			pnms := authorized.Group("/pnms")
			{
				pnms.GET("/:id", h.PNM.GetPNM)
				pnms.PATCH("/:id", h.PNM.UpdatePNM)
				pnms.DELETE("/:id", h.PNM.DeletePNM)
				pnms.POST("/:id/photo/attach", h.PNM.AttachPhoto)

				pnms.POST("/:id/ratings", h.Rating.UpsertRating)
				pnms.GET("/:id/ratings", h.Rating.ListRatings)
				pnms.DELETE("/:id/ratings/mine", h.Rating.DeleteMyRating)
			}

			ratings := authorized.Group("/ratings")
			{
				ratings.PATCH("/:id/visibility", h.Rating.SetVisibility)
				ratings.POST("/:id/reactions", h.Rating.AddReaction)
				ratings.DELETE("/:id/reactions", h.Rating.RemoveReaction)
			}

			authorized.POST("/uploads/presign", h.Upload.Presign)
		}
	}

	return r
}
