package web

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/core/notify/hub"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/middleware/metrics"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/store"
	accountView "github.com/scienceol/chemtrack/pkg/web/views/account"
	activityView "github.com/scienceol/chemtrack/pkg/web/views/activity"
	alertView "github.com/scienceol/chemtrack/pkg/web/views/alert"
	"github.com/scienceol/chemtrack/pkg/web/views/health"
	inventoryView "github.com/scienceol/chemtrack/pkg/web/views/inventory"
	"github.com/scienceol/chemtrack/pkg/web/views/login"
	notificationView "github.com/scienceol/chemtrack/pkg/web/views/notification"
	userView "github.com/scienceol/chemtrack/pkg/web/views/user"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the collaborators the handlers are built from.
type Deps struct {
	Store     *store.Store
	MsgCenter notify.MsgCenter
	Identity  repo.IdentityProvider
}

// NewRouter installs middleware and routes on g. The returned func releases
// the websocket hub.
func NewRouter(ctx context.Context, g *gin.Engine, deps Deps) (context.CancelFunc, error) {
	installMiddleware(g)
	return installURL(ctx, g, deps)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	g.Use(cors.Default())
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
	g.Use(metrics.Middleware())
}

func installURL(ctx context.Context, g *gin.Engine, deps Deps) (context.CancelFunc, error) {
	g.GET("/metrics", metrics.Handler())

	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", health.Ready)
	g.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	mw := auth.New(deps.Identity, deps.Store.Users)
	admin := auth.RequireRole(common.Admin)

	uHandle := userView.NewUserHandle(deps.Store)
	iHandle := inventoryView.NewInventoryHandle(deps.Store, deps.MsgCenter)
	aHandle := accountView.NewAccountHandle(deps.Store)
	nHandle := notificationView.NewNotificationHandle(deps.Store, deps.MsgCenter)
	alHandle := alertView.NewAlertHandle(deps.Store, deps.MsgCenter)
	acHandle := activityView.NewActivityHandle(deps.Store)

	v1 := api.Group("/v1")

	// identity only: the user row may not exist or be approved yet
	{
		authRouter := v1.Group("/auth")
		authRouter.POST("/login", mw.AuthToken(), uHandle.Login)
		authRouter.POST("/register", mw.AuthToken(), uHandle.Register)
		authRouter.GET("/me", mw.AuthWeb(), uHandle.Me)

		// the browser flow keeps its state in redis
		conf := config.Global()
		if conf.Auth.AuthSource == config.AuthCasdoor && conf.Store.Driver != config.StoreMemory {
			l := login.NewLogin()
			authRouter.GET("/oauth/login", l.Login)
			authRouter.GET("/oauth/callback", l.Callback)
			authRouter.POST("/oauth/refresh", l.Refresh)
		}
	}

	{
		userRouter := v1.Group("/users", mw.AuthWeb())
		userRouter.POST("/ping", uHandle.Ping)
		userRouter.POST("/online", uHandle.Online)
		userRouter.POST("/offline", uHandle.Offline)
		userRouter.GET("/online", uHandle.OnlineUsers)
		userRouter.GET("/status/:uid", uHandle.Status)
		userRouter.GET("/dashboard-permissions", uHandle.Dashboard)
		userRouter.GET("/me/activity", uHandle.MyActivity)

		userRouter.GET("", admin, uHandle.List)
		userRouter.GET("/pending", admin, uHandle.Pending)
		userRouter.PUT("/:id/approve", admin, uHandle.Approve)
		userRouter.PUT("/:id/role", admin, uHandle.UpdateRole)
		userRouter.DELETE("/:id", admin, uHandle.Delete)
		userRouter.POST("/invitations", admin, uHandle.CreateInvitation)
		userRouter.GET("/invitations", admin, uHandle.ListInvitations)
	}

	{
		chemRouter := v1.Group("/chemicals", mw.AuthWeb())
		chemRouter.POST("", iHandle.Create)
		chemRouter.GET("", iHandle.List)
		chemRouter.GET("/:id", iHandle.Get)
		chemRouter.PUT("/:id", iHandle.Update)
		chemRouter.POST("/:id/notes", iHandle.AddNote)
		chemRouter.DELETE("/:id", iHandle.Delete)
	}

	{
		accRouter := v1.Group("/account", mw.AuthWeb())
		accRouter.POST("/transactions", aHandle.CreateTransaction)
		accRouter.GET("/transactions", aHandle.ListTransactions)
		accRouter.GET("/transactions/:id", aHandle.GetTransaction)
		accRouter.PUT("/transactions/:id", aHandle.UpdateTransaction)
		accRouter.DELETE("/transactions/:id", aHandle.DeleteTransaction)
		accRouter.PUT("/transactions/:id/approve", aHandle.ApproveTransaction)
		accRouter.PUT("/transactions/:id/reject", aHandle.RejectTransaction)

		accRouter.POST("/purchase-orders", aHandle.CreatePurchaseOrder)
		accRouter.GET("/purchase-orders", aHandle.ListPurchaseOrders)
		accRouter.GET("/purchase-orders/:id", aHandle.GetPurchaseOrder)
		accRouter.PUT("/purchase-orders/:id", aHandle.UpdatePurchaseOrder)
		accRouter.DELETE("/purchase-orders/:id", aHandle.DeletePurchaseOrder)

		accRouter.GET("/summary", aHandle.Summary)
		accRouter.GET("/recent-transactions", aHandle.Recent)
		accRouter.GET("/pending-purchases", aHandle.PendingPurchases)
		accRouter.GET("/chemicals/:id/purchase-history", aHandle.PurchaseHistory)
	}

	{
		nRouter := v1.Group("/notifications", mw.AuthWeb())
		nRouter.POST("", nHandle.Create)
		nRouter.POST("/send", nHandle.Send)
		nRouter.GET("", nHandle.List)
		nRouter.GET("/unread", nHandle.Unread)
		nRouter.GET("/active", nHandle.Active)
		nRouter.GET("/categories/list", nHandle.Categories)
		nRouter.GET("/priorities/list", nHandle.Priorities)
		nRouter.GET("/statuses/list", nHandle.Statuses)
		nRouter.GET("/:id", nHandle.Get)
		nRouter.PUT("/:id", nHandle.Update)
		nRouter.POST("/:id/dismiss", nHandle.Dismiss)
		nRouter.POST("/:id/read", nHandle.Read)
		nRouter.DELETE("/:id", nHandle.Delete)
	}

	{
		alRouter := v1.Group("/alerts", mw.AuthWeb())
		alRouter.POST("", admin, alHandle.Create)
		alRouter.GET("", alHandle.List)
		alRouter.GET("/unread", alHandle.Unread)
		alRouter.GET("/active", alHandle.Active)
		alRouter.GET("/types/list", alHandle.Types)
		alRouter.GET("/severities/list", alHandle.Severities)
		alRouter.GET("/:id", alHandle.Get)
		alRouter.PUT("/:id", alHandle.Update)
		alRouter.POST("/:id/dismiss", alHandle.Dismiss)
		alRouter.POST("/:id/read", alHandle.Read)
		alRouter.DELETE("/:id", admin, alHandle.Delete)
	}

	{
		acRouter := v1.Group("/activity", mw.AuthWeb())
		acRouter.GET("", admin, acHandle.List)
		acRouter.GET("/:id", acHandle.Get)
		acRouter.PUT("/:id/note", admin, acHandle.SetNote)
	}

	if deps.MsgCenter == nil {
		return func() {}, nil
	}
	h, err := hub.New(ctx, deps.MsgCenter)
	if err != nil {
		return nil, err
	}
	v1.GET("/ws/notify", mw.AuthWeb(), h.Connect)
	return func() { h.Close(ctx) }, nil
}
