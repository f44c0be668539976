package routes

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/handlers"
	"github.com/okaz-app/okaz-backend/internal/middleware"
	"github.com/okaz-app/okaz-backend/internal/ws"
	"gorm.io/gorm"
)

// Handlers bundles everything Setup mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	User         *handlers.UserHandler
	Role         *handlers.RoleHandler
	Community    *handlers.CommunityHandler
	Announcement *handlers.AnnouncementHandler
	Category     *handlers.CategoryHandler
	Rating       *handlers.RatingHandler
	Report       *handlers.ReportHandler
	Geography    *handlers.GeographyHandler
	Chat         *handlers.ChatHandler
	Socket       *ws.Handler
}

func ipLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h *Handlers) {
	api := app.Group("/api/v1")

	// General API rate limiter: 60 req/min per IP
	api.Use(ipLimiter(60))

	api.Get("/health", h.Health.Check)

	jwt := middleware.JWTProtected(cfg)
	loadUser := middleware.LoadUser(db)

	// Auth — public, stricter rate limit
	auth := api.Group("/auth")
	auth.Use(ipLimiter(10))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Post("/auth/change-password", jwt, h.Auth.ChangePassword)
	api.Get("/auth/me", jwt, loadUser, h.Auth.Me)

	// Account activation — public, same strict limit as auth
	users := api.Group("/users")
	users.Post("/validate-otp", ipLimiter(10), h.Auth.ValidateOTP)
	users.Post("/resend-otp", ipLimiter(10), h.Auth.ResendOTP)

	// Users
	users.Get("/:id<int>", jwt, h.User.Get)
	users.Put("/me", jwt, loadUser, h.User.UpdateProfile)
	users.Post("/device-token", jwt, loadUser, h.User.SetDeviceToken)
	users.Get("/:id<int>/ratings", h.Rating.ForUser)

	// User administration
	users.Get("/", jwt, loadUser, middleware.RequirePermissions("user:read"), h.User.List)
	users.Post("/", jwt, loadUser, middleware.RequirePermissions("user:create"), h.User.AdminCreate)
	users.Put("/:id<int>", jwt, loadUser, middleware.RequirePermissions("user:update"), h.User.AdminUpdate)
	users.Put("/:id<int>/role", jwt, loadUser, middleware.RequirePermissions("user:update"), h.User.AssignRole)
	users.Put("/:id<int>/permissions", jwt, loadUser, middleware.RequirePermissions("user:update"), h.User.SetPermissions)

	// Roles and permissions
	roles := api.Group("/roles", jwt, loadUser, middleware.RequirePermissions("role:manage"))
	roles.Post("/", h.Role.CreateRole)
	roles.Get("/", h.Role.ListRoles)
	roles.Get("/:id<int>", h.Role.GetRole)
	roles.Put("/:id<int>", h.Role.UpdateRole)
	roles.Delete("/:id<int>", h.Role.DeleteRole)

	perms := api.Group("/permissions", jwt, loadUser, middleware.RequirePermissions("role:manage"))
	perms.Post("/", h.Role.CreatePermission)
	perms.Get("/", h.Role.ListPermissions)
	perms.Get("/:id<int>", h.Role.GetPermission)
	perms.Put("/:id<int>", h.Role.UpdatePermission)
	perms.Delete("/:id<int>", h.Role.DeletePermission)

	// Communities
	communities := api.Group("/communities")
	communities.Get("/", h.Community.List)
	communities.Post("/", jwt, loadUser, h.Community.Create)
	communities.Post("/invitations/accept", jwt, loadUser, h.Community.AcceptInvitation)
	communities.Post("/invitations/reject", jwt, h.Community.RejectInvitation)
	communities.Get("/:id<int>", h.Community.Get)
	communities.Put("/:id<int>", jwt, loadUser, h.Community.Update)
	communities.Put("/:id<int>/validate", jwt, loadUser, middleware.RequirePermissions("community:validate"), h.Community.Validate)
	communities.Put("/:id<int>/reject", jwt, loadUser, middleware.RequirePermissions("community:validate"), h.Community.Reject)
	communities.Delete("/:id<int>", jwt, loadUser, middleware.RequirePermissions("community:delete"), h.Community.Delete)
	communities.Get("/:id<int>/members", h.Community.Members)

	// Membership workflows
	communities.Post("/:id<int>/apply", jwt, loadUser, h.Community.Apply)
	communities.Get("/:id<int>/applications", jwt, loadUser, h.Community.Applications)
	communities.Put("/applications/:applicationId<int>/accept", jwt, loadUser, h.Community.AcceptApplication)
	communities.Put("/applications/:applicationId<int>/reject", jwt, loadUser, h.Community.RejectApplication)
	communities.Post("/:id<int>/invite", jwt, loadUser, h.Community.Invite)
	communities.Get("/:id<int>/invitations", jwt, loadUser, h.Community.Invitations)

	// Announcements
	announcements := api.Group("/announcements")
	announcements.Get("/", h.Announcement.Search)
	announcements.Post("/", jwt, loadUser, h.Announcement.Create)
	announcements.Get("/:id<int>", h.Announcement.Get)
	announcements.Put("/:id<int>", jwt, loadUser, h.Announcement.Update)
	announcements.Put("/:id<int>/publish", jwt, loadUser, h.Announcement.Publish)
	announcements.Put("/:id<int>/unpublish", jwt, loadUser, h.Announcement.Unpublish)
	announcements.Delete("/:id<int>", jwt, loadUser, h.Announcement.Delete)
	announcements.Get("/:id<int>/ratings", h.Rating.ForAnnouncement)

	// Categories
	categories := api.Group("/categories")
	categories.Get("/", h.Category.List)
	categories.Get("/:id<int>", h.Category.Get)
	categories.Post("/", jwt, loadUser, middleware.RequirePermissions("category:manage"), h.Category.Create)
	categories.Put("/:id<int>", jwt, loadUser, middleware.RequirePermissions("category:manage"), h.Category.Update)
	categories.Delete("/:id<int>", jwt, loadUser, middleware.RequirePermissions("category:manage"), h.Category.Delete)

	// Ratings
	api.Post("/ratings", jwt, loadUser, h.Rating.Create)
	api.Delete("/ratings/:id<int>", jwt, loadUser, middleware.RequirePermissions("rating:delete"), h.Rating.Delete)

	// Reports
	api.Post("/reports", jwt, loadUser, h.Report.Create)
	api.Get("/reports", jwt, loadUser, middleware.RequirePermissions("report:manage"), h.Report.List)
	api.Get("/reports/:id<int>", jwt, loadUser, middleware.RequirePermissions("report:manage"), h.Report.Get)
	api.Delete("/reports/:id<int>", jwt, loadUser, middleware.RequirePermissions("report:manage"), h.Report.Delete)

	// Geography
	countries := api.Group("/countries")
	countries.Get("/", h.Geography.ListCountries)
	countries.Get("/:id<int>", h.Geography.GetCountry)
	countries.Post("/", jwt, loadUser, middleware.RequirePermissions("geography:manage"), h.Geography.CreateCountry)
	countries.Put("/:id<int>", jwt, loadUser, middleware.RequirePermissions("geography:manage"), h.Geography.UpdateCountry)
	countries.Delete("/:id<int>", jwt, loadUser, middleware.RequirePermissions("geography:manage"), h.Geography.DeleteCountry)

	cities := api.Group("/cities")
	cities.Get("/", h.Geography.ListCities)
	cities.Get("/:id<int>", h.Geography.GetCity)
	cities.Post("/", jwt, loadUser, middleware.RequirePermissions("geography:manage"), h.Geography.CreateCity)
	cities.Put("/:id<int>", jwt, loadUser, middleware.RequirePermissions("geography:manage"), h.Geography.UpdateCity)
	cities.Delete("/:id<int>", jwt, loadUser, middleware.RequirePermissions("geography:manage"), h.Geography.DeleteCity)

	// Chat
	chat := api.Group("/chat", jwt, loadUser)
	chat.Post("/messages", h.Chat.Send)
	chat.Put("/messages/:id<int>/delivered", h.Chat.MarkDelivered)
	chat.Get("/conversations/:userId<int>", h.Chat.Conversation)
	chat.Put("/conversations/:userId<int>/read", h.Chat.MarkRead)

	// Chat socket: the JWT guard runs on the upgrade request; the verified
	// user id is pinned into locals before the protocol switch.
	app.Use("/ws/chat", jwt, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		id := middleware.UserID(c)
		if id == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals("user_id", id)
		return c.Next()
	})
	app.Get("/ws/chat", websocket.New(h.Socket.Serve()))
}
