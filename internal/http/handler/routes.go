package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wallapi/internal/http/middleware"
	"wallapi/internal/model"
	"wallapi/internal/service"
)

// Deps carries everything the routes need. Nil services are not allowed;
// Gatherer and UploadDir are optional.
type Deps struct {
	DB     *sql.DB
	Tokens middleware.TokenParser

	Auth      service.AuthService
	Users     service.UserService
	Catalog   service.CatalogService
	Blogs     service.BlogService
	Orders    service.OrderService
	Addresses service.AddressService
	Chatbot   service.ChatbotService
	Files     service.FileService

	// Gatherer backs GET /metrics when set.
	Gatherer prometheus.Gatherer
	// UploadDir is served at /uploads when the local storage driver is used.
	UploadDir string

	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir, fiber.Static{MaxAge: 3600})
	}

	authn := middleware.Auth(d.Tokens)
	account := middleware.CurrentAccount(d.Users)
	panel := middleware.RequireRoles(model.RoleAdmin, model.RoleEditor)
	loginLimit := loginLimiter(d.LoginMaxAttempts, d.LoginWindow)

	api := app.Group("/api")

	// Registered ahead of the /api/admin group so its auth does not apply.
	api.Post("/admin/auth/login", loginLimit, AdminLogin(d.Auth))

	api.Post("/auth/register", loginLimit, Register(d.Auth))
	api.Post("/auth/login", loginLimit, Login(d.Auth))
	api.Get("/auth/me", authn, Me(d.Auth))

	api.Get("/profile", authn, Me(d.Auth))
	api.Put("/profile", authn, UpdateProfile(d.Auth))
	api.Put("/profile/password", authn, ChangePassword(d.Auth))

	addresses := api.Group("/addresses", authn)
	addresses.Get("/", ListAddresses(d.Addresses))
	addresses.Post("/", CreateAddress(d.Addresses))
	addresses.Put("/:id", UpdateAddress(d.Addresses))
	addresses.Delete("/:id", DeleteAddress(d.Addresses))
	addresses.Put("/:id/default", SetDefaultAddress(d.Addresses))

	api.Get("/categories", ListCategories(d.Catalog, false))
	api.Get("/categories/:slug", GetCategoryBySlug(d.Catalog))
	api.Get("/paper-types", ListPaperTypes(d.Catalog, false))
	api.Get("/products", ListProducts(d.Catalog, false))
	api.Get("/products/:idOrSlug", GetProduct(d.Catalog, false))

	api.Get("/blogs", ListBlogs(d.Blogs, false))
	api.Get("/blogs/:slug", GetBlogBySlug(d.Blogs))

	api.Post("/orders", middleware.OptionalAuth(d.Tokens), Checkout(d.Orders))
	api.Get("/orders/track/:orderNumber", TrackOrder(d.Orders))
	api.Get("/orders", authn, ListMyOrders(d.Orders))
	api.Get("/orders/:id", authn, GetMyOrder(d.Orders))

	api.Post("/chatbot/messages", middleware.OptionalAuth(d.Tokens), SendChatMessage(d.Chatbot))

	files := api.Group("/files", authn, account, panel)
	files.Get("/list", ListFiles(d.Files))
	files.Post("/mkdir", Mkdir(d.Files))
	files.Post("/delete", DeleteFile(d.Files))
	files.Delete("/delete", DeleteFile(d.Files))
	files.Post("/upload", UploadFile(d.Files))

	admin := api.Group("/admin", authn, account, panel)

	products := admin.Group("/products")
	products.Get("/", ListProducts(d.Catalog, true))
	products.Get("/:id", GetProduct(d.Catalog, true))
	products.Post("/", CreateProduct(d.Catalog))
	products.Put("/:id", UpdateProduct(d.Catalog))
	products.Delete("/:id", DeleteProduct(d.Catalog))

	categories := admin.Group("/categories")
	categories.Get("/", ListCategories(d.Catalog, true))
	categories.Get("/:id", GetCategory(d.Catalog))
	categories.Post("/", CreateCategory(d.Catalog))
	categories.Put("/:id", UpdateCategory(d.Catalog))
	categories.Delete("/:id", DeleteCategory(d.Catalog))

	paperTypes := admin.Group("/paper-types")
	paperTypes.Get("/", ListPaperTypes(d.Catalog, true))
	paperTypes.Get("/:id", GetPaperType(d.Catalog))
	paperTypes.Post("/", CreatePaperType(d.Catalog))
	paperTypes.Put("/:id", UpdatePaperType(d.Catalog))
	paperTypes.Delete("/:id", DeletePaperType(d.Catalog))

	blogs := admin.Group("/blogs")
	blogs.Get("/", ListBlogs(d.Blogs, true))
	blogs.Get("/:id", GetBlog(d.Blogs))
	blogs.Post("/", CreateBlog(d.Blogs))
	blogs.Put("/:id", UpdateBlog(d.Blogs))
	blogs.Delete("/:id", DeleteBlog(d.Blogs))

	orders := admin.Group("/orders")
	orders.Get("/", AdminListOrders(d.Orders))
	orders.Get("/:id", AdminGetOrder(d.Orders))
	orders.Patch("/:id/status", UpdateOrderStatus(d.Orders))

	chat := admin.Group("/chatbot/conversations")
	chat.Get("/", ListConversations(d.Chatbot))
	chat.Get("/:id", GetConversation(d.Chatbot))
	chat.Delete("/:id", DeleteConversation(d.Chatbot))

	users := admin.Group("/users", middleware.RequireRoles(model.RoleAdmin))
	users.Get("/", ListUsers(d.Users))
	users.Get("/:id", GetUser(d.Users))
	users.Post("/", CreateUser(d.Users))
	users.Put("/:id", UpdateUser(d.Users))
	users.Delete("/:id", DeleteUser(d.Users))
}

// loginLimiter throttles sign-in attempts per client IP. Rejections go through
// the global ErrorHandler as 429.
func loginLimiter(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	})
}
