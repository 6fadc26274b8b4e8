package internal

import (
	"net/http"
	"zoblogs/internal/controllers"
	"zoblogs/internal/providers"
)

func InitRoutes(pages *controllers.PageController, posts *controllers.PostController, trades *controllers.TradeController, uploads *controllers.UploadController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/{$}", http.HandlerFunc(pages.Home))
	routers.Get("/discover", http.HandlerFunc(pages.Discover))
	routers.Post("/write", http.HandlerFunc(posts.Write))
	routers.Get("/post/{id}", http.HandlerFunc(posts.Show))
	routers.Post("/post/{id}/trade", http.HandlerFunc(trades.Trade))
	routers.Get("/users/{address}/posts", http.HandlerFunc(posts.UserPosts))
	routers.Post("/api/upload", http.HandlerFunc(uploads.Upload))
	return routers
}
