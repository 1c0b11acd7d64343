package internal

import (
	"net/http"
	"postit/internal/controllers"
	"postit/internal/providers"
)

func InitRoutes(social *controllers.SocialController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/signup", http.HandlerFunc(social.Signup))
	routers.Post("/login", http.HandlerFunc(social.Login))
	routers.Post("/guest", http.HandlerFunc(social.Guest))
	routers.Get("/me", http.HandlerFunc(social.Me))
	routers.Post("/profile", http.HandlerFunc(social.UpdateProfile))
	routers.Post("/uploads/{category}", http.HandlerFunc(social.Upload))

	routers.Get("/posts", http.HandlerFunc(social.ListPosts))
	routers.Post("/posts", http.HandlerFunc(social.CreatePost))
	routers.Get("/posts/{id}", http.HandlerFunc(social.GetPost))
	routers.Delete("/posts/{id}", http.HandlerFunc(social.DeletePost))
	routers.Post("/posts/{id}/like", http.HandlerFunc(social.LikePost))
	routers.Get("/posts/{id}/share", http.HandlerFunc(social.SharePost))
	routers.Post("/posts/{id}/comments", http.HandlerFunc(social.CreateComment))
	routers.Post("/comments/{id}/like", http.HandlerFunc(social.LikeComment))
	routers.Get("/pre-comments", http.HandlerFunc(social.PreComments))
	return routers
}
