package handler

import "github.com/gin-gonic/gin"

type RouterDeps struct {
	Auth *AuthHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.Auth.Health)
	api.POST("/signup", deps.Auth.Signup)
	api.POST("/signin", deps.Auth.Signin)
	api.GET("/profile", deps.Auth.Profile)
}
