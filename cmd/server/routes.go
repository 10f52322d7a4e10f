package main

import (
	"github.com/gin-gonic/gin"
	"chain-comics.backend/internal/interfaces/http/handlers"
	"chain-comics.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	creditHandler  *handlers.CreditHandler
	unlockHandler  *handlers.UnlockHandler
	chapterHandler *handlers.ChapterHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/nonce", d.authHandler.RequestNonce)
			auth.POST("/verify", d.authHandler.VerifyWallet)
			auth.POST("/admin/login", d.authHandler.AdminLogin)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Catalog routes (public)
		chapters := v1.Group("/chapters")
		{
			chapters.GET("", d.chapterHandler.ListChapters)
			chapters.GET("/:id", d.chapterHandler.GetChapter)
		}
		v1.GET("/packages", d.chapterHandler.ListPackages)

		// Credit routes (protected)
		credits := v1.Group("/credits")
		credits.Use(d.authMiddleware)
		{
			credits.POST("/verify", d.creditHandler.VerifyPurchase)
			credits.GET("/balance", d.creditHandler.GetBalance)
			credits.GET("/transactions", d.creditHandler.ListTransactions)
		}

		// Unlock routes (protected)
		chaptersAuth := v1.Group("/chapters")
		chaptersAuth.Use(d.authMiddleware)
		{
			chaptersAuth.POST("/:id/unlock", d.unlockHandler.Unlock)
			chaptersAuth.GET("/:id/access", d.unlockHandler.CheckAccess)
		}
		v1.GET("/unlocks", d.authMiddleware, d.unlockHandler.ListUnlocks)

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("/credits/adjust", d.adminHandler.AdjustCredits)
			admin.GET("/accounts", d.adminHandler.ListAccounts)

			admin.POST("/chapters", d.adminHandler.CreateChapter)
			admin.PATCH("/chapters/:id", d.adminHandler.UpdateChapter)
			admin.DELETE("/chapters/:id", d.adminHandler.DeleteChapter)

			admin.GET("/packages", d.adminHandler.ListPackages)
			admin.POST("/packages", d.adminHandler.CreatePackage)
			admin.PATCH("/packages/:id", d.adminHandler.UpdatePackage)
		}
	}
}
