package routes

import (
	"time"

	"Gin_postgres_library_management/app"
	"Gin_postgres_library_management/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	bookCtl := controllers.NewBookController(s)
	memberCtl := controllers.NewMemberController(s)
	loanCtl := controllers.NewLoanController(s)
	statsCtl := controllers.NewStatsController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.Issuer, s.Tokens, s.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// Auth
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.GET("/me", authCtl.Me)
		authed.POST("/logout", authCtl.Logout)
	}

	// ------------------------------
	// 图书目录（公开浏览）
	// ------------------------------
	books := r.Group("/api/books")
	{
		books.GET("", bookCtl.ListBooks) // ?search=&category=&available=true
		books.GET("/categories", bookCtl.ListCategories)
		books.GET("/:id", bookCtl.GetBook)
	}

	// 目录维护（仅管理员）
	booksAdmin := r.Group("/api/books", authMW, adminMW)
	{
		booksAdmin.POST("", bookCtl.CreateBook)
		booksAdmin.PUT("/:id", bookCtl.UpdateBook)
		booksAdmin.DELETE("/:id", bookCtl.DeleteBook)

		booksAdmin.POST("/categories", bookCtl.CreateCategory)
		booksAdmin.PUT("/categories/:id", bookCtl.RenameCategory)
		booksAdmin.DELETE("/categories/:id", bookCtl.DeleteCategory)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := r.Group("/api/loans", authMW, seenMW)
	{
		loans.POST("/borrow", loanCtl.Borrow)
		loans.POST("/return/:loanId", loanCtl.Return)
		loans.GET("/my-loans", loanCtl.MyLoans)
		loans.GET("/history", loanCtl.History)
	}
	loansAdmin := r.Group("/api/loans", authMW, adminMW)
	{
		loansAdmin.GET("/all", loanCtl.ListAll) // ?status=active|returned|overdue
		loansAdmin.GET("/overdue", loanCtl.Overdue)
	}

	// ------------------------------
	// 个人资料与罚金
	// ------------------------------
	me := r.Group("/api/users", authMW, seenMW)
	{
		me.GET("/profile", memberCtl.GetProfile)
		me.PUT("/profile", memberCtl.UpdateProfile)
		me.GET("/fines", memberCtl.GetFines)
		me.POST("/fines/pay", memberCtl.PayFine)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", memberCtl.ListUsers) // ?q=&page=&size=
		users.GET("/:id", memberCtl.GetUser)
		users.PUT("/:id", memberCtl.UpdateUser)
		users.POST("/:id/toggle-status", memberCtl.ToggleUserStatus)
		users.DELETE("/:id", memberCtl.DeleteUser)
	}

	// ------------------------------
	// 统计与报表
	// ------------------------------
	r.GET("/api/stats", statsCtl.Stats)

	reports := r.Group("/api", authMW, adminMW)
	{
		reports.GET("/dashboard", statsCtl.Dashboard)
		reports.GET("/reports/usage", statsCtl.UsageReport) // ?from=&to=
		reports.GET("/reports/inventory", statsCtl.InventoryReport)
	}
}
