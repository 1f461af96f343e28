package routes

import (
	"talenthub-api/controllers"
	"talenthub-api/middleware"
	"talenthub-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/register", controllers.Register)
			public.POST("/login", controllers.Login)
			public.POST("/refresh", controllers.RefreshToken)
			public.POST("/forgot-password", controllers.ForgotPassword)
			public.POST("/reset-password", controllers.ResetPassword)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "TalentHub API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/logout", controllers.Logout)
			protected.POST("/select-role", controllers.SelectRole)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Freelancer profile
			protected.GET("/freelancer-profile",
				middleware.RequireRole(models.RoleDeveloper), controllers.GetFreelancerProfile)
			protected.PUT("/freelancer-profile",
				middleware.RequireRole(models.RoleDeveloper), controllers.UpsertFreelancerProfile)

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)

			// Projects
			projects := protected.Group("/projects")
			{
				projects.GET("", controllers.GetProjects)
				projects.GET("/:id", controllers.GetProject)

				// Only companies manage projects
				projects.POST("", middleware.RequireRole(models.RoleCompany), controllers.CreateProject)
				projects.PUT("/:id", middleware.RequireRole(models.RoleCompany), controllers.UpdateProject)
				projects.PUT("/:id/status", middleware.RequireRole(models.RoleCompany), controllers.UpdateProjectStatus)
				projects.DELETE("/:id", middleware.RequireRole(models.RoleCompany), controllers.DeleteProject)

				projects.GET("/:id/settings", middleware.RequireRole(models.RoleCompany), controllers.GetProjectSettings)
				projects.PUT("/:id/settings", middleware.RequireRole(models.RoleCompany), controllers.UpdateProjectSettings)

				projects.GET("/:id/applications", middleware.RequireRole(models.RoleCompany), controllers.GetApplicationsByProject)
				projects.GET("/:id/submissions", middleware.RequireRole(models.RoleCompany), controllers.GetSubmissionsByProject)
				projects.GET("/:id/compensations", middleware.RequireRole(models.RoleCompany), controllers.GetCompensationsByProject)
			}

			// Applications
			applications := protected.Group("/applications")
			{
				applications.GET("", middleware.RequireRole(models.RoleDeveloper), controllers.GetMyApplications)
				applications.POST("", middleware.RequireRole(models.RoleDeveloper), controllers.ApplyToProject)
				applications.GET("/:id/deadline", controllers.CheckDeadline)

				// Company transitions
				applications.POST("/:id/shortlist", middleware.RequireRole(models.RoleCompany), controllers.ShortlistApplication)
				applications.POST("/:id/reject", middleware.RequireRole(models.RoleCompany), controllers.RejectApplication)
				applications.POST("/bulk-shortlist", middleware.RequireRole(models.RoleCompany), controllers.BulkShortlistApplications)
				applications.POST("/bulk-reject", middleware.RequireRole(models.RoleCompany), controllers.BulkRejectApplications)
			}

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", middleware.RequireRole(models.RoleDeveloper), controllers.GetMySubmissions)
				submissions.POST("", middleware.RequireRole(models.RoleDeveloper), controllers.CreateSubmission)
				submissions.PUT("/:id", middleware.RequireRole(models.RoleDeveloper), controllers.UpdateSubmission)
				submissions.DELETE("/:id", middleware.RequireRole(models.RoleDeveloper), controllers.DeleteSubmission)

				// Company judging
				submissions.POST("/:id/rate", middleware.RequireRole(models.RoleCompany), controllers.RateSubmission)
				submissions.POST("/:id/select-winner", middleware.RequireRole(models.RoleCompany), controllers.SelectWinner)
			}

			// Compensations
			compensations := protected.Group("/compensations")
			{
				compensations.GET("", middleware.RequireRole(models.RoleDeveloper), controllers.GetMyCompensations)
				compensations.POST("/approve", middleware.RequireRole(models.RoleCompany), controllers.ApproveCompensations)
				compensations.POST("/:id/pay", middleware.RequireRole(models.RoleCompany), controllers.MarkCompensationPaid)
			}
		}
	}
}
