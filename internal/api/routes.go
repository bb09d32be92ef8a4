package api

import (
	"net/http"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler into the router. Access tiers: public
// (auth + plan catalog), any authenticated user, then role-gated groups
// for trainees, trainers and admins.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	planService service.PlanService,
	trainerService service.TrainerService,
	traineeService service.TraineeService,
	bookingService service.BookingService,
	sessionService service.SessionService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	planHandler := NewPlanHandler(planService)
	trainerHandler := NewTrainerHandler(trainerService)
	traineeHandler := NewTraineeHandler(traineeService)
	bookingHandler := NewBookingHandler(bookingService, traineeService)
	sessionHandler := NewSessionHandler(sessionService, trainerService, traineeService)

	authMiddleware := AuthMiddleware(jwtSecret)
	router.Use(LanguageMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	// --- Public routes ---
	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// The plan catalog is browsable before signing up.
	apiV1.GET("/plans", planHandler.ListPlans)
	apiV1.GET("/plans/:id", planHandler.GetPlan)

	// --- Authenticated routes ---
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.Me)
		protected.PUT("/me", userHandler.UpdateMe)
		protected.GET("/sessions/my", sessionHandler.MySessions)
		protected.GET("/sessions/:id", sessionHandler.GetSession)
		protected.GET("/trainers/:id/image", trainerHandler.TrainerImage)
	}

	// --- Trainee routes ---
	traineeGroup := protected.Group("/trainee")
	traineeGroup.Use(RoleMiddleware(domain.RoleTrainee))
	{
		traineeGroup.GET("/profile", traineeHandler.MyProfile)
		traineeGroup.GET("/progress", traineeHandler.MyProgress)
		traineeGroup.GET("/trainer", traineeHandler.MyTrainer)
		traineeGroup.PUT("/language", traineeHandler.SetPreferredLanguage)

		traineeGroup.POST("/bookings", bookingHandler.CreateBooking)
		traineeGroup.GET("/bookings", bookingHandler.MyBookings)
		traineeGroup.PUT("/bookings/:id/cancel", bookingHandler.CancelMyBooking)
		traineeGroup.POST("/bookings/:id/trainer-change", bookingHandler.RequestTrainerChange)
		traineeGroup.POST("/sessions/:id/feedback", sessionHandler.SubmitFeedback)
	}

	// --- Trainer routes ---
	trainerGroup := protected.Group("/trainer")
	trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
	{
		trainerGroup.GET("/profile", trainerHandler.MyProfile)
		trainerGroup.PUT("/profile", trainerHandler.UpdateProfile)
		trainerGroup.PUT("/availability", trainerHandler.UpdateAvailability)
		trainerGroup.GET("/trainees", trainerHandler.MyTrainees)

		trainerGroup.POST("/sessions/:id/start", sessionHandler.StartSession)
		trainerGroup.POST("/sessions/:id/complete", sessionHandler.CompleteSession)
		trainerGroup.PUT("/sessions/:id/reschedule", sessionHandler.RescheduleSession)

		trainerGroup.POST("/images/upload-url", trainerHandler.RequestImageUpload)
		trainerGroup.POST("/images/confirm", trainerHandler.ConfirmImageUpload)
	}

	// --- Admin routes ---
	adminGroup := protected.Group("/admin")
	adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
	{
		adminGroup.GET("/users", userHandler.ListUsers)
		adminGroup.GET("/users/:id", userHandler.GetUser)
		adminGroup.PUT("/users/:id", userHandler.UpdateUser)
		adminGroup.DELETE("/users/:id", userHandler.DeleteUser)

		adminGroup.GET("/trainers", trainerHandler.ListTrainers)
		adminGroup.GET("/trainers/:id", trainerHandler.GetTrainer)
		adminGroup.PUT("/trainers/:id/status", trainerHandler.SetTrainerStatus)

		adminGroup.GET("/plans", planHandler.ListAllPlans)
		adminGroup.POST("/plans", planHandler.CreatePlan)
		adminGroup.PUT("/plans/:id", planHandler.UpdatePlan)
		adminGroup.DELETE("/plans/:id", planHandler.DeletePlan)

		adminGroup.GET("/bookings", bookingHandler.ListBookings)
		adminGroup.GET("/bookings/:id", bookingHandler.GetBooking)
		adminGroup.PUT("/bookings/:id/confirm", bookingHandler.ConfirmBooking)
		adminGroup.PUT("/bookings/:id/cancel", bookingHandler.CancelBooking)
		adminGroup.PUT("/bookings/:id/complete", bookingHandler.CompleteBooking)
		adminGroup.PUT("/bookings/:id/trainer-change", bookingHandler.ResolveTrainerChange)

		adminGroup.POST("/sessions/bulk", sessionHandler.BulkCreateSessions)
		adminGroup.GET("/sessions", sessionHandler.ListSessions)
		adminGroup.PUT("/sessions/:id/status", sessionHandler.UpdateSessionStatus)
		adminGroup.DELETE("/sessions/:id", sessionHandler.DeleteSession)
	}
}
