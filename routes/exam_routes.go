package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lawqena/exam_portal/handlers"
	"github.com/lawqena/exam_portal/middleware"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	exams := api.Group("/exams", middleware.Protected())

	exams.Get("/subjects", handlers.GetExamDashboard)
	exams.Post("/subjects/:subjectId/start", handlers.StartExam)

	exams.Get("/session", handlers.GetExamSession)
	exams.Post("/session/answer", handlers.AnswerQuestion)
	exams.Post("/session/navigate", handlers.NavigateExam)
	exams.Post("/session/submit", handlers.SubmitExam)
	exams.Delete("/session", handlers.AbandonExam)

	exams.Get("/attempts", handlers.ListMyAttempts)
	exams.Get("/attempts/:attemptId/review", handlers.ReviewAttempt)
	exams.Post("/attempts/:attemptId/certificate", handlers.GenerateAttemptCertificate)
}
