package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lawqena/exam_portal/handlers"
	"github.com/lawqena/exam_portal/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	subjects := admin.Group("/subjects")
	subjects.Post("", handlers.CreateSubject)
	subjects.Get("", handlers.ListSubjects)
	subjects.Get("/:subjectId", handlers.GetSubject)
	subjects.Put("/:subjectId", handlers.UpdateSubject)
	subjects.Delete("/:subjectId", handlers.DeleteSubject)
	subjects.Get("/:subjectId/results", handlers.GetSubjectResults)

	questions := admin.Group("/questions")
	questions.Post("", handlers.CreateQuestion)
	questions.Post("/bulk", handlers.BulkCreateQuestions)
	questions.Get("", handlers.ListQuestions)
	questions.Get("/:questionId", handlers.GetQuestion)
	questions.Put("/:questionId", handlers.UpdateQuestion)
	questions.Delete("/:questionId", handlers.DeleteQuestion)

	settings := admin.Group("/settings")
	settings.Get("", handlers.ListExamSettings)
	settings.Get("/:subjectId", handlers.GetExamSettings)
	settings.Put("/:subjectId", handlers.UpdateExamSettings)

	students := admin.Group("/students")
	students.Get("", handlers.ListStudents)
	students.Put("/:userId/reset-password", handlers.AdminResetStudentPassword)
	students.Put("/:userId/unlock", handlers.UnlockStudent)
	students.Delete("/:userId", handlers.DeleteStudent)

	admin.Post("/attempts/reset", handlers.ResetStudentAttempts)

	admin.Get("/monitor/ws", handlers.MonitorUpgrade, handlers.MonitorSocket)
}
