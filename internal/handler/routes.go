package handler

import (
	"quizzy-quest/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Routes bundles the handlers and route middleware mounted under /api.
type Routes struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Quizzes *QuizHandler
	Access  *AccessHandler
	Answers *AnswerHandler

	Tokens     middleware.TokenValidator
	Validation *middleware.ValidationMiddleware
	// Limiter guards the unauthenticated write routes. Nil disables it.
	Limiter *middleware.RateLimiter
}

func (r Routes) limit() fiber.Handler {
	if r.Limiter == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return r.Limiter.Handler()
}

// Register mounts every route on api.
func (r Routes) Register(api fiber.Router) {
	protected := middleware.Protected(r.Tokens)
	id := r.Validation.ValidateID()
	quizType := r.Validation.ValidateQuizType()

	authGroup := api.Group("/auth", r.limit())
	authGroup.Post("/sign-up", r.Auth.SignUp)
	authGroup.Post("/log-in", r.Auth.LogIn)
	authGroup.Post("/forgot-password", r.Auth.ForgotPassword)
	authGroup.Post("/reset-password", r.Auth.ResetPassword)

	userGroup := api.Group("/users", protected)
	userGroup.Get("/me", r.Users.GetMe)
	userGroup.Post("/me/name", r.Users.ChangeName)
	userGroup.Post("/me/role", r.Users.ChangeRole)
	userGroup.Post("/me/password", r.Users.ChangePassword)
	userGroup.Post("/me/image", r.Users.ChangeImage)
	userGroup.Get("/:id", id, r.Users.GetProfile)

	quizGroup := api.Group("/quizzes")
	// Static segments first so /:id does not swallow them.
	quizGroup.Post("/", protected, r.Quizzes.CreateQuiz)
	quizGroup.Get("/others", protected, quizType, r.Quizzes.ListOthers)
	quizGroup.Get("/mine", protected, quizType, r.Quizzes.ListMine)

	quizGroup.Get("/:id", id, r.Quizzes.GetQuiz)
	quizGroup.Get("/:id/access/unauth", id, r.Access.UnauthAnswerAccess)
	quizGroup.Post("/:id/answers/unauth", r.limit(), id, r.Answers.SubmitUnauthAnswer)

	quizGroup.Get("/:id/edit", protected, id, r.Quizzes.GetQuizForEdit)
	quizGroup.Post("/:id/update", protected, id, r.Quizzes.UpdateQuiz)
	quizGroup.Post("/:id/delete", protected, id, r.Quizzes.DeleteQuiz)
	quizGroup.Get("/:id/access/answer", protected, id, r.Access.AnswerAccess)
	quizGroup.Get("/:id/access/about", protected, id, r.Access.AboutOrEditAccess)
	quizGroup.Post("/:id/answers", protected, id, r.Answers.SubmitAnswer)
	quizGroup.Get("/:id/answers", protected, id, r.Quizzes.GetQuizWithAttempts)
}
