package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	KeyUserID    = "user_id"
	KeyPrincipal = "principal"
)
