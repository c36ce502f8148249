package auth

import "github.com/jsamuelsen11/maingo/internal/middleware"

// None leaves requests untouched.
type None struct{}

// Authentication returns the identity middleware.
func (None) Authentication(Client) middleware.Middleware {
	return middleware.Passthrough
}
