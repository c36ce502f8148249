package client

import "github.com/jsamuelsen11/maingo/internal/middleware"

// UseMiddleware adds fn to the request stack under key, or replaces the
// entry already there. A zero key gets a fresh symbolic key. Using AuthKey
// replaces the auth middleware.
func (c *Client) UseMiddleware(fn middleware.Middleware, key middleware.Key) middleware.Key {
	return c.base.RequestMiddleware().Use(fn, key)
}

// RemoveMiddleware removes the request middleware under key.
func (c *Client) RemoveMiddleware(key middleware.Key) bool {
	return c.base.RequestMiddleware().Remove(key)
}

// HasMiddleware reports whether key is in the request stack.
func (c *Client) HasMiddleware(key middleware.Key) bool {
	return c.base.RequestMiddleware().Has(key)
}

// GetMiddleware returns the request middleware under key.
func (c *Client) GetMiddleware(key middleware.Key) (middleware.Middleware, bool) {
	return c.base.RequestMiddleware().Get(key)
}

// MiddlewareKeys lists the request stack keys in chain order.
func (c *Client) MiddlewareKeys() []middleware.Key {
	return c.base.RequestMiddleware().Keys()
}

// UseResponseMiddleware adds fn to the response stack under key.
func (c *Client) UseResponseMiddleware(fn middleware.ResponseMiddleware, key middleware.Key) middleware.Key {
	return c.base.ResponseMiddleware().Use(fn, key)
}

// RemoveResponseMiddleware removes the response middleware under key.
func (c *Client) RemoveResponseMiddleware(key middleware.Key) bool {
	return c.base.ResponseMiddleware().Remove(key)
}

// HasResponseMiddleware reports whether key is in the response stack.
func (c *Client) HasResponseMiddleware(key middleware.Key) bool {
	return c.base.ResponseMiddleware().Has(key)
}

// GetResponseMiddleware returns the response middleware under key.
func (c *Client) GetResponseMiddleware(key middleware.Key) (middleware.ResponseMiddleware, bool) {
	return c.base.ResponseMiddleware().Get(key)
}

// Tap registers an observer of every issued request.
func (c *Client) Tap(fn middleware.Tap, key middleware.Key) middleware.Key {
	return c.base.Taps().Use(fn, key)
}

// RemoveTap removes the tap under key.
func (c *Client) RemoveTap(key middleware.Key) bool {
	return c.base.Taps().Remove(key)
}

// TapResponse registers an observer of every final response.
func (c *Client) TapResponse(fn middleware.ResponseTap, key middleware.Key) middleware.Key {
	return c.base.ResponseTaps().Use(fn, key)
}

// RemoveResponseTap removes the response tap under key.
func (c *Client) RemoveResponseTap(key middleware.Key) bool {
	return c.base.ResponseTaps().Remove(key)
}
