// Package ctx holds the keys schoolstore puts into a context.Context.
package ctx

// CTXKey is the type used by all keys put in a context.
// As recommended by the package context, schoolstore defines its own data type for keys used with WithValue.
type CTXKey string

const (
	// CtxRequestID holds the id of the http request currently served.
	CtxRequestID CTXKey = "schoolstore.request_id"

	// CtxEntity holds the name of the entity section a request is routed to, e.g. "books".
	CtxEntity CTXKey = "schoolstore.entity"
)
