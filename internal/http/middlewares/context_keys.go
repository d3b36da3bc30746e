package middlewares

// gin context keys shared by the middleware chain and handlers.
const (
	CtxRequestID = "request_id"
	ctxIdentity  = "auth.identity"
)
