// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the session event stream. These give
// clients more specific reasons for closure than the standard codes.
const (
	BadSubprotocolError    = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError  = 3001 // Provided auth token was invalid or expired.
	InvalidSessionIDError  = 3003 // Target session in the WS URL does not exist.
	SessionFinishedClosure = 3004 // Session reached FINISHED and the stream is over.
)
