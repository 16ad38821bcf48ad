package handlers

// Custom WebSocket close codes used by the room handler. These provide
// more specific reasons for closure than standard codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided session token was invalid or expired.
	InvalidRoomIDError    = 3002 // Target room ID in the WS URL does not exist or is invalid.
	NotASeatError         = 3003 // Authenticated participant holds no seat in this room.
)
