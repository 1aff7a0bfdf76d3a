package domain

// ConnectionID identifies a live transport connection.
// It is assigned by the transport layer when the socket opens.
type ConnectionID string
