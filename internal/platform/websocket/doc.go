// Package websocket pushes resolved analysis outcomes to live subscribers
// over gorilla/websocket connections.
package websocket
