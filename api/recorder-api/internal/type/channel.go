// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_type

// Channel is the server-to-client half of a live recorder connection.
// Implementations must be safe for concurrent use.
type Channel interface {
	// Send delivers one JSON message to the client.
	Send(msg Message) error
}

// Message is any server-to-client payload; MessageType reports its "type" field.
type Message interface {
	MessageType() MessageType
}
