// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package live_recorder_api

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
)

// websocketChannel serializes outbound JSON messages on one connection.
// gorilla allows a single concurrent writer only.
type websocketChannel struct {
	conn      *websocket.Conn
	writeWait time.Duration
	writeMu   sync.Mutex
}

func newWebsocketChannel(conn *websocket.Conn, writeWait time.Duration) *websocketChannel {
	return &websocketChannel{conn: conn, writeWait: writeWait}
}

func (c *websocketChannel) Send(msg internal_type.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", msg.MessageType(), err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeWait > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
