// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_ingest

import (
	"encoding/json"

	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
)

// Binary messages at or above this size are always audio.
const ControlFrameThreshold = 1000

type FrameKind int

const (
	FrameAudio FrameKind = iota
	FrameControl
)

type Frame struct {
	Kind    FrameKind
	Control internal_type.ControlMessage
	// Recognized is false for textual messages whose type is unknown or that
	// are not JSON at all.
	Recognized bool
	Data       []byte
}

func recognized(t internal_type.MessageType) bool {
	switch t {
	case internal_type.MessageStop:
		return true
	}
	return false
}

// parseControl requires an exact "type" key; struct decoding would also
// accept "Type" or "TYPE".
func parseControl(payload []byte) (internal_type.ControlMessage, bool) {
	var msg internal_type.ControlMessage
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return msg, false
	}
	raw, ok := fields["type"]
	if !ok {
		return msg, false
	}
	var t string
	if err := json.Unmarshal(raw, &t); err != nil {
		return msg, false
	}
	msg.Type = internal_type.MessageType(t)
	return msg, recognized(msg.Type)
}

// Classify routes one inbound message. Textual messages are always control.
// A binary message is control only when it is short and decodes to a JSON
// object with a recognized type; everything else is raw audio.
func Classify(textual bool, payload []byte) Frame {
	if textual {
		msg, ok := parseControl(payload)
		return Frame{Kind: FrameControl, Control: msg, Recognized: ok, Data: payload}
	}
	if len(payload) < ControlFrameThreshold {
		if msg, ok := parseControl(payload); ok {
			return Frame{Kind: FrameControl, Control: msg, Recognized: true, Data: payload}
		}
	}
	return Frame{Kind: FrameAudio, Data: payload}
}
