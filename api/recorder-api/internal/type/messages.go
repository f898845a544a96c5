// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_type

type MessageType string

const (
	// server -> client
	MessageReady          MessageType = "ready"
	MessageChunkReceived  MessageType = "chunk_received"
	MessageRecordingSaved MessageType = "recording_saved"
	MessageError          MessageType = "error"

	// client -> server
	MessageStop MessageType = "stop"
)

type ReadyMessage struct {
	Type        MessageType `json:"type"`
	Message     string      `json:"message"`
	RecordingID string      `json:"recordingId"`
}

func (ReadyMessage) MessageType() MessageType { return MessageReady }

func NewReadyMessage(recordingID string) ReadyMessage {
	return ReadyMessage{
		Type:        MessageReady,
		Message:     "Live recorder ready, send PCM frames",
		RecordingID: recordingID,
	}
}

type ChunkReceivedMessage struct {
	Type        MessageType `json:"type"`
	ChunkSize   int         `json:"chunkSize"`
	TotalChunks int         `json:"totalChunks"`
}

func (ChunkReceivedMessage) MessageType() MessageType { return MessageChunkReceived }

func NewChunkReceivedMessage(size, total int) ChunkReceivedMessage {
	return ChunkReceivedMessage{Type: MessageChunkReceived, ChunkSize: size, TotalChunks: total}
}

type RecordingSavedMessage struct {
	Type        MessageType `json:"type"`
	RecordingID string      `json:"recordingId"`
	DownloadURL string      `json:"downloadUrl"`
	Duration    int         `json:"duration"`
	ChunksCount int         `json:"chunksCount"`
	FileSize    int         `json:"fileSize"`
}

func (RecordingSavedMessage) MessageType() MessageType { return MessageRecordingSaved }

type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

func (ErrorMessage) MessageType() MessageType { return MessageError }

func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: MessageError, Message: message}
}

// ControlMessage is a small client-to-server JSON request.
type ControlMessage struct {
	Type MessageType `json:"type"`
}
