// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import (
	"bytes"
	"encoding/binary"
)

const (
	WAVHeaderSize  = 44
	AudioPCMFormat = 1 // WAV PCM format tag
	FormatWAV      = "wav"
)

// AudioConfig describes raw little-endian PCM.
type AudioConfig struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
}

// NewLinear16khzMonoAudioConfig is the live recorder's wire format: LINEAR16, 16 kHz, mono.
func NewLinear16khzMonoAudioConfig() AudioConfig {
	return AudioConfig{SampleRate: 16000, Channels: 1, BitsPerSample: 16}
}

var LIVE_RECORDER_AUDIO_CONFIG = NewLinear16khzMonoAudioConfig()

func (c AudioConfig) BlockAlign() uint16 {
	return c.Channels * c.BitsPerSample / 8
}

func (c AudioConfig) ByteRate() uint32 {
	return c.SampleRate * uint32(c.Channels) * uint32(c.BitsPerSample) / 8
}

// EncodeWAV prefixes pcm with a canonical 44-byte RIFF/WAVE header. It is
// total over any input, including empty pcm.
func EncodeWAV(pcm []byte, cfg AudioConfig) []byte {
	var buf bytes.Buffer
	buf.Grow(WAVHeaderSize + len(pcm))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(AudioPCMFormat))
	binary.Write(&buf, binary.LittleEndian, cfg.Channels)
	binary.Write(&buf, binary.LittleEndian, cfg.SampleRate)
	binary.Write(&buf, binary.LittleEndian, cfg.ByteRate())
	binary.Write(&buf, binary.LittleEndian, cfg.BlockAlign())
	binary.Write(&buf, binary.LittleEndian, cfg.BitsPerSample)

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
