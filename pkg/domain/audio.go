package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// AudioContentPrefix marks audio content identifiers.
const AudioContentPrefix = "SND:"

// Metadata keys carried alongside an audio recording. They are not part of the hash.
const (
	AudioMetaOriginalText = "original_text"
	AudioMetaTargetText   = "target_text"
	AudioMetaProvenance   = "provenance"
)

// AudioRecording is content-addressed audio attached to a button.
type AudioRecording struct {
	// ID is AudioContentID(Data).
	ID       string
	Data     []byte
	Metadata map[string]string
}

// NewAudioRecording builds a recording and computes its content id.
func NewAudioRecording(data []byte, metadata map[string]string) *AudioRecording {
	return &AudioRecording{
		ID:       AudioContentID(data),
		Data:     data,
		Metadata: metadata,
	}
}

// AudioContentID returns the stable identifier of raw audio bytes.
func AudioContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return AudioContentPrefix + hex.EncodeToString(sum[:])
}
