package engine

import "errors"

// Failure classes surfaced by the transcription path. Mandatory-path
// errors propagate to callers; best-effort collaborators (VAD,
// persistence) degrade locally instead.
var (
	// ErrNoAudioFile indicates the audio source does not exist or is unreadable.
	ErrNoAudioFile = errors.New("audio file not found")

	// ErrInvalidAudioFormat indicates the byte stream is not 16kHz mono
	// 16-bit PCM with the expected leading header.
	ErrInvalidAudioFormat = errors.New("invalid audio format")

	// ErrModelNotLoaded indicates a transcription was attempted without a
	// resident session.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrTranscriptionFailed wraps engine-level failures during recognition.
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrEngineInit indicates session construction failed.
	ErrEngineInit = errors.New("engine initialization failed")
)
