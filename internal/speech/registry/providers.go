package registry

import "github.com/dictaflow/dictaflow/internal/speech/engine"

// ASR is the global ASR provider registry.
var ASR = New[engine.Provider]()

// VAD is the global VAD provider registry.
var VAD = New[engine.VADProvider]()
