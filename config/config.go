package config

import (
	"github.com/pitabwire/frame/config"
)

// DictationConfig holds configuration for the dictation service.
type DictationConfig struct {
	config.ConfigurationDefault

	// Speech
	ModelsDir          string  `envDefault:"./models"  env:"MODELS_DIR"`
	ASRBackend         string  `envDefault:"parakeet"  env:"ASR_BACKEND"`
	VADBackend         string  `envDefault:"energy"    env:"VAD_BACKEND"`
	ASRThreads         int     `envDefault:"0"         env:"ASR_THREADS"`
	UseGPU             bool    `envDefault:"false"     env:"USE_GPU"`
	UseVAD             bool    `envDefault:"true"      env:"USE_VAD"`
	VADThreshold       float64 `envDefault:"0.02"      env:"VAD_THRESHOLD"`
	SessionCachePolicy string  `envDefault:"single"    env:"SESSION_CACHE_POLICY"`

	// Text processing
	FormatParagraphs bool   `envDefault:"false"              env:"FORMAT_PARAGRAPHS"`
	DictionaryPath   string `envDefault:"./dictionary.yaml"  env:"DICTIONARY_PATH"`

	// Paste delivery
	PreserveClipboard bool `envDefault:"false" env:"PRESERVE_CLIPBOARD"`

	// Storage
	AudioDir string `envDefault:"./recordings" env:"AUDIO_DIR"`

	// Notifications
	NotifyWorkers     int `envDefault:"16"  env:"NOTIFY_WORKERS"`
	NotifyMaxRetries  int `envDefault:"5"   env:"NOTIFY_MAX_RETRIES"`
	NotifyTimeoutSec  int `envDefault:"10"  env:"NOTIFY_TIMEOUT_SEC"`
	NotifyBackoffSec  int `envDefault:"1"   env:"NOTIFY_BACKOFF_INITIAL_SEC"`
	NotifyBackoffMax  int `envDefault:"300" env:"NOTIFY_BACKOFF_MAX_SEC"`
	CBFailThreshold   int `envDefault:"5"   env:"CB_FAILURE_THRESHOLD"`
	CBResetTimeoutSec int `envDefault:"60"  env:"CB_RESET_TIMEOUT_SEC"`
}
