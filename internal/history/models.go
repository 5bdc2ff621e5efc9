package history

import (
	"github.com/pitabwire/frame/data"
)

// Transcript is one finished dictation. Immutable after creation; the
// store is append-only from the pipeline's perspective.
type Transcript struct {
	data.BaseModel

	Text              string  `gorm:"type:text;not null"          json:"text"`
	SourceDurationSec float64 `gorm:"default:0"                   json:"source_duration_sec"`
	AudioPath         string  `gorm:"type:varchar(1024)"          json:"audio_path,omitempty"`
	ModelDisplayName  string  `gorm:"type:varchar(255);not null"  json:"model_display_name"`
	ProcessingMs      int64   `gorm:"default:0"                   json:"processing_ms"`
}

func (Transcript) TableName() string { return "transcripts" }
