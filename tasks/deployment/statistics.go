package deployment

import (
	"fmt"
	"strings"

	"github.com/viant/mgmtflow/message"
	"github.com/viant/mgmtflow/model"
)

// UploadStatistics records the outcome of uploads of one run.
type UploadStatistics struct {
	standalone bool
	Added      []string
	Replaced   []string
	Failed     []string
}

// NewUploadStatistics creates empty statistics.
func NewUploadStatistics(env *model.Environment) *UploadStatistics {
	return &UploadStatistics{standalone: env.IsStandalone()}
}

func (s *UploadStatistics) recordAdded(name string)    { s.Added = append(s.Added, name) }
func (s *UploadStatistics) recordReplaced(name string) { s.Replaced = append(s.Replaced, name) }
func (s *UploadStatistics) recordFailed(name string)   { s.Failed = append(s.Failed, name) }

// HasFailures returns true when at least one upload failed.
func (s *UploadStatistics) HasFailures() bool {
	return len(s.Failed) > 0
}

// Message summarises the uploads: success when nothing failed, warning for
// partial failures and error when every upload failed.
func (s *UploadStatistics) Message() *message.Message {
	noun := "deployment"
	if !s.standalone {
		noun = "content"
	}
	var parts []string
	if len(s.Added) > 0 {
		parts = append(parts, fmt.Sprintf("added %v %v: %v", len(s.Added), noun, strings.Join(s.Added, ", ")))
	}
	if len(s.Replaced) > 0 {
		parts = append(parts, fmt.Sprintf("replaced %v %v: %v", len(s.Replaced), noun, strings.Join(s.Replaced, ", ")))
	}
	if len(s.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("failed %v %v: %v", len(s.Failed), noun, strings.Join(s.Failed, ", ")))
	}
	text := strings.Join(parts, "; ")
	switch {
	case len(s.Failed) == 0:
		return &message.Message{Level: message.LevelSuccess, Text: text}
	case len(s.Added)+len(s.Replaced) > 0:
		return &message.Message{Level: message.LevelWarning, Text: text}
	}
	return &message.Message{Level: message.LevelError, Text: text}
}
