package memory

import (
	"testing"

	"github.com/viant/mgmtflow/journal/journaltest"
)

func TestService(t *testing.T) {
	journaltest.Exercise(t, New())
}
