package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/journal/journaltest"
)

func TestService(t *testing.T) {
	srv, err := New(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer srv.Close()
	journaltest.Exercise(t, srv)
}
