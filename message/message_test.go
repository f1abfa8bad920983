package message

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	srv := NewService()
	collector := &Collector{}
	srv.Subscribe(func(msg *Message) { _ = collector.Publish(context.Background(), msg) })

	ctx := context.Background()
	require.NoError(t, srv.Publish(ctx, Success("%d deployment(s) added", 2)))
	require.NoError(t, srv.Publish(ctx, Error("upload failed", errors.New("WFLYCTL0158"))))
	srv.Close()

	messages := collector.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, LevelSuccess, messages[0].Level)
	assert.Equal(t, "2 deployment(s) added", messages[0].Text)
	assert.Equal(t, LevelError, collector.Last().Level)
	assert.Equal(t, "WFLYCTL0158", collector.Last().Details)

	assert.Error(t, srv.Publish(ctx, Info("late")))
}

func TestMessages(t *testing.T) {
	testCases := []struct {
		description string
		msg         *Message
		expect      Message
	}{
		{description: "info", msg: Info("hello %v", "x"), expect: Message{Level: LevelInfo, Text: "hello x"}},
		{description: "warning", msg: Warning("already exploded", errors.New("WFLYDR0015")), expect: Message{Level: LevelWarning, Text: "already exploded", Details: "WFLYDR0015"}},
		{description: "error without details", msg: Error("failed", nil), expect: Message{Level: LevelError, Text: "failed"}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, *tc.msg)
		})
	}
	assert.Nil(t, (&Collector{}).Last())
}
