// Package message carries user facing notifications produced by flow
// recipes. Tasks never publish messages; recipes classify the outcome of a
// run and publish the result.
package message

import (
	"context"
	"fmt"
	"sync"
)

// Level of a message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a user facing notification.
type Message struct {
	Level   Level  `json:"level"`
	Text    string `json:"text"`
	Details string `json:"details,omitempty"`
}

// Success creates a success message.
func Success(format string, args ...interface{}) *Message {
	return &Message{Level: LevelSuccess, Text: fmt.Sprintf(format, args...)}
}

// Info creates an info message.
func Info(format string, args ...interface{}) *Message {
	return &Message{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

// Warning creates a warning message with details.
func Warning(text string, details error) *Message {
	return &Message{Level: LevelWarning, Text: text, Details: errorText(details)}
}

// Error creates an error message with details.
func Error(text string, details error) *Message {
	return &Message{Level: LevelError, Text: text, Details: errorText(details)}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Publisher publishes messages.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// Collector is a Publisher keeping every message, used by tests and the CLI.
type Collector struct {
	mux      sync.Mutex
	messages []*Message
}

// Publish stores msg.
func (c *Collector) Publish(ctx context.Context, msg *Message) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

// Messages returns collected messages.
func (c *Collector) Messages() []*Message {
	c.mux.Lock()
	defer c.mux.Unlock()
	return append([]*Message{}, c.messages...)
}

// Last returns the last message or nil.
func (c *Collector) Last() *Message {
	c.mux.Lock()
	defer c.mux.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}
