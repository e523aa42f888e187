// Package inbox provides message-source implementations behind the
// service.Inbox interface. The shipped implementation reads an SMS backup
// export file; the device itself is outside this process.
package inbox

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/model"
)

// backupMessage is one entry in an SMS backup export: sender address, body,
// and an epoch-milliseconds date.
type backupMessage struct {
	Address string `json:"address"`
	Body    string `json:"body"`
	Date    int64  `json:"date"`
}

// FileInbox reads messages from a JSON SMS backup export file.
type FileInbox struct {
	now  func() time.Time
	path string
}

// NewFileInbox creates an inbox over the given backup file.
func NewFileInbox(path string) *FileInbox {
	return &FileInbox{path: path, now: time.Now}
}

// NewFileInboxAt creates a file inbox with an injected clock.
func NewFileInboxAt(path string, now func() time.Time) *FileInbox {
	return &FileInbox{path: path, now: now}
}

// CheckPermission reports whether the backup file is readable.
func (f *FileInbox) CheckPermission(_ context.Context) (bool, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check inbox source: %w", err)
	}
	_ = file.Close()
	return true, nil
}

// RequestPermission is equivalent to CheckPermission for a file source;
// there is nothing interactive to prompt.
func (f *FileInbox) RequestPermission(ctx context.Context) (bool, error) {
	return f.CheckPermission(ctx)
}

// Read returns all messages within the bounded recent window, oldest first.
func (f *FileInbox) Read(ctx context.Context, daysBack int) ([]model.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInboxUnavailable, err)
	}

	var backup []backupMessage
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("%w: malformed backup file: %v", common.ErrInboxUnavailable, err)
	}

	cutoff := f.now().AddDate(0, 0, -daysBack)

	var messages []model.RawMessage
	for _, bm := range backup {
		ts := time.UnixMilli(bm.Date)
		if ts.Before(cutoff) {
			continue
		}
		messages = append(messages, model.RawMessage{
			ID:        messageID(bm),
			Sender:    bm.Address,
			Body:      bm.Body,
			Timestamp: ts,
		})
	}
	return messages, nil
}

// messageID derives a stable identifier from the message's immutable
// fields, so repeated reads of the same backup yield the same ids.
func messageID(bm backupMessage) model.MessageID {
	data := fmt.Sprintf("%s:%d:%s", bm.Address, bm.Date, bm.Body)
	sum := sha256.Sum256([]byte(data))
	return model.MessageID(fmt.Sprintf("%x", sum[:16]))
}
