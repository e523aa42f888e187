package inbox

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeBackup(t *testing.T, messages []backupMessage) string {
	t.Helper()
	data, err := json.Marshal(messages)
	if err != nil {
		t.Fatalf("failed to marshal backup: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sms-backup.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write backup: %v", err)
	}
	return path
}

func TestFileInboxReadWindow(t *testing.T) {
	now := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	path := writeBackup(t, []backupMessage{
		{Address: "HDFCBK", Body: "recent statement", Date: now.AddDate(0, 0, -3).UnixMilli()},
		{Address: "ICICIB", Body: "stale statement", Date: now.AddDate(0, 0, -45).UnixMilli()},
	})

	in := NewFileInboxAt(path, func() time.Time { return now })
	msgs, err := in.Read(context.Background(), 30)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "recent statement" {
		t.Fatalf("window filter wrong: %+v", msgs)
	}
}

func TestFileInboxStableIDs(t *testing.T) {
	now := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	path := writeBackup(t, []backupMessage{
		{Address: "HDFCBK", Body: "statement", Date: now.AddDate(0, 0, -1).UnixMilli()},
	})

	in := NewFileInboxAt(path, func() time.Time { return now })
	first, err := in.Read(context.Background(), 30)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	second, err := in.Read(context.Background(), 30)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("ids must be stable across reads: %s vs %s", first[0].ID, second[0].ID)
	}
}

func TestFileInboxPermission(t *testing.T) {
	missing := NewFileInbox(filepath.Join(t.TempDir(), "nope.json"))
	granted, err := missing.CheckPermission(context.Background())
	if err != nil {
		t.Fatalf("CheckPermission failed: %v", err)
	}
	if granted {
		t.Error("missing file must report permission denied")
	}

	path := writeBackup(t, nil)
	in := NewFileInbox(path)
	granted, err = in.CheckPermission(context.Background())
	if err != nil {
		t.Fatalf("CheckPermission failed: %v", err)
	}
	if !granted {
		t.Error("readable file must report permission granted")
	}
}
