package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	imageID := uuid.New()

	path, err := store.Upload(ctx, imageID, "avatar.png", strings.NewReader("png bytes"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("expected .png path, got %q", path)
	}
	if !strings.HasPrefix(path, imageID.String()[:2]+"/") {
		t.Errorf("expected sharded path, got %q", path)
	}

	reader, err := store.Download(ctx, path)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("unexpected content: %q", data)
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Download(ctx, path); err == nil {
		t.Error("expected download of deleted image to fail")
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if _, err := store.Download(context.Background(), "../../etc/passwd"); err == nil {
		t.Error("expected path traversal to be rejected")
	}
}

func TestContentTypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "ab/abc.png", want: "image/png"},
		{path: "ab/abc.JPG", want: "image/jpeg"},
		{path: "ab/abc.jpeg", want: "image/jpeg"},
		{path: "ab/abc.webp", want: "image/webp"},
		{path: "ab/abc.bin", want: "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentTypeForPath(tt.path); got != tt.want {
			t.Errorf("ContentTypeForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
