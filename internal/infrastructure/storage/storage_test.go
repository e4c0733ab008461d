package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fixedClock() time.Time {
	return time.UnixMilli(1700000000123)
}

func TestValidateImageName(t *testing.T) {
	allowed := []string{"a.jpg", "a.JPG", "a.jpeg", "a.JPEG", "a.png", "a.PNG", "a.gif", "a.GIF", "my.photo.png"}
	for _, name := range allowed {
		if err := ValidateImageName(name); err != nil {
			t.Errorf("%s: expected allowed, got %v", name, err)
		}
	}

	rejected := []string{"a.txt", "a.Jpg", "a.png.exe", "png", "a.webp", ""}
	for _, name := range rejected {
		if err := ValidateImageName(name); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestDiskStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	store.now = fixedClock

	got, err := store.Save(context.Background(), "avatar.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got != "uploads/1700000000123-avatar.png" {
		t.Fatalf("unexpected path %q", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, "1700000000123-avatar.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Fatalf("stored content mismatch")
	}
}

func TestDiskStore_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewDiskStore(dir)
	store.now = fixedClock

	got, err := store.Save(context.Background(), "../../etc/avatar.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(got, "..") {
		t.Fatalf("path escaped upload dir: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "1700000000123-avatar.png")); err != nil {
		t.Fatalf("expected file inside upload dir: %v", err)
	}
}

func TestDiskStore_RejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewDiskStore(dir)

	_, err := store.Save(context.Background(), "notes.txt", strings.NewReader("hello"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected nothing written, found %d entries", len(entries))
	}
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Save(t *testing.T) {
	putter := &fakePutter{}
	store := &S3Store{client: putter, bucket: "avatars", now: fixedClock}

	key, err := store.Save(context.Background(), "avatar.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if key != "uploads/1700000000123-avatar.png" {
		t.Fatalf("unexpected key %q", key)
	}
	if *putter.in.Bucket != "avatars" || *putter.in.Key != key {
		t.Fatalf("unexpected put input: bucket=%s key=%s", *putter.in.Bucket, *putter.in.Key)
	}
	if *putter.in.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %s", *putter.in.ContentType)
	}
	if !bytes.Equal(putter.body, pngHeader) {
		t.Fatal("body must be uploaded from the start after sniffing")
	}
}

func TestS3Store_PutError(t *testing.T) {
	store := &S3Store{client: &fakePutter{err: errors.New("access denied")}, bucket: "avatars", now: fixedClock}

	if _, err := store.Save(context.Background(), "avatar.gif", bytes.NewReader([]byte("GIF89a"))); err == nil {
		t.Fatal("expected put error")
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"}); err == nil {
		t.Fatal("expected error without bucket")
	}
}
