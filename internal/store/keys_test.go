package store

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"mediakit/internal/media"
)

// awkwardKeys hold characters that are special inside URLs.
var awkwardKeys = []string{
	"image/1_my#1.jpg",
	"image/1_what?.jpg",
	"image/1_100%.jpg",
	"audio/1_note:v2.m4a",
	"document/1_a b+c.pdf",
}

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "image/1_photo.jpg", want: "image/1_photo.jpg"},
		{key: "image/1_my#1.jpg", want: "image/1_my%231.jpg"},
		{key: "image/1_what?.jpg", want: "image/1_what%3F.jpg"},
		{key: "image/1_100%.jpg", want: "image/1_100%25.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := escapeKey(tt.key)
			if got != tt.want {
				t.Errorf("escapeKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
			back, ok := unescapeKey(got)
			if !ok || back != tt.key {
				t.Errorf("unescapeKey(%q) = %q, %v; want %q", got, back, ok, tt.key)
			}
		})
	}
}

func TestStores_AwkwardKeysRoundTrip(t *testing.T) {
	backend := newObjectServer()
	srv := httptest.NewServer(backend)
	defer srv.Close()

	fakeS3 := newFakeS3()
	fakeMinio := newFakeMinio()
	stores := map[string]media.RemoteStore{
		"memory": NewMemoryStore("remote"),
		"http":   NewHTTPStore(srv.URL, srv.Client()),
		"s3":     newS3Store(S3Options{Bucket: "b", Region: "eu-west-1"}, fakeS3, fakeS3),
		"minio":  newTestMinioStore(fakeMinio),
	}

	for name, s := range stores {
		for _, key := range awkwardKeys {
			t.Run(name+"/"+key, func(t *testing.T) {
				ctx := context.Background()
				url, err := s.Put(ctx, key, strings.NewReader("body of "+key), "application/octet-stream")
				if err != nil {
					t.Fatalf("Put(%q) error = %v", key, err)
				}
				if strings.ContainsAny(url[strings.Index(url, "://")+3:], "#?") {
					t.Errorf("Put(%q) url = %q, want '#' and '?' escaped", key, url)
				}

				obj, err := s.Open(ctx, url)
				if err != nil {
					t.Fatalf("Open(%q) error = %v", url, err)
				}
				defer obj.Body.Close()
				data, _ := io.ReadAll(obj.Body)
				if string(data) != "body of "+key {
					t.Errorf("Open(%q) = %q, want %q", url, data, "body of "+key)
				}
			})
		}
	}

	if _, ok := backend.objects["/image/1_my#1.jpg"]; !ok {
		t.Errorf("http server paths = %v, want unescaped object name", keysOf(backend.objects))
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
