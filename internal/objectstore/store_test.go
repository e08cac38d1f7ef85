package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"tubecast/internal/config"
	"tubecast/internal/services"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]http.Header
	deleted []string
	failAll bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		return
	}
	_, _ = io.Copy(io.Discard, r.Body)
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != "podcasts" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPut:
		f.objects[key] = r.Header.Clone()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		f.deleted = append(f.deleted, key)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		prefix := r.URL.Query().Get("prefix")
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
		b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
		b.WriteString(`<Name>podcasts</Name><Prefix>` + prefix + `</Prefix><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>`)
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		b.WriteString(fmt.Sprintf("<KeyCount>%d</KeyCount>", len(keys)))
		for _, k := range keys {
			b.WriteString("<Contents><Key>" + k + "</Key><Size>5</Size><ETag>&quot;x&quot;</ETag><StorageClass>STANDARD</StorageClass></Contents>")
		}
		b.WriteString(`</ListBucketResult>`)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, b.String())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T, fake *fakeS3) *Store {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	store, err := New(config.Storage{
		Endpoint:   server.URL,
		Region:     "auto",
		Bucket:     "podcasts",
		AccessKey:  "key",
		SecretKey:  "secret",
		PublicRead: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestPutListDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string]http.Header{}}
	store := newTestStore(t, fake)
	ctx := context.Background()

	local := filepath.Join(t.TempDir(), "01-05：news.mp3")
	if err := os.WriteFile(local, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, local, "news/01-05：news.mp3"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	header, ok := fake.objects["news/01-05：news.mp3"]
	if !ok {
		t.Fatalf("object not stored: %v", fake.objects)
	}
	if got := header.Get("Content-Type"); got != "audio/mpeg" {
		t.Fatalf("content type = %q", got)
	}
	if got := header.Get("X-Amz-Acl"); got != "public-read" {
		t.Fatalf("acl = %q", got)
	}

	fake.objects["other/01-01：x.mp3"] = http.Header{}
	keys, err := store.List(ctx, "news/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !slices.Equal(keys, []string{"news/01-05：news.mp3"}) {
		t.Fatalf("unexpected keys %v", keys)
	}

	if err := store.Delete(ctx, "news/01-05：news.mp3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "news/01-05：news.mp3" {
		t.Fatalf("unexpected deletions %v", fake.deleted)
	}
}

func TestListFailureIsTransport(t *testing.T) {
	store := newTestStore(t, &fakeS3{objects: map[string]http.Header{}, failAll: true})
	if _, err := store.List(context.Background(), "news/"); !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"news/01-05：a.mp3": "audio/mpeg",
		"news/feed.xml":    "application/rss+xml",
		"news/cover.jpg":   "application/octet-stream",
	}
	for key, want := range cases {
		if got := ContentType(key); got != want {
			t.Fatalf("ContentType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		host   string
		secure bool
		err    bool
	}{
		{"https://acct.r2.cloudflarestorage.com", "acct.r2.cloudflarestorage.com", true, false},
		{"http://127.0.0.1:9000", "127.0.0.1:9000", false, false},
		{"acct.r2.cloudflarestorage.com/", "acct.r2.cloudflarestorage.com", true, false},
		{"ftp://host", "", false, true},
		{"", "", false, true},
	}
	for _, tt := range tests {
		host, secure, err := parseEndpoint(tt.in)
		if (err != nil) != tt.err || host != tt.host || secure != tt.secure {
			t.Fatalf("parseEndpoint(%q) = %q, %v, %v", tt.in, host, secure, err)
		}
	}
}
