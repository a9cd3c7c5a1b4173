package sharecache

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"webshot/internal/config"
	"webshot/internal/logging"
)

type memKV struct {
	mu      sync.Mutex
	values  map[string][]byte
	ttls    map[string]time.Duration
	pingErr error
}

func newMemKV() *memKV {
	return &memKV{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memKV) Ping(ctx context.Context) error { return m.pingErr }
func (m *memKV) Close() error                   { return nil }

func TestFilenameFor(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	// sha256("https://example.com") = 100680ad546ce6a577f42f52df33b4cfdca756859e664b8d7de329b150d09ce9
	want := "twitter-100680ad54-1700000000123.jpg"
	if got := FilenameFor("twitter", "https://example.com", at); got != want {
		t.Errorf("FilenameFor = %q, want %q", got, want)
	}
}

func TestCache_StoreAndFetch(t *testing.T) {
	kv := newMemKV()
	c := New(kv, 0, logging.Nop())
	c.now = func() time.Time { return time.UnixMilli(42) }

	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 'j', 'p', 'g'}
	imageData := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	name, err := c.Store(context.Background(), imageData, "https://example.com", "linkedin")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if name != "linkedin-100680ad54-42.jpg" {
		t.Errorf("filename = %s", name)
	}
	if kv.ttls[keyPrefix+name] != DefaultTTL {
		t.Errorf("ttl = %v, want %v", kv.ttls[keyPrefix+name], DefaultTTL)
	}

	got, err := c.Fetch(context.Background(), name)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("fetched bytes differ: %v", got)
	}
}

func TestCache_StoreAcceptsBareBase64(t *testing.T) {
	c := New(newMemKV(), time.Hour, logging.Nop())
	name, err := c.Store(context.Background(), base64.StdEncoding.EncodeToString([]byte("img")), "https://a.test", "facebook")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if c.TTL() != time.Hour {
		t.Errorf("TTL = %v", c.TTL())
	}
	if _, err := c.Fetch(context.Background(), name); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
}

func TestCache_StoreRejectsBadInput(t *testing.T) {
	c := New(newMemKV(), 0, logging.Nop())
	ctx := context.Background()

	cases := []struct{ data, url, platform string }{
		{"", "https://a.test", "twitter"},
		{"aGk=", "", "twitter"},
		{"aGk=", "https://a.test", ""},
		{"aGk=", "https://a.test", "../etc"},
		{"data:image/png;base64,%%%", "https://a.test", "twitter"},
	}
	for _, tc := range cases {
		if _, err := c.Store(ctx, tc.data, tc.url, tc.platform); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Store(%q, %q, %q) = %v, want ErrInvalidInput", tc.data, tc.url, tc.platform, err)
		}
	}
}

func TestCache_FetchMissing(t *testing.T) {
	c := New(newMemKV(), 0, logging.Nop())
	for _, name := range []string{"twitter-0123456789-1.jpg", "../../secret", "no-such"} {
		if _, err := c.Fetch(context.Background(), name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Fetch(%q) = %v, want ErrNotFound", name, err)
		}
	}
}

func TestCache_Healthy(t *testing.T) {
	kv := newMemKV()
	c := New(kv, 0, logging.Nop())
	if err := c.Healthy(context.Background()); err != nil {
		t.Fatalf("Healthy: %v", err)
	}
	kv.pingErr = errors.New("connection refused")
	if err := c.Healthy(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestNewRedisKV(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.URL = "redis://localhost:6390/2"
	kv, err := NewRedisKV(cfg)
	if err != nil {
		t.Fatalf("NewRedisKV: %v", err)
	}
	defer kv.Close()
	if kv.Addr() != "localhost:6390" {
		t.Errorf("Addr = %s", kv.Addr())
	}

	cfg.Redis.URL = "not a url"
	if _, err := NewRedisKV(cfg); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
