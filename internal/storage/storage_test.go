package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("data directory not created: %v", err)
	}

	if _, found, err := store.Read(ctx, MonthKey); err != nil || found {
		t.Fatalf("Read() on empty store = found %v, err %v", found, err)
	}

	if err := store.Write(ctx, MonthKey, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := store.Write(ctx, MonthKey, []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}

	data, found, err := store.Read(ctx, MonthKey)
	if err != nil || !found {
		t.Fatalf("Read() = found %v, err %v", found, err)
	}
	if string(data) != `{"a":2}` {
		t.Errorf("Read() = %s, want overwritten content", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != MonthKey {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("data directory contains %v, want only %s", names, MonthKey)
	}
}

func TestFileStore_InvalidKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"", "../escape.json", "a/b.json"} {
		t.Run(key, func(t *testing.T) {
			if err := store.Write(context.Background(), key, []byte("{}")); err == nil {
				t.Errorf("Write(%q) should fail", key)
			}
			if _, _, err := store.Read(context.Background(), key); err == nil {
				t.Errorf("Read(%q) should fail", key)
			}
		})
	}
}

func TestFileStore_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewFileStore("~/.local/share/hijri-month")
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	want := filepath.Join(home, ".local", "share", "hijri-month")
	if store.Dir() != want {
		t.Errorf("Dir() = %q, want %q", store.Dir(), want)
	}
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)

	client := NewRedisClient(server.Addr(), "", "")
	store := NewRedisStore(client, DefaultRedisPrefix)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}

	if _, found, err := store.Read(ctx, DayKey); err != nil || found {
		t.Fatalf("Read() on empty store = found %v, err %v", found, err)
	}

	if err := store.Write(ctx, DayKey, []byte(`{"hijriDay":"5"}`)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := server.Get(DefaultRedisPrefix + DayKey)
	if err != nil {
		t.Fatalf("key not stored under prefix: %v", err)
	}
	if got != `{"hijriDay":"5"}` {
		t.Errorf("stored value = %s", got)
	}
	if ttl := server.TTL(DefaultRedisPrefix + DayKey); ttl != 0 {
		t.Errorf("TTL = %s, want no expiry", ttl)
	}

	data, found, err := store.Read(ctx, DayKey)
	if err != nil || !found || string(data) != got {
		t.Errorf("Read() = %s, %v, %v", data, found, err)
	}
}

func TestRedisStore_ServerDown(t *testing.T) {
	server := miniredis.RunT(t)
	store := NewRedisStore(NewRedisClient(server.Addr(), "", ""), "")
	defer store.Close()
	server.Close()

	_, _, err := store.Read(context.Background(), MonthKey)
	if err == nil {
		t.Fatal("Read() against a stopped server should fail")
	}
	if !strings.Contains(err.Error(), MonthKey) {
		t.Errorf("error %q does not name the key", err)
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("one")
	if err := m.Write(ctx, "k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	data, found, _ := m.Read(ctx, "k")
	if !found || string(data) != "one" {
		t.Errorf("Read() = %q, %v; stored value must not alias the caller's buffer", data, found)
	}
	if m.Keys() != 1 {
		t.Errorf("Keys() = %d, want 1", m.Keys())
	}
}
