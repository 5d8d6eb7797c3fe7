// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"assets/hero.txt": {Data: []byte("hero")},
		"assets/logo.txt": {Data: []byte("logo")},
		"other/thing.txt": {Data: []byte("thing")},
	}
}

func TestManagerPrefixNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"assets", "assets/"},
		{"assets/", "assets/"},
		{`assets\textures`, "assets/textures/"},
		{`assets\`, "assets/"},
	}
	m, err := NewManager(testFS(), ManagerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		m.SetPrefix(tt.in)
		if got := m.Prefix(); got != tt.want {
			t.Errorf("SetPrefix(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestManagerLazyLoad(t *testing.T) {
	m, err := NewManager(testFS(), ManagerOptions{Prefix: "assets"})
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	if err := m.RegisterLoader("text", func(name string, data []byte) (any, error) {
		calls++
		return string(data), nil
	}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		v, err := m.Load("text", "hero.txt")
		if err != nil {
			t.Fatal(err)
		}
		if v.(string) != "hero" {
			t.Fatalf("got %q, want %q", v, "hero")
		}
	}
	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}
	if !m.IsLoaded("hero.txt") {
		t.Error("IsLoaded = false after load")
	}

	m.Forget("hero.txt")
	if m.IsLoaded("hero.txt") {
		t.Error("IsLoaded = true after Forget")
	}
	if _, err := m.Load("text", "hero.txt"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("loader ran %d times after Forget, want 2", calls)
	}
}

func TestManagerTypeConflict(t *testing.T) {
	m, err := NewManager(testFS(), ManagerOptions{Prefix: "assets"})
	if err != nil {
		t.Fatal(err)
	}
	pass := func(name string, data []byte) (any, error) { return data, nil }
	if err := m.RegisterLoader("text", pass); err != nil {
		t.Fatal(err)
	}
	if err := m.RegisterLoader("blob", pass); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Load("text", "hero.txt"); err != nil {
		t.Fatal(err)
	}
	_, err = m.Load("blob", "hero.txt")
	if !errors.Is(err, ErrTypeConflict) {
		t.Errorf("got %v, want ErrTypeConflict", err)
	}
}

func TestManagerLoaderErrors(t *testing.T) {
	m, err := NewManager(testFS(), ManagerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	pass := func(name string, data []byte) (any, error) { return data, nil }

	if _, err := m.Load("", "hero.txt"); !errors.Is(err, ErrEmptyTypeID) {
		t.Errorf("empty type: got %v, want ErrEmptyTypeID", err)
	}
	if _, err := m.Load("texture", "hero.txt"); !errors.Is(err, ErrNoLoader) {
		t.Errorf("unknown type: got %v, want ErrNoLoader", err)
	}
	if err := m.RegisterLoader("", pass); !errors.Is(err, ErrEmptyTypeID) {
		t.Errorf("empty registration: got %v, want ErrEmptyTypeID", err)
	}
	if err := m.RegisterLoader("text", pass); err != nil {
		t.Fatal(err)
	}
	if err := m.RegisterLoader("text", pass); !errors.Is(err, ErrLoaderExists) {
		t.Errorf("duplicate registration: got %v, want ErrLoaderExists", err)
	}

	// Missing files surface the underlying fs error.
	if _, err := m.Load("text", "missing.txt"); err == nil {
		t.Error("loading a missing file succeeded")
	}
}
