package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

type item struct {
	models.Meta
	Name string `json:"name"`
}

func newItem(name string) item {
	return item{Meta: models.Meta{ID: NewID()}, Name: name}
}

func TestCollectionCRUD(t *testing.T) {
	c := NewCollection[item](tempStore(t), "items")

	a := newItem("a")
	if err := c.Insert(a); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := c.Get(a.ID)
	if err != nil || got.Name != "a" {
		t.Fatalf("Get: %v %+v", err, got)
	}

	updated, err := c.Update(a.ID, func(it *item) error {
		it.Name = "b"
		return nil
	})
	if err != nil || updated.Name != "b" {
		t.Fatalf("Update: %v %+v", err, updated)
	}

	deleted, err := c.Delete(a.ID)
	if err != nil || deleted.ID != a.ID {
		t.Fatalf("Delete: %v", err)
	}
	items, _ := c.List()
	if len(items) != 0 {
		t.Errorf("len = %d after delete", len(items))
	}
}

func TestCollectionDeleteUnknownLeavesFileUnchanged(t *testing.T) {
	s := tempStore(t)
	c := NewCollection[item](s, "items")
	_ = c.Insert(newItem("keep"))
	path := filepath.Join(s.Root(), "items.json")
	before, _ := os.ReadFile(path)
	info, _ := os.Stat(path)

	_, err := c.Delete("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	after, _ := os.ReadFile(path)
	info2, _ := os.Stat(path)
	if string(before) != string(after) || !info.ModTime().Equal(info2.ModTime()) {
		t.Error("collection file was rewritten")
	}
}

func TestCollectionUpdateErrorAborts(t *testing.T) {
	c := NewCollection[item](tempStore(t), "items")
	it := newItem("a")
	_ = c.Insert(it)
	boom := errors.New("boom")
	_, err := c.Update(it.ID, func(i *item) error {
		i.Name = "changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	got, _ := c.Get(it.ID)
	if got.Name != "a" {
		t.Errorf("name = %q, update should not persist", got.Name)
	}
}

func TestWrappedCollectionShape(t *testing.T) {
	s := tempStore(t)
	c := NewWrappedCollection[item](s, "skills", "skills")
	if err := c.Insert(newItem("go")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(s.Root(), "skills.json"))
	if !strings.HasPrefix(string(data), "{\n  \"skills\": [") {
		t.Errorf("unexpected file shape: %s", data)
	}
	items, _ := c.List()
	if len(items) != 1 || items[0].Name != "go" {
		t.Errorf("items = %+v", items)
	}
}

func TestEmptyCollectionSavesArray(t *testing.T) {
	s := tempStore(t)
	c := NewCollection[item](s, "items")
	it := newItem("x")
	_ = c.Insert(it)
	_, _ = c.Delete(it.ID)
	data, _ := os.ReadFile(filepath.Join(s.Root(), "items.json"))
	if string(data) != "[]\n" {
		t.Errorf("content = %q", data)
	}
}

func TestConcurrentInsertsAreSerialised(t *testing.T) {
	c := NewCollection[item](tempStore(t), "items")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Insert(newItem("n"))
		}()
	}
	wg.Wait()
	items, _ := c.List()
	if len(items) != 20 {
		t.Errorf("len = %d, want 20 (lost update)", len(items))
	}
}

func TestNewIDDistinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestNewIDMonotonicWithFrozenClock(t *testing.T) {
	now := time.Now().Add(time.Hour)
	a := newIDAt(now)
	b := newIDAt(now)
	if a >= b && len(a) == len(b) {
		t.Errorf("ids not increasing: %s then %s", a, b)
	}
}

func TestDocumentDefaultsAndUpdate(t *testing.T) {
	d := NewDocument(tempStore(t), "counter", func() map[string]int { return map[string]int{"n": 0} })
	v, err := d.Get()
	if err != nil || v["n"] != 0 {
		t.Fatalf("Get: %v %v", v, err)
	}
	v, err = d.Update(func(m *map[string]int) error {
		(*m)["n"]++
		return nil
	})
	if err != nil || v["n"] != 1 {
		t.Fatalf("Update: %v %v", v, err)
	}
	v, _ = d.Get()
	if v["n"] != 1 {
		t.Errorf("persisted n = %d", v["n"])
	}
}
