package client

import (
	"sort"
	"testing"
)

func TestToggleAddsAndRemoves(t *testing.T) {
	s := NewOptimisticSet(nil)
	v, _ := s.Toggle("g1")
	if !v || !s.Has("g1") {
		t.Fatal("toggle on empty set should add")
	}
	v, _ = s.Toggle("g1")
	if v || s.Has("g1") {
		t.Fatal("second toggle should remove")
	}
}

func TestDoubleToggleRestoresCommitted(t *testing.T) {
	s := NewOptimisticSet([]string{"g1"})
	s.Toggle("g1")
	s.Toggle("g1")
	if !s.Has("g1") {
		t.Fatal("double toggle should land back on committed state")
	}
	items := s.Items()
	if len(items) != 1 || items[0] != "g1" {
		t.Fatalf("items = %v", items)
	}
}

func TestRollbackRestoresVisibleState(t *testing.T) {
	s := NewOptimisticSet([]string{"g1"})
	v, rollback := s.Toggle("g1")
	if v || s.Has("g1") {
		t.Fatal("toggle should remove optimistically")
	}
	rollback()
	if !s.Has("g1") {
		t.Fatal("rollback should restore the bookmark")
	}
}

func TestCommitPromotesPending(t *testing.T) {
	s := NewOptimisticSet(nil)
	s.Toggle("g2")
	s.Commit("g2")
	if !s.Has("g2") {
		t.Fatal("commit should keep the added id")
	}

	s.Toggle("g2")
	s.Commit("g2")
	if s.Has("g2") {
		t.Fatal("committed removal should drop the id")
	}
}

func TestItemsMergesPendingAndCommitted(t *testing.T) {
	s := NewOptimisticSet([]string{"a", "b"})
	s.Toggle("b") // pending remove
	s.Toggle("c") // pending add

	items := s.Items()
	sort.Strings(items)
	if len(items) != 2 || items[0] != "a" || items[1] != "c" {
		t.Fatalf("items = %v, want [a c]", items)
	}
}

func TestResetDropsPending(t *testing.T) {
	s := NewOptimisticSet([]string{"a"})
	s.Toggle("z")
	s.Reset([]string{"b"})
	if s.Has("a") || s.Has("z") || !s.Has("b") {
		t.Fatal("reset should replace all state with server truth")
	}
}
