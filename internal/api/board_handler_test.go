package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCreateBoard_ReturnsRecord(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@x.com", "pw1")

	w := doJSON(t, router, http.MethodPost, "/api/boards", token, gin.H{"name": "Search 2024"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["name"] != "Search 2024" {
		t.Fatalf("expected board name, got %v", body["name"])
	}
	if id, _ := body["id"].(float64); id <= 0 {
		t.Fatalf("expected generated id, got %v", body["id"])
	}
}

func TestCreateBoard_RequiresName(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@x.com", "pw1")

	w := doJSON(t, router, http.MethodPost, "/api/boards", token, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestListBoards_ScopedToOwner(t *testing.T) {
	router, _ := newTestRouter(t)
	tokenA := registerUser(t, router, "Alice", "alice@x.com", "pw1")
	tokenB := registerUser(t, router, "Bob", "bob@y.com", "pw2")

	createBoard(t, router, tokenA, "Search 2024")
	createBoard(t, router, tokenA, "Backup plan")
	createBoard(t, router, tokenB, "Bob's board")

	boardsA := decodeList(t, doJSON(t, router, http.MethodGet, "/api/boards", tokenA, nil))
	if len(boardsA) != 2 {
		t.Fatalf("expected 2 boards for alice, got %d", len(boardsA))
	}
	for _, b := range boardsA {
		if b["name"] == "Bob's board" {
			t.Fatal("alice must not see bob's board")
		}
	}

	boardsB := decodeList(t, doJSON(t, router, http.MethodGet, "/api/boards", tokenB, nil))
	if len(boardsB) != 1 || boardsB[0]["name"] != "Bob's board" {
		t.Fatalf("expected only bob's board, got %v", boardsB)
	}
}

func TestListBoards_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/boards", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if msg := decodeBody(t, w)["msg"]; msg != "No token, authorization denied" {
		t.Fatalf("unexpected message %v", msg)
	}
}
