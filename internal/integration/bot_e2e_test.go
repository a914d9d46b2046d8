//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "travel_planner/internal/adapters/http_server"
	"travel_planner/internal/adapters/memcache"
	"travel_planner/internal/adapters/telegram"
	"travel_planner/internal/app"
	"travel_planner/internal/domain"
	"travel_planner/internal/knowledge"
	"travel_planner/internal/nlp"
	mysqlrepo "travel_planner/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=travel",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/travel?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

// ---------- fake Bot API ----------

type fakeTelegram struct {
	mu      sync.Mutex
	pending []telegram.Update
	sent    chan telegram.SendMessageRequest
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	var result any
	switch method {
	case "getMe":
		result = telegram.User{ID: 1, IsBot: true, FirstName: "Travel", Username: "travel_test_bot"}
	case "deleteWebhook":
		result = true
	case "getUpdates":
		var req struct {
			Offset int `json:"offset"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		out := []telegram.Update{}
		for _, u := range f.pending {
			if u.UpdateID >= req.Offset {
				out = append(out, u)
			}
		}
		f.mu.Unlock()
		result = out
	case "sendMessage":
		var req telegram.SendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.sent <- req
		result = telegram.Message{MessageID: 1, Chat: telegram.Chat{ID: req.ChatID}}
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		return
	}
	b, _ := json.Marshal(result)
	_, _ = fmt.Fprintf(w, `{"ok":true,"result":%s}`, b)
}

func msg(id int, chat int64, text string) telegram.Update {
	return telegram.Update{UpdateID: id, Message: &telegram.Message{MessageID: id, Chat: telegram.Chat{ID: chat, Type: "private"}, Text: text}}
}

// ---------- the test ----------

func TestBot_EndToEnd_RepliesAndRecordsMisses(t *testing.T) {
	db := startMySQL(t)

	kb, err := knowledge.Default()
	if err != nil {
		t.Fatalf("knowledge: %v", err)
	}
	repo := mysqlrepo.New(db)
	conv := app.NewConversationService(
		nlp.FromKnowledge(kb),
		app.NewResponder(kb, app.NewRand(7)),
		memcache.New(time.Minute, time.Minute),
		time.Minute,
		repo,
	)

	fake := &fakeTelegram{
		pending: []telegram.Update{
			msg(100, 42, "/start"),
			msg(101, 42, "Tell me about Bali"),
			msg(102, 42, "what's the visa situation"),
			msg(103, 43, "what's the visa situation"),
		},
		sent: make(chan telegram.SendMessageRequest, 16),
	}
	tg := httptest.NewServer(fake)
	defer tg.Close()

	client, err := telegram.New(tg.URL, "TEST", 100)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := client.GetMe(ctx); err != nil {
		t.Fatalf("getMe: %v", err)
	}

	poller := telegram.NewPoller(client, telegram.NewBot(client, conv), 10*time.Millisecond, 0, 1)
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	var got []telegram.SendMessageRequest
	timeout := time.After(10 * time.Second)
	for len(got) < 4 {
		select {
		case m := <-fake.sent:
			got = append(got, m)
		case <-timeout:
			t.Fatalf("timed out after %d replies", len(got))
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("poller: %v", err)
	}

	if got[0].Text != telegram.WelcomeText || got[0].ReplyMarkup == nil {
		t.Fatalf("expected welcome with keyboard, got %+v", got[0])
	}
	if !strings.HasPrefix(got[1].Text, "🌆 Bali 🌆") {
		t.Fatalf("expected Bali block, got %q", got[1].Text)
	}
	for _, m := range got[2:] {
		if !isFallback(m.Text) {
			t.Fatalf("expected a fallback reply, got %q", m.Text)
		}
	}
	if poller.Offset() != 104 {
		t.Fatalf("expected offset 104, got %d", poller.Offset())
	}

	// the API reports the recorded misses
	srv := server.New()
	srv.MountHandlers(&server.Handlers{Conv: conv, KB: kb})
	api := httptest.NewServer(srv.Mux())
	defer api.Close()

	res, err := http.Get(api.URL + "/v1/misses?limit=10")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var body struct {
		Items []domain.MissStat `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("expected one distinct miss, got %+v", body.Items)
	}
	if it := body.Items[0]; it.Text != "what's the visa situation" || it.Count != 2 || it.LastChat != 43 {
		t.Fatalf("unexpected miss: %+v", it)
	}
}

func isFallback(s string) bool {
	for _, f := range app.FallbackReplies {
		if s == f {
			return true
		}
	}
	return false
}
