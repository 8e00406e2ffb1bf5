package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"protanni/internal/server"
	"protanni/internal/session"
	"protanni/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate points the config dir at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PROTANNI_CONFIG_DIR", dir)
	for _, k := range []string{"PROTANNI_SERVER", "PROTANNI_TOKEN", "PROTANNI_TZ", "PROTANNI_DB_DRIVER", "PROTANNI_DB_DSN", "PROTANNI_REDIS_URL", "PROTANNI_FORMAT"} {
		t.Setenv(k, "")
	}
	return dir
}

// apiFlags starts an API over a fresh SQLite database and returns the global
// flags that point the CLI at it.
func apiFlags(t *testing.T) []string {
	t.Helper()
	isolate(t)
	ctx := context.Background()
	db, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "api.sqlite"), store.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	u, err := db.CreateUser(ctx, "Ada", "UTC")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	sessions := session.NewManager(db, time.Hour)
	token, err := sessions.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	srv := httptest.NewServer(server.New(server.Options{DB: db, Auth: sessions}).Handler())
	t.Cleanup(srv.Close)
	return []string{"--server", srv.URL, "--token", token, "--tz", "UTC"}
}

func mustRun(t *testing.T, flags []string, args ...string) map[string]any {
	t.Helper()
	out, errOut, err := runCLI(t, append(append([]string{}, args...), flags...))
	if err != nil {
		t.Fatalf("%v: %v (stderr=%s)", args, err, string(errOut))
	}
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("%v: expected JSON output, got %q: %v", args, string(out), err)
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", env["data"])
	}
	return m
}

func TestTasks_AddToggleDelete(t *testing.T) {
	flags := apiFlags(t)

	created := dataMap(t, mustRun(t, flags, "tasks", "add", "Write", "report", "--area", "work"))
	id, _ := created["id"].(string)
	if id == "" || created["title"] != "Write report" || created["area"] != "work" {
		t.Fatalf("unexpected created task %#v", created)
	}

	toggled := mustRun(t, flags, "tasks", "toggle", id)
	if toggled["outcome"] != "committed" {
		t.Fatalf("expected committed, got %#v", toggled["outcome"])
	}
	if got := dataMap(t, toggled)["status"]; got != "done" {
		t.Fatalf("expected done, got %#v", got)
	}

	listed := mustRun(t, flags, "tasks", "list", "--area", "work")
	items, _ := listed["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 work task, got %#v", listed["data"])
	}

	deleted := mustRun(t, flags, "tasks", "delete", id)
	if deleted["outcome"] != "committed" {
		t.Fatalf("expected committed delete, got %#v", deleted["outcome"])
	}
	listed = mustRun(t, flags, "tasks", "list")
	if items, _ := listed["data"].([]any); len(items) != 0 {
		t.Fatalf("expected no tasks, got %#v", listed["data"])
	}
}

func TestTasks_ToggleUnknownID(t *testing.T) {
	flags := apiFlags(t)
	_, errOut, err := runCLI(t, append([]string{"tasks", "toggle", "nope"}, flags...))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(errOut), "nope") {
		t.Fatalf("expected id in error, got %q", string(errOut))
	}
}

func TestTasks_ListRejectsUnknownArea(t *testing.T) {
	flags := apiFlags(t)
	_, errOut, err := runCLI(t, append([]string{"tasks", "list", "--area", "garden"}, flags...))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(errOut), "unknown area: garden") {
		t.Fatalf("unexpected stderr %q", string(errOut))
	}
}

func TestHabits_ToggleMarksDoneToday(t *testing.T) {
	flags := apiFlags(t)

	h := dataMap(t, mustRun(t, flags, "habits", "add", "Stretch", "--frequency", "daily"))
	id, _ := h["id"].(string)

	toggled := mustRun(t, flags, "habits", "toggle", id)
	if toggled["outcome"] != "committed" {
		t.Fatalf("expected committed, got %#v", toggled["outcome"])
	}
	if done := dataMap(t, toggled)["done_today"]; done != true {
		t.Fatalf("expected done_today, got %#v", done)
	}

	toggled = mustRun(t, flags, "habits", "toggle", id)
	if done := dataMap(t, toggled)["done_today"]; done != false {
		t.Fatalf("expected toggled back, got %#v", done)
	}
}

func TestCaptures_ConvertLinksTask(t *testing.T) {
	flags := apiFlags(t)

	c := dataMap(t, mustRun(t, flags, "captures", "add", "Call the bank"))
	id, _ := c["id"].(string)

	converted := mustRun(t, flags, "captures", "convert", id)
	if converted["outcome"] != "committed" {
		t.Fatalf("expected committed, got %#v", converted["outcome"])
	}
	data := dataMap(t, converted)
	taskID, _ := data["task_id"].(string)
	if taskID == "" {
		t.Fatalf("expected task id, got %#v", data)
	}
	task, ok := data["task"].(map[string]any)
	if !ok || task["title"] != "Call the bank" {
		t.Fatalf("expected reconciled task, got %#v", data["task"])
	}

	processed := mustRun(t, flags, "inbox", "list", "--status", "processed")
	if items, _ := processed["data"].([]any); len(items) != 1 {
		t.Fatalf("expected one processed capture, got %#v", processed["data"])
	}
}

func TestCaptures_ArchiveAndRestore(t *testing.T) {
	flags := apiFlags(t)

	c := dataMap(t, mustRun(t, flags, "captures", "add", "Someday", "--type", "idea"))
	id, _ := c["id"].(string)

	if out := mustRun(t, flags, "captures", "archive", id); out["outcome"] != "committed" {
		t.Fatalf("expected committed archive, got %#v", out["outcome"])
	}
	archived := mustRun(t, flags, "captures", "list", "--status", "archived")
	if items, _ := archived["data"].([]any); len(items) != 1 {
		t.Fatalf("expected archived capture, got %#v", archived["data"])
	}

	if out := mustRun(t, flags, "captures", "restore", id); out["outcome"] != "committed" {
		t.Fatalf("expected committed restore, got %#v", out["outcome"])
	}
	inbox := mustRun(t, flags, "captures", "list")
	if items, _ := inbox["data"].([]any); len(items) != 1 {
		t.Fatalf("expected capture back in inbox, got %#v", inbox["data"])
	}
}

func TestMood_SetAndShow(t *testing.T) {
	flags := apiFlags(t)

	set := mustRun(t, flags, "mood", "set", "2")
	if set["outcome"] != "committed" {
		t.Fatalf("expected committed, got %#v", set["outcome"])
	}
	if got := dataMap(t, set)["mood"]; got != "good" {
		t.Fatalf("expected good, got %#v", got)
	}

	shown := mustRun(t, flags, "mood", "show")
	if got := dataMap(t, shown)["mood"]; got != "good" {
		t.Fatalf("expected stored mood good, got %#v", got)
	}
}

func TestMood_RejectsUnknownLevel(t *testing.T) {
	flags := apiFlags(t)
	_, errOut, err := runCLI(t, append([]string{"mood", "set", "ecstatic"}, flags...))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(errOut), "unknown mood: ecstatic") {
		t.Fatalf("unexpected stderr %q", string(errOut))
	}
}

func TestFocus_SetAndShow(t *testing.T) {
	flags := apiFlags(t)

	set := mustRun(t, flags, "focus", "set", "Finish", "the", "draft")
	if got := dataMap(t, set)["text"]; got != "Finish the draft" {
		t.Fatalf("expected focus text, got %#v", got)
	}
	shown := dataMap(t, mustRun(t, flags, "focus", "show"))
	if shown["text"] != "Finish the draft" || shown["is_today"] != true {
		t.Fatalf("unexpected focus %#v", shown)
	}
}

func TestToday_ShowsMoodAndFocusTogether(t *testing.T) {
	flags := apiFlags(t)
	mustRun(t, flags, "mood", "set", "great")
	mustRun(t, flags, "focus", "set", "Ship")

	today := dataMap(t, mustRun(t, flags, "today"))
	mood, _ := today["mood"].(map[string]any)
	if mood["mood"] != "great" {
		t.Fatalf("expected great mood, got %#v", today["mood"])
	}
	focus, _ := today["focus"].(map[string]any)
	if focus["text"] != "Ship" {
		t.Fatalf("expected focus text, got %#v", today["focus"])
	}
	if today["date"] == "" {
		t.Fatalf("expected a date, got %#v", today)
	}
}

func TestReview_Markdown(t *testing.T) {
	flags := apiFlags(t)
	out, errOut, err := runCLI(t, append([]string{"review", "--markdown"}, flags...))
	if err != nil {
		t.Fatalf("review: %v (stderr=%s)", err, string(errOut))
	}
	if !strings.HasPrefix(string(out), "# Week of ") {
		t.Fatalf("expected markdown heading, got %q", string(out))
	}
}

func TestFormat_YAML(t *testing.T) {
	flags := apiFlags(t)
	out, errOut, err := runCLI(t, append([]string{"tasks", "list", "--format", "yaml"}, flags...))
	if err != nil {
		t.Fatalf("list: %v (stderr=%s)", err, string(errOut))
	}
	if strings.TrimSpace(string(out)) != "data: []" {
		t.Fatalf("unexpected yaml %q", string(out))
	}
}

func TestUsers_AddPrintsWorkingToken(t *testing.T) {
	dir := isolate(t)

	out, errOut, err := runCLI(t, []string{"users", "add", "Grace", "--tz", "Europe/Oslo"})
	if err != nil {
		t.Fatalf("users add: %v (stderr=%s)", err, string(errOut))
	}
	var env struct {
		Data struct {
			User struct {
				ID       string `json:"id"`
				Timezone string `json:"timezone"`
			} `json:"user"`
			Token string `json:"token"`
		} `json:"data"`
		Hints []string `json:"_hints"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, string(out))
	}
	if env.Data.User.Timezone != "Europe/Oslo" || !strings.HasPrefix(env.Data.Token, "pt_") {
		t.Fatalf("unexpected output %+v", env)
	}
	if len(env.Hints) != 1 || !strings.Contains(env.Hints[0], env.Data.Token) {
		t.Fatalf("expected login hint, got %v", env.Hints)
	}

	db, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(dir, "protanni.sqlite"), store.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	userID, err := session.NewManager(db, 0).Authenticate(context.Background(), env.Data.Token)
	if err != nil || userID != env.Data.User.ID {
		t.Fatalf("expected token to authenticate as %s, got %q (%v)", env.Data.User.ID, userID, err)
	}
}

func TestLogin_SavesConfig(t *testing.T) {
	flags := apiFlags(t)
	if _, errOut, err := runCLI(t, append([]string{"login"}, flags...)); err != nil {
		t.Fatalf("login: %v (stderr=%s)", err, string(errOut))
	}

	// Without flags the saved config is used.
	out, errOut, err := runCLI(t, []string{"tasks", "list"})
	if err != nil {
		t.Fatalf("list with saved config: %v (stderr=%s)", err, string(errOut))
	}
	if !strings.Contains(string(out), `"data":[]`) {
		t.Fatalf("unexpected output %q", string(out))
	}
}

func TestLogin_RejectsBadToken(t *testing.T) {
	flags := apiFlags(t)
	flags[3] = "pt_bogus"
	_, _, err := runCLI(t, append([]string{"login"}, flags...))
	if err == nil {
		t.Fatalf("expected login to fail verification")
	}
}

func TestReview_WritesFile(t *testing.T) {
	flags := apiFlags(t)
	dir := t.TempDir()

	env := mustRun(t, flags, "review", "--to", dir)
	written, _ := dataMap(t, env)["written"].([]any)
	if len(written) != 1 {
		t.Fatalf("expected one written file, got %#v", env["data"])
	}
	path, _ := written[0].(string)
	if filepath.Dir(path) != filepath.Join(dir, "reviews") || !strings.HasSuffix(path, ".md") {
		t.Fatalf("unexpected path %q", path)
	}

	if _, _, err := runCLI(t, append([]string{"review", "--to", dir}, flags...)); err == nil {
		t.Fatalf("expected second write to refuse overwriting")
	}
	mustRun(t, flags, "review", "--to", dir, "--overwrite")
}
