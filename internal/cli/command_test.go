package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/subtitlecsv/internal/csvio"
	"codeberg.org/snonux/subtitlecsv/internal/scenedb"
	"codeberg.org/snonux/subtitlecsv/internal/testutil"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags, func() error { return nil })

	// Test basic command properties
	if cmd.Use != "subtitlecsv" {
		t.Errorf("Expected Use to be 'subtitlecsv', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "CSV") {
		t.Errorf("Expected Short description to mention CSV")
	}

	for _, name := range []string{"export", "import", "import-subs", "translate", "list-models", "scene", "gui"} {
		t.Run("command_"+name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil || sub == cmd {
				t.Errorf("Expected subcommand %s to exist", name)
			}
		})
	}

	// Test that translate flags are set up
	translate, _, _ := cmd.Find([]string{"translate"})
	for _, name := range []string{
		"src-lang", "dst-lang", "provider", "api-key", "model", "endpoint", "system-prompt",
		"src-csv", "dst-csv", "batch-size", "pre-ctx", "pos-ctx", "llm-options", "timeout-secs",
		"error-log", "debug",
	} {
		t.Run("flag_"+name, func(t *testing.T) {
			if translate.Flags().Lookup(name) == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}

	for _, name := range []string{"config", "project", "scene", "locale"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %s to exist", name)
		}
	}
}

func TestRootCommand_LaunchesGUI(t *testing.T) {
	t.Cleanup(viper.Reset)

	for _, args := range [][]string{{}, {"gui"}} {
		launched := false
		cmd := CreateRootCommand(NewFlags(), func() error {
			launched = true
			return nil
		})
		cmd.SetArgs(args)

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute(%v) failed: %v", args, err)
		}
		if !launched {
			t.Errorf("Expected %v to launch the GUI", args)
		}
	}
}

// execute runs the command line against a fresh command tree
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	var out bytes.Buffer
	cmd := CreateRootCommand(NewFlags(), func() error {
		t.Fatal("GUI must not be launched")
		return nil
	})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBindSection(t *testing.T) {
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("batch-size", 6, "")
	fs.String("dst-lang", "", "")
	bindSection(fs, "translate", "batch-size", "dst-lang")

	if err := fs.Parse([]string{"--dst-lang", "ja"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := viper.GetInt("translate.batch_size"); got != 6 {
		t.Errorf("Expected translate.batch_size 6, got %d", got)
	}
	if got := viper.GetString("translate.dst_lang"); got != "ja" {
		t.Errorf("Expected translate.dst_lang ja, got %q", got)
	}
}

func TestSceneInit(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := filepath.Join(t.TempDir(), "ep01")

	out, err := execute(t, "--project", dir, "scene", "init")
	if err != nil {
		t.Fatalf("scene init failed: %v", err)
	}
	if !strings.Contains(out, "Scene document created") {
		t.Errorf("Unexpected output: %s", out)
	}
	testutil.AssertFileExists(t, filepath.Join(dir, "scene.db"))

	if _, err := execute(t, "--project", dir, "scene", "init"); err == nil {
		t.Error("Expected error when the document exists")
	}

	if _, err := execute(t, "--project", dir, "scene", "init", "--force"); err != nil {
		t.Errorf("scene init --force failed: %v", err)
	}
	testutil.AssertFileExists(t, filepath.Join(dir, "archive"))
}

func TestOperators_MissingScene(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := execute(t, "--project", t.TempDir(), "export")
	if !errors.Is(err, scenedb.ErrNoDocument) {
		t.Errorf("Expected ErrNoDocument, got %v", err)
	}
}

// newProject creates a project with a stock scene holding two text objects
func newProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if _, err := execute(t, "--project", dir, "scene", "init"); err != nil {
		t.Fatalf("scene init failed: %v", err)
	}

	scenePath := filepath.Join(dir, "scene.db")
	m, err := scenedb.Load(scenePath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	testutil.AddText(m, "Signs", "Shop", "Bakery", 0, 2)
	testutil.AddText(m, "Signs", "Street", "Main St.", 0, 0)
	if err := scenedb.Save(scenePath, m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return dir
}

func TestOperators_Pipeline(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := newProject(t)

	// export
	out, err := execute(t, "--project", dir, "export")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	exported := filepath.Join(dir, "text_objects.csv")
	if !strings.Contains(out, "[INFO] Exported 2 TEXT objects to "+exported) {
		t.Errorf("Unexpected export output: %s", out)
	}
	testutil.AssertFileContent(t, exported, []byte(`"datablock_name";"Collection";"Text Contents"`+"\n"+
		`"Shop";"Signs";"Bakery"`+"\n"+
		`"Street";"Signs";"Main St."`+"\n"))

	// import translations from the default file
	testutil.WriteCSV(t, dir, "translated_text_objects.csv",
		"datablock_name;Collection;Text Contents;Original;Original Back;Remarks",
		"Shop;Signs;パン屋;Bakery;Bakery;",
		"Ghost;Signs;幽霊;Ghost;;",
	)
	out, err = execute(t, "--project", dir, "import")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "[WARNING] Object 'Ghost' not found or not TEXT") {
		t.Errorf("Expected warning for Ghost, got: %s", out)
	}
	if !strings.Contains(out, "Scene saved to") {
		t.Errorf("Expected scene to be saved, got: %s", out)
	}

	// import subtitles from an explicit path
	subs := testutil.WriteCSV(t, t.TempDir(), "subs.csv",
		"UID;Speaker;S;Text;From;Length",
		"1;Alice;;Hello;10;20",
	)
	out, err = execute(t, "--project", dir, "import-subs", subs)
	if err != nil {
		t.Fatalf("import-subs failed: %v", err)
	}
	if !strings.Contains(out, "[WARNING] Geometry Node 'Text Outliner S White' not found, ignoring.") {
		t.Errorf("Expected node group warning, got: %s", out)
	}

	m, err := scenedb.Load(filepath.Join(dir, "scene.db"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if obj, ok := m.Object("Shop_jp"); !ok || obj.Text.Body != "パン屋" {
		t.Errorf("Expected Shop_jp with translated text, got %+v", obj)
	}
	if obj, ok := m.Object("Sub.Alice.1"); !ok || obj.Text.Body != "Hello" {
		t.Errorf("Expected Sub.Alice.1, got %+v", obj)
	}
}

func TestOperators_CancelledDoesNotSave(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := newProject(t)
	before, err := os.ReadFile(filepath.Join(dir, "scene.db"))
	if err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--project", dir, "import", filepath.Join(dir, "absent.csv"))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Expected ErrCancelled, got %v", err)
	}
	if !strings.Contains(out, "[ERROR] Cannot read") {
		t.Errorf("Expected read error report, got: %s", out)
	}

	after, _ := os.ReadFile(filepath.Join(dir, "scene.db"))
	if !bytes.Equal(before, after) {
		t.Error("Scene document changed after a cancelled import")
	}
}

func TestOperators_Localized(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := newProject(t)

	out, err := execute(t, "--project", dir, "--locale", "ja", "export")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(out, "Exported") {
		t.Errorf("Expected Japanese report, got: %s", out)
	}
}

// echoServer is an OpenAI-compatible endpoint translating every line of
// the TEXT section to "<lang>:<line>"
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prompt := req.Messages[len(req.Messages)-1].Content
		lines := strings.Split(prompt, "\n")
		lang := strings.TrimPrefix(lines[0], "Translate to ")

		var reply strings.Builder
		inText := false
		for i, line := range lines {
			switch {
			case line == "# TEXT BEGIN":
				inText = true
			case line == "# TEXT END":
				inText = false
			case inText && strings.HasPrefix(line, "{SPK}"):
				fmt.Fprintf(&reply, "%s\n%s:%s\n", line, lang, lines[i+1])
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": reply.String()}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranslate(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	srv := echoServer(t)

	testutil.WriteCSV(t, dir, "text_objects.csv",
		`"datablock_name";"Collection";"Text Contents"`,
		`"Shop";"Signs";"Bakery"`,
		`"Hi";"Alice";"Hello there"`,
	)

	_, err := execute(t, "--project", dir, "translate",
		"--endpoint", srv.URL+"/v1/chat/completions",
		"--model", "local",
		"--src-lang", "en",
		"--dst-lang", "ja",
		"--batch-size", "1",
		"--error-log", filepath.Join(dir, "errors.log"),
	)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "translated_text_objects.csv"))
	if err != nil {
		t.Fatalf("Expected translated file: %v", err)
	}
	defer f.Close()
	rows, err := csvio.ReadTextRows(f)
	if err != nil {
		t.Fatalf("ReadTextRows failed: %v", err)
	}

	want := []csvio.TextRow{
		{DatablockName: "Shop", Collection: "Signs", Text: "Japanese:Bakery", Original: "Bakery", OriginalBack: "English:Japanese:Bakery"},
		{DatablockName: "Hi", Collection: "Alice", Text: "Japanese:Hello there", Original: "Hello there", OriginalBack: "English:Japanese:Hello there"},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestTranslate_Validation(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	tests := []struct {
		name string
		args []string
	}{
		{"missing dst-lang", []string{"translate", "--api-key", "k"}},
		{"bad batch size", []string{"translate", "--api-key", "k", "--dst-lang", "ja", "--batch-size", "0"}},
		{"no api key", []string{"translate", "--dst-lang", "ja"}},
		{"unknown provider", []string{"translate", "--api-key", "k", "--dst-lang", "ja", "--provider", "nope"}},
		{"gemini without key", []string{"translate", "--dst-lang", "ja", "--provider", "gemini"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--project", t.TempDir()}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
