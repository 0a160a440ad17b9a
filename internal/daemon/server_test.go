package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/nihilian/ncheditor/internal/config"
	"github.com/nihilian/ncheditor/internal/ipc"
	"github.com/nihilian/ncheditor/internal/wire"
	"github.com/nihilian/ncheditor/pkg/api"
)

// waitForFile polls until a file exists or timeout.
func waitForFile(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return os.ErrNotExist
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newTestApp(t *testing.T, dataDir string, overrides map[string]any) *wire.App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	v.Set("data_dir", dataDir)
	v.Set("http_addr", "")
	v.Set("log.level", "warn")
	for k, val := range overrides {
		v.Set(k, val)
	}
	if err := config.Load(context.Background(), v); err != nil {
		t.Fatalf("config load: %v", err)
	}
	app, err := wire.BuildApp(context.Background(), v)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

// startDaemon runs the daemon until the test ends and returns its socket.
func startDaemon(t *testing.T, overrides map[string]any) string {
	t.Helper()
	tmp := t.TempDir()
	runtimeDir := filepath.Join(tmp, "run")
	if err := os.MkdirAll(runtimeDir, 0o700); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)

	app := newTestApp(t, filepath.Join(tmp, "data"), overrides)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		if err := Run(ctx, app); err != nil {
			t.Errorf("daemon: %v", err)
		}
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	sock, err := ipc.SocketPath()
	if err != nil {
		t.Fatalf("socket path: %v", err)
	}
	if err := waitForFile(sock, 2*time.Second); err != nil {
		t.Fatalf("socket not ready: %v", err)
	}
	return sock
}

func TestDaemonChannelLifecycle(t *testing.T) {
	sock := startDaemon(t, map[string]any{"ipc.max_txn_bytes": 256})
	ctx := context.Background()
	c := ipc.NewClient(sock)

	uid, err := func() (int, error) {
		r, err := c.Do(ctx, ipc.Message{Name: ipc.CmdPackageCreate, Package: "com.example.app", User: 10})
		return r.UID, err
	}()
	if err != nil {
		t.Fatalf("create package: %v", err)
	}
	if uid != api.UID(10, api.FirstApplicationUID) {
		t.Fatalf("uid=%d", uid)
	}

	const n = 25
	for i := 0; i < n; i++ {
		ch := api.NewChannel(fmt.Sprintf("ch-%02d", i), fmt.Sprintf("Channel %d", i), api.ImportanceDefault)
		if _, err := c.CreateChannel(ctx, "com.example.app", 0, ch); err != nil {
			t.Fatalf("create channel %d: %v", i, err)
		}
	}

	// 25 channels do not fit a 256 byte transaction.
	list, err := c.ListChannels(ctx, "com.example.app", 0, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != n {
		t.Fatalf("list len=%d want %d", len(list), n)
	}
	for i, ch := range list {
		if want := fmt.Sprintf("ch-%02d", i); ch.ID != want {
			t.Fatalf("idx %d: got %q want %q", i, ch.ID, want)
		}
	}

	got, err := c.GetChannel(ctx, "com.example.app", 0, "ch-03")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	fp := got.Fingerprint()
	edit, err := c.Do(ctx, ipc.Message{
		Name:          ipc.CmdChannelUpdate,
		Package:       "com.example.app",
		ID:            "ch-03",
		Fields:        map[string]string{"importance": "4", "blockableSystem": "true"},
		IfFingerprint: fp,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	updated := edit.Record.(*api.Channel)
	if updated.Importance != api.ImportanceHigh || !updated.BlockableSystem {
		t.Fatalf("update not applied: %+v", updated)
	}

	// The fingerprint taken before the edit is now stale.
	got.Name = "stale"
	if _, err := c.UpdateChannel(ctx, "com.example.app", 0, got, fp); !errors.Is(err, ipc.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := c.GetChannel(ctx, "com.example.app", 0, "nope"); !errors.Is(err, ipc.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDaemonHealthz(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	startDaemon(t, map[string]any{"http_addr": addr})

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("healthz body=%q", body)
	}
}
