package threadpool

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/vnykmshr/taskpool/internal/testutil"
	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
)

func TestDefaultConfig(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	tests := []struct {
		kind         Kind
		wantMax      int
		wantCapacity int
		wantWait     time.Duration
	}{
		{KindFixed, 0, DefaultQueueCapacity, 0},
		{KindElastic, 2 * procs, DefaultElasticQueueCapacity, DefaultElasticIdleWait},
		{KindWorkStealing, 0, DefaultQueueCapacity, DefaultStealingIdleWait},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			cfg := DefaultConfig(tt.kind)
			testutil.AssertEqual(t, cfg.Workers, procs)
			testutil.AssertEqual(t, cfg.MaxWorkers, tt.wantMax)
			testutil.AssertEqual(t, cfg.QueueCapacity, tt.wantCapacity)
			testutil.AssertEqual(t, cfg.IdleWait, tt.wantWait)
			testutil.AssertNoError(t, cfg.Validate())
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"unknown kind", Config{Kind: "priority"}, true},
		{"negative workers", Config{Workers: -2}, true},
		{"negative capacity", Config{QueueCapacity: -1}, true},
		{"elastic max below core", Config{Kind: KindElastic, Workers: 4, MaxWorkers: 3}, true},
		{"elastic max equals core", Config{Kind: KindElastic, Workers: 4, MaxWorkers: 4}, false},
		{"elastic negative wait", Config{Kind: KindElastic, IdleWait: -time.Second}, true},
		{"stealing negative wait", Config{Kind: KindWorkStealing, IdleWait: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if !errors.Is(err, tperrors.ErrInvalidConfiguration) {
					t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
				}
				return
			}
			testutil.AssertNoError(t, err)
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
kind: elastic
name: ingest
workers: 2
max_workers: 8
queue_capacity: 64
idle_wait: 250ms
`))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Kind, KindElastic)
	testutil.AssertEqual(t, cfg.Name, "ingest")
	testutil.AssertEqual(t, cfg.Workers, 2)
	testutil.AssertEqual(t, cfg.MaxWorkers, 8)
	testutil.AssertEqual(t, cfg.QueueCapacity, 64)
	testutil.AssertEqual(t, cfg.IdleWait, 250*time.Millisecond)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "kind: fixed\nthreads: 4\n"},
		{"malformed yaml", "kind: [fixed\n"},
		{"invalid value", "kind: elastic\nworkers: 4\nmax_workers: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			testutil.AssertError(t, err)
		})
	}
}

func TestParseConfigEmptyDocument(t *testing.T) {
	cfg, err := ParseConfig(nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Kind, Kind(""))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	testutil.AssertNoError(t, os.WriteFile(path, []byte("kind: work_stealing\nworkers: 3\n"), 0o600))

	cfg, err := LoadConfig(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Kind, KindWorkStealing)
	testutil.AssertEqual(t, cfg.Workers, 3)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertError(t, err)
}

func TestNewBuildsSelectedKind(t *testing.T) {
	tests := []struct {
		kind Kind
		want Kind
	}{
		{"", KindFixed},
		{KindFixed, KindFixed},
		{KindElastic, KindElastic},
		{KindWorkStealing, KindWorkStealing},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			pool, err := New(Config{Kind: tt.kind, Workers: 2})
			testutil.AssertNoError(t, err)
			defer pool.Stop()
			testutil.AssertEqual(t, pool.Stats().Kind, tt.want)
			testutil.AssertEqual(t, pool.Size(), 2)
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	for _, cfg := range []Config{
		{Kind: "priority"},
		{Kind: KindFixed, Workers: -1},
		{Kind: KindElastic, Workers: 4, MaxWorkers: 2},
	} {
		pool, err := New(cfg)
		if pool != nil {
			t.Errorf("New(%+v) returned a non-nil pool", cfg)
		}
		testutil.AssertError(t, err)
	}
}
