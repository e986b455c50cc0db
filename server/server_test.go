package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/redis"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/cache"
	"github.com/abhissng/chargehub/centralsystem"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
	"github.com/abhissng/chargehub/ports/portstest"
	"github.com/abhissng/chargehub/utils/graceful"
	"github.com/abhissng/chargehub/utils/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counters struct {
	loggers, syncs, caches, senders, receivers, centrals atomic.Int32
}

func (c *counters) total() int32 {
	return c.loggers.Load() + c.syncs.Load() + c.caches.Load() + c.senders.Load() + c.receivers.Load() + c.centrals.Load()
}

type fakes struct {
	counters
	syncer  *portstest.Syncer
	central *portstest.CentralSystem
}

func newFakes() *fakes {
	return &fakes{syncer: &portstest.Syncer{}, central: &portstest.CentralSystem{}}
}

func (f *fakes) factories() Factories {
	return Factories{
		Logger: func(*config.SystemConfig) (*log.Log, error) {
			f.loggers.Add(1)
			return log.NewNop(), nil
		},
		Syncer: func(*config.DatabaseConfig, *log.Log) ports.Syncer {
			f.syncs.Add(1)
			return f.syncer
		},
		Cache: func(cfg config.CacheConfig) (ports.Cache, error) {
			f.caches.Add(1)
			return cache.New(cfg)
		},
		Sender: func(*config.SystemConfig, *log.Log) (ports.Sender, error) {
			f.senders.Add(1)
			return &portstest.Sender{}, nil
		},
		Receiver: func(*config.SystemConfig, *log.Log) (ports.Receiver, error) {
			f.receivers.Add(1)
			return &portstest.Receiver{}, nil
		},
		CentralSystem: func(*config.SystemConfig, ports.Cache, ports.Sender, ports.Receiver, *log.Log, centralsystem.Observer) ports.CentralSystem {
			f.centrals.Add(1)
			return f.central
		},
	}
}

type exitRecorder struct{ code atomic.Int32 }

func (e *exitRecorder) exit(code int) { e.code.Store(int32(code) + 100) }

func (e *exitRecorder) called() (int, bool) {
	v := e.code.Load()
	return int(v) - 100, v != 0
}

func testConfig() *config.SystemConfig {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	return cfg
}

func newTestServer(t *testing.T, cfg *config.SystemConfig, mode string, f *fakes, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithFactories(f.factories()), WithoutSignals()}, opts...)
	s, err := New(context.Background(), cfg, mode, opts...)
	require.NoError(t, err)
	return s
}

func errCode(t *testing.T, err error) types.ErrorCode {
	t.Helper()
	var b blame.Blame
	require.ErrorAs(t, err, &b)
	return b.FetchErrCode()
}

type stubModule struct {
	group ocpp.EventGroup
	cfg   *config.SystemConfig
	stop  func() error
	hits  atomic.Int32
}

func (m *stubModule) Group() ocpp.EventGroup             { return m.group }
func (m *stubModule) Config() *config.SystemConfig       { return m.cfg }
func (m *stubModule) SetConfig(cfg *config.SystemConfig) { m.cfg = cfg }
func (m *stubModule) Shutdown() error                    { m.hits.Add(1); return m.stop() }

type stubAPI struct{ group ocpp.EventGroup }

func (a stubAPI) Group() ocpp.EventGroup { return a.group }
func (a stubAPI) Routes() []string       { return nil }

func stubDescriptor(m *stubModule, section func(cfg *config.SystemConfig) *config.ModuleConfig) module.Descriptor {
	return module.Descriptor{
		Group:   m.group,
		Section: section,
		Build: func(env module.Environment) (module.Module, module.Api, error) {
			m.cfg = env.Config
			return m, stubAPI{group: m.group}, nil
		},
	}
}

func TestParseMode(t *testing.T) {
	for input, want := range map[string]string{"": "all", "ALL": "all", "general": "general", " Reporting ": "reporting"} {
		m, err := ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, m.String())
	}

	m, _ := ParseMode("evdriver")
	group, ok := m.Single()
	assert.True(t, ok)
	assert.Equal(t, ocpp.EVDriver, group)

	_, err := ParseMode("billing")
	assert.Equal(t, blame.ErrorUnknownDeploymentMode, errCode(t, err))
}

func TestMissingBrokerIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Util.MessageBroker.NATS = nil
	f := newFakes()

	_, err := New(context.Background(), cfg, "all", WithFactories(f.factories()), WithoutSignals())
	assert.Equal(t, blame.ErrorBrokerConfigMissing, errCode(t, err))
	assert.Zero(t, f.total())
}

func TestSingleModeWithoutSectionFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.Modules.Reporting = nil
	f := newFakes()

	_, err := New(context.Background(), cfg, "reporting", WithFactories(f.factories()), WithoutSignals())
	assert.Equal(t, blame.ErrorModuleConfigMissing, errCode(t, err))
	assert.Zero(t, f.total())
	assert.Empty(t, f.syncer.Calls)
}

func TestAllModeBuildsCentralSystemAndEveryModule(t *testing.T) {
	f := newFakes()
	s := newTestServer(t, testConfig(), "all", f)

	groups := make([]ocpp.EventGroup, 0, len(s.Modules()))
	for _, m := range s.Modules() {
		groups = append(groups, m.Group())
	}
	assert.Equal(t, []ocpp.EventGroup{
		ocpp.Certificates, ocpp.Configuration, ocpp.EVDriver, ocpp.Monitoring,
		ocpp.Reporting, ocpp.SmartCharging, ocpp.Transactions,
	}, groups)
	assert.EqualValues(t, 1, f.centrals.Load())
	assert.EqualValues(t, 8, f.senders.Load())
	assert.EqualValues(t, 8, f.receivers.Load())
	assert.Equal(t, []bool{true}, f.syncer.Calls)
	assert.Equal(t, "127.0.0.1", s.Topology().Host)
	assert.Equal(t, 0, s.Topology().Port)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/configuration/chargingstation?identifier=cs-1&tenantId=t-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
	assert.Equal(t, 1, f.central.ShutdownHits)
}

func TestAllModeSkipsModulesWithoutSection(t *testing.T) {
	cfg := testConfig()
	cfg.Modules.Monitoring = nil
	cfg.Modules.SmartCharging = nil
	s := newTestServer(t, cfg, "all", newFakes())
	defer s.Shutdown()

	assert.Len(t, s.Modules(), 5)
	for _, m := range s.Modules() {
		assert.NotEqual(t, ocpp.Monitoring, m.Group())
		assert.NotEqual(t, ocpp.SmartCharging, m.Group())
	}
}

func TestGeneralModeRunsOnlyCentralSystem(t *testing.T) {
	f := newFakes()
	s := newTestServer(t, testConfig(), "general", f)
	defer s.Shutdown()

	assert.Empty(t, s.Modules())
	assert.EqualValues(t, 1, f.centrals.Load())
	assert.True(t, s.Topology().CentralSystem)
}

func TestSingleModeUsesSectionAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Modules.EVDriver.Host = "10.0.0.7"
	cfg.Modules.EVDriver.Port = 9095
	f := newFakes()
	s := newTestServer(t, cfg, "evdriver", f)
	defer s.Shutdown()

	require.Len(t, s.Modules(), 1)
	assert.Equal(t, ocpp.EVDriver, s.Modules()[0].Group())
	assert.Zero(t, f.centrals.Load())
	assert.Equal(t, "10.0.0.7", s.Topology().Host)
	assert.Equal(t, 9095, s.Topology().Port)
}

func TestPortOverrideAppliesInEveryMode(t *testing.T) {
	for _, mode := range []string{"all", "general", "evdriver"} {
		t.Run(mode, func(t *testing.T) {
			cfg := testConfig()
			cfg.Modules.EVDriver.Port = 9095
			s := newTestServer(t, cfg, mode, newFakes(), WithPort(9200))
			defer s.Shutdown()
			assert.Equal(t, 9200, s.Topology().Port)
		})
	}
}

func TestPersistenceSyncFailureAbortsStartup(t *testing.T) {
	f := newFakes()
	f.syncer.Err = errors.New("connection refused")

	_, err := New(context.Background(), testConfig(), "all", WithFactories(f.factories()), WithoutSignals())
	assert.Equal(t, blame.ErrorPersistenceSyncFailed, errCode(t, err))
	assert.Equal(t, []bool{true}, f.syncer.Calls)
	assert.Zero(t, f.senders.Load())
	assert.Zero(t, f.caches.Load())
}

func TestCacheSelection(t *testing.T) {
	s := newTestServer(t, testConfig(), "general", newFakes())
	defer s.Shutdown()
	assert.Equal(t, "memory", s.Cache().Kind())
	assert.IsType(t, &cache.Memory{}, s.Cache())

	cfg := testConfig()
	cfg.Util.Cache.Redis = &config.RedisConfig{Host: "127.0.0.1", Port: 6379}
	s = newTestServer(t, cfg, "general", newFakes())
	defer s.Shutdown()
	assert.Equal(t, "redis", s.Cache().Kind())
	assert.IsType(t, &redis.RedisManager{}, s.Cache())

	cfg = testConfig()
	cfg.Util.Cache.Redis = &config.RedisConfig{}
	_, err := New(context.Background(), cfg, "general", WithFactories(newFakes().factories()), WithoutSignals())
	assert.Equal(t, blame.ErrorCacheConfigInvalid, errCode(t, err))
}

func TestShutdownForcesExitWhenModuleHangs(t *testing.T) {
	hang := make(chan struct{})
	defer close(hang)
	stuck := &stubModule{group: ocpp.Reporting, stop: func() error { <-hang; return nil }}
	recorder := &exitRecorder{}

	s := newTestServer(t, testConfig(), "reporting", newFakes(),
		WithDescriptors(stubDescriptor(stuck, func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Reporting })),
		WithShutdownTimeout(50*time.Millisecond),
		WithExit(recorder.exit),
	)

	start := time.Now()
	err := s.Shutdown()
	assert.ErrorIs(t, err, graceful.ErrForcedExit)
	assert.Less(t, time.Since(start), time.Second)

	code, called := recorder.called()
	require.True(t, called)
	assert.Equal(t, 1, code)
}

func TestShutdownForcesExitWhenCentralSystemHangs(t *testing.T) {
	f := newFakes()
	f.central.Hang = make(chan struct{})
	defer close(f.central.Hang)
	recorder := &exitRecorder{}

	s := newTestServer(t, testConfig(), "general", f,
		WithShutdownTimeout(50*time.Millisecond),
		WithExit(recorder.exit),
	)

	assert.ErrorIs(t, s.Shutdown(), graceful.ErrForcedExit)
	code, called := recorder.called()
	require.True(t, called)
	assert.Equal(t, 1, code)
}

func TestShutdownContinuesPastFailingModules(t *testing.T) {
	panicking := &stubModule{group: ocpp.Certificates, stop: func() error { panic("boom") }}
	failing := &stubModule{group: ocpp.Monitoring, stop: func() error { return errors.New("drain failed") }}
	healthy := &stubModule{group: ocpp.Transactions, stop: func() error { return nil }}
	f := newFakes()
	recorder := &exitRecorder{}

	s := newTestServer(t, testConfig(), "all", f,
		WithDescriptors(
			stubDescriptor(panicking, func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Certificates }),
			stubDescriptor(failing, func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Monitoring }),
			stubDescriptor(healthy, func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Transactions }),
		),
		WithExit(recorder.exit),
	)

	err := s.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Contains(t, err.Error(), "drain failed")
	assert.EqualValues(t, 1, panicking.hits.Load())
	assert.EqualValues(t, 1, failing.hits.Load())
	assert.EqualValues(t, 1, healthy.hits.Load())
	assert.Equal(t, 1, f.central.ShutdownHits)
	_, called := recorder.called()
	assert.False(t, called)
}

func TestRunServesUntilCancelled(t *testing.T) {
	f := newFakes()
	s := newTestServer(t, testConfig(), "all", f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, f.central.Started)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
	assert.Equal(t, 1, f.central.ShutdownHits)
}

func TestRunBindFailureExits(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := testConfig()
	cfg.Server.Port = taken.Addr().(*net.TCPAddr).Port
	recorder := &exitRecorder{}
	s := newTestServer(t, cfg, "general", newFakes(), WithExit(recorder.exit))
	defer s.Shutdown()

	err = s.Run(context.Background())
	assert.Equal(t, blame.ErrorListenerBindFailed, errCode(t, err))
	code, called := recorder.called()
	require.True(t, called)
	assert.Equal(t, 1, code)
}
