package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initcareer/init-web/config"
	"github.com/initcareer/init-web/internal/adapters/memstore"
	"github.com/initcareer/init-web/internal/bootstrap"
	domainauth "github.com/initcareer/init-web/internal/domain/auth"
)

const testDevice = "6f1c2f0e-8a7e-4b7b-9d1c-3f6c1e2a9b40"

type fakePruner struct {
	batches []int64
	calls   int
}

func (f *fakePruner) DeleteExpired(_ context.Context, _ int) (int64, error) {
	if f.calls >= len(f.batches) {
		return 0, nil
	}
	n := f.batches[f.calls]
	f.calls++
	return n, nil
}

func testApp(st bootstrap.Storage) *app {
	a := newApp(config.AppConfig{
		Storage: config.StorageConfig{Backend: config.StorageBackendPostgres},
		Pruner:  config.PrunerConfig{BatchSize: 10},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.openStorage = func(context.Context) (bootstrap.Storage, func() error, error) {
		return st, nil, nil
	}
	return a
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd(testApp(bootstrap.Storage{}))

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "storage", "prune", "session-status"}, names)
}

func TestStorageShow_MasksTokens(t *testing.T) {
	durable := memstore.New()
	ctx := context.Background()
	require.NoError(t, durable.Set(ctx, testDevice, domainauth.KeyAuthToken, "abcdefghijklmnop"))
	require.NoError(t, durable.Set(ctx, testDevice, domainauth.KeyTheme, "dark"))

	out, err := execute(t, testApp(bootstrap.Storage{Durable: durable, Session: memstore.New()}), "storage", "show", testDevice)

	require.NoError(t, err)
	assert.Contains(t, out, "abcd********mnop")
	assert.NotContains(t, out, "abcdefghijklmnop")
	assert.Contains(t, out, "dark")
}

func TestStorageShow_SessionTierEmpty(t *testing.T) {
	out, err := execute(t, testApp(bootstrap.Storage{Durable: memstore.New(), Session: memstore.New()}),
		"storage", "show", "--tier", "session", testDevice)

	require.NoError(t, err)
	assert.Contains(t, out, "(empty)")
}

func TestStorageClear(t *testing.T) {
	ctx := context.Background()
	durable := memstore.New()
	require.NoError(t, durable.Set(ctx, testDevice, domainauth.KeyAuthToken, "tok"))
	require.NoError(t, durable.Set(ctx, testDevice, domainauth.KeyTheme, "dark"))
	a := testApp(bootstrap.Storage{Durable: durable, Session: memstore.New()})

	_, err := execute(t, a, "storage", "clear", "--key", domainauth.KeyAuthToken, testDevice)
	require.NoError(t, err)
	values, err := durable.GetAll(ctx, testDevice)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{domainauth.KeyTheme: "dark"}, values)

	_, err = execute(t, a, "storage", "clear", testDevice)
	require.NoError(t, err)
	values, err = durable.GetAll(ctx, testDevice)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestStorage_RejectsBadInput(t *testing.T) {
	a := testApp(bootstrap.Storage{Durable: memstore.New(), Session: memstore.New()})

	_, err := execute(t, a, "storage", "show", "not-a-device")
	assert.Error(t, err)

	_, err = execute(t, a, "storage", "show", "--tier", "cookie", testDevice)
	assert.Error(t, err)

	_, err = execute(t, a, "storage", "show")
	assert.Error(t, err)
}

func TestStorage_OpenFailure(t *testing.T) {
	a := testApp(bootstrap.Storage{})
	a.openStorage = func(context.Context) (bootstrap.Storage, func() error, error) {
		return bootstrap.Storage{}, nil, errors.New("redis down")
	}

	_, err := execute(t, a, "storage", "show", testDevice)

	assert.EqualError(t, err, "redis down")
}

func TestPrune(t *testing.T) {
	pruner := &fakePruner{batches: []int64{10, 3}}

	out, err := execute(t, testApp(bootstrap.Storage{Pruner: pruner}), "prune")

	require.NoError(t, err)
	assert.Contains(t, out, "deleted 13 expired row(s)")
}

func TestPrune_NoPrunerForBackend(t *testing.T) {
	_, err := execute(t, testApp(bootstrap.Storage{}), "prune")

	assert.Error(t, err)
}

func TestSessionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(domainauth.KeyDeviceCookie)
		if r.URL.Path != "/auth/session-status" || err != nil || c.Value != testDevice {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hasSession":true}`))
	}))
	defer srv.Close()

	out, err := execute(t, testApp(bootstrap.Storage{}), "session-status", "--url", srv.URL+"/", testDevice)

	require.NoError(t, err)
	assert.Contains(t, out, `"hasSession": true`)
}

func TestSessionStatus_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := execute(t, testApp(bootstrap.Storage{}), "session-status", "--url", srv.URL, testDevice)

	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "*****", maskSecret("short"))
	assert.Equal(t, "1234********cdef", maskSecret("1234567890abcdef"))
}
