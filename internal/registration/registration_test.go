package registration

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sample = Record{Name: "Asha Rao", Game: "BGMI", UserID: "PUBG123"}

type mockStore struct{ mock.Mock }

func (m *mockStore) Submit(ctx context.Context, rec Record) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) Name() string { return "mock" }

func TestSubmitReportsOutcome(t *testing.T) {
	store := &mockStore{}
	store.On("Submit", mock.Anything, sample).Return(nil).Once()

	out := Submit(context.Background(), store, sample)
	assert.True(t, out.OK())
	assert.Equal(t, "mock", out.Backend)
	assert.Equal(t, sample, out.Record)
	store.AssertExpectations(t)
}

func TestSubmitFailureIsObservedNotFatal(t *testing.T) {
	store := &mockStore{}
	store.On("Submit", mock.Anything, sample).Return(ErrRejected).Once()

	out := Submit(context.Background(), store, sample)
	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Err, ErrRejected)
}

func TestSubmitWithoutStore(t *testing.T) {
	out := Submit(context.Background(), nil, sample)
	assert.Error(t, out.Err)
}

func TestSheetDBPostsRow(t *testing.T) {
	var got map[string][]map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created":1}`))
	}))
	defer srv.Close()

	require.NoError(t, NewSheetDB(srv.URL, 0).Submit(context.Background(), sample))
	require.Len(t, got["data"], 1)
	row := got["data"][0]
	assert.Equal(t, "", row["sn no."])
	assert.Equal(t, "Asha Rao", row["name"])
	assert.Equal(t, "BGMI", row["game"])
	assert.Equal(t, "PUBG123", row["user id"])
}

func TestSheetDBNonCreatedIsRejected(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))
		err := NewSheetDB(srv.URL, 0).Submit(context.Background(), sample)
		srv.Close()
		assert.ErrorIs(t, err, ErrRejected, "status %d", code)
	}
}

func TestSheetDBTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewSheetDB(url, 0).Submit(context.Background(), sample)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}

type fakeExecer struct {
	query string
	arg   interface{}
	res   sql.Result
	err   error
}

func (f *fakeExecer) NamedExecContext(_ context.Context, query string, arg interface{}) (sql.Result, error) {
	f.query, f.arg = query, arg
	return f.res, f.err
}

func TestPostgresInsertsNamedRow(t *testing.T) {
	db := &fakeExecer{res: driver.RowsAffected(1)}
	p := &Postgres{db: db}
	require.NoError(t, p.Submit(context.Background(), sample))
	assert.Equal(t, insertRegistration, db.query)
	assert.Equal(t, registrationRow{Name: "Asha Rao", Game: "BGMI", UserID: "PUBG123"}, db.arg)

	db.res = driver.RowsAffected(0)
	assert.ErrorIs(t, p.Submit(context.Background(), sample), ErrRejected)

	db.err = errors.New("connection refused")
	assert.Error(t, p.Submit(context.Background(), sample))
}

type fakeStream struct {
	args *redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = a
	return redis.NewStringResult("1700000000000-0", f.err)
}

func TestRedisStreamAddsEntry(t *testing.T) {
	fs := &fakeStream{}
	r := &RedisStream{client: fs, stream: DefaultStream}
	require.NoError(t, r.Submit(context.Background(), sample))
	assert.Equal(t, DefaultStream, fs.args.Stream)
	assert.Equal(t, map[string]interface{}{
		"name":    "Asha Rao",
		"game":    "BGMI",
		"user_id": "PUBG123",
	}, fs.args.Values)

	fs.err = errors.New("READONLY")
	assert.Error(t, r.Submit(context.Background(), sample))
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{Endpoint: "https://sheetdb.io/api/v1/x"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, BackendSheetDB, cfg.Backend)

	assert.Error(t, (&Config{Backend: "sheetdb"}).Normalize())
	assert.Error(t, (&Config{Backend: "mongo"}).Normalize())
	assert.Error(t, (&Config{Backend: "redis", TimeoutSeconds: -1}).Normalize())
	assert.NoError(t, (&Config{Backend: " Postgres "}).Normalize())
}

func TestOpenSelectsBackend(t *testing.T) {
	s, err := Open(Config{Backend: BackendSheetDB, Endpoint: "http://sheet"}, Backends{})
	require.NoError(t, err)
	assert.Equal(t, BackendSheetDB, s.Name())

	_, err = Open(Config{Backend: BackendPostgres}, Backends{})
	assert.Error(t, err)
	_, err = Open(Config{Backend: BackendRedis}, Backends{})
	assert.Error(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	s, err = Open(Config{Backend: BackendRedis}, Backends{Redis: rdb})
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, s.Name())
}
