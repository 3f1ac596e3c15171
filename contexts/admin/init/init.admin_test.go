package init_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/go-arrower/schoolstore"
	admin "github.com/go-arrower/schoolstore/contexts/admin/init"
)

var ctx = context.Background()

func newContainer(t *testing.T) *schoolstore.Container {
	t.Helper()

	conf := &schoolstore.Config{}
	require.NoError(t, schoolstore.DefaultViper().Unmarshal(conf))

	conf.Environment = schoolstore.TestEnv
	conf.Storage.Driver = schoolstore.MemoryDriver

	di, err := schoolstore.InitialiseDefaultDependencies(ctx, conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = di.Shutdown(ctx) })

	return di
}

func TestNewAdminContext(t *testing.T) {
	t.Parallel()

	t.Run("missing dependencies", func(t *testing.T) {
		t.Parallel()

		_, err := admin.NewAdminContext(ctx, &schoolstore.Container{})
		assert.ErrorIs(t, err, schoolstore.ErrMissingDependency)

		_, err = admin.NewAdminContext(ctx, nil)
		assert.ErrorIs(t, err, schoolstore.ErrMissingDependency)
	})

	t.Run("invalid repository config", func(t *testing.T) {
		t.Parallel()

		di := newContainer(t)
		di.Config.Storage.Codec = "xml"

		_, err := admin.NewAdminContext(ctx, di)
		assert.ErrorIs(t, err, schoolstore.ErrInvalidConfig)
	})

	t.Run("register all sections", func(t *testing.T) {
		t.Parallel()

		a, err := admin.NewAdminContext(ctx, newContainer(t))
		require.NoError(t, err)

		assert.Equal(t, []string{"books", "rewards", "store-items", "students"}, a.Sections())
		assert.NoError(t, a.Shutdown(ctx))
	})
}

func TestAdminContext_Routes(t *testing.T) {
	t.Parallel()

	di := newContainer(t)
	_, err := admin.NewAdminContext(ctx, di)
	require.NoError(t, err)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		rec := httptest.NewRecorder()
		di.WebRouter.ServeHTTP(rec, req)

		return rec
	}

	for _, section := range []string{"books", "rewards", "store-items", "students"} {
		rec := serve(http.MethodGet, "/api/"+section, "")
		assert.Equal(t, http.StatusOK, rec.Code, section)
		assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "total").Int(), section)
	}

	t.Run("validate new records", func(t *testing.T) {
		rec := serve(http.MethodPost, "/api/rewards", `{"code":"Reward009","points":5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "name is required")

		rec = serve(http.MethodPost, "/api/store-items", `{"name":"Thước kẻ","code":"Item009","price":-1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "price can not be negative")

		rec = serve(http.MethodPost, "/api/students", `{"name":"An","code":"HS009","email":"not-a-mail"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "email has to be valid")
	})

	t.Run("validate patches", func(t *testing.T) {
		rec := serve(http.MethodPatch, "/api/rewards/1", `{"quantity":-3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = serve(http.MethodPatch, "/api/rewards/1", `{"quantity":3}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "quantity").Int())
	})

	t.Run("create student", func(t *testing.T) {
		name := gofakeit.Name()

		rec := serve(http.MethodPost, "/api/students",
			`{"name":"`+name+`","code":"HS100","className":"10A1","email":"`+gofakeit.Email()+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		key := gjson.Get(rec.Body.String(), "key").String()
		assert.NotEmpty(t, key)

		rec = serve(http.MethodGet, "/api/students/"+key, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, name, gjson.Get(rec.Body.String(), "name").String())
	})

	t.Run("routes", func(t *testing.T) {
		rec := serve(http.MethodGet, "/admin/routes", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"admin.store-items.update"`)

		rec = serve(http.MethodGet, "/admin/sections", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `["books","rewards","store-items","students"]`, rec.Body.String())
	})
}

func TestAdminContext_Section(t *testing.T) {
	t.Parallel()

	a, err := admin.NewAdminContext(ctx, newContainer(t))
	require.NoError(t, err)

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		_, err := a.Section("parents")
		assert.ErrorIs(t, err, admin.ErrUnknownEntity)
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		books, err := a.Section("books")
		require.NoError(t, err)
		assert.Equal(t, "books", books.Name())

		listing, err := books.List(ctx, "hóa", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, listing.Total)
		assert.Equal(t, 1, listing.Filtered)
		require.Len(t, listing.Records, 1)

		var book map[string]any
		require.NoError(t, json.Unmarshal(listing.Records[0], &book))
		assert.Equal(t, "Book003", book["code"])
	})

	t.Run("export", func(t *testing.T) {
		t.Parallel()

		rewards, err := a.Section("rewards")
		require.NoError(t, err)

		csv, err := rewards.Export(ctx, "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(csv), "key,name,code,points,quantity,image,description\n"))
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()

		items, err := a.Section("store-items")
		require.NoError(t, err)

		n, err := items.Reset(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}
