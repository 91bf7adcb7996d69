package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"apartment-tracker-backend/config"
	"apartment-tracker-backend/internal/db"
	"apartment-tracker-backend/internal/filter"
	"apartment-tracker-backend/internal/model"
	"apartment-tracker-backend/internal/mw"
	"apartment-tracker-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTrigger struct {
	accept bool
	hooks  []func()
}

func (f *fakeTrigger) Trigger() bool { return f.accept }

func (f *fakeTrigger) OnCycle(fn func()) { f.hooks = append(f.hooks, fn) }

func (f *fakeTrigger) finishCycle() {
	for _, fn := range f.hooks {
		fn()
	}
}

func newTestStore(t *testing.T) store.Store {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return store.NewGormStore(gormDB, nil)
}

func testConfig(token string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Import.Token = token
	cfg.ApplyDefaults()
	return cfg
}

func ptr[T any](v T) *T { return &v }

// seed stores two units on two floor plans and returns their ids (one-bed first).
func seed(t *testing.T, st store.Store) (int64, int64) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	one, err := st.PersistUnit(ctx, now, store.ScrapedUnit{
		UnitNumber:    "A-101",
		FloorPlanName: "The Aspen",
		Beds:          1,
		Baths:         1,
		SqFt:          ptr(740),
		Price:         ptr(1450.0),
		FeatureTags:   []string{"Balcony"},
		Source:        "maa",
		ImageURLs:     []string{"https://img.example.com/a101-1.jpg", "https://img.example.com/a101-2.jpg"},
	})
	require.NoError(t, err)

	two, err := st.PersistUnit(ctx, now, store.ScrapedUnit{
		UnitNumber:    "B-312",
		FloorPlanName: "Traditional 2x2",
		Beds:          2,
		Baths:         2,
		SqFt:          ptr(1134),
		Price:         ptr(2050.0),
		FeatureTags:   []string{"Garage", "Fireplace"},
		Source:        "maa",
		ImageURLs:     []string{"https://img.example.com/b312.jpg"},
	})
	require.NoError(t, err)

	return one.ApartmentID, two.ApartmentID
}

func perform(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type apartmentsResponse struct {
	Apartments []model.Apartment  `json:"apartments"`
	Images     []model.ImageAsset `json:"images"`
	Total      int                `json:"total"`
	LastScrape *time.Time         `json:"last_scrape"`
}

func TestApartmentRoutes(t *testing.T) {
	st := newTestStore(t)
	oneBed, twoBed := seed(t, st)
	r := NewRouter(testConfig(""), st, nil, nil, nil)

	w := perform(r, http.MethodGet, "/api/apartments?sort_by=price&sort_order=desc", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[apartmentsResponse](t, w)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Apartments, 2)
	assert.Equal(t, twoBed, list.Apartments[0].ID)
	assert.Equal(t, oneBed, list.Apartments[1].ID)
	require.Len(t, list.Images, 2)
	assert.Equal(t, "https://img.example.com/b312.jpg", list.Images[0].PublicURL)
	assert.Equal(t, "https://img.example.com/a101-1.jpg", list.Images[1].PublicURL)
	assert.Nil(t, list.LastScrape)

	w = perform(r, http.MethodGet, "/api/apartments?beds=2&has_garage=true", nil, nil)
	list = decode[apartmentsResponse](t, w)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "B-312", list.Apartments[0].UnitNumber)

	w = perform(r, http.MethodGet, "/api/apartments?price_max=1000", nil, nil)
	list = decode[apartmentsResponse](t, w)
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Apartments)
	assert.JSONEq(t, `[]`, string(mustField(t, w, "apartments")))

	completed := time.Date(2026, 5, 1, 12, 5, 0, 0, time.UTC)
	require.NoError(t, st.CreateScrapeLog(context.Background(), &model.ScrapeLog{
		RunID:       uuid.NewString(),
		StartedAt:   completed.Add(-time.Minute),
		CompletedAt: completed,
		Source:      "all",
		Status:      model.ScrapeStatusSuccess,
	}))
	w = perform(r, http.MethodGet, "/api/apartments", nil, map[string]string{"Cache-Control": "no-cache"})
	list = decode[apartmentsResponse](t, w)
	require.NotNil(t, list.LastScrape)
	assert.True(t, completed.Equal(*list.LastScrape))

	t.Run("get", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/api/apartments/"+itoa(oneBed), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[struct {
			Apartment model.Apartment `json:"apartment"`
		}](t, w)
		assert.Equal(t, "A-101", got.Apartment.UnitNumber)
		assert.True(t, got.Apartment.HasBalcony)

		w = perform(r, http.MethodGet, "/api/apartments/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = perform(r, http.MethodGet, "/api/apartments/9999", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Apartment not found"}`, w.Body.String())
	})

	t.Run("images", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/api/apartments/"+itoa(oneBed)+"/images", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[struct {
			ApartmentID int64              `json:"apartment_id"`
			Images      []model.ImageAsset `json:"images"`
		}](t, w)
		assert.Equal(t, oneBed, got.ApartmentID)
		require.Len(t, got.Images, 2)
		assert.Equal(t, 1, got.Images[1].SortOrder)
	})

	t.Run("price history", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/api/apartments/"+itoa(twoBed)+"/price-history", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"apartment_id": `+itoa(twoBed)+`,
			"history": [{"apartment_id": `+itoa(twoBed)+`, "date": "2026-05-01", "price": 2050, "special": null}]
		}`, w.Body.String())
	})
}

func TestFloorPlanRoutes(t *testing.T) {
	st := newTestStore(t)
	_, twoBed := seed(t, st)
	r := NewRouter(testConfig(""), st, nil, nil, nil)

	w := perform(r, http.MethodGet, "/api/floor-plans", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	plans := decode[struct {
		FloorPlans []model.FloorPlan `json:"floor_plans"`
	}](t, w)
	require.Len(t, plans.FloorPlans, 2)
	assert.Equal(t, "The Aspen", plans.FloorPlans[0].Name)

	apt, err := st.GetApartment(context.Background(), twoBed)
	require.NoError(t, err)
	planID := itoa(*apt.FloorPlanID)

	type planResponse struct {
		FloorPlan  model.FloorPlan   `json:"floor_plan"`
		Apartments []model.Apartment `json:"apartments"`
	}
	w = perform(r, http.MethodGet, "/api/floor-plans/"+planID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[planResponse](t, w)
	assert.Equal(t, "Traditional 2x2", got.FloorPlan.Name)
	require.Len(t, got.Apartments, 1)
	assert.Equal(t, twoBed, got.Apartments[0].ID)

	w = perform(r, http.MethodGet, "/api/floor-plans/"+planID+"?price_min=3000", nil, nil)
	got = decode[planResponse](t, w)
	assert.Empty(t, got.Apartments)

	w = perform(r, http.MethodGet, "/api/floor-plans/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Floor plan not found"}`, w.Body.String())
}

func TestSavedRoutes(t *testing.T) {
	st := newTestStore(t)
	oneBed, _ := seed(t, st)
	r := NewRouter(testConfig(""), st, nil, nil, nil)
	id := itoa(oneBed)

	w := perform(r, http.MethodPost, "/api/saved", `{"notes":"no id"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"apartment_id is required"}`, w.Body.String())

	w = perform(r, http.MethodPost, "/api/saved", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/api/saved", map[string]any{"apartment_id": 9999}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Apartment not found"}`, w.Body.String())

	w = perform(r, http.MethodPost, "/api/saved", `{"apartment_id":"`+id+`","notes":"corner unit"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	saved := decode[struct {
		Saved model.SavedApartment `json:"saved"`
	}](t, w).Saved
	assert.Equal(t, oneBed, saved.ApartmentID)
	assert.Equal(t, 1450.0, saved.PriceWhenSaved)
	assert.True(t, saved.NotifyOnPriceChange)
	require.NotNil(t, saved.UserNotes)
	assert.Equal(t, "corner unit", *saved.UserNotes)

	w = perform(r, http.MethodPatch, "/api/saved/"+id, `{"notify_on_price_change":false}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	saved = decode[struct {
		Saved model.SavedApartment `json:"saved"`
	}](t, w).Saved
	assert.False(t, saved.NotifyOnPriceChange)
	require.NotNil(t, saved.UserNotes)
	assert.Equal(t, "corner unit", *saved.UserNotes)

	w = perform(r, http.MethodPatch, "/api/saved/9999", `{"notes":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodGet, "/api/saved", nil, nil)
	list := decode[struct {
		Saved []model.SavedApartment `json:"saved"`
	}](t, w)
	require.Len(t, list.Saved, 1)

	w = perform(r, http.MethodDelete, "/api/saved/"+id, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = perform(r, http.MethodDelete, "/api/saved/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Saved apartment not found"}`, w.Body.String())
}

func TestStatsRoutes(t *testing.T) {
	st := newTestStore(t)
	oneBed, _ := seed(t, st)
	r := NewRouter(testConfig(""), st, nil, nil, nil)

	w := perform(r, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))
	assert.JSONEq(t, `{"available_count":2,"total_count":2,"avg_price":1750,"saved_count":0}`, w.Body.String())

	w = perform(r, http.MethodGet, "/api/stats", nil, nil)
	assert.Equal(t, "HIT", w.Header().Get(mw.CacheHeader))

	// A save flushes the cached figures.
	w = perform(r, http.MethodPost, "/api/saved", map[string]any{"apartment_id": oneBed}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = perform(r, http.MethodGet, "/api/stats", nil, nil)
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["saved_count"])

	w = perform(r, http.MethodGet, "/api/stats/price-trends", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	trends := decode[store.PriceTrends](t, w)
	assert.Equal(t, "2026-05-01", trends.DateRange.Start)
	assert.Len(t, trends.TrendsByBeds["1"], 1)
	assert.Len(t, trends.TrendsByBeds["2"], 1)
	assert.NotNil(t, trends.TrendsByBeds["3"])
}

func TestScrapeRoutes(t *testing.T) {
	st := newTestStore(t)
	trigger := &fakeTrigger{accept: true}
	r := NewRouter(testConfig(""), st, nil, trigger, nil)

	w := perform(r, http.MethodPost, "/api/scrape/trigger", nil, nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"triggered"}`, w.Body.String())

	trigger.accept = false
	w = perform(r, http.MethodPost, "/api/scrape/trigger", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(NewRouter(testConfig(""), st, nil, nil, nil), http.MethodPost, "/api/scrape/trigger", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = perform(r, http.MethodGet, "/api/scrape/logs", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"logs":[]}`, w.Body.String())
}

func TestImportRoute(t *testing.T) {
	st := newTestStore(t)
	r := NewRouter(testConfig("s3cret"), st, nil, nil, nil)
	auth := map[string]string{mw.ImportTokenHeader: "s3cret"}

	body := map[string]any{"units": []map[string]any{
		{"unit_number": "301", "floor_plan_name": "The Birch", "beds": 2, "baths": 1.5, "price": 1890, "feature_tags": []string{"Sunroom"}},
		{"unit_number": "", "floor_plan_name": "The Birch", "beds": 2, "baths": 1.5},
	}}

	testCases := []struct {
		name     string
		router   http.Handler
		body     any
		headers  map[string]string
		expected int
		error    string
	}{
		{name: "token not configured", router: NewRouter(testConfig(""), st, nil, nil, nil), body: body, headers: auth, expected: http.StatusInternalServerError},
		{name: "wrong token", router: r, body: body, headers: map[string]string{mw.ImportTokenHeader: "nope"}, expected: http.StatusUnauthorized, error: "Unauthorized"},
		{name: "invalid json", router: r, body: `{"units":`, headers: auth, expected: http.StatusBadRequest, error: "Invalid JSON"},
		{name: "no units", router: r, body: `{"units":[]}`, headers: auth, expected: http.StatusBadRequest, error: "Body must be { units: ImportUnit[] }"},
		{name: "units missing", router: r, body: `{}`, headers: auth, expected: http.StatusBadRequest, error: "Body must be { units: ImportUnit[] }"},
		{name: "units is a string", router: r, body: `{"units":"oops"}`, headers: auth, expected: http.StatusBadRequest, error: "Body must be { units: ImportUnit[] }"},
		{name: "units is an object", router: r, body: `{"units":{"unit_number":"301"}}`, headers: auth, expected: http.StatusBadRequest, error: "Body must be { units: ImportUnit[] }"},
		{name: "body is an array", router: r, body: `[{"unit_number":"301"}]`, headers: auth, expected: http.StatusBadRequest, error: "Body must be { units: ImportUnit[] }"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(tc.router, http.MethodPost, "/api/import", tc.body, tc.headers)
			assert.Equal(t, tc.expected, w.Code)
			if tc.error != "" {
				assert.JSONEq(t, `{"error":"`+tc.error+`"}`, w.Body.String())
			}
		})
	}

	w := perform(r, http.MethodPost, "/api/import", body, auth)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		OK      bool                `json:"ok"`
		Results store.ImportResults `json:"results"`
	}](t, w)
	assert.True(t, got.OK)
	assert.Equal(t, 2, got.Results.Received)
	assert.Equal(t, 1, got.Results.ApartmentsUpserted)
	assert.Equal(t, 1, got.Results.FloorPlansCreated)
	assert.Equal(t, 1, got.Results.PricePointsAdded)
	assert.Empty(t, got.Results.Errors)

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCount)
}

func TestScrapeCycleFlushesCache(t *testing.T) {
	st := newTestStore(t)
	seed(t, st)
	trigger := &fakeTrigger{}
	r := NewRouter(testConfig(""), st, nil, trigger, nil)
	require.Len(t, trigger.hooks, 1)

	w := perform(r, http.MethodGet, "/api/stats", nil, nil)
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))
	w = perform(r, http.MethodGet, "/api/stats", nil, nil)
	assert.Equal(t, "HIT", w.Header().Get(mw.CacheHeader))

	trigger.finishCycle()
	w = perform(r, http.MethodGet, "/api/stats", nil, nil)
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))
}

func TestImportRoute_MalformedUnit(t *testing.T) {
	st := newTestStore(t)
	r := NewRouter(testConfig("s3cret"), st, nil, nil, nil)

	body := `{"units":[
		{"unit_number":"404","floor_plan_name":"The Cedar","beds":"1","baths":1},
		{"unit_number":"405","floor_plan_name":"The Cedar","beds":1,"baths":1,"price":1500}
	]}`
	w := perform(r, http.MethodPost, "/api/import", body, map[string]string{mw.ImportTokenHeader: "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Results store.ImportResults `json:"results"`
	}](t, w)
	assert.Equal(t, 2, got.Results.Received)
	assert.Equal(t, 1, got.Results.ApartmentsUpserted)
	require.Len(t, got.Results.Errors, 1)
	assert.Contains(t, got.Results.Errors[0], "units[0]")

	apartments, err := st.ListApartments(context.Background(), filter.ApartmentFilters{})
	require.NoError(t, err)
	require.Len(t, apartments, 1)
	assert.Equal(t, "405", apartments[0].UnitNumber)
}

func TestVAPIDPublicKey(t *testing.T) {
	st := newTestStore(t)

	w := perform(NewRouter(testConfig(""), st, nil, nil, nil), http.MethodGet, "/api/vapid_public_key", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	r := NewRouter(testConfig(""), st, &webpush.Options{VAPIDPublicKey: "BPub"}, nil, nil)
	w = perform(r, http.MethodGet, "/api/vapid_public_key", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"BPub"}`, w.Body.String())
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func mustField(t *testing.T, w *httptest.ResponseRecorder, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	return fields[name]
}
