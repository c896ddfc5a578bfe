package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybench/internal/cache"
	"surveybench/internal/services"
	"surveybench/internal/specialty"
	"surveybench/internal/store"
	"surveybench/pkg/contracts/domain"
)

func newMappingRouter(t *testing.T) (chi.Router, *store.MemStore, *cache.Cache) {
	t.Helper()
	logger := discardLogger()
	s := store.NewMemStore()
	require.NoError(t, s.SaveMapping(context.Background(), domain.SpecialtyMapping{
		ID:               "m-cardiology",
		StandardizedName: "Cardiology",
		SourceSpecialties: []domain.SourceSpecialty{
			{Specialty: "Cardiovascular Disease", SurveySource: "SullivanCotter"},
		},
	}))

	c := cache.New(time.Hour, logger)
	matcher := specialty.NewMatcher(specialty.DefaultSynonyms(), logger)
	svc := services.NewMappingService(s, matcher, c, logger)
	h := NewMappingHandler(svc, logger)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, s, c
}

func TestMappingHandlerList(t *testing.T) {
	r, _, _ := newMappingRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/mappings/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var mappings []domain.SpecialtyMapping
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mappings))
	require.Len(t, mappings, 1)
	assert.Equal(t, "Cardiology", mappings[0].StandardizedName)
}

func TestMappingHandlerSave(t *testing.T) {
	r, s, c := newMappingRouter(t)

	t.Run("blank id gets generated", func(t *testing.T) {
		rec := postJSON(t, r, "/mappings/",
			`{"standardized_name":"Dermatology","source_specialties":[{"specialty":"Derm","survey_source":"MGMA"}]}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var saved domain.SpecialtyMapping
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "Dermatology", saved.StandardizedName)

		stored, err := s.GetAllMappings(context.Background())
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("save clears the benchmark cache", func(t *testing.T) {
		c.Put([]domain.CanonicalRow{{Specialty: "Cardiology"}}, domain.FilterOptions{})
		require.True(t, c.HasFreshData())

		rec := postJSON(t, r, "/mappings/", `{"standardized_name":"Orthopedics"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.False(t, c.HasFreshData())
	})

	t.Run("missing standardized name is rejected", func(t *testing.T) {
		rec := postJSON(t, r, "/mappings/", `{"source_specialties":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMappingHandlerDelete(t *testing.T) {
	r, s, _ := newMappingRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/mappings/m-cardiology", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	stored, err := s.GetAllMappings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)

	t.Run("unknown id is a 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/mappings/nope", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMappingHandlerAutoMap(t *testing.T) {
	r, s, _ := newMappingRouter(t)

	rec := postJSON(t, r, "/mappings/auto-map",
		`{"items":[
			{"name":"Cardiology","survey_source":"MGMA"},
			{"name":"Zzyzx Medicine","survey_source":"MGMA"}
		],"config":{"confidence_threshold":0.8,"use_fuzzy_matching":true}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []domain.MappingResult `json:"results"`
		Total   int                    `json:"total"`
		Matched int                    `json:"matched"`
		Failed  int                    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Matched)
	assert.Zero(t, resp.Failed)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, domain.MatchExact, resp.Results[0].Method)
	assert.False(t, resp.Results[1].Matched)

	// The matched item was folded into its mapping's source list.
	stored, err := s.GetAllMappings(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Len(t, stored[0].SourceSpecialties, 2)

	t.Run("empty batch is rejected", func(t *testing.T) {
		rec := postJSON(t, r, "/mappings/auto-map", `{"items":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMappingHandlerCorrect(t *testing.T) {
	r, s, _ := newMappingRouter(t)

	rec := postJSON(t, r, "/mappings/corrections",
		`{"original_name":"Cardiovascular Dis","standardized_name":"Cardiology"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recorded")

	learned, err := s.GetLearnedMappings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", learned["cardiovascular dis"])

	t.Run("missing fields are rejected", func(t *testing.T) {
		rec := postJSON(t, r, "/mappings/corrections", `{"original_name":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
