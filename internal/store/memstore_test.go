package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybench/pkg/contracts/domain"
)

func TestMemStoreSurveys(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	rows := []domain.RawSurveyRow{
		{"Specialty": "Cardiology"},
		{"Specialty": "Dermatology"},
		{"Specialty": "Neurology"},
	}
	s.AddSurvey(domain.Survey{ID: "s2", Source: "MGMA", Year: "2024", UploadedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}, rows)
	s.AddSurvey(domain.Survey{ID: "s1", Source: "SullivanCotter", Year: "2023", UploadedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}, nil)

	t.Run("list orders by upload time", func(t *testing.T) {
		surveys, err := s.ListSurveys(ctx)
		require.NoError(t, err)
		require.Len(t, surveys, 2)
		assert.Equal(t, "s1", surveys[0].ID)
		assert.Equal(t, "s2", surveys[1].ID)
		assert.Equal(t, 3, surveys[1].RowCount)
	})

	t.Run("pagination bounds the page", func(t *testing.T) {
		page, err := s.GetSurveyData(ctx, "s2", domain.Pagination{Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page.Rows, 1)
		assert.Equal(t, "Dermatology", page.Rows[0]["Specialty"])
		assert.Equal(t, 3, page.Total)
	})

	t.Run("offset past the end is an empty page", func(t *testing.T) {
		page, err := s.GetSurveyData(ctx, "s2", domain.Pagination{Offset: 10, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, page.Rows)
		assert.Equal(t, 3, page.Total)
	})

	t.Run("unknown survey is ErrNotFound", func(t *testing.T) {
		_, err := s.GetSurveyData(ctx, "missing", domain.Pagination{Limit: 10})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("remove drops survey and rows", func(t *testing.T) {
		s.RemoveSurvey("s1")
		surveys, err := s.ListSurveys(ctx)
		require.NoError(t, err)
		assert.Len(t, surveys, 1)
	})
}

func TestMemStoreMappings(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.SaveMapping(ctx, domain.SpecialtyMapping{ID: "m1", StandardizedName: "Cardiology"}))
	require.NoError(t, s.SaveMapping(ctx, domain.SpecialtyMapping{ID: "m2", StandardizedName: "Dermatology"}))
	require.NoError(t, s.SaveMapping(ctx, domain.SpecialtyMapping{ID: "m3", StandardizedName: "Neurology"}))

	t.Run("insertion order is preserved", func(t *testing.T) {
		mappings, err := s.GetAllMappings(ctx)
		require.NoError(t, err)
		require.Len(t, mappings, 3)
		assert.Equal(t, []string{"m1", "m2", "m3"}, []string{mappings[0].ID, mappings[1].ID, mappings[2].ID})
	})

	t.Run("replace keeps position and created time", func(t *testing.T) {
		before, err := s.GetAllMappings(ctx)
		require.NoError(t, err)
		created := before[1].CreatedAt

		m := before[1]
		m.SourceSpecialties = []domain.SourceSpecialty{{Specialty: "Derm", SurveySource: "MGMA"}}
		require.NoError(t, s.SaveMapping(ctx, m))

		after, err := s.GetAllMappings(ctx)
		require.NoError(t, err)
		assert.Equal(t, "m2", after[1].ID)
		assert.Equal(t, created, after[1].CreatedAt)
		assert.Len(t, after[1].SourceSpecialties, 1)
	})

	t.Run("returned mappings are copies", func(t *testing.T) {
		mappings, err := s.GetAllMappings(ctx)
		require.NoError(t, err)
		mappings[1].SourceSpecialties[0].Specialty = "mutated"

		again, err := s.GetAllMappings(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Derm", again[1].SourceSpecialties[0].Specialty)
	})

	t.Run("delete removes from order", func(t *testing.T) {
		require.NoError(t, s.DeleteMapping(ctx, "m2"))
		mappings, err := s.GetAllMappings(ctx)
		require.NoError(t, err)
		require.Len(t, mappings, 2)
		assert.Equal(t, "m1", mappings[0].ID)
		assert.Equal(t, "m3", mappings[1].ID)

		assert.ErrorIs(t, s.DeleteMapping(ctx, "m2"), ErrNotFound)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		assert.Error(t, s.SaveMapping(ctx, domain.SpecialtyMapping{}))
	})
}

func TestMemStoreLearnedMappings(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.SaveLearnedMapping(ctx, "  CARDIOLOGY - GENERAL ", "Cardiology"))

	learned, err := s.GetLearnedMappings(ctx)
	require.NoError(t, err)
	got, ok := learned.Lookup("Cardiology - General")
	require.True(t, ok)
	assert.Equal(t, "Cardiology", got)

	// The returned table is a copy.
	learned["cardiology - general"] = "mutated"
	again, err := s.GetLearnedMappings(ctx)
	require.NoError(t, err)
	got, _ = again.Lookup("cardiology - general")
	assert.Equal(t, "Cardiology", got)

	assert.Error(t, s.SaveLearnedMapping(ctx, "   ", "Cardiology"))
}

func TestMemStoreColumnMappings(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, err := s.GetColumnMapping(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveColumnMapping(ctx, domain.ColumnMapping{
		SurveyID: "s1",
		Columns:  map[string]string{"specialty": "Provider Specialty"},
	}))

	m, err := s.GetColumnMapping(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Provider Specialty", m.Columns["specialty"])

	// Mutating the returned map must not leak into the store.
	m.Columns["specialty"] = "mutated"
	again, err := s.GetColumnMapping(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Provider Specialty", again.Columns["specialty"])
}
