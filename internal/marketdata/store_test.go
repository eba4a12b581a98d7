package marketdata

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalczak/evergreen/internal/database"
	"github.com/mwalczak/evergreen/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(database.Config{
		Path: "file:" + t.Name() + "?mode=memory&cache=shared",
		Name: "marketdata-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db.Conn(), zerolog.Nop())
	require.NoError(t, store.Init())
	return store
}

func TestStorePriceRoundTrip(t *testing.T) {
	store := newTestStore(t)

	bars := []domain.PriceBar{
		{Date: "2020-01-02", Close: 100},
		{Date: "2020-01-03", Close: 101.5},
	}
	require.NoError(t, store.SavePrices("AAPL", bars))

	got, err := store.PriceHistory("AAPL")
	require.NoError(t, err)
	assert.Equal(t, bars, got)

	empty, err := store.PriceHistory("MSFT")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoreFundamentalsPayload(t *testing.T) {
	store := newTestStore(t)

	snaps := []domain.FundamentalSnapshot{
		{
			Period:    "2020",
			MarketCap: 2e12,
			Sector:    "Tech",
			Metrics: map[string]float64{
				"roe":     22.5,
				"revenue": 274515,
			},
			RoicHistory: []float64{18, 19, 21},
		},
		{
			Period:    "2021",
			MarketCap: 2.4e12,
			Sector:    "Tech",
			Metrics:   map[string]float64{"roe": 26.0},
		},
	}
	require.NoError(t, store.SaveFundamentals("AAPL", snaps))

	got, err := store.Fundamentals("AAPL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 22.5, got[0].Metrics["roe"])
	assert.Equal(t, []float64{18, 19, 21}, got[0].RoicHistory)
	// Absent metrics stay absent after the round trip
	_, ok := got[1].Metrics["revenue"]
	assert.False(t, ok)
}

func TestStoreMembersAndFX(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveMembers("SP500", "2020", []string{"AAPL", "MSFT"}))
	require.NoError(t, store.SaveMembers("SP500", "2020", []string{"AAPL", "GOOGL"}))

	members, err := store.Members("SP500")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOGL"}, members["2020"])

	require.NoError(t, store.SaveFXRates("USDPLN", []domain.PriceBar{{Date: "2020-01-02", Close: 3.9}}))
	fx, err := store.FXHistory("USDPLN")
	require.NoError(t, err)
	require.Len(t, fx, 1)
	assert.Equal(t, 3.9, fx[0].Close)
}

func TestLoaderSortsHistory(t *testing.T) {
	source := NewInMemorySource(
		map[string][]domain.PriceBar{
			"AAPL": {
				{Date: "2020-01-03", Close: 101},
				{Date: "2020-01-02", Close: 100},
			},
		},
		map[string][]domain.FundamentalSnapshot{
			"AAPL": {
				{Period: "2021"},
				{Period: "2020"},
			},
		},
		nil, nil,
	)
	loader := &Loader{Prices: source, Fundamentals: source, Membership: source, FX: source}

	bars, err := loader.LoadPriceHistory("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-02", bars[0].Date)

	snaps, err := loader.LoadFundamentals("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "2020", snaps[0].Period)
}
