package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/stay"
)

const sample = `
rooms:
  - id: suite
    name: Suite
    capacity: "2-4 persons"
    price: 250
    currency: CHF
  - id: broken
    name: Broken currency
    capacity: ""
    currency: "??"
  - name: Missing id
offers:
  - title: Autumn
    min_nights: 2
    validity_periods:
      - from: "01.09.2025"
        effective_from: "05.09.2025"
        to: "30.09.2025"
      - from: "not a date"
        to: "31.10.2025"
`

func TestParse(t *testing.T) {
	c, err := Parse(logger.Discard(), []byte(sample))
	require.NoError(t, err)

	rooms := c.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, currency.CHF, rooms[0].Currency)
	assert.Equal(t, currency.EUR, rooms[1].Currency)
	assert.Equal(t, 2, rooms[1].MaxCapacity(), "empty capacity text degrades to default")

	offers := c.Offers()
	require.Len(t, offers, 1)
	require.Len(t, offers[0].Periods, 1)
	assert.Equal(t, stay.Date(2025, time.September, 5), offers[0].Periods[0].Start())
	assert.Equal(t, 2, offers[0].MinNights)
}

func TestParseRequiresRooms(t *testing.T) {
	_, err := Parse(logger.Discard(), []byte("rooms: []\n"))
	require.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = Parse(logger.Discard(), []byte("rooms: ["))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := Load(logger.Discard(), path)
	require.NoError(t, err)
	assert.Len(t, c.Rooms(), 2)

	_, err = Load(logger.Discard(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSeed(t *testing.T) {
	c := Seed(logger.Discard())

	require.Len(t, c.Rooms(), 3)
	assert.Equal(t, 4, c.Rooms()[0].MaxCapacity())

	offers := c.Offers()
	require.Len(t, offers, 3)
	assert.Len(t, offers[1].Periods, 2)

	for _, o := range offers {
		assert.NotEmpty(t, o.Periods, o.Title)
	}
}

func TestRoomsReturnsCopy(t *testing.T) {
	c := Seed(logger.Discard())

	rooms := c.Rooms()
	rooms[0].Name = "changed"

	assert.Equal(t, "Family Suite", c.Rooms()[0].Name)
}
