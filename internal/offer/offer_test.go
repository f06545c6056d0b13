package offer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/hotelenquiry/internal/stay"
)

func mustPeriod(t *testing.T, from, to string) Period {
	t.Helper()

	p, ok := ParsePeriod(from, "", to)
	require.True(t, ok)

	return p
}

func june(d int) time.Time {
	return stay.Date(2025, time.June, d)
}

func TestIsAvailableMinNights(t *testing.T) {
	o := Offer{
		Title:     "Summer",
		Periods:   []Period{mustPeriod(t, "01.06.2025", "30.06.2025")},
		MinNights: 3,
	}

	assert.False(t, o.IsAvailable(june(10), june(11)))
	assert.False(t, o.IsAvailable(june(10), june(12)))
	assert.True(t, o.IsAvailable(june(10), june(13)))
}

func TestIsAvailableAcrossPeriods(t *testing.T) {
	o := Offer{
		Title: "Split",
		Periods: []Period{
			mustPeriod(t, "01.06.2025", "10.06.2025"),
			mustPeriod(t, "20.06.2025", "30.06.2025"),
		},
	}

	assert.True(t, o.IsAvailable(june(5), june(8)))
	assert.False(t, o.IsAvailable(june(11), june(15)))
	assert.True(t, o.IsAvailable(june(18), june(20)), "touching the second window start counts")
}

func TestEffectiveFromOverridesFrom(t *testing.T) {
	p, ok := ParsePeriod("01.06.2025", "15.06.2025", "30.06.2025")
	require.True(t, ok)

	o := Offer{Title: "Late start", Periods: []Period{p}}

	assert.False(t, o.IsAvailable(june(2), june(5)))
	assert.True(t, o.IsAvailable(june(14), june(16)))
	assert.Equal(t, june(15), p.Start())
}

func TestParsePeriodRejectsInverted(t *testing.T) {
	_, ok := ParsePeriod("30.06.2025", "", "01.06.2025")
	assert.False(t, ok)

	_, ok = ParsePeriod("garbage", "", "01.06.2025")
	assert.False(t, ok)
}

func TestPartition(t *testing.T) {
	offers := []Offer{
		{Title: "A", Periods: []Period{mustPeriod(t, "01.06.2025", "10.06.2025")}},
		{Title: "B", Periods: []Period{mustPeriod(t, "01.07.2025", "31.07.2025")}},
		{Title: "C", Periods: []Period{mustPeriod(t, "01.06.2025", "30.06.2025")}, MinNights: 7},
		{Title: "D", Periods: []Period{mustPeriod(t, "01.05.2025", "30.06.2025")}},
	}

	t.Run("no dates keeps everything selected", func(t *testing.T) {
		b := Partition(offers, stay.Range{})

		assert.Equal(t, offers, b.SelectedDates)
		assert.Empty(t, b.OtherPeriods)
	})

	t.Run("complete and disjoint", func(t *testing.T) {
		b := Partition(offers, stay.NewRange(june(5), june(8)))

		assert.Equal(t, []string{"A", "D"}, titles(b.SelectedDates))
		assert.Equal(t, []string{"B", "C"}, titles(b.OtherPeriods))
		assert.Len(t, append(b.SelectedDates, b.OtherPeriods...), len(offers))
	})
}

func titles(offers []Offer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.Title)
	}

	return out
}

func TestFind(t *testing.T) {
	o, ok := Find([]Offer{{Title: "X"}}, "X")
	require.True(t, ok)
	assert.Equal(t, "X", o.Title)

	_, ok = Find(nil, "X")
	assert.False(t, ok)
}
