package offer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avstrong/hotelenquiry/internal/stay"
)

func TestCalendarPastAndBounds(t *testing.T) {
	c := Calendar{Today: june(10), MaxDate: june(20)}

	assert.True(t, c.IsDisabled(june(9), time.Time{}))
	assert.False(t, c.IsDisabled(june(10), time.Time{}))
	assert.False(t, c.IsDisabled(june(20), time.Time{}))
	assert.True(t, c.IsDisabled(june(21), time.Time{}))

	c.MinDate = june(12)
	assert.True(t, c.IsDisabled(june(11), time.Time{}))
}

func TestCalendarMinNightsAroundAnchor(t *testing.T) {
	c := Calendar{Today: june(1), MinNights: 3}

	assert.False(t, c.IsDisabled(june(15), june(15)))
	assert.True(t, c.IsDisabled(june(16), june(15)))
	assert.True(t, c.IsDisabled(june(17), june(15)))
	assert.False(t, c.IsDisabled(june(18), june(15)))
	assert.True(t, c.IsDisabled(june(13), june(15)), "too close before the anchor")
	assert.False(t, c.IsDisabled(june(12), june(15)))
}

func TestCalendarOfferAllowList(t *testing.T) {
	o := Offer{
		Title: "Split",
		Periods: []Period{
			mustPeriod(t, "01.06.2025", "10.06.2025"),
			mustPeriod(t, "20.06.2025", "30.06.2025"),
		},
		MinNights: 2,
	}
	c := Calendar{Today: june(1), MinNights: 1, Offer: &o}

	assert.False(t, c.IsDisabled(june(5), time.Time{}))
	assert.True(t, c.IsDisabled(june(15), time.Time{}))
	assert.True(t, c.IsDisabled(june(6), june(5)), "offer minimum stay applies")

	disabled := c.DisabledDays(june(9), 3, time.Time{})
	assert.Equal(t, []time.Time{june(11)}, disabled)
}

func TestCalendarClick(t *testing.T) {
	c := Calendar{Today: june(1)}

	r, ok := c.Click(stay.Range{}, june(5))
	assert.True(t, ok)
	assert.Equal(t, stay.Range{From: june(5)}, r)

	r, _ = c.Click(r, june(8))
	assert.Equal(t, stay.NewRange(june(5), june(8)), r)

	r, _ = c.Click(r, june(12))
	assert.Equal(t, stay.Range{From: june(12)}, r, "complete range restarts")

	r, _ = c.Click(r, june(9))
	assert.Equal(t, stay.Range{From: june(9)}, r, "click before start restarts")

	before := r
	r, ok = c.Click(r, stay.Date(2025, time.May, 1))
	assert.False(t, ok)
	assert.Equal(t, before, r)
}

func TestCalendarClickAcrossGapRestarts(t *testing.T) {
	o := Offer{
		Title: "Split",
		Periods: []Period{
			mustPeriod(t, "01.06.2025", "10.06.2025"),
			mustPeriod(t, "20.06.2025", "30.06.2025"),
		},
	}
	c := Calendar{Today: june(1), Offer: &o}

	r, _ := c.Click(stay.Range{}, june(8))
	r, ok := c.Click(r, june(22))

	assert.True(t, ok)
	assert.Equal(t, stay.Range{From: june(22)}, r)

	r, _ = c.Click(r, june(25))
	assert.Equal(t, stay.NewRange(june(22), june(25)), r)
}
