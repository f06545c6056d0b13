package catalog

import (
	"golang.org/x/text/currency"

	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/offer"
	"github.com/avstrong/hotelenquiry/internal/room"
)

func period(l *logger.Logger, from, effectiveFrom, to string) []offer.Period {
	p, ok := offer.ParsePeriod(from, effectiveFrom, to)
	if !ok {
		l.LogWarn("Skipping unreadable seed period %s-%s", from, to)

		return nil
	}

	return []offer.Period{p}
}

// Seed is the built-in catalog used when no catalog file is configured.
func Seed(l *logger.Logger) *Catalog {
	rooms := []room.Room{
		{
			ID:           "family-suite",
			Name:         "Family Suite",
			CapacityText: "2-4 Personen",
			Price:        289,
			Currency:     currency.EUR,
			Images:       []string{"/img/rooms/family-suite.jpg"},
		},
		{
			ID:           "double-deluxe",
			Name:         "Double Room Deluxe",
			CapacityText: "Für 1–2 Personen",
			Price:        189,
			Currency:     currency.EUR,
			Images:       []string{"/img/rooms/double-deluxe.jpg"},
		},
		{
			ID:           "single",
			Name:         "Single Room",
			CapacityText: "1 Person",
			Price:        119,
			Currency:     currency.EUR,
		},
	}

	var winter []offer.Period
	winter = append(winter, period(l, "01.12.2025", "", "22.12.2025")...)
	winter = append(winter, period(l, "07.01.2026", "", "31.03.2026")...)

	offers := []offer.Offer{
		{
			Title:     "Spring Wellness Days",
			Periods:   period(l, "01.03.2026", "15.03.2026", "30.04.2026"),
			MinNights: 3,
			ImageSrc:  "/img/offers/spring.jpg",
		},
		{
			Title:    "Ski & Relax",
			Periods:  winter,
			ImageSrc: "/img/offers/ski.jpg",
		},
		{
			Title:     "Summer Week",
			Periods:   period(l, "01.06.2026", "", "31.08.2026"),
			MinNights: 7,
			ImageSrc:  "/img/offers/summer.jpg",
		},
	}

	return New(rooms, offers)
}
