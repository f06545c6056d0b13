package enquiry

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

const (
	EventEnquirySubmitted = "enquiry_submitted"
	EventRoomsEnquired    = "rooms_enquired"
)

type Event struct {
	Name  string         `json:"name"`
	Props map[string]any `json:"props"`
}

type Tracker interface {
	Track(ctx context.Context, e Event)
}

type NopTracker struct{}

func (NopTracker) Track(context.Context, Event) {}

func (f *Form) track(ctx context.Context, receipt *Receipt) {
	id := ""
	if receipt != nil {
		id = receipt.ID
	}

	f.tracker.Track(ctx, Event{
		Name: EventEnquirySubmitted,
		Props: map[string]any{
			"enquiry_id": id,
			"offer":      f.data.Offer,
			"nights":     f.store.Dates().Primary.Nights(),
			"source":     f.opts.TrafficSource,
		},
	})

	ids := make([]string, 0, len(f.rooms))
	for _, a := range f.rooms {
		if r, ok := a.Room.Room(); ok {
			ids = append(ids, r.ID)
		}
	}

	f.tracker.Track(ctx, Event{
		Name:  EventRoomsEnquired,
		Props: map[string]any{"rooms": ids, "slots": len(f.rooms)},
	})
}

var (
	thankYouPaths = map[language.Tag]string{
		language.English: "/en/thank-you",
		language.German:  "/de/danke",
		language.Italian: "/it/grazie",
	}
	supportedLocales = []language.Tag{language.English, language.German, language.Italian}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// ThankYouPath picks the confirmation page for the guest's locale.
func ThankYouPath(locale language.Tag) string {
	_, idx, _ := localeMatcher.Match(locale)

	return thankYouPaths[supportedLocales[idx]]
}

// MatchLocale resolves an Accept-Language style value to a supported tag.
func MatchLocale(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}

	_, idx, _ := localeMatcher.Match(tags...)

	return supportedLocales[idx]
}

// TrafficSource tags where the guest came from: the utm source, else the
// referring host, else "direct".
func TrafficSource(utmSource, referrer string) string {
	if s := strings.TrimSpace(utmSource); s != "" {
		return strings.ToLower(s)
	}

	if u, err := url.Parse(strings.TrimSpace(referrer)); err == nil && u.Hostname() != "" {
		return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}

	return "direct"
}
