package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"

	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/offer"
	"github.com/avstrong/hotelenquiry/internal/room"
)

var ErrEmptyCatalog = errors.New("catalog has no rooms")

// Catalog is the read-only list of rooms and offers the site sells.
type Catalog struct {
	rooms  []room.Room
	offers []offer.Offer
}

func New(rooms []room.Room, offers []offer.Offer) *Catalog {
	return &Catalog{rooms: room.Biddable(rooms), offers: offers}
}

func (c *Catalog) Rooms() []room.Room {
	out := make([]room.Room, len(c.rooms))
	copy(out, c.rooms)

	return out
}

func (c *Catalog) Offers() []offer.Offer {
	out := make([]offer.Offer, len(c.offers))
	copy(out, c.offers)

	return out
}

type fileRoom struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Capacity string   `yaml:"capacity"`
	Price    float64  `yaml:"price"`
	Currency string   `yaml:"currency"`
	Images   []string `yaml:"images"`
}

type filePeriod struct {
	From          string `yaml:"from"`
	EffectiveFrom string `yaml:"effective_from"`
	To            string `yaml:"to"`
}

type fileOffer struct {
	Title     string       `yaml:"title"`
	Periods   []filePeriod `yaml:"validity_periods"`
	MinNights int          `yaml:"min_nights"`
	ImageSrc  string       `yaml:"image_src"`
}

type file struct {
	Rooms  []fileRoom  `yaml:"rooms"`
	Offers []fileOffer `yaml:"offers"`
}

// Load reads a YAML catalog. Entries with unreadable dates or currencies
// degrade to defaults and are logged rather than rejected.
func Load(l *logger.Logger, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	return Parse(l, data)
}

func Parse(l *logger.Logger, data []byte) (*Catalog, error) {
	var f file

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	rooms := make([]room.Room, 0, len(f.Rooms))
	for _, r := range f.Rooms {
		rooms = append(rooms, room.Room{
			ID:           r.ID,
			Name:         r.Name,
			CapacityText: r.Capacity,
			Price:        r.Price,
			Currency:     parseCurrency(l, r.Currency),
			Images:       r.Images,
		})
	}

	if len(room.Biddable(rooms)) == 0 {
		return nil, ErrEmptyCatalog
	}

	offers := make([]offer.Offer, 0, len(f.Offers))
	for _, o := range f.Offers {
		offers = append(offers, buildOffer(l, o))
	}

	return New(rooms, offers), nil
}

func parseCurrency(l *logger.Logger, code string) currency.Unit {
	if strings.TrimSpace(code) == "" {
		return currency.EUR
	}

	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		l.LogWarn("Unknown currency %q, using EUR", code)

		return currency.EUR
	}

	return unit
}

func buildOffer(l *logger.Logger, o fileOffer) offer.Offer {
	out := offer.Offer{
		Title:     o.Title,
		Periods:   make([]offer.Period, 0, len(o.Periods)),
		MinNights: max(0, o.MinNights),
		ImageSrc:  o.ImageSrc,
	}

	for _, p := range o.Periods {
		period, ok := offer.ParsePeriod(p.From, p.EffectiveFrom, p.To)
		if !ok {
			l.LogWarn("Skipping unreadable validity period %s-%s of offer %q", p.From, p.To, o.Title)

			continue
		}

		out.Periods = append(out.Periods, period)
	}

	return out
}
