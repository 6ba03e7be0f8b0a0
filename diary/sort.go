package diary

import (
	"slices"
	"strings"
	"time"

	"github.com/moyoez/diary-upload-go/types"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime parses the datetime attribute of a card.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortCards returns the cards newest first. Cards whose timestamp cannot be
// parsed go last, keeping their relative order.
func SortCards(cards []types.DiaryCard) []types.DiaryCard {
	type keyed struct {
		card types.DiaryCard
		at   time.Time
		ok   bool
	}
	items := make([]keyed, len(cards))
	for i, c := range cards {
		at, ok := ParseDateTime(c.DateTime)
		items[i] = keyed{card: c, at: at, ok: ok}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})
	out := make([]types.DiaryCard, len(items))
	for i, it := range items {
		out[i] = it.card
	}
	return out
}
