package usecase

import (
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/event"
	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	"github.com/courtline/tennis-data-api/internal/domain/odds"
	"github.com/courtline/tennis-data-api/internal/domain/player"
	"github.com/courtline/tennis-data-api/internal/domain/tournament"
	"github.com/courtline/tennis-data-api/internal/platform/datewindow"
)

// textField extracts the first usable text value among the given
// field names. Missing, null, empty, and the literal string "null"
// all count as absent; the provider sends every variant.
func textField(record map[string]any, fields ...string) string {
	for _, field := range fields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}

		var text string
		switch v := value.(type) {
		case string:
			text = strings.TrimSpace(v)
		case float64:
			text = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			text = strconv.FormatBool(v)
		default:
			continue
		}

		if text == "" || text == "null" {
			continue
		}
		return text
	}
	return ""
}

// intField parses the first usable field as an integer, best effort.
// Unparseable values are discarded rather than failing the record.
func intField(record map[string]any, fields ...string) *int {
	text := textField(record, fields...)
	if text == "" {
		return nil
	}
	parsed, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &parsed
}

// dayField parses the first usable field as a provider day and
// returns the canonical YYYY-MM-DD form, or empty when the value is
// absent or does not parse.
func dayField(record map[string]any, fields ...string) string {
	text := textField(record, fields...)
	if text == "" {
		return ""
	}
	parsed, err := datewindow.ParseDay(text)
	if err != nil {
		return ""
	}
	return parsed.Format(datewindow.DayFormat)
}

// resultRecords coerces an envelope result into record maps. A
// missing or non-array result yields nil; callers treat that as an
// empty payload, not an error.
func resultRecords(result any) []map[string]any {
	items, ok := result.([]any)
	if !ok {
		return nil
	}
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

func encodeRaw(record map[string]any) string {
	raw, err := sonic.MarshalString(record)
	if err != nil {
		return ""
	}
	return raw
}

// mapEvent builds an event document. The bool is false when the
// record has no resolvable natural key and must be skipped.
func mapEvent(record map[string]any, now time.Time) (event.Event, bool) {
	typeKey := textField(record, "event_type_key")
	if typeKey == "" {
		return event.Event{}, false
	}
	return event.Event{
		TypeKey: typeKey,
		Name:    textField(record, "event_type_name"),
		Meta:    document.NewMeta(encodeRaw(record), now),
	}, true
}

func mapTournament(record map[string]any, now time.Time) (tournament.Tournament, bool) {
	key := textField(record, "tournament_key")
	if key == "" {
		return tournament.Tournament{}, false
	}
	return tournament.Tournament{
		Key:          key,
		Name:         textField(record, "tournament_name"),
		EventTypeKey: textField(record, "event_type_key"),
		Surface:      textField(record, "surface"),
		Country:      textField(record, "country_name"),
		Meta:         document.NewMeta(encodeRaw(record), now),
	}, true
}

func mapFixture(record map[string]any, now time.Time) (fixture.Fixture, bool) {
	eventKey := textField(record, "event_key")
	if eventKey == "" {
		return fixture.Fixture{}, false
	}
	return fixture.Fixture{
		EventKey:         eventKey,
		TournamentKey:    textField(record, "tournament_key"),
		EventDate:        dayField(record, "event_date"),
		FirstPlayerKey:   textField(record, "first_player_key", "event_first_player_key"),
		FirstPlayerName:  textField(record, "event_first_player"),
		SecondPlayerKey:  textField(record, "second_player_key", "event_second_player_key"),
		SecondPlayerName: textField(record, "event_second_player"),
		Status:           textField(record, "event_status"),
		Winner:           textField(record, "event_winner"),
		FinalResult:      textField(record, "event_final_result"),
		Meta:             document.NewMeta(encodeRaw(record), now),
	}, true
}

func mapPlayer(playerKey string, record map[string]any, now time.Time) (player.Player, bool) {
	key := strings.TrimSpace(playerKey)
	if key == "" {
		key = textField(record, "player_key")
	}
	if key == "" {
		return player.Player{}, false
	}
	return player.Player{
		Key:     key,
		Name:    textField(record, "player_name"),
		Country: textField(record, "player_country"),
		Hand:    textField(record, "player_hand"),
		Rank:    intField(record, "player_rank"),
		Meta:    document.NewMeta(encodeRaw(record), now),
	}, true
}

func mapOdds(matchKey string, record map[string]any, now time.Time) (odds.Odds, bool) {
	key := strings.TrimSpace(matchKey)
	if key == "" {
		return odds.Odds{}, false
	}
	return odds.Odds{
		Key:           odds.KeyFor(key),
		MatchKey:      key,
		TournamentKey: textField(record, "tournament_key"),
		EventDate:     dayField(record, "event_date"),
		Meta:          document.NewMeta(encodeRaw(record), now),
	}, true
}
