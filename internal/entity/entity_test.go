package entity

import (
	"testing"

	"github.com/google/uuid"
)

func TestChatPairKey_OrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	if ChatPairKey(a, b) != ChatPairKey(b, a) {
		t.Fatal("pair key must not depend on argument order")
	}
	if ChatPairKey(a, b) == ChatPairKey(a, uuid.New()) {
		t.Fatal("different pairs must produce different keys")
	}
}

func TestEnums(t *testing.T) {
	if !MediaTypeMovie.Valid() || !MediaTypeShow.Valid() || MediaType("PERSON").Valid() {
		t.Error("MediaType accepts exactly SHOW and MOVIE")
	}
	if !MessageMediaPerson.Valid() || MessageMediaType("BOOK").Valid() {
		t.Error("MessageMediaType accepts SHOW, MOVIE and PERSON")
	}
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("status %s should be valid", s)
		}
	}
	if Status("DROPPED").Valid() {
		t.Error("unexpected status accepted")
	}
}

func TestMediaTypeTMDBMapping(t *testing.T) {
	if MediaTypeShow.TMDBPath() != "tv" || MediaTypeMovie.TMDBPath() != "movie" {
		t.Error("unexpected TMDB path")
	}
	if mt, ok := MediaTypeFromTMDB("tv"); !ok || mt != MediaTypeShow {
		t.Errorf("MediaTypeFromTMDB(tv) = %v, %v", mt, ok)
	}
	if _, ok := MediaTypeFromTMDB("person"); ok {
		t.Error("person is not a watchlist media type")
	}
}

func TestMessageHasSpoiler(t *testing.T) {
	m := &Message{}
	if m.HasSpoiler() {
		t.Error("empty message has no spoiler")
	}
	media := "Breaking Bad"
	m.SpoilerMedia = &media
	if !m.HasSpoiler() {
		t.Error("expected spoiler")
	}
}
