package entity

// MediaType is the two-way media kind used by watchlist entries and activities.
type MediaType string

const (
	MediaTypeShow  MediaType = "SHOW"
	MediaTypeMovie MediaType = "MOVIE"
)

func (m MediaType) Valid() bool {
	return m == MediaTypeShow || m == MediaTypeMovie
}

// TMDBPath returns the upstream path segment ("movie" or "tv").
func (m MediaType) TMDBPath() string {
	if m == MediaTypeShow {
		return "tv"
	}
	return "movie"
}

// MediaTypeFromTMDB maps "movie"/"tv" back to a MediaType.
func MediaTypeFromTMDB(s string) (MediaType, bool) {
	switch s {
	case "movie":
		return MediaTypeMovie, true
	case "tv":
		return MediaTypeShow, true
	}
	return "", false
}

type Status string

const (
	StatusWatching    Status = "WATCHING"
	StatusPlanToWatch Status = "PLAN_TO_WATCH"
	StatusCompleted   Status = "COMPLETED"
)

var Statuses = []Status{StatusWatching, StatusPlanToWatch, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusWatching, StatusPlanToWatch, StatusCompleted:
		return true
	}
	return false
}

// MessageMediaType is the three-way kind for media attached to a message.
type MessageMediaType string

const (
	MessageMediaShow   MessageMediaType = "SHOW"
	MessageMediaMovie  MessageMediaType = "MOVIE"
	MessageMediaPerson MessageMediaType = "PERSON"
)

func (m MessageMediaType) Valid() bool {
	switch m {
	case MessageMediaShow, MessageMediaMovie, MessageMediaPerson:
		return true
	}
	return false
}
