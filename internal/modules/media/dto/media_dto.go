package dto

// MediaSummary is one row of a TMDB list/search response. Movies fill Title and
// ReleaseDate, shows fill Name and FirstAirDate, people fill Name and ProfilePath.
type MediaSummary struct {
	ID                 int     `json:"id"`
	MediaType          string  `json:"media_type,omitempty"`
	Title              string  `json:"title,omitempty"`
	Name               string  `json:"name,omitempty"`
	Overview           string  `json:"overview,omitempty"`
	PosterPath         *string `json:"poster_path,omitempty"`
	BackdropPath       *string `json:"backdrop_path,omitempty"`
	ProfilePath        *string `json:"profile_path,omitempty"`
	ReleaseDate        string  `json:"release_date,omitempty"`
	FirstAirDate       string  `json:"first_air_date,omitempty"`
	Popularity         float64 `json:"popularity"`
	VoteAverage        float64 `json:"vote_average,omitempty"`
	GenreIDs           []int   `json:"genre_ids,omitempty"`
	KnownForDepartment string  `json:"known_for_department,omitempty"`
}

func (m MediaSummary) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

type PagedResults struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []MediaSummary `json:"results"`
}

type GroupedSearchResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Movies       []MediaSummary `json:"movies"`
	Shows        []MediaSummary `json:"shows"`
	People       []MediaSummary `json:"people"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type GenreList struct {
	Genres []Genre `json:"genres"`
}

type SeasonSummary struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	SeasonNumber int     `json:"season_number"`
	EpisodeCount int     `json:"episode_count"`
	AirDate      string  `json:"air_date,omitempty"`
	PosterPath   *string `json:"poster_path,omitempty"`
}

type MediaDetails struct {
	ID               int             `json:"id"`
	Title            string          `json:"title,omitempty"`
	Name             string          `json:"name,omitempty"`
	Tagline          string          `json:"tagline,omitempty"`
	Overview         string          `json:"overview"`
	Status           string          `json:"status,omitempty"`
	PosterPath       *string         `json:"poster_path,omitempty"`
	BackdropPath     *string         `json:"backdrop_path,omitempty"`
	ReleaseDate      string          `json:"release_date,omitempty"`
	FirstAirDate     string          `json:"first_air_date,omitempty"`
	Runtime          int             `json:"runtime,omitempty"`
	NumberOfSeasons  int             `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int             `json:"number_of_episodes,omitempty"`
	Genres           []Genre         `json:"genres"`
	Seasons          []SeasonSummary `json:"seasons,omitempty"`
	VoteAverage      float64         `json:"vote_average"`
	Popularity       float64         `json:"popularity"`
}

func (d MediaDetails) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

type Episode struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	EpisodeNumber int     `json:"episode_number"`
	SeasonNumber  int     `json:"season_number"`
	Overview      string  `json:"overview,omitempty"`
	AirDate       string  `json:"air_date,omitempty"`
	StillPath     *string `json:"still_path,omitempty"`
	Runtime       int     `json:"runtime,omitempty"`
	VoteAverage   float64 `json:"vote_average"`
}

type Season struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	Overview     string    `json:"overview,omitempty"`
	AirDate      string    `json:"air_date,omitempty"`
	PosterPath   *string   `json:"poster_path,omitempty"`
	Episodes     []Episode `json:"episodes"`
}

type DiscoverQuery struct {
	Page int    `form:"page,default=1" binding:"min=1,max=500"`
	Type string `form:"type,default=movie" binding:"oneof=movie tv MOVIE SHOW"`
}

type SearchQuery struct {
	Query string `form:"query" binding:"required,max=200"`
	Page  int    `form:"page,default=1" binding:"min=1,max=500"`
}

type GenresQuery struct {
	Type string `form:"type,default=movie" binding:"oneof=movie tv MOVIE SHOW"`
}

type DetailsQuery struct {
	ID   int    `form:"id" binding:"required,min=1"`
	Type string `form:"type,default=movie" binding:"oneof=movie tv MOVIE SHOW"`
}

type SeasonQuery struct {
	ID     int `form:"id" binding:"required,min=1"`
	Season int `form:"season" binding:"min=0"`
}

type SpoilerSearchQuery struct {
	Query string `form:"query" binding:"max=200"`
}

type ShowsDiscoverQuery struct {
	Page int `form:"page,default=1" binding:"min=1,max=500"`
}
