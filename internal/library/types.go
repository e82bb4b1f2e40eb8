package library

// Entry is one video discovered under the library root.
type Entry struct {
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	RelativePath string `json:"relativePath"`
	URL          string `json:"url"`

	// Path is the absolute on-disk location. Never serialised.
	Path string `json:"-"`
}

// Thumbnail is the outcome of a thumbnail lookup. A missing preview is a
// normal state, not an error.
type Thumbnail struct {
	URL       string
	Available bool
}

// ThumbnailAt returns an available thumbnail served at url.
func ThumbnailAt(url string) Thumbnail {
	return Thumbnail{URL: url, Available: true}
}

// NoThumbnail is returned when no preview could be produced.
var NoThumbnail = Thumbnail{}

// Duration is the outcome of a duration probe. Unknown durations are
// reported to clients as 0.
type Duration struct {
	Seconds float64
	Known   bool
}

// DurationOf returns a known duration.
func DurationOf(seconds float64) Duration {
	return Duration{Seconds: seconds, Known: true}
}

// UnknownDuration is returned when probing failed.
var UnknownDuration = Duration{}

// Video is an Entry together with its resolved preview and duration, in the
// shape returned by the /api/videos endpoint.
type Video struct {
	Entry
	ThumbnailURL *string `json:"thumbnailUrl"`
	Duration     float64 `json:"duration"`
}

func newVideo(e Entry, thumb Thumbnail, dur Duration) Video {
	v := Video{Entry: e}
	if thumb.Available {
		url := thumb.URL
		v.ThumbnailURL = &url
	}
	if dur.Known {
		v.Duration = dur.Seconds
	}
	return v
}

// RenameResult describes a completed rename.
type RenameResult struct {
	OldPath string
	NewPath string
	NewURL  string
}
