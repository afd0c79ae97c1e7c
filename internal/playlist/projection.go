package playlist

import "library-service/internal/video"

// videoIDs collects every referenced video, for one batch lookup.
func videoIDs(playlists ...Playlist) []string {
	var out []string
	for _, p := range playlists {
		for _, e := range p.Entries {
			out = append(out, e.VideoID)
		}
	}
	return out
}

// project drops entry ids and the owner. Entries whose video no longer
// resolves are skipped.
func project(p Playlist, videos map[string]video.Video) View {
	v := View{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Videos:      make([]video.Video, 0, len(p.Entries)),
	}
	for _, e := range p.Entries {
		if resolved, ok := videos[e.VideoID]; ok {
			v.Videos = append(v.Videos, resolved)
		}
	}
	return v
}

func projectAll(playlists []Playlist, videos map[string]video.Video) []View {
	out := make([]View, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, project(p, videos))
	}
	return out
}
