package video

import "context"

// Resolver answers video lookups for other packages. Nothing is cached: a
// video deleted a moment ago is gone for the next request.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// FindOwnedVideo returns ErrNotFound unless videoID exists and belongs to
// userID.
func (r *Resolver) FindOwnedVideo(ctx context.Context, videoID, userID string) (*Video, error) {
	return r.store.FindOwned(ctx, videoID, userID)
}

// ResolveVideos loads the given ids in one query. Missing ids are absent
// from the map.
func (r *Resolver) ResolveVideos(ctx context.Context, ids []string) (map[string]Video, error) {
	out := make(map[string]Video, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	videos, err := r.store.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	for _, v := range videos {
		out[v.ID] = v
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
