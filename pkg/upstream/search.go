package upstream

import (
	"context"
	"sort"
	"strings"
)

const searchPath = "/youtubei/v1/search"

// searchParamsVideos is the provider's filter token restricting search
// results to plain videos.
const searchParamsVideos = "EgIQAQ=="

type searchRequest struct {
	Query   string           `json:"query"`
	Context innertubeContext `json:"context"`
	Params  string           `json:"params,omitempty"`
}

// Search queries the provider and returns up to limit results in the
// provider's order. A limit of zero or less returns everything the
// provider sent. The response layout varies by device profile, so
// results are collected by walking the document rather than decoding a
// fixed shape.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "q", Message: "search query is required"}
	}

	payload := searchRequest{
		Query:   query,
		Context: c.buildContext(),
		Params:  searchParamsVideos,
	}
	var resp map[string]any
	if err := c.postJSON(ctx, "search", searchPath, payload, &resp, nil); err != nil {
		return nil, err
	}

	var renderers []map[string]any
	collectRenderers(resp, &renderers)

	results := make([]SearchResult, 0, len(renderers))
	seen := make(map[string]bool, len(renderers))
	for _, r := range renderers {
		result, ok := c.parseRenderer(r)
		if !ok || seen[result.ID] {
			continue
		}
		seen[result.ID] = true
		results = append(results, result)
		if limit > 0 && len(results) == limit {
			break
		}
	}

	c.logger.Debug("search completed", "query", query, "results", len(results))
	return results, nil
}

// collectRenderers gathers every video renderer in the document. Map
// keys are visited in sorted order so the same document always yields
// the same result sequence; items inside a shelf keep their array
// order.
func collectRenderers(v any, out *[]map[string]any) {
	switch node := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if key == "videoRenderer" || key == "compactVideoRenderer" {
				if r, ok := node[key].(map[string]any); ok {
					*out = append(*out, r)
					continue
				}
			}
			collectRenderers(node[key], out)
		}
	case []any:
		for _, item := range node {
			collectRenderers(item, out)
		}
	}
}

func (c *Client) parseRenderer(r map[string]any) (SearchResult, bool) {
	id, _ := r["videoId"].(string)
	if id == "" {
		return SearchResult{}, false
	}
	author := textField(r, "ownerText")
	if author == "" {
		author = textField(r, "longBylineText")
	}
	if author == "" {
		author = textField(r, "shortBylineText")
	}
	views := textField(r, "viewCountText")
	if views == "" {
		views = textField(r, "shortViewCountText")
	}
	return SearchResult{
		ID:        id,
		Title:     textField(r, "title"),
		Author:    author,
		Duration:  textField(r, "lengthText"),
		Thumbnail: bestThumbnail(r),
		URL:       c.watchURL(id),
		Views:     views,
	}, true
}

// textField reads a provider text object, which is either
// {"simpleText": ...} or {"runs": [{"text": ...}, ...]}.
func textField(m map[string]any, key string) string {
	obj, ok := m[key].(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := obj["simpleText"].(string); ok {
		return s
	}
	runs, ok := obj["runs"].([]any)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, run := range runs {
		if rm, ok := run.(map[string]any); ok {
			if s, ok := rm["text"].(string); ok {
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

func bestThumbnail(r map[string]any) string {
	thumb, ok := r["thumbnail"].(map[string]any)
	if !ok {
		return ""
	}
	list, ok := thumb["thumbnails"].([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	last, ok := list[len(list)-1].(map[string]any)
	if !ok {
		return ""
	}
	u, _ := last["url"].(string)
	return u
}
