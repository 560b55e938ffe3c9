package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/edvin/flowplane/internal/apperr"
)

// GetOrCreateFolder returns the ID of the folder (tag) named label, creating
// it when missing. Concurrent callers in this process share one lookup; a
// duplicate reported by the engine because another process won the race
// is resolved by fetching the existing folder.
func (c *Client) GetOrCreateFolder(ctx context.Context, label string) (string, error) {
	if strings.TrimSpace(label) == "" {
		return "", apperr.New(apperr.EInvalid, "get_or_create_folder", "folder label is empty")
	}

	v, err, _ := c.folders.Do(label, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()
		return c.getOrCreateFolder(ctx, label)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) getOrCreateFolder(ctx context.Context, label string) (string, error) {
	tag, err := c.findTag(ctx, label)
	if err != nil {
		return "", err
	}
	if tag != nil {
		return tag.ID, nil
	}

	tag, err = c.createTag(ctx, label)
	if err == nil {
		return tag.ID, nil
	}
	if !isDuplicate(err) {
		return "", err
	}

	c.logger.Debug().Str("folder", label).Msg("folder created concurrently, re-fetching")
	tag, err = c.findTag(ctx, label)
	if err != nil {
		return "", err
	}
	if tag == nil {
		return "", c.inconsistent("get_or_create_folder",
			fmt.Sprintf("engine reported folder %q as duplicate but lookup found none", label), nil, nil)
	}
	return tag.ID, nil
}

func (c *Client) findTag(ctx context.Context, name string) (*Tag, error) {
	var cursor string
	seen := map[string]bool{}

	for i := 0; i < maxPages; i++ {
		path := fmt.Sprintf("/tags?limit=%d", pageLimit)
		if cursor != "" {
			path += "&cursor=" + url.QueryEscape(cursor)
		}

		raw, err := c.do(ctx, "list_tags", http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		var p struct {
			Data       []Tag   `json:"data"`
			NextCursor *string `json:"nextCursor"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, c.inconsistent("list_tags", "decode engine tags", raw, err)
		}
		for _, t := range p.Data {
			if t.Name == name {
				return &t, nil
			}
		}

		if p.NextCursor == nil || *p.NextCursor == "" || seen[*p.NextCursor] {
			return nil, nil
		}
		cursor = *p.NextCursor
		seen[cursor] = true
	}
	return nil, nil
}

func (c *Client) createTag(ctx context.Context, name string) (*Tag, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("marshal tag: %w", err)
	}

	raw, err := c.do(ctx, "create_tag", http.MethodPost, "/tags", body)
	if err != nil {
		return nil, err
	}
	var t Tag
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, c.inconsistent("create_tag", "decode engine tag", raw, err)
	}
	if t.ID == "" {
		return nil, c.inconsistent("create_tag", "engine tag without id", raw, nil)
	}
	return &t, nil
}

// isDuplicate recognises the engine's "already exists" answers: a 409, or a
// 400 whose body says so.
func isDuplicate(err error) bool {
	if apperr.Is(err, apperr.EConflict) {
		return true
	}
	return apperr.Is(err, apperr.EEngineInconsistent) && strings.Contains(strings.ToLower(err.Error()), "already exists")
}
