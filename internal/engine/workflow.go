package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/edvin/flowplane/internal/apperr"
)

// GetWorkflow fetches one workflow including its full definition.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	raw, err := c.do(ctx, "get_workflow", http.MethodGet, "/workflows/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return c.decodeWorkflow("get_workflow", raw)
}

// ListWorkflows walks every page of the engine's workflow listing.
func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var (
		workflows []Workflow
		cursor    string
		seen      = map[string]bool{}
	)

	for i := 0; i < maxPages; i++ {
		path := fmt.Sprintf("/workflows?limit=%d", pageLimit)
		if cursor != "" {
			path += "&cursor=" + url.QueryEscape(cursor)
		}

		p, err := c.getPage(ctx, "list_workflows", path)
		if err != nil {
			return nil, err
		}
		for _, item := range p.Data {
			w, err := c.decodeWorkflow("list_workflows", item)
			if err != nil {
				return nil, err
			}
			workflows = append(workflows, *w)
		}

		if p.NextCursor == nil || *p.NextCursor == "" || seen[*p.NextCursor] {
			return workflows, nil
		}
		cursor = *p.NextCursor
		seen[cursor] = true
	}
	return workflows, nil
}

func (c *Client) getPage(ctx context.Context, op, path string) (*page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	raw, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var p page
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, c.inconsistent(op, "decode engine page", raw, err)
	}
	return &p, nil
}

// CloneWorkflow copies the source workflow's nodes, connections and settings
// into a new inactive workflow named newName and files it under folderID.
// If filing fails the new workflow is deleted again.
func (c *Client) CloneWorkflow(ctx context.Context, sourceID, newName, folderID string) (*ClonedWorkflow, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cloneTimeout)
	defer cancel()

	src, err := c.GetWorkflow(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if err := c.validateGraph(src); err != nil {
		return nil, err
	}

	payload, err := clonePayload(newName, src)
	if err != nil {
		return nil, fmt.Errorf("build clone payload: %w", err)
	}

	raw, err := c.do(ctx, "create_workflow", http.MethodPost, "/workflows", payload)
	if err != nil {
		return nil, err
	}
	created, err := c.decodeWorkflow("create_workflow", raw)
	if err != nil {
		return nil, err
	}

	if created.Active {
		if err := c.toggle(ctx, created.ID, false); err != nil {
			c.discard(ctx, created.ID)
			return nil, err
		}
	}

	tags, err := json.Marshal([]map[string]string{{"id": folderID}})
	if err != nil {
		c.discard(ctx, created.ID)
		return nil, fmt.Errorf("marshal workflow tags: %w", err)
	}
	if _, err := c.do(ctx, "tag_workflow", http.MethodPut, "/workflows/"+url.PathEscape(created.ID)+"/tags", tags); err != nil {
		c.discard(ctx, created.ID)
		return nil, err
	}

	return &ClonedWorkflow{EngineID: created.ID, Definition: created.Raw}, nil
}

// SetActive activates or deactivates a workflow. A workflow missing in the
// engine yields apperr.ENotFound.
func (c *Client) SetActive(ctx context.Context, engineID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	return c.toggle(ctx, engineID, active)
}

func (c *Client) toggle(ctx context.Context, engineID string, active bool) error {
	op, action := "deactivate_workflow", "deactivate"
	if active {
		op, action = "activate_workflow", "activate"
	}
	_, err := c.do(ctx, op, http.MethodPost, "/workflows/"+url.PathEscape(engineID)+"/"+action, nil)
	return err
}

// DeleteWorkflow removes a workflow. A workflow that is already gone counts
// as deleted.
func (c *Client) DeleteWorkflow(ctx context.Context, engineID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	_, err := c.do(ctx, "delete_workflow", http.MethodDelete, "/workflows/"+url.PathEscape(engineID), nil)
	if apperr.Is(err, apperr.ENotFound) {
		return nil
	}
	return err
}

// discard deletes a half-created clone, independent of the caller's deadline.
func (c *Client) discard(ctx context.Context, engineID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
	defer cancel()

	if err := c.DeleteWorkflow(ctx, engineID); err != nil {
		c.logger.Warn().Err(err).Str("engine_workflow_id", engineID).Msg("failed to discard partial clone")
	}
}

func (c *Client) validateGraph(w *Workflow) error {
	var nodes []json.RawMessage
	if err := json.Unmarshal(w.Nodes, &nodes); err != nil || nodes == nil {
		return c.inconsistent("clone_workflow", fmt.Sprintf("source workflow %s has no node list", w.ID), w.Raw, err)
	}
	var connections map[string]json.RawMessage
	if err := json.Unmarshal(w.Connections, &connections); err != nil || connections == nil {
		return c.inconsistent("clone_workflow", fmt.Sprintf("source workflow %s has no connection map", w.ID), w.Raw, err)
	}
	return nil
}

// clonePayload splices the source's nodes, connections and settings into the
// create request unmodified.
func clonePayload(name string, src *Workflow) ([]byte, error) {
	encodedName, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}

	settings := bytes.TrimSpace(src.Settings)
	if len(settings) == 0 || bytes.Equal(settings, []byte("null")) {
		settings = []byte("{}")
	}

	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	buf.Write(encodedName)
	buf.WriteString(`,"nodes":`)
	buf.Write(src.Nodes)
	buf.WriteString(`,"connections":`)
	buf.Write(src.Connections)
	buf.WriteString(`,"settings":`)
	buf.Write(settings)
	buf.WriteString(`}`)
	return buf.Bytes(), nil
}
