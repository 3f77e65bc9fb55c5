package github

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
)

// eventPayload mirrors the parts of a GitHub Actions "issues" event
// payload the labeler needs.
type eventPayload struct {
	Action string `json:"action"`
	Issue  *struct {
		Number  int    `json:"number"`
		Title   string `json:"title"`
		Body    string `json:"body"`
		State   string `json:"state"`
		HTMLURL string `json:"html_url"`
		User    struct {
			Login string `json:"login"`
		} `json:"user"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	} `json:"issue"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// ParseEvent converts a GitHub Actions event payload into a pipeline
// issue. Payloads without an issue object (e.g., push events) are
// rejected.
func ParseEvent(data []byte) (*pipeline.Issue, error) {
	var payload eventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}
	if payload.Issue == nil {
		return nil, fmt.Errorf("event payload has no issue (action %q)", payload.Action)
	}

	issue := &pipeline.Issue{
		Org:         payload.Repository.Owner.Login,
		Repo:        payload.Repository.Name,
		Number:      payload.Issue.Number,
		Title:       payload.Issue.Title,
		Body:        payload.Issue.Body,
		State:       payload.Issue.State,
		Author:      payload.Issue.User.Login,
		URL:         payload.Issue.HTMLURL,
		EventAction: payload.Action,
	}
	for _, l := range payload.Issue.Labels {
		issue.Labels = append(issue.Labels, l.Name)
	}
	return issue, nil
}

// ParseEventFile reads and parses the event payload file GitHub Actions
// points to via GITHUB_EVENT_PATH.
func ParseEventFile(path string) (*pipeline.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	return ParseEvent(data)
}
