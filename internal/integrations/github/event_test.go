package github

import (
	"testing"
)

func TestParseEvent_IssueOpened(t *testing.T) {
	payload := `{
		"action": "opened",
		"issue": {
			"number": 123,
			"title": "Glidein startup failure",
			"body": "Priority: [High]\nComponent: [Glidein]\nbug",
			"state": "open",
			"html_url": "https://github.com/glideinwms/glideinwms/issues/123",
			"user": {"login": "reporter"},
			"labels": [{"name": "triage"}]
		},
		"repository": {
			"name": "glideinwms",
			"owner": {"login": "glideinwms"}
		}
	}`

	issue, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}

	if issue.Org != "glideinwms" || issue.Repo != "glideinwms" {
		t.Errorf("Expected glideinwms/glideinwms, got %s/%s", issue.Org, issue.Repo)
	}
	if issue.Number != 123 {
		t.Errorf("Expected issue number 123, got %d", issue.Number)
	}
	if issue.Author != "reporter" {
		t.Errorf("Expected author 'reporter', got %q", issue.Author)
	}
	if issue.EventAction != "opened" {
		t.Errorf("Expected action 'opened', got %q", issue.EventAction)
	}
	if len(issue.Labels) != 1 || issue.Labels[0] != "triage" {
		t.Errorf("Expected labels [triage], got %v", issue.Labels)
	}
	if issue.Body == "" || issue.URL == "" || issue.State != "open" {
		t.Errorf("Expected issue fields to be parsed, got %+v", issue)
	}
}

func TestParseEvent_NoIssue(t *testing.T) {
	payload := `{"action": "push", "repository": {"name": "glideinwms", "owner": {"login": "glideinwms"}}}`

	if _, err := ParseEvent([]byte(payload)); err == nil {
		t.Error("Expected an error for a payload without an issue")
	}
}

func TestParseEvent_InvalidJSON(t *testing.T) {
	if _, err := ParseEvent([]byte("{not json")); err == nil {
		t.Error("Expected an error for invalid JSON")
	}
}
