package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"net/http"
	"net/url"
	"time"
)

// Contest IDs at or above this are gym contests and use the /gym URL shape.
const gymContestThreshold = 100000

const cfVerdictAccepted = "OK"

type CodeforcesAdapter struct {
	baseURL string
	client  *http.Client
}

func NewCodeforcesAdapter(baseURL string, client *http.Client) *CodeforcesAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &CodeforcesAdapter{baseURL: baseURL, client: client}
}

func (a *CodeforcesAdapter) Platform() model.Platform {
	return model.PlatformCodeforces
}

func (a *CodeforcesAdapter) ProfileURL(username string) string {
	return a.baseURL + "/profile/" + url.PathEscape(username)
}

// CatalogURLPrefix is empty: the catalog carries both /contest and /gym URL
// shapes, so matching runs against the full catalog.
func (a *CodeforcesAdapter) CatalogURLPrefix() string {
	return ""
}

type cfProblem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
}

type cfSubmission struct {
	CreationTimeSeconds int64     `json:"creationTimeSeconds"`
	Verdict             string    `json:"verdict"`
	Problem             cfProblem `json:"problem"`
}

type cfUserStatusResponse struct {
	Status  string         `json:"status"`
	Comment string         `json:"comment"`
	Result  []cfSubmission `json:"result"`
}

// FetchSolves calls the public user.status endpoint and reduces the
// submission history to one record per problem, keeping the earliest
// accepted submission when a problem was solved more than once.
func (a *CodeforcesAdapter) FetchSolves(ctx context.Context, username string) ([]model.SolvedProblem, error) {
	endpoint := a.baseURL + "/api/user.status?handle=" + url.QueryEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("codeforces: build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ClassifyError(resp.StatusCode, "")
	}

	// The API reports failures in-band: non-OK status plus a comment.
	// It often pairs those with a 4xx HTTP status, so decode before
	// judging the status code.
	var body cfUserStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding user.status response: %v", common.ErrUpstream, err)
	}
	if body.Status != "OK" {
		return nil, ClassifyError(http.StatusOK, body.Comment)
	}

	return dedupeEarliest(body.Result), nil
}

// dedupeEarliest keeps, per canonical URL, the accepted submission with the
// smallest creation timestamp. Later re-solves never overwrite an earlier
// solve time.
func dedupeEarliest(submissions []cfSubmission) []model.SolvedProblem {
	type seenSolve struct {
		record    model.SolvedProblem
		timestamp int64
	}
	seen := make(map[string]seenSolve)
	var order []string

	for _, sub := range submissions {
		if sub.Verdict != cfVerdictAccepted {
			continue
		}
		if sub.Problem.ContestID == 0 || sub.Problem.Index == "" {
			// Archive problems without a contest id cannot form a
			// canonical URL and can never match the catalog.
			continue
		}
		u := codeforcesProblemURL(sub.Problem.ContestID, sub.Problem.Index)
		prev, ok := seen[u]
		if !ok {
			order = append(order, u)
		}
		if !ok || sub.CreationTimeSeconds < prev.timestamp {
			seen[u] = seenSolve{
				record: model.SolvedProblem{
					URL:      u,
					Name:     sub.Problem.Name,
					SolvedAt: time.Unix(sub.CreationTimeSeconds, 0).UTC(),
				},
				timestamp: sub.CreationTimeSeconds,
			}
		}
	}

	solves := make([]model.SolvedProblem, 0, len(order))
	for _, u := range order {
		solves = append(solves, seen[u].record)
	}
	return solves
}

func codeforcesProblemURL(contestID int, index string) string {
	if contestID >= gymContestThreshold {
		return fmt.Sprintf("https://codeforces.com/gym/%d/problem/%s", contestID, index)
	}
	return fmt.Sprintf("https://codeforces.com/contest/%d/problem/%s", contestID, index)
}
