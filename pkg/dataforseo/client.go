// Package dataforseo is a client for the DataForSEO v3 task API (submit a
// task, wait, fetch its result) used for keyword metrics and SERP snapshots.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.dataforseo.com"

const (
	pathKeywordPost = "/v3/keywords_data/google_ads/search_volume/task_post"
	pathKeywordGet  = "/v3/keywords_data/google_ads/search_volume/task_get/"
	pathRelatedPost = "/v3/keywords_data/google_ads/keywords_for_keywords/task_post"
	pathRelatedGet  = "/v3/keywords_data/google_ads/keywords_for_keywords/task_get/"
	pathSerpPost    = "/v3/serp/google/organic/task_post"
	pathSerpGet     = "/v3/serp/google/organic/task_get/advanced/"
)

// Provider status codes.
const (
	StatusOK          = 20000
	StatusTaskCreated = 20100
	StatusRateLimit   = 40202
	StatusTaskHanded  = 40601
	StatusTaskInQueue = 40602
)

// Client defines the submit/get task operations used by the pipeline.
type Client interface {
	SubmitKeywordTask(ctx context.Context, req KeywordTaskRequest) (string, error)
	GetKeywordTaskResult(ctx context.Context, taskID string) ([]KeywordResult, error)
	SubmitRelatedTask(ctx context.Context, req RelatedTaskRequest) (string, error)
	GetRelatedTaskResult(ctx context.Context, taskID string) ([]KeywordResult, error)
	SubmitSerpTask(ctx context.Context, req SerpTaskRequest) (string, error)
	GetSerpTaskResult(ctx context.Context, taskID string) (*SerpResult, error)
}

// KeywordTaskRequest is one task for the search_volume endpoint.
type KeywordTaskRequest struct {
	Keywords     []string `json:"keywords"`
	LocationCode int      `json:"location_code"`
	LanguageCode string   `json:"language_code"`
}

// RelatedTaskRequest is one task for the keywords_for_keywords endpoint.
type RelatedTaskRequest struct {
	Keywords     []string `json:"keywords"`
	LocationCode int      `json:"location_code"`
	LanguageCode string   `json:"language_code"`
}

// SerpTaskRequest is one task for the organic SERP endpoint.
type SerpTaskRequest struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Device       string `json:"device,omitempty"`
	Depth        int    `json:"depth,omitempty"`
}

// KeywordResult is a single keyword row returned by the keywords endpoints.
type KeywordResult struct {
	Keyword          string   `json:"keyword"`
	SearchVolume     *int64   `json:"search_volume"`
	Competition      string   `json:"competition"`
	CompetitionIndex *float64 `json:"competition_index"`
	CPC              *float64 `json:"cpc"`
}

// SerpResult is the advanced SERP payload for a single query.
type SerpResult struct {
	Keyword      string     `json:"keyword"`
	LocationCode int        `json:"location_code"`
	LanguageCode string     `json:"language_code"`
	Items        []SerpItem `json:"items"`
}

// SerpItem is one element on the results page (organic, featured_snippet,
// local_pack, ...).
type SerpItem struct {
	Type         string      `json:"type"`
	RankGroup    int         `json:"rank_group"`
	RankAbsolute int         `json:"rank_absolute"`
	Domain       string      `json:"domain"`
	Title        string      `json:"title"`
	URL          string      `json:"url"`
	Description  string      `json:"description"`
	Rating       *SerpRating `json:"rating,omitempty"`
}

// SerpRating is the review rating attached to local-pack items.
type SerpRating struct {
	Value float64 `json:"value"`
}

type envelope[T any] struct {
	StatusCode    int       `json:"status_code"`
	StatusMessage string    `json:"status_message"`
	Tasks         []task[T] `json:"tasks"`
}

type task[T any] struct {
	ID            string `json:"id"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Result        []T    `json:"result"`
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http with basic auth.
type httpClient struct {
	login    string
	password string
	baseURL  string
	http     *http.Client
}

// NewClient creates a DataForSEO client authenticated with login/password.
func NewClient(login, password string, opts ...Option) Client {
	c := &httpClient{
		login:    login,
		password: password,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SubmitKeywordTask(ctx context.Context, req KeywordTaskRequest) (string, error) {
	id, err := c.submit(ctx, pathKeywordPost, []KeywordTaskRequest{req})
	if err != nil {
		return "", eris.Wrap(err, "dataforseo: submit keyword task")
	}
	return id, nil
}

func (c *httpClient) GetKeywordTaskResult(ctx context.Context, taskID string) ([]KeywordResult, error) {
	var env envelope[KeywordResult]
	if err := c.get(ctx, pathKeywordGet+taskID, &env); err != nil {
		return nil, eris.Wrapf(err, "dataforseo: get keyword task %s", taskID)
	}
	t, err := singleTask(env.StatusCode, env.StatusMessage, env.Tasks)
	if err != nil {
		return nil, eris.Wrapf(err, "dataforseo: get keyword task %s", taskID)
	}
	if len(t.Result) == 0 {
		return nil, eris.Wrapf(ErrEmptyResult, "dataforseo: keyword task %s", taskID)
	}
	return t.Result, nil
}

func (c *httpClient) SubmitRelatedTask(ctx context.Context, req RelatedTaskRequest) (string, error) {
	id, err := c.submit(ctx, pathRelatedPost, []RelatedTaskRequest{req})
	if err != nil {
		return "", eris.Wrap(err, "dataforseo: submit related task")
	}
	return id, nil
}

func (c *httpClient) GetRelatedTaskResult(ctx context.Context, taskID string) ([]KeywordResult, error) {
	var env envelope[KeywordResult]
	if err := c.get(ctx, pathRelatedGet+taskID, &env); err != nil {
		return nil, eris.Wrapf(err, "dataforseo: get related task %s", taskID)
	}
	t, err := singleTask(env.StatusCode, env.StatusMessage, env.Tasks)
	if err != nil {
		return nil, eris.Wrapf(err, "dataforseo: get related task %s", taskID)
	}
	if len(t.Result) == 0 {
		return nil, eris.Wrapf(ErrEmptyResult, "dataforseo: related task %s", taskID)
	}
	return t.Result, nil
}

func (c *httpClient) SubmitSerpTask(ctx context.Context, req SerpTaskRequest) (string, error) {
	id, err := c.submit(ctx, pathSerpPost, []SerpTaskRequest{req})
	if err != nil {
		return "", eris.Wrap(err, "dataforseo: submit serp task")
	}
	return id, nil
}

func (c *httpClient) GetSerpTaskResult(ctx context.Context, taskID string) (*SerpResult, error) {
	var env envelope[SerpResult]
	if err := c.get(ctx, pathSerpGet+taskID, &env); err != nil {
		return nil, eris.Wrapf(err, "dataforseo: get serp task %s", taskID)
	}
	t, err := singleTask(env.StatusCode, env.StatusMessage, env.Tasks)
	if err != nil {
		return nil, eris.Wrapf(err, "dataforseo: get serp task %s", taskID)
	}
	if len(t.Result) == 0 || len(t.Result[0].Items) == 0 {
		return nil, eris.Wrapf(ErrEmptyResult, "dataforseo: serp task %s", taskID)
	}
	return &t.Result[0], nil
}

// submit posts a single-task array and returns the created task ID.
func (c *httpClient) submit(ctx context.Context, path string, body any) (string, error) {
	var env envelope[json.RawMessage]
	if err := c.post(ctx, path, body, &env); err != nil {
		return "", err
	}
	t, err := singleTask(env.StatusCode, env.StatusMessage, env.Tasks)
	if err != nil {
		return "", err
	}
	if t.ID == "" {
		return "", eris.New("task created without id")
	}
	return t.ID, nil
}

// singleTask validates the envelope and the first task's status code.
func singleTask[T any](code int, msg string, tasks []task[T]) (*task[T], error) {
	if code != StatusOK {
		return nil, &TaskError{Code: code, Message: msg}
	}
	if len(tasks) == 0 {
		return nil, eris.Wrap(ErrEmptyResult, "no tasks in response")
	}
	t := &tasks[0]
	if t.StatusCode != StatusOK && t.StatusCode != StatusTaskCreated {
		return nil, &TaskError{Code: t.StatusCode, Message: t.StatusMessage}
	}
	return t, nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.login, c.password)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.SetBasicAuth(c.login, c.password)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
