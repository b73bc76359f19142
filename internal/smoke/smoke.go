// Package smoke runs a quick post-deploy check against a running site.
package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Paths are the routes every deployment must answer. The last one must not exist.
var Paths = []string{"/", "/projects", "/writing", "/admin", "/__smoke_missing__"}

// Result is the outcome for one path.
type Result struct {
	Path   string        `json:"path"`
	Status int           `json:"status"`
	Took   time.Duration `json:"took"`
	Error  string        `json:"error,omitempty"`
}

// OK reports whether the path passed.
func (r Result) OK() bool {
	return r.Error == ""
}

// Report is the outcome of a run.
type Report struct {
	BaseURL string   `json:"baseUrl"`
	Results []Result `json:"results"`
}

// Passed reports whether every path passed.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

// Runner checks a site.
type Runner struct {
	Client  *http.Client
	BaseURL string
	log     *logrus.Entry
}

// New returns a runner for baseURL with a bounded client.
func New(baseURL string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Runner{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		log:     logrus.WithField("component", "smoke"),
	}
}

// Run checks every path concurrently. It only fails for a bad base URL.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if !strings.HasPrefix(r.BaseURL, "http://") && !strings.HasPrefix(r.BaseURL, "https://") {
		return Report{}, fmt.Errorf("base url must be http(s): %q", r.BaseURL)
	}

	report := Report{BaseURL: r.BaseURL, Results: make([]Result, len(Paths))}
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range Paths {
		g.Go(func() error {
			report.Results[i] = r.check(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range report.Results {
		entry := r.log.WithFields(logrus.Fields{"path": res.Path, "status": res.Status, "took": res.Took})
		if res.OK() {
			entry.Info("smoke check passed")
		} else {
			entry.WithField("error", res.Error).Warn("smoke check failed")
		}
	}
	return report, nil
}

func (r *Runner) check(ctx context.Context, path string) Result {
	res := Result{Path: path}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		res.Error = err.Error()
		res.Took = time.Since(start)
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	res.Took = time.Since(start)
	switch {
	case err != nil:
		res.Error = "reading body: " + err.Error()
	case resp.StatusCode >= 500:
		res.Error = fmt.Sprintf("server error %d", resp.StatusCode)
	case !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"):
		res.Error = "unexpected content type " + resp.Header.Get("Content-Type")
	case !wellFormed(body):
		res.Error = "body is not a JSON document"
	}
	return res
}

func wellFormed(body []byte) bool {
	var doc map[string]any
	return json.Unmarshal(body, &doc) == nil && len(doc) > 0
}
