package follow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"twfollow/pkg/browser"
	"twfollow/pkg/config"
	"twfollow/pkg/followlog"
	"twfollow/pkg/logger"
	"twfollow/pkg/quota"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeElement struct {
	mu   sync.Mutex
	text string
}

func (e *fakeElement) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, nil
}

func (e *fakeElement) set(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// fakeBrowser serves WaitVisible from a queue of labels; an empty label
// means the button is missing on that wait.
type fakeBrowser struct {
	labels     []string
	afterClick string
	userID     string
	userIDErr  error
	emergency  bool
	reason     string
	clickErr   error

	navigations []string
	idLookups   []string
	waits       []time.Duration
	reloads     int
	clicks      int
	lastClicked browser.Element
}

func (b *fakeBrowser) ProfileURL(username string) string {
	return "https://twitter.com/" + username + "/"
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.navigations = append(b.navigations, url)
	return nil
}

func (b *fakeBrowser) WaitVisible(_ context.Context, _ string, timeout time.Duration) (browser.Element, error) {
	b.waits = append(b.waits, timeout)
	if len(b.labels) == 0 {
		return nil, errors.New("element not found")
	}
	label := b.labels[0]
	b.labels = b.labels[1:]
	if label == "" {
		return nil, errors.New("element not found")
	}
	return &fakeElement{text: label}, nil
}

func (b *fakeBrowser) Reload(context.Context) error {
	b.reloads++
	return nil
}

func (b *fakeBrowser) Click(_ context.Context, el browser.Element) error {
	if b.clickErr != nil {
		return b.clickErr
	}
	b.clicks++
	b.lastClicked = el
	if fe, ok := el.(*fakeElement); ok && b.afterClick != "" {
		fe.set(b.afterClick)
	}
	return nil
}

func (b *fakeBrowser) ClickVisibly(ctx context.Context, el browser.Element) error {
	return b.Click(ctx, el)
}

// UserID opens the profile like the real driver does
func (b *fakeBrowser) UserID(_ context.Context, username string) (string, error) {
	b.idLookups = append(b.idLookups, "profile:"+username)
	b.navigations = append(b.navigations, b.ProfileURL(username))
	return b.userID, b.userIDErr
}

func (b *fakeBrowser) PostAuthorID(_ context.Context, username string) (string, error) {
	b.idLookups = append(b.idLookups, "post:"+username)
	return b.userID, b.userIDErr
}

func (b *fakeBrowser) Emergency(context.Context, string) (bool, string) {
	return b.emergency, b.reason
}

type fakeCounter struct {
	times  map[string]int
	writes []string
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{times: make(map[string]int)}
}

func (c *fakeCounter) Write(_ context.Context, username string) {
	c.times[username]++
	c.writes = append(c.writes, username)
}

func (c *fakeCounter) Read(_ context.Context, username string, limit int) bool {
	return c.times[username] >= limit
}

type fakeQuota struct {
	verdicts []quota.Verdict
	recorded []string
}

func (q *fakeQuota) Check(context.Context, string) quota.Verdict {
	if len(q.verdicts) == 0 {
		return quota.Proceed
	}
	v := q.verdicts[0]
	q.verdicts = q.verdicts[1:]
	return v
}

func (q *fakeQuota) Record(_ context.Context, action string) {
	q.recorded = append(q.recorded, action)
}

type fakePool struct {
	entries []followlog.Entry
}

func (p *fakePool) Append(_ string, entry followlog.Entry) {
	p.entries = append(p.entries, entry)
}

type fixedDelay time.Duration

func (d fixedDelay) Delay(string) time.Duration { return time.Duration(d) }

type fakeProgress struct {
	done     map[string]bool
	recorded map[string]string
}

func (p *fakeProgress) Done(username string) bool { return p.done[username] }

func (p *fakeProgress) Record(username string, _ bool, reason string) {
	p.recorded[username] = reason
}

type harness struct {
	follower *Follower
	browser  *fakeBrowser
	counter  *fakeCounter
	quota    *fakeQuota
	pool     *fakePool
	log      *logger.TestLogger
	slept    []time.Duration
}

var testNow = time.Date(2024, 6, 1, 12, 30, 0, 0, time.Local)

func newHarness(b *fakeBrowser) *harness {
	cfg := config.DefaultConfig()
	cfg.Account.Username = "me"
	cfg.Quota.JumpLimit = 2

	h := &harness{
		browser: b,
		counter: newFakeCounter(),
		quota:   &fakeQuota{},
		pool:    &fakePool{},
		log:     logger.NewTestLogger(),
	}
	h.follower = New(cfg, Deps{
		Browser: b,
		Counter: h.counter,
		Quota:   h.quota,
		Pool:    h.pool,
		Delays:  fixedDelay(10 * time.Second),
	}, h.log)
	h.follower.now = func() time.Time { return testNow }
	h.follower.sleep = func(_ context.Context, d time.Duration) error {
		h.slept = append(h.slept, d)
		return nil
	}
	return h
}
