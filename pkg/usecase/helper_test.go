package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

var baseTime = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// stepClock returns the given instants in order and repeats the last one
type stepClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

type failingSink struct{}

func (failingSink) Put(ctx context.Context, record *model.ExportRecord) error {
	return errors.New("disk full")
}

func (failingSink) Get(ctx context.Context, name string) (*model.ExportRecord, error) {
	return nil, errors.New("not implemented")
}

func (failingSink) List(ctx context.Context) ([]*model.ExportRecord, error) {
	return nil, errors.New("not implemented")
}

func (failingSink) Close() error { return nil }

type mockEncyclopedia struct {
	summary string
	err     error
	query   string
}

func (m *mockEncyclopedia) Summarize(ctx context.Context, query string, sentences int) (string, error) {
	m.query = query
	return m.summary, m.err
}

type mockBrowser struct {
	url string
	err error
}

func (m *mockBrowser) OpenURL(ctx context.Context, url string) error {
	m.url = url
	return m.err
}

type mockLauncher struct {
	app string
	err error
}

func (m *mockLauncher) OpenApplication(ctx context.Context, name string) error {
	m.app = name
	return m.err
}

type mockCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

type mockSpeaker struct {
	spoken chan string
}

func (m *mockSpeaker) Speak(ctx context.Context, text string) error {
	m.spoken <- text
	return nil
}

type mockListener struct {
	text string
	err  error

	timeout     time.Duration
	phraseLimit time.Duration
}

func (m *mockListener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	m.timeout, m.phraseLimit = timeout, phraseLimit
	return m.text, m.err
}
