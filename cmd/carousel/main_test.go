package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/carousel"
)

const twoSlides = `slides:
  - id: a
    title: First
    background: bg-blue-800
  - id: b
    title: Second
    background: bg-rose-900
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_BuiltInDeck(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)

	assert.Contains(t, out, "built-in deck: 6 slides, interval 5s, counted pause")
	assert.Contains(t, out, "1. Modern Architecture")
	assert.Contains(t, out, "6. Urban Rhythms")
}

func TestValidate_FlagsOverrideConfig(t *testing.T) {
	deck := writeFile(t, "deck.yaml", twoSlides)
	cfg := writeFile(t, "carousel.yaml", "interval: 2s\npause_mode: counted\n")

	out, err := execute(t, "validate", "--config", cfg, "--deck", deck, "--pause-mode", "shared")
	require.NoError(t, err)
	assert.Contains(t, out, deck+": 2 slides, interval 2s, shared pause")
	assert.Contains(t, out, "2. Second")
}

func TestValidate_Rejects(t *testing.T) {
	_, err := execute(t, "validate", "--pause-mode", "sometimes")
	assert.ErrorContains(t, err, "invalid pause_mode")

	_, err = execute(t, "validate", "--interval", "0s")
	assert.ErrorContains(t, err, "invalid interval")

	empty := writeFile(t, "empty.yaml", "slides: []\n")
	_, err = execute(t, "validate", "--deck", empty)
	assert.ErrorContains(t, err, "deck has no slides")
}

func TestFrames_WritesEverySlide(t *testing.T) {
	dir := t.TempDir()
	deck := writeFile(t, "deck.yaml", twoSlides)

	out, err := execute(t, "frames", "--deck", deck, "--out", dir, "--format", "webp", "--width", "40", "--height", "12")
	require.NoError(t, err)

	for _, name := range []string{"slide-01.webp", "slide-02.webp"} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, out, name)
	}
}

func TestFrames_Baseline(t *testing.T) {
	dir := t.TempDir()
	baseline := t.TempDir()

	out, err := execute(t, "frames", "--out", dir, "--baseline", baseline, "--update-baseline")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline updated: 6 frames")
	assert.FileExists(t, filepath.Join(baseline, "slide-06.png"))

	out, err = execute(t, "frames", "--out", dir, "--baseline", baseline)
	require.NoError(t, err)
	assert.Contains(t, out, "all 6 frames match baseline")
}

func TestFrames_UnknownFormat(t *testing.T) {
	_, err := execute(t, "frames", "--out", t.TempDir(), "--format", "gif")
	assert.Error(t, err)
}

func TestRun_WatchNeedsDeck(t *testing.T) {
	_, err := execute(t, "--watch")
	assert.ErrorContains(t, err, "--watch needs a deck file")
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestForwardReloads(t *testing.T) {
	good := writeFile(t, "good.yaml", twoSlides)
	bad := writeFile(t, "bad.yaml", "slides: []\n")

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan string)
	sender := &recordingSender{}
	done := make(chan struct{})
	go func() {
		forwardReloads(ctx, events, sender, zap.NewNop())
		close(done)
	}()

	events <- bad
	events <- good
	cancel()
	<-done

	require.Equal(t, 1, sender.count(), "decks that fail to load are skipped")
	msg, ok := sender.msgs[0].(carousel.ReloadMsg)
	require.True(t, ok)
	assert.Equal(t, 2, msg.Deck.Len())
	assert.Equal(t, "Second", msg.Deck.At(1).Title)
}

func TestForwardReloads_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		forwardReloads(ctx, make(chan string), &recordingSender{}, zap.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwardReloads kept running after cancel")
	}
}
