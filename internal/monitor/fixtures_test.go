package monitor_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
)

// --- mocks ---

// scriptedFetcher returns the next response on each call, repeating the last.
type scriptedFetcher struct {
	mu        sync.Mutex
	responses []fetchResponse
	calls     int
	called    chan struct{}
}

type fetchResponse struct {
	body []byte
	err  error
}

func newFetcher(responses ...fetchResponse) *scriptedFetcher {
	return &scriptedFetcher{responses: responses, called: make(chan struct{}, 16)}
}

func (f *scriptedFetcher) Fetch(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	resp := f.responses[i]
	f.mu.Unlock()

	select {
	case f.called <- struct{}{}:
	default:
	}
	return resp.body, resp.err
}

func body(b []byte) fetchResponse { return fetchResponse{body: b} }

func failure(err error) fetchResponse { return fetchResponse{err: err} }

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.AlertEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e domain.AlertEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) ids() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.events))
	for _, e := range n.events {
		ids = append(ids, e.ID)
	}
	return ids
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

// logBuffer captures log output at debug level for assertions.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// --- feed builders ---

// alertItem renders an <item> with the given start and optional end.
func alertItem(guid, title, start, end string) string {
	var desc strings.Builder
	desc.WriteString("<table>")
	fmt.Fprintf(&desc, "<tr><th align='left'>Evento</th><td>Chuvas Intensas</td></tr>")
	if start != "" {
		fmt.Fprintf(&desc, "<tr><th align='left'>Início</th><td>%s</td></tr>", start)
	}
	if end != "" {
		fmt.Fprintf(&desc, "<tr><th align='left'>Fim</th><td>%s</td></tr>", end)
	}
	fmt.Fprintf(&desc, "<tr><th align='left'>Área</th><td>Aviso para as Áreas: Sul Goiano</td></tr>")
	desc.WriteString("</table>")

	return fmt.Sprintf(
		"<item><title>%s</title><guid>%s</guid><description><![CDATA[%s]]></description><pubDate>Mon, 01 Jan 2024 09:30:00 -0300</pubDate></item>",
		title, guid, desc.String(),
	)
}

func openItem(guid string) string {
	return alertItem(guid, "Chuva Intensa. Severidade Grau: Perigo", "2024-01-01 10:00:00.000000", "")
}

func feed(items ...string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel>` +
		strings.Join(items, "") + `</channel></rss>`)
}
