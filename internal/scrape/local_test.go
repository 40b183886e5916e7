package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aboutPage = `<html>
<head><title>Gestora Exemplo</title><style>body { color: red }</style></head>
<body>
<nav><a href="/">Home</a><a href="/sobre">Sobre</a></nav>
<h1>Quem somos</h1>
<p>Somos uma gestora independente fundada em 2008 com atuação em todo o território nacional.</p>
<p>Administramos patrimônio sob gestão de R$ 2,3 bi em fundos de investimento.</p>
<script>trackPageView();</script>
<footer>© Gestora Exemplo</footer>
</body>
</html>`

func TestLocalScraperExtractsParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(aboutPage))
	}))
	defer srv.Close()

	res, err := NewLocalScraper().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Gestora Exemplo", res.Title)
	assert.Equal(t, "local_http", res.Source)
	assert.Contains(t, res.Content, "R$ 2,3 bi")
	assert.NotContains(t, res.Content, "trackPageView")
	assert.NotContains(t, res.Content, "color: red")
	assert.NotContains(t, res.Content, "© Gestora Exemplo")

	// Paragraph structure survives for the chunk selector.
	assert.Contains(t, res.Content, "nacional.\n\n")
}

func TestLocalScraperRejectsBlockedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>Please solve this captcha to continue browsing our website today</body></html>"))
	}))
	defer srv.Close()

	_, err := NewLocalScraper().Scrape(context.Background(), srv.URL)
	require.Error(t, err)

	var be *BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BlockCaptcha, be.Type)
	assert.Contains(t, err.Error(), "blocked")
}

func TestLocalScraperRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLocalScraper().Scrape(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLocalScraperRejectsTinyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>oi</p></body></html>"))
	}))
	defer srv.Close()

	_, err := NewLocalScraper().Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestExtractTextDivOnlyPageFallsBackToBody(t *testing.T) {
	html := "<html><body><div>" + strings.Repeat("texto institucional da empresa ", 10) + "</div></body></html>"
	_, text, err := extractText([]byte(html))
	require.NoError(t, err)
	assert.Contains(t, text, "texto institucional")
}
