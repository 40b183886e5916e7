package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aboutParagraph = "A gestora administra um patrimônio sob gestão de R$ 2,3 bilhões, distribuído em fundos de investimento multimercado."

const fillerParagraph = "Nossa sede fica em São Paulo e contamos com escritórios regionais em outras capitais brasileiras para atendimento presencial."

func TestSelectDropsKeywordlessParagraphs(t *testing.T) {
	text := fillerParagraph + "\n\n" + aboutParagraph + "\n\n" + fillerParagraph

	chunks := Select(text, 5, 6000)
	require.Len(t, chunks, 1)
	assert.Equal(t, aboutParagraph, chunks[0].Text)
	assert.Greater(t, chunks[0].Score, 0)
}

func TestSelectOrdersByScore(t *testing.T) {
	weak := "A gestora mantém escritórios em várias capitais brasileiras para atender seus clientes."
	text := weak + "\n\n" + aboutParagraph

	chunks := Select(text, 5, 6000)
	require.Len(t, chunks, 2)
	assert.Equal(t, aboutParagraph, chunks[0].Text)
	assert.Greater(t, chunks[0].Score, chunks[1].Score)
}

func TestSelectDropsShortFragments(t *testing.T) {
	text := "Home\n\nSobre nós\n\nContato\n\n" + aboutParagraph

	chunks := Select(text, 5, 6000)
	require.Len(t, chunks, 1)
	assert.Equal(t, aboutParagraph, chunks[0].Text)
}

func TestSelectCapsChunkCount(t *testing.T) {
	paras := make([]string, 8)
	for i := range paras {
		paras[i] = aboutParagraph
	}
	chunks := Select(strings.Join(paras, "\n\n"), 5, 6000)
	assert.Len(t, chunks, 5)
}

func TestSelectTiesKeepDocumentOrder(t *testing.T) {
	first := aboutParagraph + " primeira"
	second := aboutParagraph + " segunda"
	chunks := Select(first+"\n\n"+second, 2, 6000)
	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0].Text)
	assert.Equal(t, second, chunks[1].Text)
}

// A paragraph competes with its whole-text score; splitting happens only
// after the ranking. Scoring the split pieces instead would let a short
// paragraph beat a richer long one.
func TestSelectRanksWholeParagraphsBeforeSplitting(t *testing.T) {
	lead := "O fundo da gestora reune estrategias diversificadas de longo prazo para clientes institucionais do mercado brasileiro"
	tail := "com investimento distribuido entre bilhoes em credito e milhoes em acoes listadas"
	strong := lead + " " + tail // five keywords in aggregate, at most three per half
	rival := "Nosso AUM em R$ e US$ permanece sob custodia de administradores qualificados."

	chunks := Select(strong+"\n\n"+rival, 1, len(lead))
	require.Len(t, chunks, 1)
	assert.Equal(t, lead, chunks[0].Text)
	assert.Equal(t, 5, chunks[0].Score)
}

func TestSelectSubChunksCountAgainstCap(t *testing.T) {
	long := aboutParagraph + " " + aboutParagraph
	chunks := Select(long+"\n\n"+fillerParagraph+" "+aboutParagraph, 3, len(aboutParagraph))
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), len(aboutParagraph))
	}
}

func TestSelectSplitsOversizedParagraphOnWordBoundary(t *testing.T) {
	long := strings.Repeat("fundo ", 55) // ~330 chars, every piece keeps a keyword
	chunks := Select(long, 10, 100)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 100)
		assert.False(t, strings.HasPrefix(c.Text, " "))
		assert.False(t, strings.HasSuffix(c.Text, " "))
	}
}

func TestScoreAccentInsensitive(t *testing.T) {
	assert.Equal(t, score("PATRIMÔNIO sob gestão"), score("patrimonio sob gestao"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "patrimonio sob gestao", Fold("Patrimônio sob Gestão"))
	assert.Equal(t, "bilhoes", Fold("bilhões"))
}

func TestSelectEmptyInput(t *testing.T) {
	assert.Empty(t, Select("", 5, 6000))
	assert.Empty(t, Select("   \n\n  ", 5, 6000))
}
