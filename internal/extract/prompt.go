package extract

import "fmt"

// systemPrompt pins the assistant to the one-line answer format the parser
// expects.
const systemPrompt = "Você é um assistente que extrai valores de patrimônio sob gestão (AUM) de textos. Responda sempre em uma única linha."

// buildPrompt renders the extraction question for one chunk of page text.
// The answer contract mirrors what money.Parse and the sentinel handling
// accept: a monetary expression or NAO_DISPONIVEL, nothing else.
func buildPrompt(companyName, chunkText string) string {
	return fmt.Sprintf(
		"Analise o texto abaixo e responda APENAS com o patrimônio sob gestão (AUM) anunciado por %s. "+
			"Se o valor não estiver presente, responda NAO_DISPONIVEL. "+
			"Formato da resposta: valor com moeda e unidade (ex: R$ 2,3 bi) ou NAO_DISPONIVEL.\n\n"+
			"Texto:\n%s",
		companyName, chunkText,
	)
}
