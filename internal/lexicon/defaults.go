package lexicon

// Default returns the built-in Portuguese/English tables. Every call returns a
// fresh copy, so callers may modify the result freely.
func Default() *Lexicon {
	return &Lexicon{
		Weights: DefaultWeights(),
		Productive: CategoryLexicon{
			Keywords: []string{
				"reunião", "meeting", "projeto", "project", "cliente", "client",
				"trabalho", "work", "relatório", "report", "deadline", "entrega",
				"solicitação", "request", "contrato", "contract", "avaliação",
				"performance", "sprint", "agenda", "urgente", "importante",
				"planejamento", "planning", "metas", "goals", "objetivos",
				"objectives", "orçamento", "budget", "responsabilidades",
				"responsibilities", "cronograma", "schedule", "empresa",
				"company", "equipe", "team", "gerente", "manager",
			},
			Combinations: [][]string{
				{"reunião", "planejamento"},
				{"projeto", "objetivos", "metas"},
				{"equipe", "responsabilidades", "cronograma"},
			},
			StructureTerms: [][]string{
				{"objetivos", "metas", "cronograma"},
			},
			Context: []string{
				"empresa", "company", "equipe", "team", "gerente", "manager",
				"cliente", "client", "projeto", "project", "trabalho", "work",
			},
			Anchors: []string{"reunião", "projeto", "trabalho", "cliente"},
			Triggers: []Trigger{
				{
					Terms:    []string{"reunião", "meeting", "agenda"},
					Response: "Vou verificar minha agenda e confirmar a disponibilidade para a reunião.",
				},
				{
					Terms:    []string{"projeto", "project", "trabalho"},
					Response: "Perfeito! Vou revisar o projeto e te envio um status atualizado.",
				},
				{
					Terms:    []string{"cliente", "client", "atendimento"},
					Response: "Entendido! Vou priorizar este atendimento ao cliente.",
				},
			},
			Responses: []string{
				"Obrigado pelo email. Vou analisar e retornar em breve.",
				"Recebi sua mensagem. Estou trabalhando nisso e te mantenho informado.",
				"Perfeito! Vou dar a atenção necessária a este assunto.",
				"Excelente iniciativa. Vamos agendar uma reunião para discutir os detalhes.",
				"Muito bem! Estou processando as informações e retorno em seguida.",
			},
		},
		Unproductive: CategoryLexicon{
			Keywords: []string{
				"corrente", "chain", "reencaminhar", "forward", "spam", "promoção",
				"desconto", "discount", "piada", "joke", "fofoca", "gossip",
				"marketing", "newsletter", "propaganda", "advertisement",
				"sorte", "luck", "abençoado", "blessed", "reencaminhe",
				"forward now", "boa sorte", "good luck", "prosperidade",
				"prosperity", "amor verdadeiro", "true love", "sucesso",
				"success", "dinheiro inesperado", "unexpected money",
			},
			Combinations: [][]string{
				{"corrente", "reencaminhar", "sorte"},
				{"boa sorte", "prosperidade", "abençoado"},
				{"✨", "💰", "❤"},
			},
			StructureTerms: [][]string{
				{"✨", "💰", "❤"},
				{"reencaminhe", "forward now", "agora"},
				{"sorte", "abençoado", "prosperidade"},
			},
			Context: []string{
				"corrente", "chain", "reencaminhar", "forward", "spam",
				"sorte", "luck", "abençoado", "blessed", "prosperidade",
			},
			Anchors: []string{"corrente", "reencaminhar", "sorte", "abençoado"},
			Triggers: []Trigger{
				{
					Terms:    []string{"spam", "promoção", "desconto"},
					Response: "Não estou interessado em promoções. Por favor, remova meu email da lista.",
				},
				{
					Terms:    []string{"corrente", "reencaminhar", "forward"},
					Response: "Não participo de correntes de email. Por favor, não me inclua em futuras mensagens.",
				},
			},
			Responses: []string{
				"Obrigado, mas não posso participar de correntes de email.",
				"Agradeço o envio, mas não estou interessado neste tipo de conteúdo.",
				"Vou remover meu email desta lista de distribuição.",
				"Por favor, não me inclua em futuras correntes de email.",
				"Obrigado, mas não posso ajudar com este tipo de solicitação.",
			},
		},
		WorkIndicators: [][]string{
			{"reunião", "meeting"},
			{"planejamento", "planning"},
			{"objetivos", "goals", "metas"},
			{"equipe", "team"},
			{"responsabilidades", "responsibilities"},
			{"cronograma", "schedule"},
			{"orçamento", "budget"},
			{"gerente", "manager"},
		},
		StrongCombinations: [][]string{
			{"reunião", "planejamento", "objetivos"},
			{"equipe", "responsabilidades", "cronograma"},
		},
		FormalMarkers: []string{"prezados", "atenciosamente", "cordiais"},
	}
}
