package prompt

import "github.com/studykit/studykit/internal/llm"

// builtinTemplates returns the shipped template catalog. Bodies exist in
// English and Brazilian Portuguese; English is the fallback.
func builtinTemplates() []Template {
	return []Template{
		{
			ID:           TemplateMultipleChoice,
			Purpose:      llm.PurposeGeneration,
			RequiredVars: []string{"contexts", "instructions", "previousQuestions", "difficulty"},
			Body: map[Language]string{
				LangEnglish: `You are a study assistant that writes quiz questions.

Write one multiple-choice question based strictly on the study material below.
Difficulty: {difficulty}

Study material:
{contexts}

Additional instructions:
{instructions}

Questions already asked (do not repeat them):
{previousQuestions}

Rules:
- Exactly 4 options, exactly one of them correct.
- Distractors must reflect plausible mistakes, not random values.
- Use Markdown in the question text; fence code samples with triple backticks and wrap math in $...$.
- Respond with a single JSON object and nothing else, in this shape:
{"question": "...", "options": ["...", "...", "...", "..."], "correctAnswer": 0, "explanation": "..."}
- "correctAnswer" is the zero-based index of the correct option.
- Write the question in the same language as this prompt.`,
				LangPortuguese: `Você é um assistente de estudos que escreve questões de quiz.

Escreva uma questão de múltipla escolha baseada estritamente no material de estudo abaixo.
Dificuldade: {difficulty}

Material de estudo:
{contexts}

Instruções adicionais:
{instructions}

Questões já feitas (não as repita):
{previousQuestions}

Regras:
- Exatamente 4 alternativas, exatamente uma correta.
- As alternativas erradas devem refletir erros plausíveis, não valores aleatórios.
- Use Markdown no enunciado; delimite código com três crases e matemática com $...$.
- Responda com um único objeto JSON e nada mais, neste formato:
{"question": "...", "options": ["...", "...", "...", "..."], "correctAnswer": 0, "explanation": "..."}
- "correctAnswer" é o índice (a partir de zero) da alternativa correta.
- Escreva a questão em português.`,
			},
		},
		{
			ID:           TemplateDissertative,
			Purpose:      llm.PurposeGeneration,
			RequiredVars: []string{"contexts", "instructions", "previousQuestions", "difficulty"},
			Body: map[Language]string{
				LangEnglish: `You are a study assistant that writes quiz questions.

Write one open-ended (dissertative) question based strictly on the study material below.
Difficulty: {difficulty}

Study material:
{contexts}

Additional instructions:
{instructions}

Questions already asked (do not repeat them):
{previousQuestions}

Rules:
- The question must require explanation or argumentation, not a single word.
- Provide a model answer and 3 to 4 criteria a grader should check.
- Use Markdown in the question text; fence code samples with triple backticks and wrap math in $...$.
- Respond with a single JSON object and nothing else, in this shape:
{"question": "...", "sampleAnswer": "...", "evaluationCriteria": ["...", "...", "..."]}
- Write the question in the same language as this prompt.`,
				LangPortuguese: `Você é um assistente de estudos que escreve questões de quiz.

Escreva uma questão dissertativa baseada estritamente no material de estudo abaixo.
Dificuldade: {difficulty}

Material de estudo:
{contexts}

Instruções adicionais:
{instructions}

Questões já feitas (não as repita):
{previousQuestions}

Regras:
- A questão deve exigir explicação ou argumentação, não uma única palavra.
- Forneça uma resposta modelo e de 3 a 4 critérios de avaliação.
- Use Markdown no enunciado; delimite código com três crases e matemática com $...$.
- Responda com um único objeto JSON e nada mais, neste formato:
{"question": "...", "sampleAnswer": "...", "evaluationCriteria": ["...", "...", "..."]}
- Escreva a questão em português.`,
			},
		},
		{
			ID:           TemplateEvaluation,
			Purpose:      llm.PurposeEvaluation,
			RequiredVars: []string{"question", "userAnswer", "correctAnswer", "questionType"},
			Body: map[Language]string{
				LangEnglish: `You are a tutor grading a student's answer.

Question type: {questionType}
Question:
{question}

Student's answer:
{userAnswer}

Reference answer (may be empty):
{correctAnswer}

Give clear, encouraging feedback in plain prose. State explicitly whether
the answer is correct or incorrect, explain why, and point out what is
missing or wrong. When helpful, list concrete suggestions as lines
starting with "- ". Answer in the same language as this prompt.`,
				LangPortuguese: `Você é um tutor corrigindo a resposta de um estudante.

Tipo de questão: {questionType}
Questão:
{question}

Resposta do estudante:
{userAnswer}

Resposta de referência (pode estar vazia):
{correctAnswer}

Dê um retorno claro e encorajador em prosa. Diga explicitamente se a
resposta está correta ou incorreta, explique por quê e aponte o que está
faltando ou errado. Quando fizer sentido, liste sugestões concretas em
linhas começando com "- ". Responda em português.`,
			},
		},
		{
			ID:           TemplateElaboration,
			Purpose:      llm.PurposeElaboration,
			RequiredVars: []string{"contexts", "question"},
			Body: map[Language]string{
				LangEnglish: `You are a tutor helping a student go deeper.

The student just worked through this question:
{question}

Study material:
{contexts}

Write one short follow-up question that makes the student explain the
"why" or "how" behind the topic. Return only the question text, no
preamble. Answer in the same language as this prompt.`,
				LangPortuguese: `Você é um tutor ajudando um estudante a se aprofundar.

O estudante acabou de trabalhar nesta questão:
{question}

Material de estudo:
{contexts}

Escreva uma única pergunta curta de aprofundamento que faça o estudante
explicar o "porquê" ou o "como" do tema. Retorne apenas o texto da
pergunta, sem preâmbulo. Responda em português.`,
			},
		},
	}
}
