package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	ContextSeparator = "\n\n"
)

var (
	AnswerPromptTemplate = `You are an assistant answering questions about a document. You have been provided with the passages of the document most relevant to the question.

Context from the document:
%s

Question: %s

Answer based on the provided context. If the context does not contain enough information to fully answer the question, say so and give what insight you can.`

	SummaryPromptTemplate = `Provide a concise summary of the following document content, highlighting the main points and important passages:

%s`

	ThemesPromptTemplate = `Analyze the following document content and identify its main themes and key concepts. List and briefly explain each theme:

%s`
)
