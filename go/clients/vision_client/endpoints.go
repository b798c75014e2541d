package vision_client

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	MessagesEndpoint = "/v1/messages"
	DefaultModel     = "claude-haiku-4-5-20251001"

	APIKeyHeader  = "x-api-key"
	VersionHeader = "anthropic-version"
	APIVersion    = "2023-06-01"

	// LetterAlphabet is the only set of letters printed on the game cards
	LetterAlphabet = "ACEFILMOPRSTVY"

	recognitionPrompt = "This image shows large black letters on white paper or background. " +
		"Read the letters from left to right. Only these letters are possible: " +
		"A, C, E, F, I, L, M, O, P, R, S, T, V, Y. Return ONLY the letters you see, " +
		"no spaces, no punctuation, no explanation. If you see no letters, return NONE."
)
